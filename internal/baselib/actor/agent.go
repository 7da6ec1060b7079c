package actor

import (
	"context"
	"reflect"
	"sync"
	"time"
)

// childStopTimeout bounds how long terminate() waits for any one child to
// report stopped before treating it as orphaned and proceeding anyway.
const childStopTimeout = 5 * time.Second

// agentCore holds the fields shared by an agent across both the Idle and
// Started phases. Go does not allow a method to fix one of its receiver's
// type parameters to a concrete value (there is no way to write a method
// that only exists for ManagedAgent[Idle, S] and not ManagedAgent[Started,
// S]), so the Idle/Started phantom-type split from the source is expressed
// here as two distinct Go types, IdleAgent[S] and StartedAgent[S], that both
// wrap a *agentCore[S]. Activation converts one into the other; the two
// wrapper types simply expose different method sets over the same core.
type agentCore[S any] struct {
	id    AgentId
	state S

	reactors       *ReactorMap[S]
	lifecycleHooks hooks[S]

	parent *AgentHandle
	broker *AgentHandle

	mailbox Mailbox
	handle  *AgentHandle

	ctx    context.Context
	cancel context.CancelFunc

	system *System

	activated sync.Once
}

// IdleAgent is an agent in its configuration phase: reactors and lifecycle
// hooks may be registered, children may be spawned, but no messages are
// delivered yet.
type IdleAgent[S any] struct {
	core *agentCore[S]
}

// StartedAgent is an agent whose mailbox is live and being drained. No
// further reactor registration is possible through it.
type StartedAgent[S any] struct {
	core *agentCore[S]
}

// State returns a pointer to the agent's private state, mutable in place by
// reactors and hooks. There is no intra-agent concurrency, so this requires
// no synchronization.
func (a *StartedAgent[S]) State() *S {
	return &a.core.state
}

// Self returns this agent's own handle.
func (a *StartedAgent[S]) Self() *AgentHandle {
	return a.core.handle
}

// Self returns the handle this Idle agent will expose once activated. It is
// allocated eagerly at construction so children spawned during Idle (or
// during after_start, which already runs on the Started agent) can reference
// it immediately.
func (a *IdleAgent[S]) Self() *AgentHandle {
	return a.core.handle
}

// State returns a pointer to the agent's private state during setup, before
// activation. spawnChild zero-values S; setup mutates it in place here to
// seed whatever fields reactors and hooks will later read through
// StartedAgent.State.
func (a *IdleAgent[S]) State() *S {
	return &a.core.state
}

// Spawn creates a child IdleAgent of this agent, registers it in the
// children set, and returns it for setup. The caller must eventually call
// Activate on the returned agent.
func Spawn[S, C any](parent *StartedAgent[S], cfg AgentConfig) (*IdleAgent[C], error) {
	return spawnChild[C](parent.core.system, parent.core.handle, cfg)
}

// SpawnFromIdle is the Idle-phase counterpart of Spawn, used when a child
// must be created during setup (before the parent is activated) rather than
// from within after_start.
func SpawnFromIdle[S, C any](parent *IdleAgent[S], cfg AgentConfig) (*IdleAgent[C], error) {
	return spawnChild[C](parent.core.system, parent.core.handle, cfg)
}

// Activate is the atomic transition Idle -> Started: before_start runs
// synchronously here (before the drain loop is even scheduled, matching the
// source's spawn()), the reactor map and hooks move into the Started agent,
// a goroutine is scheduled to run the drain loop (wake), and the handle is
// returned to the caller. No further reactor registration is possible
// through the returned handle.
func Activate[S any](idle *IdleAgent[S]) *AgentHandle {
	started := &StartedAgent[S]{core: idle.core}

	idle.core.activated.Do(func() {
		idle.core.lifecycleHooks.runBeforeStart(idle.core.ctx, started)

		idle.core.handle.markStarted(started.terminateAwaiter)

		go started.wake()
	})

	return idle.core.handle
}

// terminateAwaiter blocks until this agent's drain loop has fully exited.
// It backs AgentHandle.Stop's returned Future.
func (a *StartedAgent[S]) terminateAwaiter(ctx context.Context) {
	<-a.core.ctx.Done()
}

// wake is the Started agent's drain loop. See the ordering contract: (1)
// after_start runs to completion before the first dequeue, (2) envelopes are
// dequeued one at a time; a reactor registered for the envelope's own
// concrete type is preferred (this is how the broker's brokerRequest reactor
// fires), and only when no such reactor exists is a broker request unwrapped
// and redispatched on its inner payload's type (this is how a subscriber
// sees T rather than brokerRequest), (3) matched reactors run (sync inline,
// async awaited before continuing), (4) an unmatched Terminate ends the loop
// after before_stop, (5) any other unmatched payload is dropped at debug
// level. After the loop exits, terminate() runs, then after_stop, then wake
// returns.
func (a *StartedAgent[S]) wake() {
	core := a.core

	core.lifecycleHooks.runAfterStart(core.ctx, a)

	for env := range core.mailbox.Receive(core.ctx) {
		dispatchEnv := env
		typ := reflect.TypeOf(env.Payload)

		entry, ok := core.reactors.lookup(typ)
		if !ok {
			if _, isBroker := env.Payload.(brokerRequest); isBroker {
				dispatchEnv = unwrapBrokerRequest(env)
				entry, ok = core.reactors.lookup(reflect.TypeOf(dispatchEnv.Payload))
			}
		}

		if !ok {
			if _, isTerminate := env.Payload.(Terminate); isTerminate {
				log.DebugS(core.ctx, "Agent observed terminate signal",
					"agent_id", core.id)

				core.lifecycleHooks.runBeforeStop(core.ctx, a)
				core.mailbox.Close()

				break
			}

			if core.system.metrics != nil {
				core.system.metrics.droppedMsgs.Inc()
			}

			log.DebugS(core.ctx, "Dropping message with no reactor",
				"agent_id", core.id,
				"msg_type", env.Payload.MessageType())

			continue
		}

		a.dispatch(entry, dispatchEnv)
	}

	a.terminate()
	core.lifecycleHooks.runAfterStop(core.ctx, a)

	if core.system.metrics != nil {
		core.system.metrics.agentsStopped.Inc()
	}

	if core.parent != nil {
		core.parent.removeChild(core.id)
	}

	core.cancel()
}

// dispatch invokes the matched reactor, recovering from a panic so that one
// misbehaving reactor does not take down the whole drain loop; only the
// current message unwinds, and draining continues with the next envelope.
func (a *StartedAgent[S]) dispatch(entry reactorEntry[S], env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.WarnS(a.core.ctx, "Reactor panicked, continuing drain",
				"agent_id", a.core.id,
				"msg_type", env.Payload.MessageType(),
				"panic", r)
		}
	}()

	if entry.isAsync {
		entry.async(a.core.ctx, a, env).Await(a.core.ctx)
		return
	}

	entry.sync(a, env)
}

// unwrapBrokerRequest replaces env with one carrying the inner payload and
// the same return address when env's payload is a brokerRequest, so
// subscribers registered via on_message::<T> never see the wrapper.
func unwrapBrokerRequest(env Envelope) Envelope {
	req, ok := env.Payload.(brokerRequest)
	if !ok {
		return env
	}

	return newEnvelope(req.payload, env.Sender)
}

// terminate is invoked once the drain loop exits due to Terminate. It stops
// every child concurrently, waits (with a bounded timeout per child) for
// each to confirm, and idempotently closes the mailbox.
func (a *StartedAgent[S]) terminate() {
	core := a.core

	children := core.handle.Children()

	stopTimeout := childStopTimeout
	if core.system != nil && core.system.config.ChildStopTimeout > 0 {
		stopTimeout = core.system.config.ChildStopTimeout
	}

	var wg sync.WaitGroup
	for _, child := range children {
		wg.Add(1)

		go func(child *AgentHandle) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(
				context.Background(), stopTimeout,
			)
			defer cancel()

			if !child.Stop(ctx).Await(ctx).IsOk() {
				log.WarnS(core.ctx, "Child did not stop within "+
					"timeout, treating as orphaned",
					"agent_id", core.id,
					"child_id", child.ID())
			}
		}(child)
	}
	wg.Wait()

	core.mailbox.Close()
}
