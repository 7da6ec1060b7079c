package actor

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// AgentHandle is the external, cheaply cloneable handle used to send
// messages to an agent, enumerate its children, and request its stop. Its
// lifetime is independent of the agent's Started phase: a handle obtained
// before activation remains valid (and forwards to the live mailbox) once
// the agent is running.
type AgentHandle struct {
	id AgentId

	mailbox Mailbox

	mu       sync.RWMutex
	children map[AgentId]*AgentHandle

	started atomic.Bool
	awaiter func(ctx context.Context)

	stopOnce    sync.Once
	stopPromise Promise[struct{}]
}

// newAgentHandle constructs the handle shared by an Idle and, after
// activation, Started agent. The mailbox is created up front so that
// messages sent before activation queue rather than fail.
func newAgentHandle(id AgentId, mailbox Mailbox) *AgentHandle {
	return &AgentHandle{
		id:          id,
		mailbox:     mailbox,
		children:    make(map[AgentId]*AgentHandle),
		stopPromise: NewPromise[struct{}](),
	}
}

// ID returns this agent's hierarchical identifier.
func (h *AgentHandle) ID() AgentId {
	return h.id
}

// mailboxLen reports the number of envelopes currently buffered in this
// agent's mailbox. Used by System's metrics sampler.
func (h *AgentHandle) mailboxLen() int {
	return h.mailbox.Len()
}

// Emit sends msg to this agent asynchronously, suspending the caller if the
// mailbox is full until a slot frees or ctx is cancelled. The envelope
// carries no ReturnAddress, so a reactor handling msg has nothing to Reply
// to; sends that expect a reply are built from within a reactor, which
// receives the sender's ReturnAddress on its own Envelope parameter.
// Returns ErrAgentTerminated if the mailbox was already closed, or ctx.Err()
// if ctx was cancelled before a slot became available.
func (h *AgentHandle) Emit(ctx context.Context, msg Message) error {
	if h.mailbox.Send(ctx, newEnvelope(msg, fn.None[ReturnAddress]())) {
		return nil
	}

	if h.mailbox.IsClosed() {
		return ErrAgentTerminated
	}

	return ctx.Err()
}

// TryEmit is the non-blocking counterpart of Emit. Returns ErrMailboxFull if
// the mailbox had no free capacity, or ErrAgentTerminated if it was closed.
func (h *AgentHandle) TryEmit(msg Message) error {
	if h.mailbox.TrySend(newEnvelope(msg, fn.None[ReturnAddress]())) {
		return nil
	}

	if h.mailbox.IsClosed() {
		return ErrAgentTerminated
	}

	return ErrMailboxFull
}

// Children enumerates the current set of child handles. A child disappears
// from this set at the end of its wake, after its after_stop hook (see wake
// in agent.go).
func (h *AgentHandle) Children() []*AgentHandle {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*AgentHandle, 0, len(h.children))
	for _, child := range h.children {
		out = append(out, child)
	}

	return out
}

// addChild registers child in this handle's children set. Called at spawn
// time.
func (h *AgentHandle) addChild(child *AgentHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.children[child.id] = child
}

// removeChild drops id from this handle's children set. Called by the
// child's wake as its last step, after after_stop.
func (h *AgentHandle) removeChild(id AgentId) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.children, id)
}

// markStarted records the awaiter function used by Stop to block until this
// agent's drain loop has fully exited. Called exactly once, by Activate.
func (h *AgentHandle) markStarted(awaiter func(ctx context.Context)) {
	h.awaiter = awaiter
	h.started.Store(true)
}

// Stop sends the Terminate system signal to this agent's mailbox and
// returns a Future that resolves once the agent's drain loop has fully
// exited, including having stopped every descendant (see terminate in
// agent.go). Safe to call more than once; later calls observe the same
// Future.
func (h *AgentHandle) Stop(ctx context.Context) Future[struct{}] {
	h.stopOnce.Do(func() {
		h.mailbox.Send(ctx, newEnvelope(Terminate{}, fn.None[ReturnAddress]()))

		go func() {
			if h.awaiter != nil {
				h.awaiter(context.Background())
			}

			h.stopPromise.Complete(fn.Ok(struct{}{}))
		}()
	})

	return h.stopPromise.Future()
}

// Subscribe registers subscriber as a subscriber of message type T with the
// given broker. See broker.go.
func Subscribe[T Message](ctx context.Context, broker *AgentHandle, subscriber *AgentHandle) error {
	return subscribeTo[T](ctx, broker, subscriber)
}

// Unsubscribe removes subscriber as a subscriber of message type T from the
// given broker. See broker.go.
func Unsubscribe[T Message](ctx context.Context, broker *AgentHandle, subscriber *AgentHandle) error {
	return unsubscribeFrom[T](ctx, broker, subscriber)
}
