package actor

import (
	"context"
	"reflect"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// MessageReactor is a synchronous message handler for an agent carrying
// state S. It must not block; it receives a mutable view of the agent via
// *StartedAgent[S].
type MessageReactor[S any] func(agent *StartedAgent[S], env Envelope)

// FutureReactor is an asynchronous message handler. It is awaited to
// completion before the drain loop dequeues the next envelope, so reactors
// still observe a strictly serialized view of the agent's state.
type FutureReactor[S any] func(ctx context.Context, agent *StartedAgent[S], env Envelope) Future[struct{}]

// reactorEntry stores one registered handler, either synchronous or
// asynchronous, behind a per-message-type trampoline. Go disallows methods
// with their own type parameters, so OnMessage/OnMessageAsync (package-level
// generic functions below) are the only way to register a strongly typed
// T-specific handler while the map itself stores untyped closures keyed by
// reflect.Type.
type reactorEntry[S any] struct {
	sync    MessageReactor[S]
	async   FutureReactor[S]
	isAsync bool
}

// ReactorMap is a mapping from message-type identity to a handler. It is
// built during Idle and frozen at activation; Started only ever reads it, so
// no synchronization is needed once the agent is running.
type ReactorMap[S any] struct {
	handlers map[reflect.Type]reactorEntry[S]
}

// newReactorMap constructs an empty ReactorMap.
func newReactorMap[S any]() *ReactorMap[S] {
	return &ReactorMap[S]{handlers: make(map[reflect.Type]reactorEntry[S])}
}

// registerSync installs (or replaces) a synchronous reactor for typ.
func (r *ReactorMap[S]) registerSync(typ reflect.Type, h MessageReactor[S]) {
	r.handlers[typ] = reactorEntry[S]{sync: h}
}

// registerAsync installs (or replaces) an asynchronous reactor for typ.
func (r *ReactorMap[S]) registerAsync(typ reflect.Type, h FutureReactor[S]) {
	r.handlers[typ] = reactorEntry[S]{async: h, isAsync: true}
}

// lookup returns the reactor entry registered for typ, if any.
func (r *ReactorMap[S]) lookup(typ reflect.Type) (reactorEntry[S], bool) {
	entry, ok := r.handlers[typ]
	return entry, ok
}

// OnMessage registers a synchronous reactor for message type T on an Idle
// agent. Registering a second reactor for the same T replaces the first
// (see ReactorMap.registerSync). This is a package-level function, not a
// method, because Go does not allow a method to introduce its own type
// parameter distinct from its receiver's.
func OnMessage[S any, T Message](
	agent *IdleAgent[S], handler func(agent *StartedAgent[S], msg T, env Envelope),
) {
	var zero T
	typ := reflect.TypeOf(zero)

	agent.core.reactors.registerSync(typ, func(a *StartedAgent[S], env Envelope) {
		msg, ok := env.Payload.(T)
		if !ok {
			log.WarnS(context.Background(), "Dispatch type mismatch",
				"expected", typ.String(),
				"got", env.Payload.MessageType())

			return
		}

		handler(a, msg, env)
	})
}

// OnMessageAsync registers an asynchronous (FutureReactor) handler for
// message type T on an Idle agent. The returned Future is awaited to
// completion before the next envelope is dequeued.
func OnMessageAsync[S any, T Message](
	agent *IdleAgent[S],
	handler func(ctx context.Context, agent *StartedAgent[S], msg T, env Envelope) Future[struct{}],
) {
	var zero T
	typ := reflect.TypeOf(zero)

	agent.core.reactors.registerAsync(typ, func(ctx context.Context, a *StartedAgent[S], env Envelope) Future[struct{}] {
		msg, ok := env.Payload.(T)
		if !ok {
			log.WarnS(ctx, "Dispatch type mismatch",
				"expected", typ.String(),
				"got", env.Payload.MessageType())

			p := NewPromise[struct{}]()
			p.Complete(fn.Ok(struct{}{}))

			return p.Future()
		}

		return handler(ctx, a, msg, env)
	})
}
