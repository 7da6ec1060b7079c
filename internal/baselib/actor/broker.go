package actor

import (
	"context"
	"reflect"
	"sync"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// brokerState is the Broker's private state: a map from message-type
// identity to the set of subscriber handles for that type. It is mutated
// only by the broker's own run loop (a subscribe/unsubscribe message, or a
// publish pruning a subscriber whose mailbox has closed), so no external
// locking is required once the broker is running; the reactors still take
// mu around every access to the map.
type brokerState struct {
	mu          sync.Mutex
	subscribers map[reflect.Type]map[AgentId]*AgentHandle
}

// subscribeMsg asks the broker to add subscriber to the set for messages of
// the concrete type carried in typ.
type subscribeMsg struct {
	BaseMessage

	typ        reflect.Type
	subscriber *AgentHandle
}

// MessageType implements Message.
func (subscribeMsg) MessageType() string { return "Subscribe" }

// unsubscribeMsg asks the broker to remove subscriber from the set for
// messages of the concrete type carried in typ.
type unsubscribeMsg struct {
	BaseMessage

	typ        reflect.Type
	subscriber *AgentHandle
}

// MessageType implements Message.
func (unsubscribeMsg) MessageType() string { return "Unsubscribe" }

// brokerAgentName is the fixed id segment the broker is spawned under.
const brokerAgentName = "broker"

// newBroker spawns and activates the system's broker agent. The broker is
// an agent like any other; its only distinction is the three reactors
// (subscribe, unsubscribe, brokerRequest) registered here and the fact that
// Publish wraps payloads in brokerRequest before emitting to it.
func newBroker(sys *System) *AgentHandle {
	idle, err := spawnChild[brokerState](sys, nil, AgentConfig{
		Id: brokerAgentName,
	})
	if err != nil {
		// Only a malformed config can fail spawnChild, and
		// brokerAgentName is a compile-time constant, so this
		// indicates a bug in this package rather than caller error.
		panic(err)
	}

	idle.core.state.subscribers = make(map[reflect.Type]map[AgentId]*AgentHandle)

	OnMessage(idle, func(a *StartedAgent[brokerState], msg subscribeMsg, env Envelope) {
		st := a.State()

		st.mu.Lock()
		defer st.mu.Unlock()

		set, ok := st.subscribers[msg.typ]
		if !ok {
			set = make(map[AgentId]*AgentHandle)
			st.subscribers[msg.typ] = set
		}
		set[msg.subscriber.ID()] = msg.subscriber
	})

	OnMessage(idle, func(a *StartedAgent[brokerState], msg unsubscribeMsg, env Envelope) {
		st := a.State()

		st.mu.Lock()
		defer st.mu.Unlock()

		if set, ok := st.subscribers[msg.typ]; ok {
			delete(set, msg.subscriber.ID())
		}
	})

	OnMessage(idle, func(a *StartedAgent[brokerState], msg brokerRequest, env Envelope) {
		publishToSubscribers(a, msg)
	})

	return Activate(idle)
}

// publishToSubscribers fans msg out to every subscriber currently
// registered for reflect.TypeOf(msg.payload). Fan-out is sequential over
// subscribers and awaits only the mailbox send, not any processing by the
// subscriber, so a slow subscriber slows the broker's own drain loop rather
// than the publisher.
func publishToSubscribers(a *StartedAgent[brokerState], msg brokerRequest) {
	st := a.State()

	typ := reflect.TypeOf(msg.payload)

	st.mu.Lock()
	subscribers := make([]*AgentHandle, 0, len(st.subscribers[typ]))
	for _, sub := range st.subscribers[typ] {
		subscribers = append(subscribers, sub)
	}
	st.mu.Unlock()

	sender := fn.Some(ReturnAddress{
		senderId: a.core.id,
		handle:   a.core.handle,
	})

	for _, sub := range subscribers {
		forwarded := newEnvelope(brokerRequest{payload: msg.payload}, sender)

		if a.core.system.metrics != nil {
			a.core.system.metrics.brokerFanOut.Inc()
		}

		if !sub.mailbox.Send(a.core.ctx, forwarded) {
			log.DebugS(a.core.ctx, "Broker drop: subscriber unreachable",
				"subscriber_id", sub.ID(),
				"msg_type", msg.payload.MessageType())

			// A closed mailbox never reopens, so drop the subscriber
			// from this type's set instead of retrying it on every
			// later publish.
			if sub.mailbox.IsClosed() {
				st.mu.Lock()
				delete(st.subscribers[typ], sub.ID())
				st.mu.Unlock()
			}
		}
	}
}

// Publish wraps payload in a BrokerRequest and emits it to broker, fanning
// it out to every subscriber registered for payload's concrete type.
func Publish(ctx context.Context, broker *AgentHandle, payload Message) error {
	return broker.Emit(ctx, NewBrokerRequest(payload))
}

// subscribeTo registers subscriber with broker for messages of type T.
func subscribeTo[T Message](ctx context.Context, broker, subscriber *AgentHandle) error {
	var zero T
	typ := reflect.TypeOf(zero)

	return broker.Emit(ctx, subscribeMsg{typ: typ, subscriber: subscriber})
}

// unsubscribeFrom removes subscriber from broker's set for messages of type
// T.
func unsubscribeFrom[T Message](ctx context.Context, broker, subscriber *AgentHandle) error {
	var zero T
	typ := reflect.TypeOf(zero)

	return broker.Emit(ctx, unsubscribeMsg{typ: typ, subscriber: subscriber})
}
