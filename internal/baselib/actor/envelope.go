package actor

import (
	"context"

	"github.com/lightningnetwork/lnd/fn/v2"
)

// ReturnAddress is an addressable send-capability pointing at a single
// mailbox; it carries the sender's identity so a recipient can address a
// reply back without holding a general reference to the sender.
type ReturnAddress struct {
	senderId AgentId
	handle   *AgentHandle
}

// SenderId returns the identity of the agent this return address points
// back at.
func (r ReturnAddress) SenderId() AgentId {
	return r.senderId
}

// Reply sends msg back to the original sender's mailbox. It is a thin
// wrapper around the sender handle's Emit and shares its back-pressure and
// failure semantics.
func (r ReturnAddress) Reply(ctx context.Context, msg Message) error {
	if r.handle == nil {
		return ErrAgentTerminated
	}

	return r.handle.Emit(ctx, msg)
}

// Envelope is a message container: a type-erased payload plus the sender's
// optional return address.
type Envelope struct {
	// Payload carries the runtime type identity used for dispatch.
	Payload Message

	// Sender is absent for messages sent anonymously (e.g. from outside
	// any agent, or where no reply is ever expected).
	Sender fn.Option[ReturnAddress]
}

// newEnvelope constructs an Envelope from a payload and an optional sender.
func newEnvelope(payload Message, sender fn.Option[ReturnAddress]) Envelope {
	return Envelope{Payload: payload, Sender: sender}
}

// brokerRequest is the envelope wrapper the broker fans out to subscribers.
// It carries a concrete payload of arbitrary message type; a subscriber's
// dispatch loop transparently unwraps it before looking up a reactor (see
// wake in agent.go), so subscribers register handlers for the inner type
// directly and never see brokerRequest themselves.
type brokerRequest struct {
	BaseMessage

	payload Message
}

// MessageType implements Message.
func (brokerRequest) MessageType() string { return "BrokerRequest" }

// NewBrokerRequest wraps payload for publication through a Broker. Emit this
// to a broker handle to fan it out to every subscriber registered for
// payload's concrete type.
func NewBrokerRequest(payload Message) Message {
	return brokerRequest{payload: payload}
}
