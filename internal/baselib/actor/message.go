package actor

// BaseMessage is a helper struct that can be embedded in message types
// defined outside the actor package to satisfy the Message interface's
// unexported messageMarker method.
type BaseMessage struct{}

// messageMarker implements the unexported method for the Message interface,
// allowing types that embed BaseMessage to satisfy the Message interface.
func (BaseMessage) messageMarker() {}

// Message is a sealed interface for actor messages. Only types that embed
// BaseMessage (or are defined in this package) can satisfy it. The runtime
// type of a Message is its identity for dispatch purposes: the dispatcher
// keys the reactor map by reflect.TypeOf(msg), requiring no enumeration of
// the message set up front.
type Message interface {
	// messageMarker is a private method that makes this a sealed
	// interface (see BaseMessage for embedding).
	messageMarker()

	// MessageType returns the type name of the message for logging and
	// diagnostics. It does not participate in dispatch.
	MessageType() string
}

// Terminate is the system signal that initiates orderly shutdown of an
// agent. It has no reactor; the drain loop special-cases it (see wake in
// agent.go).
type Terminate struct {
	BaseMessage
}

// MessageType implements Message.
func (Terminate) MessageType() string { return "Terminate" }
