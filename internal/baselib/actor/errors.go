package actor

import "fmt"

// ErrAgentTerminated indicates that an operation failed because the target
// agent was stopped or is in the process of shutting down.
var ErrAgentTerminated = fmt.Errorf("agent terminated")

// ErrMailboxFull indicates that TryEmit failed because the target mailbox
// had no free capacity.
var ErrMailboxFull = fmt.Errorf("mailbox full")

// ErrConfigInvalid indicates that Spawn was called with an inconsistent
// AgentConfig, e.g. an id containing '/'.
var ErrConfigInvalid = fmt.Errorf("invalid agent configuration")
