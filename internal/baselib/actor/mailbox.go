package actor

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
)

// DefaultMailboxCapacity is the bounded FIFO capacity used when an
// AgentConfig does not override it.
const DefaultMailboxCapacity = 255

// Mailbox defines the interface for an agent's message queue. This
// abstraction allows different mailbox strategies to be plugged in without
// changing the agent implementation.
//
// Thread Safety:
//   - Send and TrySend may be called concurrently from multiple goroutines.
//   - Receive should only be called from a single goroutine (the agent's
//     drain loop).
//   - Close may be called concurrently with Send/TrySend and is idempotent.
//   - IsClosed may be called concurrently from any goroutine.
//   - Drain should only be called after Close and from a single goroutine.
//   - Send and TrySend return false after Close has been called.
type Mailbox interface {
	// Send attempts to send an envelope to the mailbox, blocking until
	// either the envelope is accepted, the provided context is
	// cancelled, or the agent's context is cancelled. It returns true if
	// the envelope was successfully sent, false otherwise.
	Send(ctx context.Context, env Envelope) bool

	// TrySend attempts to send an envelope to the mailbox without
	// blocking. It returns true if the envelope was successfully sent,
	// false if the mailbox is full or closed.
	TrySend(env Envelope) bool

	// Receive returns an iterator over envelopes in the mailbox. The
	// iterator blocks when the mailbox is empty and yields envelopes as
	// they arrive. The iterator stops when the provided context is
	// cancelled or the mailbox is closed and drained.
	Receive(ctx context.Context) iter.Seq[Envelope]

	// Close closes the mailbox, preventing any further sends. After
	// closing, Receive yields any remaining envelopes and then stops.
	Close()

	// IsClosed returns true if the mailbox has been closed.
	IsClosed() bool

	// Drain returns an iterator over any remaining buffered envelopes
	// after the mailbox has been closed, for callers that need to account
	// for messages that were enqueued but never reached Receive.
	Drain() iter.Seq[Envelope]

	// Len reports the number of envelopes currently buffered.
	Len() int
}

// ChannelMailbox is a Mailbox implementation backed by a Go channel. It
// provides thread-safe send and receive operations with support for context
// cancellation.
type ChannelMailbox struct {
	// ch is the underlying channel used to store envelopes.
	ch chan Envelope

	// closed indicates whether the mailbox has been closed. Uses atomic
	// operations for lock-free reads.
	closed atomic.Bool

	// mu protects send operations to prevent sending to a closed
	// channel.
	mu sync.RWMutex

	// closeOnce ensures Close() is executed exactly once.
	closeOnce sync.Once

	// agentCtx is the context governing the agent's lifecycle. When this
	// context is cancelled, Send and TrySend fail. Receive watches only
	// the context passed to it.
	agentCtx context.Context
}

// NewChannelMailbox creates a new channel-based mailbox with the given
// capacity and agent context. If capacity is 0 or negative, it defaults to 1
// to ensure the mailbox is buffered.
func NewChannelMailbox(agentCtx context.Context, capacity int) *ChannelMailbox {
	if capacity <= 0 {
		capacity = 1
	}

	return &ChannelMailbox{
		ch:       make(chan Envelope, capacity),
		agentCtx: agentCtx,
	}
}

// Send attempts to send an envelope to the mailbox. It blocks until either
// the envelope is accepted, the caller's context is cancelled, or the
// agent's context is cancelled.
func (m *ChannelMailbox) Send(ctx context.Context, env Envelope) bool {
	// Check contexts before acquiring the lock as an optimization. This
	// allows fast-path rejection when contexts are already cancelled,
	// avoiding unnecessary lock acquisition. The select below still
	// handles the case where contexts are cancelled after this check.
	if ctx.Err() != nil {
		return false
	}
	if m.agentCtx.Err() != nil {
		return false
	}

	// Hold the read lock for the entire send operation to prevent
	// send-on-closed-channel panics. Close() must acquire the write lock
	// before closing the channel, and the write lock cannot be acquired
	// while any read lock is held, so the channel cannot close out from
	// under us here.
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed.Load() {
		return false
	}

	select {
	case m.ch <- env:
		log.TraceS(ctx, "Mailbox send succeeded",
			"msg_type", env.Payload.MessageType(),
			"queue_len", len(m.ch))

		return true

	case <-ctx.Done():
		log.TraceS(ctx, "Mailbox send failed, caller context cancelled",
			"msg_type", env.Payload.MessageType())

		return false

	case <-m.agentCtx.Done():
		log.TraceS(ctx, "Mailbox send failed, agent context cancelled",
			"msg_type", env.Payload.MessageType())

		return false
	}
}

// TrySend attempts to send an envelope to the mailbox without blocking.
func (m *ChannelMailbox) TrySend(env Envelope) bool {
	if m.agentCtx.Err() != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed.Load() {
		return false
	}

	select {
	case m.ch <- env:
		return true
	default:
		return false
	}
}

// Receive returns an iterator over envelopes in the mailbox. Context
// cancellation is checked before each receive attempt to ensure
// deterministic shutdown behavior, rather than racing in the select.
func (m *ChannelMailbox) Receive(ctx context.Context) iter.Seq[Envelope] {
	return func(yield func(Envelope) bool) {
		for {
			if ctx.Err() != nil {
				return
			}

			select {
			case env, ok := <-m.ch:
				if !ok {
					return
				}

				if !yield(env) {
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}
}

// Close closes the mailbox, preventing any further sends. Safe to call
// multiple times; only the first call has an effect.
func (m *ChannelMailbox) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		remaining := len(m.ch)
		log.DebugS(m.agentCtx, "Mailbox closing",
			"remaining_messages", remaining)

		m.closed.Store(true)
		close(m.ch)
	})
}

// IsClosed returns true if the mailbox has been closed.
func (m *ChannelMailbox) IsClosed() bool {
	return m.closed.Load()
}

// Drain returns an iterator over any remaining envelopes in the mailbox.
// Only meaningful after Close(); if the mailbox is still open it returns
// immediately.
func (m *ChannelMailbox) Drain() iter.Seq[Envelope] {
	return func(yield func(Envelope) bool) {
		if !m.IsClosed() {
			return
		}

		for {
			select {
			case env, ok := <-m.ch:
				if !ok {
					return
				}

				if !yield(env) {
					return
				}

			default:
				return
			}
		}
	}
}

// Len reports the number of envelopes currently buffered.
func (m *ChannelMailbox) Len() int {
	return len(m.ch)
}
