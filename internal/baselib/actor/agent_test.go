package actor

import (
	"context"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// pongMsg is the reply echoState sends back to whoever pinged it.
type pongMsg struct {
	BaseMessage
	value int
}

func (pongMsg) MessageType() string { return "Pong" }

// echoState replies to every pingMsg with a pongMsg addressed back to the
// sender, and records every value it has seen on received for assertions.
type echoState struct {
	received chan int
}

// newEchoAgent spawns a top-level agent that echoes pingMsg back as pongMsg
// and returns both its handle and the channel its reactor reports on.
func newEchoAgent(t *testing.T, sys SystemReady) (*AgentHandle, chan int) {
	t.Helper()

	received := make(chan int, 16)

	handle, err := SpawnAgent(sys, AgentConfig{Id: "echo"}, func(idle *IdleAgent[echoState]) *AgentHandle {
		idle.State().received = received

		OnMessage(idle, func(a *StartedAgent[echoState], msg pingMsg, env Envelope) {
			a.State().received <- msg.value

			env.Sender.WhenSome(func(addr ReturnAddress) {
				addr.Reply(context.Background(), pongMsg{value: msg.value})
			})
		})

		return Activate(idle)
	})
	require.NoError(t, err)

	return handle, received
}

func requireWithin[T any](t *testing.T, ch <-chan T, d time.Duration, msg string) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(d):
		t.Fatal(msg)

		var zero T
		return zero
	}
}

func TestBasicMessageDispatch(t *testing.T) {
	t.Parallel()

	sys := Launch(DefaultRuntimeConfig())
	defer sys.Shutdown(context.Background())

	echoHandle, received := newEchoAgent(t, sys)

	require.NoError(t, echoHandle.Emit(context.Background(), pingMsg{value: 7}))

	v := requireWithin(t, received, time.Second, "echo agent never observed the ping")
	require.Equal(t, 7, v)
}

// pingerState holds the Envelope-derived replies a requester sees back from
// echoState, exercising ReturnAddress.Reply end to end.
type pingerState struct {
	replies chan int
}

func TestReturnAddressReplyRoundTrip(t *testing.T) {
	t.Parallel()

	sys := Launch(DefaultRuntimeConfig())
	defer sys.Shutdown(context.Background())

	echoHandle, _ := newEchoAgent(t, sys)

	replies := make(chan int, 4)

	handle, err := SpawnAgent(sys, AgentConfig{Id: "pinger"}, func(idle *IdleAgent[pingerState]) *AgentHandle {
		idle.State().replies = replies

		OnMessage(idle, func(a *StartedAgent[pingerState], msg pongMsg, env Envelope) {
			a.State().replies <- msg.value
		})

		return Activate(idle)
	})
	require.NoError(t, err)

	ctx := context.Background()

	// Build an envelope carrying a return address pointing back at the
	// pinger, the same way publishToSubscribers (broker.go) constructs one
	// for fan-out, and send it directly to the echo agent's mailbox.
	returnAddr := ReturnAddress{senderId: handle.ID(), handle: handle}

	require.True(t, echoHandle.mailbox.Send(ctx, newEnvelope(pingMsg{value: 99}, fn.Some(returnAddr))))

	v := requireWithin(t, replies, time.Second, "pinger never observed the pong reply")
	require.Equal(t, 99, v)
}
