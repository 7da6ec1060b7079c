package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// hookOrderState records every lifecycle hook invocation in order on events.
type hookOrderState struct {
	events chan string
}

func TestLifecycleHookOrdering(t *testing.T) {
	t.Parallel()

	sys := Launch(DefaultRuntimeConfig())
	defer sys.Shutdown(context.Background())

	events := make(chan string, 8)

	handle, err := SpawnAgent(sys, AgentConfig{Id: "lifecycle"}, func(idle *IdleAgent[hookOrderState]) *AgentHandle {
		idle.State().events = events

		idle.BeforeStart(func(ctx context.Context, a *StartedAgent[hookOrderState]) {
			a.State().events <- "before_start"
		})
		idle.AfterStart(func(ctx context.Context, a *StartedAgent[hookOrderState]) {
			a.State().events <- "after_start"
		})
		idle.BeforeStop(func(ctx context.Context, a *StartedAgent[hookOrderState]) {
			a.State().events <- "before_stop"
		})
		idle.AfterStop(func(ctx context.Context, a *StartedAgent[hookOrderState]) {
			a.State().events <- "after_stop"
		})

		OnMessage(idle, func(a *StartedAgent[hookOrderState], msg pingMsg, env Envelope) {
			a.State().events <- "message"
		})

		return Activate(idle)
	})
	require.NoError(t, err)

	require.NoError(t, handle.Emit(context.Background(), pingMsg{value: 1}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.True(t, handle.Stop(ctx).Await(ctx).IsOk())

	var order []string
	for range 5 {
		order = append(order, requireWithin(t, events, time.Second, "missing lifecycle event"))
	}

	require.Equal(t, []string{
		"before_start", "after_start", "message", "before_stop", "after_stop",
	}, order)
}

// replaceState tracks which of two reactors for the same message type ran.
type replaceState struct {
	which chan string
}

func TestReactorReplacementKeepsOnlyLastRegistration(t *testing.T) {
	t.Parallel()

	sys := Launch(DefaultRuntimeConfig())
	defer sys.Shutdown(context.Background())

	which := make(chan string, 4)

	handle, err := SpawnAgent(sys, AgentConfig{Id: "replace"}, func(idle *IdleAgent[replaceState]) *AgentHandle {
		idle.State().which = which

		OnMessage(idle, func(a *StartedAgent[replaceState], msg pingMsg, env Envelope) {
			a.State().which <- "first"
		})
		OnMessage(idle, func(a *StartedAgent[replaceState], msg pingMsg, env Envelope) {
			a.State().which <- "second"
		})

		return Activate(idle)
	})
	require.NoError(t, err)

	require.NoError(t, handle.Emit(context.Background(), pingMsg{value: 1}))

	v := requireWithin(t, which, time.Second, "replaced reactor never ran")
	require.Equal(t, "second", v)

	select {
	case extra := <-which:
		t.Fatalf("unexpected extra dispatch: %s", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

// unknownMsg has no reactor registered anywhere in this file's tests.
type unknownMsg struct {
	BaseMessage
}

func (unknownMsg) MessageType() string { return "Unknown" }

// dropState is only used to prove an agent survives an unmatched message and
// still processes the next one.
type dropState struct {
	received chan int
}

func TestUnmatchedMessageIsDroppedNotFatal(t *testing.T) {
	t.Parallel()

	sys := Launch(DefaultRuntimeConfig())
	defer sys.Shutdown(context.Background())

	received := make(chan int, 4)

	handle, err := SpawnAgent(sys, AgentConfig{Id: "dropper"}, func(idle *IdleAgent[dropState]) *AgentHandle {
		idle.State().received = received

		OnMessage(idle, func(a *StartedAgent[dropState], msg pingMsg, env Envelope) {
			a.State().received <- msg.value
		})

		return Activate(idle)
	})
	require.NoError(t, err)

	require.NoError(t, handle.Emit(context.Background(), unknownMsg{}))
	require.NoError(t, handle.Emit(context.Background(), pingMsg{value: 42}))

	v := requireWithin(t, received, time.Second, "agent never processed the message after the drop")
	require.Equal(t, 42, v)
}
