package actor

import (
	"context"
	"testing"
	"time"

	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// asyncState records the order in which two consecutively emitted pingMsg
// values finish their (artificially staggered) async reactor.
type asyncState struct {
	order chan int
}

func TestOnMessageAsyncSerializesDispatch(t *testing.T) {
	t.Parallel()

	sys := Launch(DefaultRuntimeConfig())
	defer sys.Shutdown(context.Background())

	order := make(chan int, 4)

	handle, err := SpawnAgent(sys, AgentConfig{Id: "async"}, func(idle *IdleAgent[asyncState]) *AgentHandle {
		idle.State().order = order

		OnMessageAsync(idle, func(ctx context.Context, a *StartedAgent[asyncState], msg pingMsg, env Envelope) Future[struct{}] {
			p := NewPromise[struct{}]()

			go func() {
				if msg.value == 1 {
					time.Sleep(30 * time.Millisecond)
				}

				a.State().order <- msg.value
				p.Complete(fn.Ok(struct{}{}))
			}()

			return p.Future()
		})

		return Activate(idle)
	})
	require.NoError(t, err)

	// Message 1 sleeps longer inside its own FutureReactor than message 2,
	// but the drain loop awaits each FutureReactor to completion before
	// dequeuing the next envelope, so the reported order must still be 1
	// before 2.
	require.NoError(t, handle.Emit(context.Background(), pingMsg{value: 1}))
	require.NoError(t, handle.Emit(context.Background(), pingMsg{value: 2}))

	first := requireWithin(t, order, time.Second, "first async reactor never completed")
	second := requireWithin(t, order, time.Second, "second async reactor never completed")

	require.Equal(t, []int{1, 2}, []int{first, second})
}

// panicState is used to prove a panicking MessageReactor doesn't take the
// whole drain loop down with it.
type panicState struct {
	received chan int
}

func TestDispatchRecoversFromReactorPanic(t *testing.T) {
	t.Parallel()

	sys := Launch(DefaultRuntimeConfig())
	defer sys.Shutdown(context.Background())

	received := make(chan int, 4)

	handle, err := SpawnAgent(sys, AgentConfig{Id: "panicker"}, func(idle *IdleAgent[panicState]) *AgentHandle {
		idle.State().received = received

		OnMessage(idle, func(a *StartedAgent[panicState], msg pingMsg, env Envelope) {
			if msg.value == 0 {
				panic("boom")
			}

			a.State().received <- msg.value
		})

		return Activate(idle)
	})
	require.NoError(t, err)

	require.NoError(t, handle.Emit(context.Background(), pingMsg{value: 0}))
	require.NoError(t, handle.Emit(context.Background(), pingMsg{value: 9}))

	v := requireWithin(t, received, time.Second, "agent never recovered to process the next message")
	require.Equal(t, 9, v)
}
