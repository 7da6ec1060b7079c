package actor

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/btcsuite/btclog/v2"
	"github.com/stretchr/testify/require"
)

// TestNewConsoleLoggerWritesRuntimeOutput exercises the
// NewConsoleLogger -> UseLoggerFromConfig chain against a live agent: once
// wired in, the package's own DebugS calls (here, the unmatched-message drop
// in wake) land in the writer passed to NewConsoleLogger.
func TestNewConsoleLoggerWritesRuntimeOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := NewConsoleLogger(&buf)
	UseLoggerFromConfig(logger, RuntimeConfig{LogLevel: "debug"})
	defer UseLogger(btclog.Disabled)

	sys := Launch(DefaultRuntimeConfig())
	defer sys.Shutdown(context.Background())

	handle, err := SpawnAgent(sys, AgentConfig{Id: "logged"}, func(idle *IdleAgent[dropState]) *AgentHandle {
		return Activate(idle)
	})
	require.NoError(t, err)

	require.NoError(t, handle.Emit(context.Background(), unknownMsg{}))

	require.Eventually(t, func() bool {
		return bytes.Contains(buf.Bytes(), []byte("Dropping message"))
	}, time.Second, 5*time.Millisecond, "console logger never observed the drop log line")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	handle.Stop(ctx).Await(ctx)
}
