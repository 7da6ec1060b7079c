package actor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRuntimeConfigParsesYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")

	contents := "mailbox_capacity: 64\nchild_stop_timeout: 2s\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := LoadRuntimeConfig(path)
	require.NoError(t, err)

	require.Equal(t, 64, cfg.MailboxCapacity)
	require.Equal(t, 2*time.Second, cfg.ChildStopTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRuntimeConfigFallsBackOnMissingFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.yaml")

	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o600))

	cfg, err := LoadRuntimeConfig(path)
	require.NoError(t, err)

	require.Equal(t, DefaultMailboxCapacity, cfg.MailboxCapacity)
	require.Equal(t, childStopTimeout, cfg.ChildStopTimeout)
	require.Equal(t, "warn", cfg.LogLevel)
}
