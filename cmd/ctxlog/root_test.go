package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Station-Manager/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{ctxlog.EnvRemoteToken, ctxlog.EnvRemoteService, ctxlog.EnvAppEnv} {
		t.Setenv(key, "")
	}
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestStatusCommand(t *testing.T) {
	t.Setenv(ctxlog.EnvLogLevel, "5")
	out, errOut, err := run(t, "status", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "Logging Status")
	assert.Contains(t, errOut, "This is an error")
	assert.NotContains(t, errOut, "This is a warning")
}

func TestEmitCommand(t *testing.T) {
	t.Run("params", func(t *testing.T) {
		t.Setenv(ctxlog.EnvLogLevel, "1")
		out, _, err := run(t, "emit", "hello", "--no-color", "--context", "Cli",
			"--call-context", "job", "--level", "debug", "--params", `{"id":42}`)
		require.NoError(t, err)
		assert.Equal(t, `[Cli][job] hello {"id":42}`+"\n", out)
	})

	t.Run("positional args", func(t *testing.T) {
		t.Setenv(ctxlog.EnvLogLevel, "3")
		_, errOut, err := run(t, "emit", "User {0} has {1} points", "--no-color",
			"--level", "error", "--arg", "John", "--arg", "100")
		require.NoError(t, err)
		assert.Equal(t, "User John has 100 points\n", errOut)
	})

	t.Run("gated", func(t *testing.T) {
		t.Setenv(ctxlog.EnvLogLevel, "5")
		out, errOut, err := run(t, "emit", "quiet", "--level", "info")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Empty(t, errOut)
	})

	t.Run("bad level", func(t *testing.T) {
		_, _, err := run(t, "emit", "x", "--level", "loud")
		require.Error(t, err)
	})

	t.Run("bad params", func(t *testing.T) {
		_, _, err := run(t, "emit", "x", "--params", "{")
		require.Error(t, err)
	})

	t.Run("params and args are exclusive", func(t *testing.T) {
		_, _, err := run(t, "emit", "x", "--params", "1", "--arg", "a")
		require.Error(t, err)
	})
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logging.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))
	t.Setenv(ctxlog.EnvLogLevel, "")
	require.NoError(t, os.Unsetenv(ctxlog.EnvLogLevel))

	_, errOut, err := run(t, "emit", "disk", "--config", path, "--no-color", "--level", "warn")
	require.NoError(t, err)
	assert.Equal(t, "disk\n", errOut)

	out, _, err := run(t, "emit", "chatty", "--config", path, "--level", "info")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, _, err = run(t, "emit", "x", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
