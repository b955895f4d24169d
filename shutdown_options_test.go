package ctxlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Verifies Close() waits up to the timeout when a forward never finishes,
// then warns and returns.
func TestCloseTimeoutWaitGroup(t *testing.T) {
	fwd := newBlockingForwarder()
	env := newTestEnv(t, remoteSettings(SeverityInfo, "http://unused"), noColor, func(s *Service) {
		s.Forwarder = fwd
		s.Config.ShutdownTimeoutMS = 50
		s.Config.RemoteTimeoutMS = 60000
	})
	env.svc.New().Error("stuck")
	<-fwd.started

	start := time.Now()
	require.NoError(t, env.svc.Close())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, int64(elapsed/time.Millisecond), int64(50))
	assert.Contains(t, env.diag.String(), diagMsgShutdownTimeout)
	assert.Equal(t, int64(1), env.svc.InFlight())

	close(fwd.release)
}

// Verifies the remote timeout cancels a slow forward.
func TestRemoteTimeout(t *testing.T) {
	fwd := newBlockingForwarder()
	env := newTestEnv(t, remoteSettings(SeverityInfo, "http://unused"), noColor, func(s *Service) {
		s.Forwarder = fwd
		s.Config.RemoteTimeoutMS = 20
	})
	env.svc.New().Error("slow")
	require.NoError(t, env.svc.Close())

	assert.Equal(t, 0, fwd.Done())
	assert.Contains(t, env.diag.String(), diagMsgForwardFailed)
	assert.NotContains(t, env.diag.String(), diagMsgShutdownTimeout)
}

// Verifies file writer options are plumbed.
func TestWriterOptions(t *testing.T) {
	env := newTestEnv(t, settingsAt(SeverityInfo), func(s *Service) {
		s.Config.FileLogging = true
		s.Config.LogFileCompress = true
		s.Config.LogFileMaxSizeMB = 5
		s.Config.LogFileMaxBackups = 2
		s.Config.LogFileMaxAgeDays = 1
	})

	require.NotNil(t, env.svc.fileWriter)
	assert.True(t, env.svc.fileWriter.Compress)
	assert.Equal(t, 5, env.svc.fileWriter.MaxSize)
	assert.Equal(t, 2, env.svc.fileWriter.MaxBackups)
	assert.Equal(t, 1, env.svc.fileWriter.MaxAge)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"file logging with dir", func(c *Config) { c.FileLogging = true }, false},
		{"file logging nested dir", func(c *Config) { c.FileLogging = true; c.RelLogFileDir = "var/logs" }, false},
		{"file logging without dir", func(c *Config) { c.FileLogging = true; c.RelLogFileDir = "" }, true},
		{"absolute dir", func(c *Config) { c.FileLogging = true; c.RelLogFileDir = "/var/log" }, true},
		{"escaping dir", func(c *Config) { c.FileLogging = true; c.RelLogFileDir = "a/../../b" }, true},
		{"unsafe dir ignored without file logging", func(c *Config) { c.RelLogFileDir = "/var/log" }, false},
		{"file name with separator", func(c *Config) { c.LogFileName = "a/b" }, true},
		{"negative backups", func(c *Config) { c.LogFileMaxBackups = -1 }, true},
		{"remote timeout too large", func(c *Config) { c.RemoteTimeoutMS = 60001 }, true},
		{"shutdown timeout negative", func(c *Config) { c.ShutdownTimeoutMS = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := validateConfig(&cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Error(t, validateConfig(nil))
}

func TestTimeoutDefaults(t *testing.T) {
	svc := &Service{Config: &Config{}}
	assert.Equal(t, defaultRemoteTimeoutMS*time.Millisecond, svc.remoteTimeout())
	assert.Equal(t, defaultShutdownTimeoutMS*time.Millisecond, svc.shutdownTimeout())

	svc.Config.RemoteTimeoutMS = 100
	svc.Config.ShutdownTimeoutMS = 200
	assert.Equal(t, 100*time.Millisecond, svc.remoteTimeout())
	assert.Equal(t, 200*time.Millisecond, svc.shutdownTimeout())
}
