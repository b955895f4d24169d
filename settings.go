package ctxlog

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"go.uber.org/atomic"
)

// Settings is the runtime configuration consulted on every log call.
type Settings struct {
	// Level is the minimum severity that is emitted.
	Level Severity
	// Environment enables Table output when it names a development setup.
	Environment string

	RemoteToken   string
	RemoteService string
	RemoteHost    string
	// RemoteIgnore holds message fragments that are never forwarded. A nil
	// slice means the built-in list; use an empty slice to forward everything.
	RemoteIgnore []string
}

// DefaultSettings returns INFO level, no remote sink and the built-in
// ignore list.
func DefaultSettings() Settings {
	return Settings{
		Level:        DefaultSeverity,
		RemoteIgnore: append([]string(nil), defaultRemoteIgnore...),
	}
}

// DevMode reports whether Environment names a development setup.
func (s Settings) DevMode() bool {
	switch strings.ToLower(strings.TrimSpace(s.Environment)) {
	case "development", "dev", "local":
		return true
	}
	return false
}

// RemoteEnabled reports whether both remote credentials are present.
func (s Settings) RemoteEnabled() bool {
	return s.RemoteToken != emptyString && s.RemoteService != emptyString
}

func (s Settings) normalize() Settings {
	if !s.Level.Valid() {
		s.Level = DefaultSeverity
	}
	if s.RemoteIgnore == nil {
		s.RemoteIgnore = defaultRemoteIgnore
	}
	return s
}

// ignored reports whether text contains one of the RemoteIgnore fragments.
func (s Settings) ignored(text string) bool {
	for _, frag := range s.RemoteIgnore {
		if frag != emptyString && strings.Contains(text, frag) {
			return true
		}
	}
	return false
}

// Provider supplies Settings. Loggers call it on every emission and never
// cache the result.
type Provider interface {
	Settings() Settings
}

// StaticProvider holds a Settings value that can be swapped at runtime.
type StaticProvider struct {
	current atomic.Pointer[Settings]
}

func NewStaticProvider(s Settings) *StaticProvider {
	p := &StaticProvider{}
	p.Set(s)
	return p
}

// Set replaces the settings seen by subsequent log calls.
func (p *StaticProvider) Set(s Settings) {
	p.current.Store(&s)
}

func (p *StaticProvider) Settings() Settings {
	if s := p.current.Load(); s != nil {
		return *s
	}
	return DefaultSettings()
}

// Environment variable names read by EnvProvider and FileProvider.
const (
	EnvLogLevel      = "LOG_LEVEL"
	EnvAppEnv        = "APP_ENV"
	EnvRemoteToken   = "GRAFANA_BEARER_TOKEN"
	EnvRemoteService = "GRAFANA_SERVICE_NAME"
	EnvRemoteHost    = "GRAFANA_HOST"
	EnvRemoteIgnore  = "LOG_REMOTE_IGNORE"
)

const (
	keyLogLevel      = "log_level"
	keyAppEnv        = "app_env"
	keyRemoteToken   = "grafana_bearer_token"
	keyRemoteService = "grafana_service_name"
	keyRemoteHost    = "grafana_host"
	keyRemoteIgnore  = "log_remote_ignore"
)

// envKey maps the recognised environment variables to koanf keys and
// drops everything else.
func envKey(name string) string {
	switch name {
	case EnvLogLevel, EnvAppEnv, EnvRemoteToken, EnvRemoteService, EnvRemoteHost, EnvRemoteIgnore:
		return strings.ToLower(name)
	}
	return emptyString
}

// EnvProvider reads Settings from the process environment on every call.
type EnvProvider struct{}

func (EnvProvider) Settings() Settings {
	k := koanf.New(".")
	if err := k.Load(env.Provider(emptyString, ".", envKey), nil); err != nil {
		return DefaultSettings()
	}
	return settingsFromKoanf(k)
}

func settingsFromKoanf(k *koanf.Koanf) Settings {
	s := DefaultSettings()
	if raw := stringValue(k, keyLogLevel); raw != emptyString {
		if lvl, err := ParseSeverity(raw); err == nil {
			s.Level = lvl
		}
	}
	s.Environment = stringValue(k, keyAppEnv)
	s.RemoteToken = stringValue(k, keyRemoteToken)
	s.RemoteService = stringValue(k, keyRemoteService)
	s.RemoteHost = strings.TrimRight(stringValue(k, keyRemoteHost), "/")
	if k.Exists(keyRemoteIgnore) {
		s.RemoteIgnore = listValue(k, keyRemoteIgnore)
	}
	return s
}

// stringValue renders scalars of any parsed type, so `log_level: 4` in YAML
// reads the same as LOG_LEVEL=4.
func stringValue(k *koanf.Koanf, key string) string {
	switch v := k.Get(key).(type) {
	case nil:
		return emptyString
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprint(v)
	}
}

// listValue accepts either a native list or a comma separated string.
func listValue(k *koanf.Koanf, key string) []string {
	if _, ok := k.Get(key).([]any); ok {
		return k.Strings(key)
	}
	out := []string{}
	for _, part := range strings.Split(stringValue(k, key), ",") {
		if part = strings.TrimSpace(part); part != emptyString {
			out = append(out, part)
		}
	}
	return out
}
