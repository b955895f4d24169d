package ctxlog

import (
	"path/filepath"
	"strings"

	"github.com/Station-Manager/errors"
	koanfjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"go.uber.org/atomic"
)

// fileSettings mirrors the keys accepted in a settings file.
type fileSettings struct {
	LogLevel      string `koanf:"log_level"`
	AppEnv        string `koanf:"app_env"`
	RemoteToken   string `koanf:"grafana_bearer_token"`
	RemoteService string `koanf:"grafana_service_name"`
	RemoteHost    string `koanf:"grafana_host"`
}

// FileProvider loads Settings from a YAML or JSON file, overlaid with the
// environment variables EnvProvider reads. The result is cached until
// Reload is called.
type FileProvider struct {
	Path    string
	current atomic.Pointer[Settings]
}

// NewFileProvider loads path once and returns the provider.
func NewFileProvider(path string) (*FileProvider, error) {
	const op errors.Op = "ctxlog.NewFileProvider"
	p := &FileProvider{Path: path}
	if err := p.Reload(); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgLoadSettings)
	}
	return p, nil
}

// Reload re-reads the file and the environment. On error the previously
// loaded settings stay in effect.
func (p *FileProvider) Reload() error {
	const op errors.Op = "ctxlog.FileProvider.Reload"

	defaults := fileSettings{LogLevel: DefaultSeverity.String()}
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return errors.New(op).Err(err).Msg(errMsgLoadSettings)
	}

	var parser koanf.Parser = yaml.Parser()
	if strings.EqualFold(filepath.Ext(p.Path), ".json") {
		parser = koanfjson.Parser()
	}
	if err := k.Load(file.Provider(p.Path), parser); err != nil {
		return errors.New(op).Err(err).Msg(errMsgLoadSettings)
	}
	if err := k.Load(env.Provider(emptyString, ".", envKey), nil); err != nil {
		return errors.New(op).Err(err).Msg(errMsgLoadSettings)
	}

	s := settingsFromKoanf(k)
	p.current.Store(&s)
	return nil
}

func (p *FileProvider) Settings() Settings {
	if s := p.current.Load(); s != nil {
		return *s
	}
	return DefaultSettings()
}
