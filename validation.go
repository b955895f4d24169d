package ctxlog

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

// Config is the static part of the logging setup, fixed at Initialize.
type Config struct {
	// NoColor disables ANSI colours on the console and in diagnostics.
	NoColor bool

	// FileLogging mirrors every emitted line as JSON into a rolling file
	// under WorkingDir/RelLogFileDir.
	FileLogging       bool
	RelLogFileDir     string `validate:"required_if=FileLogging true"`
	LogFileName       string `validate:"omitempty,excludesall=/\\"`
	LogFileMaxSizeMB  int    `validate:"gte=0,lte=10240"`
	LogFileMaxBackups int    `validate:"gte=0"`
	LogFileMaxAgeDays int    `validate:"gte=0"`
	LogFileCompress   bool

	// RemoteTimeoutMS bounds a single forward to the remote sink.
	RemoteTimeoutMS int `validate:"gte=0,lte=60000"`
	// ShutdownTimeoutMS bounds how long Close waits for in-flight forwards.
	ShutdownTimeoutMS int `validate:"gte=0,lte=60000"`
}

// DefaultConfig returns console-only logging with colours.
func DefaultConfig() Config {
	return Config{
		RelLogFileDir:     "logs",
		LogFileMaxSizeMB:  10,
		LogFileMaxBackups: 3,
		LogFileMaxAgeDays: 7,
		RemoteTimeoutMS:   defaultRemoteTimeoutMS,
		ShutdownTimeoutMS: defaultShutdownTimeoutMS,
	}
}

var validate *validator.Validate
var once sync.Once

func validateConfig(cfg *Config) error {
	const op errors.Op = "ctxlog.validateConfig"
	if cfg == nil {
		return errors.New(op).Msg(errMsgNilConfig)
	}

	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if err := validate.Struct(cfg); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	if cfg.FileLogging && !safeRelDir(cfg.RelLogFileDir) {
		return errors.New(op).Msg(errMsgUnsafeLogDir)
	}

	return nil
}

func safeRelDir(dir string) bool {
	if filepath.IsAbs(dir) {
		return false
	}
	clean := filepath.Clean(dir)
	return clean != ".." && !strings.HasPrefix(clean, ".."+string(filepath.Separator))
}
