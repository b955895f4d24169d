package ctxlog

import (
	"fmt"
	"os"
	"sync"
)

var (
	defaultService *Service
	defaultOnce    sync.Once
)

// Default returns the process-wide service: EnvProvider settings, standard
// streams, no file output. It is initialised on first use and never closed.
func Default() *Service {
	defaultOnce.Do(func() {
		s := &Service{Provider: EnvProvider{}}
		if err := s.Initialize(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "ctxlog: default service:", err)
		}
		defaultService = s
	})
	return defaultService
}

// New returns a Logger on the default service bound to context.
func New(context ...string) *Logger {
	return Default().New(context...)
}
