package ctxlog

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Service owns the sinks, the forwarder and the settings provider shared by
// every Logger created from it.
type Service struct {
	// WorkingDir is the base for RelLogFileDir when file logging is enabled.
	WorkingDir string
	// Config defaults to DefaultConfig().
	Config *Config
	// Provider defaults to EnvProvider.
	Provider Provider

	// Stdout and Stderr default to os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// DiagnosticWriter receives the logger's own problems (failed forwards,
	// unserialisable params). Defaults to Stderr.
	DiagnosticWriter io.Writer

	// Forwarder defaults to the Loki forwarder.
	Forwarder Forwarder
	// Registerer, when set, exports the service metrics.
	Registerer prometheus.Registerer

	palette    *palette
	console    *Console
	sinks      []Sink
	fileWriter *lumberjack.Logger
	diag       atomic.Pointer[zerolog.Logger]
	metrics    *metrics

	isInitialized atomic.Bool
	mu            sync.RWMutex
	wg            sync.WaitGroup
	inflight      atomic.Int64
}

// Initialize validates the configuration and builds the sinks. Calling it
// again on an initialised service is a no-op.
func (s *Service) Initialize() error {
	const op errors.Op = "ctxlog.Service.Initialize"
	if s == nil {
		return errors.New(op).Msg(errMsgNilService)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isInitialized.Load() {
		return nil
	}

	if s.Config == nil {
		cfg := DefaultConfig()
		s.Config = &cfg
	}
	if err := validateConfig(s.Config); err != nil {
		return errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}

	if s.Provider == nil {
		s.Provider = EnvProvider{}
	}
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	if s.DiagnosticWriter == nil {
		s.DiagnosticWriter = s.Stderr
	}

	diag := zerolog.New(zerolog.ConsoleWriter{Out: s.DiagnosticWriter, NoColor: s.Config.NoColor}).
		With().Timestamp().Str("component", "ctxlog").Logger().
		Level(zerolog.DebugLevel)
	s.diag.Store(&diag)

	m, err := newMetrics(s.Registerer)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgMetrics)
	}
	s.metrics = m

	s.palette = newPalette(s.Config.NoColor)
	s.console = NewConsole(s.Stdout, s.Stderr)
	s.sinks = []Sink{s.console}

	if s.Config.FileLogging {
		fw, err := s.initializeRollingFileLogger()
		if err != nil {
			return errors.New(op).Err(err).Msg(errMsgLogDir)
		}
		s.fileWriter = fw
		s.sinks = append(s.sinks, newFileSink(fw))
	}

	if s.Forwarder == nil {
		s.Forwarder = NewLokiForwarder(s.remoteTimeout())
	}

	s.isInitialized.Store(true)
	return nil
}

// Close stops accepting log calls, waits up to ShutdownTimeoutMS for
// in-flight remote forwards and closes the log file. It is safe to call
// Close multiple times.
func (s *Service) Close() error {
	const op errors.Op = "ctxlog.Service.Close"
	if s == nil || !s.isInitialized.Load() {
		return nil
	}

	s.mu.Lock()
	if !s.isInitialized.Load() {
		s.mu.Unlock()
		return nil
	}
	s.isInitialized.Store(false)
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.shutdownTimeout()):
		s.diagnostic().Warn().
			Int64("in_flight", s.inflight.Load()).
			Msg(diagMsgShutdownTimeout)
	}

	if s.fileWriter != nil {
		if err := s.fileWriter.Close(); err != nil {
			return errors.New(op).Err(err).Msg(errMsgCloseFile)
		}
	}
	return nil
}

// InFlight returns the number of remote forwards not yet finished.
func (s *Service) InFlight() int64 {
	if s == nil {
		return 0
	}
	return s.inflight.Load()
}

// New returns a Logger whose lines are prefixed with the given context.
func (s *Service) New(context ...string) *Logger {
	return &Logger{service: s, context: cleanSegments(context)}
}

// settings reads the provider and normalises the result.
func (s *Service) settings() Settings {
	if s.Provider == nil {
		return DefaultSettings()
	}
	return s.Provider.Settings().normalize()
}

func (s *Service) diagnostic() *zerolog.Logger {
	if l := s.diag.Load(); l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

func (s *Service) remoteTimeout() time.Duration {
	if s.Config == nil || s.Config.RemoteTimeoutMS <= 0 {
		return defaultRemoteTimeoutMS * time.Millisecond
	}
	return time.Duration(s.Config.RemoteTimeoutMS) * time.Millisecond
}

func (s *Service) shutdownTimeout() time.Duration {
	if s.Config == nil || s.Config.ShutdownTimeoutMS <= 0 {
		return defaultShutdownTimeoutMS * time.Millisecond
	}
	return time.Duration(s.Config.ShutdownTimeoutMS) * time.Millisecond
}
