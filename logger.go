package ctxlog

import (
	"fmt"
	"strconv"
	"time"
)

// Logger emits lines tagged with a fixed instance context. It is cheap to
// create and safe for concurrent use. None of its methods return an error
// or panic: a failing log call is reported on the diagnostic writer and
// otherwise ignored.
type Logger struct {
	service *Service
	context []string
}

// Context returns a copy of the instance context.
func (l *Logger) Context() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.context...)
}

// With returns a Logger whose instance context is this one's followed by segments.
func (l *Logger) With(segments ...string) *Logger {
	if l == nil {
		return nil
	}
	ctx := make([]string, 0, len(l.context)+len(segments))
	ctx = append(ctx, l.context...)
	ctx = append(ctx, cleanSegments(segments)...)
	return &Logger{service: l.service, context: ctx}
}

// Error logs message at ERROR on the error stream.
func (l *Logger) Error(message any, opts ...Option) {
	l.emit(call{severity: SeverityError, message: message, opts: opts})
}

// Warn logs message at WARN on the error stream.
func (l *Logger) Warn(message any, opts ...Option) {
	l.emit(call{severity: SeverityWarn, message: message, opts: opts})
}

// Info logs message at INFO on the output stream.
func (l *Logger) Info(message any, opts ...Option) {
	l.emit(call{severity: SeverityInfo, message: message, opts: opts})
}

// Log is an alias of Info.
func (l *Logger) Log(message any, opts ...Option) {
	l.emit(call{severity: SeverityInfo, message: message, opts: opts})
}

// Debug logs message at DEBUG.
func (l *Logger) Debug(message any, opts ...Option) {
	l.emit(call{severity: SeverityDebug, message: message, opts: opts})
}

// Verbose logs message at VERBOSE, the lowest severity.
func (l *Logger) Verbose(message any, opts ...Option) {
	l.emit(call{severity: SeverityVerbose, message: message, opts: opts})
}

// Emit logs at an arbitrary severity. Invalid severities are treated as INFO.
func (l *Logger) Emit(severity Severity, message any, opts ...Option) {
	if !severity.Valid() {
		severity = SeverityInfo
	}
	l.emit(call{severity: severity, message: message, opts: opts})
}

// ErrorArgs replaces {0}, {1}, ... in message with args before logging.
// Placeholders without an argument are kept; surplus args are ignored.
func (l *Logger) ErrorArgs(message string, args ...any) {
	l.emit(call{severity: SeverityError, message: message, args: args, positional: true})
}

// WarnArgs is ErrorArgs at WARN.
func (l *Logger) WarnArgs(message string, args ...any) {
	l.emit(call{severity: SeverityWarn, message: message, args: args, positional: true})
}

// InfoArgs is ErrorArgs at INFO.
func (l *Logger) InfoArgs(message string, args ...any) {
	l.emit(call{severity: SeverityInfo, message: message, args: args, positional: true})
}

// DebugArgs is ErrorArgs at DEBUG.
func (l *Logger) DebugArgs(message string, args ...any) {
	l.emit(call{severity: SeverityDebug, message: message, args: args, positional: true})
}

// VerboseArgs is ErrorArgs at VERBOSE.
func (l *Logger) VerboseArgs(message string, args ...any) {
	l.emit(call{severity: SeverityVerbose, message: message, args: args, positional: true})
}

// Data logs `[key]=>json(value)` at VERBOSE.
//
// Deprecated: pass the value with WithParams instead.
func (l *Logger) Data(key string, value any) {
	s := l.active()
	if s == nil || SeverityVerbose < s.settings().Level {
		return
	}
	text, err := marshalJSON(value)
	if err != nil {
		l.reportUnserializable(diagMsgValueUnserializable, SeverityVerbose, err)
	}
	l.Verbose("[" + key + "]=>" + text)
}

// Status prints a sample line at every severity between two banners, so
// the effect of the current settings can be seen at a glance. Banners are
// always printed; every other line is gated as usual.
func (l *Logger) Status() {
	s := l.active()
	if s == nil {
		return
	}
	settings := s.settings()

	l.emit(call{severity: SeverityInfo, message: statusBannerStart, banner: true})
	l.Info("LOG_LEVEL=" + strconv.Itoa(int(settings.Level)))
	l.Error("This is an error")
	l.Warn("This is a warning")
	l.Log("This is a log")
	l.Debug("This is a debug")
	l.Verbose("This is a verbose")
	if settings.RemoteEnabled() {
		l.Info("Grafana logging is ENABLED with service name: " + settings.RemoteService)
	}
	l.emit(call{severity: SeverityInfo, message: statusBannerEnd, banner: true})
}

// Table prints rows as a table on standard output when the settings name a
// development environment, and does nothing otherwise.
func (l *Logger) Table(rows any) {
	s := l.active()
	if s == nil || !s.settings().DevMode() {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isInitialized.Load() {
		return
	}
	defer s.recoverDiagnostic(SeverityInfo)

	s.console.Print(renderTable(rows))
}

type call struct {
	severity   Severity
	message    any
	opts       []Option
	args       []any
	positional bool
	// banner lines bypass the gate and are not forwarded.
	banner bool
}

func (l *Logger) active() *Service {
	if l == nil || l.service == nil || !l.service.isInitialized.Load() {
		return nil
	}
	return l.service
}

func (l *Logger) emit(c call) {
	s := l.active()
	if s == nil {
		return
	}

	settings := s.settings()
	if !c.banner && c.severity < settings.Level {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isInitialized.Load() {
		return
	}
	defer s.recoverDiagnostic(c.severity)

	o := collectOptions(c.opts)
	rec := &Record{
		Time:     time.Now(),
		Severity: c.severity,
		Instance: l.context,
		Call:     o.context,
		Message:  c.message,
	}

	if c.positional {
		text, errs := substitute(renderMessage(c.message), c.args)
		for _, err := range errs {
			l.reportUnserializable(diagMsgValueUnserializable, c.severity, err)
		}
		rec.Text = text
		rec.RemoteText = text
	} else {
		rec.Text = renderMessage(c.message)
		rec.RemoteText = remoteText(c.message)
		if o.hasParams {
			rec.Params = o.params
			rec.HasParams = true
			rec.ParamsText = l.paramsText(o.params, c.severity)
		}
	}
	rec.Line = s.palette.formatLine(rec.Instance, rec.Call, rec.Severity, rec.Text)

	for _, sink := range s.sinks {
		sink.Write(rec)
	}
	s.metrics.events.WithLabelValues(rec.Severity.String()).Inc()

	if !c.banner && settings.RemoteEnabled() {
		s.forward(settings, rec)
	}
}

// paramsText prints string params verbatim and everything else as JSON.
func (l *Logger) paramsText(params any, sev Severity) string {
	if str, ok := params.(string); ok {
		return str
	}
	text, err := marshalJSON(params)
	if err != nil {
		l.reportUnserializable(diagMsgParamsUnserializable, sev, err)
	}
	return text
}

func (l *Logger) reportUnserializable(msg string, sev Severity, err error) {
	if l == nil || l.service == nil {
		return
	}
	l.service.diagnostic().Warn().
		Err(err).
		Str("severity", sev.String()).
		Strs("context", l.context).
		Msg(msg)
}

// recoverDiagnostic turns a panic raised while rendering (for example by a
// user Stringer) into a diagnostic line.
func (s *Service) recoverDiagnostic(sev Severity) {
	if r := recover(); r != nil {
		s.diagnostic().Error().
			Str("panic", fmt.Sprint(r)).
			Str("severity", sev.String()).
			Msg(diagMsgRenderPanic)
	}
}
