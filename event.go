package ctxlog

import "time"

// Record is a single log event. It is built, written to the sinks, handed
// to the forwarder and then dropped; nothing mutates it after emission.
type Record struct {
	Time     time.Time
	Severity Severity
	// Instance is the context bound to the logger, Call the per-call context.
	Instance []string
	Call     []string
	// Message is the value the caller passed; Text its rendering.
	Message any
	Text    string
	// Line is the fully formatted console line without a trailing newline.
	Line string

	Params     any
	HasParams  bool
	ParamsText string

	// RemoteText is the message as shipped to the remote sink.
	RemoteText string
}

// Context returns the instance context followed by the call context.
func (r *Record) Context() []string {
	out := make([]string, 0, len(r.Instance)+len(r.Call))
	out = append(out, r.Instance...)
	return append(out, r.Call...)
}

// Option customises a single log call.
type Option func(*callOptions)

type callOptions struct {
	context   []string
	params    any
	hasParams bool
}

// WithContext appends segments to the call context. Empty segments are dropped.
func WithContext(segments ...string) Option {
	return func(o *callOptions) {
		o.context = append(o.context, segments...)
	}
}

// WithParams attaches a structured companion to the line. A single value is
// passed through as is; several values are passed as a list.
func WithParams(values ...any) Option {
	return func(o *callOptions) {
		o.hasParams = true
		if len(values) == 1 {
			o.params = values[0]
			return
		}
		o.params = values
	}
}

func collectOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.context = cleanSegments(o.context)
	return o
}

// cleanSegments drops empty segments and returns nil when none remain.
func cleanSegments(segments []string) []string {
	var out []string
	for _, s := range segments {
		if s != emptyString {
			out = append(out, s)
		}
	}
	return out
}
