package ctxlog

import "context"

// Sink receives every record that passed the severity gate.
type Sink interface {
	Write(rec *Record)
}

// Forwarder ships a record to a remote log aggregator. It is called from a
// detached goroutine; returned errors are reported as diagnostics only.
type Forwarder interface {
	Forward(ctx context.Context, settings Settings, rec *Record) error
}
