package ctxlog

import (
	"context"
	"fmt"
	"time"

	"github.com/Station-Manager/ctxlog/loki"
)

// lokiForwarder adapts loki.Client to Forwarder.
type lokiForwarder struct {
	client *loki.Client
}

// NewLokiForwarder returns the default Forwarder, pushing one stream per
// record to <RemoteHost>/loki/api/v1/push.
func NewLokiForwarder(timeout time.Duration) Forwarder {
	return &lokiForwarder{client: loki.NewClient(timeout)}
}

func (f *lokiForwarder) Forward(ctx context.Context, settings Settings, rec *Record) error {
	labels := map[string]string{
		"level":   rec.Severity.streamLabel(),
		"context": joinContext(rec.Context()),
		"service": settings.RemoteService,
	}
	target := loki.Target{Host: settings.RemoteHost, Token: settings.RemoteToken}
	return f.client.Push(ctx, target, loki.NewStream(labels, rec.Time, rec.RemoteText))
}

// forward dispatches rec to the forwarder on a detached goroutine tracked
// by the service wait group. Callers must hold s.mu for reading so Close
// cannot start waiting between the check and wg.Add.
func (s *Service) forward(settings Settings, rec *Record) {
	if settings.ignored(rec.RemoteText) {
		s.metrics.skipped.Inc()
		return
	}

	fwd := s.Forwarder
	timeout := s.remoteTimeout()

	s.wg.Add(1)
	s.inflight.Inc()
	s.metrics.inflight.Inc()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.metrics.failures.Inc()
				s.diagnostic().Error().Str("panic", fmt.Sprint(r)).Msg(diagMsgForwardPanic)
			}
			s.metrics.inflight.Dec()
			s.inflight.Dec()
			s.wg.Done()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := fwd.Forward(ctx, settings, rec); err != nil {
			s.metrics.failures.Inc()
			withErrorChain(s.diagnostic().Error(), err).
				Str("severity", rec.Severity.String()).
				Msg(diagMsgForwardFailed)
			return
		}

		s.metrics.forwarded.Inc()
		if settings.Level <= SeverityVerbose {
			s.diagnostic().Debug().Str("severity", rec.Severity.String()).Msg(diagMsgRemoteQueued)
		}
	}()
}
