// Package ctxlog provides a small, severity-gated console logger with
// bracketed context tags, optional rolling file output and best-effort
// forwarding to a Grafana Loki push endpoint.
//
// Key features
//   - Five ordered severities (VERBOSE < DEBUG < INFO < WARN < ERROR) gated by
//     a minimum level read from a Provider on every call, so a changed
//     LOG_LEVEL takes effect without restarting
//   - Instance context bound at construction plus per-call context, rendered
//     as coloured bracket groups: [Service][Worker][job][42]
//   - Structured params passed through next to the text line, never
//     interpolated into it
//   - Legacy positional templates ("User {0} has {1} points") via the *Args
//     methods
//   - Fire-and-forget remote forwarding that can never fail the caller
//
// Typical usage
//
//	svc := &ctxlog.Service{Provider: ctxlog.EnvProvider{}}
//	if err := svc.Initialize(); err != nil { panic(err) }
//	defer svc.Close()
//
//	log := svc.New("Billing", "Invoices")
//	log.Info("invoice created", ctxlog.WithContext("job", "42"), ctxlog.WithParams(inv))
//	log.WarnArgs("User {0} has {1} points", "John", 100)
//
// For one-off use the package-level New returns a logger bound to a default
// service reading its settings from the environment.
package ctxlog
