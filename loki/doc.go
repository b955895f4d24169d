// Package loki pushes log lines to a Grafana Loki compatible endpoint using
// the JSON push API:
//
//	POST <host>/loki/api/v1/push
//	{"streams":[{"stream":{"level":"ERROR","service":"billing"},"values":[["<unix ns>","line"]]}]}
//
// The client is synchronous; callers decide how to detach and bound it.
package loki
