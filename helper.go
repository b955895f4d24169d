package ctxlog

import (
	stderrs "errors"
	"strings"

	smerrors "github.com/Station-Manager/errors"
	"github.com/rs/zerolog"
)

// zerologLevel maps a Severity onto the zerolog level used in file output.
func zerologLevel(s Severity) zerolog.Level {
	switch s {
	case SeverityVerbose:
		return zerolog.TraceLevel
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityWarn:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// buildErrorChain flattens err from outermost to innermost. ops holds the
// DetailedError op of each link, or "" for plain errors such as fmt.Errorf
// wrappers. Walking stops after
// 50 links or on a repeated plain message.
func buildErrorChain(err error) (chain []string, ops []string, root string, rootOp string) {
	const maxDepth = 50
	visited := 0
	seen := map[string]bool{}

	for err != nil && visited < maxDepth {
		visited++

		// AsDetailedError also matches through plain wrappers; only take the
		// detailed branch when the match is this link itself.
		if dErr, ok := smerrors.AsDetailedError(err); ok && dErr != nil && dErr.Error() == err.Error() {
			chain = append(chain, dErr.Error())
			ops = append(ops, string(dErr.Op()))
			err = dErr.Cause()
			continue
		}

		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		ops = append(ops, "")
		err = stderrs.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	if len(ops) > 0 {
		rootOp = ops[len(ops)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return strings.Join(chain, " -> ")
}

// withErrorChain adds err and its history to a diagnostic event.
func withErrorChain(e *zerolog.Event, err error) *zerolog.Event {
	e = e.Err(err)
	if err == nil {
		return e
	}
	chain, _, root, rootOp := buildErrorChain(err)
	if len(chain) > 1 {
		e = e.Str("error_root", root).Str("error_history", joinChain(chain))
	}
	if rootOp != emptyString {
		e = e.Str("error_root_op", rootOp)
	}
	return e
}
