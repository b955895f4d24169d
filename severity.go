package ctxlog

import (
	"strconv"
	"strings"

	"github.com/Station-Manager/errors"
	"github.com/fatih/color"
)

// Severity is the ordered importance of a log line.
type Severity int

const (
	SeverityVerbose Severity = iota + 1
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

// DefaultSeverity is used whenever the configured threshold is missing or invalid.
const DefaultSeverity = SeverityInfo

func (s Severity) String() string {
	switch s {
	case SeverityVerbose:
		return "VERBOSE"
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether s is one of the five defined severities.
func (s Severity) Valid() bool {
	return s >= SeverityVerbose && s <= SeverityError
}

// streamLabel is the level label attached to remote streams. Existing
// dashboards query INFO lines as LOG.
func (s Severity) streamLabel() string {
	if s == SeverityInfo || !s.Valid() {
		return "LOG"
	}
	return s.String()
}

func (s Severity) colour() color.Attribute {
	switch s {
	case SeverityError:
		return color.FgRed
	case SeverityWarn:
		return color.FgYellow
	case SeverityDebug:
		return color.FgMagenta
	case SeverityVerbose:
		return color.FgCyan
	default:
		return color.FgGreen
	}
}

// ParseSeverity accepts a numeric level ("1".."5") or a case-insensitive
// name. "log" is an alias of info, "warning" of warn and "trace" of verbose.
func ParseSeverity(level string) (Severity, error) {
	const op errors.Op = "ctxlog.ParseSeverity"
	v := strings.ToLower(strings.TrimSpace(level))
	if n, err := strconv.Atoi(v); err == nil {
		if s := Severity(n); s.Valid() {
			return s, nil
		}
		return 0, errors.New(op).Msg(errMsgInvalidLevel + " " + level)
	}

	switch v {
	case "verbose", "trace":
		return SeverityVerbose, nil
	case "debug":
		return SeverityDebug, nil
	case "info", "log":
		return SeverityInfo, nil
	case "warn", "warning":
		return SeverityWarn, nil
	case "error":
		return SeverityError, nil
	}
	return 0, errors.New(op).Msg(errMsgInvalidLevel + " " + level)
}
