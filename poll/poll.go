// Package poll repeats a call at a fixed interval until its result passes a
// validation function or the attempt budget runs out. Every attempt is
// logged at DEBUG through ctxlog; failures are logged at WARN.
package poll

import (
	"context"
	"encoding/json"
	stderrs "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Station-Manager/ctxlog"
	"github.com/Station-Manager/errors"
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 10
)

// ErrMaxAttempts is returned when no attempt produced a valid result.
var ErrMaxAttempts = stderrs.New("exceeded max attempts")

const (
	errMsgRequest = "Failed to build poll request."
	errMsgGet     = "Poll request failed."
	errMsgDecode  = "Failed to decode poll response."
	errMsgStatus  = "Poll request returned non-2xx status"
)

// Options tune a poll. The zero value polls every two seconds, ten times.
type Options struct {
	Interval    time.Duration
	MaxAttempts int
	// Domain and UUID are appended to the log context when set.
	Domain string
	UUID   string
	// Logger defaults to a ctxlog logger tagged [Poll].
	Logger *ctxlog.Logger
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Logger == nil {
		o.Logger = ctxlog.New("Poll")
	}
	return o
}

func (o Options) context(kind string) []string {
	ctx := []string{kind}
	if o.Domain != "" {
		ctx = append(ctx, o.Domain)
	}
	if o.UUID != "" {
		ctx = append(ctx, o.UUID)
	}
	return ctx
}

// Func calls fn until validate accepts its result. Errors from fn count as
// a failed attempt and are not passed to validate.
func Func[T any](ctx context.Context, validate func(T) bool, fn func(context.Context) (T, error), opts Options) (T, error) {
	return run(ctx, "function", validate, fn, opts)
}

// URL GETs url until validate accepts the decoded JSON body.
func URL[T any](ctx context.Context, validate func(T) bool, client *http.Client, url string, opts Options) (T, error) {
	if client == nil {
		client = http.DefaultClient
	}
	fetch := func(ctx context.Context) (T, error) {
		return getJSON[T](ctx, client, url)
	}
	return run(ctx, "url", validate, fetch, opts)
}

func run[T any](ctx context.Context, kind string, validate func(T) bool, fn func(context.Context) (T, error), opts Options) (T, error) {
	var zero T
	opts = opts.withDefaults()
	log := opts.Logger
	callCtx := opts.context(kind)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		log.Debug(fmt.Sprintf("#%d", attempt),
			ctxlog.WithContext(callCtx...),
			ctxlog.WithParams(map[string]any{
				"interval":     opts.Interval.String(),
				"max_attempts": opts.MaxAttempts,
				"attempt":      attempt,
			}))

		result, err := fn(ctx)
		if err != nil {
			log.Warn("POLL Error: "+err.Error(),
				ctxlog.WithContext(callCtx...),
				ctxlog.WithParams(map[string]any{"attempt": attempt, "error": err.Error()}))
		} else {
			log.Debug(fmt.Sprintf("#%d: Response", attempt),
				ctxlog.WithContext(callCtx...),
				ctxlog.WithParams(map[string]any{"attempt": attempt, "result": result}))
			if validate(result) {
				return result, nil
			}
		}

		if attempt >= opts.MaxAttempts {
			log.Warn("POLL Error: "+ErrMaxAttempts.Error(),
				ctxlog.WithContext(callCtx...),
				ctxlog.WithParams(map[string]any{"max_attempts": opts.MaxAttempts}))
			return zero, ErrMaxAttempts
		}

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

func getJSON[T any](ctx context.Context, client *http.Client, url string) (T, error) {
	const op errors.Op = "poll.getJSON"
	var out T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return out, errors.New(op).Err(err).Msg(errMsgRequest)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return out, errors.New(op).Err(err).Msg(errMsgGet)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return out, errors.New(op).Msg(fmt.Sprintf("%s: %d %s", errMsgStatus, resp.StatusCode, url))
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, errors.New(op).Err(err).Msg(errMsgDecode)
	}
	return out, nil
}
