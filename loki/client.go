package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Station-Manager/errors"
)

// PushPath is appended to the target host.
const PushPath = "/loki/api/v1/push"

const (
	errMsgNoHost    = "Loki host is not set."
	errMsgMarshal   = "Failed to marshal push request."
	errMsgRequest   = "Failed to build push request."
	errMsgSend      = "Failed to send push request."
	errMsgRejected  = "Push request rejected"
	maxErrBodyBytes = 512
)

// Target identifies the endpoint and credentials for a push.
type Target struct {
	Host  string
	Token string
}

// Stream is a labelled batch of [timestamp, line] pairs.
type Stream struct {
	Labels map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// PushRequest is the body of a push call.
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// NewStream builds a single-line stream stamped with ts in nanoseconds.
func NewStream(labels map[string]string, ts time.Time, line string) Stream {
	return Stream{
		Labels: labels,
		Values: [][2]string{{strconv.FormatInt(ts.UnixNano(), 10), line}},
	}
}

// Client posts push requests.
type Client struct {
	HTTPClient *http.Client
}

// NewClient returns a client whose requests give up after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{HTTPClient: &http.Client{Timeout: timeout}}
}

func (c *Client) httpClient() *http.Client {
	if c == nil || c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

// Push sends streams to target in one request. Any non-2xx answer is an error.
func (c *Client) Push(ctx context.Context, target Target, streams ...Stream) error {
	const op errors.Op = "loki.Client.Push"
	if strings.TrimSpace(target.Host) == "" {
		return errors.New(op).Msg(errMsgNoHost)
	}

	body, err := json.Marshal(PushRequest{Streams: streams})
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgMarshal)
	}

	url := strings.TrimRight(target.Host, "/") + PushPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgRequest)
	}
	req.Header.Set("Content-Type", "application/json")
	if target.Token != "" {
		req.Header.Set("Authorization", "Bearer "+target.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return errors.New(op).Err(err).Msg(errMsgSend)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBodyBytes))
		return errors.New(op).Msg(fmt.Sprintf("%s: status %d: %s", errMsgRejected, resp.StatusCode, strings.TrimSpace(string(snippet))))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
