package loki

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStream(t *testing.T) {
	ts := time.Unix(1700000000, 123)
	s := NewStream(map[string]string{"level": "ERROR"}, ts, "boom")

	assert.Equal(t, map[string]string{"level": "ERROR"}, s.Labels)
	assert.Equal(t, [][2]string{{"1700000000000000123", "boom"}}, s.Values)

	b, err := json.Marshal(PushRequest{Streams: []Stream{s}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"streams":[{"stream":{"level":"ERROR"},"values":[["1700000000000000123","boom"]]}]}`, string(b))
}

func TestClient_Push(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotType string
		gotBody PushRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(time.Second)
	stream := NewStream(map[string]string{"service": "billing"}, time.Now(), "line")
	err := c.Push(context.Background(), Target{Host: srv.URL + "/", Token: "secret"}, stream)
	require.NoError(t, err)

	assert.Equal(t, PushPath, gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "application/json", gotType)
	require.Len(t, gotBody.Streams, 1)
	assert.Equal(t, "billing", gotBody.Streams[0].Labels["service"])
	assert.Equal(t, "line", gotBody.Streams[0].Values[0][1])
}

func TestClient_PushWithoutToken(t *testing.T) {
	var hasAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(time.Second).Push(context.Background(), Target{Host: srv.URL}))
	assert.False(t, hasAuth)
}

func TestClient_PushErrors(t *testing.T) {
	t.Run("no host", func(t *testing.T) {
		err := NewClient(time.Second).Push(context.Background(), Target{Host: " "})
		require.Error(t, err)
	})

	t.Run("rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
		}))
		defer srv.Close()

		err := NewClient(time.Second).Push(context.Background(), Target{Host: srv.URL})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("unreachable", func(t *testing.T) {
		err := NewClient(time.Second).Push(context.Background(), Target{Host: "http://127.0.0.1:1"})
		require.Error(t, err)
	})

	t.Run("context cancelled", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := (&Client{}).Push(ctx, Target{Host: srv.URL})
		require.Error(t, err)
	})
}
