package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveBlocking starts srv with a handler that holds each request until its
// context ends, and returns once one request is in flight.
func serveBlocking(t *testing.T, ctx context.Context) (*http.Server, <-chan error) {
	t.Helper()
	inFlight := make(chan struct{}, 1)
	srv := newHTTPServer(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inFlight <- struct{}{}
		<-r.Context().Done()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(lis)

	done := make(chan error, 1)
	go func() {
		resp, err := http.Get("http://" + lis.Addr().String() + "/pull")
		if err == nil {
			resp.Body.Close()
		}
		done <- err
	}()
	select {
	case <-inFlight:
	case <-time.After(5 * time.Second):
		t.Fatal("request never reached the handler")
	}
	return srv, done
}

func TestStopHTTPEndsLongPolls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv, done := serveBlocking(t, ctx)

	cancel()
	start := time.Now()
	require.NoError(t, stopHTTP(srv, 5*time.Second, slog.Disabled))
	assert.Less(t, time.Since(start), 4*time.Second)
	assert.NoError(t, <-done)
}

func TestStopHTTPTimeoutIsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv, done := serveBlocking(t, ctx)

	// The request context stays live, so only Close can end it.
	require.NoError(t, stopHTTP(srv, 50*time.Millisecond, slog.Disabled))
	<-done
}
