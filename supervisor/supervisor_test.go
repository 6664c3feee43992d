package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
)

type fakeHTTPServer struct {
	listenErr error
	shutdowns atomic.Int32
	stopCh    chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{stopCh: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopCh
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	close(f.stopCh)
	return nil
}

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*FuncService)(nil)
)

func TestHTTPServerService_ShutsDownOnCancel(t *testing.T) {
	server := newFakeHTTPServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return")
	}
	assert.Equal(t, int32(1), server.shutdowns.Load())
}

func TestHTTPServerService_ListenError(t *testing.T) {
	server := newFakeHTTPServer()
	server.listenErr = errors.New("address in use")

	err := NewHTTPServerService(server, 0).Serve(context.Background())
	assert.ErrorContains(t, err, "address in use")
}

func TestFuncService_ReportsEarlyReturn(t *testing.T) {
	svc := NewFuncService("broadcast-hub", func(context.Context) error { return nil })
	assert.ErrorContains(t, svc.Serve(context.Background()), "broadcast-hub stopped unexpectedly")
	assert.Equal(t, "broadcast-hub", svc.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.Serve(ctx), context.Canceled)
}

func TestTree_RestartsFailedService(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tree := NewTree("test", logger, TreeConfig{FailureBackoff: 10 * time.Millisecond})

	var runs atomic.Int32
	tree.AddCore(NewFuncService("flaky", func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("first run fails")
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}
}
