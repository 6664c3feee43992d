package replica

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/Dosada05/league-portal/broadcast"
)

const (
	handshakeTimeout = 10 * time.Second
	readWait         = 90 * time.Second
	maxFrameSize     = 16 << 20
)

// Handler receives the subscription's lifecycle. OnConnect runs alongside
// the read loop of a new connection, so it may overlap OnMessage calls; its
// context ends with the connection. OnDisconnect runs once OnConnect has
// returned.
type Handler interface {
	OnConnect(ctx context.Context)
	OnMessage(msg broadcast.Message)
	OnDisconnect(err error)
}

// Subscriber holds one websocket subscription open for as long as its
// context lives, reconnecting with jittered exponential backoff.
type Subscriber struct {
	url       string
	dialer    *websocket.Dialer
	minDelay  time.Duration
	maxDelay  time.Duration
	connected atomic.Bool
	logger    *slog.Logger
}

func NewSubscriber(url string, minDelay, maxDelay time.Duration, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		url: url,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		minDelay: minDelay,
		maxDelay: maxDelay,
		logger:   logger.With("component", "replica_subscriber"),
	}
}

func (s *Subscriber) Connected() bool {
	return s.connected.Load()
}

func (s *Subscriber) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.minDelay
	b.MaxInterval = s.maxDelay
	b.RandomizationFactor = 0.5
	b.Multiplier = 2
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// Run returns only when ctx is done.
func (s *Subscriber) Run(ctx context.Context, h Handler) error {
	b := s.newBackOff()
	for {
		established, err := s.session(ctx, h)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if established {
			b.Reset()
		}
		delay := b.NextBackOff()
		s.logger.Warn("subscription lost, retrying", "error", err, "retry_in", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// session dials once and reads until the connection breaks. It reports
// whether the handshake succeeded.
func (s *Subscriber) session(ctx context.Context, h Handler) (bool, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return false, &TransportError{Op: "subscribe", Err: err}
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	conn.SetReadLimit(maxFrameSize)
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	s.connected.Store(true)
	s.logger.Info("subscription established", "url", s.url)

	// Frames are read while the handler refetches.
	connCtx, cancel := context.WithCancel(ctx)
	refetched := make(chan struct{})
	go func() {
		defer close(refetched)
		h.OnConnect(connCtx)
	}()

	err = s.read(conn, h)
	s.connected.Store(false)
	cancel()
	<-refetched
	h.OnDisconnect(err)
	return true, err
}

func (s *Subscriber) read(conn *websocket.Conn, h Handler) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return &TransportError{Op: "read", Err: err}
		}
		conn.SetReadDeadline(time.Now().Add(readWait))

		msg, err := broadcast.Decode(data)
		if err != nil {
			s.logger.Warn("undecodable frame skipped", "error", err)
			continue
		}
		h.OnMessage(msg)
	}
}
