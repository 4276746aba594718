package live

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ============================================================
// WebSocket Subscriber
// ============================================================

const (
	minBackoff = 500 * time.Millisecond
	maxBackoff = 30 * time.Second
	// Maximum message size allowed from the backend.
	maxMessageSize = 1 << 20
)

// Subscriber читает live-канал backend и складывает обновления в StateStore.
// На constraint engine эти данные не влияют.
type Subscriber struct {
	url    string
	header http.Header
	store  StateStore
	hub    *Broadcaster
	dialer *websocket.Dialer
	logger *zap.Logger

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewSubscriber(url, token string, store StateStore, hub *Broadcaster, logger *zap.Logger) *Subscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return &Subscriber{
		url:        url,
		header:     header,
		store:      store,
		hub:        hub,
		dialer:     websocket.DefaultDialer,
		logger:     logger.With(zap.String("component", "live_subscriber")),
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
	}
}

// Run подключается и переподключается, пока ctx не завершен.
func (s *Subscriber) Run(ctx context.Context) error {
	backoff := s.minBackoff
	for {
		connected, err := s.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = s.minBackoff
		}
		s.logger.Warn("live channel disconnected", zap.Error(err), zap.Duration("retry_in", backoff))

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if backoff > s.maxBackoff {
			backoff = s.maxBackoff
		}
	}
}

// session обслуживает одно соединение до ошибки чтения.
func (s *Subscriber) session(ctx context.Context) (bool, error) {
	conn, _, err := s.dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", s.url, err)
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	s.logger.Info("live channel connected", zap.String("url", s.url))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// разблокирует ReadJSON
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return true, err
		}
		s.Handle(ctx, msg)
	}
}

// Handle применяет одно сообщение. Ошибки не фатальны: сообщение пропускается.
func (s *Subscriber) Handle(ctx context.Context, msg Message) {
	u, ok, err := Decode(msg)
	if err != nil {
		s.logger.Warn("bad live message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if !ok {
		s.logger.Debug("ignored live message", zap.String("type", msg.Type))
		return
	}

	if err := s.store.Apply(ctx, u); err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("apply live update", zap.String("key", u.Key), zap.Error(err))
		}
		return
	}
	if s.hub != nil {
		s.hub.Publish(u)
	}
}
