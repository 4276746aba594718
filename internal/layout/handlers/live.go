package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"home-layout/internal/live"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Live Handler
// ============================================================

const heartbeatInterval = 15 * time.Second

type LiveHandler struct {
	store  live.StateStore
	hub    *live.Broadcaster
	logger *zap.Logger
}

func NewLiveHandler(store live.StateStore, hub *live.Broadcaster, logger *zap.Logger) *LiveHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveHandler{
		store:  store,
		hub:    hub,
		logger: logger.With(zap.String("component", "live_handler")),
	}
}

func (h *LiveHandler) Register(r fiber.Router) {
	g := r.Group("/live")
	g.Get("/rooms/:roomId", h.GetRoom)
	g.Get("/sensors/:sensorId", h.GetSensor)
	g.Get("/stream", h.Stream)
}

// GetRoom отдает последнее известное состояние комнаты.
func (h *LiveHandler) GetRoom(c fiber.Ctx) error {
	return h.snapshot(c, live.RoomKey(c.Params("roomId")))
}

func (h *LiveHandler) GetSensor(c fiber.Ctx) error {
	return h.snapshot(c, live.SensorKey(c.Params("sensorId")))
}

func (h *LiveHandler) snapshot(c fiber.Ctx, key string) error {
	fields, err := h.store.Get(c.Context(), key)
	if err != nil {
		h.logger.Error("live snapshot failed", zap.String("key", key), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "live state unavailable"})
	}
	return c.JSON(live.Update{Key: key, Fields: fields})
}

// Stream: SSE-поток применённых обновлений. ?key= фильтрует по префиксу ключа.
func (h *LiveHandler) Stream(c fiber.Ctx) error {
	prefix := c.Query("key")

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	ch := h.hub.Subscribe()
	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(ch)

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		if _, err := w.WriteString(": connected\n\n"); err != nil || w.Flush() != nil {
			return
		}

		for {
			select {
			case u, ok := <-ch:
				if !ok {
					return
				}
				if !strings.HasPrefix(u.Key, prefix) {
					continue
				}
				if err := writeEvent(w, u); err != nil {
					h.logger.Debug("sse client gone", zap.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil || w.Flush() != nil {
					return
				}
			}
		}
	})
}

func writeEvent(w *bufio.Writer, u live.Update) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: update\ndata: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}
