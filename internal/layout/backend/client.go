package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"home-layout/internal/layout/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ============================================================
// Home Backend Client
// ============================================================

// Client ходит в home-backend за раскладками этажей.
// Повторов нет: сохранение разовое, ошибка возвращается вызывающему.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

var (
	ErrUnauthorized = errors.New("backend rejected token")
	ErrForbidden    = errors.New("floor belongs to another user")
)

type errorBody struct {
	Error string `json:"error"`
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		logger: logger.With(zap.String("component", "backend_client")),
	}
}

// SaveLayout отправляет раскладку целиком: {layout, floorId}.
func (c *Client) SaveLayout(ctx context.Context, token, floorID string, rooms []models.Room) error {
	if rooms == nil {
		rooms = []models.Room{}
	}

	var apiErr errorBody
	resp, err := c.request(ctx, token).
		SetBody(models.LayoutPayload{Layout: rooms, FloorID: floorID}).
		SetError(&apiErr).
		Post("/layouts")
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	if resp.IsError() {
		return statusError("save layout", resp.StatusCode(), apiErr.Error)
	}

	c.logger.Debug("layout posted",
		zap.String("floor_id", floorID),
		zap.Int("rooms", len(rooms)),
		zap.Int("status", resp.StatusCode()),
	)
	return nil
}

// GetLayout загружает сохраненную раскладку этажа. 404 означает пустой этаж.
func (c *Client) GetLayout(ctx context.Context, token, floorID string) ([]models.Room, error) {
	var payload models.LayoutPayload
	var apiErr errorBody
	resp, err := c.request(ctx, token).
		SetPathParam("floorId", floorID).
		SetResult(&payload).
		SetError(&apiErr).
		Get("/layouts/{floorId}")
	if err != nil {
		return nil, fmt.Errorf("get layout: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return []models.Room{}, nil
	}
	if resp.IsError() {
		return nil, statusError("get layout", resp.StatusCode(), apiErr.Error)
	}
	if payload.Layout == nil {
		payload.Layout = []models.Room{}
	}
	return payload.Layout, nil
}

// Ping проверяет доступность backend (/health/live).
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.request(ctx, "").Get("/health/live")
	if err != nil {
		return fmt.Errorf("ping backend: %w", err)
	}
	if resp.IsError() {
		return statusError("ping backend", resp.StatusCode(), "")
	}
	return nil
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

func statusError(op string, status int, msg string) error {
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w: %s", op, ErrUnauthorized, msg)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w: %s", op, ErrForbidden, msg)
	}
	return fmt.Errorf("%s: backend status %d: %s", op, status, msg)
}
