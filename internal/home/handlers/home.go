package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"home-layout/internal/home/models"
	"home-layout/internal/home/repository"
	"home-layout/internal/home/service"
	"home-layout/internal/layout/engine"
	layout "home-layout/internal/layout/models"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Home Handler
// ============================================================

type HomeHandler struct {
	repo     *repository.Repository
	sessions *service.SessionManager
	logger   *zap.Logger
}

func NewHomeHandler(repo *repository.Repository, sessions *service.SessionManager, logger *zap.Logger) *HomeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeHandler{
		repo:     repo,
		sessions: sessions,
		logger:   logger.With(zap.String("component", "home_handler")),
	}
}

func (h *HomeHandler) Register(r fiber.Router) {
	r.Post("/login", h.Login)
	r.Get("/users/:id", h.GetUser)
	r.Post("/layouts", h.SaveLayout)
	r.Get("/layouts/:floorId", h.GetLayout)
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login выдает bearer-токен по паре login/password.
func (h *HomeHandler) Login(c fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	var req loginRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if req.Login == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "login and password required"})
	}

	user, err := h.repo.GetByCredentials(c.Context(), req.Login, req.Password)
	if err != nil {
		h.logger.Info("login failed", zap.String("login", req.Login))
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	return c.JSON(loginResponse{
		Token: h.sessions.Issue(user.ID),
		User:  user,
	})
}

// GetUser возвращает данные пользователя (только свои).
func (h *HomeHandler) GetUser(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	targetID := c.Params("id")
	if targetID == "" || targetID != userID {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	user, err := h.repo.GetByID(c.Context(), targetID)
	if err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
	}
	return c.JSON(user)
}

// ============================================================
// Layouts
// ============================================================

// SaveLayout принимает {layout, floorId} и перезаписывает раскладку этажа.
func (h *HomeHandler) SaveLayout(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req layout.LayoutPayload
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	if strings.TrimSpace(req.FloorID) == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "floorId required"})
	}
	if err := engine.Validate(req.Layout); err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	ctx := c.Context()
	existing, err := h.repo.GetLayout(ctx, req.FloorID)
	switch {
	case err == nil && existing.OwnerID != userID:
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		h.logger.Error("read layout failed", zap.String("floor_id", req.FloorID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save layout"})
	}

	if err := h.repo.SaveLayout(ctx, req.FloorID, userID, req.Layout); err != nil {
		h.logger.Error("save layout failed", zap.String("floor_id", req.FloorID), zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save layout"})
	}

	h.logger.Info("layout saved",
		zap.String("floor_id", req.FloorID),
		zap.String("user_id", userID),
		zap.Int("rooms", len(req.Layout)),
	)
	return c.JSON(fiber.Map{"status": "saved", "floorId": req.FloorID, "rooms": len(req.Layout)})
}

func (h *HomeHandler) GetLayout(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	l, err := h.repo.GetLayout(c.Context(), c.Params("floorId"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "layout not found"})
	}
	if err != nil {
		h.logger.Error("read layout failed", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read layout"})
	}
	if l.OwnerID != userID {
		return c.Status(http.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}
	return c.JSON(l)
}

func (h *HomeHandler) authorize(c fiber.Ctx) (string, bool) {
	auth := c.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(auth, "Bearer ")
	return h.sessions.Resolve(token)
}
