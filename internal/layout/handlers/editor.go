package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"home-layout/internal/layout/backend"
	"home-layout/internal/layout/editor"
	"home-layout/internal/layout/engine"
	"home-layout/internal/layout/models"
	"home-layout/internal/layout/svg"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ============================================================
// Editor Handler
// ============================================================

// Backend: хранилище раскладок (home-сервис).
type Backend interface {
	editor.Saver
	editor.Loader
}

type EditorHandler struct {
	sessions *editor.Sessions
	backend  Backend
	logger   *zap.Logger
}

func NewEditorHandler(sessions *editor.Sessions, backend Backend, logger *zap.Logger) *EditorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorHandler{
		sessions: sessions,
		backend:  backend,
		logger:   logger.With(zap.String("component", "editor_handler")),
	}
}

// Register вешает маршруты редактора на router.
func (h *EditorHandler) Register(r fiber.Router) {
	floors := r.Group("/floors/:floorId")

	floors.Get("/", h.GetState)
	floors.Post("/rooms", h.AddRoom)
	floors.Post("/rooms/:roomId/neighbours", h.AddNeighbour)
	floors.Delete("/rooms/:roomId", h.DeleteRoom)
	floors.Patch("/rooms/:roomId", h.RenameRoom)
	floors.Post("/rooms/:roomId/resize", h.ResizeRoom)

	floors.Post("/selection", h.Select)
	floors.Delete("/selection", h.ClearSelection)
	floors.Post("/click", h.Click)

	floors.Post("/camera/pan", h.Pan)
	floors.Post("/camera/zoom", h.Zoom)

	floors.Post("/save", h.Save)
	floors.Post("/import", h.Import)
	floors.Get("/svg", h.ExportSVG)
}

type addRoomRequest struct {
	Name     string       `json:"name"`
	Position models.Point `json:"position"`
	Size     models.Size  `json:"size"`
}

type neighbourRequest struct {
	Direction string `json:"direction"`
}

type renameRequest struct {
	Name string `json:"name"`
}

type resizeRequest struct {
	Axis  string  `json:"axis"`
	Delta float64 `json:"delta"`
}

type selectRequest struct {
	RoomID string `json:"roomId"`
}

type panRequest struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// zoomRequest: либо явный factor, либо deltaY колесика мыши.
type zoomRequest struct {
	Factor float64      `json:"factor"`
	DeltaY float64      `json:"deltaY"`
	Focus  models.Point `json:"focus"`
}

// GetState открывает сессию этажа (при первом обращении грузит раскладку с backend).
func (h *EditorHandler) GetState(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	return c.JSON(s.View())
}

// AddRoom без тела кладет первую комнату в начало координат,
// с телом кладет комнату в указанную позицию.
func (h *EditorHandler) AddRoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	if len(bytes.TrimSpace(c.Body())) == 0 {
		return h.apply(c, s, http.StatusCreated, func(st editor.State) (editor.State, error) {
			next, r, err := st.AddFirstRoom()
			if err != nil {
				return st, err
			}
			return next.Select(r.ID)
		})
	}

	var req addRoomRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	return h.apply(c, s, http.StatusCreated, func(st editor.State) (editor.State, error) {
		return st.AddRoom(models.Room{Name: req.Name, Position: req.Position, Size: req.Size})
	})
}

// AddNeighbour пристраивает комнату к стене roomId; новая комната становится выделенной.
func (h *EditorHandler) AddNeighbour(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var req neighbourRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	dir, ok := models.ParseDirection(req.Direction)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "direction must be one of top, right, bottom, left"})
	}

	parentID := c.Params("roomId")
	return h.apply(c, s, http.StatusCreated, func(st editor.State) (editor.State, error) {
		next, r, err := st.AddAdjacent(parentID, dir)
		if err != nil {
			return st, err
		}
		return next.Select(r.ID)
	})
}

func (h *EditorHandler) DeleteRoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	id := c.Params("roomId")
	return h.apply(c, s, http.StatusOK, func(st editor.State) (editor.State, error) {
		return st.DeleteRoom(id)
	})
}

func (h *EditorHandler) RenameRoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var req renameRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	id := c.Params("roomId")
	return h.apply(c, s, http.StatusOK, func(st editor.State) (editor.State, error) {
		return st.Rename(id, req.Name)
	})
}

func (h *EditorHandler) ResizeRoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var req resizeRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	axis, ok := models.ParseAxis(req.Axis)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "axis must be width or height"})
	}

	id := c.Params("roomId")
	return h.apply(c, s, http.StatusOK, func(st editor.State) (editor.State, error) {
		return st.Resize(id, axis, req.Delta)
	})
}

// ============================================================
// Selection & Camera
// ============================================================

func (h *EditorHandler) Select(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var req selectRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	return h.apply(c, s, http.StatusOK, func(st editor.State) (editor.State, error) {
		return st.Select(req.RoomID)
	})
}

func (h *EditorHandler) ClearSelection(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}
	return h.apply(c, s, http.StatusOK, func(st editor.State) (editor.State, error) {
		return st.ClearSelection(), nil
	})
}

// Click: клик по холсту в экранных координатах.
func (h *EditorHandler) Click(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var p models.Point
	if err := json.Unmarshal(c.Body(), &p); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	return h.apply(c, s, http.StatusOK, func(st editor.State) (editor.State, error) {
		return st.ClickAt(p), nil
	})
}

func (h *EditorHandler) Pan(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var req panRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}
	return h.apply(c, s, http.StatusOK, func(st editor.State) (editor.State, error) {
		return st.Pan(req.DX, req.DY), nil
	})
}

func (h *EditorHandler) Zoom(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	var req zoomRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "invalid json"})
	}

	factor := req.Factor
	if factor == 0 {
		factor = editor.WheelFactor(req.DeltaY)
	}
	return h.apply(c, s, http.StatusOK, func(st editor.State) (editor.State, error) {
		return st.Zoom(factor, req.Focus), nil
	})
}

// ============================================================
// Save / Import / Export
// ============================================================

// Save отправляет раскладку на backend с токеном вызывающего.
// При ошибке backend отвечает 502, локальное состояние не теряется.
func (h *EditorHandler) Save(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	if h.backend == nil {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"error": "backend not configured"})
	}

	token, _ := bearerToken(c)
	if err := s.Save(c.Context(), h.backend, token); err != nil {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to save layout",
			"view":  s.View(),
		})
	}
	return c.JSON(fiber.Map{"status": "saved", "view": s.View()})
}

// Import заменяет раскладку комнатами из SVG (multipart поле file).
func (h *EditorHandler) Import(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "file required in multipart/form-data"})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read file"})
	}

	rooms, err := svg.Import(bytes.NewReader(data))
	if err != nil {
		h.logger.Info("svg import rejected", zap.String("file", file.Filename), zap.Error(err))
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	state, err := editor.FromRooms(rooms)
	if err != nil {
		return c.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}

	h.logger.Info("svg imported", zap.String("file", file.Filename), zap.Int("rooms", len(rooms)))
	return c.JSON(s.Replace(state))
}

func (h *EditorHandler) ExportSVG(c fiber.Ctx) error {
	s, err := h.session(c)
	if s == nil {
		return err
	}

	st := s.State()
	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(svg.Render(st.Rooms))
}

// ============================================================
// Helpers
// ============================================================

// session открывает сессию вызывающего для этажа из пути.
// Без токена или при отказе backend сама пишет ответ и возвращает nil.
func (h *EditorHandler) session(c fiber.Ctx) (*editor.Session, error) {
	token, ok := bearerToken(c)
	if !ok {
		return nil, c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var loader editor.Loader
	if h.backend != nil {
		loader = h.backend
	}

	floorID := c.Params("floorId")
	s, err := h.sessions.Open(c.Context(), floorID, loader, token)
	if err != nil {
		status := openStatus(err)
		if status == http.StatusBadGateway {
			h.logger.Error("open session failed", zap.String("floor_id", floorID), zap.Error(err))
		}
		return nil, c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return s, nil
}

func openStatus(err error) int {
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, backend.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, editor.ErrInvalidStoredLayout):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

// apply выполняет операцию и отвечает актуальным видом редактора.
// Отказ constraint engine приходит вместе с неизмененным видом и уведомлением.
func (h *EditorHandler) apply(c fiber.Ctx, s *editor.Session, okStatus int, op func(editor.State) (editor.State, error)) error {
	view, err := s.Apply(op)
	if err != nil {
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
			"view":  view,
		})
	}
	return c.Status(okStatus).JSON(view)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrPositionOccupied),
		errors.Is(err, engine.ErrWallOccupied),
		errors.Is(err, engine.ErrIsolationRisk):
		return http.StatusConflict
	case errors.Is(err, engine.ErrRoomNotFound):
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func bearerToken(c fiber.Ctx) (string, bool) {
	auth := c.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return token, token != ""
}
