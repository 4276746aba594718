package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"home-layout/internal/layout/engine"
	"home-layout/internal/layout/models"

	"go.uber.org/zap"
)

// ============================================================
// Session
// ============================================================

// NoticeTTL: сколько живет сообщение об отклоненной операции.
const NoticeTTL = 3 * time.Second

var ErrInvalidStoredLayout = errors.New("stored layout is invalid")

type Saver interface {
	SaveLayout(ctx context.Context, token, floorID string, rooms []models.Room) error
}

type Loader interface {
	GetLayout(ctx context.Context, token, floorID string) ([]models.Room, error)
}

type Notice struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// View: то, что UI получает после каждой операции.
type View struct {
	FloorID    string             `json:"floorId"`
	State      State              `json:"state"`
	Notice     *Notice            `json:"notice,omitempty"`
	Directions []models.Direction `json:"directions,omitempty"`
}

type Session struct {
	mu      sync.Mutex
	floorID string
	state   State
	notice  Notice
	now     func() time.Time
	logger  *zap.Logger
}

func NewSession(floorID string, state State, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		floorID: floorID,
		state:   state,
		now:     time.Now,
		logger:  logger.With(zap.String("floor_id", floorID)),
	}
}

// Apply выполняет операцию атомарно. Отказ записывается во временное уведомление,
// состояние при этом не меняется.
func (s *Session) Apply(op func(State) (State, error)) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := op(s.state)
	if err != nil {
		s.notice = Notice{Message: noticeMessage(err), ExpiresAt: s.now().Add(NoticeTTL)}
		s.logger.Info("edit rejected", zap.Error(err))
		return s.viewLocked(), err
	}

	s.state = next
	return s.viewLocked(), nil
}

// Replace подменяет состояние целиком (импорт, загрузка).
func (s *Session) Replace(state State) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
	s.notice = Notice{}
	return s.viewLocked()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Save отправляет раскладку на backend. При ошибке локальное состояние
// сохраняется, чтобы пользователь мог повторить.
func (s *Session) Save(ctx context.Context, saver Saver, token string) error {
	rooms := models.CloneRooms(s.State().Rooms)

	if err := saver.SaveLayout(ctx, token, s.floorID, rooms); err != nil {
		s.logger.Error("save layout failed", zap.Error(err), zap.Int("rooms", len(rooms)))
		return err
	}

	s.logger.Info("layout saved", zap.Int("rooms", len(rooms)))
	return nil
}

func (s *Session) viewLocked() View {
	v := View{
		FloorID: s.floorID,
		State:   s.state,
	}
	v.State.Rooms = models.CloneRooms(s.state.Rooms)

	if s.notice.Message != "" && s.now().Before(s.notice.ExpiresAt) {
		n := s.notice
		v.Notice = &n
	}

	if r, ok := s.state.SelectedRoom(); ok {
		v.Directions = engine.AvailableDirections(s.state.Rooms, r)
	}
	return v
}

func noticeMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrPositionOccupied):
		return "This position is already occupied by another room"
	case errors.Is(err, engine.ErrWallOccupied):
		return "This wall already has an adjacent room"
	case errors.Is(err, engine.ErrIsolationRisk):
		return "Cannot delete: a neighbouring room would be left without neighbours"
	case errors.Is(err, engine.ErrRoomNotFound):
		return "Room not found"
	}
	return err.Error()
}

// ============================================================
// Session registry
// ============================================================

// Сессии живут отдельно для каждого токена и этажа.
type sessionKey struct {
	token   string
	floorID string
}

type sessionEntry struct {
	session  *Session
	lastUsed time.Time
}

type Sessions struct {
	mu       sync.Mutex
	sessions map[sessionKey]*sessionEntry
	now      func() time.Time
	logger   *zap.Logger
}

func NewSessions(logger *zap.Logger) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		sessions: make(map[sessionKey]*sessionEntry),
		now:      time.Now,
		logger:   logger,
	}
}

// Get возвращает уже открытую сессию, если она есть.
func (r *Sessions) Get(token, floorID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[sessionKey{token, floorID}]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.session, true
}

// Open возвращает сессию вызывающего, при первом обращении загружая раскладку с backend.
// Сессия кэшируется только после успешной загрузки; пустой этаж (404) тоже успех.
func (r *Sessions) Open(ctx context.Context, floorID string, loader Loader, token string) (*Session, error) {
	if s, ok := r.Get(token, floorID); ok {
		return s, nil
	}

	state := NewState()
	if loader != nil {
		rooms, err := loader.GetLayout(ctx, token, floorID)
		if err != nil {
			r.logger.Warn("load layout failed", zap.String("floor_id", floorID), zap.Error(err))
			return nil, fmt.Errorf("load layout: %w", err)
		}
		loaded, err := FromRooms(rooms)
		if err != nil {
			r.logger.Warn("stored layout is invalid", zap.String("floor_id", floorID), zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrInvalidStoredLayout, err)
		}
		state = loaded
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := sessionKey{token, floorID}
	if e, ok := r.sessions[key]; ok {
		e.lastUsed = r.now()
		return e.session, nil
	}
	s := NewSession(floorID, state, r.logger)
	r.sessions[key] = &sessionEntry{session: s, lastUsed: r.now()}
	return s, nil
}

func (r *Sessions) Close(token, floorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionKey{token, floorID})
}

// Evict закрывает сессии, к которым не обращались дольше idle.
func (r *Sessions) Evict(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-idle)
	n := 0
	for key, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(r.sessions, key)
			n++
		}
	}
	if n > 0 {
		r.logger.Debug("idle sessions evicted", zap.Int("count", n))
	}
	return n
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
