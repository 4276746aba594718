package editor

import (
	"fmt"
	"strings"

	"home-layout/internal/layout/engine"
	"home-layout/internal/layout/models"

	"github.com/google/uuid"
)

// ============================================================
// Editor State
// ============================================================

// State: состояние редактора одного этажа. Все операции возвращают новое
// состояние; при ошибке возвращается исходное без изменений.
type State struct {
	Rooms    []models.Room `json:"rooms"`
	Selected string        `json:"selected,omitempty"`
	Camera   Camera        `json:"camera"`
}

// NewState создает пустое состояние с камерой по умолчанию.
func NewState() State {
	return State{Rooms: []models.Room{}, Camera: DefaultCamera()}
}

// FromRooms создает состояние из готовой раскладки (загрузка с backend, импорт SVG).
func FromRooms(rooms []models.Room) (State, error) {
	if err := engine.Validate(rooms); err != nil {
		return State{}, err
	}
	s := NewState()
	s.Rooms = models.CloneRooms(rooms)
	return s, nil
}

var newID = uuid.NewString

func defaultSize() models.Size {
	return models.Size{Width: engine.DefaultRoomSize, Height: engine.DefaultRoomSize}
}

func (s State) nextName() string {
	return fmt.Sprintf("Room %d", len(s.Rooms)+1)
}

func (s State) with(rooms []models.Room) State {
	s.Rooms = rooms
	return s
}

// ============================================================
// Room operations
// ============================================================

// AddFirstRoom кладет первую комнату в начало координат.
func (s State) AddFirstRoom() (State, models.Room, error) {
	r := models.Room{
		ID:   newID(),
		Name: s.nextName(),
		Size: defaultSize(),
	}
	next, err := s.AddRoom(r)
	return next, r, err
}

// AddRoom добавляет комнату в произвольную позицию.
func (s State) AddRoom(proposed models.Room) (State, error) {
	if proposed.ID == "" {
		proposed.ID = newID()
	}
	if _, exists := engine.Find(s.Rooms, proposed.ID); exists {
		return s, fmt.Errorf("room %s already exists", proposed.ID)
	}
	if proposed.Name == "" {
		proposed.Name = s.nextName()
	}
	if proposed.Size == (models.Size{}) {
		proposed.Size = defaultSize()
	}
	proposed.Size = engine.ClampSize(proposed.Size)

	if err := engine.CanAddRoom(s.Rooms, proposed); err != nil {
		return s, err
	}

	rooms := append(models.CloneRooms(s.Rooms), proposed)
	return s.with(rooms), nil
}

// AddAdjacent добавляет соседа к комнате parentID со стороны dir.
func (s State) AddAdjacent(parentID string, dir models.Direction) (State, models.Room, error) {
	parent, ok := engine.Find(s.Rooms, parentID)
	if !ok {
		return s, models.Room{}, engine.ErrRoomNotFound
	}
	if err := engine.CanAddAdjacent(s.Rooms, parent, dir); err != nil {
		return s, models.Room{}, err
	}

	size := defaultSize()
	r := models.Room{
		ID:       newID(),
		Name:     s.nextName(),
		Position: engine.PlaceAdjacent(parent, dir, size),
		Size:     size,
		Parent:   parent.ID,
	}

	next, err := s.AddRoom(r)
	if err != nil {
		return s, models.Room{}, err
	}
	return next, r, nil
}

// DeleteRoom удаляет комнату, если это никого не изолирует.
func (s State) DeleteRoom(id string) (State, error) {
	if _, ok := engine.Find(s.Rooms, id); !ok {
		return s, engine.ErrRoomNotFound
	}
	if !engine.CanDeleteRoom(s.Rooms, id) {
		return s, engine.ErrIsolationRisk
	}

	rooms := make([]models.Room, 0, len(s.Rooms)-1)
	for _, r := range s.Rooms {
		if r.ID != id {
			rooms = append(rooms, r)
		}
	}

	next := s.with(rooms)
	if next.Selected == id {
		next.Selected = ""
	}
	return next, nil
}

// Rename меняет название комнаты.
func (s State) Rename(id, name string) (State, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, fmt.Errorf("name required")
	}

	rooms := models.CloneRooms(s.Rooms)
	for i := range rooms {
		if rooms[i].ID == id {
			rooms[i].Name = name
			return s.with(rooms), nil
		}
	}
	return s, engine.ErrRoomNotFound
}

func (s State) Resize(id string, axis models.Axis, delta float64) (State, error) {
	rooms, err := engine.Resize(s.Rooms, id, axis, delta)
	if err != nil {
		return s, err
	}
	return s.with(rooms), nil
}

// ============================================================
// Selection
// ============================================================

func (s State) Select(id string) (State, error) {
	if _, ok := engine.Find(s.Rooms, id); !ok {
		return s, engine.ErrRoomNotFound
	}
	s.Selected = id
	return s, nil
}

func (s State) ClearSelection() State {
	s.Selected = ""
	return s
}

// ClickAt выделяет комнату под точкой экрана; клик по пустому месту снимает выделение.
func (s State) ClickAt(screen models.Point) State {
	p := s.Camera.ScreenToCanvas(screen)
	// последняя добавленная комната рисуется сверху
	for i := len(s.Rooms) - 1; i >= 0; i-- {
		if s.Rooms[i].Contains(p) {
			s.Selected = s.Rooms[i].ID
			return s
		}
	}
	return s.ClearSelection()
}

// SelectedRoom возвращает выделенную комнату, если она есть.
func (s State) SelectedRoom() (models.Room, bool) {
	if s.Selected == "" {
		return models.Room{}, false
	}
	return engine.Find(s.Rooms, s.Selected)
}

// ============================================================
// Camera
// ============================================================

func (s State) Pan(dx, dy float64) State {
	s.Camera = s.Camera.Pan(dx, dy)
	return s
}

func (s State) Zoom(factor float64, focus models.Point) State {
	s.Camera = s.Camera.Zoom(factor, focus)
	return s
}
