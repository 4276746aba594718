package engine

import (
	"fmt"
	"math"

	"home-layout/internal/layout/models"
)

// ============================================================
// Placement
// ============================================================

// CanAddRoom отклоняет комнату, пересекающую любую существующую.
func CanAddRoom(rooms []models.Room, proposed models.Room) error {
	for _, r := range rooms {
		if r.ID == proposed.ID {
			continue
		}
		if Overlaps(r, proposed) {
			return ErrPositionOccupied
		}
	}
	return nil
}

// CanAddAdjacent запрещает вторую комнату у уже занятой стены.
func CanAddAdjacent(rooms []models.Room, parent models.Room, dir models.Direction) error {
	if IsAdjacent(rooms, parent, dir) {
		return ErrWallOccupied
	}
	return nil
}

// PlaceAdjacent считает позицию новой комнаты размера size у стены dir комнаты parent.
func PlaceAdjacent(parent models.Room, dir models.Direction, size models.Size) models.Point {
	switch dir {
	case models.Right:
		return models.Point{X: parent.Right(), Y: parent.Top()}
	case models.Left:
		return models.Point{X: parent.Left() - size.Width, Y: parent.Top()}
	case models.Bottom:
		return models.Point{X: parent.Left(), Y: parent.Bottom()}
	case models.Top:
		return models.Point{X: parent.Left(), Y: parent.Top() - size.Height}
	}
	return parent.Position
}

// AvailableDirections: стороны, у которых можно добавить соседа.
func AvailableDirections(rooms []models.Room, room models.Room) []models.Direction {
	var out []models.Direction
	for _, dir := range models.Directions {
		if IsAdjacent(rooms, room, dir) {
			continue
		}
		candidate := models.Room{
			Position: PlaceAdjacent(room, dir, models.Size{Width: DefaultRoomSize, Height: DefaultRoomSize}),
			Size:     models.Size{Width: DefaultRoomSize, Height: DefaultRoomSize},
		}
		if CanAddRoom(rooms, candidate) != nil {
			continue
		}
		out = append(out, dir)
	}
	return out
}

// ============================================================
// Deletion
// ============================================================

// CanDeleteRoom: неизвестную комнату удалить нельзя, при <=2 комнатах можно любую. Иначе каждый сосед
// удаляемой комнаты должен сохранить хотя бы одного другого соседа.
// Новые соседства, которые могли бы появиться после удаления, не пересчитываются.
func CanDeleteRoom(rooms []models.Room, id string) bool {
	if indexOf(rooms, id) < 0 {
		return false
	}
	if len(rooms) <= 2 {
		return true
	}

	g := BuildGraph(rooms)
	for _, n := range g.Neighbours(id) {
		if g.Degree(n, id) == 0 {
			return false
		}
	}
	return true
}

// ============================================================
// Resize
// ============================================================

// Resize меняет размер по оси axis на delta (с ограничением Min/MaxRoomSize).
// Исходный срез не изменяется; при пересечении возвращается ErrPositionOccupied.
func Resize(rooms []models.Room, id string, axis models.Axis, delta float64) ([]models.Room, error) {
	i := indexOf(rooms, id)
	if i < 0 {
		return nil, ErrRoomNotFound
	}

	resized := rooms[i]
	switch axis {
	case models.AxisWidth:
		resized.Size.Width = resizeDim(resized.Size.Width, delta)
	case models.AxisHeight:
		resized.Size.Height = resizeDim(resized.Size.Height, delta)
	default:
		return nil, fmt.Errorf("unknown axis %q", axis)
	}

	if err := CanAddRoom(rooms, resized); err != nil {
		return nil, err
	}

	out := models.CloneRooms(rooms)
	out[i] = resized
	return out, nil
}

// resizeDim: шаг изменения не выводит размер за [Min, Max] и не тянет
// уже выходящую за диапазон комнату (например импортированную) в обратную сторону.
func resizeDim(current, delta float64) float64 {
	return clamp(current+delta, math.Min(current, MinRoomSize), math.Max(current, MaxRoomSize))
}

// ClampSize приводит размер к допустимому диапазону.
func ClampSize(s models.Size) models.Size {
	return models.Size{
		Width:  clamp(s.Width, MinRoomSize, MaxRoomSize),
		Height: clamp(s.Height, MinRoomSize, MaxRoomSize),
	}
}

// ============================================================
// Validation
// ============================================================

// Validate проверяет раскладку целиком: уникальные id и отсутствие пересечений.
func Validate(rooms []models.Room) error {
	seen := make(map[string]struct{}, len(rooms))
	for i, r := range rooms {
		if r.ID == "" {
			return fmt.Errorf("room %d: empty id", i)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("room %s: duplicate id", r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.Size.Width <= 0 || r.Size.Height <= 0 {
			return fmt.Errorf("room %s: non-positive size", r.ID)
		}
		for _, other := range rooms[:i] {
			if Overlaps(r, other) {
				return fmt.Errorf("rooms %s and %s: %w", other.ID, r.ID, ErrPositionOccupied)
			}
		}
	}
	return nil
}
