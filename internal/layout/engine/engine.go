package engine

import (
	"errors"
	"math"

	"home-layout/internal/layout/models"
)

// ============================================================
// Spatial Constraint Engine
// ============================================================

const AdjacencyTolerance = 5.0 // Допуск касания стен (погрешность float/пиксельного снаппинга)
const MinRoomSize = 100.0
const MaxRoomSize = 300.0
const DefaultRoomSize = 120.0

var (
	ErrPositionOccupied = errors.New("position occupied")
	ErrWallOccupied     = errors.New("wall occupied")
	ErrIsolationRisk    = errors.New("deleting this room would isolate a neighbour")
	ErrRoomNotFound     = errors.New("room not found")
)

// Overlaps: строгое пересечение прямоугольников: касание краями не считается.
func Overlaps(a, b models.Room) bool {
	return a.Left() < b.Right() &&
		a.Right() > b.Left() &&
		a.Top() < b.Bottom() &&
		a.Bottom() > b.Top()
}

// Touches проверяет, примыкает ли other к стороне dir комнаты room.
func Touches(room, other models.Room, dir models.Direction) bool {
	switch dir {
	case models.Right:
		return near(other.Left(), room.Right()) && spansOverlap(room.Top(), room.Bottom(), other.Top(), other.Bottom())
	case models.Left:
		return near(other.Right(), room.Left()) && spansOverlap(room.Top(), room.Bottom(), other.Top(), other.Bottom())
	case models.Bottom:
		return near(other.Top(), room.Bottom()) && spansOverlap(room.Left(), room.Right(), other.Left(), other.Right())
	case models.Top:
		return near(other.Bottom(), room.Top()) && spansOverlap(room.Left(), room.Right(), other.Left(), other.Right())
	}
	return false
}

// IsAdjacent проверяет, занята ли стена dir у room какой-либо другой комнатой.
func IsAdjacent(rooms []models.Room, room models.Room, dir models.Direction) bool {
	for _, other := range rooms {
		if other.ID == room.ID {
			continue
		}
		if Touches(room, other, dir) {
			return true
		}
	}
	return false
}

// AdjacentAnySide: соседство пары комнат по любой из четырех сторон.
func AdjacentAnySide(a, b models.Room) bool {
	for _, dir := range models.Directions {
		if Touches(a, b, dir) {
			return true
		}
	}
	return false
}

// ============================================================
// Helpers
// ============================================================

func near(a, b float64) bool {
	return math.Abs(a-b) < AdjacencyTolerance
}

// spansOverlap: пересечение открытых интервалов (a1,a2) и (b1,b2).
func spansOverlap(a1, a2, b1, b2 float64) bool {
	return a1 < b2 && b1 < a2
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func indexOf(rooms []models.Room, id string) int {
	for i, r := range rooms {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Find возвращает комнату по id.
func Find(rooms []models.Room, id string) (models.Room, bool) {
	if i := indexOf(rooms, id); i >= 0 {
		return rooms[i], true
	}
	return models.Room{}, false
}
