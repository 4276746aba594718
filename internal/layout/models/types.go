package models

import "strings"

// ============================================================
// Geometry primitives
// ============================================================

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ============================================================
// Room
// ============================================================

type Room struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position Point  `json:"position"`
	Size     Size   `json:"size"`
	Parent   string `json:"parent,omitempty"`
}

func (r Room) Left() float64   { return r.Position.X }
func (r Room) Top() float64    { return r.Position.Y }
func (r Room) Right() float64  { return r.Position.X + r.Size.Width }
func (r Room) Bottom() float64 { return r.Position.Y + r.Size.Height }

// Contains проверяет, лежит ли точка внутри комнаты (границы включительно).
func (r Room) Contains(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() && p.Y >= r.Top() && p.Y <= r.Bottom()
}

// ============================================================
// Directions & axes
// ============================================================

type Direction string

const (
	Top    Direction = "top"
	Right  Direction = "right"
	Bottom Direction = "bottom"
	Left   Direction = "left"
)

// Directions: стороны по часовой стрелке, начиная сверху.
var Directions = []Direction{Top, Right, Bottom, Left}

// ParseDirection принимает имя стороны без учета регистра.
func ParseDirection(s string) (Direction, bool) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	switch d {
	case Top, Right, Bottom, Left:
		return d, true
	}
	return "", false
}

type Axis string

const (
	AxisWidth  Axis = "width"
	AxisHeight Axis = "height"
)

func ParseAxis(s string) (Axis, bool) {
	switch a := Axis(strings.ToLower(strings.TrimSpace(s))); a {
	case AxisWidth, AxisHeight:
		return a, true
	}
	return "", false
}

// ============================================================
// Wire payloads
// ============================================================

// LayoutPayload: тело запроса сохранения/загрузки раскладки на backend.
type LayoutPayload struct {
	Layout  []Room `json:"layout"`
	FloorID string `json:"floorId"`
}

// CloneRooms возвращает копию без общего backing array.
func CloneRooms(rooms []Room) []Room {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	return out
}
