package svg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"home-layout/internal/layout/engine"
	"home-layout/internal/layout/models"
)

// ============================================================
// XML Structures
// ============================================================

type document struct {
	XMLName xml.Name `xml:"svg"`
	group
}

type group struct {
	Rects  []rect  `xml:"rect"`
	Paths  []path  `xml:"path"`
	Groups []group `xml:"g"`
}

type rect struct {
	ID     string  `xml:"id,attr"`
	Name   string  `xml:"data-name,attr"`
	Parent string  `xml:"data-parent,attr"`
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type path struct {
	ID     string `xml:"id,attr"`
	Name   string `xml:"data-name,attr"`
	Parent string `xml:"data-parent,attr"`
	D      string `xml:"d,attr"`
}

// ============================================================
// Import
// ============================================================

// ParseRooms читает комнаты из SVG плана: rect и path, id которых помечен как комната
// (Room_*, *_room, *_Room). Остальные элементы (стены, двери, окна) игнорируются.
func ParseRooms(r io.Reader) ([]models.Room, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}

	var rooms []models.Room
	if err := collect(doc.group, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Import парсит SVG и проверяет, что комнаты не пересекаются.
func Import(r io.Reader) ([]models.Room, error) {
	rooms, err := ParseRooms(r)
	if err != nil {
		return nil, err
	}
	if err := engine.Validate(rooms); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return rooms, nil
}

func collect(g group, out *[]models.Room) error {
	for _, rc := range g.Rects {
		if !isRoomID(rc.ID) {
			continue
		}
		*out = append(*out, models.Room{
			ID:       roomID(rc.ID),
			Name:     roomName(rc.ID, rc.Name),
			Position: models.Point{X: rc.X, Y: rc.Y},
			Size:     models.Size{Width: rc.Width, Height: rc.Height},
			Parent:   rc.Parent,
		})
	}

	for _, p := range g.Paths {
		if !isRoomID(p.ID) {
			continue
		}
		points, err := ParsePath(p.D)
		if err != nil {
			return fmt.Errorf("room %s: %w", p.ID, err)
		}
		pos, size := Bounds(points)
		*out = append(*out, models.Room{
			ID:       roomID(p.ID),
			Name:     roomName(p.ID, p.Name),
			Position: pos,
			Size:     size,
			Parent:   p.Parent,
		})
	}

	for _, child := range g.Groups {
		if err := collect(child, out); err != nil {
			return err
		}
	}
	return nil
}

func isRoomID(id string) bool {
	return strings.HasPrefix(id, roomPrefix) ||
		strings.HasSuffix(id, "_room") || // Hall_room, Toilet_room
		strings.HasSuffix(id, "_Room")
}

func roomID(svgID string) string {
	return strings.TrimPrefix(svgID, roomPrefix)
}

func roomName(svgID, name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	base := svgID
	if strings.HasPrefix(base, roomPrefix) {
		base = strings.TrimPrefix(base, roomPrefix)
	} else {
		base = strings.TrimSuffix(strings.TrimSuffix(base, "_room"), "_Room")
	}
	return strings.ReplaceAll(base, "_", " ")
}
