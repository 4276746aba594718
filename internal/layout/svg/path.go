package svg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"home-layout/internal/layout/models"
)

// ============================================================
// Path Parser
// ============================================================

var pathCommand = regexp.MustCompile(`([MmLlHhVvZz])([^MmLlHhVvZz]*)`)

// ParsePath парсит SVG path (команды M, L, H, V, Z и их относительные формы) в список точек.
func ParsePath(d string) ([]models.Point, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, fmt.Errorf("empty path")
	}

	var points []models.Point
	var cur models.Point

	for _, match := range pathCommand.FindAllStringSubmatch(d, -1) {
		cmd := match[1]
		coords := parseCoords(match[2])

		switch cmd {
		case "M", "L":
			// после M/L могут идти несколько пар координат подряд
			for i := 0; i+1 < len(coords); i += 2 {
				cur = models.Point{X: coords[i], Y: coords[i+1]}
				points = append(points, cur)
			}
		case "m", "l":
			for i := 0; i+1 < len(coords); i += 2 {
				cur = models.Point{X: cur.X + coords[i], Y: cur.Y + coords[i+1]}
				points = append(points, cur)
			}
		case "H", "h", "V", "v":
			for _, c := range coords {
				switch cmd {
				case "H":
					cur.X = c
				case "h":
					cur.X += c
				case "V":
					cur.Y = c
				case "v":
					cur.Y += c
				}
				points = append(points, cur)
			}
		case "Z", "z":
			if len(points) > 0 {
				cur = points[0]
				points = append(points, cur)
			}
		}
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("path %q has no points", d)
	}
	return points, nil
}

// Bounds возвращает ограничивающий прямоугольник точек.
func Bounds(points []models.Point) (models.Point, models.Size) {
	if len(points) == 0 {
		return models.Point{}, models.Size{}
	}
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return models.Point{X: minX, Y: minY}, models.Size{Width: maxX - minX, Height: maxY - minY}
}

func parseCoords(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// Разделитель: запятая или пробел
	s = strings.ReplaceAll(s, ",", " ")

	var coords []float64
	for _, part := range strings.Fields(s) {
		if val, err := strconv.ParseFloat(part, 64); err == nil {
			coords = append(coords, val)
		}
	}
	return coords
}
