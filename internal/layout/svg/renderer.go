package svg

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"home-layout/internal/layout/engine"
	"home-layout/internal/layout/models"
)

// ============================================================
// Renderer
// ============================================================

const (
	roomPrefix = "Room_"
	margin     = 20.0
)

// Render собирает SVG из раскладки: прямоугольники комнат, подписи и общие стены.
// Результат можно снова загрузить через Import.
func Render(rooms []models.Room) string {
	minX, minY, width, height := viewBox(rooms)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`,
		formatFloat(width), formatFloat(height),
		formatFloat(minX), formatFloat(minY), formatFloat(width), formatFloat(height)))
	b.WriteString("\n")

	for _, r := range rooms {
		b.WriteString("  ")
		b.WriteString(renderRoom(r))
		b.WriteString("\n")
	}
	for _, w := range engine.BuildGraph(rooms).Walls() {
		b.WriteString("  ")
		b.WriteString(fmt.Sprintf(`<line id="Wall_%s_%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="#000" stroke-width="3" />`,
			attr(w.From), attr(w.To),
			formatFloat(w.Start.X), formatFloat(w.Start.Y), formatFloat(w.End.X), formatFloat(w.End.Y)))
		b.WriteString("\n")
	}

	b.WriteString(`</svg>`)
	return b.String()
}

func renderRoom(r models.Room) string {
	var parent string
	if r.Parent != "" {
		parent = fmt.Sprintf(` data-parent="%s"`, attr(r.Parent))
	}

	cx := r.Left() + r.Size.Width/2
	cy := r.Top() + r.Size.Height/2

	return fmt.Sprintf(`<rect id="%s%s" data-name="%s"%s x="%s" y="%s" width="%s" height="%s" fill="#F5F5F5" stroke="#888" />`+
		`<text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-size="14">%s</text>`,
		roomPrefix, attr(r.ID), attr(r.Name), parent,
		formatFloat(r.Left()), formatFloat(r.Top()), formatFloat(r.Size.Width), formatFloat(r.Size.Height),
		formatFloat(cx), formatFloat(cy), html.EscapeString(r.Name))
}

func viewBox(rooms []models.Room) (float64, float64, float64, float64) {
	if len(rooms) == 0 {
		return 0, 0, 1000, 1000
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	for _, r := range rooms {
		minX = math.Min(minX, r.Left())
		minY = math.Min(minY, r.Top())
		maxX = math.Max(maxX, r.Right())
		maxY = math.Max(maxY, r.Bottom())
	}

	return minX - margin, minY - margin, maxX - minX + 2*margin, maxY - minY + 2*margin
}

// ============================================================
// Formatting helpers
// ============================================================

func attr(s string) string {
	return html.EscapeString(s)
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
