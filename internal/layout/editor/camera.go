package editor

import "home-layout/internal/layout/models"

// ============================================================
// Camera (pan / zoom)
// ============================================================

const (
	MinScale  = 0.5
	MaxScale  = 2.0
	WheelStep = 1.1
)

// Camera: screen = canvas*Scale + Offset.
type Camera struct {
	Offset models.Point `json:"offset"`
	Scale  float64      `json:"scale"`
}

func DefaultCamera() Camera {
	return Camera{Scale: 1}
}

func (c Camera) Pan(dx, dy float64) Camera {
	c.Offset.X += dx
	c.Offset.Y += dy
	return c
}

// Zoom масштабирует вокруг точки экрана focus, которая остается на месте.
func (c Camera) Zoom(factor float64, focus models.Point) Camera {
	if factor <= 0 {
		return c
	}
	anchor := c.ScreenToCanvas(focus)

	scale := c.Scale * factor
	if scale < MinScale {
		scale = MinScale
	}
	if scale > MaxScale {
		scale = MaxScale
	}

	c.Scale = scale
	c.Offset = models.Point{
		X: focus.X - anchor.X*scale,
		Y: focus.Y - anchor.Y*scale,
	}
	return c
}

// WheelFactor переводит направление прокрутки колеса в множитель масштаба.
func WheelFactor(deltaY float64) float64 {
	switch {
	case deltaY < 0:
		return WheelStep
	case deltaY > 0:
		return 1 / WheelStep
	}
	return 1
}

func (c Camera) ScreenToCanvas(p models.Point) models.Point {
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}
	return models.Point{
		X: (p.X - c.Offset.X) / scale,
		Y: (p.Y - c.Offset.Y) / scale,
	}
}

func (c Camera) CanvasToScreen(p models.Point) models.Point {
	return models.Point{
		X: p.X*c.Scale + c.Offset.X,
		Y: p.Y*c.Scale + c.Offset.Y,
	}
}
