package editor

import (
	"testing"

	"home-layout/internal/layout/models"

	"github.com/stretchr/testify/assert"
)

func TestCamera_ZoomClamped(t *testing.T) {
	c := DefaultCamera()

	for i := 0; i < 20; i++ {
		c = c.Zoom(WheelFactor(-1), models.Point{})
	}
	assert.Equal(t, MaxScale, c.Scale)

	for i := 0; i < 40; i++ {
		c = c.Zoom(WheelFactor(1), models.Point{})
	}
	assert.Equal(t, MinScale, c.Scale)

	assert.Equal(t, c, c.Zoom(0, models.Point{X: 10}))
	assert.Equal(t, 1.0, WheelFactor(0))
}

func TestCamera_ZoomKeepsFocusFixed(t *testing.T) {
	c := DefaultCamera().Pan(40, -20)
	focus := models.Point{X: 300, Y: 200}
	before := c.ScreenToCanvas(focus)

	c = c.Zoom(1.5, focus)

	assert.InDelta(t, before.X, c.ScreenToCanvas(focus).X, 1e-9)
	assert.InDelta(t, before.Y, c.ScreenToCanvas(focus).Y, 1e-9)
}

func TestCamera_RoundTrip(t *testing.T) {
	c := DefaultCamera().Pan(15, 25).Zoom(2, models.Point{X: 100, Y: 100})
	p := models.Point{X: 33, Y: -7}

	back := c.ScreenToCanvas(c.CanvasToScreen(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
}
