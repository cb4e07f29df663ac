// Package interact handles user interactions like pan and zoom.
package interact

import (
	"gioui.org/io/pointer"
)

const (
	minZoom = 0.2
	maxZoom = 12
)

// Camera maps board coordinates to screen pixels. Board y grows north,
// screen y grows down.
type Camera struct {
	OffsetX float32 // screen x of board x=0
	OffsetY float32 // screen y of board y=0
	Zoom    float32 // pixels per board unit

	dragging     bool
	lastX, lastY float32
}

// NewCamera creates a camera at 2x zoom.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset restores the default view.
func (c *Camera) Reset() {
	c.OffsetX = 40
	c.OffsetY = 640
	c.Zoom = 2
}

// WorldToScreen converts board coordinates to screen coordinates.
func (c *Camera) WorldToScreen(x, y float64) (sx, sy float32) {
	return float32(x)*c.Zoom + c.OffsetX, c.OffsetY - float32(y)*c.Zoom
}

// ScreenToWorld converts screen coordinates to board coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (x, y float64) {
	return float64((sx - c.OffsetX) / c.Zoom), float64((c.OffsetY - sy) / c.Zoom)
}

// HandleEvent pans on secondary or middle drag and zooms on scroll.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		c.dragging = ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary)
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y
	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y
	case pointer.Release:
		c.dragging = false
	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/1.1, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(1.1, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan moves the view by a screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by factor, keeping the board point under (sx, sy) fixed.
func (c *Camera) ZoomBy(factor, sx, sy float32) {
	x, y := c.ScreenToWorld(sx, sy)
	c.Zoom = clampZoom(c.Zoom * factor)
	nx, ny := c.WorldToScreen(x, y)
	c.OffsetX += sx - nx
	c.OffsetY += sy - ny
}

// FitBoard zooms and centers so that a width x height board fills the
// screen minus margin.
func (c *Camera) FitBoard(width, height float64, screenW, screenH, margin float32) {
	if width <= 0 || height <= 0 {
		return
	}
	zx := (screenW - 2*margin) / float32(width)
	zy := (screenH - 2*margin) / float32(height)
	c.Zoom = clampZoom(min(zx, zy))
	c.OffsetX = screenW/2 - float32(width/2)*c.Zoom
	c.OffsetY = screenH/2 + float32(height/2)*c.Zoom
}

func clampZoom(z float32) float32 {
	return max(minZoom, min(maxZoom, z))
}
