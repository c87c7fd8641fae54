package layout

import (
	"math"
	"time"
)

const (
	MinZoom = 0.05
	MaxZoom = 10.0
)

// Viewport is the drawable area in surface units (pixels or virtual pixels).
type Viewport struct {
	Width, Height float64
}

func (v Viewport) Center() Vec { return Vec{v.Width / 2, v.Height / 2} }

// Camera maps world coordinates to a viewport. Center is the world point
// drawn at the middle of the viewport.
type Camera struct {
	Center Vec
	Zoom   float64
}

// DefaultCamera looks at the origin at scale 1.
func DefaultCamera() Camera { return Camera{Zoom: 1} }

func (c Camera) ToScreen(p Vec, vp Viewport) Vec {
	return p.Sub(c.Center).Scale(c.Zoom).Add(vp.Center())
}

func (c Camera) ToWorld(p Vec, vp Viewport) Vec {
	return p.Sub(vp.Center()).Scale(1 / c.Zoom).Add(c.Center)
}

// Pan moves the camera by d screen units.
func (c Camera) Pan(d Vec) Camera {
	c.Center = c.Center.Add(d.Scale(1 / c.Zoom))
	return c
}

// ZoomBy multiplies the zoom level by f, keeping it within [MinZoom, MaxZoom].
func (c Camera) ZoomBy(f float64) Camera {
	c.Zoom = ClampZoom(c.Zoom * f)
	return c
}

func ClampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// Fit returns the camera that shows b inside vp with padding on every side.
// Zoom never exceeds 1 so small graphs are not blown up.
func Fit(b Bounds, vp Viewport, padding float64) Camera {
	w := vp.Width - 2*padding
	h := vp.Height - 2*padding
	zoom := 1.0
	if w > 0 && h > 0 {
		if b.Width() > 0 {
			zoom = math.Min(zoom, w/b.Width())
		}
		if b.Height() > 0 {
			zoom = math.Min(zoom, h/b.Height())
		}
	}
	return Camera{Center: b.Center(), Zoom: ClampZoom(zoom)}
}

// EaseInOutQuad accelerates over the first half and decelerates over the second.
func EaseInOutQuad(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 2 * t * t
	default:
		return -1 + (4-2*t)*t
	}
}

// Transition animates the camera from From to To.
type Transition struct {
	From, To Camera
	Duration time.Duration
	Elapsed  time.Duration
}

// Advance moves the transition forward by dt and returns the camera to draw
// and whether the transition finished.
func (t *Transition) Advance(dt time.Duration) (Camera, bool) {
	t.Elapsed += dt
	if t.Duration <= 0 || t.Elapsed >= t.Duration {
		t.Elapsed = t.Duration
		return t.To, true
	}
	k := EaseInOutQuad(float64(t.Elapsed) / float64(t.Duration))
	return Camera{
		Center: t.From.Center.Lerp(t.To.Center, k),
		Zoom:   t.From.Zoom + (t.To.Zoom-t.From.Zoom)*k,
	}, false
}
