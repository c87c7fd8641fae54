package render

import "github.com/msalah0e/tripgraph/internal/layout"

// Surface is something a Renderer draws onto.
type Surface interface {
	// Viewport reports the drawable area in surface units.
	Viewport() layout.Viewport
	// Bind prepares the surface for frames; it is called once per mount.
	Bind() error
	Draw(f Frame) error
	Placeholder(title, hint string) error
	// Release drops everything the surface holds for the renderer.
	Release()
}

// Frame is one drawable snapshot in surface coordinates.
type Frame struct {
	Camera   layout.Camera
	Viewport layout.Viewport
	Visual   Visual
	State    State
	Nodes    []FrameNode
	Edges    []FrameEdge
}

type FrameNode struct {
	ID      string
	Label   string
	Tooltip string
	Group   string
	Color   string // hex
	Pos     layout.Vec
	Radius  float64
	Focused bool
}

// FrameEdge is a quadratic curve from From to To bent toward Control.
type FrameEdge struct {
	From, To, Control layout.Vec
	Label             string
	Directed          bool
}

// Point returns the curve point at t in [0, 1].
func (e FrameEdge) Point(t float64) layout.Vec {
	a := e.From.Lerp(e.Control, t)
	b := e.Control.Lerp(e.To, t)
	return a.Lerp(b, t)
}
