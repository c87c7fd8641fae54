package layout

import "math"

// Vec is a 2D point or displacement in world units.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec             { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec             { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(f float64) Vec       { return Vec{v.X * f, v.Y * f} }
func (v Vec) Len() float64              { return math.Hypot(v.X, v.Y) }
func (v Vec) Lerp(o Vec, t float64) Vec { return v.Add(o.Sub(v).Scale(t)) }

// Bounds is an axis-aligned rectangle.
type Bounds struct {
	Min, Max Vec
}

func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }
func (b Bounds) Center() Vec     { return b.Min.Lerp(b.Max, 0.5) }
