package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/msalah0e/tripgraph/internal/layout"
)

const svgBackground = "#0a0e17"

// SVG is a Surface that keeps the last frame and renders it as an SVG
// document on demand.
type SVG struct {
	width, height float64
	frame         *Frame
	title, hint   string
	placeholder   bool
	released      bool
}

func NewSVG(width, height int) *SVG {
	return &SVG{width: float64(width), height: float64(height)}
}

func (s *SVG) Viewport() layout.Viewport {
	return layout.Viewport{Width: s.width, Height: s.height}
}

func (s *SVG) Bind() error {
	if s.width <= 0 || s.height <= 0 {
		return fmt.Errorf("render: svg size %vx%v", s.width, s.height)
	}
	s.released = false
	return nil
}

func (s *SVG) Draw(f Frame) error {
	if s.released {
		return ErrReleased
	}
	s.frame = &f
	s.placeholder = false
	return nil
}

func (s *SVG) Placeholder(title, hint string) error {
	s.released = false
	s.frame = nil
	s.placeholder = true
	s.title, s.hint = title, hint
	return nil
}

// Release drops the stored frame.
func (s *SVG) Release() {
	s.released = true
	s.frame = nil
}

// Legend returns the group colours of the last frame in first-seen order.
func (s *SVG) Legend() [][2]string {
	if s.frame == nil {
		return nil
	}
	seen := map[string]bool{}
	var out [][2]string
	for _, n := range s.frame.Nodes {
		if n.Group == "" || seen[n.Group] {
			continue
		}
		seen[n.Group] = true
		out = append(out, [2]string{n.Group, n.Color})
	}
	return out
}

// Render returns the SVG markup for the last frame or placeholder.
func (s *SVG) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" class="tripgraph">`+"\n",
		s.width, s.height, s.width, s.height)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", svgBackground)

	switch {
	case s.placeholder:
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" fill="%s" font-size="18" font-weight="bold">%s</text>`+"\n",
			s.width/2, s.height/2-12, LabelColor, html.EscapeString(s.title))
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" text-anchor="middle" fill="%s" font-size="13">%s</text>`+"\n",
			s.width/2, s.height/2+16, EdgeColor, html.EscapeString(s.hint))
	case s.frame != nil:
		s.renderFrame(&b, s.frame)
	}

	b.WriteString("</svg>\n")
	return b.String()
}

func (s *SVG) renderFrame(b *strings.Builder, f *Frame) {
	zoom := f.Camera.Zoom
	arrow := 6 * f.Visual.ArrowScale
	fmt.Fprintf(b, `<defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="%.1f" markerHeight="%.1f" orient="auto-start-reverse">`+
		`<path d="M0,0 L10,5 L0,10 z" fill="%s"/></marker></defs>`+"\n", arrow, arrow, EdgeColor)

	radius := f.Visual.NodeSize * zoom
	b.WriteString(`<g class="edges">` + "\n")
	for _, e := range f.Edges {
		end := e.To
		if d := e.To.Sub(e.Control); d.Len() > radius {
			end = e.To.Sub(d.Scale(radius / d.Len()))
		}
		marker := ""
		if e.Directed {
			marker = ` marker-end="url(#arrow)"`
		}
		fmt.Fprintf(b, `<path d="M%.1f,%.1f Q%.1f,%.1f %.1f,%.1f" fill="none" stroke="%s" stroke-width="%.1f"%s>`,
			e.From.X, e.From.Y, e.Control.X, e.Control.Y, end.X, end.Y, EdgeColor, math.Max(1, f.Visual.EdgeWidth*zoom), marker)
		if e.Label != "" {
			fmt.Fprintf(b, `<title>%s</title>`, html.EscapeString(e.Label))
		}
		b.WriteString("</path>\n")
	}
	b.WriteString("</g>\n")

	b.WriteString(`<g class="nodes">` + "\n")
	for _, n := range f.Nodes {
		stroke := n.Color
		if n.Focused {
			stroke = FocusColor
		}
		fmt.Fprintf(b, `<g class="node" data-id="%s">`, html.EscapeString(n.ID))
		fmt.Fprintf(b, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s" stroke-width="%.1f"/>`,
			n.Pos.X, n.Pos.Y, n.Radius, n.Color, stroke, f.Visual.BorderWidth)
		fmt.Fprintf(b, `<text x="%.1f" y="%.1f" text-anchor="middle" fill="%s" font-size="12">%s</text>`,
			n.Pos.X, n.Pos.Y+n.Radius+14, LabelColor, html.EscapeString(n.Label))
		if n.Tooltip != "" {
			fmt.Fprintf(b, `<title>%s</title>`, html.EscapeString(n.Tooltip))
		}
		b.WriteString("</g>\n")
	}
	b.WriteString("</g>\n")
}
