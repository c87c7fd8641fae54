// Package render drives the graph view lifecycle: it lays a graph model out
// with the layout engine, frames it once stabilization completes and draws
// frames onto a Surface until disposed.
package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/msalah0e/tripgraph/internal/graphmodel"
	"github.com/msalah0e/tripgraph/internal/layout"
	"go.uber.org/zap"
)

// State is the renderer lifecycle position.
type State int

const (
	Uninitialized State = iota
	LaidOut
	Interactive
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case LaidOut:
		return "laid-out"
	case Interactive:
		return "interactive"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

var (
	ErrDisposed   = errors.New("render: renderer disposed")
	ErrMounted    = errors.New("render: renderer already mounted")
	ErrNotSettled = errors.New("render: layout did not settle")
)

// Placeholder text shown for an empty model.
const (
	PlaceholderTitle = "No nodes to display"
	PlaceholderHint  = "Select entities in chat and open the graph view"
)

// FrameInterval is the tick length used by Settle.
const FrameInterval = 16 * time.Millisecond

// Engine is the simulation a Renderer drives. *layout.Engine implements it.
type Engine interface {
	On(ev layout.Event, fn func())
	Step()
	Position(id string) (layout.Vec, bool)
	Bounds() layout.Bounds
	MoveTo(id string, pos layout.Vec) bool
	// IsStable reports that Step would no longer move anything.
	IsStable() bool
	Close()
}

// EngineFactory constructs the simulation for one model.
type EngineFactory func(ids []string, links []layout.Link, p layout.Physics) (Engine, error)

// NewLayoutEngine is the default EngineFactory.
func NewLayoutEngine(ids []string, links []layout.Link, p layout.Physics) (Engine, error) {
	e, err := layout.NewEngine(ids, links, p)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Visual holds the fixed drawing options.
type Visual struct {
	NodeSize    float64 // dot radius in world units
	BorderWidth float64
	EdgeWidth   float64
	ArrowScale  float64
	Roundness   float64 // 0 draws straight edges
}

func DefaultVisual() Visual {
	return Visual{NodeSize: 20, BorderWidth: 2, EdgeWidth: 2, ArrowScale: 1, Roundness: 0.5}
}

// Options configure a Renderer.
type Options struct {
	Physics      layout.Physics
	Visual       Visual
	FitDuration  time.Duration
	FitPadding   float64
	StepsPerTick int
	NewEngine    EngineFactory
	Logger       *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Physics:      layout.DefaultPhysics(),
		Visual:       DefaultVisual(),
		FitDuration:  time.Second,
		FitPadding:   24,
		StepsPerTick: 5,
		NewEngine:    NewLayoutEngine,
		Logger:       zap.NewNop(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Physics == (layout.Physics{}) {
		o.Physics = d.Physics
	}
	if o.Visual == (Visual{}) {
		o.Visual = d.Visual
	}
	if o.FitDuration <= 0 {
		o.FitDuration = d.FitDuration
	}
	if o.StepsPerTick <= 0 {
		o.StepsPerTick = d.StepsPerTick
	}
	if o.NewEngine == nil {
		o.NewEngine = d.NewEngine
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	return o
}

// Renderer owns one engine for one model. It is driven from a single event
// loop and is not safe for concurrent use.
type Renderer struct {
	model       *graphmodel.Model
	opts        Options
	logger      *zap.Logger
	state       State
	engine      Engine
	surface     Surface
	camera      layout.Camera
	fit         *layout.Transition
	placeholder bool
	focus       int
	colors      map[string]string
}

// New returns an Uninitialized renderer for model.
func New(model *graphmodel.Model, opts Options) *Renderer {
	opts = opts.withDefaults()
	if model == nil {
		model = graphmodel.Empty()
	}
	return &Renderer{
		model:  model,
		opts:   opts,
		logger: opts.Logger.With(zap.Int("nodes", len(model.Order)), zap.Int("edges", len(model.Edges))),
		camera: layout.DefaultCamera(),
		focus:  -1,
		colors: GroupColors(model.Groups()),
	}
}

// Mount attaches the renderer to s. An empty model draws a placeholder and
// never constructs an engine. Otherwise the engine is built and bound and the
// renderer becomes LaidOut. On any construction or bind failure the engine is
// released and the renderer is Disposed.
func (r *Renderer) Mount(s Surface) error {
	switch {
	case r.state == Disposed:
		return ErrDisposed
	case r.state != Uninitialized || r.surface != nil:
		return ErrMounted
	}
	r.surface = s

	if r.model.IsEmpty() {
		r.placeholder = true
		r.logger.Debug("empty model, drawing placeholder")
		return s.Placeholder(PlaceholderTitle, PlaceholderHint)
	}

	links := make([]layout.Link, 0, len(r.model.Edges))
	for _, e := range r.model.Edges {
		links = append(links, layout.Link{From: e.From, To: e.To})
	}
	engine, err := r.opts.NewEngine(r.model.Order, links, r.opts.Physics)
	if err != nil {
		r.teardown()
		return fmt.Errorf("render: create engine: %w", err)
	}
	r.engine = engine
	engine.On(layout.Stabilized, r.onStabilized)

	if err := s.Bind(); err != nil {
		r.teardown()
		return fmt.Errorf("render: bind surface: %w", err)
	}

	r.camera = layout.Fit(engine.Bounds(), s.Viewport(), r.opts.FitPadding)
	r.state = LaidOut
	r.logger.Debug("renderer laid out")
	return r.draw()
}

func (r *Renderer) onStabilized() {
	if r.state != LaidOut {
		return
	}
	r.state = Interactive
	r.fit = &layout.Transition{
		From:     r.camera,
		To:       layout.Fit(r.engine.Bounds(), r.surface.Viewport(), r.opts.FitPadding),
		Duration: r.opts.FitDuration,
	}
	r.logger.Debug("layout stabilized, fitting view")
}

// Tick advances the simulation and any running fit transition by dt, then
// draws a frame. It does nothing unless the renderer is LaidOut or Interactive.
func (r *Renderer) Tick(dt time.Duration) error {
	if r.engine == nil || (r.state != LaidOut && r.state != Interactive) {
		return nil
	}
	for i := 0; i < r.opts.StepsPerTick && r.engine != nil; i++ {
		r.engine.Step()
	}
	if r.fit != nil {
		cam, done := r.fit.Advance(dt)
		r.camera = cam
		if done {
			r.fit = nil
		}
	}
	return r.draw()
}

// Settle ticks until the renderer is Interactive with its framing finished.
// An empty model is settled as soon as its placeholder is drawn.
func (r *Renderer) Settle(ctx context.Context, maxTicks int) error {
	if r.placeholder {
		return nil
	}
	for i := 0; i < maxTicks; i++ {
		if r.Settled() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.Tick(FrameInterval); err != nil {
			return err
		}
	}
	if r.Settled() {
		return nil
	}
	return ErrNotSettled
}

// Settled reports whether the initial framing has completed or was
// interrupted by the user.
func (r *Renderer) Settled() bool {
	return r.state == Interactive && r.fit == nil
}

// Resting reports whether the renderer is settled and its layout has stopped
// moving. Ticks do nothing until input wakes the layout again.
func (r *Renderer) Resting() bool {
	return r.Settled() && r.engine != nil && r.engine.IsStable()
}

// interactive gates user input; input cancels a running fit.
func (r *Renderer) interactive() bool {
	if r.state != Interactive {
		return false
	}
	r.fit = nil
	return true
}

// Pan moves the view by dx, dy surface units.
func (r *Renderer) Pan(dx, dy float64) bool {
	if !r.interactive() {
		return false
	}
	r.camera = r.camera.Pan(layout.Vec{X: dx, Y: dy})
	return true
}

// Zoom scales the view by factor around its centre.
func (r *Renderer) Zoom(factor float64) bool {
	if !r.interactive() || factor <= 0 {
		return false
	}
	r.camera = r.camera.ZoomBy(factor)
	return true
}

// FocusNext moves keyboard focus to the next node in model order.
func (r *Renderer) FocusNext() { r.moveFocus(1) }

// FocusPrev moves keyboard focus to the previous node in model order.
func (r *Renderer) FocusPrev() { r.moveFocus(-1) }

func (r *Renderer) moveFocus(step int) {
	n := len(r.model.Order)
	if n == 0 || r.engine == nil {
		return
	}
	if r.focus < 0 {
		if step > 0 {
			r.focus = 0
		} else {
			r.focus = n - 1
		}
		return
	}
	r.focus = ((r.focus+step)%n + n) % n
}

// Focused returns the node holding keyboard focus.
func (r *Renderer) Focused() (graphmodel.Node, bool) {
	if r.focus < 0 || r.focus >= len(r.model.Order) || r.engine == nil {
		return graphmodel.Node{}, false
	}
	return r.model.Nodes[r.model.Order[r.focus]], true
}

// DragFocused moves the focused node by dx, dy surface units.
func (r *Renderer) DragFocused(dx, dy float64) bool {
	n, ok := r.Focused()
	if !ok || !r.interactive() {
		return false
	}
	pos, ok := r.engine.Position(n.ID)
	if !ok {
		return false
	}
	return r.engine.MoveTo(n.ID, pos.Add(layout.Vec{X: dx, Y: dy}.Scale(1/r.camera.Zoom)))
}

// Dispose tears down the engine and releases the surface. It is safe to call
// in any state and more than once.
func (r *Renderer) Dispose() {
	if r.state == Disposed {
		return
	}
	r.teardown()
	r.logger.Debug("renderer disposed")
}

func (r *Renderer) teardown() {
	r.fit = nil
	if r.engine != nil {
		r.engine.Close()
		r.engine = nil
	}
	if r.surface != nil {
		r.surface.Release()
		r.surface = nil
	}
	r.state = Disposed
}

func (r *Renderer) State() State             { return r.state }
func (r *Renderer) Model() *graphmodel.Model { return r.model }
func (r *Renderer) Camera() layout.Camera    { return r.camera }
func (r *Renderer) IsPlaceholder() bool      { return r.placeholder }

// Framing reports whether the fit transition is running.
func (r *Renderer) Framing() bool { return r.fit != nil }

// Redraw draws the current frame again, after a surface resize for example.
func (r *Renderer) Redraw() error {
	switch {
	case r.surface == nil:
		return nil
	case r.placeholder:
		return r.surface.Placeholder(PlaceholderTitle, PlaceholderHint)
	}
	return r.draw()
}

func (r *Renderer) draw() error {
	if r.engine == nil || r.surface == nil {
		return nil
	}
	return r.surface.Draw(r.frame())
}

func (r *Renderer) frame() Frame {
	vp := r.surface.Viewport()
	f := Frame{
		Camera:   r.camera,
		Viewport: vp,
		Visual:   r.opts.Visual,
		State:    r.state,
		Nodes:    make([]FrameNode, 0, len(r.model.Order)),
		Edges:    make([]FrameEdge, 0, len(r.model.Edges)),
	}

	screen := make(map[string]layout.Vec, len(r.model.Order))
	for i, id := range r.model.Order {
		pos, ok := r.engine.Position(id)
		if !ok {
			continue
		}
		p := r.camera.ToScreen(pos, vp)
		screen[id] = p
		n := r.model.Nodes[id]
		f.Nodes = append(f.Nodes, FrameNode{
			ID:      id,
			Label:   n.Label,
			Tooltip: n.Tooltip,
			Group:   n.Group,
			Color:   r.colors[n.Group],
			Pos:     p,
			Radius:  r.opts.Visual.NodeSize * r.camera.Zoom,
			Focused: i == r.focus,
		})
	}

	for _, e := range r.model.Edges {
		from, ok1 := screen[e.From]
		to, ok2 := screen[e.To]
		if !ok1 || !ok2 {
			continue
		}
		f.Edges = append(f.Edges, FrameEdge{
			From:     from,
			To:       to,
			Control:  controlPoint(from, to, r.opts.Visual.Roundness),
			Label:    e.Label,
			Directed: e.Directed,
		})
	}
	return f
}

// controlPoint bows the edge sideways by a quarter of its length times
// roundness.
func controlPoint(from, to layout.Vec, roundness float64) layout.Vec {
	mid := from.Lerp(to, 0.5)
	d := to.Sub(from)
	l := d.Len()
	if l == 0 || roundness == 0 {
		return mid
	}
	normal := layout.Vec{X: -d.Y / l, Y: d.X / l}
	return mid.Add(normal.Scale(math.Min(l, 400) * roundness / 4))
}
