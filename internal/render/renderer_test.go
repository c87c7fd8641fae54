package render

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/graphmodel"
	"github.com/msalah0e/tripgraph/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	pos         map[string]layout.Vec
	listeners   []func()
	steps       int
	stabilizeAt int
	closed      int
	awake       bool
}

func (f *fakeEngine) On(_ layout.Event, fn func()) { f.listeners = append(f.listeners, fn) }

func (f *fakeEngine) Step() {
	if f.closed > 0 {
		return
	}
	f.steps++
	f.awake = false
	if f.steps == f.stabilizeAt {
		for _, fn := range f.listeners {
			fn()
		}
	}
}

func (f *fakeEngine) Position(id string) (layout.Vec, bool) {
	p, ok := f.pos[id]
	return p, ok
}

func (f *fakeEngine) Bounds() layout.Bounds {
	b := layout.Bounds{Min: layout.Vec{X: 1e9, Y: 1e9}, Max: layout.Vec{X: -1e9, Y: -1e9}}
	for _, p := range f.pos {
		b.Min.X, b.Min.Y = min(b.Min.X, p.X), min(b.Min.Y, p.Y)
		b.Max.X, b.Max.Y = max(b.Max.X, p.X), max(b.Max.Y, p.Y)
	}
	return b
}

func (f *fakeEngine) MoveTo(id string, p layout.Vec) bool {
	if _, ok := f.pos[id]; !ok {
		return false
	}
	f.pos[id] = p
	f.awake = true
	return true
}

func (f *fakeEngine) IsStable() bool { return f.steps >= f.stabilizeAt && !f.awake }

func (f *fakeEngine) Close() {
	f.closed++
	f.listeners = nil
}

type fakeSurface struct {
	bindErr      error
	binds        int
	draws        int
	placeholders int
	releases     int
	last         Frame
}

func (s *fakeSurface) Viewport() layout.Viewport { return layout.Viewport{Width: 800, Height: 600} }

func (s *fakeSurface) Bind() error {
	s.binds++
	return s.bindErr
}

func (s *fakeSurface) Draw(f Frame) error {
	s.draws++
	s.last = f
	return nil
}

func (s *fakeSurface) Placeholder(_, _ string) error {
	s.placeholders++
	return nil
}

func (s *fakeSurface) Release() { s.releases++ }

func sampleModel() *graphmodel.Model {
	return graphmodel.Build([]string{"hoi_an", "quang_nam", "da_nang"}, &api.GraphResponse{
		Nodes: []api.GraphNode{
			{ID: "hoi_an", Label: "Hoi An", Group: "City", Title: "Ancient town"},
			{ID: "quang_nam", Label: "Quang Nam", Group: "Province"},
			{ID: "da_nang", Label: "Da Nang", Group: "City"},
		},
		Edges: []api.GraphEdge{
			{From: "hoi_an", To: "quang_nam", Label: "Located_In", Arrows: "to"},
			{From: "da_nang", To: "hoi_an", Label: "Near"},
		},
	})
}

func fakeOptions(eng *fakeEngine, built *int) Options {
	opts := DefaultOptions()
	opts.FitDuration = 100 * time.Millisecond
	opts.NewEngine = func(ids []string, _ []layout.Link, _ layout.Physics) (Engine, error) {
		*built++
		eng.pos = map[string]layout.Vec{}
		for i, id := range ids {
			eng.pos[id] = layout.Vec{X: float64(i) * 100, Y: float64(i%2) * 80}
		}
		return eng, nil
	}
	return opts
}

func TestEmptyModelShowsPlaceholder(t *testing.T) {
	var built int
	surface := &fakeSurface{}
	r := New(graphmodel.Empty(), fakeOptions(&fakeEngine{}, &built))

	require.NoError(t, r.Mount(surface))
	assert.Zero(t, built, "no engine for an empty model")
	assert.Equal(t, 1, surface.placeholders)
	assert.Zero(t, surface.binds)
	assert.Equal(t, Uninitialized, r.State())
	assert.True(t, r.IsPlaceholder())
	assert.NoError(t, r.Settle(context.Background(), 10))
	assert.NoError(t, r.Tick(FrameInterval))
	assert.Zero(t, surface.draws)

	r.Dispose()
	assert.Equal(t, Disposed, r.State())
	assert.Equal(t, 1, surface.releases)
}

func TestLifecycle(t *testing.T) {
	var built int
	eng := &fakeEngine{stabilizeAt: 12}
	surface := &fakeSurface{}
	r := New(sampleModel(), fakeOptions(eng, &built))
	assert.Equal(t, Uninitialized, r.State())

	require.NoError(t, r.Mount(surface))
	assert.Equal(t, 1, built)
	assert.Equal(t, 1, surface.binds)
	assert.Equal(t, LaidOut, r.State())
	assert.ErrorIs(t, r.Mount(surface), ErrMounted)

	assert.False(t, r.Pan(10, 0), "no input before stabilization")
	assert.False(t, r.Zoom(2))

	require.NoError(t, r.Tick(50*time.Millisecond))
	require.NoError(t, r.Tick(50*time.Millisecond))
	assert.Equal(t, LaidOut, r.State())

	require.NoError(t, r.Tick(50*time.Millisecond))
	assert.Equal(t, Interactive, r.State())
	assert.True(t, r.Framing())

	require.NoError(t, r.Tick(50*time.Millisecond))
	assert.False(t, r.Framing())
	assert.True(t, r.Settled())

	// no later programmatic framing
	cam := r.Camera()
	for i := 0; i < 20; i++ {
		require.NoError(t, r.Tick(50*time.Millisecond))
	}
	assert.Equal(t, cam, r.Camera())
	assert.Equal(t, Interactive, r.State())

	assert.Len(t, surface.last.Nodes, 3)
	assert.Len(t, surface.last.Edges, 2)

	r.Dispose()
	r.Dispose()
	assert.Equal(t, Disposed, r.State())
	assert.Equal(t, 1, eng.closed)
	assert.Equal(t, 1, surface.releases)

	draws := surface.draws
	require.NoError(t, r.Tick(50*time.Millisecond))
	assert.Equal(t, draws, surface.draws)
	assert.ErrorIs(t, r.Mount(surface), ErrDisposed)
}

func TestStabilizedTransitionHappensOnce(t *testing.T) {
	var built int
	eng := &fakeEngine{stabilizeAt: 1}
	r := New(sampleModel(), fakeOptions(eng, &built))
	require.NoError(t, r.Mount(&fakeSurface{}))
	require.NoError(t, r.Tick(time.Second))
	require.True(t, r.Settled())

	// a second event from the engine does not restart framing
	for _, fn := range eng.listeners {
		fn()
	}
	assert.False(t, r.Framing())
}

func TestUserInputCancelsFit(t *testing.T) {
	var built int
	eng := &fakeEngine{stabilizeAt: 1}
	r := New(sampleModel(), fakeOptions(eng, &built))
	require.NoError(t, r.Mount(&fakeSurface{}))
	require.NoError(t, r.Tick(10*time.Millisecond))
	require.True(t, r.Framing())

	before := r.Camera()
	assert.True(t, r.Pan(40, 0))
	assert.False(t, r.Framing())
	assert.InDelta(t, before.Center.X+40/before.Zoom, r.Camera().Center.X, 1e-9)

	assert.True(t, r.Zoom(2))
	assert.InDelta(t, before.Zoom*2, r.Camera().Zoom, 1e-9)
}

func TestEngineFactoryFailure(t *testing.T) {
	opts := DefaultOptions()
	opts.NewEngine = func([]string, []layout.Link, layout.Physics) (Engine, error) {
		return nil, errors.New("out of memory")
	}
	surface := &fakeSurface{}
	r := New(sampleModel(), opts)

	err := r.Mount(surface)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
	assert.Equal(t, Disposed, r.State())
	assert.Equal(t, 1, surface.releases)
	assert.Zero(t, surface.binds)
}

func TestBindFailureReleasesEngine(t *testing.T) {
	var built int
	eng := &fakeEngine{stabilizeAt: 1}
	surface := &fakeSurface{bindErr: errors.New("no tty")}
	r := New(sampleModel(), fakeOptions(eng, &built))

	require.Error(t, r.Mount(surface))
	assert.Equal(t, Disposed, r.State())
	assert.Equal(t, 1, eng.closed)
	assert.Empty(t, eng.listeners)
}

func TestFocusAndDrag(t *testing.T) {
	var built int
	eng := &fakeEngine{stabilizeAt: 1}
	r := New(sampleModel(), fakeOptions(eng, &built))
	require.NoError(t, r.Mount(&fakeSurface{}))

	_, ok := r.Focused()
	assert.False(t, ok)

	r.FocusNext()
	n, ok := r.Focused()
	require.True(t, ok)
	assert.Equal(t, "hoi_an", n.ID)

	r.FocusPrev()
	r.FocusPrev()
	n, _ = r.Focused()
	assert.Equal(t, "quang_nam", n.ID)

	assert.False(t, r.DragFocused(10, 0), "drag needs an interactive renderer")
	require.NoError(t, r.Tick(time.Second))

	before := eng.pos["quang_nam"]
	require.True(t, r.DragFocused(10, 0))
	after := eng.pos["quang_nam"]
	assert.InDelta(t, before.X+10/r.Camera().Zoom, after.X, 1e-9)
}

func TestResting(t *testing.T) {
	var built int
	eng := &fakeEngine{stabilizeAt: 1}
	r := New(sampleModel(), fakeOptions(eng, &built))
	require.NoError(t, r.Mount(&fakeSurface{}))
	assert.False(t, r.Resting())

	require.NoError(t, r.Tick(time.Second))
	assert.Equal(t, Interactive, r.State())
	assert.True(t, r.Resting())

	r.FocusNext()
	require.True(t, r.DragFocused(5, 5))
	assert.False(t, r.Resting(), "a drag wakes the layout")

	require.NoError(t, r.Tick(time.Second))
	assert.True(t, r.Resting())

	r.Dispose()
	assert.False(t, r.Resting())
}

func TestSettleWithLayoutEngine(t *testing.T) {
	r := New(sampleModel(), DefaultOptions())
	canvas := NewCanvas(80, 24)
	require.NoError(t, r.Mount(canvas))
	require.NoError(t, r.Settle(context.Background(), 500))
	assert.Equal(t, Interactive, r.State())

	out := canvas.Plain()
	assert.Contains(t, out, "Hoi An")
	assert.Contains(t, out, "Quang Nam")
	assert.Equal(t, 3, strings.Count(out, "●"))
}

func TestSettleHonoursContext(t *testing.T) {
	r := New(sampleModel(), DefaultOptions())
	require.NoError(t, r.Mount(NewSVG(400, 300)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Settle(ctx, 500), context.Canceled)
}

func TestHost(t *testing.T) {
	h := NewHost(DefaultOptions())
	m := sampleModel()

	r1, err := h.Show(m, NewCanvas(80, 24))
	require.NoError(t, err)
	gen := h.Generation()

	again, err := h.Show(m, NewCanvas(80, 24))
	require.NoError(t, err)
	assert.Same(t, r1, again, "same model keeps the renderer")
	assert.Equal(t, gen, h.Generation())

	r2, err := h.Show(sampleModel(), NewCanvas(80, 24))
	require.NoError(t, err)
	assert.NotSame(t, r1, r2)
	assert.Equal(t, Disposed, r1.State())
	assert.Greater(t, h.Generation(), gen)

	h.Close()
	assert.Equal(t, Disposed, r2.State())
	assert.Nil(t, h.Current())
}
