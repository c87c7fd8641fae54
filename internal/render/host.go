package render

import "github.com/msalah0e/tripgraph/internal/graphmodel"

// Host keeps at most one live Renderer and recreates it only when the model
// identity changes.
type Host struct {
	opts    Options
	model   *graphmodel.Model
	current *Renderer
	gen     uint64
}

func NewHost(opts Options) *Host {
	return &Host{opts: opts}
}

// Show mounts model on s. The same model pointer keeps the current renderer
// unless it was disposed; a different one disposes it first and mounts a
// fresh renderer.
func (h *Host) Show(model *graphmodel.Model, s Surface) (*Renderer, error) {
	if h.current != nil && h.model == model && h.current.State() != Disposed {
		return h.current, nil
	}
	h.Close()
	h.gen++
	h.model = model
	h.current = New(model, h.opts)
	return h.current, h.current.Mount(s)
}

func (h *Host) Current() *Renderer { return h.current }

// Generation changes every time a renderer is created or closed. Tick
// messages carry it so ticks for a disposed renderer are dropped.
func (h *Host) Generation() uint64 { return h.gen }

// Close disposes the current renderer.
func (h *Host) Close() {
	if h.current == nil {
		return
	}
	h.current.Dispose()
	h.current = nil
	h.model = nil
	h.gen++
}
