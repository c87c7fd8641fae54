package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/graphmodel"
	"github.com/msalah0e/tripgraph/internal/nav"
	"github.com/msalah0e/tripgraph/internal/render"
	"go.uber.org/zap"
)

// Pan and drag steps in virtual pixels.
const (
	panStep  = 4 * render.CellWidth
	dragStep = 2 * render.CellWidth
	zoomStep = 1.25
)

// enterGraph decodes the ID list from url and shows its graph, fetching it
// when the loader has nothing for that list.
func (a *App) enterGraph(url string) tea.Cmd {
	ids, err := nav.DecodeIDs(url)
	if err != nil {
		a.logger.Warn("bad graph url", zap.String("url", url), zap.Error(err))
	}
	a.graphIDs = ids

	job, ok := a.loader.Open(ids)
	switch {
	case len(ids) == 0:
		return a.show(a.empty)
	case ok:
		a.host.Close()
		ctx := a.ctx
		return tea.Batch(a.spinner.Tick, func() tea.Msg {
			return graphDoneMsg{result: job.Run(ctx)}
		})
	}
	if m, ok := a.loader.State().Value(); ok {
		return a.show(m)
	}
	return nil
}

func (a *App) applyGraph(r nav.Result) tea.Cmd {
	if !a.loader.Apply(r) || !a.onGraph() {
		return nil
	}
	if m, ok := a.loader.State().Value(); ok {
		return a.show(m)
	}
	return nil
}

func (a *App) show(m *graphmodel.Model) tea.Cmd {
	prev := a.host.Current()
	r, err := a.host.Show(m, a.canvas)
	if err != nil {
		a.logger.Error("graph view failed", zap.Error(err))
		return nil
	}
	if still(r) || (r == prev && a.animating) {
		return nil
	}
	return a.nextFrame()
}

// still reports whether frames would change nothing for r.
func still(r *render.Renderer) bool {
	st := r.State()
	return r.Resting() || (st != render.LaidOut && st != render.Interactive)
}

func (a *App) nextFrame() tea.Cmd {
	a.animating = true
	gen := a.host.Generation()
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{gen: gen} })
}

// frame advances the live renderer. Frames scheduled for a renderer that
// has since been replaced or disposed are dropped. The loop stops once the
// renderer is resting.
func (a *App) frame(msg frameMsg) tea.Cmd {
	if msg.gen != a.host.Generation() {
		return nil
	}
	r := a.host.Current()
	if r == nil || !a.onGraph() {
		a.animating = false
		return nil
	}
	if err := r.Tick(frameInterval); err != nil {
		a.logger.Debug("frame failed", zap.Error(err))
		a.animating = false
		return nil
	}
	if still(r) {
		a.animating = false
		return nil
	}
	return a.nextFrame()
}

func (a *App) graphKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, graphKeys.Quit):
		return tea.Quit
	case key.Matches(msg, graphKeys.Back):
		return a.navigate(nav.ChatPath)
	case key.Matches(msg, graphKeys.Retry):
		if job, ok := a.loader.Retry(); ok {
			ctx := a.ctx
			return tea.Batch(a.spinner.Tick, func() tea.Msg {
				return graphDoneMsg{result: job.Run(ctx)}
			})
		}
		return nil
	}

	r := a.host.Current()
	if r == nil {
		return nil
	}
	switch {
	case key.Matches(msg, graphKeys.DragUp):
		r.DragFocused(0, -dragStep)
	case key.Matches(msg, graphKeys.DragDown):
		r.DragFocused(0, dragStep)
	case key.Matches(msg, graphKeys.DragLeft):
		r.DragFocused(-dragStep, 0)
	case key.Matches(msg, graphKeys.DragRight):
		r.DragFocused(dragStep, 0)
	case key.Matches(msg, graphKeys.PanUp):
		r.Pan(0, -panStep)
	case key.Matches(msg, graphKeys.PanDown):
		r.Pan(0, panStep)
	case key.Matches(msg, graphKeys.PanLeft):
		r.Pan(-panStep, 0)
	case key.Matches(msg, graphKeys.PanRight):
		r.Pan(panStep, 0)
	case key.Matches(msg, graphKeys.ZoomIn):
		r.Zoom(zoomStep)
	case key.Matches(msg, graphKeys.ZoomOut):
		r.Zoom(1 / zoomStep)
	case key.Matches(msg, graphKeys.NextNode):
		r.FocusNext()
	case key.Matches(msg, graphKeys.PrevNode):
		r.FocusPrev()
	default:
		return nil
	}
	if err := r.Redraw(); err != nil {
		a.logger.Debug("redraw failed", zap.Error(err))
	}
	if !a.animating && !still(r) {
		return a.nextFrame()
	}
	return nil
}

func (a *App) graphView() string {
	n := len(a.graphIDs)
	noun := "nodes"
	if n == 1 {
		noun = "node"
	}
	header := brandStyle.Render("Graph") + "  " + fmt.Sprintf("Visualizing relationships for %d selected %s", n, noun)

	var sub string
	if r := a.host.Current(); r != nil && !r.IsPlaceholder() {
		m := r.Model()
		sub = fmt.Sprintf("%d nodes · %d edges", len(m.Order), len(m.Edges))
		if f, ok := r.Focused(); ok {
			sub += "  ·  focused: " + f.Label
			if f.Tooltip != "" {
				sub += " (" + clip(f.Tooltip, 60) + ")"
			}
		}
	}
	if n > 0 {
		sub = strings.TrimPrefix(sub+"  ·  "+strings.Join(a.graphIDs, ", "), "  ·  ")
	}

	st := a.loader.State()
	var body string
	switch {
	case st.IsPending():
		body = lipgloss.Place(a.canvasWidth(), a.canvasHeight(), lipgloss.Center, lipgloss.Center,
			a.spinner.View()+" Loading graph...")
	case st.IsFailure():
		body = lipgloss.Place(a.canvasWidth(), a.canvasHeight(), lipgloss.Center, lipgloss.Center,
			errorStyle.Render("⚠ "+api.UserMessage(st.Err()))+"\n"+subtleStyle.Render("press r to retry, esc to go back"))
	default:
		body = a.canvas.String()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		subtleStyle.Render(clip(sub, max(a.width, 20))),
		body,
		a.help.View(graphKeys),
	)
}

func (a *App) canvasWidth() int {
	cols, _ := a.canvas.Size()
	return cols
}

func (a *App) canvasHeight() int {
	_, rows := a.canvas.Size()
	return rows
}
