// Package tui is the interactive terminal client: a chat view and a graph
// view. The views share no state directly; the graph view learns which
// entities to show only from the graph URL it is navigated to.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/msalah0e/tripgraph/internal/chat"
	"github.com/msalah0e/tripgraph/internal/graphmodel"
	"github.com/msalah0e/tripgraph/internal/nav"
	"github.com/msalah0e/tripgraph/internal/render"
	"github.com/msalah0e/tripgraph/internal/selection"
	"go.uber.org/zap"
)

const (
	frameInterval = 33 * time.Millisecond
	copiedFor     = 2 * time.Second
)

// Client is the backend surface the UI needs. *api.Client implements it.
type Client interface {
	chat.Client
	nav.Fetcher
}

// Options configure the App.
type Options struct {
	Client    Client
	Logger    *zap.Logger
	Render    render.Options
	Markdown  bool
	Style     string // glamour style name; "" or "auto" detects the background
	Clipboard Clipboard
	// StartURL is the first route; empty starts in the chat view.
	StartURL string
}

type (
	chatDoneMsg    struct{ outcome chat.Outcome }
	graphDoneMsg   struct{ result nav.Result }
	frameMsg       struct{ gen uint64 }
	copiedResetMsg struct{}
)

type focusArea int

const (
	focusInput focusArea = iota
	focusMatches
	focusFacts
)

// App is the root bubbletea model.
type App struct {
	ctx       context.Context
	opts      Options
	logger    *zap.Logger
	session   *chat.Session
	selection *selection.Set
	loader    *nav.Loader
	host      *render.Host
	empty     *graphmodel.Model
	route     string
	width     int
	height    int
	help      help.Model

	input   textinput.Model
	history viewport.Model
	spinner spinner.Model
	md      *glamour.TermRenderer
	focus   focusArea
	cursor  int
	pending string
	copied  bool
	notice  string

	canvas    *render.Canvas
	graphIDs  []string
	animating bool
}

// New builds the App. ctx bounds every backend call it issues.
func New(ctx context.Context, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = OSC52{}
	}
	opts.Render.Logger = opts.Logger.Named("render")

	in := textinput.New()
	in.Placeholder = "Ask about a destination..."
	in.Prompt = "› "
	in.CharLimit = 2000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = brandStyle

	a := &App{
		ctx:       ctx,
		opts:      opts,
		logger:    opts.Logger,
		session:   chat.NewSession(opts.Client, chat.WithLogger(opts.Logger.Named("chat"))),
		selection: selection.New(),
		loader:    nav.NewLoader(opts.Client, nav.WithLoaderLogger(opts.Logger.Named("nav"))),
		host:      render.NewHost(opts.Render),
		empty:     graphmodel.Empty(),
		route:     nav.ChatPath,
		help:      help.New(),
		input:     in,
		history:   viewport.New(80, 20),
		spinner:   sp,
		canvas:    render.NewCanvas(80, 20),
	}
	a.refreshHistory()
	return a
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	app := New(ctx, opts)
	defer app.host.Close()
	_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.opts.StartURL != "" && a.opts.StartURL != nav.ChatPath {
		cmds = append(cmds, a.navigate(a.opts.StartURL))
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if a.onGraph() {
			return a, a.graphKey(msg)
		}
		return a, a.chatKey(msg)

	case chatDoneMsg:
		return a, a.applyTurn(msg.outcome)

	case graphDoneMsg:
		return a, a.applyGraph(msg.result)

	case frameMsg:
		return a, a.frame(msg)

	case copiedResetMsg:
		a.copied = false
		return a, nil

	case spinner.TickMsg:
		if !a.session.State().IsPending() && !a.loader.State().IsPending() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		if a.pending != "" {
			a.refreshHistory()
		}
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.onGraph() {
		return a.graphView()
	}
	return a.chatView()
}

// Route is the current URL.
func (a *App) Route() string { return a.route }

func (a *App) onGraph() bool { return nav.IsGraphURL(a.route) }

// navigate switches views. Leaving the graph view disposes its renderer.
func (a *App) navigate(to string) tea.Cmd {
	a.route = to
	a.notice = ""
	a.logger.Debug("navigate", zap.String("url", to))
	if nav.IsGraphURL(to) {
		a.input.Blur()
		return a.enterGraph(to)
	}
	a.host.Close()
	a.input.Focus()
	return textinput.Blink
}

func (a *App) resize(w, h int) {
	a.width, a.height = w, h
	a.help.Width = w

	pw := a.panelWidth()
	a.history.Width = max(w-pw-4, 20)
	a.history.Height = max(h-8, 3)
	a.input.Width = max(w-6, 10)
	if a.opts.Markdown {
		a.md = newMarkdown(a.opts.Style, a.history.Width-2, a.logger)
	}
	a.refreshHistory()

	a.canvas.Resize(max(w, 1), max(h-5, 1))
	if r := a.host.Current(); r != nil {
		if err := r.Redraw(); err != nil {
			a.logger.Debug("redraw after resize", zap.Error(err))
		}
	}
}

func (a *App) panelWidth() int {
	if a.width == 0 {
		return 40
	}
	return min(44, a.width/3)
}

func newMarkdown(style string, width int, logger *zap.Logger) *glamour.TermRenderer {
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(max(width, 20)))
	if err != nil {
		logger.Warn("markdown renderer unavailable", zap.Error(err))
		return nil
	}
	return r
}
