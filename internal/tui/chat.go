package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/msalah0e/tripgraph/internal/api"
	"github.com/msalah0e/tripgraph/internal/chat"
	"github.com/msalah0e/tripgraph/internal/nav"
	"go.uber.org/zap"
)

func (a *App) chatKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, chatKeys.Quit):
		return tea.Quit
	case key.Matches(msg, chatKeys.Focus):
		a.cycleFocus(msg.String() == "shift+tab")
		return nil
	case key.Matches(msg, chatKeys.Graph):
		return a.navigate(nav.GraphURL(a.selection))
	case key.Matches(msg, chatKeys.Copy):
		return a.copyAnswer()
	case key.Matches(msg, chatKeys.ScrollUp, chatKeys.ScrollDown):
		var cmd tea.Cmd
		a.history, cmd = a.history.Update(msg)
		return cmd
	}

	if a.focus == focusInput {
		if key.Matches(msg, chatKeys.Send) {
			return a.submit()
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, chatKeys.Up):
		a.cursor = max(a.cursor-1, 0)
	case key.Matches(msg, chatKeys.Down):
		a.cursor = min(a.cursor+1, max(len(a.panelIDs())-1, 0))
	case key.Matches(msg, chatKeys.Toggle):
		a.toggleCurrent()
	}
	return nil
}

func (a *App) cycleFocus(back bool) {
	step := 1
	if back {
		step = 2
	}
	a.focus = (a.focus + focusArea(step)) % 3
	a.cursor = 0
	if a.focus == focusInput {
		a.input.Focus()
	} else {
		a.input.Blur()
	}
}

// submit sends the input text, or runs it as a slash command. An accepted
// turn clears the input; a failure puts the text back unless the user has
// typed something new in the meantime.
func (a *App) submit() tea.Cmd {
	text := a.input.Value()
	if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "/") {
		a.input.Reset()
		return a.command(trimmed)
	}

	turn, ok := a.session.Submit(text)
	if !ok {
		return nil
	}
	a.pending = turn.Text()
	a.notice = ""
	a.input.Reset()
	a.refreshHistory()

	ctx := a.ctx
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		return chatDoneMsg{outcome: turn.Run(ctx)}
	})
}

func (a *App) command(cmd string) tea.Cmd {
	switch strings.Fields(cmd)[0] {
	case "/clear":
		a.session.Reset()
		a.selection.Clear()
		a.cursor = 0
		a.refreshHistory()
		a.notice = "Conversation and selection cleared"
	case "/graph":
		return a.navigate(nav.GraphURL(a.selection))
	case "/quit", "/exit":
		return tea.Quit
	default:
		a.notice = fmt.Sprintf("Unknown command %s (try /graph, /clear or /quit)", cmd)
	}
	return nil
}

func (a *App) applyTurn(o chat.Outcome) tea.Cmd {
	if !a.session.Apply(o) {
		return nil
	}
	a.pending = ""
	if o.Err != nil {
		if a.input.Value() == "" {
			a.input.SetValue(o.Text)
			a.input.CursorEnd()
		}
	} else {
		a.cursor = 0
	}
	a.refreshHistory()
	return nil
}

// panelIDs lists the entity IDs of the focused side panel, in display order.
func (a *App) panelIDs() []string {
	latest, ok := a.session.Latest()
	if !ok {
		return nil
	}
	var ids []string
	switch a.focus {
	case focusMatches:
		for _, m := range latest.Matches {
			ids = append(ids, m.ID)
		}
	case focusFacts:
		for _, f := range latest.Facts {
			ids = append(ids, f.TargetID)
		}
	}
	return ids
}

func (a *App) toggleCurrent() {
	ids := a.panelIDs()
	if a.cursor >= len(ids) {
		return
	}
	added := a.selection.Toggle(ids[a.cursor])
	a.logger.Debug("selection toggled", zap.String("id", ids[a.cursor]), zap.Bool("added", added), zap.Int("size", a.selection.Len()))
}

func (a *App) copyAnswer() tea.Cmd {
	latest, ok := a.session.Latest()
	if !ok {
		return nil
	}
	if err := a.opts.Clipboard.Copy(latest.Content); err != nil {
		a.logger.Warn("copy to clipboard failed", zap.Error(err))
		return nil
	}
	a.copied = true
	return tea.Tick(copiedFor, func(time.Time) tea.Msg { return copiedResetMsg{} })
}

func (a *App) refreshHistory() {
	a.history.SetContent(a.renderHistory())
	a.history.GotoBottom()
}

func (a *App) renderHistory() string {
	msgs := a.session.History()
	if len(msgs) == 0 && a.pending == "" {
		return welcome()
	}

	var b strings.Builder
	for _, m := range msgs {
		if m.IsAssistant() {
			b.WriteString(botStyle.Render("Assistant") + subtleStyle.Render("  "+m.CreatedAt.Format("15:04")) + "\n")
			b.WriteString(a.markdown(m.Content))
		} else {
			b.WriteString(userStyle.Render("You") + subtleStyle.Render("  "+m.CreatedAt.Format("15:04")) + "\n")
			b.WriteString(m.Content)
		}
		b.WriteString("\n\n")
	}
	if a.pending != "" {
		b.WriteString(userStyle.Render("You") + "\n")
		b.WriteString(subtleStyle.Render(a.pending) + "\n\n")
		b.WriteString(a.spinner.View() + " " + subtleStyle.Render("Thinking..."))
	}
	return b.String()
}

func (a *App) markdown(s string) string {
	if a.md == nil {
		return s
	}
	out, err := a.md.Render(s)
	if err != nil {
		a.logger.Debug("markdown render failed", zap.Error(err))
		return s
	}
	return strings.TrimRight(out, "\n")
}

func welcome() string {
	return strings.Join([]string{
		brandStyle.Render("Welcome to tripgraph"),
		"",
		"Ask about places, food, festivals or routes, for example:",
		subtleStyle.Render("  What is there to see around Hoi An?"),
		subtleStyle.Render("  Which beaches are near Da Nang?"),
		"",
		"Answers list the matching entities and facts on the right.",
		"Add them to the graph with tab and space, then open it with ctrl+g.",
	}, "\n")
}

func (a *App) chatView() string {
	header := brandStyle.Render("tripgraph") + subtleStyle.Render(fmt.Sprintf("  ·  %d selected  ·  %s", a.selection.Len(), a.session.ID()[:8]))

	historyBox := panelStyle
	if a.focus == focusInput {
		historyBox = activePanelStyle
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		historyBox.Render(a.history.View()),
		a.sidePanel(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		a.statusLine(),
		a.input.View(),
		a.help.View(chatKeys),
	)
}

func (a *App) statusLine() string {
	st := a.session.State()
	switch {
	case st.IsFailure():
		return errorStyle.Render("⚠ " + api.UserMessage(st.Err()))
	case a.copied:
		return infoStyle.Render("Copied")
	case a.notice != "":
		return infoStyle.Render(a.notice)
	}
	return ""
}

func (a *App) sidePanel() string {
	pw := a.panelWidth()
	latest, _ := a.session.Latest()

	var matches []string
	for i, m := range latest.Matches {
		matches = append(matches, a.item(focusMatches, i, matchLines(m, a.selection.Contains(m.ID))))
	}
	var facts []string
	for i, f := range latest.Facts {
		facts = append(facts, a.item(focusFacts, i, factLines(f, a.selection.Contains(f.TargetID))))
	}

	section := func(area focusArea, title string, items []string) string {
		style := panelStyle
		if a.focus == area {
			style = activePanelStyle
		}
		content := sectionStyle.Render(title)
		if len(items) == 0 {
			content += "\n" + subtleStyle.Render("Nothing yet")
		} else {
			content += "\n" + strings.Join(items, "\n")
		}
		return style.Width(pw).MaxHeight(max(a.history.Height/2+1, 4)).Render(content)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		section(focusMatches, fmt.Sprintf("Matches (%d)", len(latest.Matches)), matches),
		section(focusFacts, fmt.Sprintf("Facts (%d)", len(latest.Facts)), facts),
	)
}

func (a *App) item(area focusArea, i int, lines []string) string {
	marker := "  "
	if a.focus == area && a.cursor == i {
		marker = cursorStyle.Render("› ")
	}
	last := len(lines) - 1
	if strings.HasSuffix(lines[last], "Added") {
		lines[last] = strings.TrimSuffix(lines[last], "Added") + addedStyle.Render("Added")
	}
	out := marker + fmt.Sprintf("%d. ", i+1) + lines[0]
	for _, l := range lines[1:] {
		out += "\n     " + l
	}
	return out
}
