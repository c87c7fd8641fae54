package tui

import (
	"io"
	"os"

	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// OSC52 copies through the terminal's OSC 52 escape, so it also works over
// SSH. Output goes to stderr, which the UI renderer does not use.
type OSC52 struct {
	W io.Writer
}

func (c OSC52) Copy(text string) error {
	w := c.W
	if w == nil {
		w = os.Stderr
	}
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	_, err := seq.WriteTo(w)
	return err
}
