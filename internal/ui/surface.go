package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/conn-castle/apps/internal/messages"
)

// Surface is the screen area an install runs on top of.
type Surface interface {
	// Blur marks the surface busy.
	Blur()
	// Unblur restores the surface.
	Unblur()
}

const (
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
	clearLine  = "\r\x1b[K"
)

// TerminalSurface shows a busy line and hides the cursor while blurred.
// It only emits escape sequences when Enabled is set.
type TerminalSurface struct {
	Out     io.Writer
	Enabled bool
	busy    bool
}

// NewTerminalSurface returns a surface drawing on out when enabled.
func NewTerminalSurface(out io.Writer, enabled bool) *TerminalSurface {
	return &TerminalSurface{Out: out, Enabled: enabled}
}

// Blur shows the busy indicator.
func (s *TerminalSurface) Blur() {
	if s.busy {
		return
	}
	s.busy = true
	if !s.Enabled {
		return
	}
	_, _ = fmt.Fprint(s.Out, hideCursor+color.New(color.Faint).Sprint(messages.SurfaceBusy))
}

// Unblur clears the busy indicator and restores the cursor.
func (s *TerminalSurface) Unblur() {
	if !s.busy {
		return
	}
	s.busy = false
	if !s.Enabled {
		return
	}
	_, _ = fmt.Fprint(s.Out, clearLine+showCursor)
}
