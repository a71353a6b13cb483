// Package ui presents installer dialogs and the busy indicator in the terminal.
package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/fatih/color"

	"github.com/conn-castle/apps/internal/messages"
	"github.com/conn-castle/apps/internal/terminal"
)

// Dialogs shows modal messages and asks for secrets.
type Dialogs interface {
	// Message shows title and body and returns once the user dismisses it.
	Message(title string, body string) error
	// Secret asks for a hidden value. ok is false when the user cancels.
	Secret(title string) (value string, ok bool, err error)
	// Flush returns once every previously shown dialog is gone from the screen.
	Flush()
}

// HuhDialogs implements Dialogs with charmbracelet/huh forms. Without a terminal,
// messages are printed to Out and secrets cannot be requested.
type HuhDialogs struct {
	Out        io.Writer
	isTerminal func() bool
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhDialogs returns dialogs that fall back to plain output on out.
func NewHuhDialogs(out io.Writer) *HuhDialogs {
	return &HuhDialogs{Out: out, isTerminal: terminal.IsInteractive}
}

func (d *HuhDialogs) interactive() bool {
	if d.isTerminal == nil {
		return terminal.IsInteractive()
	}
	return d.isTerminal()
}

// dialogKeyMap makes both Esc and Ctrl+C abort the form.
func dialogKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "cancel"))
	return km
}

// interruptToQuit turns tea.InterruptMsg into tea.QuitMsg so the renderer clears
// the form before Run returns.
func interruptToQuit(_ tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.InterruptMsg); ok {
		return tea.QuitMsg{}
	}
	return msg
}

func (d *HuhDialogs) out() io.Writer {
	if d.Out == nil {
		return os.Stderr
	}
	return d.Out
}

func (d *HuhDialogs) runForm(field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field))
	form.WithKeyMap(dialogKeyMap())
	form.WithProgramOptions(
		tea.WithOutput(d.out()),
		tea.WithFilter(interruptToQuit),
	)
	return runFormFunc(form)
}

// Message shows a note. Cancelling a note counts as dismissing it.
func (d *HuhDialogs) Message(title string, body string) error {
	if !d.interactive() {
		_, err := fmt.Fprintf(d.out(), "%s\n%s\n", color.New(color.Bold).Sprint(title), body)
		return err
	}
	err := d.runForm(huh.NewNote().Title(title).Description(body))
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}

// Secret asks for a masked value.
func (d *HuhDialogs) Secret(title string) (string, bool, error) {
	if !d.interactive() {
		return "", false, errors.New(messages.TerminalRequired)
	}
	var value string
	err := d.runForm(huh.NewInput().
		Title(title).
		Value(&value).
		EchoMode(huh.EchoModePassword))
	if errors.Is(err, huh.ErrUserAborted) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Flush is a no-op: huh tears down its renderer before Run returns, so no dialog
// output is pending once Message or Secret has returned.
func (d *HuhDialogs) Flush() {}
