package ui

import (
	"bytes"
	"errors"
	"os"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRunForm(t *testing.T, fn func(*huh.Form) error) {
	t.Helper()
	orig := runFormFunc
	runFormFunc = fn
	t.Cleanup(func() { runFormFunc = orig })
}

func TestNewHuhDialogs(t *testing.T) {
	d := NewHuhDialogs(&bytes.Buffer{})
	assert.NotNil(t, d.isTerminal)
}

func TestMessageWithoutTerminalPrints(t *testing.T) {
	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = origNoColor })

	var out bytes.Buffer
	d := &HuhDialogs{Out: &out, isTerminal: func() bool { return false }}
	require.NoError(t, d.Message("Done!", "Pong installed"))
	assert.Equal(t, "Done!\nPong installed\n", out.String())
}

func TestSecretWithoutTerminalFails(t *testing.T) {
	d := &HuhDialogs{isTerminal: func() bool { return false }}
	_, ok, err := d.Secret("Installing Pong")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestMessageRunsForm(t *testing.T) {
	calls := 0
	stubRunForm(t, func(form *huh.Form) error {
		calls++
		assert.NotNil(t, form)
		return nil
	})
	d := &HuhDialogs{isTerminal: func() bool { return true }}
	require.NoError(t, d.Message("Done!", "body"))
	assert.Equal(t, 1, calls)
}

func TestMessageAbortCountsAsDismiss(t *testing.T) {
	stubRunForm(t, func(*huh.Form) error { return huh.ErrUserAborted })
	d := &HuhDialogs{isTerminal: func() bool { return true }}
	assert.NoError(t, d.Message("Done!", "body"))
}

func TestMessageFormError(t *testing.T) {
	stubRunForm(t, func(*huh.Form) error { return errors.New("render failed") })
	d := &HuhDialogs{isTerminal: func() bool { return true }}
	assert.EqualError(t, d.Message("Done!", "body"), "render failed")
}

func TestSecretCancelled(t *testing.T) {
	stubRunForm(t, func(*huh.Form) error { return huh.ErrUserAborted })
	d := &HuhDialogs{isTerminal: func() bool { return true }}
	value, ok, err := d.Secret("Installing Pong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSecretFormError(t *testing.T) {
	stubRunForm(t, func(*huh.Form) error { return errors.New("tty closed") })
	d := &HuhDialogs{isTerminal: func() bool { return true }}
	_, ok, err := d.Secret("Installing Pong")
	require.Error(t, err)
	assert.False(t, ok)
}

func TestSecretSubmitted(t *testing.T) {
	stubRunForm(t, func(*huh.Form) error { return nil })
	d := &HuhDialogs{isTerminal: func() bool { return true }}
	value, ok, err := d.Secret("Installing Pong")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value, "stubbed form never writes the bound value")
}

func TestInterruptToQuit(t *testing.T) {
	assert.IsType(t, tea.QuitMsg{}, interruptToQuit(nil, tea.InterruptMsg{}))
	msg := tea.KeyMsg{Type: tea.KeyEnter}
	assert.Equal(t, msg, interruptToQuit(nil, msg))
}

func TestDialogKeyMapQuitKeys(t *testing.T) {
	assert.ElementsMatch(t, []string{"ctrl+c", "esc"}, dialogKeyMap().Quit.Keys())
}

func TestTerminalSurface(t *testing.T) {
	origNoColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = origNoColor })

	var out bytes.Buffer
	s := NewTerminalSurface(&out, true)
	s.Blur()
	s.Blur()
	assert.True(t, s.busy)
	assert.Equal(t, hideCursor+"Working...", out.String())

	out.Reset()
	s.Unblur()
	s.Unblur()
	assert.False(t, s.busy)
	assert.Equal(t, clearLine+showCursor, out.String())
}

func TestTerminalSurfaceDisabled(t *testing.T) {
	var out bytes.Buffer
	s := NewTerminalSurface(&out, false)
	s.Blur()
	assert.True(t, s.busy)
	s.Unblur()
	assert.Empty(t, out.String())
}

func TestFlushDoesNotRunForms(t *testing.T) {
	orig := runFormFunc
	runFormFunc = func(*huh.Form) error {
		t.Fatal("flush must not open a form")
		return nil
	}
	t.Cleanup(func() { runFormFunc = orig })

	d := &HuhDialogs{Out: &bytes.Buffer{}, isTerminal: func() bool { return true }}
	d.Flush()
}

func TestDialogsWriteToOut(t *testing.T) {
	var out bytes.Buffer
	d := &HuhDialogs{Out: &out}
	assert.Same(t, &out, d.out())

	assert.Equal(t, os.Stderr, (&HuhDialogs{}).out())
}
