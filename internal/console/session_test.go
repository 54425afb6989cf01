// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"os"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession builds a session on a simulation screen with a pipe in
// place of the guest PTY. Returns the session and the read side of the
// pipe carrying forwarded input.
func newTestSession(t *testing.T) (*Session, *os.File) {
	t.Helper()

	sim := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sim.Init())
	sim.SetSize(40, 10)

	t.Cleanup(sim.Fini)

	ptyRead, ptyWrite, err := os.Pipe()
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = ptyRead.Close()
		_ = ptyWrite.Close()
	})

	s := &Session{
		terminal:    sim,
		pty:         ptyWrite,
		translator:  NewACSTranslator(),
		filter:      NewSequenceFilter(40, 10),
		serial:      NewScreen(40, 10),
		monitorView: NewScreen(40, 10),
	}

	return s, ptyRead
}

func simRow(t *testing.T, sim tcell.SimulationScreen, y, width int) string {
	t.Helper()

	row := make([]rune, 0, width)

	for x := 0; x < width; x++ {
		r, _, _, _ := sim.GetContent(x, y)
		row = append(row, r)
	}

	return string(row)
}

func TestSessionDrawsSerialScreen(t *testing.T) {
	s, _ := newTestSession(t)
	sim := s.terminal.(tcell.SimulationScreen)

	s.serial.Feed([]byte("hello guest"))
	s.draw()

	assert.Contains(t, simRow(t, sim, 0, 40), "hello guest")
}

func TestSessionDrawsMenuOverlay(t *testing.T) {
	s, _ := newTestSession(t)
	sim := s.terminal.(tcell.SimulationScreen)

	s.menuVisible = true
	s.draw()

	found := false

	for y := 0; y < 10; y++ {
		if strings.Contains(simRow(t, sim, y, 40), "Control Menu") {
			found = true
			break
		}
	}

	assert.True(t, found, "menu title not rendered")
}

func TestSessionForwardsKeys(t *testing.T) {
	s, ptyRead := newTestSession(t)

	err := s.handleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone))
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, err := ptyRead.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "x", string(buf[:n]))
}

func TestSessionMenuKeys(t *testing.T) {
	s, _ := newTestSession(t)

	// Ctrl-] opens the menu, keys are no longer forwarded.
	err := s.handleKey(
		tcell.NewEventKey(tcell.KeyCtrlRightSq, 0, tcell.ModNone))
	require.NoError(t, err)
	assert.True(t, s.menuVisible)

	// 'e' switches to the monitor view and closes the menu.
	err = s.handleKey(tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone))
	require.NoError(t, err)
	assert.False(t, s.menuVisible)
	assert.Equal(t, ModeMonitor, s.mode)

	// Back in the menu, 'r' resumes the serial console.
	require.NoError(t, s.handleKey(
		tcell.NewEventKey(tcell.KeyCtrlRightSq, 0, tcell.ModNone)))
	require.NoError(t, s.handleKey(
		tcell.NewEventKey(tcell.KeyRune, 'R', tcell.ModNone)))
	assert.Equal(t, ModeSerial, s.mode)

	// 'q' ends the session.
	require.NoError(t, s.handleKey(
		tcell.NewEventKey(tcell.KeyCtrlRightSq, 0, tcell.ModNone)))
	err = s.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone))
	assert.ErrorIs(t, err, errSessionDone)
}

func TestEncodeKey(t *testing.T) {
	tests := []struct {
		name     string
		event    *tcell.EventKey
		expected string
	}{
		{
			name:     "rune",
			event:    tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone),
			expected: "a",
		},
		{
			name:     "unicode rune",
			event:    tcell.NewEventKey(tcell.KeyRune, 'ä', tcell.ModNone),
			expected: "ä",
		},
		{
			name:     "enter",
			event:    tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone),
			expected: "\r",
		},
		{
			name:     "backspace",
			event:    tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone),
			expected: "\x7f",
		},
		{
			name:     "arrow up",
			event:    tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone),
			expected: "\x1b[A",
		},
		{
			name:     "ctrl-c",
			event:    tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone),
			expected: "\x03",
		},
		{
			name:     "escape",
			event:    tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone),
			expected: "\x1b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(encodeKey(tt.event)))
		})
	}
}
