// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/aibor/runqemu/internal/qemu"
	"github.com/aibor/runqemu/internal/sys"
)

// Mode selects which screen the session displays and where key input goes.
type Mode int

const (
	// ModeSerial displays the guest serial console.
	ModeSerial Mode = iota
	// ModeMonitor displays the QEMU monitor.
	ModeMonitor
)

// errSessionDone signals a user requested session end to the run group.
var errSessionDone = errors.New("session done")

// Config are the inputs for a console [Session].
type Config struct {
	// Path of the host PTY the guest serial console is connected to.
	PTYPath string

	// Connection to the QEMU monitor. Optional, the monitor view shows
	// process output only if absent.
	Monitor *qemu.Monitor

	// QEMU process output lines, shown in the monitor view.
	Output <-chan string

	// Destination for the raw serial console stream. Optional.
	RawLog io.Writer

	// Terminal to display on. Created with [tcell.NewScreen] if nil.
	// Must be initialized by the caller if set.
	Terminal tcell.Screen
}

// Session is an interactive text console attached to a guest serial PTY.
//
// The serial stream runs through the ACS translator and sequence filter
// into a [Screen], which the session renders to the host terminal. Ctrl-]
// opens a control menu to switch to the QEMU monitor view or quit the
// guest.
type Session struct {
	terminal    tcell.Screen
	ownTerminal bool

	pty     *os.File
	monitor *qemu.Monitor
	output  <-chan string
	rawLog  io.Writer

	translator *ACSTranslator
	filter     *SequenceFilter

	mu          sync.Mutex
	serial      *Screen
	monitorView *Screen
	mode        Mode
	menuVisible bool
}

// NewSession opens the guest PTY and prepares a console session.
func NewSession(cfg Config) (*Session, error) {
	pty, err := os.OpenFile(cfg.PTYPath, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("open PTY: %w", err)
	}

	terminal := cfg.Terminal
	ownTerminal := false

	if terminal == nil {
		terminal, err = tcell.NewScreen()
		if err != nil {
			_ = pty.Close()
			return nil, fmt.Errorf("create terminal screen: %w", err)
		}

		if err := terminal.Init(); err != nil {
			_ = pty.Close()
			return nil, fmt.Errorf("init terminal screen: %w", err)
		}

		ownTerminal = true
	}

	cols, rows := terminal.Size()

	s := &Session{
		terminal:    terminal,
		ownTerminal: ownTerminal,
		pty:         pty,
		monitor:     cfg.Monitor,
		output:      cfg.Output,
		rawLog:      cfg.RawLog,
		translator:  NewACSTranslator(),
		filter:      NewSequenceFilter(cols, rows),
		serial:      NewScreen(cols, rows),
		monitorView: NewScreen(cols, rows),
	}

	// Cursor position reports requested by the guest go straight back.
	s.serial.SetResponder(func(report []byte) {
		_, _ = s.pty.Write(report)
	})

	// Tell the guest the real terminal size so it formats output
	// correctly from the first boot messages on.
	_ = sys.SetPTYSize(int(pty.Fd()), cols, rows)

	return s, nil
}

// Run displays the console until the guest exits or the user quits. It
// blocks until all session goroutines are done.
func (s *Session) Run(ctx context.Context) error {
	if s.ownTerminal {
		defer s.terminal.Fini()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error { return s.readPTY(ctx) })
	eg.Go(func() error { return s.handleEvents() })

	if s.monitor != nil {
		eg.Go(func() error { return s.readMonitor() })
	}

	if s.output != nil {
		eg.Go(func() error { return s.feedOutput(ctx) })
	}

	// Unblock the blocking reads and PollEvent when the group winds down.
	eg.Go(func() error {
		<-ctx.Done()

		_ = s.pty.Close()

		if s.monitor != nil {
			_ = s.monitor.Close()
		}

		_ = s.terminal.PostEvent(tcell.NewEventInterrupt(nil))

		return nil
	})

	s.draw()

	err := eg.Wait()
	if err != nil && !errors.Is(err, errSessionDone) {
		return err
	}

	return nil
}

// readPTY pumps the guest serial stream into the serial screen.
func (s *Session) readPTY(ctx context.Context) error {
	buf := make([]byte, 4096)

	for {
		n, err := s.pty.Read(buf)
		if err != nil {
			// The PTY closes when QEMU exits or the session winds
			// down, both end the session normally.
			if ctx.Err() != nil {
				return nil
			}

			return errSessionDone
		}

		data := buf[:n]

		if s.rawLog != nil {
			_, _ = s.rawLog.Write(data)
		}

		data = s.filter.Filter(s.translator.Translate(data))
		if len(data) == 0 {
			continue
		}

		s.mu.Lock()
		s.serial.Feed(data)
		s.mu.Unlock()

		s.draw()
	}
}

// readMonitor pumps QEMU monitor output into the monitor screen.
func (s *Session) readMonitor() error {
	buf := make([]byte, 4096)

	for {
		n, err := s.monitor.Read(buf)
		if err != nil {
			// The monitor connection ending does not end the session.
			return nil
		}

		s.mu.Lock()
		s.monitorView.Feed(buf[:n])
		s.mu.Unlock()

		s.draw()
	}
}

// feedOutput shows QEMU process output lines in the monitor view.
func (s *Session) feedOutput(ctx context.Context) error {
	for {
		select {
		case line, open := <-s.output:
			if !open {
				return nil
			}

			s.mu.Lock()
			s.monitorView.Feed([]byte(line + "\r\n"))
			s.mu.Unlock()

			s.draw()
		case <-ctx.Done():
			return nil
		}
	}
}

// handleEvents processes terminal key and resize events.
func (s *Session) handleEvents() error {
	for {
		event := s.terminal.PollEvent()

		switch event := event.(type) {
		case *tcell.EventInterrupt:
			return nil
		case *tcell.EventResize:
			s.resize(event.Size())
		case *tcell.EventKey:
			if err := s.handleKey(event); err != nil {
				return err
			}
		case nil:
			return nil
		}
	}
}

func (s *Session) resize(cols, rows int) {
	s.mu.Lock()
	s.serial.Resize(cols, rows)
	s.monitorView.Resize(cols, rows)
	s.filter.SetSize(cols, rows)
	s.mu.Unlock()

	_ = sys.SetPTYSize(int(s.pty.Fd()), cols, rows)

	s.terminal.Sync()
	s.draw()
}

func (s *Session) handleKey(event *tcell.EventKey) error {
	s.mu.Lock()
	menuVisible := s.menuVisible
	mode := s.mode
	s.mu.Unlock()

	if menuVisible {
		return s.handleMenuKey(event)
	}

	if event.Key() == tcell.KeyCtrlRightSq {
		s.setMenuVisible(true)
		return nil
	}

	data := encodeKey(event)
	if len(data) == 0 {
		return nil
	}

	if mode == ModeMonitor && s.monitor != nil {
		_, _ = s.monitor.Write(data)
	} else {
		_, _ = s.pty.Write(data)
	}

	return nil
}

func (s *Session) handleMenuKey(event *tcell.EventKey) error {
	if event.Key() != tcell.KeyRune {
		return nil
	}

	switch event.Rune() {
	case 'r', 'R':
		s.setMenuVisible(false)
		s.setMode(ModeSerial)
	case 'e', 'E':
		s.setMenuVisible(false)
		s.setMode(ModeMonitor)

		// Poke the monitor so its prompt shows up.
		if s.monitor != nil {
			_, _ = s.monitor.Write([]byte("\n"))
		}
	case 'q', 'Q':
		if s.monitor != nil {
			_ = s.monitor.Quit()
		}

		return errSessionDone
	}

	return nil
}

func (s *Session) setMenuVisible(visible bool) {
	s.mu.Lock()
	s.menuVisible = visible
	s.mu.Unlock()

	s.draw()
}

func (s *Session) setMode(mode Mode) {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	s.draw()
}

// draw renders the active screen and menu overlay to the terminal.
func (s *Session) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.serial
	if s.mode == ModeMonitor {
		active = s.monitorView
	}

	cols, rows := active.Size()

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			cell := active.Cell(x, y)
			s.terminal.SetContent(x, y, cell.Rune, nil, cell.Style)
		}
	}

	if s.menuVisible {
		s.drawMenu(cols, rows)
		s.terminal.HideCursor()
	} else {
		cursorX, cursorY := active.Cursor()
		s.terminal.ShowCursor(cursorX, cursorY)
	}

	s.terminal.Show()
}
