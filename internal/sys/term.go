// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal size limits. Values outside of those ranges are almost certainly
// bogus ioctl results and are clamped.
const (
	minTermColumns = 40
	maxTermColumns = 500
	minTermRows    = 20
	maxTermRows    = 200

	defaultTermColumns = 80
	defaultTermRows    = 24
)

func clamp(value, low, high int) int {
	return max(low, min(value, high))
}

// CheckTerminal verifies stdout is attached to a terminal. A full-screen
// console session cannot work on a plain pipe.
func CheckTerminal() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotATerminal
	}

	return nil
}

// TerminalSize returns the host terminal dimensions in columns and rows.
//
// It never fails. If the size cannot be determined, the classic 80x24 is
// returned.
func TerminalSize() (int, int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return defaultTermColumns, defaultTermRows
	}

	return clamp(cols, minTermColumns, maxTermColumns),
		clamp(rows, minTermRows, maxTermRows)
}

// SetPTYSize informs the guest of the terminal dimensions by setting the
// window size of the PTY the guest serial console is connected to.
func SetPTYSize(fd int, cols, rows int) error {
	winsize := unix.Winsize{
		Row: uint16(rows), //nolint:gosec
		Col: uint16(cols), //nolint:gosec
	}

	err := unix.IoctlSetWinsize(fd, unix.TIOCSWINSZ, &winsize)
	if err != nil {
		return os.NewSyscallError("ioctl TIOCSWINSZ", err)
	}

	return nil
}
