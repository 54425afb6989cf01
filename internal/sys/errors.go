// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"errors"
	"strings"
)

var (
	// ErrArchNotSupported is returned for architectures no qemu-system binary
	// exists for.
	ErrArchNotSupported = errors.New("architecture not supported")

	// ErrNotATerminal is returned if stdout is not attached to a terminal.
	ErrNotATerminal = errors.New("stdout is not a terminal")
)

// ExecutableError is returned if no QEMU system emulator binary could be
// found for an architecture.
type ExecutableError struct {
	Arch  Arch
	Tried []string
}

// Error implements the [error] interface.
func (e *ExecutableError) Error() string {
	return "no QEMU system emulator found for " + e.Arch.String() +
		", tried: " + strings.Join(e.Tried, ", ")
}

// Is implements the [errors.Is] interface.
func (e *ExecutableError) Is(other error) bool {
	_, ok := other.(*ExecutableError)
	return ok
}
