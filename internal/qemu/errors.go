// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import "errors"

var (
	// ErrArgumentCollision is returned if two [Argument]s are considered
	// equal.
	ErrArgumentCollision = errors.New("colliding args")

	// ErrConsoleModeInvalid is returned if a console mode is invalid.
	ErrConsoleModeInvalid = errors.New("unknown console mode")

	// ErrSerialProfileInvalid is returned if a serial device profile is
	// invalid.
	ErrSerialProfileInvalid = errors.New("unknown serial device profile")

	// ErrBootDeviceInvalid is returned if a boot device is invalid.
	ErrBootDeviceInvalid = errors.New("unknown boot device")

	// ErrFirmwareModeInvalid is returned if a firmware mode is invalid.
	ErrFirmwareModeInvalid = errors.New("unknown firmware mode")

	// ErrPTYNotFound is returned if QEMU did not announce the PTY the serial
	// console chardev is redirected to within the deadline.
	ErrPTYNotFound = errors.New("PTY device not found in QEMU output")

	// ErrMonitorClosed is returned when operating on a monitor connection
	// that has been closed.
	ErrMonitorClosed = errors.New("monitor connection closed")
)

// ArgumentError indicates an issue with an input argument.
type ArgumentError struct {
	msg string
}

// Error implements the [error] interface.
func (e *ArgumentError) Error() string {
	return "argument error: " + e.msg
}

// Is implements the [errors.Is] interface.
func (e *ArgumentError) Is(other error) bool {
	_, ok := other.(*ArgumentError)
	return ok
}

// CommandError wraps any error occurred during QEMU command execution.
type CommandError struct {
	Err      error
	ExitCode int
}

// Error implements the [error] interface.
func (e *CommandError) Error() string {
	return "qemu: " + e.Err.Error()
}

// Is implements the [errors.Is] interface.
func (e *CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CommandError) Unwrap() error {
	return e.Err
}
