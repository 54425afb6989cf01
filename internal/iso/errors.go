// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package iso

import "errors"

var (
	// ErrBootFilesNotFound is returned if no kernel and initrd pair could
	// be found in the ISO by any of the inspection tools.
	ErrBootFilesNotFound = errors.New("no kernel and initrd found in ISO")

	// ErrBootloaderNotFound is returned if no UEFI bootloader could be
	// found in the ISO by any of the inspection tools.
	ErrBootloaderNotFound = errors.New("no UEFI bootloader found in ISO")

	// ErrNoInspectionTool is returned if neither isoinfo nor 7z is
	// available on the host.
	ErrNoInspectionTool = errors.New(
		"no ISO inspection tool found (install genisoimage/isoinfo or p7zip)")

	// ErrExtractFailed is returned if extracting a file from the ISO did
	// not produce the expected output file.
	ErrExtractFailed = errors.New("failed to extract file from ISO")
)

// InspectError wraps a terminal inspection failure with the reasons each
// tool in the finder chain failed.
type InspectError struct {
	Err     error
	Reasons []string
}

// Error implements the error interface.
func (e *InspectError) Error() string {
	msg := e.Err.Error()

	for _, reason := range e.Reasons {
		msg += "; " + reason
	}

	return msg
}

// Is returns true for the wrapped terminal error.
func (e *InspectError) Is(other error) bool {
	return errors.Is(e.Err, other)
}

// Unwrap returns the wrapped terminal error.
func (e *InspectError) Unwrap() error {
	return e.Err
}
