// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"strconv"
	"strings"
)

// filterState tracks the position within a possible CSI sequence.
type filterState int

const (
	filterNormal filterState = iota
	filterEscSeen
	filterCSIStarted
	filterCSIIntermediate
)

// filterMaxBufferSize bounds buffered sequence bytes. Anything longer is no
// valid control sequence and gets discarded wholesale.
const filterMaxBufferSize = 64

// SequenceFilter removes control sequences the screen model must not see.
//
// Filtered are CSI sequences carrying intermediate bytes (0x20-0x2F, e.g.
// DECSTR "ESC[!p"), which would otherwise leak their final byte as literal
// text, and cursor positions outside the screen bounds, which some guests
// emit to probe the terminal size. The filter is stateful so sequences may
// be split across input chunks.
type SequenceFilter struct {
	cols int
	rows int

	state  filterState
	buffer []byte
}

// NewSequenceFilter creates a filter for a screen of the given dimensions.
func NewSequenceFilter(cols, rows int) *SequenceFilter {
	return &SequenceFilter{cols: cols, rows: rows}
}

// SetSize updates the screen bounds used for cursor position filtering.
func (f *SequenceFilter) SetSize(cols, rows int) {
	f.cols = cols
	f.rows = rows
}

func (f *SequenceFilter) reset() {
	f.state = filterNormal
	f.buffer = f.buffer[:0]
}

// Filter processes a chunk of console output and returns it with offending
// sequences removed.
func (f *SequenceFilter) Filter(data []byte) []byte {
	output := make([]byte, 0, len(data))

	for _, b := range data {
		switch f.state {
		case filterNormal:
			if b == 0x1b {
				f.state = filterEscSeen
				f.buffer = append(f.buffer, b)
			} else {
				output = append(output, b)
			}

		case filterEscSeen:
			f.buffer = append(f.buffer, b)

			if b == '[' {
				f.state = filterCSIStarted
			} else {
				output = append(output, f.buffer...)
				f.reset()
			}

		case filterCSIStarted:
			f.buffer = append(f.buffer, b)

			switch {
			case isCSIIntermediate(b):
				f.state = filterCSIIntermediate
			case isCSIParameter(b):
			case isCSIFinal(b):
				if b != 'H' || !f.cursorPositionOutOfBounds() {
					output = append(output, f.buffer...)
				}

				f.reset()
			default:
				output = append(output, f.buffer...)
				f.reset()
			}

		case filterCSIIntermediate:
			f.buffer = append(f.buffer, b)

			// The whole sequence is dropped once complete. Unexpected
			// bytes also end it, discarding the malformed sequence.
			if isCSIFinal(b) ||
				(!isCSIIntermediate(b) && !isCSIParameter(b)) {
				f.reset()
			}
		}

		if len(f.buffer) > filterMaxBufferSize {
			f.reset()
		}
	}

	return output
}

// cursorPositionOutOfBounds reports whether the buffered CUP sequence
// addresses a cell outside the screen.
func (f *SequenceFilter) cursorPositionOutOfBounds() bool {
	// Parameters sit between "ESC[" and the final "H".
	params := string(f.buffer[2 : len(f.buffer)-1])

	row, col, ok := parseCursorPosition(params)
	if !ok {
		return false
	}

	return row > f.rows || col > f.cols
}

// parseCursorPosition parses CUP parameters. Empty parameters default to 1.
func parseCursorPosition(params string) (int, int, bool) {
	if params == "" {
		return 1, 1, true
	}

	rowStr, colStr, found := strings.Cut(params, ";")
	if !found {
		row, err := strconv.Atoi(rowStr)
		if err != nil {
			return 0, 0, false
		}

		return row, 1, true
	}

	row := 1

	if rowStr != "" {
		var err error

		row, err = strconv.Atoi(rowStr)
		if err != nil {
			return 0, 0, false
		}
	}

	col := 1

	if colStr != "" {
		var err error

		col, err = strconv.Atoi(colStr)
		if err != nil {
			return 0, 0, false
		}
	}

	return row, col, true
}

func isCSIFinal(b byte) bool {
	return b >= 0x40 && b <= 0x7e
}

func isCSIIntermediate(b byte) bool {
	return b >= 0x20 && b <= 0x2f
}

func isCSIParameter(b byte) bool {
	return b >= 0x30 && b <= 0x3f
}
