// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"bytes"
	"unicode/utf8"
)

// DEC VT100 designators for entering and leaving the special graphics
// character set.
var (
	acsEnterSeq = []byte{0x1b, '(', '0'}
	acsExitSeq  = []byte{0x1b, '(', 'B'}
)

// DEC Special Graphics characters mapped to their Unicode equivalents.
// Indexed by the ASCII byte received while the graphics set is active.
var acsRunes = map[byte]rune{
	0x5f: '\u00a0',
	0x60: '◆',
	0x61: '▒',
	0x62: '␉',
	0x63: '␌',
	0x64: '␍',
	0x65: '␊',
	0x66: '°',
	0x67: '±',
	0x68: '␤',
	0x69: '␋',
	0x6a: '┘',
	0x6b: '┐',
	0x6c: '┌',
	0x6d: '└',
	0x6e: '┼',
	0x6f: '⎺',
	0x70: '⎻',
	0x71: '─',
	0x72: '⎼',
	0x73: '⎽',
	0x74: '├',
	0x75: '┤',
	0x76: '┴',
	0x77: '┬',
	0x78: '│',
	0x79: '≤',
	0x7a: '≥',
	0x7b: 'π',
	0x7c: '≠',
	0x7d: '£',
	0x7e: '·',
}

// ACSTranslator replaces DEC Special Graphics characters in a byte stream
// with Unicode box drawing characters.
//
// Guests draw installer dialogs with the graphics character set. Translating
// up front keeps the rest of the console pipeline free of charset state.
// The translator buffers partial designator sequences, so input may be split
// at arbitrary chunk boundaries.
type ACSTranslator struct {
	active bool
	// Holds an incomplete designator from the end of the previous chunk.
	// Designators are 3 bytes, at most 2 can be pending.
	pending []byte
}

// NewACSTranslator creates a translator in the standard character set.
func NewACSTranslator() *ACSTranslator {
	return &ACSTranslator{}
}

// Reset returns the translator to the standard character set and drops any
// buffered partial sequence.
func (t *ACSTranslator) Reset() {
	t.active = false
	t.pending = nil
}

// Translate processes a chunk of console output, replacing graphics
// characters while the graphics set is active. Designator sequences are
// consumed, all other bytes pass through.
func (t *ACSTranslator) Translate(data []byte) []byte {
	if len(t.pending) > 0 {
		data = append(t.pending, data...)
		t.pending = nil
	}

	if len(data) == 0 {
		return nil
	}

	output := make([]byte, 0, len(data))

	for i := 0; i < len(data); {
		if data[i] == 0x1b {
			// A designator may be cut off at the chunk end.
			if i+1 >= len(data) {
				t.pending = append([]byte{}, data[i:]...)
				break
			}

			if i+2 >= len(data) && data[i+1] == '(' {
				t.pending = append([]byte{}, data[i:]...)
				break
			}
		}

		if i+3 <= len(data) {
			switch {
			case bytes.Equal(data[i:i+3], acsEnterSeq):
				t.active = true
				i += 3

				continue
			case bytes.Equal(data[i:i+3], acsExitSeq):
				t.active = false
				i += 3

				continue
			}
		}

		if t.active {
			if r, ok := acsRunes[data[i]]; ok {
				output = utf8.AppendRune(output, r)
				i++

				continue
			}
		}

		output = append(output, data[i])
		i++
	}

	return output
}
