// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

// Escape sequences for special keys, as a VT100 guest expects them.
var keySequences = map[tcell.Key][]byte{
	tcell.KeyUp:     []byte("\x1b[A"),
	tcell.KeyDown:   []byte("\x1b[B"),
	tcell.KeyRight:  []byte("\x1b[C"),
	tcell.KeyLeft:   []byte("\x1b[D"),
	tcell.KeyHome:   []byte("\x1b[H"),
	tcell.KeyEnd:    []byte("\x1b[F"),
	tcell.KeyInsert: []byte("\x1b[2~"),
	tcell.KeyDelete: []byte("\x1b[3~"),
	tcell.KeyPgUp:   []byte("\x1b[5~"),
	tcell.KeyPgDn:   []byte("\x1b[6~"),
	tcell.KeyF1:     []byte("\x1bOP"),
	tcell.KeyF2:     []byte("\x1bOQ"),
	tcell.KeyF3:     []byte("\x1bOR"),
	tcell.KeyF4:     []byte("\x1bOS"),
	tcell.KeyF5:     []byte("\x1b[15~"),
	tcell.KeyF6:     []byte("\x1b[17~"),
	tcell.KeyF7:     []byte("\x1b[18~"),
	tcell.KeyF8:     []byte("\x1b[19~"),
	tcell.KeyF9:     []byte("\x1b[20~"),
	tcell.KeyF10:    []byte("\x1b[21~"),
	tcell.KeyF11:    []byte("\x1b[23~"),
	tcell.KeyF12:    []byte("\x1b[24~"),
}

// encodeKey converts a key event to the byte sequence to send the guest.
// Returns nil for keys with no terminal representation.
func encodeKey(event *tcell.EventKey) []byte {
	if seq, ok := keySequences[event.Key()]; ok {
		return seq
	}

	switch event.Key() {
	case tcell.KeyRune:
		return utf8.AppendRune(nil, event.Rune())
	case tcell.KeyEnter:
		return []byte{'\r'}
	case tcell.KeyTab:
		return []byte{'\t'}
	case tcell.KeyBacktab:
		return []byte("\x1b[Z")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []byte{0x7f}
	case tcell.KeyEsc:
		return []byte{0x1b}
	}

	// Control characters map directly to their key constants.
	if event.Key() > 0 && event.Key() < 0x20 {
		return []byte{byte(event.Key())}
	}

	return nil
}
