// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import "github.com/gdamore/tcell/v2"

// menuLines is the control menu overlay, drawn centered over the console.
var menuLines = []string{
	"╔══ Control Menu ═══╗",
	"║ Select an action: ║",
	"╠═══════════════════╣",
	"║ (R) Resume        ║",
	"║ (E) Enter Monitor ║",
	"║ (Q) Quit QEMU     ║",
	"╚═══════════════════╝",
}

// drawMenu renders the control menu overlay in the middle of the screen.
func (s *Session) drawMenu(cols, rows int) {
	style := tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorNavy).
		Bold(true)

	width := 0
	for _, line := range menuLines {
		width = max(width, len([]rune(line)))
	}

	originX := max((cols-width)/2, 0)
	originY := max((rows-len(menuLines))/2, 0)

	for dy, line := range menuLines {
		x := originX

		for _, r := range line {
			s.terminal.SetContent(x, originY+dy, r, nil, style)
			x++
		}
	}
}
