// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
)

const tabWidth = 8

// Cell is a single character cell of the screen.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Screen is an in-memory VT100 style terminal screen.
//
// It consumes the guest's console output stream and maintains the character
// grid a real terminal would display, which the session then renders. The
// stream may be split at arbitrary byte boundaries, partial escape
// sequences and UTF-8 runes are carried over to the next feed.
type Screen struct {
	cols int
	rows int

	cells [][]Cell

	cursorX int
	cursorY int

	style tcell.Style

	// respond is called with report sequences the guest requested, e.g.
	// cursor position reports. Responses go back to the guest PTY.
	respond func([]byte)

	parseState parseState
	params     []byte
	partial    []byte
}

type parseState int

const (
	parseGround parseState = iota
	parseEsc
	parseCSI
)

// NewScreen creates an empty screen of the given dimensions.
func NewScreen(cols, rows int) *Screen {
	s := &Screen{
		cols:  cols,
		rows:  rows,
		style: tcell.StyleDefault,
	}
	s.cells = makeCells(cols, rows)

	return s
}

func makeCells(cols, rows int) [][]Cell {
	cells := make([][]Cell, rows)
	for y := range cells {
		cells[y] = makeRow(cols)
	}

	return cells
}

func makeRow(cols int) []Cell {
	row := make([]Cell, cols)
	for x := range row {
		row[x] = Cell{Rune: ' ', Style: tcell.StyleDefault}
	}

	return row
}

// SetResponder sets the callback receiving terminal report sequences.
func (s *Screen) SetResponder(respond func([]byte)) {
	s.respond = respond
}

// Size returns the screen dimensions.
func (s *Screen) Size() (int, int) {
	return s.cols, s.rows
}

// Cursor returns the cursor position.
func (s *Screen) Cursor() (int, int) {
	return s.cursorX, s.cursorY
}

// Cell returns the cell at the given position.
func (s *Screen) Cell(x, y int) Cell {
	if y < 0 || y >= s.rows || x < 0 || x >= s.cols {
		return Cell{Rune: ' ', Style: tcell.StyleDefault}
	}

	return s.cells[y][x]
}

// Row returns the text content of a row with trailing blanks trimmed.
// Used for tests and logs.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.rows {
		return ""
	}

	var sb strings.Builder
	for _, cell := range s.cells[y] {
		sb.WriteRune(cell.Rune)
	}

	return strings.TrimRight(sb.String(), " ")
}

// Resize changes the screen dimensions, preserving as much content as
// fits. The cursor is clamped to the new bounds.
func (s *Screen) Resize(cols, rows int) {
	if cols == s.cols && rows == s.rows {
		return
	}

	cells := makeCells(cols, rows)

	for y := 0; y < min(rows, s.rows); y++ {
		copy(cells[y], s.cells[y])
	}

	s.cells = cells
	s.cols = cols
	s.rows = rows
	s.cursorX = min(s.cursorX, cols-1)
	s.cursorY = min(s.cursorY, rows-1)
}

// Feed consumes a chunk of console output and applies it to the screen.
func (s *Screen) Feed(data []byte) {
	if len(s.partial) > 0 {
		data = append(s.partial, data...)
		s.partial = nil
	}

	for i := 0; i < len(data); {
		b := data[i]

		switch s.parseState {
		case parseEsc:
			s.feedEsc(b)
			i++
		case parseCSI:
			s.feedCSI(b)
			i++
		default:
			if b == 0x1b {
				s.parseState = parseEsc
				i++

				continue
			}

			if b < 0x20 || b == 0x7f {
				s.feedControl(b)
				i++

				continue
			}

			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && size == 1 &&
				!utf8.FullRune(data[i:]) {
				// Incomplete rune at chunk end.
				s.partial = append([]byte{}, data[i:]...)

				return
			}

			s.print(r)
			i += size
		}
	}
}

func (s *Screen) feedControl(b byte) {
	switch b {
	case '\b':
		if s.cursorX > 0 {
			s.cursorX--
		}
	case '\t':
		s.cursorX = min((s.cursorX/tabWidth+1)*tabWidth, s.cols-1)
	case '\n', '\v', '\f':
		s.lineFeed()
	case '\r':
		s.cursorX = 0
	}
}

func (s *Screen) feedEsc(b byte) {
	switch b {
	case '[':
		s.parseState = parseCSI
		s.params = s.params[:0]
	case 'M':
		// Reverse index.
		if s.cursorY > 0 {
			s.cursorY--
		} else {
			s.scrollDown()
		}

		s.parseState = parseGround
	case 'c':
		// Full reset.
		s.cells = makeCells(s.cols, s.rows)
		s.cursorX, s.cursorY = 0, 0
		s.style = tcell.StyleDefault
		s.parseState = parseGround
	case '(', ')', '#':
		// Charset and line attribute designators carry one more byte.
		// Charsets are already handled upstream, skip the argument.
		s.parseState = parseEsc
	default:
		s.parseState = parseGround
	}
}

func (s *Screen) feedCSI(b byte) {
	if isCSIParameter(b) || isCSIIntermediate(b) {
		if len(s.params) < filterMaxBufferSize {
			s.params = append(s.params, b)
		}

		return
	}

	if isCSIFinal(b) {
		s.dispatchCSI(b, string(s.params))
	}

	s.parseState = parseGround
}

func (s *Screen) dispatchCSI(final byte, params string) {
	switch final {
	case 'A':
		s.cursorY = max(s.cursorY-csiParam(params, 1), 0)
	case 'B':
		s.cursorY = min(s.cursorY+csiParam(params, 1), s.rows-1)
	case 'C':
		s.cursorX = min(s.cursorX+csiParam(params, 1), s.cols-1)
	case 'D':
		s.cursorX = max(s.cursorX-csiParam(params, 1), 0)
	case 'G':
		s.cursorX = clamp(csiParam(params, 1)-1, 0, s.cols-1)
	case 'H', 'f':
		row, col, ok := parseCursorPosition(params)
		if ok {
			s.cursorY = clamp(row-1, 0, s.rows-1)
			s.cursorX = clamp(col-1, 0, s.cols-1)
		}
	case 'J':
		s.eraseDisplay(csiParam(params, 0))
	case 'K':
		s.eraseLine(csiParam(params, 0))
	case 'm':
		s.selectGraphicRendition(params)
	case 'n':
		if csiParam(params, 0) == 6 && s.respond != nil {
			report := "\x1b[" + strconv.Itoa(s.cursorY+1) + ";" +
				strconv.Itoa(s.cursorX+1) + "R"
			s.respond([]byte(report))
		}
	case 'd':
		s.cursorY = clamp(csiParam(params, 1)-1, 0, s.rows-1)
	}
}

func (s *Screen) print(r rune) {
	if s.cursorX >= s.cols {
		s.cursorX = 0
		s.lineFeed()
	}

	s.cells[s.cursorY][s.cursorX] = Cell{Rune: r, Style: s.style}
	s.cursorX++
}

func (s *Screen) lineFeed() {
	if s.cursorY < s.rows-1 {
		s.cursorY++
		return
	}

	s.scrollUp()
}

func (s *Screen) scrollUp() {
	copy(s.cells, s.cells[1:])
	s.cells[s.rows-1] = makeRow(s.cols)
}

func (s *Screen) scrollDown() {
	copy(s.cells[1:], s.cells[:s.rows-1])
	s.cells[0] = makeRow(s.cols)
}

func (s *Screen) eraseDisplay(mode int) {
	switch mode {
	case 1:
		for y := 0; y < s.cursorY; y++ {
			s.cells[y] = makeRow(s.cols)
		}

		s.eraseLine(1)
	case 2, 3:
		s.cells = makeCells(s.cols, s.rows)
	default:
		s.eraseLine(0)

		for y := s.cursorY + 1; y < s.rows; y++ {
			s.cells[y] = makeRow(s.cols)
		}
	}
}

func (s *Screen) eraseLine(mode int) {
	switch mode {
	case 1:
		for x := 0; x <= min(s.cursorX, s.cols-1); x++ {
			s.cells[s.cursorY][x] = Cell{Rune: ' ', Style: s.style}
		}
	case 2:
		s.cells[s.cursorY] = makeRow(s.cols)
	default:
		for x := s.cursorX; x < s.cols; x++ {
			s.cells[s.cursorY][x] = Cell{Rune: ' ', Style: s.style}
		}
	}
}

// selectGraphicRendition applies SGR attribute parameters to the current
// style.
func (s *Screen) selectGraphicRendition(params string) {
	if params == "" {
		s.style = tcell.StyleDefault
		return
	}

	for _, part := range strings.Split(params, ";") {
		code, err := strconv.Atoi(part)
		if err != nil {
			continue
		}

		switch {
		case code == 0:
			s.style = tcell.StyleDefault
		case code == 1:
			s.style = s.style.Bold(true)
		case code == 3:
			s.style = s.style.Italic(true)
		case code == 4:
			s.style = s.style.Underline(true)
		case code == 7:
			s.style = s.style.Reverse(true)
		case code == 22:
			s.style = s.style.Bold(false)
		case code == 24:
			s.style = s.style.Underline(false)
		case code == 27:
			s.style = s.style.Reverse(false)
		case code >= 30 && code <= 37:
			s.style = s.style.Foreground(
				tcell.PaletteColor(code - 30))
		case code == 39:
			s.style = s.style.Foreground(tcell.ColorDefault)
		case code >= 40 && code <= 47:
			s.style = s.style.Background(
				tcell.PaletteColor(code - 40))
		case code == 49:
			s.style = s.style.Background(tcell.ColorDefault)
		case code >= 90 && code <= 97:
			s.style = s.style.Foreground(
				tcell.PaletteColor(code - 90 + 8))
		case code >= 100 && code <= 107:
			s.style = s.style.Background(
				tcell.PaletteColor(code - 100 + 8))
		}
	}
}

// csiParam parses the first numeric CSI parameter, using def if absent.
func csiParam(params string, def int) int {
	first, _, _ := strings.Cut(params, ";")
	if first == "" {
		return def
	}

	value, err := strconv.Atoi(first)
	if err != nil {
		return def
	}

	return value
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
