// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestACSTranslator(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal text passes through",
			input:    "Hello, World!",
			expected: "Hello, World!",
		},
		{
			name:     "enter sequence consumed",
			input:    "\x1b(0",
			expected: "",
		},
		{
			name:     "exit sequence consumed",
			input:    "\x1b(0\x1b(B",
			expected: "",
		},
		{
			name:     "graphics characters translated",
			input:    "\x1b(0lqk\x1b(B",
			expected: "┌─┐",
		},
		{
			name:     "graphics characters pass through in normal mode",
			input:    "lqk",
			expected: "lqk",
		},
		{
			name:     "mixed content",
			input:    "box: \x1b(0lqj\x1b(B.",
			expected: "box: ┌─┘.",
		},
		{
			name:     "rapid mode switching",
			input:    "\x1b(0l\x1b(B-\x1b(0k\x1b(B",
			expected: "┌-┐",
		},
		{
			name:     "malformed designator passes through",
			input:    "hello \x1b(X world",
			expected: "hello \x1b(X world",
		},
		{
			name:     "color sequences pass through",
			input:    "\x1b[31mRed text\x1b[0m",
			expected: "\x1b[31mRed text\x1b[0m",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "box drawing",
			input:    "\x1b(0lqqqk\x1b(B\n\x1b(0x\x1b(B \x1b(0x\x1b(B\n\x1b(0mqqqj\x1b(B",
			expected: "┌───┐\n│ │\n└───┘",
		},
		{
			name:     "box with text",
			input:    "\x1b(0lqk\x1b(B Hello \x1b(0mjx\x1b(B",
			expected: "┌─┐ Hello └┘│",
		},
		{
			name:     "graphics with color sequences",
			input:    "\x1b[31m\x1b(0lqk\x1b(B\x1b[0m",
			expected: "\x1b[31m┌─┐\x1b[0m",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translator := NewACSTranslator()

			actual := translator.Translate([]byte(tt.input))
			assert.Equal(t, tt.expected, string(actual))
		})
	}
}

func TestACSTranslatorChunked(t *testing.T) {
	t.Run("split after ESC", func(t *testing.T) {
		translator := NewACSTranslator()

		assert.Equal(t, "text", string(translator.Translate([]byte("text\x1b"))))
		assert.Equal(t, "┌─┐", string(translator.Translate([]byte("(0lqk"))))
		assert.True(t, translator.active)
	})

	t.Run("split after ESC paren", func(t *testing.T) {
		translator := NewACSTranslator()

		assert.Equal(t, "text",
			string(translator.Translate([]byte("text\x1b("))))
		assert.Equal(t, "┌─┐",
			string(translator.Translate([]byte("0lqk"))))
		assert.True(t, translator.active)
	})

	t.Run("buffered ESC flushed on non matching chunk", func(t *testing.T) {
		translator := NewACSTranslator()

		assert.Equal(t, "text", string(translator.Translate([]byte("text\x1b"))))
		assert.Equal(t, "\x1bnot-a-designator",
			string(translator.Translate([]byte("not-a-designator"))))
		assert.False(t, translator.active)
	})
}

func TestACSTranslatorReset(t *testing.T) {
	translator := NewACSTranslator()

	translator.Translate([]byte("\x1b(0some text\x1b"))
	assert.True(t, translator.active)
	assert.NotEmpty(t, translator.pending)

	translator.Reset()
	assert.False(t, translator.active)
	assert.Empty(t, translator.pending)

	assert.Equal(t, "lqk", string(translator.Translate([]byte("lqk"))))
}
