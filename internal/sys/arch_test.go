// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/runqemu/internal/sys"
)

func TestArchUnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    sys.Arch
		expectedErr error
	}{
		{
			name:     "x86_64",
			input:    "x86_64",
			expected: sys.AMD64,
		},
		{
			name:     "aarch64",
			input:    "aarch64",
			expected: sys.ARM64,
		},
		{
			name:     "exotic but known",
			input:    "tricore",
			expected: sys.Arch("tricore"),
		},
		{
			name:        "unknown",
			input:       "pdp11",
			expectedErr: sys.ErrArchNotSupported,
		},
		{
			name:        "empty",
			input:       "",
			expectedErr: sys.ErrArchNotSupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var arch sys.Arch

			err := arch.UnmarshalText([]byte(tt.input))
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, arch)
		})
	}
}

func TestArchIsNative(t *testing.T) {
	arch := sys.Arch("alpha")
	assert.False(t, arch.IsNative())
}

func TestResolveCPUModel(t *testing.T) {
	tests := []struct {
		name     string
		model    string
		arch     sys.Arch
		accel    sys.Accelerator
		expected string
	}{
		{
			name:     "explicit model kept",
			model:    "cortex-a72",
			arch:     sys.ARM64,
			accel:    sys.AccelTCG,
			expected: "cortex-a72",
		},
		{
			name:     "host downgraded for tcg",
			model:    "host",
			arch:     sys.AMD64,
			accel:    sys.AccelTCG,
			expected: "max",
		},
		{
			name:     "host downgraded for non-native",
			model:    "host",
			arch:     sys.Arch("s390x"),
			accel:    sys.AccelKVM,
			expected: "max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := sys.ResolveCPUModel(tt.model, tt.arch, tt.accel)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestTerminalSize(t *testing.T) {
	cols, rows := sys.TerminalSize()
	assert.GreaterOrEqual(t, cols, 40)
	assert.GreaterOrEqual(t, rows, 20)
}
