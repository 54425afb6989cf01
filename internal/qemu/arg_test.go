// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/runqemu/internal/qemu"
)

func TestBuildArgumentStrings(t *testing.T) {
	tests := []struct {
		name        string
		args        []qemu.Argument
		expected    []string
		expectedErr error
	}{
		{
			name: "builds",
			args: []qemu.Argument{
				qemu.UniqueArg("M", "virt"),
				qemu.UniqueArg("nographic"),
				qemu.RepeatableArg("device", "usb-kbd"),
			},
			expected: []string{"-M", "virt", "-nographic", "-device", "usb-kbd"},
		},
		{
			name: "unique name collision",
			args: []qemu.Argument{
				qemu.UniqueArg("M", "virt"),
				qemu.UniqueArg("M", "q35"),
			},
			expectedErr: qemu.ErrArgumentCollision,
		},
		{
			name: "repeatable with different values",
			args: []qemu.Argument{
				qemu.RepeatableArg("device", "usb-kbd"),
				qemu.RepeatableArg("device", "usb-tablet"),
			},
			expected: []string{
				"-device", "usb-kbd",
				"-device", "usb-tablet",
			},
		},
		{
			name: "repeatable with equal values",
			args: []qemu.Argument{
				qemu.RepeatableArg("device", "usb-kbd"),
				qemu.RepeatableArg("device", "usb-kbd"),
			},
			expectedErr: qemu.ErrArgumentCollision,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := qemu.BuildArgumentStrings(tt.args)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

func TestArgumentString(t *testing.T) {
	assert.Equal(t, "-nographic", qemu.UniqueArg("nographic").String())
	assert.Equal(t, "-m 4G", qemu.UniqueArg("m", "4G").String())
}
