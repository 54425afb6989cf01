// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package iso_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/runqemu/internal/iso"
	"github.com/aibor/runqemu/internal/sys"
)

// fakeTool writes an executable shell script standing in for an inspection
// tool and returns its path.
func fakeTool(t *testing.T, name, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)

	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755)
	require.NoError(t, err)

	return path
}

func TestFindUEFIBootloader(t *testing.T) {
	findsBootloader := fakeTool(t, "isoinfo",
		"echo '/EFI/BOOT/BOOTX64.EFI;1'\n")
	listsBootloader := fakeTool(t, "7z",
		"echo '2025-07-02 10:30:00 ....A 950272 950272 EFI/BOOT/BOOTX64.EFI'\n")
	fails := fakeTool(t, "false", "exit 1\n")
	findsNothing := fakeTool(t, "empty", "exit 0\n")

	tests := []struct {
		name        string
		inspector   *iso.Inspector
		arch        sys.Arch
		expected    string
		expectedErr error
	}{
		{
			name:      "isoinfo tried first",
			inspector: &iso.Inspector{Isoinfo: findsBootloader, SevenZip: fails},
			arch:      sys.AMD64,
			expected:  "/EFI/BOOT/BOOTX64.EFI",
		},
		{
			name:      "7z fallback when isoinfo fails",
			inspector: &iso.Inspector{Isoinfo: fails, SevenZip: listsBootloader},
			arch:      sys.AMD64,
			expected:  "/EFI/BOOT/BOOTX64.EFI",
		},
		{
			name:      "7z only",
			inspector: &iso.Inspector{SevenZip: listsBootloader},
			arch:      sys.AMD64,
			expected:  "/EFI/BOOT/BOOTX64.EFI",
		},
		{
			name:        "not found by any tool",
			inspector:   &iso.Inspector{Isoinfo: findsNothing, SevenZip: fails},
			arch:        sys.AMD64,
			expectedErr: iso.ErrBootloaderNotFound,
		},
		{
			name:        "no tool available",
			inspector:   &iso.Inspector{},
			arch:        sys.AMD64,
			expectedErr: iso.ErrNoInspectionTool,
		},
		{
			name:        "unknown architecture",
			inspector:   &iso.Inspector{Isoinfo: findsBootloader},
			arch:        sys.Arch("ppc64"),
			expectedErr: iso.ErrBootloaderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := tt.inspector.FindUEFIBootloader(
				context.Background(), "some.iso", tt.arch)

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, found)
		})
	}
}

func TestFindBootFilesNoTools(t *testing.T) {
	inspector := &iso.Inspector{}

	_, err := inspector.FindBootFiles(context.Background(), "some.iso")
	require.ErrorIs(t, err, iso.ErrNoInspectionTool)
}
