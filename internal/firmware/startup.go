// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package firmware

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteStartupScript writes a startup.nsh into dir that chain-loads the
// given bootloader from the CD-ROM.
//
// The EFI shell runs startup.nsh from the first FAT file system it finds.
// Attaching dir as a FAT drive makes firmware without persistent boot
// entries boot the CD-ROM unattended.
func WriteStartupScript(dir, bootloaderPath string) error {
	// The EFI shell wants DOS style path separators.
	shellPath := strings.ReplaceAll(bootloaderPath, "/", "\\")

	script := fmt.Sprintf(
		"echo -off\necho 'Attempting to boot from CD-ROM...'\nFS0:\n%s\n",
		shellPath,
	)

	scriptPath := filepath.Join(dir, "startup.nsh")

	err := os.WriteFile(scriptPath, []byte(script), 0o644)
	if err != nil {
		return fmt.Errorf("write startup script: %w", err)
	}

	return nil
}
