// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package firmware locates and prepares UEFI firmware files for guests.
package firmware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aibor/runqemu/internal/sys"
)

// ErrCodeNotFound is returned if no UEFI firmware code file exists for the
// guest architecture.
var ErrCodeNotFound = errors.New("UEFI firmware code file not found")

// edk2 firmware code file names as shipped with QEMU.
var edk2CodeFiles = map[sys.Arch]string{
	sys.AMD64:   "edk2-x86_64-code.fd",
	sys.ARM64:   "edk2-aarch64-code.fd",
	sys.RISCV64: "edk2-riscv64-code.fd",
}

// fallback firmware on distributions packaging OVMF separately.
const ovmfCodePath = "/usr/share/OVMF/OVMF_CODE.fd"

// HasUEFISupport returns true if UEFI firmware files are available for the
// architecture.
func HasUEFISupport(arch sys.Arch) bool {
	_, exists := edk2CodeFiles[arch]
	return exists
}

// FindCode returns the path of the UEFI firmware code file for the guest
// architecture.
//
// On Linux the file shipped with the QEMU package is used, falling back to
// the OVMF package location for x86. On macOS the Homebrew QEMU prefix is
// queried.
func FindCode(ctx context.Context, arch sys.Arch) (string, error) {
	fileName, exists := edk2CodeFiles[arch]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrCodeNotFound, arch)
	}

	if runtime.GOOS == "darwin" {
		return findCodeDarwin(ctx, fileName)
	}

	codePath := filepath.Join("/usr/share/qemu", fileName)
	if _, err := os.Stat(codePath); err == nil {
		return codePath, nil
	}

	if arch == sys.AMD64 {
		if _, err := os.Stat(ovmfCodePath); err == nil {
			return ovmfCodePath, nil
		}
	}

	return "", fmt.Errorf("%w: %s (install ovmf or edk2)",
		ErrCodeNotFound, codePath)
}

// findCodeDarwin locates the firmware file in the Homebrew QEMU
// installation.
func findCodeDarwin(ctx context.Context, fileName string) (string, error) {
	out, err := exec.CommandContext(ctx, "brew", "--prefix", "qemu").Output()
	if err != nil {
		return "", fmt.Errorf("%w: query brew prefix: %w",
			ErrCodeNotFound, err)
	}

	prefix := strings.TrimSpace(string(out))

	codePath := filepath.Join(prefix, "share/qemu", fileName)
	if _, err := os.Stat(codePath); err != nil {
		return "", fmt.Errorf("%w: %s (install edk2-qemu)",
			ErrCodeNotFound, codePath)
	}

	return codePath, nil
}

// VarsPath returns the path of the UEFI variable store for the given disk
// image. The store lives next to the disk image so each VM keeps its own
// boot entries.
func VarsPath(diskImage string, arch sys.Arch) string {
	stem := strings.TrimSuffix(
		filepath.Base(diskImage), filepath.Ext(diskImage))

	return filepath.Join(
		filepath.Dir(diskImage),
		fmt.Sprintf("%s-%s-vars.fd", stem, arch),
	)
}

// PrepareVars ensures a valid UEFI variable store exists at varsPath.
//
// The store must match the size of the code file or QEMU refuses to map it.
// A missing or mismatched store is recreated from the code file, which
// resets the stored boot entries.
func PrepareVars(varsPath, codePath string) error {
	codeInfo, err := os.Stat(codePath)
	if err != nil {
		return fmt.Errorf("stat firmware code: %w", err)
	}

	varsInfo, err := os.Stat(varsPath)
	if err == nil && varsInfo.Size() == codeInfo.Size() {
		return nil
	}

	slog.Info("Creating UEFI variable store", "path", varsPath)

	src, err := os.Open(codePath)
	if err != nil {
		return fmt.Errorf("open firmware code: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(varsPath)
	if err != nil {
		return fmt.Errorf("create variable store: %w", err)
	}

	_, err = io.Copy(dst, src)
	if err != nil {
		_ = dst.Close()
		return fmt.Errorf("copy variable store: %w", err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("close variable store: %w", err)
	}

	return nil
}
