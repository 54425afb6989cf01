// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package iso

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Substring hints identifying boot files in a 7z listing. 7z prints no Rock
// Ridge metadata, so matching is looser than for isoinfo and relies on file
// name suffixes in addition.
var (
	sevenZipKernelHints = []string{"vmlinuz", "boot/linux"}
	sevenZipInitrdHints = []string{"initrd", "initramfs"}

	sevenZipKernelSuffixes = []string{"bin", "z", "bimage", "elf"}
	sevenZipInitrdSuffixes = []string{".img", ".gz"}
)

// sevenZipListing runs `7z l` to get a flat file listing of the ISO.
func sevenZipListing(
	ctx context.Context,
	executable, isoPath string,
) (string, error) {
	cmd := exec.CommandContext(ctx, executable, "l", isoPath)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("7z listing: %w", err)
	}

	return string(out), nil
}

// parseSevenZipListing scans a `7z l` listing for the first kernel and
// initrd candidates.
func parseSevenZipListing(listing string) (string, string) {
	var kernel, initrd string

	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		fullPath := strings.ReplaceAll(
			strings.TrimLeft(fields[len(fields)-1], "./"), "\\", "/")

		if kernel == "" && isSevenZipKernel(fullPath) {
			kernel = fullPath
		}

		if initrd == "" && isSevenZipInitrd(fullPath) {
			initrd = fullPath
		}

		if kernel != "" && initrd != "" {
			break
		}
	}

	return kernel, initrd
}

func isSevenZipKernel(path string) bool {
	lower := strings.ToLower(path)

	if strings.HasSuffix(lower, ".mod") {
		return false
	}

	if !hasAnySuffix(lower, sevenZipKernelSuffixes) {
		return false
	}

	return containsAny(lower, sevenZipKernelHints)
}

func isSevenZipInitrd(path string) bool {
	lower := strings.ToLower(path)

	if !hasAnySuffix(lower, sevenZipInitrdSuffixes) {
		return false
	}

	return containsAny(lower, sevenZipInitrdHints)
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}

	return false
}

// extractFile extracts a single file from the ISO into dstDir and returns
// the path of the extracted file.
func extractFile(
	ctx context.Context,
	executable, isoPath, fileInISO, dstDir string,
) (string, error) {
	extractPath := strings.TrimLeft(fileInISO, "/")
	outputPath := filepath.Join(dstDir, filepath.Base(fileInISO))

	cmd := exec.CommandContext(
		ctx, executable, "e", isoPath, "-o"+dstDir, extractPath,
	)

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrExtractFailed, extractPath, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrExtractFailed, extractPath)
	}

	return outputPath, nil
}
