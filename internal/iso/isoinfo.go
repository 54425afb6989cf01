// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package iso

import (
	"context"
	"fmt"
	"os/exec"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// isoinfoListing runs isoinfo to get a recursive Rock Ridge directory
// listing of the ISO.
func isoinfoListing(
	ctx context.Context,
	executable, isoPath string,
) (string, error) {
	cmd := exec.CommandContext(ctx, executable, "-R", "-l", "-i", isoPath)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("isoinfo listing: %w", err)
	}

	return string(out), nil
}

// isoinfoFind runs isoinfo in find mode against the Joliet tree and returns
// its raw output, one matching path per line.
func isoinfoFind(
	ctx context.Context,
	executable, isoPath, pattern string,
) (string, error) {
	cmd := exec.CommandContext(
		ctx, executable, "-i", isoPath, "-J", "-find", pattern)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("isoinfo find: %w", err)
	}

	return string(out), nil
}

// parseIsoinfoListing scans an `isoinfo -R -l` listing for file paths
// matching the given patterns. Only regular files of a plausible size are
// considered.
//
// The listing consists of blocks per directory, separated by blank lines:
//
//	Directory listing of /boot/
//	dr-xr-xr-x   2    0    0            2048 Jul  2 2025 [   29 02]  .
//	-r--r--r--   1    0    0        53245944 Jul  2 2025 [ 5542 00]  initrd.gz
func parseIsoinfoListing(
	listing string,
	patterns []*regexp.Regexp,
) []candidate {
	var candidates []candidate

	for _, block := range strings.Split(listing, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		lines := strings.Split(block, "\n")

		dir := isoinfoBlockDirectory(lines)
		if dir == "" {
			continue
		}

		for _, line := range lines {
			name, size, ok := isoinfoFileEntry(line)
			if !ok || size < minBootFileSize {
				continue
			}

			fullPath := path.Join("/", dir, name)
			if matchesAny(fullPath, patterns) {
				candidates = append(candidates, candidate{fullPath, size})
			}
		}
	}

	return candidates
}

// isoinfoBlockDirectory extracts the directory path from the header line of
// an isoinfo listing block.
func isoinfoBlockDirectory(blockLines []string) string {
	for _, line := range blockLines {
		if !strings.HasPrefix(line, "Directory listing of") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			return ""
		}

		return strings.Trim(fields[len(fields)-1], "':")
	}

	return ""
}

// isoinfoFileEntry parses a regular file line of an isoinfo listing block,
// returning the file name and size.
func isoinfoFileEntry(line string) (string, int64, bool) {
	if !strings.HasPrefix(line, "-r-") {
		return "", 0, false
	}

	fields := strings.Fields(line)
	if len(fields) < 10 {
		return "", 0, false
	}

	name := fields[len(fields)-1]
	if name == "." || name == ".." {
		return "", 0, false
	}

	size, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return "", 0, false
	}

	return name, size, true
}
