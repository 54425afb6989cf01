// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package iso

import (
	"regexp"
	"sort"
	"strings"
)

// minBootFileSize filters out stub files like symlink placeholders or boot
// menu entries that match the kernel name patterns.
const minBootFileSize = 100_000

// Path patterns identifying Linux kernels in installer and live ISOs. Matched
// against the lower cased absolute path within the ISO.
var kernelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/vmlinuz$`),
	regexp.MustCompile(`/install(\.amd)?/.*vmlinuz`),
	regexp.MustCompile(`/boot/vmlinuz`),
	regexp.MustCompile(`vmlinuz$`),
	regexp.MustCompile(`boot/linux$`),
}

// Path patterns identifying initial ramdisks, matching kernelPatterns above.
var initrdPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/initrd\.gz$`),
	regexp.MustCompile(`/install(\.amd)?/.*initrd\.gz`),
	regexp.MustCompile(`/boot/initrd\.gz`),
	regexp.MustCompile(`/boot/initramfs\.gz`),
	regexp.MustCompile(`initrd\.gz$`),
}

// candidate is a boot file found in an ISO listing.
type candidate struct {
	path string
	size int64
}

func matchesAny(path string, patterns []*regexp.Regexp) bool {
	lower := strings.ToLower(path)

	for _, pattern := range patterns {
		if pattern.MatchString(lower) {
			return true
		}
	}

	return false
}

// selectBest returns the most promising candidate path. Shallow paths win
// over deep ones, then larger files win over smaller ones. Installer ISOs
// often carry multiple kernels (e.g. rescue variants in subdirectories),
// the main one sits closest to the ISO root.
func selectBest(candidates []candidate) string {
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		depthI := strings.Count(candidates[i].path, "/")
		depthJ := strings.Count(candidates[j].path, "/")

		if depthI != depthJ {
			return depthI < depthJ
		}

		return candidates[i].size > candidates[j].size
	})

	return candidates[0].path
}
