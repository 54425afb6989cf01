// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package iso inspects ISO images for bootable files.
//
// Installer ISOs are probed with external tools, preferring isoinfo for its
// Rock Ridge support and falling back to 7z. The found kernel and initrd
// can be extracted for direct kernel boot, the found UEFI bootloader path
// feeds the generated UEFI startup script.
package iso

import (
	"context"
	"log/slog"
	"os/exec"
	"path"
	"strings"

	"github.com/aibor/runqemu/internal/sys"
)

// UEFI removable media bootloader file names by architecture.
var uefiBootloaderNames = map[sys.Arch]string{
	sys.AMD64:   "bootx64.efi",
	sys.ARM64:   "bootaa64.efi",
	sys.RISCV64: "bootriscv64.efi",
}

// Inspector probes ISO images with the available host tools.
type Inspector struct {
	// Path to the 7z executable.
	SevenZip string
	// Path to the isoinfo executable. Empty if not available.
	Isoinfo string
}

// NewInspector creates an [Inspector] with the given 7z executable and
// isoinfo looked up from PATH.
func NewInspector(sevenZip string) *Inspector {
	isoinfo, err := exec.LookPath("isoinfo")
	if err != nil {
		isoinfo = ""
	}

	return &Inspector{
		SevenZip: sevenZip,
		Isoinfo:  isoinfo,
	}
}

// BootFiles are paths of a kernel and initrd pair within an ISO.
type BootFiles struct {
	Kernel string
	Initrd string
}

// FindBootFiles searches the ISO for a Linux kernel and initrd suitable for
// direct kernel boot. Tools are tried in order until one finds both files.
// Returns [ErrNoInspectionTool] if no tool is available at all.
func (i *Inspector) FindBootFiles(
	ctx context.Context,
	isoPath string,
) (BootFiles, error) {
	if i.Isoinfo == "" && i.SevenZip == "" {
		return BootFiles{}, ErrNoInspectionTool
	}

	slog.Info("Searching for kernel and initrd", "iso", isoPath)

	var reasons []string

	if i.Isoinfo != "" {
		files, reason := i.findBootFilesIsoinfo(ctx, isoPath)
		if reason == "" {
			return files, nil
		}

		reasons = append(reasons, reason)
	} else {
		reasons = append(reasons, "isoinfo not found")
	}

	if i.SevenZip != "" {
		files, reason := i.findBootFilesSevenZip(ctx, isoPath)
		if reason == "" {
			return files, nil
		}

		reasons = append(reasons, reason)
	} else {
		reasons = append(reasons, "7z not found")
	}

	return BootFiles{}, &InspectError{
		Err:     ErrBootFilesNotFound,
		Reasons: reasons,
	}
}

func (i *Inspector) findBootFilesIsoinfo(
	ctx context.Context,
	isoPath string,
) (BootFiles, string) {
	listing, err := isoinfoListing(ctx, i.Isoinfo, isoPath)
	if err != nil {
		return BootFiles{}, err.Error()
	}

	kernel := selectBest(parseIsoinfoListing(listing, kernelPatterns))
	initrd := selectBest(parseIsoinfoListing(listing, initrdPatterns))

	if kernel == "" || initrd == "" {
		return BootFiles{}, "isoinfo (candidates not found)"
	}

	slog.Info("Found boot files",
		"tool", "isoinfo", "kernel", kernel, "initrd", initrd)

	return BootFiles{Kernel: kernel, Initrd: initrd}, ""
}

func (i *Inspector) findBootFilesSevenZip(
	ctx context.Context,
	isoPath string,
) (BootFiles, string) {
	listing, err := sevenZipListing(ctx, i.SevenZip, isoPath)
	if err != nil {
		return BootFiles{}, err.Error()
	}

	kernel, initrd := parseSevenZipListing(listing)
	if kernel == "" || initrd == "" {
		return BootFiles{}, "7z (candidates not found)"
	}

	slog.Info("Found boot files",
		"tool", "7z", "kernel", kernel, "initrd", initrd)

	return BootFiles{Kernel: kernel, Initrd: initrd}, ""
}

// FindUEFIBootloader searches the ISO for the removable media UEFI
// bootloader of the given architecture and returns its path within the ISO.
// Tools are tried in order, isoinfo first.
//
// Returns [ErrBootloaderNotFound] if the architecture has no known
// bootloader file name or the file is not present in the ISO, and
// [ErrNoInspectionTool] if no tool is available at all.
func (i *Inspector) FindUEFIBootloader(
	ctx context.Context,
	isoPath string,
	arch sys.Arch,
) (string, error) {
	name, exists := uefiBootloaderNames[arch]
	if !exists {
		return "", &InspectError{
			Err:     ErrBootloaderNotFound,
			Reasons: []string{"no bootloader name known for " + string(arch)},
		}
	}

	if i.Isoinfo == "" && i.SevenZip == "" {
		return "", ErrNoInspectionTool
	}

	slog.Info("Searching for UEFI bootloader", "iso", isoPath, "file", name)

	var reasons []string

	if i.Isoinfo != "" {
		found, reason := i.findBootloaderIsoinfo(ctx, isoPath, name)
		if reason == "" {
			return found, nil
		}

		reasons = append(reasons, reason)
	} else {
		reasons = append(reasons, "isoinfo not found")
	}

	if i.SevenZip != "" {
		found, reason := i.findBootloaderSevenZip(ctx, isoPath, name)
		if reason == "" {
			return found, nil
		}

		reasons = append(reasons, reason)
	} else {
		reasons = append(reasons, "7z not found")
	}

	return "", &InspectError{Err: ErrBootloaderNotFound, Reasons: reasons}
}

func (i *Inspector) findBootloaderIsoinfo(
	ctx context.Context,
	isoPath, name string,
) (string, string) {
	output, err := isoinfoFind(ctx, i.Isoinfo, isoPath, "*/"+name)
	if err != nil {
		return "", err.Error()
	}

	line, _, _ := strings.Cut(output, "\n")
	// Plain ISO9660 records carry a file version suffix like ";1".
	line, _, _ = strings.Cut(strings.TrimSpace(line), ";")

	if line == "" {
		return "", "isoinfo (no bootloader found)"
	}

	found := normalizeISOPath(line)
	slog.Info("Found UEFI bootloader", "tool", "isoinfo", "path", found)

	return found, ""
}

func (i *Inspector) findBootloaderSevenZip(
	ctx context.Context,
	isoPath, name string,
) (string, string) {
	listing, err := sevenZipListing(ctx, i.SevenZip, isoPath)
	if err != nil {
		return "", err.Error()
	}

	found := findInSevenZipListing(listing, name)
	if found == "" {
		return "", "7z (no bootloader found)"
	}

	slog.Info("Found UEFI bootloader", "tool", "7z", "path", found)

	return found, ""
}

// findInSevenZipListing returns the first path in the listing ending in the
// given file name.
func findInSevenZipListing(listing, fileName string) string {
	for _, line := range strings.Split(listing, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		candidate := strings.ReplaceAll(fields[len(fields)-1], "\\", "/")
		if strings.HasSuffix(strings.ToLower(candidate), fileName) {
			return normalizeISOPath(candidate)
		}
	}

	return ""
}

// ExtractBootFiles extracts the kernel and initrd from the ISO into dstDir.
// Paths of the extracted files are returned.
func (i *Inspector) ExtractBootFiles(
	ctx context.Context,
	isoPath string,
	files BootFiles,
	dstDir string,
) (BootFiles, error) {
	kernelPath, err := extractFile(
		ctx, i.SevenZip, isoPath, files.Kernel, dstDir)
	if err != nil {
		return BootFiles{}, err
	}

	initrdPath, err := extractFile(
		ctx, i.SevenZip, isoPath, files.Initrd, dstDir)
	if err != nil {
		return BootFiles{}, err
	}

	slog.Info("Extracted boot files",
		"kernel", kernelPath, "initrd", initrdPath)

	return BootFiles{Kernel: kernelPath, Initrd: initrdPath}, nil
}

func normalizeISOPath(p string) string {
	return path.Clean("/" + p)
}
