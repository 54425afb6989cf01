// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package iso

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cavaliergopher/cpio"
	"github.com/klauspost/compress/gzip"
)

// ErrInitrdInvalid is returned if an extracted initrd does not look like a
// gzip compressed cpio archive.
var ErrInitrdInvalid = errors.New("initrd is not a gzip compressed cpio archive")

// VerifyInitrd checks that the file at path is a gzip compressed cpio
// archive as the kernel expects.
//
// Extraction heuristics can pick a wrong file (e.g. a squashfs image named
// like an initrd), which QEMU would accept and the kernel then panic on.
// Checking up front turns that into a clear error before boot.
func VerifyInitrd(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open initrd: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInitrdInvalid, err)
	}
	defer gzReader.Close()

	cpioReader := cpio.NewReader(gzReader)

	// A single valid header is proof enough, full decompression of a
	// multi hundred megabyte initrd would just waste startup time.
	_, err = cpioReader.Next()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInitrdInvalid, err)
	}

	return nil
}
