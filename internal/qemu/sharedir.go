// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// virtfsSecurityModel maps guest file attributes into host extended
// attributes, so shares work without running QEMU as root.
const virtfsSecurityModel = "mapped-xattr"

var mountTagRE = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ShareDir is a host directory exported to the guest via VirtFS.
type ShareDir struct {
	// Absolute path of the host directory.
	Path string
	// Mount tag the guest uses to identify the share.
	Tag string
}

// String implements [fmt.Stringer].
func (s *ShareDir) String() string {
	if s.Path == "" && s.Tag == "" {
		return ""
	}

	return s.Path + ":" + s.Tag
}

// MarshalText implements [encoding.TextMarshaler].
func (s ShareDir) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler]. The expected format
// is "/host/path:mount_tag". The host path must be an existing directory.
func (s *ShareDir) UnmarshalText(text []byte) error {
	input := string(text)
	if input == "" {
		*s = ShareDir{}
		return nil
	}

	idx := strings.LastIndex(input, ":")
	if idx < 0 {
		return &ArgumentError{
			"share dir format must be '/host/path:mount_tag'",
		}
	}

	path, tag := input[:idx], input[idx+1:]

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return &ArgumentError{"host path is not a directory: " + path}
	}

	if !mountTagRE.MatchString(tag) {
		return &ArgumentError{
			"invalid characters in mount tag '" + tag +
				"', allowed: letters, numbers and underscores",
		}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("absolute path: %w", err)
	}

	s.Path = absPath
	s.Tag = tag

	return nil
}

// Arg returns the -virtfs argument exporting the share.
func (s *ShareDir) Arg() Argument {
	return RepeatableArg("virtfs", fmt.Sprintf(
		"local,path=%s,mount_tag=%s,security_model=%s,id=%s",
		s.Path, s.Tag, virtfsSecurityModel, s.Tag,
	))
}
