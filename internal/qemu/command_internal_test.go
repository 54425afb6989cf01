// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanOutput(t *testing.T) {
	input := strings.Join([]string{
		"qemu-system-x86_64: warning: something",
		"char device redirected to /dev/pts/5 (label char0)",
		"guest boot noise after redirect",
	}, "\n") + "\n"

	reader, writer, err := os.Pipe()
	require.NoError(t, err)

	ptyCh := make(chan string, 1)
	output := make(chan string, outputBacklogSize)

	var startupOut strings.Builder

	done := make(chan struct{})

	go func() {
		defer close(done)
		scanOutput(reader, &startupOut, ptyCh, output)
	}()

	_, err = io.WriteString(writer, input)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	<-done

	assert.Equal(t, "/dev/pts/5", <-ptyCh)

	// Lines after the redirect announcement go to the backlog only.
	assert.NotContains(t, startupOut.String(), "guest boot noise")
	assert.Contains(t, startupOut.String(), "warning: something")

	var backlog []string
	for line := range output {
		backlog = append(backlog, line)
	}

	assert.Len(t, backlog, 3)
}

func TestScanOutputNoRedirect(t *testing.T) {
	reader, writer, err := os.Pipe()
	require.NoError(t, err)

	ptyCh := make(chan string, 1)
	output := make(chan string, outputBacklogSize)

	done := make(chan struct{})

	go func() {
		defer close(done)
		scanOutput(reader, io.Discard, ptyCh, output)
	}()

	_, err = io.WriteString(writer, "just noise\n")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	<-done

	select {
	case path := <-ptyCh:
		t.Fatalf("unexpected PTY path: %s", path)
	default:
	}
}

func TestBootOrder(t *testing.T) {
	tests := []struct {
		name     string
		spec     CommandSpec
		expected string
	}{
		{
			name:     "disk only",
			spec:     CommandSpec{},
			expected: "c",
		},
		{
			name:     "auto with cdrom",
			spec:     CommandSpec{CDROM: "/os.iso"},
			expected: "d",
		},
		{
			name: "explicit disk with cdrom",
			spec: CommandSpec{
				CDROM:    "/os.iso",
				BootFrom: BootDeviceDisk,
			},
			expected: "c",
		},
		{
			name:     "explicit cdrom",
			spec:     CommandSpec{BootFrom: BootDeviceCDROM},
			expected: "d",
		},
		{
			name: "direct kernel boot overrides cdrom",
			spec: CommandSpec{
				CDROM:  "/os.iso",
				Kernel: "/vmlinuz",
			},
			expected: "c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.spec.bootOrder())
		})
	}
}

func TestMonitorSocketPath(t *testing.T) {
	path := MonitorSocketPath()

	assert.Contains(t, path, "qemu-monitor-")
	assert.True(t, strings.HasSuffix(path, ".sock"))
}
