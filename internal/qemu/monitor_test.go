// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"bufio"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/runqemu/internal/qemu"
)

func TestMonitor(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "monitor.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	t.Cleanup(func() { _ = listener.Close() })

	received := make(chan string, 1)

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		line, err := bufio.NewReader(conn).ReadString('\n')
		if err != nil {
			return
		}

		received <- line
	}()

	monitor, err := qemu.ConnectMonitor(socketPath)
	require.NoError(t, err)

	require.NoError(t, monitor.Quit())
	assert.Equal(t, "quit\n", <-received)

	require.NoError(t, monitor.Close())
	require.NoError(t, monitor.Close())

	_, err = monitor.Write([]byte("info status\n"))
	require.ErrorIs(t, err, qemu.ErrMonitorClosed)
}

func TestConnectMonitorMissingSocket(t *testing.T) {
	_, err := qemu.ConnectMonitor(
		filepath.Join(t.TempDir(), "nonexistent.sock"))
	require.Error(t, err)
}
