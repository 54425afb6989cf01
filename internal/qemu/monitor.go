// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"net"
	"sync"
)

// Monitor is a client connection to the QEMU human monitor.
type Monitor struct {
	conn net.Conn

	mu     sync.Mutex
	closed bool
}

// ConnectMonitor connects to the QEMU monitor unix socket.
func ConnectMonitor(socketPath string) (*Monitor, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect monitor: %w", err)
	}

	return &Monitor{conn: conn}, nil
}

// Read reads available monitor output into buf.
func (m *Monitor) Read(buf []byte) (int, error) {
	return m.conn.Read(buf) //nolint:wrapcheck
}

// Write sends raw input to the monitor.
func (m *Monitor) Write(data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrMonitorClosed
	}

	return m.conn.Write(data) //nolint:wrapcheck
}

// Quit asks QEMU to terminate via the monitor "quit" command.
func (m *Monitor) Quit() error {
	_, err := m.Write([]byte("quit\n"))
	return err
}

// Close closes the monitor connection. Safe to call multiple times.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true

	return m.conn.Close() //nolint:wrapcheck
}
