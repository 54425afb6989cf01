// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

//go:build !linux

package qemu

// validateTapInterface is a no-op on hosts without netlink. QEMU reports a
// missing interface on startup instead.
func validateTapInterface(string) error {
	return nil
}
