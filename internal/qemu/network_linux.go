// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"net"

	"github.com/vishvananda/netlink"
)

// validateTapInterface checks that the named host interface exists, is a tap
// device and is administratively up.
func validateTapInterface(ifname string) error {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return &ArgumentError{"tap interface not found: " + ifname}
	}

	if _, ok := link.(*netlink.Tuntap); !ok {
		// Links created with "ip tuntap" before kernel 4.x report as
		// generic devices, so only reject kinds that are known to be
		// something else entirely.
		if link.Type() != "tuntap" && link.Type() != "device" {
			return &ArgumentError{
				"interface " + ifname + " is not a tap device",
			}
		}
	}

	if link.Attrs().Flags&net.FlagUp == 0 {
		return &ArgumentError{"tap interface is down: " + ifname}
	}

	return nil
}
