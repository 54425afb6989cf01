// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"strings"
)

const (
	networkID = "net0"

	// Default user mode port forwards: guest SSH and the auxiliary channel.
	networkPortForwards = "hostfwd=tcp::2222-:22,hostfwd=tcp::6001-:6001"
)

const (
	// NetworkModeUser is QEMU user mode networking (SLIRP/NAT) with the
	// default port forwards.
	NetworkModeUser NetworkMode = "user"
	// NetworkModeTap attaches the guest to an existing host tap interface.
	NetworkModeTap NetworkMode = "tap"
)

// NetworkMode is the backend for the guest network device.
type NetworkMode string

// Network is the guest network configuration.
type Network struct {
	Mode NetworkMode
	// Host tap interface name. Only used with [NetworkModeTap].
	Interface string
}

// String implements [fmt.Stringer].
func (n *Network) String() string {
	if n.Mode == NetworkModeTap {
		return string(n.Mode) + ":" + n.Interface
	}

	return string(n.Mode)
}

// MarshalText implements [encoding.TextMarshaler].
func (n Network) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler]. Valid inputs are
// "user" and "tap:<ifname>". The tap interface must exist and be up, which
// is verified immediately so a typo fails before QEMU starts.
func (n *Network) UnmarshalText(text []byte) error {
	mode, ifname, _ := strings.Cut(string(text), ":")

	switch NetworkMode(mode) {
	case NetworkModeUser:
		*n = Network{Mode: NetworkModeUser}
	case NetworkModeTap:
		if ifname == "" {
			return &ArgumentError{"tap network requires an interface name"}
		}

		if err := validateTapInterface(ifname); err != nil {
			return err
		}

		*n = Network{Mode: NetworkModeTap, Interface: ifname}
	default:
		return &ArgumentError{"unknown network mode: " + mode}
	}

	return nil
}

// Args returns the -netdev and -device arguments for the configuration.
func (n *Network) Args() []Argument {
	var backend string

	switch n.Mode {
	case NetworkModeTap:
		backend = "tap,id=" + networkID + ",ifname=" + n.Interface +
			",script=no,downscript=no"
	default:
		backend = "user,id=" + networkID + "," + networkPortForwards
	}

	return []Argument{
		UniqueArg("netdev", backend),
		RepeatableArg("device", "virtio-net-pci,netdev="+networkID),
	}
}
