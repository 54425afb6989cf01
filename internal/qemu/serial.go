// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"github.com/aibor/runqemu/internal/sys"
)

const (
	// SerialProfilePC is the standard PC serial port (ISA/16550A). Expected
	// by most x86 OSes.
	SerialProfilePC SerialProfile = "pc"
	// SerialProfilePL011 is the ARM PL011 serial port. Standard for ARM
	// "virt" machines.
	SerialProfilePL011 SerialProfile = "pl011"
	// SerialProfileVirtio is the virtio paravirtualized serial port. High
	// performance, requires guest drivers.
	SerialProfileVirtio SerialProfile = "virtio"
)

// SerialProfile selects the serial device QEMU attaches the text console
// chardev to.
type SerialProfile string

// SerialProfiles lists all known profiles in display order.
var SerialProfiles = []SerialProfile{
	SerialProfilePC,
	SerialProfilePL011,
	SerialProfileVirtio,
}

// DefaultSerialProfile returns the profile that works best for the given
// guest architecture.
func DefaultSerialProfile(arch sys.Arch) SerialProfile {
	switch arch {
	case sys.AMD64, sys.I386, sys.ARM64, sys.RISCV64:
		return SerialProfileVirtio
	default:
		return SerialProfilePL011
	}
}

func (p *SerialProfile) isKnown() bool {
	switch *p {
	case SerialProfilePC, SerialProfilePL011, SerialProfileVirtio:
		return true
	default:
		return false
	}
}

// String implements [fmt.Stringer].
func (p *SerialProfile) String() string {
	return string(*p)
}

// MarshalText implements [encoding.TextMarshaler].
func (p SerialProfile) MarshalText() ([]byte, error) {
	return []byte(p), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (p *SerialProfile) UnmarshalText(text []byte) error {
	profile := SerialProfile(text)

	if len(text) > 0 && !profile.isKnown() {
		return ErrSerialProfileInvalid
	}

	*p = profile

	return nil
}

// Description returns the human readable description for profile listings.
func (p SerialProfile) Description() string {
	switch p {
	case SerialProfilePC:
		return "Standard PC serial port (ISA/16550A). Expected by most x86 OSes."
	case SerialProfilePL011:
		return "ARM PL011 serial port. Standard for ARM 'virt' machines."
	case SerialProfileVirtio:
		return "Virtio paravirtualized serial port. High-performance, requires guest drivers."
	default:
		return ""
	}
}

// Args returns the QEMU arguments attaching the console chardev to the
// serial device of the profile.
func (p SerialProfile) Args(chardevID string) []Argument {
	switch p {
	case SerialProfilePC:
		return []Argument{
			RepeatableArg("device", "isa-serial,chardev="+chardevID),
		}
	case SerialProfilePL011:
		return []Argument{
			RepeatableArg("serial", "chardev:"+chardevID),
		}
	case SerialProfileVirtio:
		return []Argument{
			RepeatableArg("device", "virtio-serial-pci"),
			RepeatableArg("device", "virtconsole,chardev="+chardevID),
		}
	default:
		return nil
	}
}

// ConsoleKernelArgs returns the kernel cmdline arguments directing the guest
// console to the serial device of the profile. Used for direct kernel boot.
func (p SerialProfile) ConsoleKernelArgs() []string {
	if p == SerialProfileVirtio {
		return []string{"console=hvc0", "panic=1"}
	}

	return []string{"console=ttyS0,115200n8", "panic=1"}
}
