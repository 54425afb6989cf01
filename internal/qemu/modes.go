// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

const (
	// ConsoleGUI opens the QEMU display window.
	ConsoleGUI ConsoleMode = "gui"
	// ConsoleText attaches an interactive serial console to the invoking
	// terminal instead of a display.
	ConsoleText ConsoleMode = "text"
)

// ConsoleMode selects how the guest console is presented.
type ConsoleMode string

// String implements [fmt.Stringer].
func (m *ConsoleMode) String() string {
	return string(*m)
}

// MarshalText implements [encoding.TextMarshaler].
func (m ConsoleMode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *ConsoleMode) UnmarshalText(text []byte) error {
	mode := ConsoleMode(text)

	switch mode {
	case ConsoleGUI, ConsoleText:
		*m = mode
		return nil
	default:
		return ErrConsoleModeInvalid
	}
}

const (
	// BootDeviceAuto boots from CD-ROM if an ISO is attached, from disk
	// otherwise.
	BootDeviceAuto BootDevice = ""
	// BootDeviceCDROM boots from the attached ISO.
	BootDeviceCDROM BootDevice = "cdrom"
	// BootDeviceDisk boots from the primary disk image.
	BootDeviceDisk BootDevice = "disk"
)

// BootDevice selects the boot order of the guest.
type BootDevice string

// String implements [fmt.Stringer].
func (d *BootDevice) String() string {
	return string(*d)
}

// MarshalText implements [encoding.TextMarshaler].
func (d BootDevice) MarshalText() ([]byte, error) {
	return []byte(d), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *BootDevice) UnmarshalText(text []byte) error {
	device := BootDevice(text)

	switch device {
	case BootDeviceAuto, BootDeviceCDROM, BootDeviceDisk:
		*d = device
		return nil
	default:
		return ErrBootDeviceInvalid
	}
}

const (
	// FirmwareAuto selects UEFI or legacy BIOS based on architecture and
	// console mode.
	FirmwareAuto FirmwareMode = ""
	// FirmwareUEFI forces UEFI boot via pflash drives.
	FirmwareUEFI FirmwareMode = "uefi"
	// FirmwareBIOS forces legacy BIOS boot.
	FirmwareBIOS FirmwareMode = "bios"
)

// FirmwareMode selects the guest firmware.
type FirmwareMode string

// String implements [fmt.Stringer].
func (m *FirmwareMode) String() string {
	return string(*m)
}

// MarshalText implements [encoding.TextMarshaler].
func (m FirmwareMode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *FirmwareMode) UnmarshalText(text []byte) error {
	mode := FirmwareMode(text)

	switch mode {
	case FirmwareAuto, FirmwareUEFI, FirmwareBIOS:
		*m = mode
		return nil
	default:
		return ErrFirmwareModeInvalid
	}
}
