// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"strconv"
	"strings"

	"github.com/aibor/runqemu/internal/sys"
)

// Default device models attached to the guest.
const (
	usbControllerDevice = "qemu-xhci"
	keyboardDevice      = "usb-kbd"
	mouseDevice         = "usb-tablet"
	displayType         = "default,show-cursor=on"

	consoleChardevID = "char0"
)

// CommandSpec defines the parameters for a [Command].
type CommandSpec struct {
	// Path to the qemu-system binary.
	Executable string

	// Guest architecture, used for device defaults.
	Arch sys.Arch

	// QEMU machine type to use. Depends on the QEMU binary used.
	Machine string

	// Virtualization accelerator backend.
	Accel sys.Accelerator

	// CPU model to emulate.
	CPU string

	// Memory for the machine, in QEMU size notation (e.g. "4G").
	Memory string

	// Number of CPUs for the guest.
	SMP uint64

	// Path to the primary disk image.
	DiskImage string

	// Path to a bootable ISO. Optional.
	CDROM string

	// Boot device selection.
	BootFrom BootDevice

	// Guest firmware. [FirmwareAuto] must be resolved by the caller before
	// building arguments; only [FirmwareUEFI] adds pflash drives here.
	Firmware FirmwareMode

	// Paths to the UEFI firmware code and variable store files. Required
	// with [FirmwareUEFI].
	UEFICode string
	UEFIVars string

	// Console presentation mode.
	Console ConsoleMode

	// Serial device profile for text mode. Empty selects the architecture
	// default.
	Serial SerialProfile

	// VGA card type for GUI mode. Empty selects the architecture default.
	VGA string

	// Path of the QEMU monitor unix socket for text mode.
	MonitorSocket string

	// Guest network configuration.
	Network Network

	// Host directory shared with the guest. Optional.
	ShareDir ShareDir

	// Direct kernel boot. When Kernel is set, the firmware boot path is
	// bypassed and Kernel/Initrd/Append are passed straight to QEMU.
	Kernel string
	Initrd string
	Append []string

	// Directory attached as a FAT formatted usb-storage drive. Used to
	// inject a startup.nsh for automated UEFI boot from CD-ROM.
	BootScriptDir string
}

// SerialProfileOrDefault returns the configured serial profile, falling back
// to the architecture default.
func (s *CommandSpec) SerialProfileOrDefault() SerialProfile {
	if s.Serial != "" {
		return s.Serial
	}

	return DefaultSerialProfile(s.Arch)
}

// DirectKernelBoot returns true if the spec bypasses firmware boot.
func (s *CommandSpec) DirectKernelBoot() bool {
	return s.Kernel != ""
}

// bootOrder returns the QEMU boot order character for the spec.
func (s *CommandSpec) bootOrder() string {
	// With direct kernel boot the CD-ROM is only used for bootstrapping, so
	// the guest must continue from disk.
	if s.DirectKernelBoot() {
		return "c"
	}

	if s.BootFrom == BootDeviceCDROM ||
		(s.BootFrom == BootDeviceAuto && s.CDROM != "") {
		return "d"
	}

	return "c"
}

// Arguments compiles the full QEMU argument list for the spec.
func (s *CommandSpec) Arguments() []Argument {
	args := []Argument{
		UniqueArg("M", s.Machine),
		UniqueArg("accel", string(s.Accel)),
		UniqueArg("cpu", s.CPU),
		UniqueArg("m", s.Memory),
		UniqueArg("smp", strconv.FormatUint(s.SMP, 10)),
	}

	args = append(args, s.Network.Args()...)

	args = append(args,
		UniqueArg("hda", s.DiskImage),
		RepeatableArg("device", usbControllerDevice),
	)

	if s.CDROM != "" {
		args = append(args, UniqueArg("cdrom", s.CDROM))
	}

	if s.ShareDir.Path != "" {
		args = append(args, s.ShareDir.Arg())
	}

	if s.Firmware == FirmwareUEFI && !s.DirectKernelBoot() {
		args = append(args,
			RepeatableArg("drive",
				"if=pflash,format=raw,readonly=on,file="+s.UEFICode),
			RepeatableArg("drive", "if=pflash,format=raw,file="+s.UEFIVars),
		)
	}

	if s.DirectKernelBoot() {
		args = append(args,
			UniqueArg("kernel", s.Kernel),
			UniqueArg("initrd", s.Initrd),
			UniqueArg("append", strings.Join(s.Append, " ")),
		)
	}

	switch {
	case s.Console == ConsoleText:
		args = append(args, s.textConsoleArgs()...)
	default:
		args = append(args, s.guiArgs()...)
	}

	args = append(args, UniqueArg("boot", "order="+s.bootOrder()))

	if s.BootScriptDir != "" {
		args = append(args,
			RepeatableArg("drive",
				"if=none,id=boot-script,format=raw,file=fat:rw:"+
					s.BootScriptDir),
			RepeatableArg("device", "usb-storage,drive=boot-script"),
		)
	}

	return args
}

// textConsoleArgs returns the arguments attaching the serial console to a
// host PTY and exposing the QEMU monitor on a unix socket.
func (s *CommandSpec) textConsoleArgs() []Argument {
	args := []Argument{
		UniqueArg("monitor",
			"unix:"+s.MonitorSocket+",server,nowait"),
		RepeatableArg("chardev", "pty,id="+consoleChardevID),
	}

	args = append(args, s.SerialProfileOrDefault().Args(consoleChardevID)...)

	return append(args, UniqueArg("nographic"))
}

// guiArgs returns the display and input device arguments for GUI mode.
func (s *CommandSpec) guiArgs() []Argument {
	var args []Argument

	vga := s.VGA
	if vga == "" {
		switch s.Arch {
		case sys.AMD64, sys.I386:
			vga = "std"
		case sys.ARM64:
			// No VGA device exists for the ARM virt machine. Attach a
			// virtio GPU instead.
			args = append(args,
				RepeatableArg("device", "virtio-gpu-pci"))
			vga = "none"
		default:
			vga = "std"
		}
	}

	if vga != "none" {
		args = append(args, UniqueArg("vga", vga))
	}

	return append(args,
		UniqueArg("display", displayType),
		RepeatableArg("device", keyboardDevice),
		RepeatableArg("device", mouseDevice),
	)
}

// Validate checks for known incompatibilities.
func (s *CommandSpec) Validate() error {
	if s.DiskImage == "" {
		return &ArgumentError{"no disk image given"}
	}

	if s.Console == ConsoleText && s.MonitorSocket == "" {
		return &ArgumentError{"text console requires a monitor socket path"}
	}

	if s.Firmware == FirmwareUEFI && !s.DirectKernelBoot() {
		if s.UEFICode == "" || s.UEFIVars == "" {
			return &ArgumentError{"UEFI boot requires firmware files"}
		}
	}

	if s.DirectKernelBoot() && s.Initrd == "" {
		return &ArgumentError{"direct kernel boot requires an initrd"}
	}

	return nil
}
