// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"flag"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/aibor/runqemu/internal/qemu"
	"github.com/aibor/runqemu/internal/sys"
)

const (
	name = "runqemu"

	machineDefault = "virt"
	cpuDefault     = "host"
	memoryDefault  = "4G"
	smpDefault     = 4

	usageMessage = `Usage of 'runqemu':
    runqemu -arch <arch> -disk-image <image> [flags...]

Launch a QEMU virtual machine with host-aware defaults. With
'-console text' an interactive serial console is attached to the
invoking terminal. Ctrl-] opens the control menu with access to the
QEMU monitor.

All runqemu flags can also be provided via environment variable
RUNQEMU_ARGS:
    RUNQEMU_ARGS="-arch x86_64" runqemu -disk-image disk.qcow2

All runqemu flags can also be provided via file ./.runqemu-args, with one
argument per line.
`
)

type flags struct {
	spec    qemu.CommandSpec
	flagSet *flag.FlagSet

	// arch and serial accept the special value "list", so they are parsed
	// as plain strings and resolved in ParseArgs.
	arch   string
	serial string

	rawLogPath string

	version bool
	debug   bool
}

func newFlags(output io.Writer) *flags {
	flags := &flags{
		spec: qemu.CommandSpec{
			Machine: machineDefault,
			CPU:     cpuDefault,
			Memory:  memoryDefault,
			SMP:     smpDefault,
			Console: qemu.ConsoleGUI,
			Network: qemu.Network{Mode: qemu.NetworkModeUser},
		},
	}

	flags.initFlagset(output)

	return flags
}

func (f *flags) ParseArgs(args []string) error {
	// Parses arguments up to the first one that is not prefixed with a "-" or
	// is "--".
	err := f.flagSet.Parse(args)
	if err != nil {
		return &ParseArgsError{msg: "flag parse", err: err}
	}

	// With version flag, just print the version and exit. Using [ErrHelp]
	// the main binary is supposed to return with a non error exit code.
	if f.version {
		err := f.printVersionInformation()
		return &ParseArgsError{msg: "version requested", err: err}
	}

	if f.arch == "list" {
		f.printArchitectures()
		return &ParseArgsError{msg: "architecture list requested", err: ErrHelp}
	}

	if f.arch == "" {
		return f.fail("no architecture given (use -arch, 'list' for options)",
			nil)
	}

	err = f.spec.Arch.UnmarshalText([]byte(f.arch))
	if err != nil {
		return f.fail("architecture '"+f.arch+"' (use '-arch list')", err)
	}

	if f.serial == "list" {
		f.printSerialProfiles()
		return &ParseArgsError{msg: "serial profile list requested", err: ErrHelp}
	}

	err = f.spec.Serial.UnmarshalText([]byte(f.serial))
	if err != nil {
		return f.fail("serial profile '"+f.serial+"'", err)
	}

	if f.spec.DiskImage == "" {
		return f.fail("no disk image given (use -disk-image)", nil)
	}

	return nil
}

func (f *flags) initFlagset(output io.Writer) {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = f.usage

	flagSet.StringVar(
		&f.arch,
		"arch",
		f.arch,
		"guest architecture (e.g. aarch64, x86_64). Use 'list' for options.",
	)

	flagSet.StringVar(
		&f.spec.DiskImage,
		"disk-image",
		f.spec.DiskImage,
		"path to the primary virtual hard disk image (.qcow2)",
	)

	flagSet.StringVar(
		&f.spec.CDROM,
		"cdrom",
		f.spec.CDROM,
		"path to a bootable ISO file",
	)

	flagSet.TextVar(
		&f.spec.BootFrom,
		"boot-from",
		&f.spec.BootFrom,
		"boot device: cdrom, disk (default cdrom if -cdrom is used)",
	)

	flagSet.TextVar(
		&f.spec.Firmware,
		"firmware",
		&f.spec.Firmware,
		"firmware mode: uefi, bios (default auto-selected)",
	)

	flagSet.TextVar(
		&f.spec.Console,
		"console",
		&f.spec.Console,
		"console type: gui, text",
	)

	flagSet.TextVar(
		&f.spec.ShareDir,
		"share-dir",
		&f.spec.ShareDir,
		"share a host directory with the guest via VirtFS: /host/path:tag",
	)

	flagSet.StringVar(
		&f.serial,
		"serial",
		f.serial,
		"serial device profile for text mode. Use 'list' for options.",
	)

	flagSet.StringVar(
		&f.spec.Machine,
		"machine",
		f.spec.Machine,
		"QEMU machine type to use",
	)

	flagSet.StringVar(
		(*string)(&f.spec.Accel),
		"accel",
		string(f.spec.Accel),
		"VM accelerator (e.g. hvf, kvm, tcg) (default auto-detected)",
	)

	flagSet.StringVar(
		&f.spec.CPU,
		"cpu",
		f.spec.CPU,
		"CPU model to emulate",
	)

	flagSet.StringVar(
		&f.spec.Memory,
		"memory",
		f.spec.Memory,
		"RAM for the VM, in QEMU size notation",
	)

	flagSet.Uint64Var(
		&f.spec.SMP,
		"smp",
		f.spec.SMP,
		"number of CPU cores",
	)

	flagSet.StringVar(
		&f.spec.VGA,
		"vga",
		f.spec.VGA,
		"QEMU VGA card type (e.g. std, virtio, qxl) "+
			"(default depends on guest arch)",
	)

	flagSet.TextVar(
		&f.spec.Network,
		"network",
		&f.spec.Network,
		"guest network: user, tap:<ifname>",
	)

	flagSet.StringVar(
		&f.rawLogPath,
		"raw-log",
		f.rawLogPath,
		"capture the raw serial console byte stream to this file",
	)

	flagSet.BoolVar(
		&f.debug,
		"debug",
		f.debug,
		"enable debug output",
	)

	flagSet.BoolVar(
		&f.version,
		"version",
		f.version,
		"show version and exit",
	)

	f.flagSet = flagSet
}

// fail fails like flag does. It prints the error first and then usage.
func (f *flags) fail(msg string, err error) error {
	err = &ParseArgsError{msg: msg, err: err}
	fmt.Fprintln(f.flagSet.Output(), err.Error())

	f.flagSet.Usage()

	return err
}

func (f *flags) printVersionInformation() error {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return ErrReadBuildInfo
	}

	fmt.Fprintf(f.flagSet.Output(), "Version: %s\n", buildInfo.Main.Version)

	return ErrHelp
}

func (f *flags) printArchitectures() {
	output := f.flagSet.Output()

	fmt.Fprintln(output, "Available QEMU architectures:")

	for _, arch := range sys.SupportedArchitectures {
		fmt.Fprintf(output, "  - %s\n", arch)
	}
}

func (f *flags) printSerialProfiles() {
	output := f.flagSet.Output()
	defaultProfile := qemu.DefaultSerialProfile(f.spec.Arch)

	fmt.Fprintf(output,
		"Available serial device profiles for architecture '%s':\n",
		&f.spec.Arch)

	for _, profile := range qemu.SerialProfiles {
		marker := ""
		if profile == defaultProfile {
			marker = "(default)"
		}

		fmt.Fprintf(output, "  - %-10s %-10s %s\n",
			string(profile), marker, profile.Description())
	}
}

func (f *flags) usage() {
	fmt.Fprint(f.flagSet.Output(), usageMessage)
	fmt.Fprintln(f.flagSet.Output(), "\nFlags:")
	f.flagSet.PrintDefaults()
}
