// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"time"

	"github.com/aibor/runqemu/internal/console"
	"github.com/aibor/runqemu/internal/firmware"
	"github.com/aibor/runqemu/internal/iso"
	"github.com/aibor/runqemu/internal/qemu"
	"github.com/aibor/runqemu/internal/sys"
)

const localConfigFile = ".runqemu-args"

// terminateGracePeriod is how long QEMU gets to exit on its own after the
// console session ended before it is killed.
const terminateGracePeriod = 2 * time.Second

// interruptExitCode is returned when the run was ended by signal.
const interruptExitCode = 130

// directKernelBootArchitectures are the guest architectures boot files can
// be extracted and booted directly for.
var directKernelBootArchitectures = []sys.Arch{
	sys.AMD64, sys.ARM64, sys.RISCV64,
}

// IO provides input and output details for the command.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func parseFlags(args []string, cfg IO) (*flags, error) {
	args, err := MergedArgs(args, os.DirFS("."), localConfigFile)
	if err != nil {
		return nil, err
	}

	flags := newFlags(cfg.Stderr)

	err = flags.ParseArgs(args)
	if err != nil {
		return nil, fmt.Errorf("parse args: %w", err)
	}

	return flags, nil
}

// validate checks the given image paths exist before QEMU is started.
func (f *flags) validate() error {
	if _, err := os.Stat(f.spec.DiskImage); err != nil {
		return fmt.Errorf("disk image: %w", err)
	}

	if f.spec.CDROM != "" {
		if _, err := os.Stat(f.spec.CDROM); err != nil {
			return fmt.Errorf("cdrom image: %w", err)
		}
	}

	return nil
}

// resolveMachine swaps the generic default machine type for the one x86
// actually has.
func resolveMachine(machine string, arch sys.Arch) string {
	if arch == sys.AMD64 && machine == machineDefault {
		return "q35"
	}

	return machine
}

// resolveFirmwareMode settles the auto firmware mode.
//
// UEFI is the general default. x86 text mode gets legacy BIOS since its
// bootloaders talk to the serial port, and x86 GUI mode on macOS gets
// legacy BIOS to avoid UEFI display errors.
func resolveFirmwareMode(
	mode qemu.FirmwareMode,
	arch sys.Arch,
	consoleMode qemu.ConsoleMode,
	goos string,
) qemu.FirmwareMode {
	if mode != qemu.FirmwareAuto {
		return mode
	}

	isX86 := arch == sys.AMD64 || arch == sys.I386

	if isX86 && consoleMode == qemu.ConsoleText {
		return qemu.FirmwareBIOS
	}

	if isX86 && consoleMode == qemu.ConsoleGUI && goos == "darwin" {
		return qemu.FirmwareBIOS
	}

	return qemu.FirmwareUEFI
}

// directKernelBootPossible reports whether boot files should be extracted
// from the ISO and booted directly. Only done for a text console, where
// firmware bootloaders frequently fail to talk to the serial port.
func directKernelBootPossible(spec *qemu.CommandSpec, goos string) bool {
	return goos == "linux" &&
		spec.Console == qemu.ConsoleText &&
		spec.CDROM != "" &&
		slices.Contains(directKernelBootArchitectures, spec.Arch)
}

// bootsFromCDROM reports whether the guest will boot from the attached ISO.
func bootsFromCDROM(spec *qemu.CommandSpec) bool {
	return spec.BootFrom == qemu.BootDeviceCDROM ||
		(spec.BootFrom == qemu.BootDeviceAuto && spec.CDROM != "")
}

func newInspector() *iso.Inspector {
	// A missing tool is not fatal here. The inspector reports which tools
	// were unavailable if none of them finds anything.
	sevenZip, _ := exec.LookPath("7z")

	return iso.NewInspector(sevenZip)
}

// setupDirectKernelBoot locates kernel and initrd in the attached ISO,
// extracts them into a temporary directory and adds them to the spec.
//
// The returned cleanup function removes the extracted files and must be
// called once QEMU has exited.
func setupDirectKernelBoot(
	ctx context.Context,
	spec *qemu.CommandSpec,
) (func(), error) {
	inspector := newInspector()

	files, err := inspector.FindBootFiles(ctx, spec.CDROM)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "runqemu-boot")
	if err != nil {
		return nil, fmt.Errorf("create boot file dir: %w", err)
	}

	cleanup := func() { _ = os.RemoveAll(dir) }

	extracted, err := inspector.ExtractBootFiles(ctx, spec.CDROM, files, dir)
	if err != nil {
		cleanup()
		return nil, err
	}

	if err := iso.VerifyInitrd(extracted.Initrd); err != nil {
		slog.Warn("Extracted initrd looks unusual, booting anyway",
			slog.String("initrd", extracted.Initrd),
			slog.Any("error", err))
	}

	spec.Kernel = extracted.Kernel
	spec.Initrd = extracted.Initrd
	spec.Append = spec.SerialProfileOrDefault().ConsoleKernelArgs()

	return cleanup, nil
}

// setupUEFI discovers the firmware code file for the guest architecture and
// prepares the matching variable store next to the disk image.
func setupUEFI(ctx context.Context, spec *qemu.CommandSpec) error {
	codePath, err := firmware.FindCode(ctx, spec.Arch)
	if err != nil {
		return fmt.Errorf("%w (or select '-firmware bios')", err)
	}

	varsPath := firmware.VarsPath(spec.DiskImage, spec.Arch)

	err = firmware.PrepareVars(varsPath, codePath)
	if err != nil {
		return fmt.Errorf("prepare UEFI vars: %w", err)
	}

	spec.UEFICode = codePath
	spec.UEFIVars = varsPath

	return nil
}

// setupUEFIBootScript makes firmware without persistent boot entries boot
// the attached ISO unattended by injecting a startup.nsh on a FAT drive.
//
// A bootloader that can not be located is fatal, except on macOS where the
// inspection tools are rarely installed and the firmware usually manages to
// boot the ISO on its own.
func setupUEFIBootScript(
	ctx context.Context,
	spec *qemu.CommandSpec,
	goos string,
) (func(), error) {
	inspector := newInspector()

	bootloader, err := inspector.FindUEFIBootloader(ctx, spec.CDROM, spec.Arch)
	if err != nil {
		if goos != "darwin" {
			return nil, err
		}

		slog.Warn("Proceeding without boot automation script",
			slog.Any("error", err))

		return nil, nil
	}

	dir, err := os.MkdirTemp("", "runqemu-esp")
	if err != nil {
		return nil, fmt.Errorf("create boot script dir: %w", err)
	}

	cleanup := func() { _ = os.RemoveAll(dir) }

	err = firmware.WriteStartupScript(dir, bootloader)
	if err != nil {
		cleanup()
		return nil, err
	}

	spec.BootScriptDir = dir

	return cleanup, nil
}

// resolveSpec fills in everything auto-detected: the QEMU binary,
// accelerator, CPU model, machine type, firmware files, direct kernel boot
// files and the monitor socket.
func resolveSpec(
	ctx context.Context,
	spec *qemu.CommandSpec,
) (func(), error) {
	executable, err := spec.Arch.QemuExecutable()
	if err != nil {
		return nil, err
	}

	spec.Executable = executable

	if spec.Accel == "" {
		spec.Accel = sys.DetectAccelerator(spec.Arch)
		slog.Debug("Auto-selected accelerator",
			slog.String("accel", string(spec.Accel)))
	}

	spec.CPU = sys.ResolveCPUModel(spec.CPU, spec.Arch, spec.Accel)
	spec.Machine = resolveMachine(spec.Machine, spec.Arch)

	cleanup := func() {}

	if directKernelBootPossible(spec, runtime.GOOS) {
		slog.Info("Attempting direct kernel boot for reliable serial output")

		bootCleanup, err := setupDirectKernelBoot(ctx, spec)
		if err != nil {
			slog.Warn("Direct kernel boot not available, standard boot",
				slog.Any("error", err))
		} else {
			cleanup = bootCleanup
		}
	}

	if !spec.DirectKernelBoot() {
		spec.Firmware = resolveFirmwareMode(
			spec.Firmware, spec.Arch, spec.Console, runtime.GOOS)

		if spec.Firmware == qemu.FirmwareUEFI {
			if err := setupUEFI(ctx, spec); err != nil {
				cleanup()
				return nil, err
			}
		}
	}

	if spec.Console == qemu.ConsoleText {
		spec.MonitorSocket = qemu.MonitorSocketPath()
	}

	if spec.Firmware == qemu.FirmwareUEFI &&
		!spec.DirectKernelBoot() && bootsFromCDROM(spec) {
		scriptCleanup, err := setupUEFIBootScript(ctx, spec, runtime.GOOS)
		if err != nil {
			cleanup()
			return nil, err
		}

		if scriptCleanup != nil {
			prev := cleanup
			cleanup = func() {
				scriptCleanup()
				prev()
			}
		}
	}

	return cleanup, nil
}

// runTextConsole starts QEMU detached from stdio and attaches the
// interactive console session to the guest serial PTY.
func runTextConsole(
	ctx context.Context,
	flags *flags,
	cmd *qemu.Command,
	cfg IO,
) error {
	if err := sys.CheckTerminal(); err != nil {
		return err
	}

	guest, err := cmd.Start(ctx, cfg.Stderr)
	if err != nil {
		return fmt.Errorf("start qemu: %w", err)
	}

	monitor, err := qemu.ConnectMonitor(flags.spec.MonitorSocket)
	if err != nil {
		_ = guest.Terminate(terminateGracePeriod)
		return fmt.Errorf("connect monitor: %w", err)
	}

	var rawLog io.WriteCloser

	if flags.rawLogPath != "" {
		rawLog, err = os.Create(flags.rawLogPath)
		if err != nil {
			_ = monitor.Close()
			_ = guest.Terminate(terminateGracePeriod)

			return fmt.Errorf("create raw log: %w", err)
		}
		defer rawLog.Close()
	}

	session, err := console.NewSession(console.Config{
		PTYPath: guest.PTYPath,
		Monitor: monitor,
		Output:  guest.Output,
		RawLog:  rawLog,
	})
	if err != nil {
		_ = monitor.Close()
		_ = guest.Terminate(terminateGracePeriod)

		return fmt.Errorf("create console session: %w", err)
	}

	sessionErr := session.Run(ctx)

	// The session ends either because the user quit, which asked QEMU to
	// exit, or because the guest shut down. Give it a moment either way.
	waitErr := guest.Terminate(terminateGracePeriod)

	if sessionErr != nil {
		return fmt.Errorf("console session: %w", sessionErr)
	}

	return waitErr
}

func run(ctx context.Context, flags *flags, cfg IO) error {
	err := flags.validate()
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	cleanup, err := resolveSpec(ctx, &flags.spec)
	if err != nil {
		return err
	}
	defer cleanup()

	cmd, err := qemu.NewCommand(flags.spec)
	if err != nil {
		return fmt.Errorf("new qemu command: %w", err)
	}

	slog.Debug("QEMU command", slog.String("command", cmd.String()))

	if flags.spec.Console == qemu.ConsoleText {
		return runTextConsole(ctx, flags, cmd, cfg)
	}

	err = cmd.Run(ctx)
	if err != nil {
		return fmt.Errorf("qemu: %w", err)
	}

	return nil
}

func handleParseArgsError(err error) int {
	// [ErrHelp] is returned when help is requested. So exit without error
	// in this case.
	if errors.Is(err, ErrHelp) {
		return 0
	}

	// ParseArgs already prints errors, so we just exit without an error.
	if !errors.Is(err, &ParseArgsError{}) {
		slog.Error(err.Error())
	}

	return -1
}

func handleRunError(err error) int {
	exitCode := -1

	var cmdErr *qemu.CommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode != 0 {
		exitCode = cmdErr.ExitCode
	}

	// A signal driven shutdown is not an application error. Report it the
	// way shells do.
	if errors.Is(err, context.Canceled) {
		exitCode = interruptExitCode
	}

	slog.Error(err.Error())

	return exitCode
}

// Run is the main entry point for the CLI command.
func Run(ctx context.Context, args []string, cfg IO) int {
	flags, err := parseFlags(args, cfg)
	if err != nil {
		return handleParseArgsError(err)
	}

	setupLogging(cfg.Stderr, flags.debug)

	err = run(ctx, flags, cfg)
	if err != nil {
		return handleRunError(err)
	}

	return 0
}
