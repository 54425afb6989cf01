// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"os"
	"os/exec"
	"runtime"
	"slices"
)

// Arch is a QEMU guest system architecture.
type Arch string

// Architectures with full support, including firmware discovery and direct
// kernel boot.
const (
	AMD64   Arch = "x86_64"
	I386    Arch = "i386"
	ARM64   Arch = "aarch64"
	RISCV64 Arch = "riscv64"
)

// SupportedArchitectures lists all guest architectures a qemu-system binary
// exists for.
var SupportedArchitectures = []Arch{
	"aarch64", "alpha", "arm", "avr", "hppa", "i386", "loongarch64", "m68k",
	"microblaze", "microblazeel", "mips", "mips64", "mips64el", "mipsel",
	"or1k", "ppc", "ppc64", "riscv32", "riscv64", "rx", "s390x", "sh4",
	"sh4eb", "sparc", "sparc64", "tricore", "x86_64", "xtensa", "xtensaeb",
}

func (a *Arch) isKnown() bool {
	return slices.Contains(SupportedArchitectures, *a)
}

// String implements [fmt.Stringer].
func (a *Arch) String() string {
	return string(*a)
}

// MarshalText implements [encoding.TextMarshaler].
func (a Arch) MarshalText() ([]byte, error) {
	return []byte(a), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (a *Arch) UnmarshalText(text []byte) error {
	arch := Arch(text)

	if !arch.isKnown() {
		return ErrArchNotSupported
	}

	*a = arch

	return nil
}

// IsNative returns true if the guest architecture matches the host, so
// hardware virtualization can be used.
func (a *Arch) IsNative() bool {
	switch runtime.GOARCH {
	case "amd64":
		return *a == AMD64
	case "arm64":
		return *a == ARM64
	case "riscv64":
		return *a == RISCV64
	default:
		return false
	}
}

// KVMAvailable checks if KVM support is available for the given architecture.
func (a *Arch) KVMAvailable() bool {
	if !a.IsNative() {
		return false
	}

	f, err := os.OpenFile("/dev/kvm", os.O_WRONLY, 0)
	_ = f.Close()

	return err == nil
}

// QemuExecutable resolves the qemu-system binary for the architecture.
//
// Besides the canonical "qemu-system-<arch>" name some distributions ship
// x86 binaries under a shortened name, so those are probed as well.
func (a *Arch) QemuExecutable() (string, error) {
	names := []string{"qemu-system-" + a.String()}

	if *a == AMD64 {
		names = append(names, "qemu-system-x86")
	}

	for _, name := range names {
		path, err := exec.LookPath(name)
		if err == nil {
			return path, nil
		}
	}

	return "", &ExecutableError{Arch: *a, Tried: names}
}
