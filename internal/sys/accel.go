// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package sys

import (
	"runtime"
)

// Accelerator is a QEMU virtualization accelerator backend.
type Accelerator string

const (
	// AccelKVM is the Linux kernel virtual machine.
	AccelKVM Accelerator = "kvm"
	// AccelHVF is the macOS hypervisor framework.
	AccelHVF Accelerator = "hvf"
	// AccelTCG is QEMU's software emulation.
	AccelTCG Accelerator = "tcg"
)

// DetectAccelerator picks the fastest accelerator usable for the given guest
// architecture on this host. Emulation is the fallback that always works.
func DetectAccelerator(arch Arch) Accelerator {
	if !arch.IsNative() {
		return AccelTCG
	}

	switch runtime.GOOS {
	case "linux":
		if arch.KVMAvailable() {
			return AccelKVM
		}
	case "darwin":
		return AccelHVF
	}

	return AccelTCG
}

// ResolveCPUModel downgrades the "host" CPU model to "max" whenever host CPU
// passthrough is not possible, i.e. for software emulation or a non-native
// guest.
func ResolveCPUModel(model string, arch Arch, accel Accelerator) string {
	if model != "host" {
		return model
	}

	if accel == AccelTCG || !arch.IsNative() {
		return "max"
	}

	return model
}
