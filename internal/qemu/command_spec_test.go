// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibor/runqemu/internal/qemu"
	"github.com/aibor/runqemu/internal/sys"
)

func buildArgs(t *testing.T, spec qemu.CommandSpec) string {
	t.Helper()

	args, err := qemu.BuildArgumentStrings(spec.Arguments())
	require.NoError(t, err)

	return strings.Join(args, " ")
}

func baseSpec() qemu.CommandSpec {
	return qemu.CommandSpec{
		Executable: "qemu-system-x86_64",
		Arch:       sys.AMD64,
		Machine:    "q35",
		Accel:      sys.AccelTCG,
		CPU:        "max",
		Memory:     "4G",
		SMP:        2,
		DiskImage:  "/images/disk.qcow2",
		Network:    qemu.Network{Mode: qemu.NetworkModeUser},
	}
}

func TestCommandSpecArguments(t *testing.T) {
	tests := []struct {
		name        string
		spec        func() qemu.CommandSpec
		contains    []string
		notContains []string
	}{
		{
			name: "machine basics",
			spec: baseSpec,
			contains: []string{
				"-M q35",
				"-accel tcg",
				"-cpu max",
				"-m 4G",
				"-smp 2",
				"-hda /images/disk.qcow2",
				"-device qemu-xhci",
			},
		},
		{
			name: "gui mode devices",
			spec: baseSpec,
			contains: []string{
				"-vga std",
				"-display default,show-cursor=on",
				"-device usb-kbd",
				"-device usb-tablet",
			},
			notContains: []string{"-nographic", "-monitor"},
		},
		{
			name: "gui mode arm64 uses virtio gpu",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.Arch = sys.ARM64
				spec.Machine = "virt"

				return spec
			},
			contains:    []string{"-device virtio-gpu-pci"},
			notContains: []string{"-vga"},
		},
		{
			name: "text console",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.Console = qemu.ConsoleText
				spec.MonitorSocket = "/tmp/mon.sock"

				return spec
			},
			contains: []string{
				"-monitor unix:/tmp/mon.sock,server,nowait",
				"-chardev pty,id=char0",
				"-device virtio-serial-pci",
				"-device virtconsole,chardev=char0",
				"-nographic",
			},
			notContains: []string{"-display", "-device usb-kbd"},
		},
		{
			name: "user networking",
			spec: baseSpec,
			contains: []string{
				"-netdev user,id=net0," +
					"hostfwd=tcp::2222-:22,hostfwd=tcp::6001-:6001",
				"-device virtio-net-pci,netdev=net0",
			},
		},
		{
			name: "boots from disk without cdrom",
			spec: baseSpec,
			contains: []string{
				"-boot order=c",
			},
		},
		{
			name: "boots from cdrom when attached",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.CDROM = "/images/os.iso"

				return spec
			},
			contains: []string{
				"-cdrom /images/os.iso",
				"-boot order=d",
			},
		},
		{
			name: "explicit boot from disk wins over cdrom",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.CDROM = "/images/os.iso"
				spec.BootFrom = qemu.BootDeviceDisk

				return spec
			},
			contains: []string{"-boot order=c"},
		},
		{
			name: "uefi adds pflash drives",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.Firmware = qemu.FirmwareUEFI
				spec.UEFICode = "/fw/code.fd"
				spec.UEFIVars = "/fw/vars.fd"

				return spec
			},
			contains: []string{
				"-drive if=pflash,format=raw,readonly=on,file=/fw/code.fd",
				"-drive if=pflash,format=raw,file=/fw/vars.fd",
			},
		},
		{
			name: "direct kernel boot",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.CDROM = "/images/os.iso"
				spec.Firmware = qemu.FirmwareUEFI
				spec.UEFICode = "/fw/code.fd"
				spec.UEFIVars = "/fw/vars.fd"
				spec.Kernel = "/tmp/vmlinuz"
				spec.Initrd = "/tmp/initrd.img"
				spec.Append = []string{"console=hvc0", "panic=1"}

				return spec
			},
			contains: []string{
				"-kernel /tmp/vmlinuz",
				"-initrd /tmp/initrd.img",
				"-append console=hvc0 panic=1",
				// The CD-ROM stays attached as installation media but must
				// not be booted again.
				"-boot order=c",
			},
			notContains: []string{"-drive if=pflash"},
		},
		{
			name: "share dir",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.ShareDir = qemu.ShareDir{Path: "/srv/share", Tag: "host"}

				return spec
			},
			contains: []string{
				"-virtfs local,path=/srv/share,mount_tag=host," +
					"security_model=mapped-xattr,id=host",
			},
		},
		{
			name: "boot script drive",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.BootScriptDir = "/tmp/bootscript"

				return spec
			},
			contains: []string{
				"-drive if=none,id=boot-script,format=raw," +
					"file=fat:rw:/tmp/bootscript",
				"-device usb-storage,drive=boot-script",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := buildArgs(t, tt.spec())

			for _, expected := range tt.contains {
				assert.Contains(t, actual, expected)
			}

			for _, unexpected := range tt.notContains {
				assert.NotContains(t, actual, unexpected)
			}
		})
	}
}

func TestCommandSpecValidate(t *testing.T) {
	tests := []struct {
		name      string
		spec      func() qemu.CommandSpec
		expectErr bool
	}{
		{
			name: "valid",
			spec: baseSpec,
		},
		{
			name: "missing disk image",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.DiskImage = ""

				return spec
			},
			expectErr: true,
		},
		{
			name: "text console without monitor socket",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.Console = qemu.ConsoleText

				return spec
			},
			expectErr: true,
		},
		{
			name: "uefi without firmware files",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.Firmware = qemu.FirmwareUEFI

				return spec
			},
			expectErr: true,
		},
		{
			name: "direct kernel boot without initrd",
			spec: func() qemu.CommandSpec {
				spec := baseSpec()
				spec.Kernel = "/tmp/vmlinuz"

				return spec
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.spec()

			err := spec.Validate()
			if tt.expectErr {
				var argErr *qemu.ArgumentError
				require.ErrorAs(t, err, &argErr)

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestCommandString(t *testing.T) {
	cmd, err := qemu.NewCommand(baseSpec())
	require.NoError(t, err)

	actual := cmd.String()

	assert.True(t, strings.HasPrefix(actual, "qemu-system-x86_64"))
	assert.Contains(t, actual, " \\\n    -M q35")
	assert.Contains(t, actual, " \\\n    -hda /images/disk.qcow2")
}
