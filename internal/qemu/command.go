// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ptyRedirectRE matches QEMU's announcement of the host PTY a "pty" backend
// chardev got connected to.
var ptyRedirectRE = regexp.MustCompile(
	`char device redirected to (/dev/\S+)`,
)

// ptyWaitTimeout is how long to wait for QEMU to announce the PTY the
// serial console chardev got redirected to.
const ptyWaitTimeout = 10 * time.Second

// outputBacklogSize bounds the startup output retained for the monitor view.
const outputBacklogSize = 512

// MonitorSocketPath returns the per-process path for the QEMU monitor unix
// socket.
func MonitorSocketPath() string {
	return filepath.Join(
		os.TempDir(),
		fmt.Sprintf("qemu-monitor-%d.sock", os.Getpid()),
	)
}

// Command is a single QEMU command that can be run.
type Command struct {
	spec CommandSpec
	args []string
}

// NewCommand validates the given spec and compiles the QEMU command for it.
func NewCommand(spec CommandSpec) (*Command, error) {
	err := spec.Validate()
	if err != nil {
		return nil, err
	}

	args, err := BuildArgumentStrings(spec.Arguments())
	if err != nil {
		return nil, err
	}

	return &Command{spec: spec, args: args}, nil
}

// String returns the command in a multi line form suitable for printing.
func (c *Command) String() string {
	var sb strings.Builder

	sb.WriteString(c.spec.Executable)

	for _, arg := range c.args {
		if strings.HasPrefix(arg, "-") {
			sb.WriteString(" \\\n    ")
		} else {
			sb.WriteString(" ")
		}

		sb.WriteString(arg)
	}

	return sb.String()
}

// Args returns the compiled argument strings.
func (c *Command) Args() []string {
	return c.args
}

// Run executes QEMU attached to the invoking terminal and waits for it to
// exit. Used for GUI mode, where QEMU owns the display window and stdio is
// of no further interest.
func (c *Command) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.spec.Executable, c.args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		return wrapRunError(err)
	}

	return nil
}

// Guest is a started QEMU process serving a text console on a host PTY.
type Guest struct {
	cmd *exec.Cmd

	// PTYPath is the host PTY device the guest serial console is connected
	// to.
	PTYPath string

	// Output delivers QEMU process output lines. The channel holds the
	// startup backlog and stays open until the process exits.
	Output <-chan string
}

// Start executes QEMU for a text console session.
//
// QEMU's combined output is scanned for the chardev PTY announcement.
// Until the PTY is known, output lines are echoed to startupOut so early
// boot errors stay visible. If QEMU does not announce a PTY within the deadline
// the process is killed.
func (c *Command) Start(
	ctx context.Context,
	startupOut io.Writer,
) (*Guest, error) {
	cmd := exec.CommandContext(ctx, c.spec.Executable, c.args...)

	outRead, outWrite, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("create output pipe: %w", err)
	}

	cmd.Stdout = outWrite
	cmd.Stderr = outWrite

	if err := cmd.Start(); err != nil {
		_ = outRead.Close()
		_ = outWrite.Close()

		return nil, wrapRunError(err)
	}

	// The write end lives on in the child only. Closing the parent's copy
	// makes the read side see EOF when QEMU exits.
	_ = outWrite.Close()

	ptyCh := make(chan string, 1)
	output := make(chan string, outputBacklogSize)

	go scanOutput(outRead, startupOut, ptyCh, output)

	select {
	case ptyPath := <-ptyCh:
		return &Guest{cmd: cmd, PTYPath: ptyPath, Output: output}, nil
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		return nil, ctx.Err() //nolint:wrapcheck
	case <-time.After(ptyWaitTimeout):
		_ = cmd.Process.Kill()
		_ = cmd.Wait()

		return nil, ErrPTYNotFound
	}
}

// scanOutput reads QEMU output lines, looking for the PTY announcement.
//
// Lines are echoed to startupOut until the PTY is found and always kept in
// the output backlog for the monitor view. The backlog drops lines when
// full, the scanner must never stall the guest.
func scanOutput(
	src io.ReadCloser,
	startupOut io.Writer,
	ptyCh chan<- string,
	output chan<- string,
) {
	defer close(output)
	defer src.Close()

	ptyFound := false
	scanner := bufio.NewScanner(src)

	for scanner.Scan() {
		line := scanner.Text()

		select {
		case output <- line:
		default:
		}

		if ptyFound {
			continue
		}

		fmt.Fprintln(startupOut, line)

		if match := ptyRedirectRE.FindStringSubmatch(line); match != nil {
			ptyFound = true
			ptyCh <- match[1]
		}
	}
}

// Wait waits for the QEMU process to exit and returns its result.
func (g *Guest) Wait() error {
	err := g.cmd.Wait()
	if err != nil {
		return wrapRunError(err)
	}

	return nil
}

// Terminate asks QEMU to exit and kills it after a grace period. It returns
// the result of the final wait.
func (g *Guest) Terminate(gracePeriod time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- g.cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return wrapRunError(err)
		}

		return nil
	case <-time.After(gracePeriod):
		_ = g.cmd.Process.Kill()

		if err := <-done; err != nil {
			return wrapRunError(err)
		}

		return nil
	}
}

// wrapRunError converts process errors into [CommandError] carrying the
// exit code QEMU terminated with.
func wrapRunError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Err: err, ExitCode: exitErr.ExitCode()}
	}

	return &CommandError{Err: err, ExitCode: -1}
}
