// SPDX-FileCopyrightText: 2026 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package qemu

import (
	"fmt"
	"slices"
	"strings"
)

// Argument is a single QEMU command line flag, optionally carrying a value.
//
// Most flags may appear only once on a command line, while some, like
// -device, repeat with different values. An Argument records which kind it
// is so collisions can be caught before the command runs.
type Argument struct {
	name          string
	value         string
	nonUniqueName bool
}

// String implements [fmt.Stringer].
func (a Argument) String() string {
	s := "-" + a.name
	if a.value != "" {
		s += " " + a.value
	}

	return s
}

// Name returns the flag name without the leading dash.
func (a Argument) Name() string {
	return a.name
}

// Value returns the flag value. Empty for flags without one.
func (a Argument) Value() string {
	return a.value
}

// Equal reports whether the two arguments collide on a command line.
// Unique arguments collide on the name alone, repeatable ones only when
// name and value both match.
func (a Argument) Equal(other Argument) bool {
	if a.name != other.name {
		return false
	}

	if a.nonUniqueName {
		return a.value == other.value
	}

	return true
}

// UniqueArg builds an [Argument] that may appear at most once in a list.
// Multiple values are joined with commas as QEMU expects for option lists.
func UniqueArg(name string, value ...string) Argument {
	return Argument{
		name:  name,
		value: strings.Join(value, ","),
	}
}

// RepeatableArg builds an [Argument] that may appear several times in a
// list as long as the values differ.
func RepeatableArg(name string, value ...string) Argument {
	return Argument{
		name:          name,
		value:         strings.Join(value, ","),
		nonUniqueName: true,
	}
}

// BuildArgumentStrings flattens the arguments into the argv slice passed
// to the QEMU process. A violated uniqueness constraint is reported as
// [ErrArgumentCollision] naming both colliding arguments.
func BuildArgumentStrings(args []Argument) ([]string, error) {
	argStrings := make([]string, 0, len(args))

	for idx, arg := range args {
		if i := slices.IndexFunc(args[:idx], arg.Equal); i != -1 {
			return nil, fmt.Errorf(
				"%w: %s, %s",
				ErrArgumentCollision,
				arg.String(),
				args[i].String(),
			)
		}

		argStrings = append(argStrings, "-"+arg.name)

		if arg.value != "" {
			argStrings = append(argStrings, arg.value)
		}
	}

	return argStrings, nil
}
