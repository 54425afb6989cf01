//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Lint runs static analysis over all packages.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Test runs the test suite. Lint must pass first.
func Test() error {
	mg.Deps(Lint)

	return sh.RunV("go", "test", "-failfast", "./...")
}
