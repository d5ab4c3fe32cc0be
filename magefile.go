//go:build mage
// +build mage

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "dirnav"
	mainPkg = "./cmd/dirnav"
	logFile = "dirnav.log"
)

// Default target to run when none is specified
var Default = Build

// Build builds the binary
func Build() error {
	fmt.Println("Building...")
	return sh.Run("go", "build", "-o", binary, mainPkg)
}

// Install installs the binary
func Install() error {
	fmt.Println("Installing...")
	return sh.Run("go", "install", mainPkg)
}

// Test runs the unit tests with the race detector and a coverage profile
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-race", "-shuffle=on", "-coverprofile=coverage.out", "./...")
}

// Integration runs the tests that list real directories
func Integration() error {
	fmt.Println("Running integration tests...")
	return sh.Run("go", "test", "-race", "-tags=integration", "./tests/integration/...")
}

// Lint lints the codebase
func Lint() error {
	fmt.Println("Linting...")
	return run(context.Background(), "golangci-lint", "run", "./...")
}

// Check runs the linter, the unit tests and the integration tests, stopping at the first failure
func Check() {
	mg.SerialDeps(Lint, Test, Integration)
}

// List prints a plain listing of the current directory, logging at debug level to dirnav.log
func List() error {
	mg.Deps(Build)
	return run(context.Background(), "./"+binary, "--plain", "--log-file="+logFile, "--log-level=debug", ".")
}

// Browse starts the interactive browser with metrics served on :9090
func Browse() error {
	mg.Deps(Build)
	return run(context.Background(), "./"+binary, "--metrics-addr=:9090", "--log-file="+logFile, ".")
}

// Clean removes build artifacts
func Clean() {
	fmt.Println("Cleaning...")

	for _, name := range []string{binary, logFile, "coverage.out"} {
		_ = os.Remove(name)
	}
}

// run executes a command attached to the terminal
func run(c context.Context, command string, arg ...string) error {
	cmd := exec.CommandContext(c, command, arg...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
