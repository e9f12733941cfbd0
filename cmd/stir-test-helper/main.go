// Command stir-test-helper is a child process with canned behaviours for
// exercising command runners. See package testhelper for the behaviours.
package main

import (
	"os"

	"stir/pkg/testhelper"
)

func main() {
	os.Exit(testhelper.Main(os.Args[1:], os.Stdout, os.Stderr))
}
