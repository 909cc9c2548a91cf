package main

import (
	"fmt"
	"os"
)

var (
	// Version is overridden by ldflags at build time
	Version = "0.1.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
