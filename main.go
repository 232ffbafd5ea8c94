// Package main is the entry point for the propdesk API.
package main

import (
	"fmt"
	"os"

	"greendrake/propdesk/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
