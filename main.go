// Package main is the entry point for the sdrctl application.
package main

import (
	"fmt"
	"os"

	"github.com/opsdesk/sdrctl/cmd"
	"github.com/opsdesk/sdrctl/internal/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
