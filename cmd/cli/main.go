// Package main is the entry point for the tariff-duty CLI.
package main

import (
	"os"

	"tariff-duty/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
