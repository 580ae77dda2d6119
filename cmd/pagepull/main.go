// Package main is the entry point for the pagepull CLI.
package main

import (
	"os"

	"github.com/pagepull/pagepull/cmd/pagepull/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
