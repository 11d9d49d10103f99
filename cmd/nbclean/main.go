// Package main is the entry point for the nbclean CLI.
package main

import (
	"os"

	"github.com/jmylchreest/nbclean/cmd/nbclean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
