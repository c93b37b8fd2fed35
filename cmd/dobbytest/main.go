// Package main is the entry point for the dobbytest CLI.
package main

import (
	"os"

	"github.com/rdkcentral/dobbytest/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
