// Package main is the entry point for the ss12000 CLI binary.
package main

import (
	"os"

	"ss12000-mock/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
