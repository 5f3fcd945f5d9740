// Package main provides the squint CLI.
package main

import (
	"os"

	"github.com/squint-lang/squint/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
