// Package main is the entry point for the sdm-tools CLI binary.
package main

import (
	"os"

	"github.com/lsst/sdm-tools/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
