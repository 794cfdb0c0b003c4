package main

import (
	"fmt"
	"os"

	"github.com/osmium-toolchains/osmium-cli/internal/cli"
	"github.com/osmium-toolchains/osmium-cli/internal/cli/render"
	"github.com/osmium-toolchains/osmium-cli/internal/config"
)

// Set with -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)

	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render.FormatError(err.Error()))
		os.Exit(1)
	}
}
