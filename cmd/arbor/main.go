package main

import (
	"os"

	"github.com/arbor-cms/arbor/cmd/arbor/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
