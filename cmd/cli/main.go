package main

import (
	"os"

	"github.com/lessond-dev/lessond/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
