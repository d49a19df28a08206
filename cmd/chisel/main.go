package main

import (
	"os"

	"github.com/reoring/chisel/internal/cli"
)

func main() {
	if err := cli.New().Execute(); err != nil {
		os.Exit(1)
	}
}
