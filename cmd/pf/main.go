package main

import (
	"os"

	"github.com/tormodhaugland/pf/cmd/pf/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
