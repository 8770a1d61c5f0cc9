package main

import (
	"os"

	"github.com/hospoda/shiftboard/internal/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
