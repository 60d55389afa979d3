package main

import (
	"os"

	"github.com/spigell/airecruiter/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
