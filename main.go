package main

import (
	"os"

	"github.com/hoangphuccoder123/tutorbond/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
