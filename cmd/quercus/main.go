package main

import (
	"os"

	"github.com/quercus-js/quercus/cmd/quercus/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
