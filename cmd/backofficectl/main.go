package main

import (
	"os"

	"github.com/aussiebroadwan/escritorio/cmd/backofficectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
