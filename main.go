package main

import (
	"os"

	"github.com/spigell/intern-scout/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
