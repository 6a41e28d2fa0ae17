package main

import (
	"os"

	"github.com/KimNorgaard/go-tonl/cmd/tonl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
