package main

import (
	"os"

	"github.com/hypervine/rpcbridge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
