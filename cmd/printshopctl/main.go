package main

import (
	"os"
	"printshop/cmd/printshopctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
