package main

import (
	"fmt"
	"os"

	"go-linkedin-harvester/internal/cli"
)

func main() {
	if err := cli.Serve(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
