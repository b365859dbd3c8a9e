package main

import (
	"fmt"
	"os"

	"github.com/0xnairb/mcp-aws-yolo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
