package main

import (
	"os"

	"github.com/zezinho10632/DouglasApi/cmd/quality/commands"
)

// main is the entry point for the quality CLI
// ⭐ Unified CLI entry point: go run ./cmd/quality [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
