package main

import (
	"os"

	"github.com/jwpark/cyclewatch/cmd/cyclewatch/commands"
)

// main is the entry point for the cyclewatch CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/cyclewatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
