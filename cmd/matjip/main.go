// ABOUTME: Entry point for matjip CLI
// ABOUTME: Initializes and executes root command

package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
