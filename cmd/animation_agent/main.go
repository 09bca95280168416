// Package main provides the entry point for the animation agent HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "animation_agent",
	Short: "2D Animation Generation HTTP API Server",
	Long:  "Animation agent turns natural-language prompts into rendered Manim animations through an asynchronous REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
