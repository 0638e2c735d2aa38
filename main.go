// diabetes-risk-predictor serves a pre-trained diabetes risk classifier over
// HTTP and scores CSV files from the command line.
//
// Usage:
//
//	diabetes-risk-predictor serve [--config=<path>]
//	diabetes-risk-predictor score --in=<csv> [--out=<csv>] [--config=<path>]
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "diabetes-risk-predictor",
	Short: "Diabetes risk prediction service",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "Path to a YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
