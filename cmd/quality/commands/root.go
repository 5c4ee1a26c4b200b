package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quality",
	Short: "Douglas - hospital quality indicators",
	Long: `Douglas Quality CLI

Monthly quality indicators per hospital sector: periods, indicator
assessments, notifications, adverse events and consolidated panels.

Usage:
  go run ./cmd/quality [command]

Examples:
  go run ./cmd/quality api
  go run ./cmd/quality migrate
  go run ./cmd/quality seed
  go run ./cmd/quality scheduler start
  go run ./cmd/quality token --email admin@douglas.com`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production|test)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
