package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool

	// Version info (set from main)
	Version = "0.3.0"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "survbench",
	Short: "Monte Carlo survival model benchmarking",
	Long: `Survbench fits and scores survival model families across hundreds of
Monte Carlo cross-validation splits under a bounded worker pool, with
per-task deadlines, crash-safe progress reporting, and concordance-based
scoring.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}
