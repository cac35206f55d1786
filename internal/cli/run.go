package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/graftlab/survbench/internal/config"
	"github.com/graftlab/survbench/internal/engine"
	"github.com/graftlab/survbench/internal/logger"
)

var (
	runWorkers    int
	runStart      int
	runMax        int
	runImportance bool
	runFamilies   []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a full benchmark batch",
	Long: `Run fits every configured model family on every Monte Carlo split and
writes metric tables, model artifacts, and per-task logs into a fresh
run directory.`,
	RunE: runBatch,
}

func init() {
	runCmd.Flags().IntVarP(&runWorkers, "workers", "w", 0, "override worker pool size")
	runCmd.Flags().IntVar(&runStart, "start", 0, "skip this many splits from the front")
	runCmd.Flags().IntVar(&runMax, "max", 0, "cap how many splits to run")
	runCmd.Flags().BoolVar(&runImportance, "importance", false, "compute permutation feature importance")
	runCmd.Flags().StringSliceVar(&runFamilies, "families", nil, "model families to run")
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault(cfgFile)

	if cmd.Flags().Changed("workers") {
		cfg.Resources.Workers = runWorkers
	}
	if cmd.Flags().Changed("start") {
		cfg.Splits.Start = runStart
	}
	if cmd.Flags().Changed("max") {
		cfg.Splits.Max = runMax
	}
	if cmd.Flags().Changed("importance") {
		cfg.Importance.Enabled = runImportance
	}
	if cmd.Flags().Changed("families") {
		cfg.Families = runFamilies
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("survbench starting",
		"version", Version,
		"config", cfgFile,
		"cohort", cfg.Cohort,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn("shutdown signal received, stopping dispatch", "signal", sig)
		cancel()
	}()

	res, err := engine.New(cfg, log).Run(ctx)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	fmt.Printf("run %s finished: %d tasks (%v)\nresults: %s\n",
		res.RunID, res.Summary.Tasks, res.Summary.ByStatus, res.Dir)
	return nil
}
