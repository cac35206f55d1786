package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/graftlab/survbench/internal/config"
	"github.com/graftlab/survbench/internal/logger"
	"github.com/graftlab/survbench/internal/monitor"
)

var monitorInterval int

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the process tree and flag resource conflicts",
	Long: `Monitor samples this process and its children on an interval and prints
one JSON line per sample, including any over-subscription conflicts.
Run it alongside a batch started elsewhere to watch for competing
workloads. Stop with Ctrl-C.`,
	RunE: watchResources,
}

func init() {
	monitorCmd.Flags().IntVarP(&monitorInterval, "interval", "i", 0, "sampling interval in seconds")
	rootCmd.AddCommand(monitorCmd)
}

func watchResources(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault(cfgFile)
	if cmd.Flags().Changed("interval") {
		cfg.Monitoring.IntervalSec = monitorInterval
	}

	interval := cfg.MonitoringInterval()
	if interval <= 0 {
		interval = 30 * time.Second
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	limits := monitor.Limits{
		LoadRatioLimit:   cfg.Monitoring.LoadRatioLimit,
		HotChildLimit:    cfg.Monitoring.HotChildLimit,
		ChildCPUMultiple: cfg.Monitoring.ChildCPUMultiple,
	}
	return monitor.Watch(ctx, interval, limits, log)
}
