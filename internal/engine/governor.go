package engine

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/graftlab/survbench/internal/config"
)

// Resources is the resolved CPU plan for one batch.
type Resources struct {
	Cores            int
	Workers          int
	ThreadsPerWorker int
}

// DetectCores returns the logical core count, falling back to the runtime
// when gopsutil cannot read it.
func DetectCores() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// ComputeResources resolves the worker plan. The pool size defaults to
// floor(cores * target utilization); an explicit workers override wins.
// Whatever the inputs, the result satisfies workers >= 1 and
// workers * threadsPerWorker <= cores.
func ComputeResources(cores int, cfg config.ResourcesConfig) Resources {
	if cores < 1 {
		cores = 1
	}

	threads := cfg.ThreadsPerWorker
	if threads < 1 {
		threads = 1
	}
	if threads > cores {
		threads = cores
	}

	workers := cfg.Workers
	if workers < 1 {
		target := cfg.TargetUtilization
		if target <= 0 || target > 1 {
			target = 1
		}
		workers = int(math.Floor(float64(cores) * target))
	}

	if max := cores / threads; workers > max {
		workers = max
	}
	if workers < 1 {
		workers = 1
	}

	return Resources{Cores: cores, Workers: workers, ThreadsPerWorker: threads}
}

// threadEnvVars are the knobs numeric backends read at startup. Each one
// is pinned so a worker never fans out beyond its thread allowance.
var threadEnvVars = []string{
	"OMP_NUM_THREADS",
	"OPENBLAS_NUM_THREADS",
	"MKL_NUM_THREADS",
	"VECLIB_MAXIMUM_THREADS",
	"NUMEXPR_NUM_THREADS",
}

// ThreadEnv returns the environment assignments for the plan.
func (r Resources) ThreadEnv() map[string]string {
	env := make(map[string]string, len(threadEnvVars))
	for _, name := range threadEnvVars {
		env[name] = fmt.Sprintf("%d", r.ThreadsPerWorker)
	}
	return env
}

// Apply broadcasts the thread allowance into the process environment so
// any child the trainers spawn inherits it.
func (r Resources) Apply(log *slog.Logger) error {
	for name, value := range r.ThreadEnv() {
		if err := os.Setenv(name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}

	log.Info("resource plan applied",
		"cores", r.Cores,
		"workers", r.Workers,
		"threads_per_worker", r.ThreadsPerWorker,
	)
	return nil
}
