package engine

import (
	"testing"

	"github.com/graftlab/survbench/internal/config"
)

func TestComputeResources_Default(t *testing.T) {
	res := ComputeResources(16, config.ResourcesConfig{
		TargetUtilization: 0.8,
		ThreadsPerWorker:  1,
	})

	if res.Workers != 12 {
		t.Errorf("expected floor(16*0.8)=12 workers, got %d", res.Workers)
	}
	if res.ThreadsPerWorker != 1 {
		t.Errorf("expected 1 thread per worker, got %d", res.ThreadsPerWorker)
	}
}

func TestComputeResources_ExplicitWorkersClamped(t *testing.T) {
	res := ComputeResources(8, config.ResourcesConfig{
		Workers:          64,
		ThreadsPerWorker: 2,
	})

	if res.Workers != 4 {
		t.Errorf("expected workers clamped to 8/2=4, got %d", res.Workers)
	}
}

func TestComputeResources_Invariant(t *testing.T) {
	cores := []int{0, 1, 2, 3, 4, 7, 8, 16, 17, 64, 128}
	cfgs := []config.ResourcesConfig{
		{},
		{TargetUtilization: 0.8, ThreadsPerWorker: 1},
		{TargetUtilization: 0.5, ThreadsPerWorker: 4},
		{TargetUtilization: 1.5, ThreadsPerWorker: 3},
		{Workers: 1000, ThreadsPerWorker: 7},
		{Workers: -3, ThreadsPerWorker: -1, TargetUtilization: -0.2},
		{Workers: 2, ThreadsPerWorker: 100},
	}

	for _, c := range cores {
		for _, cfg := range cfgs {
			res := ComputeResources(c, cfg)
			if res.Workers < 1 {
				t.Errorf("cores=%d cfg=%+v: workers %d < 1", c, cfg, res.Workers)
			}
			if res.ThreadsPerWorker < 1 {
				t.Errorf("cores=%d cfg=%+v: threads %d < 1", c, cfg, res.ThreadsPerWorker)
			}
			if res.Workers*res.ThreadsPerWorker > res.Cores {
				t.Errorf("cores=%d cfg=%+v: %d workers * %d threads exceeds %d cores",
					c, cfg, res.Workers, res.ThreadsPerWorker, res.Cores)
			}
		}
	}
}

func TestThreadEnv(t *testing.T) {
	env := Resources{Cores: 8, Workers: 4, ThreadsPerWorker: 2}.ThreadEnv()

	for _, name := range []string{"OMP_NUM_THREADS", "OPENBLAS_NUM_THREADS", "MKL_NUM_THREADS"} {
		if env[name] != "2" {
			t.Errorf("%s = %q, want 2", name, env[name])
		}
	}
}

func TestDetectCores_Positive(t *testing.T) {
	if DetectCores() < 1 {
		t.Error("core detection should never report less than one core")
	}
}
