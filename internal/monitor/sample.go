// Package monitor watches the batch process and its children while tasks
// run. It only observes: samples are logged and surfaced through callbacks,
// never fed back into scheduling decisions.
package monitor

import (
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/process"
)

type ChildState struct {
	PID        int32   `json:"pid"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float32 `json:"mem_percent"`
	Threads    int32   `json:"threads"`
}

type Sample struct {
	Timestamp     time.Time    `json:"timestamp"`
	Cores         int          `json:"cores"`
	Load1         float64      `json:"load1"`
	SelfCPU       float64      `json:"self_cpu_percent"`
	SelfMem       float32      `json:"self_mem_percent"`
	SelfThreads   int32        `json:"self_threads"`
	Children      []ChildState `json:"children"`
	ChildCPUTotal float64      `json:"child_cpu_total"`
}

func (s *Sample) Clone() *Sample {
	clone := *s
	clone.Children = make([]ChildState, len(s.Children))
	copy(clone.Children, s.Children)
	return &clone
}

// Sampler reads one snapshot of the batch process tree.
type Sampler struct {
	proc *process.Process
	mu   sync.Mutex
}

func NewSampler() (*Sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Sampler{proc: proc}, nil
}

// Collect gathers the current sample. Per-child failures are skipped
// rather than failing the whole sample: children come and go between the
// listing and the reads.
func (s *Sampler) Collect() (*Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := &Sample{Timestamp: time.Now()}

	cores, err := cpu.Counts(true)
	if err != nil {
		return nil, err
	}
	sample.Cores = cores

	if avg, err := load.Avg(); err == nil {
		sample.Load1 = avg.Load1
	}

	if pct, err := s.proc.CPUPercent(); err == nil {
		sample.SelfCPU = pct
	}
	if pct, err := s.proc.MemoryPercent(); err == nil {
		sample.SelfMem = pct
	}
	if n, err := s.proc.NumThreads(); err == nil {
		sample.SelfThreads = n
	}

	children, err := s.proc.Children()
	if err != nil {
		// No children is normal for a pure in-process batch.
		return sample, nil
	}

	for _, child := range children {
		state := ChildState{PID: child.Pid}
		if pct, err := child.CPUPercent(); err == nil {
			state.CPUPercent = pct
		}
		if pct, err := child.MemoryPercent(); err == nil {
			state.MemPercent = pct
		}
		if n, err := child.NumThreads(); err == nil {
			state.Threads = n
		}
		sample.Children = append(sample.Children, state)
		sample.ChildCPUTotal += state.CPUPercent
	}

	return sample, nil
}
