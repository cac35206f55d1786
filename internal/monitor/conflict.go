package monitor

import "fmt"

// Limits holds the thresholds for the over-subscription heuristics.
type Limits struct {
	// LoadRatioLimit flags a sample when load1/cores exceeds it.
	LoadRatioLimit float64

	// HotChildLimit flags a sample with more than this many children
	// each above 50% CPU.
	HotChildLimit int

	// ChildCPUMultiple flags a sample whose aggregate child CPU exceeds
	// this multiple of the machine's full capacity (cores * 100).
	ChildCPUMultiple float64
}

const hotChildCPUPercent = 50.0

// Conflict describes one triggered heuristic.
type Conflict struct {
	Rule   string  `json:"rule"`
	Value  float64 `json:"value"`
	Limit  float64 `json:"limit"`
	Detail string  `json:"detail"`
}

// DetectConflicts applies the heuristics to one sample. A returned
// conflict is a hint that something outside the pool is competing for
// cores, not a directive; the caller only logs and counts.
func DetectConflicts(s *Sample, limits Limits) []Conflict {
	var conflicts []Conflict

	if s.Cores > 0 && limits.LoadRatioLimit > 0 {
		ratio := s.Load1 / float64(s.Cores)
		if ratio > limits.LoadRatioLimit {
			conflicts = append(conflicts, Conflict{
				Rule:   "load_ratio",
				Value:  ratio,
				Limit:  limits.LoadRatioLimit,
				Detail: fmt.Sprintf("load1 %.2f on %d cores", s.Load1, s.Cores),
			})
		}
	}

	if limits.HotChildLimit > 0 {
		hot := 0
		for _, child := range s.Children {
			if child.CPUPercent > hotChildCPUPercent {
				hot++
			}
		}
		if hot > limits.HotChildLimit {
			conflicts = append(conflicts, Conflict{
				Rule:   "hot_children",
				Value:  float64(hot),
				Limit:  float64(limits.HotChildLimit),
				Detail: fmt.Sprintf("%d children above %.0f%% CPU", hot, hotChildCPUPercent),
			})
		}
	}

	if s.Cores > 0 && limits.ChildCPUMultiple > 0 {
		capacity := limits.ChildCPUMultiple * float64(s.Cores) * 100
		if s.ChildCPUTotal > capacity {
			conflicts = append(conflicts, Conflict{
				Rule:   "child_cpu_total",
				Value:  s.ChildCPUTotal,
				Limit:  capacity,
				Detail: fmt.Sprintf("aggregate child CPU %.0f%% against %d cores", s.ChildCPUTotal, s.Cores),
			})
		}
	}

	return conflicts
}
