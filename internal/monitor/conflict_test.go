package monitor

import (
	"testing"
	"time"
)

func defaultLimits() Limits {
	return Limits{
		LoadRatioLimit:   1.5,
		HotChildLimit:    3,
		ChildCPUMultiple: 1.25,
	}
}

func TestDetectConflicts_Quiet(t *testing.T) {
	s := &Sample{
		Cores: 8,
		Load1: 6.0,
		Children: []ChildState{
			{PID: 1, CPUPercent: 40},
			{PID: 2, CPUPercent: 95},
		},
		ChildCPUTotal: 135,
	}

	if conflicts := DetectConflicts(s, defaultLimits()); len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", conflicts)
	}
}

func TestDetectConflicts_LoadRatio(t *testing.T) {
	s := &Sample{Cores: 8, Load1: 13.0}

	conflicts := DetectConflicts(s, defaultLimits())
	if len(conflicts) != 1 || conflicts[0].Rule != "load_ratio" {
		t.Fatalf("expected load_ratio conflict, got %v", conflicts)
	}
	if conflicts[0].Value < 1.6 || conflicts[0].Value > 1.65 {
		t.Errorf("unexpected ratio: %g", conflicts[0].Value)
	}
}

func TestDetectConflicts_HotChildren(t *testing.T) {
	children := make([]ChildState, 5)
	for i := range children {
		children[i] = ChildState{PID: int32(i + 1), CPUPercent: 80}
	}
	s := &Sample{Cores: 32, Load1: 4, Children: children, ChildCPUTotal: 400}

	conflicts := DetectConflicts(s, defaultLimits())
	if len(conflicts) != 1 || conflicts[0].Rule != "hot_children" {
		t.Fatalf("expected hot_children conflict, got %v", conflicts)
	}
	if conflicts[0].Value != 5 {
		t.Errorf("expected 5 hot children, got %g", conflicts[0].Value)
	}
}

func TestDetectConflicts_HotChildrenBoundary(t *testing.T) {
	// Exactly the limit does not trigger; the rule is strictly more than.
	children := make([]ChildState, 3)
	for i := range children {
		children[i] = ChildState{PID: int32(i + 1), CPUPercent: 80}
	}
	s := &Sample{Cores: 32, Load1: 4, Children: children, ChildCPUTotal: 240}

	if conflicts := DetectConflicts(s, defaultLimits()); len(conflicts) != 0 {
		t.Errorf("expected no conflicts at the boundary, got %v", conflicts)
	}
}

func TestDetectConflicts_ChildCPUTotal(t *testing.T) {
	s := &Sample{Cores: 4, Load1: 2, ChildCPUTotal: 520}

	conflicts := DetectConflicts(s, defaultLimits())
	if len(conflicts) != 1 || conflicts[0].Rule != "child_cpu_total" {
		t.Fatalf("expected child_cpu_total conflict, got %v", conflicts)
	}
	if conflicts[0].Limit != 500 {
		t.Errorf("expected capacity limit 500, got %g", conflicts[0].Limit)
	}
}

func TestDetectConflicts_DisabledLimits(t *testing.T) {
	s := &Sample{Cores: 2, Load1: 100, ChildCPUTotal: 9000}

	if conflicts := DetectConflicts(s, Limits{}); len(conflicts) != 0 {
		t.Errorf("zero limits should disable every rule, got %v", conflicts)
	}
}

func TestSampleClone_Independent(t *testing.T) {
	s := &Sample{
		Timestamp: time.Now(),
		Cores:     4,
		Children:  []ChildState{{PID: 1, CPUPercent: 10}},
	}

	clone := s.Clone()
	clone.Children[0].CPUPercent = 99

	if s.Children[0].CPUPercent != 10 {
		t.Error("clone should not share the children slice")
	}
}
