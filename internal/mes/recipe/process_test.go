package recipe

import (
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func TestStepStatus(t *testing.T) {
	cases := []struct {
		start, done bool
		want        string
	}{
		{false, false, entity.StatusPending},
		{true, false, entity.StatusInProgress},
		{true, true, entity.StatusCompleted},
		// done 单独为真也是终态，start 不参与
		{false, true, entity.StatusCompleted},
	}
	for _, c := range cases {
		if got := StepStatus(c.start, c.done); got != c.want {
			t.Fatalf("StepStatus(%v, %v) = %q, want %q", c.start, c.done, got, c.want)
		}
	}
}

func TestDeriveSteps(t *testing.T) {
	steps := []entity.ProcessStep{
		{ProcessName: "混炼", Start: true},
		{ProcessName: "硫化", Done: true, Status: "随便写的"},
	}
	DeriveSteps(steps)
	if steps[0].Status != entity.StatusInProgress {
		t.Fatalf("expected in_progress, got %q", steps[0].Status)
	}
	// 存量标签被无条件覆盖
	if steps[1].Status != entity.StatusCompleted {
		t.Fatalf("expected completed, got %q", steps[1].Status)
	}
}

func TestAggregateStatus(t *testing.T) {
	step := func(start, done bool) entity.ProcessStep {
		return entity.ProcessStep{Start: start, Done: done}
	}
	cases := []struct {
		name  string
		steps []entity.ProcessStep
		want  string
	}{
		{"全部完成", []entity.ProcessStep{step(true, true), step(false, true)}, entity.StatusCompleted},
		{"有进行中", []entity.ProcessStep{step(true, false), step(false, false)}, entity.StatusInProgress},
		{"完成加未开始", []entity.ProcessStep{step(true, true), step(false, false)}, entity.StatusInProgress},
		{"全部未开始", []entity.ProcessStep{step(false, false), step(false, false)}, entity.StatusPending},
	}
	for _, c := range cases {
		if got := AggregateStatus(c.steps); got != c.want {
			t.Fatalf("%s: got %q, want %q", c.name, got, c.want)
		}
	}
}

func TestNormalizeStatusSynonym(t *testing.T) {
	cases := map[string]string{
		entity.StatusProductionStart:    entity.StatusCompleted,
		entity.StatusProductionStartAlt: entity.StatusCompleted,
		entity.StatusInProgress:         entity.StatusInProgress,
		entity.StatusPending:            entity.StatusPending,
		"":                              "",
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunStatus(t *testing.T) {
	// 存量遗留值展示为 completed
	run := &entity.ProductionRun{Status: entity.StatusProductionStart}
	if got := RunStatus(run); got != entity.StatusCompleted {
		t.Fatalf("expected completed for legacy status, got %q", got)
	}

	// 无存量值时按工序聚合
	run = &entity.ProductionRun{
		Status: entity.StatusPending,
		Processes: []entity.ProcessStep{
			{Start: true, Done: false},
		},
	}
	if got := RunStatus(run); got != entity.StatusInProgress {
		t.Fatalf("expected aggregated in_progress, got %q", got)
	}
}
