package recipe

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// StepStatus 工序状态由 start/done 两个开关派生，标签不直接设置：
// done=true 即 completed（终态）；否则 start=true 为 in_progress；都未置位为 pending
func StepStatus(start, done bool) string {
	switch {
	case done:
		return entity.StatusCompleted
	case start:
		return entity.StatusInProgress
	default:
		return entity.StatusPending
	}
}

// DeriveSteps 重算每个工序的状态标签
func DeriveSteps(steps []entity.ProcessStep) {
	for i := range steps {
		steps[i].Status = StepStatus(steps[i].Start, steps[i].Done)
	}
}

// AggregateStatus 整单状态：全部 completed 则 completed；
// 有任一 in_progress 或 completed 则 in_progress；否则 pending
func AggregateStatus(steps []entity.ProcessStep) string {
	allDone := true
	anyStarted := false
	for i := range steps {
		switch StepStatus(steps[i].Start, steps[i].Done) {
		case entity.StatusCompleted:
			anyStarted = true
		case entity.StatusInProgress:
			anyStarted = true
			allDone = false
		default:
			allDone = false
		}
	}
	if allDone {
		return entity.StatusCompleted
	}
	if anyStarted {
		return entity.StatusInProgress
	}
	return entity.StatusPending
}

// NormalizeStatus 历史数据里的 "production start"/"production_start"
// 展示时等同于 completed。该映射没有业务规则背书，集中在这里，
// 待产品确认后可整体移除
func NormalizeStatus(stored string) string {
	switch stored {
	case entity.StatusProductionStart, entity.StatusProductionStartAlt:
		return entity.StatusCompleted
	}
	return stored
}

// RunStatus 整单展示状态：有存量值则规范化后用之，否则按工序聚合派生
func RunStatus(run *entity.ProductionRun) string {
	if run.Status != "" && run.Status != entity.StatusPending {
		return NormalizeStatus(run.Status)
	}
	return AggregateStatus(run.Processes)
}
