package recipe

import (
	"math"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// 数量对账展示标签
const (
	LabelMatched    = "matched"
	LabelMismatched = "mismatched"
)

// ZeroRemainder 产出与全部原料行的剩余量都在容差内归零。
// 原料行为空时平凡成立
func ZeroRemainder(run *entity.ProductionRun) bool {
	out := run.Output()
	if out == nil || math.Abs(out.RemainQty) > Epsilon {
		return false
	}
	for i := range run.RawMaterials {
		if math.Abs(run.RawMaterials[i].RemainQty) > Epsilon {
			return false
		}
	}
	return true
}

// CanSendToQC 送检闸门：工序聚合状态 completed、尚未送检、
// QC未完成，且剩余量全部归零。归零即放行，
// 与数量对账标签无关
func CanSendToQC(run *entity.ProductionRun) bool {
	if run.ReadyForQC || run.QCDone {
		return false
	}
	if AggregateStatus(run.Processes) != entity.StatusCompleted {
		return false
	}
	return ZeroRemainder(run)
}

// QuantityMatchLabel 数量对账标签，仅作展示不参与闸门判定：
// 剩余量已归零恒为 matched；否则比较原料 used_qty 合计与产出 prod_qty
func QuantityMatchLabel(run *entity.ProductionRun) string {
	if ZeroRemainder(run) {
		return LabelMatched
	}
	out := run.Output()
	if out == nil {
		return LabelMismatched
	}
	var usedSum float64
	for i := range run.RawMaterials {
		usedSum += run.RawMaterials[i].UsedQty
	}
	if math.Abs(usedSum-out.ProdQty) <= Epsilon {
		return LabelMatched
	}
	return LabelMismatched
}
