package recipe

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// BuildDraft 由规范配方生成生产记录草稿。
// base_qty = 配方用量 / 基准产出量，此后不再变；
// 首次加载时各行 est_qty 就是配方原始用量。
// estQty > 0 时视为操作员已指定目标产出量，随即整体重算
func BuildDraft(rc *ResolvedRecipe, estQty float64) *entity.ProductionRun {
	run := &entity.ProductionRun{
		BOMID:  rc.BOMID,
		Status: entity.StatusPending,
	}

	run.PartNames = []entity.OutputLine{{
		CompoundName: rc.OutputName,
		CompoundCode: rc.OutputCode,
		UOM:          rc.OutputUOM,
		Category:     rc.OutputCategory,
		EstQty:       estQty,
		RemainQty:    Round2(estQty),
	}}

	for _, l := range rc.RawMaterials {
		run.RawMaterials = append(run.RawMaterials, entity.ConsumptionLine{
			Kind:       entity.LineKindRawMaterial,
			MaterialID: l.MaterialID,
			Name:       l.Name,
			Code:       l.Code,
			Category:   l.Category,
			UOM:        l.UOM,
			BOMQty:     l.BOMQty,
			BaseQty:    l.BOMQty / rc.ReferenceQty,
			EstQty:     l.BOMQty,
			RemainQty:  Round2(l.BOMQty),
			Comment:    l.Comment,
		})
	}
	for _, l := range rc.Accelerators {
		run.Accelerators = append(run.Accelerators, entity.ConsumptionLine{
			Kind:      entity.LineKindAccelerator,
			Name:      l.Name,
			UOM:       l.UOM,
			BOMQty:    l.BOMQty,
			BaseQty:   l.BOMQty / rc.ReferenceQty,
			EstQty:    l.BOMQty,
			RemainQty: Round2(l.BOMQty),
			Comment:   l.Comment,
		})
	}

	for i, name := range rc.Processes {
		run.Processes = append(run.Processes, entity.ProcessStep{
			ProcessName: name,
			Status:      entity.StatusPending,
			Sequence:    i,
		})
	}

	if estQty > 0 {
		Rescale(run, estQty)
	}
	return run
}

// Rescale 操作员修改目标产出量后整体重算：
// 每行 est_qty = base_qty × v，used_qty 原样保留，剩余量随之重算
func Rescale(run *entity.ProductionRun, v float64) {
	if out := run.Output(); out != nil {
		out.EstQty = v
	}
	for i := range run.RawMaterials {
		run.RawMaterials[i].EstQty = run.RawMaterials[i].BaseQty * v
	}
	for i := range run.Accelerators {
		run.Accelerators[i].EstQty = run.Accelerators[i].BaseQty * v
	}
	DeriveRemainders(run)
}

// DeriveRemainders 重算所有剩余量。remain_qty 只派生，不接受录入
func DeriveRemainders(run *entity.ProductionRun) {
	if out := run.Output(); out != nil {
		out.RemainQty = Round2(out.EstQty - out.ProdQty)
	}
	for i := range run.RawMaterials {
		l := &run.RawMaterials[i]
		l.RemainQty = Round2(l.EstQty - l.UsedQty)
	}
	for i := range run.Accelerators {
		l := &run.Accelerators[i]
		l.RemainQty = Round2(l.EstQty - l.UsedQty)
	}
}
