package recipe

import (
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// ValidationError 用量超限。硬性拒绝，不做静默截断，原值保留
type ValidationError struct {
	Line    string
	Field   string
	Ceiling float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s 的 %s 不能超过预估量 %g", e.Line, e.Field, e.Ceiling)
}

// 解析后允许编辑的字段
const (
	FieldUsedQty = "used_qty"
	FieldProdQty = "prod_qty"
	FieldComment = "comment"
)

// ApplyLineEdit 应用消耗行编辑。used_qty 超过 est_qty 时拒绝，
// 编辑不生效；成功后剩余量随之重算。备注编辑无派生副作用
func ApplyLineEdit(line *entity.ConsumptionLine, field, value string) error {
	switch field {
	case FieldUsedQty:
		used := ParseQty(value)
		if used > line.EstQty {
			return &ValidationError{Line: line.Name, Field: FieldUsedQty, Ceiling: line.EstQty}
		}
		line.UsedQty = used
		line.RemainQty = Round2(line.EstQty - line.UsedQty)
		return nil
	case FieldComment:
		line.Comment = value
		return nil
	default:
		return fmt.Errorf("字段不可编辑: %s", field)
	}
}

// ApplyOutputEdit 应用产出行编辑，规则与消耗行一致
func ApplyOutputEdit(out *entity.OutputLine, field, value string) error {
	switch field {
	case FieldProdQty:
		prod := ParseQty(value)
		if prod > out.EstQty {
			return &ValidationError{Line: out.CompoundName, Field: FieldProdQty, Ceiling: out.EstQty}
		}
		out.ProdQty = prod
		out.RemainQty = Round2(out.EstQty - out.ProdQty)
		return nil
	case FieldComment:
		out.Comment = value
		return nil
	default:
		return fmt.Errorf("字段不可编辑: %s", field)
	}
}

// ValidateRun 整单校验：每个消耗行 used ≤ est，产出行 prod ≤ est。
// 提交边界与编辑边界执行同一套规则
func ValidateRun(run *entity.ProductionRun) error {
	if out := run.Output(); out != nil && out.ProdQty > out.EstQty {
		return &ValidationError{Line: out.CompoundName, Field: FieldProdQty, Ceiling: out.EstQty}
	}
	for i := range run.RawMaterials {
		l := &run.RawMaterials[i]
		if l.UsedQty > l.EstQty {
			return &ValidationError{Line: l.Name, Field: FieldUsedQty, Ceiling: l.EstQty}
		}
	}
	for i := range run.Accelerators {
		l := &run.Accelerators[i]
		if l.UsedQty > l.EstQty {
			return &ValidationError{Line: l.Name, Field: FieldUsedQty, Ceiling: l.EstQty}
		}
	}
	return nil
}
