package recipe

import (
	"errors"
	"math"
	"testing"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

func TestParseQtyLenient(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{" 7 ", 7},
		{"", 0},
		{"abc", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-3", -3},
	}
	for _, c := range cases {
		if got := ParseQty(c.in); got != c.want {
			t.Fatalf("ParseQty(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestApplyLineEditBoundary(t *testing.T) {
	line := &entity.ConsumptionLine{Name: "生胶", EstQty: 50}

	// 恰好到预估量：允许，剩余量归零
	if err := ApplyLineEdit(line, FieldUsedQty, "50"); err != nil {
		t.Fatalf("edit at est_qty must succeed: %v", err)
	}
	if line.UsedQty != 50 || line.RemainQty != 0 {
		t.Fatalf("expected used=50 remain=0, got used=%v remain=%v", line.UsedQty, line.RemainQty)
	}

	// 超过0.01：拒绝，原值保留
	err := ApplyLineEdit(line, FieldUsedQty, "50.01")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != FieldUsedQty || ve.Ceiling != 50 {
		t.Fatalf("unexpected error detail: %+v", ve)
	}
	if line.UsedQty != 50 {
		t.Fatalf("rejected edit must not change used_qty, got %v", line.UsedQty)
	}
}

func TestApplyLineEditRemainderInvariant(t *testing.T) {
	line := &entity.ConsumptionLine{Name: "炭黑", EstQty: 22.5}

	for _, v := range []string{"1.1", "7.77", "22.5", "0"} {
		if err := ApplyLineEdit(line, FieldUsedQty, v); err != nil {
			t.Fatalf("edit %q: %v", v, err)
		}
		// remain + used 与 est 的偏差不超过两位小数的舍入
		if diff := math.Abs(line.RemainQty + line.UsedQty - line.EstQty); diff > 0.005 {
			t.Fatalf("edit %q breaks remainder invariant: diff %v", v, diff)
		}
	}
}

func TestApplyLineEditComment(t *testing.T) {
	line := &entity.ConsumptionLine{Name: "生胶", EstQty: 50, UsedQty: 10, RemainQty: 40}
	if err := ApplyLineEdit(line, FieldComment, "换批次"); err != nil {
		t.Fatalf("comment edit: %v", err)
	}
	// 备注编辑不得触发任何数量派生
	if line.Comment != "换批次" || line.UsedQty != 10 || line.RemainQty != 40 {
		t.Fatalf("comment edit must have no quantity side effects: %+v", line)
	}
}

func TestApplyLineEditUnknownField(t *testing.T) {
	line := &entity.ConsumptionLine{Name: "生胶", EstQty: 50}
	if err := ApplyLineEdit(line, "est_qty", "99"); err == nil {
		t.Fatal("est_qty must not be directly editable")
	}
}

func TestApplyOutputEdit(t *testing.T) {
	out := &entity.OutputLine{CompoundName: "NBR-70", EstQty: 100}

	if err := ApplyOutputEdit(out, FieldProdQty, "80"); err != nil {
		t.Fatalf("prod edit: %v", err)
	}
	if out.ProdQty != 80 || out.RemainQty != 20 {
		t.Fatalf("expected prod=80 remain=20, got %+v", out)
	}

	err := ApplyOutputEdit(out, FieldProdQty, "100.5")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if out.ProdQty != 80 {
		t.Fatalf("rejected edit must not change prod_qty, got %v", out.ProdQty)
	}
}

func TestValidateRun(t *testing.T) {
	run := &entity.ProductionRun{
		PartNames: []entity.OutputLine{{CompoundName: "NBR-70", EstQty: 100, ProdQty: 100}},
		RawMaterials: []entity.ConsumptionLine{
			{Name: "生胶", EstQty: 50, UsedQty: 50},
			{Name: "炭黑", EstQty: 10, UsedQty: 3},
		},
	}
	if err := ValidateRun(run); err != nil {
		t.Fatalf("valid run rejected: %v", err)
	}

	run.RawMaterials[1].UsedQty = 10.01
	var ve *ValidationError
	if err := ValidateRun(run); !errors.As(err, &ve) || ve.Line != "炭黑" {
		t.Fatalf("expected line-level ValidationError, got %v", err)
	}
}
