package recipe

import (
	"fmt"
	"strings"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
)

// NotFoundError 配方或部件名查不到。调用方必须中止解析，不得继续换算
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s 不存在", e.What)
}

// IsNotFound 判断是否为查无记录错误
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ResolvedRecipe 解析后的规范配方：产出描述 + 原料行 + 促进剂行 + 工序
type ResolvedRecipe struct {
	BOMID   string
	BOMType string

	OutputName     string
	OutputCode     string
	OutputUOM      string
	OutputCategory string

	// 换算基准产出量，恒大于0
	ReferenceQty float64

	RawMaterials []ResolvedLine
	Accelerators []ResolvedLine
	Processes    []string
	Compounds    []ResolvedCompound
}

// ResolvedLine 规范化后的配方行
type ResolvedLine struct {
	MaterialID string
	Name       string
	Code       string
	Category   string
	UOM        string
	BOMQty     float64
	Tolerance  string
	Comment    string
}

// ResolvedCompound 规范化后的胶料明细
type ResolvedCompound struct {
	CompoundID string
	Name       string
	Code       string
	Hardness   string
	Weight     string
}

// DisplayPartName 部件显示名：优先产品快照，其次物料主数据，
// 最后从复合串 "<id>-<name>" 按第一个连字符拆出名称
func DisplayPartName(d *entity.PartNameDetail) string {
	if d == nil {
		return ""
	}
	if d.ProductName != "" {
		return d.ProductName
	}
	if d.Product != nil && d.Product.Name != "" {
		return d.Product.Name
	}
	if idx := strings.Index(d.PartNameIDName, "-"); idx >= 0 {
		return d.PartNameIDName[idx+1:]
	}
	return d.PartNameIDName
}

// Normalize 把配方规范化为统一的内存形态。
// part-name 配方必须给出 partName 并能匹配到明细，否则返回 NotFoundError
func Normalize(bom *entity.BillOfMaterial, partName string) (*ResolvedRecipe, error) {
	if bom == nil {
		return nil, &NotFoundError{What: "BOM"}
	}

	rc := &ResolvedRecipe{
		BOMID:   bom.ID,
		BOMType: bom.BOMType,
	}

	var detail *entity.PartNameDetail
	switch bom.BOMType {
	case entity.BOMTypePartName:
		for i := range bom.PartNameDetails {
			if DisplayPartName(&bom.PartNameDetails[i]) == partName {
				detail = &bom.PartNameDetails[i]
				break
			}
		}
		if detail == nil {
			return nil, &NotFoundError{What: "部件 " + partName}
		}
	default:
		if len(bom.PartNameDetails) > 0 {
			detail = &bom.PartNameDetails[0]
		}
	}

	rc.ReferenceQty = referenceQty(bom, detail)
	resolveOutput(rc, bom, detail)

	for i := range bom.RawMaterials {
		rc.RawMaterials = append(rc.RawMaterials, resolveRawMaterial(&bom.RawMaterials[i]))
	}
	for i := range bom.Accelerators {
		a := &bom.Accelerators[i]
		rc.Accelerators = append(rc.Accelerators, ResolvedLine{
			Name:      a.Name,
			BOMQty:    ParseQty(a.Quantity),
			Tolerance: a.Tolerance,
			Comment:   a.Comment,
		})
	}

	rc.Processes = resolveProcesses(bom)
	rc.Compounds = resolveCompounds(bom)

	return rc, nil
}

// referenceQty 换算基准：compound 配方取 compound_weight，为空则退回
// 部件明细的第一个数量；part-name 配方取选中部件的第一个数量。
// 0或解析失败一律按1，避免除零
func referenceQty(bom *entity.BillOfMaterial, detail *entity.PartNameDetail) float64 {
	var ref float64
	switch bom.BOMType {
	case entity.BOMTypePartName:
		if detail != nil && len(detail.Quantities) > 0 {
			ref = ParseQty(detail.Quantities[0])
		}
	default:
		if strings.TrimSpace(bom.CompoundWeight) != "" {
			ref = ParseQty(bom.CompoundWeight)
		} else if detail != nil && len(detail.Quantities) > 0 {
			ref = ParseQty(detail.Quantities[0])
		}
	}
	if ref <= 0 {
		return 1
	}
	return ref
}

func resolveOutput(rc *ResolvedRecipe, bom *entity.BillOfMaterial, detail *entity.PartNameDetail) {
	if bom.BOMType == entity.BOMTypePartName {
		rc.OutputName = DisplayPartName(detail)
		if detail != nil {
			rc.OutputCode = detail.ProductCode
			if rc.OutputCode == "" && detail.Product != nil {
				rc.OutputCode = detail.Product.Code
			}
		}
	} else {
		rc.OutputName = bom.CompoundName
		if len(bom.CompoundCodes) > 0 {
			rc.OutputCode = bom.CompoundCodes[0]
		}
	}

	// UOM/类别：产品主数据优先，部件快照兜底
	if detail != nil {
		if detail.Product != nil {
			rc.OutputUOM = detail.Product.UOM
			rc.OutputCategory = detail.Product.Category
		}
		if rc.OutputUOM == "" {
			rc.OutputUOM = detail.UOM
		}
		if rc.OutputCategory == "" {
			rc.OutputCategory = detail.Category
		}
	}
}

// resolveRawMaterial 取 quantities[0] 为当前用量（缺失按"0"），
// 显示字段按 物料主数据 → 行内快照 → 空串 的顺序解析
func resolveRawMaterial(line *entity.RawMaterialLine) ResolvedLine {
	qty := "0"
	if len(line.Quantities) > 0 && line.Quantities[0] != "" {
		qty = line.Quantities[0]
	}

	r := ResolvedLine{
		MaterialID: line.MaterialID,
		BOMQty:     ParseQty(qty),
		Comment:    line.Comment,
	}
	if len(line.Tolerances) > 0 {
		r.Tolerance = line.Tolerances[0]
	}

	if line.Material != nil {
		r.Name = line.Material.Name
		r.Code = line.Material.Code
		r.Category = line.Material.Category
		r.UOM = line.Material.UOM
	}
	if r.Name == "" {
		r.Name = line.MaterialName
	}
	if r.Code == "" {
		r.Code = line.MaterialCode
	}
	if r.Category == "" {
		r.Category = line.Category
	}
	if r.UOM == "" {
		r.UOM = line.UOM
	}
	return r
}

// resolveProcesses processes 数组优先，为空时从离散的 process1..4 合成
func resolveProcesses(bom *entity.BillOfMaterial) []string {
	if len(bom.Processes) > 0 {
		out := make([]string, 0, len(bom.Processes))
		for _, p := range bom.Processes {
			if strings.TrimSpace(p) != "" {
				out = append(out, p)
			}
		}
		return out
	}
	var out []string
	for _, p := range []string{bom.Process1, bom.Process2, bom.Process3, bom.Process4} {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveCompounds compounds 非空时逐条映射（引用优先，行内字段兜底）；
// 为空但顶层有单胶料信息时合成恰好一条
func resolveCompounds(bom *entity.BillOfMaterial) []ResolvedCompound {
	if len(bom.Compounds) > 0 {
		out := make([]ResolvedCompound, 0, len(bom.Compounds))
		for i := range bom.Compounds {
			c := &bom.Compounds[i]
			rc := ResolvedCompound{
				CompoundID: c.CompoundID,
				Name:       c.CompoundName,
				Code:       c.CompoundCode,
				Hardness:   c.Hardness,
				Weight:     c.Weight,
			}
			if c.Compound != nil {
				if c.Compound.Name != "" {
					rc.Name = c.Compound.Name
				}
				if c.Compound.Code != "" {
					rc.Code = c.Compound.Code
				}
			}
			out = append(out, rc)
		}
		return out
	}

	if bom.CompoundName != "" || len(bom.CompoundCodes) > 0 {
		rc := ResolvedCompound{
			Name:     bom.CompoundName,
			Hardness: bom.Hardness,
			Weight:   bom.CompoundWeight,
		}
		if len(bom.CompoundCodes) > 0 {
			rc.Code = bom.CompoundCodes[0]
		}
		return []ResolvedCompound{rc}
	}
	return nil
}
