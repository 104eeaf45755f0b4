package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// BOM类型
const (
	BOMTypeCompound = "compound"
	BOMTypePartName = "part-name"
)

// StringArray 用于PostgreSQL JSONB存储的字符串数组
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// BillOfMaterial 配方主表
// bom_type 决定下游哪些字段有值：compound 配方信息在顶层字段，
// part-name 配方信息在 compounds / part_name_details 里
type BillOfMaterial struct {
	ID             string      `json:"id" gorm:"primaryKey;size:32"`
	BOMType        string      `json:"bom_type" gorm:"size:16;not null;index"`
	CompoundName   string      `json:"compound_name" gorm:"size:128"`
	CompoundCodes  StringArray `json:"compound_codes" gorm:"type:jsonb"`
	CompoundWeight string      `json:"compound_weight" gorm:"size:32"` // 参考产出量，可为空
	Hardness       string      `json:"hardness" gorm:"size:32"`

	// processes 数组为权威表示，process1..process4 是历史遗留的离散表示
	Processes StringArray `json:"processes" gorm:"type:jsonb"`
	Process1  string      `json:"process1" gorm:"size:64"`
	Process2  string      `json:"process2" gorm:"size:64"`
	Process3  string      `json:"process3" gorm:"size:64"`
	Process4  string      `json:"process4" gorm:"size:64"`

	RawMaterials    []RawMaterialLine `json:"raw_materials,omitempty" gorm:"foreignKey:BOMID"`
	Accelerators    []AcceleratorLine `json:"accelerators,omitempty" gorm:"foreignKey:BOMID"`
	Compounds       []CompoundDetail  `json:"compounds,omitempty" gorm:"foreignKey:BOMID"`
	PartNameDetails []PartNameDetail  `json:"part_name_details,omitempty" gorm:"foreignKey:BOMID"`

	Remarks   string     `json:"remarks" gorm:"type:text"`
	CreatedBy string     `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

func (BillOfMaterial) TableName() string {
	return "mes_boms"
}

// RawMaterialLine 配方原料行
// quantities 第一个元素为当前生效的BOM用量，其余为历史记录；
// 物料快照字段在物料主数据不可用时兜底显示
type RawMaterialLine struct {
	ID         string      `json:"id" gorm:"primaryKey;size:32"`
	BOMID      string      `json:"bom_id" gorm:"size:32;not null;index"`
	MaterialID string      `json:"raw_material_id" gorm:"size:32;index"`
	Quantities StringArray `json:"quantities" gorm:"type:jsonb"`
	Tolerances StringArray `json:"tolerances" gorm:"type:jsonb"`

	// 物料快照
	MaterialName string `json:"material_name" gorm:"size:128"`
	MaterialCode string `json:"material_code" gorm:"size:64"`
	Category     string `json:"category" gorm:"size:64"`
	UOM          string `json:"uom" gorm:"size:20"`

	Comment   string    `json:"comment" gorm:"type:text"`
	Sequence  int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Material *Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

func (RawMaterialLine) TableName() string {
	return "mes_bom_raw_materials"
}

// AcceleratorLine 配方促进剂行，用量是单值不是数组
type AcceleratorLine struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	BOMID     string    `json:"bom_id" gorm:"size:32;not null;index"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Quantity  string    `json:"quantity" gorm:"size:32"`
	Tolerance string    `json:"tolerance" gorm:"size:32"`
	Comment   string    `json:"comment" gorm:"type:text"`
	Sequence  int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AcceleratorLine) TableName() string {
	return "mes_bom_accelerators"
}

// CompoundDetail part-name 配方关联的胶料明细
type CompoundDetail struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	BOMID        string    `json:"bom_id" gorm:"size:32;not null;index"`
	CompoundID   string    `json:"compound_id" gorm:"size:32;index"`
	CompoundName string    `json:"compound_name" gorm:"size:128"`
	CompoundCode string    `json:"compound_code" gorm:"size:64"`
	Hardness     string    `json:"hardness" gorm:"size:32"`
	Weight       string    `json:"weight" gorm:"size:32"`
	Sequence     int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Compound *Material `json:"compound,omitempty" gorm:"foreignKey:CompoundID"`
}

func (CompoundDetail) TableName() string {
	return "mes_bom_compounds"
}

// PartNameDetail 部件名称明细
// part_name_id_name 是历史遗留的复合串 "<id>-<name>"，产品快照缺失时从它解析显示名
type PartNameDetail struct {
	ID             string      `json:"id" gorm:"primaryKey;size:32"`
	BOMID          string      `json:"bom_id" gorm:"size:32;not null;index"`
	PartNameIDName string      `json:"part_name_id_name" gorm:"size:192"`
	Quantities     StringArray `json:"quantities" gorm:"type:jsonb"`

	// 产品快照
	ProductID   string `json:"product_id" gorm:"size:32;index"`
	ProductName string `json:"product_name" gorm:"size:128"`
	ProductCode string `json:"product_code" gorm:"size:64"`
	Category    string `json:"category" gorm:"size:64"`
	UOM         string `json:"uom" gorm:"size:20"`

	Sequence  int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *Material `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (PartNameDetail) TableName() string {
	return "mes_bom_part_names"
}
