package entity

import "time"

// Material 物料主数据（原料与胶料共用一张表，按 kind 区分）
const (
	MaterialKindRaw      = "raw_material"
	MaterialKindCompound = "compound"
)

type Material struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	Kind      string     `json:"kind" gorm:"size:20;not null;default:raw_material;index"`
	Code      string     `json:"code" gorm:"size:64;uniqueIndex"`
	Name      string     `json:"name" gorm:"size:128;not null"`
	Category  string     `json:"category" gorm:"size:64"`
	UOM       string     `json:"uom" gorm:"size:20"`
	Hardness  string     `json:"hardness" gorm:"size:32"`
	Status    string     `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

func (Material) TableName() string {
	return "mes_materials"
}
