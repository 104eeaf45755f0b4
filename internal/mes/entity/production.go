package entity

import "time"

// 生产状态（工序与整单共用）
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"

	// 历史数据中存在的遗留叫法，展示时等同于 completed
	StatusProductionStart    = "production start"
	StatusProductionStartAlt = "production_start"
)

// 消耗行类型
const (
	LineKindRawMaterial = "raw_material"
	LineKindAccelerator = "accelerator"
)

// ProductionRun 生产记录
// ready_for_qc / qc_done 是单向标志：送检后生产侧不再修改，
// 除非走管理员通道
type ProductionRun struct {
	ID      string `json:"_id" gorm:"primaryKey;type:uuid"`
	RunCode string `json:"run_code" gorm:"size:50;uniqueIndex"`
	BOMID   string `json:"bom" gorm:"size:32;not null;index"`
	Status  string `json:"status" gorm:"size:32;not null;default:pending"`

	PartNames []OutputLine      `json:"part_names" gorm:"foreignKey:RunID"`
	Lines     []ConsumptionLine `json:"-" gorm:"foreignKey:RunID"`
	Processes []ProcessStep     `json:"processes" gorm:"foreignKey:RunID"`

	// 按类型拆分后的视图，入库前合并回 Lines
	RawMaterials []ConsumptionLine `json:"raw_materials" gorm:"-"`
	Accelerators []ConsumptionLine `json:"accelerators" gorm:"-"`

	ReadyForQC bool `json:"ready_for_qc" gorm:"not null;default:false;index"`
	QCDone     bool `json:"qc_done" gorm:"not null;default:false;index"`

	CreatedBy string     `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	BOM *BillOfMaterial `json:"bom_detail,omitempty" gorm:"foreignKey:BOMID"`
}

func (ProductionRun) TableName() string {
	return "mes_productions"
}

// Output 产出行。part_names 恒为单元素，取第一个
func (r *ProductionRun) Output() *OutputLine {
	if len(r.PartNames) == 0 {
		return nil
	}
	return &r.PartNames[0]
}

// SplitLines 把 Lines 按类型拆到 RawMaterials / Accelerators
func (r *ProductionRun) SplitLines() {
	r.RawMaterials = r.RawMaterials[:0]
	r.Accelerators = r.Accelerators[:0]
	for _, l := range r.Lines {
		switch l.Kind {
		case LineKindAccelerator:
			r.Accelerators = append(r.Accelerators, l)
		default:
			r.RawMaterials = append(r.RawMaterials, l)
		}
	}
}

// MergeLines 把拆分视图合并回 Lines，并写回类型与序号
func (r *ProductionRun) MergeLines() {
	r.Lines = r.Lines[:0]
	for i := range r.RawMaterials {
		r.RawMaterials[i].RunID = r.ID
		r.RawMaterials[i].Kind = LineKindRawMaterial
		r.RawMaterials[i].Sequence = i
		r.Lines = append(r.Lines, r.RawMaterials[i])
	}
	for i := range r.Accelerators {
		r.Accelerators[i].RunID = r.ID
		r.Accelerators[i].Kind = LineKindAccelerator
		r.Accelerators[i].Sequence = i
		r.Lines = append(r.Lines, r.Accelerators[i])
	}
}

// OutputLine 产出行，remain_qty = est_qty - prod_qty，只派生不录入
type OutputLine struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	RunID        string    `json:"run_id" gorm:"type:uuid;not null;index"`
	CompoundName string    `json:"compound_name" gorm:"size:128"`
	CompoundCode string    `json:"compound_code" gorm:"size:64"`
	EstQty       float64   `json:"est_qty" gorm:"type:decimal(15,6);not null;default:0"`
	ProdQty      float64   `json:"prod_qty" gorm:"type:decimal(15,6);not null;default:0"`
	RemainQty    float64   `json:"remain_qty" gorm:"type:decimal(15,6);not null;default:0"`
	UOM          string    `json:"uom" gorm:"size:20"`
	Category     string    `json:"category" gorm:"size:64"`
	Comment      string    `json:"comment" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (OutputLine) TableName() string {
	return "mes_production_outputs"
}

// ConsumptionLine 消耗行（原料与促进剂同构，促进剂无 code/category/物料引用）
// base_qty 在配方解析时一次算定，之后不变；est_qty 随产出预估量整体重算
type ConsumptionLine struct {
	ID         string  `json:"id" gorm:"primaryKey;type:uuid"`
	RunID      string  `json:"run_id" gorm:"type:uuid;not null;index"`
	Kind       string  `json:"-" gorm:"size:20;not null;default:raw_material;index"`
	MaterialID string  `json:"raw_material_id,omitempty" gorm:"size:32"`
	Name       string  `json:"name" gorm:"size:128"`
	Code       string  `json:"code,omitempty" gorm:"size:64"`
	BOMQty     float64 `json:"quantity" gorm:"type:decimal(15,6);not null;default:0"` // 配方原始用量
	BaseQty    float64 `json:"base_qty" gorm:"type:decimal(20,10);not null;default:0"`
	EstQty     float64 `json:"est_qty" gorm:"type:decimal(15,6);not null;default:0"`
	UsedQty    float64 `json:"used_qty" gorm:"type:decimal(15,6);not null;default:0"`
	RemainQty  float64 `json:"remain_qty" gorm:"type:decimal(15,6);not null;default:0"`
	UOM        string  `json:"uom" gorm:"size:20"`
	Category   string  `json:"category,omitempty" gorm:"size:64"`
	Comment    string  `json:"comment" gorm:"type:text"`
	Sequence   int     `json:"sequence" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ConsumptionLine) TableName() string {
	return "mes_production_lines"
}

// ProcessStep 工序行。status 恒由 start/done 派生，不允许直接设置
type ProcessStep struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	RunID       string    `json:"run_id" gorm:"type:uuid;not null;index"`
	ProcessName string    `json:"process_name" gorm:"size:64;not null"`
	WorkDone    float64   `json:"work_done" gorm:"type:decimal(15,6);not null;default:0"`
	Start       bool      `json:"start" gorm:"not null;default:false"`
	Done        bool      `json:"done" gorm:"not null;default:false"`
	Status      string    `json:"status" gorm:"size:20;not null;default:pending"`
	Sequence    int       `json:"sequence" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ProcessStep) TableName() string {
	return "mes_production_processes"
}
