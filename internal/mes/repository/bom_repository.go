package repository

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type BOMRepository struct {
	db *gorm.DB
}

func NewBOMRepository(db *gorm.DB) *BOMRepository {
	return &BOMRepository{db: db}
}

func (r *BOMRepository) Create(ctx context.Context, bom *entity.BillOfMaterial) error {
	return r.db.WithContext(ctx).Create(bom).Error
}

// GetByID 取完整配方，含各类明细与物料引用
func (r *BOMRepository) GetByID(ctx context.Context, id string) (*entity.BillOfMaterial, error) {
	var bom entity.BillOfMaterial
	err := r.db.WithContext(ctx).
		Preload("RawMaterials", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("RawMaterials.Material").
		Preload("Accelerators", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("Compounds", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("Compounds.Compound").
		Preload("PartNameDetails", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("PartNameDetails.Product").
		Where("id = ? AND deleted_at IS NULL", id).
		First(&bom).Error
	if err != nil {
		return nil, err
	}
	return &bom, nil
}

// Update 整单覆盖：明细行先删后建，主表保存
func (r *BOMRepository) Update(ctx context.Context, bom *entity.BillOfMaterial) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&entity.RawMaterialLine{}, &entity.AcceleratorLine{},
			&entity.CompoundDetail{}, &entity.PartNameDetail{},
		} {
			if err := tx.Where("bom_id = ?", bom.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(bom).Error
	})
}

type BOMListParams struct {
	BOMType string
	Keyword string
	Page    int
	Limit   int
}

func (r *BOMRepository) List(ctx context.Context, params BOMListParams) ([]entity.BillOfMaterial, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.BillOfMaterial{}).Where("deleted_at IS NULL")
	if params.BOMType != "" {
		query = query.Where("bom_type = ?", params.BOMType)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("compound_name ILIKE ?", kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}
	var boms []entity.BillOfMaterial
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Limit).Limit(params.Limit).
		Find(&boms).Error
	return boms, total, err
}

// ListPartDetails 取全部 part-name 配方的部件明细（显示名在内存里解析，
// 因为历史数据的名称可能藏在复合串里，数据库查不动）
func (r *BOMRepository) ListPartDetails(ctx context.Context) ([]entity.PartNameDetail, error) {
	var details []entity.PartNameDetail
	err := r.db.WithContext(ctx).
		Joins("JOIN mes_boms ON mes_boms.id = mes_bom_part_names.bom_id AND mes_boms.deleted_at IS NULL").
		Where("mes_boms.bom_type = ?", entity.BOMTypePartName).
		Preload("Product").
		Order("mes_bom_part_names.sequence").
		Find(&details).Error
	return details, err
}
