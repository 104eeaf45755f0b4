package repository

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type ProductionRepository struct {
	db *gorm.DB
}

func NewProductionRepository(db *gorm.DB) *ProductionRepository {
	return &ProductionRepository{db: db}
}

func (r *ProductionRepository) Create(ctx context.Context, run *entity.ProductionRun) error {
	run.MergeLines()
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *ProductionRepository) GetByID(ctx context.Context, id string) (*entity.ProductionRun, error) {
	var run entity.ProductionRun
	err := r.db.WithContext(ctx).
		Preload("PartNames").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("Processes", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	run.SplitLines()
	return &run, nil
}

// Update 整单覆盖：子表先删后建，保证行集合与请求一致
func (r *ProductionRepository) Update(ctx context.Context, run *entity.ProductionRun) error {
	run.MergeLines()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&entity.OutputLine{}, &entity.ConsumptionLine{}, &entity.ProcessStep{},
		} {
			if err := tx.Where("run_id = ?", run.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(run).Error
	})
}

// UpdateFlags 只落盘状态与单向标志，不碰明细行
func (r *ProductionRepository) UpdateFlags(ctx context.Context, run *entity.ProductionRun) error {
	return r.db.WithContext(ctx).Model(&entity.ProductionRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":       run.Status,
			"ready_for_qc": run.ReadyForQC,
			"qc_done":      run.QCDone,
		}).Error
}

type ProductionListParams struct {
	Status     string
	ReadyForQC *bool
	QCDone     *bool
	Page       int
	Limit      int
}

func (r *ProductionRepository) List(ctx context.Context, params ProductionListParams) ([]entity.ProductionRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ProductionRun{}).Where("deleted_at IS NULL")
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ReadyForQC != nil {
		query = query.Where("ready_for_qc = ?", *params.ReadyForQC)
	}
	if params.QCDone != nil {
		query = query.Where("qc_done = ?", *params.QCDone)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = 20
	}
	var runs []entity.ProductionRun
	err := query.
		Preload("PartNames").
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Preload("Processes", func(db *gorm.DB) *gorm.DB { return db.Order("sequence") }).
		Order("created_at DESC").
		Offset((params.Page - 1) * params.Limit).Limit(params.Limit).
		Find(&runs).Error
	for i := range runs {
		runs[i].SplitLines()
	}
	return runs, total, err
}
