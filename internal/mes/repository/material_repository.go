package repository

import (
	"context"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"gorm.io/gorm"
)

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, m *entity.Material) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MaterialRepository) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	var m entity.Material
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaterialRepository) List(ctx context.Context, kind string) ([]entity.Material, error) {
	query := r.db.WithContext(ctx).Where("deleted_at IS NULL AND status = ?", "active")
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var ms []entity.Material
	err := query.Order("code").Find(&ms).Error
	return ms, err
}
