package repository

import "gorm.io/gorm"

// Repositories MES 仓库集合
type Repositories struct {
	Material   *MaterialRepository
	BOM        *BOMRepository
	Production *ProductionRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Material:   NewMaterialRepository(db),
		BOM:        NewBOMRepository(db),
		Production: NewProductionRepository(db),
	}
}
