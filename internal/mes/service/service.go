package service

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/redis/go-redis/v9"
)

// Services MES 服务集合
type Services struct {
	BOM        *BOMService
	Production *ProductionService
	Quality    *QualityService
}

func NewServices(repos *repository.Repositories, rdb *redis.Client) *Services {
	bomSvc := NewBOMService(repos.BOM, repos.Material, rdb)
	return &Services{
		BOM:        bomSvc,
		Production: NewProductionService(repos.Production, bomSvc),
		Quality:    NewQualityService(repos.Production),
	}
}
