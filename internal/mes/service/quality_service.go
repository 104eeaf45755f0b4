package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/recipe"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"gorm.io/gorm"
)

// QualityService 质检侧流程：待检清单与质检完成
type QualityService struct {
	repo *repository.ProductionRepository
}

func NewQualityService(repo *repository.ProductionRepository) *QualityService {
	return &QualityService{repo: repo}
}

// ListPending 已送检、质检未完成的生产记录
func (s *QualityService) ListPending(ctx context.Context, page, limit int) ([]entity.ProductionRun, int64, error) {
	ready := true
	done := false
	return s.repo.List(ctx, repository.ProductionListParams{
		ReadyForQC: &ready,
		QCDone:     &done,
		Page:       page,
		Limit:      limit,
	})
}

// Complete 质检完成。qc_done 单向置位，要求记录已送检
func (s *QualityService) Complete(ctx context.Context, id string) (*entity.ProductionRun, error) {
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &recipe.NotFoundError{What: "生产记录 " + id}
		}
		return nil, fmt.Errorf("查询生产记录失败: %w", err)
	}
	if !run.ReadyForQC {
		return nil, fmt.Errorf("生产记录 %s 尚未送检", run.RunCode)
	}
	if run.QCDone {
		return nil, fmt.Errorf("生产记录 %s 质检已完成", run.RunCode)
	}

	run.QCDone = true
	if err := s.repo.UpdateFlags(ctx, run); err != nil {
		return nil, fmt.Errorf("标记质检完成失败: %w", err)
	}
	return run, nil
}
