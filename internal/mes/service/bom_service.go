package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/recipe"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	partNamesCacheKey = "mes:bom:part_names"
	partNamesCacheTTL = 5 * time.Minute
)

// BOMService 配方服务
type BOMService struct {
	repo    *repository.BOMRepository
	matRepo *repository.MaterialRepository
	rdb     *redis.Client
}

func NewBOMService(repo *repository.BOMRepository, matRepo *repository.MaterialRepository, rdb *redis.Client) *BOMService {
	return &BOMService{repo: repo, matRepo: matRepo, rdb: rdb}
}

// CreateMaterial 新建物料主数据
func (s *BOMService) CreateMaterial(ctx context.Context, m *entity.Material) (*entity.Material, error) {
	if m.ID == "" {
		m.ID = newBOMID()
	}
	if m.Kind == "" {
		m.Kind = entity.MaterialKindRaw
	}
	if m.Status == "" {
		m.Status = "active"
	}
	if err := s.matRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("创建物料失败: %w", err)
	}
	return m, nil
}

// ListMaterials 在用物料，配方录入时的下拉数据源
func (s *BOMService) ListMaterials(ctx context.Context, kind string) ([]entity.Material, error) {
	ms, err := s.matRepo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("查询物料失败: %w", err)
	}
	return ms, nil
}

// Get 按ID取完整配方
func (s *BOMService) Get(ctx context.Context, id string) (*entity.BillOfMaterial, error) {
	bom, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &recipe.NotFoundError{What: "BOM " + id}
		}
		return nil, fmt.Errorf("查询BOM失败: %w", err)
	}
	return bom, nil
}

// GetByPartName 按部件名取配方与对应部件明细
func (s *BOMService) GetByPartName(ctx context.Context, partName string) (*entity.BillOfMaterial, *entity.PartNameDetail, error) {
	details, err := s.repo.ListPartDetails(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("查询部件明细失败: %w", err)
	}
	for i := range details {
		if recipe.DisplayPartName(&details[i]) == partName {
			bom, err := s.Get(ctx, details[i].BOMID)
			if err != nil {
				return nil, nil, err
			}
			return bom, &details[i], nil
		}
	}
	return nil, nil, &recipe.NotFoundError{What: "部件 " + partName}
}

// ListPartNames 全部部件显示名，redis 缓存5分钟，配方写入时失效
func (s *BOMService) ListPartNames(ctx context.Context) ([]string, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, partNamesCacheKey).Result(); err == nil {
			var names []string
			if json.Unmarshal([]byte(cached), &names) == nil {
				return names, nil
			}
		}
	}

	details, err := s.repo.ListPartDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("查询部件明细失败: %w", err)
	}
	seen := make(map[string]bool)
	names := make([]string, 0, len(details))
	for i := range details {
		name := recipe.DisplayPartName(&details[i])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(names); err == nil {
			s.rdb.Set(ctx, partNamesCacheKey, data, partNamesCacheTTL)
		}
	}
	return names, nil
}

// Resolve 配方解析入口：按ID或部件名取配方并规范化
func (s *BOMService) Resolve(ctx context.Context, bomID, partName string) (*recipe.ResolvedRecipe, *entity.BillOfMaterial, error) {
	var (
		bom *entity.BillOfMaterial
		err error
	)
	if bomID != "" {
		bom, err = s.Get(ctx, bomID)
	} else {
		bom, _, err = s.GetByPartName(ctx, partName)
	}
	if err != nil {
		return nil, nil, err
	}
	rc, err := recipe.Normalize(bom, partName)
	if err != nil {
		return nil, nil, err
	}
	return rc, bom, nil
}

// CreateBOMRequest 新建配方请求，明细直接用实体形状
type CreateBOMRequest struct {
	BOMType         string                   `json:"bom_type" binding:"required,oneof=compound part-name"`
	CompoundName    string                   `json:"compound_name"`
	CompoundCodes   []string                 `json:"compound_codes"`
	CompoundWeight  string                   `json:"compound_weight"`
	Hardness        string                   `json:"hardness"`
	Processes       []string                 `json:"processes"`
	Process1        string                   `json:"process1"`
	Process2        string                   `json:"process2"`
	Process3        string                   `json:"process3"`
	Process4        string                   `json:"process4"`
	RawMaterials    []entity.RawMaterialLine `json:"raw_materials"`
	Accelerators    []entity.AcceleratorLine `json:"accelerators"`
	Compounds       []entity.CompoundDetail  `json:"compounds"`
	PartNameDetails []entity.PartNameDetail  `json:"part_name_details"`
	Remarks         string                   `json:"remarks"`
}

// Create 新建配方
func (s *BOMService) Create(ctx context.Context, req *CreateBOMRequest, userID string) (*entity.BillOfMaterial, error) {
	bom := &entity.BillOfMaterial{
		ID:              newBOMID(),
		BOMType:         req.BOMType,
		CompoundName:    req.CompoundName,
		CompoundCodes:   req.CompoundCodes,
		CompoundWeight:  req.CompoundWeight,
		Hardness:        req.Hardness,
		Processes:       req.Processes,
		Process1:        req.Process1,
		Process2:        req.Process2,
		Process3:        req.Process3,
		Process4:        req.Process4,
		RawMaterials:    req.RawMaterials,
		Accelerators:    req.Accelerators,
		Compounds:       req.Compounds,
		PartNameDetails: req.PartNameDetails,
		Remarks:         req.Remarks,
		CreatedBy:       userID,
	}
	stampBOMChildren(bom)
	s.hydrateSnapshots(ctx, bom)

	if err := s.repo.Create(ctx, bom); err != nil {
		return nil, fmt.Errorf("创建BOM失败: %w", err)
	}
	s.invalidatePartNames(ctx)
	return bom, nil
}

// Update 整单覆盖更新配方
func (s *BOMService) Update(ctx context.Context, id string, req *CreateBOMRequest, userID string) (*entity.BillOfMaterial, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.BOMType = req.BOMType
	existing.CompoundName = req.CompoundName
	existing.CompoundCodes = req.CompoundCodes
	existing.CompoundWeight = req.CompoundWeight
	existing.Hardness = req.Hardness
	existing.Processes = req.Processes
	existing.Process1 = req.Process1
	existing.Process2 = req.Process2
	existing.Process3 = req.Process3
	existing.Process4 = req.Process4
	existing.RawMaterials = req.RawMaterials
	existing.Accelerators = req.Accelerators
	existing.Compounds = req.Compounds
	existing.PartNameDetails = req.PartNameDetails
	existing.Remarks = req.Remarks
	stampBOMChildren(existing)
	s.hydrateSnapshots(ctx, existing)

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("更新BOM失败: %w", err)
	}
	s.invalidatePartNames(ctx)
	return existing, nil
}

// List 分页查询配方
func (s *BOMService) List(ctx context.Context, params repository.BOMListParams) ([]entity.BillOfMaterial, int64, error) {
	return s.repo.List(ctx, params)
}

func (s *BOMService) invalidatePartNames(ctx context.Context) {
	if s.rdb != nil {
		s.rdb.Del(ctx, partNamesCacheKey)
	}
}

// stampBOMChildren 补齐明细行的ID、外键与序号
func stampBOMChildren(bom *entity.BillOfMaterial) {
	for i := range bom.RawMaterials {
		if bom.RawMaterials[i].ID == "" {
			bom.RawMaterials[i].ID = newBOMID()
		}
		bom.RawMaterials[i].BOMID = bom.ID
		bom.RawMaterials[i].Sequence = i
	}
	for i := range bom.Accelerators {
		if bom.Accelerators[i].ID == "" {
			bom.Accelerators[i].ID = newBOMID()
		}
		bom.Accelerators[i].BOMID = bom.ID
		bom.Accelerators[i].Sequence = i
	}
	for i := range bom.Compounds {
		if bom.Compounds[i].ID == "" {
			bom.Compounds[i].ID = newBOMID()
		}
		bom.Compounds[i].BOMID = bom.ID
		bom.Compounds[i].Sequence = i
	}
	for i := range bom.PartNameDetails {
		if bom.PartNameDetails[i].ID == "" {
			bom.PartNameDetails[i].ID = newBOMID()
		}
		bom.PartNameDetails[i].BOMID = bom.ID
		bom.PartNameDetails[i].Sequence = i
	}
}

// hydrateSnapshots 只挂了物料ID的原料行从主数据补齐快照字段，
// 查不到的行原样保留，不阻塞建单
func (s *BOMService) hydrateSnapshots(ctx context.Context, bom *entity.BillOfMaterial) {
	for i := range bom.RawMaterials {
		line := &bom.RawMaterials[i]
		if line.MaterialID == "" || line.MaterialName != "" {
			continue
		}
		m, err := s.matRepo.GetByID(ctx, line.MaterialID)
		if err != nil {
			continue
		}
		line.MaterialName = m.Name
		line.MaterialCode = m.Code
		line.Category = m.Category
		line.UOM = m.UOM
	}
}

// newBOMID 32位无连字符的uuid，与历史主键宽度保持一致
func newBOMID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
