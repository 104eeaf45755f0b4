package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/recipe"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductionService 生产记录服务。
// 所有派生字段（est/remain/状态）由服务端重算，不信任请求携带的值
type ProductionService struct {
	repo   *repository.ProductionRepository
	bomSvc *BOMService
}

func NewProductionService(repo *repository.ProductionRepository, bomSvc *BOMService) *ProductionService {
	return &ProductionService{repo: repo, bomSvc: bomSvc}
}

// OutputPayload 产出行的可录入字段。
// est_qty/comment 用指针区分"未提交"与"提交了零值"：
// est_qty 带0触发整体归零重算，comment 带空串清空备注
type OutputPayload struct {
	EstQty  *float64 `json:"est_qty"`
	ProdQty float64  `json:"prod_qty"`
	Comment *string  `json:"comment"`
}

// LinePayload 消耗行的可录入字段
type LinePayload struct {
	MaterialID string  `json:"raw_material_id"`
	Name       string  `json:"name"`
	UsedQty    float64 `json:"used_qty"`
	Comment    *string `json:"comment"`
}

// ProcessPayload 工序的可录入字段。status 不收，恒由开关派生
type ProcessPayload struct {
	ProcessName string  `json:"process_name"`
	WorkDone    float64 `json:"work_done"`
	Start       bool    `json:"start"`
	Done        bool    `json:"done"`
}

// ProductionPayload 新建/更新生产记录的公共载荷
type ProductionPayload struct {
	BOMID        string           `json:"bom" binding:"required"`
	PartName     string           `json:"part_name"`
	PartNames    []OutputPayload  `json:"part_names" binding:"required,min=1,max=1"`
	RawMaterials []LinePayload    `json:"raw_materials"`
	Accelerators []LinePayload    `json:"accelerators"`
	Processes    []ProcessPayload `json:"processes"`
}

// UpdateProductionPayload 更新载荷。admin_override 是送检后的管理员修改通道
type UpdateProductionPayload struct {
	ID            string `json:"_id" binding:"required"`
	AdminOverride bool   `json:"admin_override"`
	ProductionPayload
}

// Draft 服务端解析+换算，生成未落库的生产草稿
func (s *ProductionService) Draft(ctx context.Context, bomID, partName string, estQty float64) (*entity.ProductionRun, error) {
	rc, _, err := s.bomSvc.Resolve(ctx, bomID, partName)
	if err != nil {
		return nil, err
	}
	return recipe.BuildDraft(rc, estQty), nil
}

// Create 新建生产记录：配方解析 → 换算 → 套用操作员录入 → 校验 → 落库
func (s *ProductionService) Create(ctx context.Context, req *ProductionPayload, userID string) (*entity.ProductionRun, error) {
	rc, _, err := s.bomSvc.Resolve(ctx, req.BOMID, req.PartName)
	if err != nil {
		return nil, err
	}

	var est float64
	if req.PartNames[0].EstQty != nil {
		est = *req.PartNames[0].EstQty
	}
	run := recipe.BuildDraft(rc, est)
	run.ID = uuid.New().String()
	run.RunCode = newRunCode(time.Now())
	run.CreatedBy = userID

	if err := s.overlay(run, req); err != nil {
		return nil, err
	}
	s.derive(run)
	if err := recipe.ValidateRun(run); err != nil {
		return nil, err
	}
	stampRunChildren(run)

	if err := s.repo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("创建生产记录失败: %w", err)
	}
	return run, nil
}

// Update 更新生产记录。送检后的记录只接受管理员通道的修改。
// 产出预估量变化时全行重算 est_qty = base_qty × v，used_qty 原样保留
func (s *ProductionService) Update(ctx context.Context, req *UpdateProductionPayload) (*entity.ProductionRun, error) {
	run, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if run.ReadyForQC && !req.AdminOverride {
		return nil, fmt.Errorf("生产记录 %s 已送检，生产侧不可修改", run.RunCode)
	}

	if v := req.PartNames[0].EstQty; v != nil {
		recipe.Rescale(run, *v)
	}
	if err := s.overlay(run, &req.ProductionPayload); err != nil {
		return nil, err
	}
	s.derive(run)
	if err := recipe.ValidateRun(run); err != nil {
		return nil, err
	}
	stampRunChildren(run)

	if err := s.repo.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("更新生产记录失败: %w", err)
	}
	return run, nil
}

// Get 按ID取生产记录
func (s *ProductionService) Get(ctx context.Context, id string) (*entity.ProductionRun, error) {
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &recipe.NotFoundError{What: "生产记录 " + id}
		}
		return nil, fmt.Errorf("查询生产记录失败: %w", err)
	}
	return run, nil
}

// List 分页查询生产记录
func (s *ProductionService) List(ctx context.Context, params repository.ProductionListParams) ([]entity.ProductionRun, int64, error) {
	return s.repo.List(ctx, params)
}

// SendToQC 送检。闸门：工序全部完成且剩余量全部归零。
// ready_for_qc 为单向标志，置位后由 QC 接管
func (s *ProductionService) SendToQC(ctx context.Context, id string) (*entity.ProductionRun, string, error) {
	run, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if run.ReadyForQC {
		return nil, "", fmt.Errorf("生产记录 %s 已送检", run.RunCode)
	}
	if run.QCDone {
		return nil, "", fmt.Errorf("生产记录 %s 质检已完成", run.RunCode)
	}
	if !recipe.CanSendToQC(run) {
		return nil, "", fmt.Errorf("生产记录 %s 不满足送检条件：工序需全部完成且剩余量归零", run.RunCode)
	}

	run.ReadyForQC = true
	run.Status = entity.StatusCompleted
	if err := s.repo.UpdateFlags(ctx, run); err != nil {
		return nil, "", fmt.Errorf("送检失败: %w", err)
	}
	return run, recipe.QuantityMatchLabel(run), nil
}

// overlay 把操作员可录入的字段套到草稿/存量记录上。
// 行按物料ID（其次名称）匹配，配方里没有的行直接忽略
func (s *ProductionService) overlay(run *entity.ProductionRun, req *ProductionPayload) error {
	if out := run.Output(); out != nil {
		p := req.PartNames[0]
		out.ProdQty = p.ProdQty
		if p.Comment != nil {
			out.Comment = *p.Comment
		}
	}

	overlayLines(run.RawMaterials, req.RawMaterials)
	overlayLines(run.Accelerators, req.Accelerators)

	for _, p := range req.Processes {
		for i := range run.Processes {
			if run.Processes[i].ProcessName == p.ProcessName {
				run.Processes[i].WorkDone = p.WorkDone
				run.Processes[i].Start = p.Start
				run.Processes[i].Done = p.Done
				break
			}
		}
	}
	return nil
}

func overlayLines(lines []entity.ConsumptionLine, payloads []LinePayload) {
	for _, p := range payloads {
		for i := range lines {
			if matchLine(&lines[i], &p) {
				lines[i].UsedQty = p.UsedQty
				if p.Comment != nil {
					lines[i].Comment = *p.Comment
				}
				break
			}
		}
	}
}

func matchLine(line *entity.ConsumptionLine, p *LinePayload) bool {
	if p.MaterialID != "" && line.MaterialID != "" {
		return line.MaterialID == p.MaterialID
	}
	return p.Name != "" && line.Name == p.Name
}

// derive 重算全部派生字段：工序状态、整单状态、剩余量
func (s *ProductionService) derive(run *entity.ProductionRun) {
	recipe.DeriveSteps(run.Processes)
	run.Status = recipe.AggregateStatus(run.Processes)
	recipe.DeriveRemainders(run)
}

// newRunCode 单号带uuid后缀，同一天批量建单也不会撞唯一索引
func newRunCode(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("PR-%s-%s", now.Format("20060102"), suffix)
}

// stampRunChildren 补齐子表ID与外键
func stampRunChildren(run *entity.ProductionRun) {
	for i := range run.PartNames {
		if run.PartNames[i].ID == "" {
			run.PartNames[i].ID = uuid.New().String()
		}
		run.PartNames[i].RunID = run.ID
	}
	for i := range run.RawMaterials {
		if run.RawMaterials[i].ID == "" {
			run.RawMaterials[i].ID = uuid.New().String()
		}
		run.RawMaterials[i].RunID = run.ID
	}
	for i := range run.Accelerators {
		if run.Accelerators[i].ID == "" {
			run.Accelerators[i].ID = uuid.New().String()
		}
		run.Accelerators[i].RunID = run.ID
	}
	for i := range run.Processes {
		if run.Processes[i].ID == "" {
			run.Processes[i].ID = uuid.New().String()
		}
		run.Processes[i].RunID = run.ID
	}
}
