package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/recipe"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type ProductionHandler struct {
	svc *service.ProductionService
}

func NewProductionHandler(svc *service.ProductionService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

// Draft GET /production/draft?bom_id=&part_name=&est_qty=
// 服务端完成配方解析与用量换算，返回未落库的草稿
func (h *ProductionHandler) Draft(c *gin.Context) {
	bomID := c.Query("bom_id")
	partName := c.Query("part_name")
	if bomID == "" && partName == "" {
		BadRequest(c, "bom_id 与 part_name 至少给一个")
		return
	}
	estQty := recipe.ParseQty(c.Query("est_qty"))

	run, err := h.svc.Draft(c.Request.Context(), bomID, partName, estQty)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"production": run})
}

// Create POST /production
func (h *ProductionHandler) Create(c *gin.Context) {
	var req service.ProductionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	userID := c.GetString("user_id")
	run, err := h.svc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, gin.H{"production": run})
}

// Update PUT /production
func (h *ProductionHandler) Update(c *gin.Context) {
	var req service.UpdateProductionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	run, err := h.svc.Update(c.Request.Context(), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"production": run})
}

// Get GET /production/:id
func (h *ProductionHandler) Get(c *gin.Context) {
	run, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{
		"production":     run,
		"status":         recipe.RunStatus(run),
		"quantity_match": recipe.QuantityMatchLabel(run),
		"can_send_to_qc": recipe.CanSendToQC(run),
	})
}

// List GET /production/all?page=&limit=
func (h *ProductionHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	runs, total, err := h.svc.List(c.Request.Context(), repository.ProductionListParams{
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"productions": runs, "total": total, "page": page, "limit": limit})
}

// ReadyForQC PATCH /production/:id/ready-for-qc
func (h *ProductionHandler) ReadyForQC(c *gin.Context) {
	run, label, err := h.svc.SendToQC(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"production": run, "quantity_match": label})
}
