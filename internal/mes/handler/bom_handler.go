package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/entity"
	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type BOMHandler struct {
	svc *service.BOMService
}

func NewBOMHandler(svc *service.BOMService) *BOMHandler {
	return &BOMHandler{svc: svc}
}

// Get GET /bom/:id
func (h *BOMHandler) Get(c *gin.Context) {
	bom, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"bom": bom})
}

// GetByPartName GET /bom/by-part-name?part_name=
func (h *BOMHandler) GetByPartName(c *gin.Context) {
	partName := c.Query("part_name")
	if partName == "" {
		BadRequest(c, "part_name 不能为空")
		return
	}
	bom, detail, err := h.svc.GetByPartName(c.Request.Context(), partName)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"bom": bom, "partDetail": detail})
}

// ListPartNames GET /bom/part-names
func (h *BOMHandler) ListPartNames(c *gin.Context) {
	names, err := h.svc.ListPartNames(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"partNames": names})
}

// List GET /bom
func (h *BOMHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	boms, total, err := h.svc.List(c.Request.Context(), repository.BOMListParams{
		BOMType: c.Query("bom_type"),
		Keyword: c.Query("keyword"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": boms, "total": total, "page": page, "limit": limit})
}

// Create POST /bom
func (h *BOMHandler) Create(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	userID := c.GetString("user_id")
	bom, err := h.svc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, gin.H{"bom": bom})
}

// ListMaterials GET /materials?kind=
func (h *BOMHandler) ListMaterials(c *gin.Context) {
	ms, err := h.svc.ListMaterials(c.Request.Context(), c.Query("kind"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"materials": ms})
}

// CreateMaterial POST /materials
func (h *BOMHandler) CreateMaterial(c *gin.Context) {
	var m entity.Material
	if err := c.ShouldBindJSON(&m); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if m.Name == "" {
		BadRequest(c, "物料名称不能为空")
		return
	}
	created, err := h.svc.CreateMaterial(c.Request.Context(), &m)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, gin.H{"material": created})
}

// Update PUT /bom/:id
func (h *BOMHandler) Update(c *gin.Context) {
	var req service.CreateBOMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	userID := c.GetString("user_id")
	bom, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"bom": bom})
}
