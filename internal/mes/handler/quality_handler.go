package handler

import (
	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type QualityHandler struct {
	svc *service.QualityService
}

func NewQualityHandler(svc *service.QualityService) *QualityHandler {
	return &QualityHandler{svc: svc}
}

// Pending GET /quality/pending
func (h *QualityHandler) Pending(c *gin.Context) {
	page, limit := pageParams(c)
	runs, total, err := h.svc.ListPending(c.Request.Context(), page, limit)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"productions": runs, "total": total, "page": page, "limit": limit})
}

// Complete PATCH /production/:id/qc-done
func (h *QualityHandler) Complete(c *gin.Context) {
	run, err := h.svc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"production": run})
}
