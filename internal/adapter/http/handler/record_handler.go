package handler

import (
	"walletstore/internal/adapter/http/dto"
	"walletstore/internal/core/ports"
	"walletstore/pkg/response"

	"github.com/gin-gonic/gin"
)

// RecordHandler exposes raw record lookups and search.
type RecordHandler struct {
	walletSvc ports.WalletService
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(walletSvc ports.WalletService) *RecordHandler {
	return &RecordHandler{walletSvc: walletSvc}
}

// BatchGetRecords handles POST /api/v1/records/batch.
func (h *RecordHandler) BatchGetRecords(c *gin.Context) {
	var req dto.BatchRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	recs, err := h.walletSvc.GetMany(c.Request.Context(), req.Keys)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.RecordResponse, len(req.Keys))
	for i, key := range req.Keys {
		items[i] = toRecordResponse(key, recs[i])
	}
	response.List(c, items)
}

// Search handles GET /api/v1/search?q=.
func (h *RecordHandler) Search(c *gin.Context) {
	var q dto.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}

	hits, err := h.walletSvc.Search(c.Request.Context(), q.Q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, toSearchHits(hits))
}
