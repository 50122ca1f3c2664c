package handler

import (
	"walletstore/internal/adapter/http/dto"
	"walletstore/internal/core/domain"
	"walletstore/internal/core/ports"
	"walletstore/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReceiptHandler handles receipt endpoints.
type ReceiptHandler struct {
	walletSvc ports.WalletService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(walletSvc ports.WalletService) *ReceiptHandler {
	return &ReceiptHandler{walletSvc: walletSvc}
}

// SaveReceipt handles POST /api/v1/receipts.
func (h *ReceiptHandler) SaveReceipt(c *gin.Context) {
	var req dto.SaveReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	in := &domain.Receipt{ID: req.ID, Data: req.Data}
	if req.ReceivedAt != nil {
		in.ReceivedAt = *req.ReceivedAt
	}

	r, err := h.walletSvc.Save(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toReceiptResponse(r))
}

// GetReceipt handles GET /api/v1/receipts/:id.
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	r, err := h.walletSvc.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toReceiptResponse(r))
}
