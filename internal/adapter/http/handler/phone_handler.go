package handler

import (
	"walletstore/internal/adapter/http/dto"
	"walletstore/internal/core/ports"
	"walletstore/pkg/response"

	"github.com/gin-gonic/gin"
)

// PhoneHandler exposes phone number normalization.
type PhoneHandler struct {
	walletSvc ports.WalletService
}

// NewPhoneHandler creates a new PhoneHandler.
func NewPhoneHandler(walletSvc ports.WalletService) *PhoneHandler {
	return &PhoneHandler{walletSvc: walletSvc}
}

// Normalize handles POST /api/v1/phone/normalize.
func (h *PhoneHandler) Normalize(c *gin.Context) {
	var req dto.NormalizePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	e164, err := h.walletSvc.ToE164(req.PhoneNumber, req.Country)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NormalizePhoneResponse{Input: req.PhoneNumber, E164: e164})
}
