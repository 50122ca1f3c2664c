package handler

import (
	"errors"

	"walletstore/internal/adapter/http/dto"
	"walletstore/internal/core/domain"
	"walletstore/internal/core/ports"
	"walletstore/pkg/apperror"
	"walletstore/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet endpoints keyed by phone number.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetWallet handles GET /api/v1/wallets/:phone.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	w, err := h.walletSvc.GetWallet(c.Request.Context(), c.Param("phone"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toWalletResponse(w))
}

// SaveWallet handles PUT /api/v1/wallets/:phone.
func (h *WalletHandler) SaveWallet(c *gin.Context) {
	var req dto.SaveWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	w, err := h.walletSvc.SaveWallet(c.Request.Context(), c.Param("phone"), req.Data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toWalletResponse(w))
}

// BatchGetWallets handles POST /api/v1/wallets/batch. Numbers that fail to
// parse are reported per entry; the rest are fetched in one round trip.
func (h *WalletHandler) BatchGetWallets(c *gin.Context) {
	var req dto.BatchWalletsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)
	ctx := c.Request.Context()

	items := make([]dto.WalletLookupResponse, len(req.PhoneNumbers))
	keys := make([]string, 0, len(req.PhoneNumbers))
	pos := make([]int, 0, len(req.PhoneNumbers))

	for i, number := range req.PhoneNumbers {
		items[i].Input = number
		key, err := h.walletSvc.Key(ctx, number)
		if err != nil {
			var appErr *apperror.AppError
			if !errors.As(err, &appErr) || !errors.Is(appErr, apperror.ErrInvalidPhoneNumber(nil)) {
				response.Error(c, err)
				return
			}
			items[i].Error = appErr.Message
			continue
		}
		items[i].Key = key
		keys = append(keys, key)
		pos = append(pos, i)
	}

	if len(keys) > 0 {
		recs, err := h.walletSvc.GetMany(ctx, keys)
		if err != nil {
			response.Error(c, err)
			return
		}
		for j, rec := range recs {
			if rec == nil {
				continue
			}
			items[pos[j]].Found = true
			items[pos[j]].Wallet = toWalletResponse(domain.WalletFromRecord(rec))
		}
	}

	response.List(c, items)
}

// GetPin handles GET /api/v1/wallets/:phone/pin.
func (h *WalletHandler) GetPin(c *gin.Context) {
	pin, err := h.walletSvc.GetPin(c.Request.Context(), c.Param("phone"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"pin": pin})
}

// GeneratePaycode handles POST /api/v1/wallets/:phone/paycode.
func (h *WalletHandler) GeneratePaycode(c *gin.Context) {
	code, err := h.walletSvc.GeneratePaycode(c.Request.Context(), c.Param("phone"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"paycode": code})
}
