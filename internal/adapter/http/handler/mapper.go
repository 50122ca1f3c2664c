package handler

import (
	"time"

	"walletstore/internal/adapter/http/dto"
	"walletstore/internal/core/domain"
	"walletstore/internal/core/ports"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toWalletResponse(w *domain.Wallet) *dto.WalletResponse {
	resp := &dto.WalletResponse{
		Key:         w.Key,
		PhoneNumber: w.PhoneNumber,
		Data:        w.Data,
		CreatedAt:   formatTime(w.CreatedAt),
		UpdatedAt:   formatTime(w.UpdatedAt),
	}
	if w.IsDeleted() {
		s := formatTime(*w.DeletedAt)
		resp.DeletedAt = &s
	}
	return resp
}

func toReceiptResponse(r *domain.Receipt) dto.ReceiptResponse {
	return dto.ReceiptResponse{
		ID:         r.ID,
		Key:        r.Key,
		Data:       r.Data,
		ReceivedAt: formatTime(r.ReceivedAt),
	}
}

func toRecordResponse(key string, rec *domain.Record) dto.RecordResponse {
	if rec == nil {
		return dto.RecordResponse{Key: key}
	}
	return dto.RecordResponse{Key: rec.Key, Found: true, Fields: rec.Fields}
}

func toSearchHits(hits []ports.SearchHit) []dto.SearchHitResponse {
	out := make([]dto.SearchHitResponse, len(hits))
	for i, h := range hits {
		out[i] = dto.SearchHitResponse{Key: h.Key, Fields: h.Fields}
	}
	return out
}
