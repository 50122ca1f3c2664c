package dto

import "time"

// SaveWalletRequest is the request body for PUT /api/v1/wallets/:phone.
type SaveWalletRequest struct {
	Data map[string]string `json:"data" binding:"required,min=1,max=256,dive,keys,safe_id,max=64,endkeys,max=4096"`
}

// SaveReceiptRequest is the request body for POST /api/v1/receipts.
// ID and ReceivedAt are assigned by the service when omitted.
type SaveReceiptRequest struct {
	ID         string            `json:"id,omitempty" binding:"omitempty,safe_id,max=128"`
	Data       map[string]string `json:"data" binding:"required,min=1,max=256,dive,keys,safe_id,max=64,endkeys,max=4096"`
	ReceivedAt *time.Time        `json:"received_at,omitempty"`
}

// BatchWalletsRequest is the request body for POST /api/v1/wallets/batch.
type BatchWalletsRequest struct {
	PhoneNumbers []string `json:"phone_numbers" binding:"required,min=1,max=100,dive,required,max=32"`
}

// BatchRecordsRequest is the request body for POST /api/v1/records/batch.
type BatchRecordsRequest struct {
	Keys []string `json:"keys" binding:"required,min=1,max=100,dive,required,max=512"`
}

// NormalizePhoneRequest is the request body for POST /api/v1/phone/normalize.
type NormalizePhoneRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,max=32,phone_input"`
	Country     string `json:"country,omitempty" binding:"omitempty,len=2,alpha"`
}

// NormalizePhoneResponse is the response for phone normalization.
type NormalizePhoneResponse struct {
	Input string `json:"input"`
	E164  string `json:"e164"`
}

// WalletResponse is the response body for a wallet.
type WalletResponse struct {
	Key         string            `json:"key"`
	PhoneNumber string            `json:"phone_number"`
	Data        map[string]string `json:"data"`
	CreatedAt   string            `json:"created_at,omitempty"`
	UpdatedAt   string            `json:"updated_at,omitempty"`
	DeletedAt   *string           `json:"deleted_at,omitempty"`
}

// WalletLookupResponse is one entry of a batch wallet lookup. Exactly one
// of Wallet and Error is set unless the wallet does not exist.
type WalletLookupResponse struct {
	Input  string          `json:"input"`
	Key    string          `json:"key,omitempty"`
	Found  bool            `json:"found"`
	Wallet *WalletResponse `json:"wallet,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// ReceiptResponse is the response body for a receipt.
type ReceiptResponse struct {
	ID         string            `json:"id"`
	Key        string            `json:"key"`
	Data       map[string]string `json:"data"`
	ReceivedAt string            `json:"received_at,omitempty"`
}

// RecordResponse is one entry of a batch record lookup. Fields is null
// when the key does not exist.
type RecordResponse struct {
	Key    string                 `json:"key"`
	Found  bool                   `json:"found"`
	Fields map[string]interface{} `json:"fields"`
}

// SearchHitResponse is one search result.
type SearchHitResponse struct {
	Key    string            `json:"key"`
	Fields map[string]string `json:"fields"`
}

// SearchQuery is the query string for GET /api/v1/search.
type SearchQuery struct {
	Q string `form:"q" binding:"required,max=256"`
}
