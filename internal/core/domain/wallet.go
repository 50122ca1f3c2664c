package domain

import "time"

// Wallet is a subscriber wallet keyed by phone number. The store owns its
// lifecycle; Data is opaque to this service.
type Wallet struct {
	Key         string            `json:"key"`
	PhoneNumber string            `json:"phone_number"` // E.164
	Data        map[string]string `json:"data"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   *time.Time        `json:"deleted_at,omitempty"`
}

// IsDeleted reports whether the store has marked the wallet deleted.
func (w *Wallet) IsDeleted() bool {
	return w.DeletedAt != nil && !w.DeletedAt.IsZero()
}

// WalletFromRecord shapes a stored record into a Wallet.
func WalletFromRecord(rec *Record) *Wallet {
	w := &Wallet{
		Key:         rec.Key,
		PhoneNumber: rec.String(FieldPhoneNumber),
		Data:        rec.Payload(FieldPhoneNumber),
	}
	w.CreatedAt, _ = rec.Time(FieldCreatedAt)
	w.UpdatedAt, _ = rec.Time(FieldUpdatedAt)
	if t, ok := rec.Time(FieldDeletedAt); ok {
		w.DeletedAt = &t
	}
	return w
}
