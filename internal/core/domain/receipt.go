package domain

import "time"

// Receipt is an immutable payment receipt identified by a UUID.
type Receipt struct {
	ID         string            `json:"id"`
	Key        string            `json:"key,omitempty"`
	Data       map[string]string `json:"data"`
	ReceivedAt time.Time         `json:"received_at"`
}

// Hash flattens the receipt into storable fields.
func (r *Receipt) Hash() map[string]string {
	h := make(map[string]string, len(r.Data)+2)
	for k, v := range r.Data {
		h[k] = v
	}
	h[FieldID] = r.ID
	if !r.ReceivedAt.IsZero() {
		h[FieldReceivedAt] = FormatTime(r.ReceivedAt)
	}
	return h
}

// ReceiptFromRecord shapes a stored record into a Receipt.
func ReceiptFromRecord(rec *Record) *Receipt {
	r := &Receipt{
		ID:   rec.String(FieldID),
		Key:  rec.Key,
		Data: rec.Payload(FieldID),
	}
	r.ReceivedAt, _ = rec.Time(FieldReceivedAt)
	return r
}
