package domain

import (
	"strconv"
	"time"
)

// Field names shared by wallets and receipts.
const (
	FieldID          = "id"
	FieldPhoneNumber = "phoneNumber"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldDeletedAt   = "deletedAt"
	FieldReceivedAt  = "receivedAt"
)

// DateFields are deserialized into time.Time when a record is read back.
var DateFields = []string{FieldCreatedAt, FieldUpdatedAt, FieldDeletedAt, FieldReceivedAt}

// Record is a stored hash as returned to callers, keyed by its storage key.
// Date fields hold time.Time values; everything else is the stored string.
type Record struct {
	Key    string         `json:"key"`
	Fields map[string]any `json:"fields"`
}

// NewRecord builds a Record from raw hash fields, parsing DateFields.
// A date field that fails to parse is kept as its raw string.
func NewRecord(key string, hash map[string]string) *Record {
	fields := make(map[string]any, len(hash))
	for k, v := range hash {
		fields[k] = v
	}
	for _, name := range DateFields {
		raw, ok := hash[name]
		if !ok || raw == "" {
			continue
		}
		if t, err := ParseTime(raw); err == nil {
			fields[name] = t
		}
	}
	return &Record{Key: key, Fields: fields}
}

// Time returns a parsed date field.
func (r *Record) Time(name string) (time.Time, bool) {
	t, ok := r.Fields[name].(time.Time)
	return t, ok
}

// String returns a plain string field, or "" when absent or not a string.
func (r *Record) String(name string) string {
	s, _ := r.Fields[name].(string)
	return s
}

// Payload returns the string fields that are not dates or bookkeeping.
func (r *Record) Payload(exclude ...string) map[string]string {
	skip := make(map[string]struct{}, len(exclude))
	for _, e := range exclude {
		skip[e] = struct{}{}
	}
	out := make(map[string]string)
	for k, v := range r.Fields {
		if _, ok := skip[k]; ok {
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// FormatTime is the storage encoding for timestamps.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime accepts RFC 3339 timestamps and Unix epoch milliseconds.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t.UTC(), nil
	}
	ms, numErr := strconv.ParseInt(s, 10, 64)
	if numErr != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
