package ports

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// ErrRecordExists is returned by HashStore.Save with CreateOnly set when the
// key already holds a record.
var ErrRecordExists = errors.New("record already exists")

// Hash is a flat record as the store persists it.
type Hash map[string]string

// SaveOptions controls indexing on HashStore.Save.
type SaveOptions struct {
	// Index makes the record reachable through Search.
	Index bool
	// Ignore lists fields left out of the search index.
	Ignore []string
	// CreateOnly refuses to touch an existing record (ErrRecordExists).
	CreateOnly bool
}

// SearchHit is one record matched by HashStore.Search.
type SearchHit struct {
	Key    string `json:"key"`
	Fields Hash   `json:"fields"`
}

// HashStore is the key-value/search client the wallet service delegates
// all persistence to. Implementations own key layout, timestamps and the
// search index.
type HashStore interface {
	// Key joins parts into a storage key under the store's prefix.
	Key(parts ...string) string
	// Get returns nil, nil when the key does not exist.
	Get(ctx context.Context, key string) (Hash, error)
	// GetMany returns one entry per key, nil for keys that do not exist.
	GetMany(ctx context.Context, keys []string) ([]Hash, error)
	// Save merges fields into the record at key and returns the stored record.
	Save(ctx context.Context, key string, fields Hash, opts SaveOptions) (Hash, error)
	// Search returns records whose indexed fields match every term of query.
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

// ReceiptQueue hands saved receipt keys to downstream consumers.
type ReceiptQueue interface {
	Enqueue(ctx context.Context, key string) error
}

// ReceiptSource is the consuming side of a ReceiptQueue.
type ReceiptSource interface {
	// Dequeue blocks up to timeout and returns "" when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)
}
