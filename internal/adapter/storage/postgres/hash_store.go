package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"walletstore/internal/adapter/storage/searchindex"
	"walletstore/internal/core/domain"
	"walletstore/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// HashStore implements ports.HashStore on a single records table. Fields
// are kept as a JSONB object; search terms live in a GIN-indexed TEXT[].
type HashStore struct {
	pool   Pool
	prefix string
	now    func() time.Time
}

// NewHashStore creates a PostgreSQL-backed hash store.
func NewHashStore(pool Pool, prefix string) *HashStore {
	return &HashStore{
		pool:   pool,
		prefix: prefix,
		now:    time.Now,
	}
}

// Key joins parts with ':' under the store prefix.
func (s *HashStore) Key(parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	if s.prefix != "" {
		all = append(all, s.prefix)
	}
	for _, p := range parts {
		if p != "" {
			all = append(all, p)
		}
	}
	return strings.Join(all, ":")
}

// Get fetches the record at key. Returns nil, nil when it does not exist.
func (s *HashStore) Get(ctx context.Context, key string) (ports.Hash, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT fields FROM records WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return decodeFields(raw)
}

// GetMany fetches every key in one query and returns them in input order.
func (s *HashStore) GetMany(ctx context.Context, keys []string) ([]ports.Hash, error) {
	out := make([]ports.Hash, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT key, fields FROM records WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("get records: %w", err)
	}
	defer rows.Close()

	found := make(map[string]ports.Hash, len(keys))
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		h, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		found[key] = h
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	for i, key := range keys {
		out[i] = found[key]
	}
	return out, nil
}

const (
	insertRecordSQL = `INSERT INTO records (key, fields, search_terms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (key) DO NOTHING`
	upsertRecordSQL = `INSERT INTO records (key, fields, search_terms, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (key) DO UPDATE
		SET fields = EXCLUDED.fields, search_terms = EXCLUDED.search_terms, updated_at = EXCLUDED.updated_at`
)

// Save merges fields into the record at key inside a transaction, stamping
// createdAt on first write and updatedAt on every write. Search terms are
// recomputed only when opts.Index is set.
func (s *HashStore) Save(ctx context.Context, key string, fields ports.Hash, opts ports.SaveOptions) (ports.Hash, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		raw   []byte
		terms []string
	)
	merged := ports.Hash{}
	err = tx.QueryRow(ctx,
		`SELECT fields, search_terms FROM records WHERE key = $1 FOR UPDATE`, key,
	).Scan(&raw, &terms)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("lock record: %w", err)
	default:
		if opts.CreateOnly {
			return nil, ports.ErrRecordExists
		}
		if merged, err = decodeFields(raw); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	if _, ok := merged[domain.FieldCreatedAt]; !ok {
		merged[domain.FieldCreatedAt] = domain.FormatTime(now)
	}
	for k, v := range fields {
		merged[k] = v
	}
	merged[domain.FieldUpdatedAt] = domain.FormatTime(now)

	if opts.Index {
		terms = searchindex.Terms(merged, opts.Ignore)
	}
	if terms == nil {
		terms = []string{}
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	upsert := upsertRecordSQL
	if opts.CreateOnly {
		upsert = insertRecordSQL
	}
	tag, err := tx.Exec(ctx, upsert, key, encoded, terms, now)
	if err != nil {
		return nil, fmt.Errorf("upsert record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// A concurrent create won the race for key.
		return nil, ports.ErrRecordExists
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit save: %w", err)
	}
	return merged, nil
}

// Search returns records whose terms contain every token of query, ordered by key.
func (s *HashStore) Search(ctx context.Context, query string) ([]ports.SearchHit, error) {
	terms := searchindex.Tokenize(query)
	if len(terms) == 0 {
		return []ports.SearchHit{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT key, fields FROM records WHERE search_terms @> $1 ORDER BY key`, terms)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()

	hits := []ports.SearchHit{}
	for rows.Next() {
		var hit ports.SearchHit
		var raw []byte
		if err := rows.Scan(&hit.Key, &raw); err != nil {
			return nil, fmt.Errorf("scan search hit: %w", err)
		}
		if hit.Fields, err = decodeFields(raw); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search hits: %w", err)
	}
	return hits, nil
}

func decodeFields(raw []byte) (ports.Hash, error) {
	h := ports.Hash{}
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("decode record fields: %w", err)
	}
	return h, nil
}
