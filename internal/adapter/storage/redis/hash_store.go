package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"walletstore/internal/adapter/storage/searchindex"
	"walletstore/internal/core/domain"
	"walletstore/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// HashStore implements ports.HashStore with one Redis hash per record and
// one set per search term (<prefix>:idx:<term>) holding record keys.
type HashStore struct {
	client *goredis.Client
	prefix string
	now    func() time.Time
}

// NewHashStore creates a Redis-backed hash store. Keys are namespaced
// under prefix.
func NewHashStore(client *goredis.Client, prefix string) *HashStore {
	return &HashStore{
		client: client,
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

func (s *HashStore) indexKey(term string) string {
	return s.Key("idx", term)
}

// Get returns the hash at key, or nil if it does not exist.
func (s *HashStore) Get(ctx context.Context, key string) (ports.Hash, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hash get: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return ports.Hash(fields), nil
}

// GetMany fetches all keys in one pipeline.
func (s *HashStore) GetMany(ctx context.Context, keys []string) ([]ports.Hash, error) {
	out := make([]ports.Hash, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*goredis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("redis hash get many: %w", err)
	}

	for i, cmd := range cmds {
		if fields := cmd.Val(); len(fields) > 0 {
			out[i] = ports.Hash(fields)
		}
	}
	return out, nil
}

// maxSaveAttempts bounds the WATCH retries of one Save under contention.
const maxSaveAttempts = 100

// Save merges fields into the hash at key. createdAt is set on first write
// and updatedAt on every write. With opts.Index the term sets are brought in
// line with the merged record. The read, the merge and the writes run under
// WATCH on key, so a concurrent save to the same key forces a retry.
func (s *HashStore) Save(ctx context.Context, key string, fields ports.Hash, opts ports.SaveOptions) (ports.Hash, error) {
	var merged ports.Hash
	txf := func(tx *goredis.Tx) error {
		previous, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if opts.CreateOnly && len(previous) > 0 {
			return ports.ErrRecordExists
		}

		now := domain.FormatTime(s.now())
		merged = make(ports.Hash, len(previous)+len(fields)+2)
		for k, v := range previous {
			merged[k] = v
		}
		if _, ok := merged[domain.FieldCreatedAt]; !ok {
			merged[domain.FieldCreatedAt] = now
		}
		for k, v := range fields {
			merged[k] = v
		}
		merged[domain.FieldUpdatedAt] = now

		var removed, added []string
		if opts.Index {
			removed, added = searchindex.Diff(
				searchindex.Terms(previous, opts.Ignore),
				searchindex.Terms(merged, opts.Ignore),
			)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			values := make(map[string]interface{}, len(merged))
			for k, v := range merged {
				values[k] = v
			}
			pipe.HSet(ctx, key, values)
			for _, term := range removed {
				pipe.SRem(ctx, s.indexKey(term), key)
			}
			for _, term := range added {
				pipe.SAdd(ctx, s.indexKey(term), key)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return merged, nil
		}
		if errors.Is(err, ports.ErrRecordExists) {
			return nil, err
		}
		if !errors.Is(err, goredis.TxFailedErr) {
			return nil, fmt.Errorf("redis hash save: %w", err)
		}
	}
	return nil, fmt.Errorf("redis hash save %s: gave up after %d contended attempts", key, maxSaveAttempts)
}

// Search intersects the term sets of every token in query. Hits are ordered
// by key. Keys whose hash has since disappeared are skipped.
func (s *HashStore) Search(ctx context.Context, query string) ([]ports.SearchHit, error) {
	terms := searchindex.Tokenize(query)
	if len(terms) == 0 {
		return []ports.SearchHit{}, nil
	}

	setKeys := make([]string, len(terms))
	for i, term := range terms {
		setKeys[i] = s.indexKey(term)
	}

	keys, err := s.client.SInter(ctx, setKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hash search: %w", err)
	}
	sort.Strings(keys)

	hashes, err := s.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}

	hits := make([]ports.SearchHit, 0, len(keys))
	for i, h := range hashes {
		if h == nil {
			continue
		}
		hits = append(hits, ports.SearchHit{Key: keys[i], Fields: h})
	}
	return hits, nil
}
