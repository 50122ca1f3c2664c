package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"walletstore/internal/core/domain"
	"walletstore/internal/core/ports"
	"walletstore/pkg/apperror"
	"walletstore/pkg/logger"
	"walletstore/pkg/phone"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// receiptSegment sits between the collection and the receipt ID in receipt keys.
const receiptSegment = "receipts"

// StoreFactory builds the store client on first use.
type StoreFactory func(ctx context.Context) (ports.HashStore, error)

// StaticStore returns a factory that hands out an already built store.
func StaticStore(store ports.HashStore) StoreFactory {
	return func(context.Context) (ports.HashStore, error) {
		return store, nil
	}
}

// WalletOptions configures key layout and phone parsing.
type WalletOptions struct {
	Collection     string
	DefaultCountry string
	// IndexIgnore lists fields kept out of the search index on Save.
	IndexIgnore []string
}

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	factory StoreFactory
	queue   ports.ReceiptQueue
	opts    WalletOptions
	log     zerolog.Logger
	now     func() time.Time
	newID   func() string

	once    sync.Once
	store   ports.HashStore
	initErr error
}

// NewWalletService creates a WalletServiceImpl. queue may be nil.
func NewWalletService(
	factory StoreFactory,
	queue ports.ReceiptQueue,
	opts WalletOptions,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		factory: factory,
		queue:   queue,
		opts:    opts,
		log:     log,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Init builds the store client once. Later calls return the first result.
func (s *WalletServiceImpl) Init(ctx context.Context) error {
	s.once.Do(func() {
		store, err := s.factory(ctx)
		if err != nil {
			s.initErr = apperror.ErrStoreUnavailable(err)
			s.log.Error().Err(err).Msg("store client initialisation failed")
			return
		}
		if store == nil {
			s.initErr = apperror.ErrStoreUnavailable(errors.New("store factory returned nil"))
			return
		}
		s.store = store
		s.log.Debug().Str("collection", s.opts.Collection).Msg("store client ready")
	})
	return s.initErr
}

// ToE164 normalizes number against country, or the default country when empty.
func (s *WalletServiceImpl) ToE164(number, country string) (string, error) {
	if country == "" {
		country = s.opts.DefaultCountry
	}
	return phone.ToE164(number, phone.Options{CountryCode: country})
}

// Key returns the wallet key for number: the E.164 digits without '+'
// under the configured collection.
func (s *WalletServiceImpl) Key(ctx context.Context, number string) (string, error) {
	if err := s.Init(ctx); err != nil {
		return "", err
	}
	e164, err := s.ToE164(number, "")
	if err != nil {
		return "", err
	}
	return s.store.Key(s.opts.Collection, phone.Digits(e164)), nil
}

func (s *WalletServiceImpl) receiptKey(id string) string {
	return s.store.Key(s.opts.Collection, receiptSegment, id)
}

// Get fetches the record at key with its date fields parsed.
func (s *WalletServiceImpl) Get(ctx context.Context, key string) (*domain.Record, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	h, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperror.ErrNotFound("Record")
	}
	return domain.NewRecord(key, h), nil
}

// GetMany fetches every key. The result has one entry per key, nil where
// the store has no record.
func (s *WalletServiceImpl) GetMany(ctx context.Context, keys []string) ([]*domain.Record, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	hashes, err := s.store.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	if len(hashes) != len(keys) {
		return nil, fmt.Errorf("store returned %d records for %d keys", len(hashes), len(keys))
	}

	records := make([]*domain.Record, len(keys))
	for i, h := range hashes {
		if h != nil {
			records[i] = domain.NewRecord(keys[i], h)
		}
	}
	return records, nil
}

// GetWallet looks a wallet up by phone number.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, number string) (*domain.Wallet, error) {
	key, err := s.Key(ctx, number)
	if err != nil {
		return nil, err
	}
	rec, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound("")) {
			return nil, apperror.ErrNotFound("Wallet")
		}
		return nil, err
	}
	return domain.WalletFromRecord(rec), nil
}

// SaveWallet merges data into the wallet for number and indexes it.
// createdAt and updatedAt in data are dropped; the store owns them.
func (s *WalletServiceImpl) SaveWallet(ctx context.Context, number string, data map[string]string) (*domain.Wallet, error) {
	key, err := s.Key(ctx, number)
	if err != nil {
		return nil, err
	}
	e164, _ := s.ToE164(number, "")

	fields := make(ports.Hash, len(data)+1)
	for k, v := range data {
		fields[k] = v
	}
	delete(fields, domain.FieldCreatedAt)
	delete(fields, domain.FieldUpdatedAt)
	fields[domain.FieldPhoneNumber] = e164

	stored, err := s.store.Save(ctx, key, fields, ports.SaveOptions{Index: true, Ignore: s.opts.IndexIgnore})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("key", logger.MaskKey(key)).Msg("wallet saved")
	return domain.WalletFromRecord(domain.NewRecord(key, stored)), nil
}

// Save persists a new receipt. An empty ID is replaced with a new UUID and a
// zero ReceivedAt with the current time. createdAt and updatedAt in Data are
// dropped; the store owns them. A caller ID that is already taken fails with
// a conflict, since stored receipts are never changed. The input is not
// modified.
func (s *WalletServiceImpl) Save(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error) {
	if receipt == nil {
		return nil, apperror.Validation("receipt is required")
	}
	if err := s.Init(ctx); err != nil {
		return nil, err
	}

	r := *receipt
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = s.now()
	}

	fields := ports.Hash(r.Hash())
	delete(fields, domain.FieldCreatedAt)
	delete(fields, domain.FieldUpdatedAt)

	key := s.receiptKey(r.ID)
	stored, err := s.store.Save(ctx, key, fields, ports.SaveOptions{
		Index:      true,
		Ignore:     s.opts.IndexIgnore,
		CreateOnly: true,
	})
	if errors.Is(err, ports.ErrRecordExists) {
		return nil, apperror.ErrConflict("Receipt")
	}
	if err != nil {
		return nil, err
	}

	out := domain.ReceiptFromRecord(domain.NewRecord(key, stored))
	if out.ID == "" {
		out.ID = r.ID
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(ctx, key); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("failed to enqueue receipt")
		}
	}

	s.log.Info().
		Str("receipt_id", out.ID).
		Str("key", key).
		Msg("receipt saved")

	return out, nil
}

// GetReceipt looks a receipt up by ID.
func (s *WalletServiceImpl) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	rec, err := s.Get(ctx, s.receiptKey(id))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound("")) {
			return nil, apperror.ErrNotFound("Receipt")
		}
		return nil, err
	}
	return domain.ReceiptFromRecord(rec), nil
}

// Search forwards query to the store and returns its hits as is.
func (s *WalletServiceImpl) Search(ctx context.Context, query string) ([]ports.SearchHit, error) {
	if err := s.Init(ctx); err != nil {
		return nil, err
	}
	return s.store.Search(ctx, query)
}

// GetPin is not implemented.
func (s *WalletServiceImpl) GetPin(ctx context.Context, number string) (string, error) {
	return "", apperror.ErrNotImplemented("GetPin")
}

// GeneratePaycode is not implemented.
func (s *WalletServiceImpl) GeneratePaycode(ctx context.Context, number string) (string, error) {
	return "", apperror.ErrNotImplemented("GeneratePaycode")
}
