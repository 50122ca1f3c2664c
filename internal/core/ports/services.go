package ports

import (
	"context"
	"time"

	"walletstore/internal/core/domain"
)

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

// WalletService is the wallet/receipt facade over a HashStore.
type WalletService interface {
	Init(ctx context.Context) error
	ToE164(number, country string) (string, error)
	Key(ctx context.Context, number string) (string, error)
	Get(ctx context.Context, key string) (*domain.Record, error)
	GetMany(ctx context.Context, keys []string) ([]*domain.Record, error)
	GetWallet(ctx context.Context, number string) (*domain.Wallet, error)
	SaveWallet(ctx context.Context, number string, data map[string]string) (*domain.Wallet, error)
	Save(ctx context.Context, receipt *domain.Receipt) (*domain.Receipt, error)
	GetReceipt(ctx context.Context, id string) (*domain.Receipt, error)
	Search(ctx context.Context, query string) ([]SearchHit, error)
	GetPin(ctx context.Context, number string) (string, error)
	GeneratePaycode(ctx context.Context, number string) (string, error)
}

// TokenClaims are the verified claims of an API bearer token.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

// TokenService issues and verifies API bearer tokens.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(token string) (*TokenClaims, error)
}
