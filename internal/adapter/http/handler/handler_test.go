package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"walletstore/internal/core/domain"
	"walletstore/internal/core/ports"
	"walletstore/internal/core/ports/mocks"
	"walletstore/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var created = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockWalletService) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockWalletService(ctrl)
	r := SetupRouter(RouterDeps{
		WalletSvc: svc,
		Logger:    zerolog.Nop(),
	})
	return r, svc
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// --- Wallet Handler Tests ---

func TestGetWallet_Success(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().GetWallet(gomock.Any(), "0712345678").Return(&domain.Wallet{
		Key:         "ws:wallets:254712345678",
		PhoneNumber: "+254712345678",
		Data:        map[string]string{"name": "Amina"},
		CreatedAt:   created,
		UpdatedAt:   created,
	}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/wallets/0712345678", nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "ws:wallets:254712345678", data["key"])
	assert.Equal(t, "+254712345678", data["phone_number"])
	assert.Equal(t, "2024-03-01T09:00:00Z", data["created_at"])
	assert.NotContains(t, data, "deleted_at")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestGetWallet_NotFound(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().GetWallet(gomock.Any(), "0712345678").Return(nil, apperror.ErrNotFound("Wallet"))

	w := doJSON(r, http.MethodGet, "/api/v1/wallets/0712345678", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "STO_001", resp["error_code"])
	assert.Equal(t, "Wallet not found", resp["message"])
}

func TestGetWallet_InvalidPhone(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().GetWallet(gomock.Any(), "abc").
		Return(nil, apperror.ErrInvalidPhoneNumber(errors.New("not a number")))

	w := doJSON(r, http.MethodGet, "/api/v1/wallets/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", decode(t, w)["error_code"])
}

func TestGetWallet_UnclassifiedErrorIs500(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().GetWallet(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis hash get: EOF"))

	w := doJSON(r, http.MethodGet, "/api/v1/wallets/0712345678", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "EOF")
}

func TestSaveWallet_Success(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().SaveWallet(gomock.Any(), "0712345678", map[string]string{"name": "Amina"}).
		Return(&domain.Wallet{
			Key:         "ws:wallets:254712345678",
			PhoneNumber: "+254712345678",
			Data:        map[string]string{"name": "Amina"},
			CreatedAt:   created,
			UpdatedAt:   created,
		}, nil)

	w := doJSON(r, http.MethodPut, "/api/v1/wallets/0712345678", map[string]interface{}{
		"data": map[string]string{"name": "Amina"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"name": "Amina"}, data["data"])
}

func TestSaveWallet_ValidationError(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPut, "/api/v1/wallets/0712345678", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_002", decode(t, w)["error_code"])
}

func TestSaveWallet_WrongContentType(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/wallets/0712345678", strings.NewReader("data=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestSaveWallet_BodyTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := SetupRouter(RouterDeps{
		WalletSvc:    mocks.NewMockWalletService(ctrl),
		MaxBodyBytes: 64,
		Logger:       zerolog.Nop(),
	})

	w := doJSON(r, http.MethodPut, "/api/v1/wallets/0712345678", map[string]interface{}{
		"data": map[string]string{"note": strings.Repeat("x", 200)},
	})

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "VAL_003", decode(t, w)["error_code"])
}

func TestBatchGetWallets(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().Key(gomock.Any(), "0712345678").Return("ws:wallets:254712345678", nil)
	svc.EXPECT().Key(gomock.Any(), "bad").Return("", apperror.ErrInvalidPhoneNumber(errors.New("x")))
	svc.EXPECT().Key(gomock.Any(), "0700000000").Return("ws:wallets:254700000000", nil)
	svc.EXPECT().GetMany(gomock.Any(), []string{"ws:wallets:254712345678", "ws:wallets:254700000000"}).
		Return([]*domain.Record{
			domain.NewRecord("ws:wallets:254712345678", map[string]string{
				domain.FieldPhoneNumber: "+254712345678",
				"name":                  "Amina",
			}),
			nil,
		}, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/wallets/batch", map[string]interface{}{
		"phone_numbers": []string{"0712345678", "bad", "0700000000"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(3), resp["count"])

	items := resp["data"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, true, first["found"])
	assert.Equal(t, "+254712345678", first["wallet"].(map[string]interface{})["phone_number"])

	second := items[1].(map[string]interface{})
	assert.Equal(t, false, second["found"])
	assert.Equal(t, "Invalid phone number", second["error"])
	assert.NotContains(t, second, "key")

	third := items[2].(map[string]interface{})
	assert.Equal(t, false, third["found"])
	assert.Equal(t, "ws:wallets:254700000000", third["key"])
	assert.NotContains(t, third, "wallet")
}

func TestBatchGetWallets_StoreUnavailable(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().Key(gomock.Any(), "0712345678").Return("", apperror.ErrStoreUnavailable(errors.New("refused")))

	w := doJSON(r, http.MethodPost, "/api/v1/wallets/batch", map[string]interface{}{
		"phone_numbers": []string{"0712345678"},
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWalletStubs_NotImplemented(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().GetPin(gomock.Any(), "0712345678").Return("", apperror.ErrNotImplemented("GetPin"))
	svc.EXPECT().GeneratePaycode(gomock.Any(), "0712345678").Return("", apperror.ErrNotImplemented("GeneratePaycode"))

	w := doJSON(r, http.MethodGet, "/api/v1/wallets/0712345678/pin", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "SYS_004", decode(t, w)["error_code"])

	w = doJSON(r, http.MethodPost, "/api/v1/wallets/0712345678/paycode", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

// --- Receipt Handler Tests ---

func TestSaveReceipt_Success(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *domain.Receipt) (*domain.Receipt, error) {
			assert.Empty(t, in.ID)
			assert.True(t, in.ReceivedAt.IsZero())
			assert.Equal(t, "1500", in.Data["amount"])
			return &domain.Receipt{
				ID:         "5f0c6e1e-8a52-4c47-9a0b-1f9f3c2d4e5a",
				Key:        "ws:wallets:receipts:5f0c6e1e-8a52-4c47-9a0b-1f9f3c2d4e5a",
				Data:       in.Data,
				ReceivedAt: created,
			}, nil
		})

	w := doJSON(r, http.MethodPost, "/api/v1/receipts", map[string]interface{}{
		"data": map[string]string{"amount": "1500"},
	})

	require.Equal(t, http.StatusCreated, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "5f0c6e1e-8a52-4c47-9a0b-1f9f3c2d4e5a", data["id"])
	assert.Equal(t, "2024-03-01T09:00:00Z", data["received_at"])
}

func TestSaveReceipt_PassesIDAndReceivedAt(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *domain.Receipt) (*domain.Receipt, error) {
			assert.Equal(t, "r-1", in.ID)
			assert.True(t, in.ReceivedAt.Equal(created))
			return in, nil
		})

	w := doJSON(r, http.MethodPost, "/api/v1/receipts", map[string]interface{}{
		"id":          "r-1",
		"data":        map[string]string{"amount": "1"},
		"received_at": "2024-03-01T09:00:00Z",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSaveReceipt_InvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/receipts", map[string]interface{}{
		"id":   "has:colon",
		"data": map[string]string{"amount": "1"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReceipt(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().GetReceipt(gomock.Any(), "r-1").Return(&domain.Receipt{
		ID:   "r-1",
		Key:  "ws:wallets:receipts:r-1",
		Data: map[string]string{"amount": "1"},
	}, nil)
	svc.EXPECT().GetReceipt(gomock.Any(), "r-2").Return(nil, apperror.ErrNotFound("Receipt"))

	w := doJSON(r, http.MethodGet, "/api/v1/receipts/r-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "r-1", data["id"])
	assert.NotContains(t, data, "received_at")

	w = doJSON(r, http.MethodGet, "/api/v1/receipts/r-2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Record Handler Tests ---

func TestBatchGetRecords(t *testing.T) {
	r, svc := newTestRouter(t)

	keys := []string{"ws:wallets:1", "ws:wallets:2"}
	svc.EXPECT().GetMany(gomock.Any(), keys).Return([]*domain.Record{
		nil,
		domain.NewRecord("ws:wallets:2", map[string]string{
			"name":                "two",
			domain.FieldCreatedAt: "2024-03-01T09:00:00Z",
		}),
	}, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/records/batch", map[string]interface{}{"keys": keys})

	require.Equal(t, http.StatusOK, w.Code)
	items := decode(t, w)["data"].([]interface{})
	require.Len(t, items, 2)

	missing := items[0].(map[string]interface{})
	assert.Equal(t, "ws:wallets:1", missing["key"])
	assert.Equal(t, false, missing["found"])
	assert.Nil(t, missing["fields"])

	found := items[1].(map[string]interface{})
	fields := found["fields"].(map[string]interface{})
	assert.Equal(t, "two", fields["name"])
	assert.Equal(t, "2024-03-01T09:00:00Z", fields["createdAt"])
}

func TestSearch(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().Search(gomock.Any(), "amina gold").Return([]ports.SearchHit{
		{Key: "ws:wallets:254712345678", Fields: ports.Hash{"name": "Amina"}},
	}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/search?q=amina+gold", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, float64(1), resp["count"])
}

func TestSearch_EmptyResultIsEmptyList(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().Search(gomock.Any(), "nobody").Return(nil, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/search?q=nobody", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestSearch_MissingQuery(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Phone Handler Tests ---

func TestNormalizePhone(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().ToE164("0712345678", "KE").Return("+254712345678", nil)

	w := doJSON(r, http.MethodPost, "/api/v1/phone/normalize", map[string]string{
		"phone_number": " 0712345678 ",
		"country":      "KE",
	})

	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "+254712345678", data["e164"])
}

func TestNormalizePhone_RejectsNonDialable(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/phone/normalize", map[string]string{
		"phone_number": "call me maybe",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_002", decode(t, w)["error_code"])
}

// --- Auth ---

func TestRouter_JWTRequiredWhenTokenServiceSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockWalletService(ctrl)
	tokens := mocks.NewMockTokenService(ctrl)
	r := SetupRouter(RouterDeps{
		WalletSvc: svc,
		TokenSvc:  tokens,
		Logger:    zerolog.Nop(),
	})

	w := doJSON(r, http.MethodGet, "/api/v1/receipts/r-1", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tokens.EXPECT().Validate("good-token").Return(&ports.TokenClaims{Subject: "ops"}, nil)
	svc.EXPECT().GetReceipt(gomock.Any(), "r-1").Return(&domain.Receipt{ID: "r-1"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receipts/r-1", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays public.
	w = doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// --- Health ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(context.Context) error { return f.err }
func (f fakeChecker) Name() string               { return f.name }

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []ports.HealthChecker
		wantCode   int
		wantStatus string
	}{
		{"no checkers", nil, http.StatusOK, "healthy"},
		{"all healthy", []ports.HealthChecker{fakeChecker{name: "redis"}}, http.StatusOK, "healthy"},
		{
			"one down",
			[]ports.HealthChecker{fakeChecker{name: "redis"}, fakeChecker{name: "postgresql", err: errors.New("refused")}},
			http.StatusServiceUnavailable,
			"degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", HealthCheck(tt.checkers...))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantStatus, decode(t, w)["status"])
		})
	}
}

type detailedChecker struct {
	fakeChecker
	details map[string]any
}

func (d detailedChecker) Details(context.Context) (map[string]any, error) { return d.details, nil }

func TestHealthCheck_Details(t *testing.T) {
	r := gin.New()
	r.GET("/health", HealthCheck(detailedChecker{
		fakeChecker: fakeChecker{name: "redis"},
		details:     map[string]any{"queue_depth": 3},
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	redis := decode(t, w)["dependencies"].(map[string]interface{})["redis"].(map[string]interface{})
	assert.Equal(t, "healthy", redis["status"])
	assert.EqualValues(t, 3, redis["details"].(map[string]interface{})["queue_depth"])
}

func TestSwagger(t *testing.T) {
	r, _ := newTestRouter(t)

	SetSwaggerSpec(nil)
	w := doJSON(r, http.MethodGet, "/swagger/spec", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	SetSwaggerSpec([]byte("openapi: 3.0.3\n"))
	t.Cleanup(func() { SetSwaggerSpec(nil) })
	w = doJSON(r, http.MethodGet, "/swagger/spec", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/swagger/spec", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)

	w = doJSON(r, http.MethodGet, "/swagger", nil)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
