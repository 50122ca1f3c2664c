package handler

import (
	"walletstore/internal/adapter/http/middleware"
	redisStore "walletstore/internal/adapter/storage/redis"
	"walletstore/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	RateLimitStore *redisStore.RateLimitStore          // nil = rate limiting disabled
	RateLimitRules map[string]middleware.RateLimitRule // overrides per group
	HealthCheckers []ports.HealthChecker
	TokenSvc       ports.TokenService // nil = API routes are unauthenticated
	MaxBodyBytes   int64
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(maxBody))

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.ResolveRateLimitRules(deps.RateLimitRules)
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1", middleware.RequireJSON())
	if deps.TokenSvc != nil {
		v1.Use(middleware.JWTAuth(deps.TokenSvc, deps.Logger))
	} else {
		deps.Logger.Warn().Msg("JWT secret not set, API routes are unauthenticated")
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallets := v1.Group("/wallets")
	{
		wallets.POST("/batch", rl(middleware.GroupWalletsRead), walletHandler.BatchGetWallets)
		wallets.GET("/:phone", rl(middleware.GroupWalletsRead), walletHandler.GetWallet)
		wallets.PUT("/:phone", rl(middleware.GroupWalletsWrite), walletHandler.SaveWallet)
		wallets.GET("/:phone/pin", rl(middleware.GroupWalletsRead), walletHandler.GetPin)
		wallets.POST("/:phone/paycode", rl(middleware.GroupWalletsWrite), walletHandler.GeneratePaycode)
	}

	receiptHandler := NewReceiptHandler(deps.WalletSvc)
	receipts := v1.Group("/receipts")
	{
		receipts.POST("", rl(middleware.GroupReceipts), receiptHandler.SaveReceipt)
		receipts.GET("/:id", rl(middleware.GroupReceipts), receiptHandler.GetReceipt)
	}

	recordHandler := NewRecordHandler(deps.WalletSvc)
	v1.POST("/records/batch", rl(middleware.GroupWalletsRead), recordHandler.BatchGetRecords)
	v1.GET("/search", rl(middleware.GroupSearch), recordHandler.Search)

	phoneHandler := NewPhoneHandler(deps.WalletSvc)
	v1.POST("/phone/normalize", rl(middleware.GroupPhone), phoneHandler.Normalize)

	return r
}
