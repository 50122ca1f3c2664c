package middleware

import (
	"strconv"
	"time"

	redisStore "walletstore/internal/adapter/storage/redis"
	"walletstore/pkg/apperror"
	"walletstore/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RateLimitRule caps requests per caller within a fixed window.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// Endpoint groups that RateLimiter is mounted on.
const (
	GroupWalletsRead  = "wallets_read"
	GroupWalletsWrite = "wallets_write"
	GroupReceipts     = "receipts"
	GroupSearch       = "search"
	GroupPhone        = "phone"
)

func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		GroupWalletsRead:  {Limit: 300, Window: time.Minute},
		GroupWalletsWrite: {Limit: 60, Window: time.Minute},
		GroupReceipts:     {Limit: 120, Window: time.Minute},
		GroupSearch:       {Limit: 60, Window: time.Minute},
		GroupPhone:        {Limit: 300, Window: time.Minute},
	}
}

// ResolveRateLimitRules lays overrides over the defaults. Overrides for
// unknown groups or with a non-positive limit or window are ignored.
func ResolveRateLimitRules(overrides map[string]RateLimitRule) map[string]RateLimitRule {
	rules := DefaultRateLimitRules()
	for group, rule := range overrides {
		if _, known := rules[group]; !known || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		rules[group] = rule
	}
	return rules
}

// RateLimiter counts requests per caller and group. A store error lets the
// request through without rate limit headers.
func RateLimiter(store *redisStore.RateLimitStore, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := callerIdentity(c)

		result, err := store.Allow(c.Request.Context(), caller+":"+group, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit store unreachable, request allowed")
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if result.Allowed {
			c.Next()
			return
		}

		h.Set("Retry-After", strconv.FormatInt(max(result.ResetAt-time.Now().Unix(), 1), 10))
		log.Info().Str("group", group).Str("caller", caller).Int64("limit", rule.Limit).Msg("rate limit exceeded")
		response.Error(c, apperror.ErrRateLimitExceeded())
		c.Abort()
	}
}

// callerIdentity keys the limit on the token subject when authenticated,
// else on the client IP.
func callerIdentity(c *gin.Context) string {
	if sub := c.GetString(CtxSubject); sub != "" {
		return "sub:" + sub
	}
	return "ip:" + c.ClientIP()
}
