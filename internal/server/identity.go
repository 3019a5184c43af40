package server

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/threadly/internal/requestcontext"
)

// IdentityRequired resolves the opaque quota/cache identity for the
// request. Callers presenting a bearer API key are keyed by its hash so
// the raw key never reaches logs or storage; anonymous callers fall
// back to their client IP.
func (s *Server) IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := "ip:" + c.ClientIP()

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header != "" {
			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			identity = "key:" + hashAPIKey(parts[1])
		}

		ctx := requestcontext.WithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminRequired guards administrative routes with the configured token.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("X-Admin-Token"))
		if s.cfg.AdminToken == "" || token == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// BurstLimit is the per-identity flood guard in front of the compose
// route, distinct from the daily/monthly quota counters.
func (s *Server) BurstLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := requestcontext.IdentityFromContext(c.Request.Context())
		if !s.limiter.Allow(identity) {
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

func hashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
