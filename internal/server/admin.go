package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ClearCache drops every cached thread. Entries are rebuilt lazily on
// the next miss. Nodes other than the one handling this request may
// keep serving entries from their in-process layer until those expire,
// so the response reports the hot TTL as the staleness bound.
func (s *Server) ClearCache(c *gin.Context) {
	if err := s.cacheSvc.Clear(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"stale_within": s.cfg.Cache.HotTTL.String(),
	})
}

type grantPremiumRequest struct {
	Identity string    `json:"identity"`
	Until    time.Time `json:"until"`
}

// GrantPremium marks an identity as premium so it bypasses the quota
// counters until the given time.
func (s *Server) GrantPremium(c *gin.Context) {
	var req grantPremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Identity) == "" {
		AbortWithError(c, newValidationError("identity", "required", "identity is required"))
		return
	}
	if !req.Until.After(time.Now().UTC()) {
		AbortWithError(c, newValidationError("until", "in_past", "until must be in the future"))
		return
	}

	if err := s.quotaSvc.GrantPremium(c.Request.Context(), req.Identity, req.Until.UTC()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
