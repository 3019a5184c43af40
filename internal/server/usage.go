package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/threadly/internal/requestcontext"
)

// Usage reports the caller's current counters and reset boundaries
// without consuming anything.
func (s *Server) Usage(c *gin.Context) {
	identity := requestcontext.IdentityFromContext(c.Request.Context())

	summary, err := s.quotaSvc.Usage(c.Request.Context(), identity)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
