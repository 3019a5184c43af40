package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	composerdomain "github.com/smallbiznis/threadly/internal/composer/domain"
	"github.com/smallbiznis/threadly/internal/requestcontext"
)

type composeThreadRequest struct {
	Content   string `json:"content"`
	SourceURL string `json:"source_url"`

	Options composerdomain.Options `json:"options"`
}

func (s *Server) ComposeThread(c *gin.Context) {
	var req composeThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		AbortWithError(c, newValidationError("content", "empty_content", "content is required"))
		return
	}

	thread, err := s.composerSvc.Compose(c.Request.Context(), composerdomain.ComposeRequest{
		Content:   req.Content,
		SourceURL: strings.TrimSpace(req.SourceURL),
		Identity:  requestcontext.IdentityFromContext(c.Request.Context()),
		Options:   req.Options,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, thread)
}

type previewThreadRequest struct {
	Content string `json:"content"`

	Options composerdomain.Options `json:"options"`
}

// PreviewThread segments the submitted text as-is. It spends no quota
// and touches neither the generator nor the cache.
func (s *Server) PreviewThread(c *gin.Context) {
	var req previewThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	thread, err := s.composerSvc.Preview(c.Request.Context(), composerdomain.PreviewRequest{
		Content: req.Content,
		Options: req.Options,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, thread)
}
