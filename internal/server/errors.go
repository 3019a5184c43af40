package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	composerdomain "github.com/smallbiznis/threadly/internal/composer/domain"
	"github.com/smallbiznis/threadly/internal/composer/segment"
	generatordomain "github.com/smallbiznis/threadly/internal/generator/domain"
	quotadomain "github.com/smallbiznis/threadly/internal/quota/domain"
	cachedomain "github.com/smallbiznis/threadly/internal/threadcache/domain"
	"go.uber.org/zap"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not_found")
	ErrRateLimited  = errors.New("rate_limited")
)

type apiError struct {
	Status  int        `json:"-"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	Field   string     `json:"field,omitempty"`
	ResetAt *time.Time `json:"reset_at,omitempty"`
}

func (e *apiError) Error() string {
	return e.Message
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
		Field:   field,
	}
}

func invalidRequestError() *apiError {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

// AbortWithError maps domain errors onto HTTP responses. Quota denials
// must stay distinguishable from generation failures so callers can tell
// "come back later" from "try again".
func AbortWithError(c *gin.Context, err error) {
	var (
		api      *apiError
		exceeded *quotadomain.ExceededError
		overflow *segment.OverflowError
	)

	switch {
	case errors.As(err, &api):
		// already shaped
	case errors.As(err, &exceeded):
		resetAt := exceeded.ResetAt
		api = &apiError{
			Status:  http.StatusTooManyRequests,
			Code:    "quota_exceeded",
			Message: "free " + exceeded.Scope + " quota exhausted",
			ResetAt: &resetAt,
		}
	case errors.As(err, &overflow):
		api = &apiError{
			Status:  http.StatusInternalServerError,
			Code:    "segment_overflow",
			Message: "produced segment exceeds the configured limit",
		}
	case errors.Is(err, composerdomain.ErrEmptyContent):
		api = newValidationError("content", "empty_content", "content is required")
	case errors.Is(err, composerdomain.ErrInvalidOptions):
		api = newValidationError("options", "invalid_options", "segmentation options are out of range")
	case errors.Is(err, quotadomain.ErrInvalidIdentity):
		api = newValidationError("identity", "invalid_identity", "identity is required")
	case errors.Is(err, quotadomain.ErrStoreUnavailable):
		api = &apiError{
			Status:  http.StatusServiceUnavailable,
			Code:    "quota_store_unavailable",
			Message: "usage tracking is temporarily unavailable",
		}
	case errors.Is(err, cachedomain.ErrUnavailable):
		api = &apiError{
			Status:  http.StatusServiceUnavailable,
			Code:    "cache_unavailable",
			Message: "result cache is temporarily unavailable",
		}
	case errors.Is(err, generatordomain.ErrGenerationTimeout):
		api = &apiError{
			Status:  http.StatusGatewayTimeout,
			Code:    "generation_timeout",
			Message: "text generation timed out",
		}
	case errors.Is(err, generatordomain.ErrGenerationFailed):
		api = &apiError{
			Status:  http.StatusBadGateway,
			Code:    "generation_failed",
			Message: "text generation failed",
		}
	case errors.Is(err, quotadomain.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		api = &apiError{
			Status:  http.StatusNotFound,
			Code:    "not_found",
			Message: "resource not found",
		}
	case errors.Is(err, ErrUnauthorized):
		api = &apiError{
			Status:  http.StatusUnauthorized,
			Code:    "unauthorized",
			Message: "missing or invalid credentials",
		}
	case errors.Is(err, ErrRateLimited):
		api = &apiError{
			Status:  http.StatusTooManyRequests,
			Code:    "rate_limited",
			Message: "too many requests, slow down",
		}
	default:
		zap.L().Error("unhandled api error", zap.Error(err))
		api = &apiError{
			Status:  http.StatusInternalServerError,
			Code:    "internal",
			Message: "internal error",
		}
	}

	c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
}
