package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/dctmd-mcp-server/internal/domain"
	"github.com/dctmd-mcp-server/internal/middleware"
	"github.com/dctmd-mcp-server/internal/service"
)

// errInvalidBody marks request bodies that could not be decoded
var errInvalidBody = errors.New("invalid request body")

type bodyError struct {
	err error
}

func (e *bodyError) Error() string { return errInvalidBody.Error() + ": " + e.err.Error() }

func (e *bodyError) Unwrap() []error { return []error{errInvalidBody, e.err} }

func invalidBody(err error) error {
	return &bodyError{err: err}
}

// classify maps a service error to an HTTP status and API error code
func classify(err error) (int, domain.ErrorCode) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, domain.ErrCodeValidation
	case errors.Is(err, errInvalidBody), errors.Is(err, domain.ErrInvalidDocument):
		return http.StatusBadRequest, domain.ErrCodeInvalidInput
	case errors.Is(err, domain.ErrUnknownDiagnosis):
		return http.StatusBadRequest, domain.ErrCodeInvalidInput
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrCodeNotFound
	case errors.Is(err, domain.ErrInvalidCriterion):
		return http.StatusInternalServerError, domain.ErrCodeConfiguration
	case errors.Is(err, service.ErrRecordsUnavailable),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, domain.ErrCodeDatabase
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, domain.ErrCodeInternalServer
	default:
		return http.StatusInternalServerError, domain.ErrCodeInternalServer
	}
}

// writeError renders err as a domain.APIError. Internal details are logged, not returned.
func (s *Server) writeError(c *gin.Context, err error) {
	status, code := classify(err)
	requestID := c.GetString(middleware.CorrelationIDKey)

	message := http.StatusText(status)
	details := ""
	if status < http.StatusInternalServerError || code == domain.ErrCodeDatabase {
		message = err.Error()
	}
	if code == domain.ErrCodeValidation {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			details = ve.Field
		}
	}

	entry := s.logger.WithFields(logrus.Fields{
		"correlation_id": requestID,
		"code":           code,
		"status":         status,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}

	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, requestID))
}
