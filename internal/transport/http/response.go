package http

import (
	"errors"
	"net/http"

	"forklift-training-service/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: message})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrPermissionDenied), errors.Is(err, domain.ErrNotEligible):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrDuplicateUsername), errors.Is(err, domain.ErrLastAdminRemoval),
		errors.Is(err, domain.ErrNoAttempt), errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrNotAnswered), errors.Is(err, domain.ErrAttemptComplete):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMalformedImport), errors.Is(err, domain.ErrOptionNotFound),
		errors.Is(err, domain.ErrInvalidView), errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrPasswordMismatch), errors.Is(err, domain.ErrUnsupportedLogo):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNoLogo):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Unknown errors are logged and hidden.
func (s *Server) fail(c *gin.Context, err error) {
	s.failWith(c, err, nil)
}

func (s *Server) failWith(c *gin.Context, err error, data interface{}) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("internal server error", zap.String("path", c.Request.URL.Path), zap.Error(err))
		message = "Internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Response{Code: status, Message: message, Data: data})
}
