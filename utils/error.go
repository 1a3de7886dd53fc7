package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error codes shared by all services. Handlers translate these to HTTP
// status codes; services never see transport concerns.
const (
	CodeInvalidInput = "invalid_input"
	CodeNotFound     = "not_found"
	CodeForbidden    = "forbidden"
	CodeConflict     = "conflict"
	CodeInvalidState = "invalid_state"
	CodeUpstream     = "upstream"
)

// ServiceError is the typed error returned by the service layer.
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Code + ": " + e.Message
}

func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

func InvalidInputError(msg string) *ServiceError { return NewServiceError(CodeInvalidInput, msg) }
func NotFoundError(msg string) *ServiceError     { return NewServiceError(CodeNotFound, msg) }
func ForbiddenError(msg string) *ServiceError    { return NewServiceError(CodeForbidden, msg) }
func ConflictError(msg string) *ServiceError     { return NewServiceError(CodeConflict, msg) }
func InvalidStateError(msg string) *ServiceError { return NewServiceError(CodeInvalidState, msg) }
func UpstreamError(msg string) *ServiceError     { return NewServiceError(CodeUpstream, msg) }

// StatusForError maps a service error to an HTTP status code.
func StatusForError(err error) int {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return http.StatusInternalServerError
	}
	switch svcErr.Code {
	case CodeInvalidInput, CodeInvalidState:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse defines the structure of error responses.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is a middleware to catch panics and return structured errors.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				zap.L().Error("Unhandled panic", zap.Any("error", err))

				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal Server Error",
					Details: "An unexpected error occurred. Please try again later.",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// JSONError sends a standardized JSON error response for a service error.
func JSONError(c *gin.Context, err error) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		zap.L().Warn("Request failed", zap.String("code", svcErr.Code), zap.String("message", svcErr.Message))
		c.JSON(StatusForError(err), ErrorResponse{Message: svcErr.Message, Code: svcErr.Code})
		return
	}
	zap.L().Error("Request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal Server Error"})
}
