package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Kind classifies failures that reach the HTTP layer.
type Kind string

const (
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindBadRequest         Kind = "BAD_REQUEST"
	KindStore              Kind = "STORE_ERROR"
)

var statusByKind = map[Kind]int{
	KindUnauthorized:       http.StatusUnauthorized,
	KindInvalidCredentials: http.StatusUnauthorized,
	KindNotFound:           http.StatusNotFound,
	KindConflict:           http.StatusConflict,
	KindBadRequest:         http.StatusBadRequest,
	KindStore:              http.StatusInternalServerError,
}

// Sentinels returned by repositories.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message, nil)
}

func InvalidCredentials() *Error {
	return New(KindInvalidCredentials, "Invalid credentials", nil)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message, nil)
}

func Conflict(message string, cause error) *Error {
	return New(KindConflict, message, cause)
}

func BadRequest(message string, cause error) *Error {
	return New(KindBadRequest, message, cause)
}

// Store wraps a persistence failure. The message is what the caller sees,
// the cause is only logged.
func Store(message string, cause error) *Error {
	return New(KindStore, message, cause)
}

// KindOf reports the kind of err, defaulting to KindStore for anything
// that is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStore
}

func Status(err error) int {
	if status, ok := statusByKind[KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Respond writes err as a JSON error body and aborts the gin chain.
func Respond(c *gin.Context, err error) {
	status := Status(err)

	message := "Internal server error"
	var appErr *Error
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
	}

	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
