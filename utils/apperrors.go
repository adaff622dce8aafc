package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrNotFound covers both "does not exist" and "you may not see it": a denied
// post read must be indistinguishable from a missing one.
var ErrNotFound = errors.New("not found")

// ErrForbidden is for actions (not reads) the caller may not perform, e.g.
// accepting a request they sent themselves.
var ErrForbidden = errors.New("forbidden")

// ValidationError rejects a write before any mutation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// RespondError maps service errors onto HTTP responses. Anything unrecognized
// is a generic 500; internals never leak.
func RespondError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "success": false})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden", "success": false})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "success": false})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "success": false})
	}
}
