package errors

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// error categories for classification
const (
	CategoryDatabase   = "database"
	CategoryConflict   = "conflict"
	CategoryNetwork    = "network"
	CategoryValidation = "validation"
	CategoryAuth       = "auth"
	CategoryNotFound   = "not_found"
	CategoryTimeout    = "timeout"
	CategoryUnknown    = "unknown"
)

// a category and the message shown in production for errors that match
type rule struct {
	category string
	public   string
	match    func(err error) bool
}

// checked in order, first match wins
var rules = []rule{
	{CategoryConflict, "resource already exists", func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
	}},
	{CategoryDatabase, "database operation failed", func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr)
	}},
	{CategoryNotFound, "resource not found", func(err error) bool {
		return errors.Is(err, pgx.ErrNoRows)
	}},
	{CategoryTimeout, "request timed out", func(err error) bool {
		return errors.Is(err, context.DeadlineExceeded)
	}},
	{CategoryTimeout, "request canceled", func(err error) bool {
		return errors.Is(err, context.Canceled)
	}},
	{CategoryValidation, "validation failed", func(err error) bool {
		var verrs validator.ValidationErrors
		return errors.As(err, &verrs)
	}},
	{CategoryAuth, "permission denied", func(err error) bool {
		return errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenSignatureInvalid) ||
			errors.Is(err, jwt.ErrTokenMalformed)
	}},
	{CategoryNetwork, "connection error occurred", func(err error) bool {
		var netErr net.Error
		return errors.As(err, &netErr)
	}},
	{CategoryDatabase, "database operation failed", func(err error) bool {
		msg := strings.ToLower(err.Error())
		return strings.Contains(msg, "postgres") || strings.Contains(msg, "pgx")
	}},
	{CategoryValidation, "validation failed", func(err error) bool {
		msg := strings.ToLower(err.Error())
		return strings.Contains(msg, "invalid") || strings.Contains(msg, "required")
	}},
}

// analyzes an error and returns its category and sanitized message
func classifyError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{CategoryUnknown, ""}
	}

	isProduction := os.Getenv("ENVIRONMENT") == "production"

	for _, r := range rules {
		if r.match(err) {
			return ErrorInfo{
				category:  r.category,
				sanitized: ternary(isProduction, r.public, err.Error()),
			}
		}
	}

	return ErrorInfo{
		category:  CategoryUnknown,
		sanitized: ternary(isProduction, "an error occurred", err.Error()),
	}
}

// ternary helper for cleaner conditional assignment
func ternary(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}

	return falseVal
}

// reports whether id is a canonical xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx UUID
func IsValidUUID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}

// validates a UUID parameter from the request path
func ValidatePathUUID(c *gin.Context, paramName string) (string, bool) {
	id := c.Param(paramName)

	if id == "" {
		BadRequest(c, "missing "+paramName, nil)
		return "", false
	}

	// ids that can't exist are reported the same way as ids that don't
	if !IsValidUUID(id) {
		NotFound(c, "resource")
		return "", false
	}

	return strings.ToLower(id), true
}
