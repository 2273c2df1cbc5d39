package auth

import (
	"errors"
	"net/http"
)

// closed set of failure categories reported to clients
type ErrorCategory string

const (
	OAuthSignin           ErrorCategory = "OAuthSignin"
	OAuthCallback         ErrorCategory = "OAuthCallback"
	OAuthCreateAccount    ErrorCategory = "OAuthCreateAccount"
	EmailCreateAccount    ErrorCategory = "EmailCreateAccount"
	Callback              ErrorCategory = "Callback"
	OAuthAccountNotLinked ErrorCategory = "OAuthAccountNotLinked"
	CredentialsSignin     ErrorCategory = "CredentialsSignin"
	AccessDenied          ErrorCategory = "AccessDenied"
	Configuration         ErrorCategory = "Configuration"
	Verification          ErrorCategory = "Verification"
)

type categoryInfo struct {
	message string
	status  int
}

var categories = map[ErrorCategory]categoryInfo{
	OAuthSignin:           {"Could not start sign in with this provider.", http.StatusBadRequest},
	OAuthCallback:         {"The sign in provider returned an invalid response.", http.StatusBadRequest},
	OAuthCreateAccount:    {"Could not create an account for this provider.", http.StatusInternalServerError},
	EmailCreateAccount:    {"Could not create an account with this email.", http.StatusBadRequest},
	Callback:              {"Something went wrong while signing you in.", http.StatusInternalServerError},
	OAuthAccountNotLinked: {"This email is already used with a different sign in method.", http.StatusConflict},
	CredentialsSignin:     {"Invalid email or password.", http.StatusUnauthorized},
	AccessDenied:          {"You do not have permission to sign in.", http.StatusForbidden},
	Configuration:         {"The server is not configured for this sign in method.", http.StatusInternalServerError},
	Verification:          {"The verification link is invalid or has expired.", http.StatusBadRequest},
}

// parses a category name, rejecting unknown values
func ParseErrorCategory(s string) (ErrorCategory, bool) {
	category := ErrorCategory(s)
	if _, ok := categories[category]; !ok {
		return "", false
	}

	return category, true
}

func (c ErrorCategory) String() string {
	return string(c)
}

// user-facing message for the category
func (c ErrorCategory) Message() string {
	if info, ok := categories[c]; ok {
		return info.message
	}

	return categories[Callback].message
}

// HTTP status the category is reported with
func (c ErrorCategory) Status() int {
	if info, ok := categories[c]; ok {
		return info.status
	}

	return http.StatusInternalServerError
}

// an authentication failure carrying its category
type Error struct {
	Category ErrorCategory
	Err      error
}

// creates a categorized error, err may be nil
func NewError(category ErrorCategory, err error) *Error {
	return &Error{Category: category, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Category.String() + ": " + e.Err.Error()
	}

	return e.Category.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// extracts the category from err; uncategorized errors report as Callback
func CategoryOf(err error) ErrorCategory {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Category
	}

	return Callback
}
