package errors

import (
	"fmt"
	"strings"
)

// Category represents the type of error.
type Category string

const (
	CategoryStructure  Category = "structure"
	CategoryResolve    Category = "resolve"
	CategoryTransition Category = "transition"
	CategoryConfig     Category = "config"
	CategoryManifest   Category = "manifest"
)

// RouteError is a coded error carrying the route and URL it concerns.
type RouteError struct {
	// Code is a unique error identifier (e.g., "R001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of this occurrence.
	Detail string

	// Route is the readable path of the route fragment involved, if any.
	Route string

	// URL is the URL being handled when the error occurred, if any.
	URL string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *RouteError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Route != "" {
		b.WriteString(": ")
		b.WriteString(e.Route)
	}
	if e.Detail != "" {
		b.WriteString(" (")
		b.WriteString(e.Detail)
		b.WriteString(")")
	}
	if e.URL != "" {
		b.WriteString(". Url: ")
		b.WriteString(e.URL)
	}
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *RouteError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a RouteError with the same code.
func (e *RouteError) Is(target error) bool {
	t, ok := target.(*RouteError)
	if !ok || t.Code == "" {
		return false
	}
	return t.Code == e.Code
}

// WithRoute records the readable route path.
func (e *RouteError) WithRoute(path string) *RouteError {
	e.Route = path
	return e
}

// WithURL records the URL being handled.
func (e *RouteError) WithURL(url string) *RouteError {
	e.URL = url
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *RouteError) WithDetail(d string) *RouteError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *RouteError) WithDetailf(format string, args ...any) *RouteError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *RouteError) WithSuggestion(s string) *RouteError {
	e.Suggestion = s
	return e
}

// Wrap wraps another error.
func (e *RouteError) Wrap(err error) *RouteError {
	e.Wrapped = err
	return e
}

// New creates a RouteError from a registered error code.
func New(code string) *RouteError {
	template, ok := registry[code]
	if !ok {
		return &RouteError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &RouteError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		DocURL:   template.DocURL,
	}
}

// Newf creates a RouteError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *RouteError {
	return &RouteError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Sentinel returns a comparison value for errors.Is.
func Sentinel(code string) *RouteError {
	return New(code)
}

// FromError wraps a standard error in a RouteError.
func FromError(err error, code string) *RouteError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RouteError); ok {
		return re
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first RouteError in err's chain.
func CodeOf(err error) string {
	for err != nil {
		if re, ok := err.(*RouteError); ok {
			return re.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
