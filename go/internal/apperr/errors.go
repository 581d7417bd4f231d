package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error is a user-facing failure carrying a stable code and optional
// structured parameters (amounts, ids) for the presentation layer.
type Error struct {
	Code    Code
	Message string
	Params  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if len(e.Params) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Params[k])
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(parts, ", "))
}

func (e *Error) Unwrap() error {
	return e.cause
}

// With attaches a parameter and returns the same error.
func (e *Error) With(key string, value fmt.Stringer) *Error {
	return e.WithString(key, value.String())
}

func (e *Error) WithString(key, value string) *Error {
	if e.Params == nil {
		e.Params = make(map[string]string)
	}
	e.Params[key] = value
	return e
}

// New creates an Error with a code and message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that keeps cause for errors.Is/As and logging.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// Restrict coerces err into the operation's closed code set. Errors
// without a code, or with a code the operation does not declare, become the
// set's fallback code.
func Restrict(err error, set CodeSet) *Error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok && set.Contains(e.Code) {
		return e
	}
	fb := set.Fallback()
	return Wrap(fb, err, "%s", strings.ToLower(strings.ReplaceAll(string(fb), "_", " ")))
}
