package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported    ErrorCode = "NOT_SUPPORTED"

	// Generation and reconstruction failures. None of them is retried.
	CodeUnsupportedConstruct ErrorCode = "UNSUPPORTED_CONSTRUCT"
	CodeStructuralInvariant  ErrorCode = "STRUCTURAL_INVARIANT"
	CodeMalformedInput       ErrorCode = "MALFORMED_INPUT"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxLanguage  = "language"
	CtxSymbol    = "symbol"
	CtxLine      = "line"
	CtxColumn    = "column"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		msg += " {" + strings.Join(parts, " ") + "}"
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Newf(code ErrorCode, format string, args ...interface{}) error {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// Unsupported reports a source construct with no sound translation at
// path:line:column.
func Unsupported(path string, line, column int, msg string) error {
	return (&DomainError{Code: CodeUnsupportedConstruct, Message: msg}).
		WithContext(CtxPath, path).
		WithContext(CtxLine, line).
		WithContext(CtxColumn, column)
}

// Structural reports a traversal bug. It carries no source position.
func Structural(format string, args ...interface{}) error {
	return Newf(CodeStructuralInvariant, format, args...)
}

// AddContext attaches key/value to a DomainError, wrapping plain errors as internal ones.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return de
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ContextValue returns the context value stored under key, if any.
func ContextValue(err error, key string) (interface{}, bool) {
	var de *DomainError
	if !errors.As(err, &de) || de.Context == nil {
		return nil, false
	}
	v, ok := de.Context[key]
	return v, ok
}

// CodeOf returns the code of the outermost DomainError in err's chain, or
// CodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
