// internal/membership/errors.go
package membership

import "errors"

// Error codes sent in the "code" field of an error response.
const (
	CodeValidation    = "validation"
	CodeNotFound      = "not_found"
	CodeWrongKind     = "wrong_kind"
	CodeDuplicateID   = "duplicate_id"
	CodeEmptyRegistry = "empty_registry"
	CodeRateLimited   = "rate_limited"
	CodeInvalidRecord = "invalid_record"
	CodeTooLarge      = "too_large"
	CodeInternal      = "internal"
)

var errorCodes = []struct {
	code string
	err  error
}{
	{CodeValidation, ErrValidation},
	{CodeNotFound, ErrNotFound},
	{CodeWrongKind, ErrWrongKind},
	{CodeDuplicateID, ErrDuplicateID},
	{CodeEmptyRegistry, ErrEmptyRegistry},
	{CodeRateLimited, ErrRateLimited},
	{CodeInvalidRecord, ErrInvalidRecord},
}

// ErrorCode names the first sentinel err wraps, or CodeInternal.
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}

// ErrorForCode is the inverse of ErrorCode. It returns nil for codes without a sentinel.
func ErrorForCode(code string) error {
	for _, c := range errorCodes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}
