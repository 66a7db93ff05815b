package allowance

import "github.com/zeebo/errs"

// Error classes returned by the parser and the calculator. Callers can
// test for a kind with e.g. ErrInvalidOrdering.Has(err).
var (
	ErrMalformedInput  = errs.Class("malformed input")
	ErrInvalidDate     = errs.Class("invalid date")
	ErrInvalidOrdering = errs.Class("invalid ordering")
	ErrMissingData     = errs.Class("missing data")
)

// IsCalculationError reports whether err is one of the allowance error
// kinds, i.e. a problem with the timestamps rather than with the system.
func IsCalculationError(err error) bool {
	return ErrMalformedInput.Has(err) ||
		ErrInvalidDate.Has(err) ||
		ErrInvalidOrdering.Has(err) ||
		ErrMissingData.Has(err)
}
