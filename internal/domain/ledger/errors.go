package ledger

import (
	"errors"
	"strings"
)

var (
	ErrOccasionNotFound    = errors.New("occasion not found")
	ErrExpenditureNotFound = errors.New("expenditure not found")

	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("ensure this field has no more than 255 characters")
	ErrInvalidDate        = errors.New("invalid date, use YYYY-MM-DD")
	ErrEventNameRequired  = errors.New("event name is required")
	ErrAmountNotPositive  = errors.New("amount must be positive")
	ErrAmountInvalid      = errors.New("a valid number is required")
	ErrAmountFractionSize = errors.New("ensure that there are no more than 2 decimal places")
	ErrAmountTooLarge     = errors.New("ensure that there are no more than 10 digits in total")
	ErrNoUtilizers        = errors.New("at least one utilizer required")
	ErrUnknownUser        = errors.New("unknown user")
	ErrUnknownOccasion    = errors.New("unknown occasion")
	ErrFieldRequired      = errors.New("this field is required")
	ErrDanglingReference  = errors.New("referenced record no longer exists")

	ErrAlreadyCleared   = errors.New("expenditure already cleared")
	ErrAmountMismatch   = errors.New("amount mismatch: must equal the expenditure amount")
	ErrPayerNotUtilizer = errors.New("payer must be a utilizer of the expenditure")
)

// NonFieldErrors is the field name used for problems not tied to one input.
const NonFieldErrors = "non_field_errors"

type FieldError struct {
	Field string
	Err   error
}

// ValidationErrors collects every field problem found in one request.
type ValidationErrors []FieldError

func (v *ValidationErrors) Add(field string, err error) {
	*v = append(*v, FieldError{Field: field, Err: err})
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Err.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, fe := range v {
		errs = append(errs, fe.Err)
	}
	return errs
}

// ByField groups messages by field name, keeping insertion order per field.
func (v ValidationErrors) ByField() map[string][]string {
	result := make(map[string][]string, len(v))
	for _, fe := range v {
		result[fe.Field] = append(result[fe.Field], fe.Err.Error())
	}
	return result
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsClearingRule reports whether err is one of the settlement rules checked
// by ClearExpense after the expenditure was found.
func IsClearingRule(err error) bool {
	return errors.Is(err, ErrAlreadyCleared) ||
		errors.Is(err, ErrAmountMismatch) ||
		errors.Is(err, ErrPayerNotUtilizer)
}

// ReferenceError is a foreign key the store rejected. Field names the input
// that carried the missing id: "occasion", "expender" or "utilizers".
type ReferenceError struct {
	Field string
}

func (e *ReferenceError) Error() string {
	return e.Field + ": " + ErrDanglingReference.Error()
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrDanglingReference
}
