package handler

import (
	"errors"
	"net/http"

	ledgerdomain "occasion-ledger/internal/domain/ledger"
	userdomain "occasion-ledger/internal/domain/user"
)

// writeDomainError maps service errors to responses. op prefixes log lines.
func (h *Handlers) writeDomainError(w http.ResponseWriter, op string, err error, args ...any) {
	var verrs ledgerdomain.ValidationErrors
	var userField *userdomain.FieldError

	switch {
	case errors.As(err, &verrs):
		h.log.BusinessError(op+": validation failed", err, args...)
		writeFieldErrors(w, verrs.ByField())
	case errors.As(err, &userField):
		h.log.BusinessError(op+": validation failed", err, args...)
		writeFieldErrors(w, map[string][]string{userField.Field: {userField.Err.Error()}})
	case ledgerdomain.IsClearingRule(err):
		h.log.BusinessError(op+": clearing rejected", err, args...)
		writeNonFieldError(w, err.Error())
	case errors.Is(err, ledgerdomain.ErrExpenditureNotFound):
		h.log.BusinessError(op+": expenditure not found", err, args...)
		writeError(w, http.StatusNotFound, "Expenditure not found.")
	case errors.Is(err, ledgerdomain.ErrOccasionNotFound):
		h.log.BusinessError(op+": occasion not found", err, args...)
		writeError(w, http.StatusNotFound, "Occasion not found.")
	default:
		h.log.InternalError(op+": failed", err, args...)
		writeInternalError(w)
	}
}
