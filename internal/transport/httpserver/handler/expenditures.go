package handler

import (
	"net/http"
	"time"

	ledgerdomain "occasion-ledger/internal/domain/ledger"
)

type createExpenditureRequest struct {
	Occasion  *string     `json:"occasion"`
	EventName string      `json:"event_name"`
	Amount    amountField `json:"amount"`
	Expender  *string     `json:"expender"`
	Utilizers []string    `json:"utilizers"`
}

type expenditureResponse struct {
	ID        string    `json:"id"`
	Occasion  *string   `json:"occasion"`
	EventName string    `json:"event_name"`
	Amount    string    `json:"amount"`
	Expender  string    `json:"expender"`
	Utilizers []string  `json:"utilizers"`
	Cleared   bool      `json:"cleared"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handlers) CreateExpenditure(w http.ResponseWriter, r *http.Request) {
	var req createExpenditureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeNonFieldError(w, msgInvalidJSON)
		return
	}

	var verrs ledgerdomain.ValidationErrors
	if !req.Amount.set {
		verrs.Add("amount", ledgerdomain.ErrFieldRequired)
	}
	amount, err := req.Amount.value()
	if req.Amount.set && err != nil {
		verrs.Add("amount", ledgerdomain.ErrAmountInvalid)
	}
	if len(verrs) > 0 {
		h.writeDomainError(w, "expenditures.create", verrs, "event_name", req.EventName)
		return
	}

	expenditure, err := h.Ledger.CreateExpenditure(r.Context(), ledgerdomain.CreateExpenditureInput{
		OccasionID:  optionalString(req.Occasion),
		EventName:   req.EventName,
		Amount:      amount,
		ExpenderID:  trimmed(req.Expender),
		UtilizerIDs: req.Utilizers,
	})
	if err != nil {
		h.writeDomainError(w, "expenditures.create", err, "event_name", req.EventName)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenditureResponse(expenditure))
}

func toExpenditureResponse(expenditure *ledgerdomain.ExpenditureWithUtilizers) expenditureResponse {
	return expenditureResponse{
		ID:        expenditure.ID,
		Occasion:  expenditure.OccasionID,
		EventName: expenditure.EventName,
		Amount:    ledgerdomain.FormatAmount(expenditure.Amount),
		Expender:  expenditure.ExpenderID,
		Utilizers: expenditure.UtilizerIDs,
		Cleared:   expenditure.Cleared,
		CreatedAt: expenditure.CreatedAt.UTC(),
	}
}
