package handler

import (
	"net/http"
	"time"

	ledgerdomain "occasion-ledger/internal/domain/ledger"
)

const msgExpenseCleared = "Expense cleared successfully."

type clearExpenseRequest struct {
	ExpenditureID *string     `json:"expenditure_id"`
	PayerID       *string     `json:"payer_id"`
	Amount        amountField `json:"amount"`
}

type clearExpenseResponse struct {
	Message    string             `json:"message"`
	PaymentLog paymentLogResponse `json:"payment_log"`
}

type paymentLogResponse struct {
	ID        string    `json:"id"`
	Payer     string    `json:"payer"`
	Payee     string    `json:"payee"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handlers) ClearExpense(w http.ResponseWriter, r *http.Request) {
	var req clearExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeNonFieldError(w, msgInvalidJSON)
		return
	}

	expenditureID := trimmed(req.ExpenditureID)
	payerID := trimmed(req.PayerID)

	var verrs ledgerdomain.ValidationErrors
	if expenditureID == "" {
		verrs.Add("expenditure_id", ledgerdomain.ErrFieldRequired)
	}
	if payerID == "" {
		verrs.Add("payer_id", ledgerdomain.ErrFieldRequired)
	}
	amount, err := req.Amount.value()
	switch {
	case !req.Amount.set:
		verrs.Add("amount", ledgerdomain.ErrFieldRequired)
	case err != nil:
		verrs.Add("amount", ledgerdomain.ErrAmountInvalid)
	}
	if len(verrs) > 0 {
		h.writeDomainError(w, "clear_expense", verrs, "expenditure_id", expenditureID)
		return
	}

	payment, err := h.Ledger.ClearExpense(r.Context(), ledgerdomain.ClearExpenseInput{
		ExpenditureID: expenditureID,
		PayerID:       payerID,
		Amount:        amount,
	})
	if err != nil {
		h.writeDomainError(w, "clear_expense", err, "expenditure_id", expenditureID, "payer_id", payerID)
		return
	}

	writeJSON(w, http.StatusOK, clearExpenseResponse{
		Message: msgExpenseCleared,
		PaymentLog: paymentLogResponse{
			ID:        payment.ID,
			Payer:     payment.PayerUsername,
			Payee:     payment.PayeeUsername,
			Amount:    ledgerdomain.FormatAmount(payment.Amount),
			Timestamp: payment.Timestamp.UTC(),
		},
	})
}
