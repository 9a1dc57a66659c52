package events

import (
	"encoding/json"
	"time"

	ledgerdomain "occasion-ledger/internal/domain/ledger"
)

// PaymentLoggedMessage announces a committed clearing.
type PaymentLoggedMessage struct {
	PaymentLogID  string    `json:"payment_log_id"`
	ExpenditureID string    `json:"expenditure_id"`
	PayerID       string    `json:"payer_id"`
	Payer         string    `json:"payer"`
	PayeeID       string    `json:"payee_id"`
	Payee         string    `json:"payee"`
	Amount        string    `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewPaymentLoggedMessage(payment ledgerdomain.ClearedPayment) PaymentLoggedMessage {
	return PaymentLoggedMessage{
		PaymentLogID:  payment.ID,
		ExpenditureID: payment.ExpenditureID,
		PayerID:       payment.PayerID,
		Payer:         payment.PayerUsername,
		PayeeID:       payment.PayeeID,
		Payee:         payment.PayeeUsername,
		Amount:        ledgerdomain.FormatAmount(payment.Amount),
		Timestamp:     payment.Timestamp.UTC(),
	}
}

func (m PaymentLoggedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
