package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Occasion struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	Date        time.Time `gorm:"type:date;not null"`
	Description *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

type Expenditure struct {
	ID         string          `gorm:"type:uuid;primaryKey"`
	OccasionID *string         `gorm:"type:uuid;index"`
	EventName  string          `gorm:"size:255;not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	ExpenderID string          `gorm:"type:uuid;index;not null"`
	Cleared    bool            `gorm:"not null;default:false"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// ExpenditureUtilizer links an expenditure to one user who owes a share.
// Position keeps the order the utilizers were submitted in.
type ExpenditureUtilizer struct {
	ExpenditureID string `gorm:"type:uuid;primaryKey"`
	UserID        string `gorm:"type:uuid;primaryKey"`
	Position      int    `gorm:"not null"`
}

type PaymentLog struct {
	ID            string          `gorm:"type:uuid;primaryKey"`
	ExpenditureID string          `gorm:"type:uuid;uniqueIndex;not null"`
	PayerID       string          `gorm:"type:uuid;not null"`
	PayeeID       string          `gorm:"type:uuid;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Timestamp     time.Time       `gorm:"not null"`
}

type ExpenditureWithUtilizers struct {
	Expenditure
	UtilizerIDs []string
}

// Utilizes reports whether userID is among the expenditure's utilizers.
func (e ExpenditureWithUtilizers) Utilizes(userID string) bool {
	for _, id := range e.UtilizerIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type CreateOccasionInput struct {
	Name        string
	Date        string
	Description *string
}

type CreateExpenditureInput struct {
	OccasionID  *string
	EventName   string
	Amount      decimal.Decimal
	ExpenderID  string
	UtilizerIDs []string
}

type ClearExpenseInput struct {
	ExpenditureID string
	PayerID       string
	Amount        decimal.Decimal
}

// ClearedPayment is a committed payment log with payer and payee resolved to usernames.
type ClearedPayment struct {
	PaymentLog
	PayerUsername string
	PayeeUsername string
}

type OccasionSummary struct {
	Occasion     Occasion
	TotalAmount  decimal.Decimal
	Expenditures []SummaryExpenditure
}

type SummaryExpenditure struct {
	ID        string
	EventName string
	Amount    decimal.Decimal
	Expender  string
	Utilizers []string
	Cleared   bool
	CreatedAt time.Time
}
