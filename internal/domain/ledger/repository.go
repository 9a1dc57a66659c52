package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	// ReadSnapshot runs fn in a read-only transaction that sees one consistent snapshot.
	ReadSnapshot(ctx context.Context, fn func(Repository) error) error
	CreateOccasion(ctx context.Context, occasion *Occasion) error
	GetOccasionByID(ctx context.Context, occasionID string) (*Occasion, error)
	CreateExpenditure(ctx context.Context, expenditure *Expenditure) error
	AddExpenditureUtilizers(ctx context.Context, expenditureID string, userIDs []string) error
	// GetExpenditureForUpdate loads the expenditure and locks it until the transaction ends.
	GetExpenditureForUpdate(ctx context.Context, expenditureID string) (*Expenditure, error)
	ListExpendituresByOccasion(ctx context.Context, occasionID string) ([]Expenditure, error)
	GetUtilizerIDsByExpenditureIDs(ctx context.Context, expenditureIDs []string) (map[string][]string, error)
	// MarkExpenditureCleared flips cleared to true and reports false if it already was.
	MarkExpenditureCleared(ctx context.Context, expenditureID string) (bool, error)
	CreatePaymentLog(ctx context.Context, payment *PaymentLog) error
}

// UserDirectory resolves user ids to usernames. Unknown ids are absent from the result.
type UserDirectory interface {
	Usernames(ctx context.Context, userIDs []string) (map[string]string, error)
}

type EventPublisher interface {
	PaymentLogged(ctx context.Context, payment ClearedPayment) error
}

type Recorder interface {
	ExpenditureCreated()
	ExpenseCleared(amount decimal.Decimal)
	ClearRejected(reason string)
}

type noopPublisher struct{}

func (noopPublisher) PaymentLogged(context.Context, ClearedPayment) error {
	return nil
}

type noopRecorder struct{}

func (noopRecorder) ExpenditureCreated() {}

func (noopRecorder) ExpenseCleared(decimal.Decimal) {}

func (noopRecorder) ClearRejected(string) {}
