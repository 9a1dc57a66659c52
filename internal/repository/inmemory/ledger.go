package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	ledgerdomain "occasion-ledger/internal/domain/ledger"
)

// LedgerRepository keeps the ledger in process memory. Transactions hold one
// mutex for their whole duration and work on a copy of the state that is
// swapped in only when fn succeeds.
type LedgerRepository struct {
	mu    sync.Mutex
	state *ledgerState
	users *UserRepository
}

type ledgerState struct {
	occasions    map[string]ledgerdomain.Occasion
	expenditures map[string]ledgerdomain.Expenditure
	utilizers    map[string][]string
	payments     map[string]ledgerdomain.PaymentLog
}

func NewLedgerRepository(users *UserRepository) *LedgerRepository {
	return &LedgerRepository{
		state: &ledgerState{
			occasions:    make(map[string]ledgerdomain.Occasion),
			expenditures: make(map[string]ledgerdomain.Expenditure),
			utilizers:    make(map[string][]string),
			payments:     make(map[string]ledgerdomain.PaymentLog),
		},
		users: users,
	}
}

func (r *LedgerRepository) Transaction(ctx context.Context, fn func(ledgerdomain.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	working := r.state.clone()
	if err := fn(&ledgerTx{state: working, users: r.users}); err != nil {
		return err
	}
	r.state = working
	return nil
}

func (r *LedgerRepository) ReadSnapshot(ctx context.Context, fn func(ledgerdomain.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(&ledgerTx{state: r.state.clone(), users: r.users})
}

func (r *LedgerRepository) CreateOccasion(ctx context.Context, occasion *ledgerdomain.Occasion) error {
	return r.Transaction(ctx, func(tx ledgerdomain.Repository) error {
		return tx.CreateOccasion(ctx, occasion)
	})
}

func (r *LedgerRepository) GetOccasionByID(ctx context.Context, occasionID string) (*ledgerdomain.Occasion, error) {
	var occasion *ledgerdomain.Occasion
	err := r.ReadSnapshot(ctx, func(tx ledgerdomain.Repository) error {
		var err error
		occasion, err = tx.GetOccasionByID(ctx, occasionID)
		return err
	})
	return occasion, err
}

func (r *LedgerRepository) CreateExpenditure(ctx context.Context, expenditure *ledgerdomain.Expenditure) error {
	return r.Transaction(ctx, func(tx ledgerdomain.Repository) error {
		return tx.CreateExpenditure(ctx, expenditure)
	})
}

func (r *LedgerRepository) AddExpenditureUtilizers(ctx context.Context, expenditureID string, userIDs []string) error {
	return r.Transaction(ctx, func(tx ledgerdomain.Repository) error {
		return tx.AddExpenditureUtilizers(ctx, expenditureID, userIDs)
	})
}

func (r *LedgerRepository) GetExpenditureForUpdate(ctx context.Context, expenditureID string) (*ledgerdomain.Expenditure, error) {
	var expenditure *ledgerdomain.Expenditure
	err := r.ReadSnapshot(ctx, func(tx ledgerdomain.Repository) error {
		var err error
		expenditure, err = tx.GetExpenditureForUpdate(ctx, expenditureID)
		return err
	})
	return expenditure, err
}

func (r *LedgerRepository) ListExpendituresByOccasion(ctx context.Context, occasionID string) ([]ledgerdomain.Expenditure, error) {
	var expenditures []ledgerdomain.Expenditure
	err := r.ReadSnapshot(ctx, func(tx ledgerdomain.Repository) error {
		var err error
		expenditures, err = tx.ListExpendituresByOccasion(ctx, occasionID)
		return err
	})
	return expenditures, err
}

func (r *LedgerRepository) GetUtilizerIDsByExpenditureIDs(ctx context.Context, expenditureIDs []string) (map[string][]string, error) {
	var utilizers map[string][]string
	err := r.ReadSnapshot(ctx, func(tx ledgerdomain.Repository) error {
		var err error
		utilizers, err = tx.GetUtilizerIDsByExpenditureIDs(ctx, expenditureIDs)
		return err
	})
	return utilizers, err
}

func (r *LedgerRepository) MarkExpenditureCleared(ctx context.Context, expenditureID string) (bool, error) {
	var updated bool
	err := r.Transaction(ctx, func(tx ledgerdomain.Repository) error {
		var err error
		updated, err = tx.MarkExpenditureCleared(ctx, expenditureID)
		return err
	})
	return updated, err
}

func (r *LedgerRepository) CreatePaymentLog(ctx context.Context, payment *ledgerdomain.PaymentLog) error {
	return r.Transaction(ctx, func(tx ledgerdomain.Repository) error {
		return tx.CreatePaymentLog(ctx, payment)
	})
}

// PaymentLogCount reports how many payment logs are stored.
func (r *LedgerRepository) PaymentLogCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.payments)
}

func (s *ledgerState) clone() *ledgerState {
	cloned := &ledgerState{
		occasions:    make(map[string]ledgerdomain.Occasion, len(s.occasions)),
		expenditures: make(map[string]ledgerdomain.Expenditure, len(s.expenditures)),
		utilizers:    make(map[string][]string, len(s.utilizers)),
		payments:     make(map[string]ledgerdomain.PaymentLog, len(s.payments)),
	}
	for id, occasion := range s.occasions {
		cloned.occasions[id] = occasion
	}
	for id, expenditure := range s.expenditures {
		cloned.expenditures[id] = expenditure
	}
	for id, userIDs := range s.utilizers {
		cloned.utilizers[id] = append([]string(nil), userIDs...)
	}
	for id, payment := range s.payments {
		cloned.payments[id] = payment
	}
	return cloned
}

// ledgerTx operates on a transaction's private state while the repository mutex is held.
type ledgerTx struct {
	state *ledgerState
	users *UserRepository
}

func (tx *ledgerTx) Transaction(ctx context.Context, fn func(ledgerdomain.Repository) error) error {
	return fn(tx)
}

func (tx *ledgerTx) ReadSnapshot(ctx context.Context, fn func(ledgerdomain.Repository) error) error {
	return fn(tx)
}

func (tx *ledgerTx) CreateOccasion(ctx context.Context, occasion *ledgerdomain.Occasion) error {
	if occasion.CreatedAt.IsZero() {
		occasion.CreatedAt = time.Now().UTC()
	}
	tx.state.occasions[occasion.ID] = *occasion
	return nil
}

func (tx *ledgerTx) GetOccasionByID(ctx context.Context, occasionID string) (*ledgerdomain.Occasion, error) {
	occasion, ok := tx.state.occasions[occasionID]
	if !ok {
		return nil, ledgerdomain.ErrOccasionNotFound
	}
	return &occasion, nil
}

func (tx *ledgerTx) CreateExpenditure(ctx context.Context, expenditure *ledgerdomain.Expenditure) error {
	if expenditure.OccasionID != nil {
		if _, ok := tx.state.occasions[*expenditure.OccasionID]; !ok {
			return &ledgerdomain.ReferenceError{Field: "occasion"}
		}
	}
	if !tx.userExists(expenditure.ExpenderID) {
		return &ledgerdomain.ReferenceError{Field: "expender"}
	}
	tx.state.expenditures[expenditure.ID] = *expenditure
	return nil
}

func (tx *ledgerTx) AddExpenditureUtilizers(ctx context.Context, expenditureID string, userIDs []string) error {
	if _, ok := tx.state.expenditures[expenditureID]; !ok {
		return ledgerdomain.ErrDanglingReference
	}
	for _, userID := range userIDs {
		if !tx.userExists(userID) {
			return &ledgerdomain.ReferenceError{Field: "utilizers"}
		}
	}
	tx.state.utilizers[expenditureID] = append(tx.state.utilizers[expenditureID], userIDs...)
	return nil
}

func (tx *ledgerTx) GetExpenditureForUpdate(ctx context.Context, expenditureID string) (*ledgerdomain.Expenditure, error) {
	expenditure, ok := tx.state.expenditures[expenditureID]
	if !ok {
		return nil, ledgerdomain.ErrExpenditureNotFound
	}
	return &expenditure, nil
}

func (tx *ledgerTx) ListExpendituresByOccasion(ctx context.Context, occasionID string) ([]ledgerdomain.Expenditure, error) {
	var expenditures []ledgerdomain.Expenditure
	for _, expenditure := range tx.state.expenditures {
		if expenditure.OccasionID != nil && *expenditure.OccasionID == occasionID {
			expenditures = append(expenditures, expenditure)
		}
	}
	sort.Slice(expenditures, func(i, j int) bool {
		if !expenditures[i].CreatedAt.Equal(expenditures[j].CreatedAt) {
			return expenditures[i].CreatedAt.Before(expenditures[j].CreatedAt)
		}
		return expenditures[i].ID < expenditures[j].ID
	})
	return expenditures, nil
}

func (tx *ledgerTx) GetUtilizerIDsByExpenditureIDs(ctx context.Context, expenditureIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(expenditureIDs))
	for _, id := range expenditureIDs {
		if userIDs, ok := tx.state.utilizers[id]; ok {
			result[id] = append([]string(nil), userIDs...)
		}
	}
	return result, nil
}

func (tx *ledgerTx) MarkExpenditureCleared(ctx context.Context, expenditureID string) (bool, error) {
	expenditure, ok := tx.state.expenditures[expenditureID]
	if !ok || expenditure.Cleared {
		return false, nil
	}
	expenditure.Cleared = true
	tx.state.expenditures[expenditureID] = expenditure
	return true, nil
}

func (tx *ledgerTx) CreatePaymentLog(ctx context.Context, payment *ledgerdomain.PaymentLog) error {
	if _, ok := tx.state.expenditures[payment.ExpenditureID]; !ok {
		return ledgerdomain.ErrDanglingReference
	}
	if _, ok := tx.state.payments[payment.ExpenditureID]; ok {
		return ledgerdomain.ErrAlreadyCleared
	}
	tx.state.payments[payment.ExpenditureID] = *payment
	return nil
}

func (tx *ledgerTx) userExists(userID string) bool {
	if tx.users == nil {
		return true
	}
	return tx.users.exists(userID)
}
