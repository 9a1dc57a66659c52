package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const (
	userA = "0b6a4c2e-8f3d-4f7a-9a51-000000000001"
	userB = "0b6a4c2e-8f3d-4f7a-9a51-000000000002"
	userC = "0b6a4c2e-8f3d-4f7a-9a51-000000000003"
)

type fakeLedgerRepo struct {
	mu           sync.Mutex
	occasions    map[string]*Occasion
	expenditures map[string]*Expenditure
	utilizers    map[string][]string
	payments     []PaymentLog
	snapshots    int
	createErr    error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		occasions:    make(map[string]*Occasion),
		expenditures: make(map[string]*Expenditure),
		utilizers:    make(map[string][]string),
	}
}

// Transaction serializes callers the way a row lock would.
func (r *fakeLedgerRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r)
}

func (r *fakeLedgerRepo) ReadSnapshot(ctx context.Context, fn func(Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots++
	return fn(r)
}

func (r *fakeLedgerRepo) CreateOccasion(ctx context.Context, occasion *Occasion) error {
	r.occasions[occasion.ID] = occasion
	return nil
}

func (r *fakeLedgerRepo) GetOccasionByID(ctx context.Context, occasionID string) (*Occasion, error) {
	occasion, ok := r.occasions[occasionID]
	if !ok {
		return nil, ErrOccasionNotFound
	}
	return occasion, nil
}

func (r *fakeLedgerRepo) CreateExpenditure(ctx context.Context, expenditure *Expenditure) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *expenditure
	r.expenditures[expenditure.ID] = &copied
	return nil
}

func (r *fakeLedgerRepo) AddExpenditureUtilizers(ctx context.Context, expenditureID string, userIDs []string) error {
	r.utilizers[expenditureID] = append([]string(nil), userIDs...)
	return nil
}

func (r *fakeLedgerRepo) GetExpenditureForUpdate(ctx context.Context, expenditureID string) (*Expenditure, error) {
	expenditure, ok := r.expenditures[expenditureID]
	if !ok {
		return nil, ErrExpenditureNotFound
	}
	copied := *expenditure
	return &copied, nil
}

func (r *fakeLedgerRepo) ListExpendituresByOccasion(ctx context.Context, occasionID string) ([]Expenditure, error) {
	var result []Expenditure
	for _, expenditure := range r.expenditures {
		if expenditure.OccasionID != nil && *expenditure.OccasionID == occasionID {
			result = append(result, *expenditure)
		}
	}
	return result, nil
}

func (r *fakeLedgerRepo) GetUtilizerIDsByExpenditureIDs(ctx context.Context, expenditureIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(expenditureIDs))
	for _, id := range expenditureIDs {
		result[id] = r.utilizers[id]
	}
	return result, nil
}

func (r *fakeLedgerRepo) MarkExpenditureCleared(ctx context.Context, expenditureID string) (bool, error) {
	expenditure, ok := r.expenditures[expenditureID]
	if !ok || expenditure.Cleared {
		return false, nil
	}
	expenditure.Cleared = true
	return true, nil
}

func (r *fakeLedgerRepo) CreatePaymentLog(ctx context.Context, payment *PaymentLog) error {
	r.payments = append(r.payments, *payment)
	return nil
}

type fakeDirectory map[string]string

func (d fakeDirectory) Usernames(ctx context.Context, userIDs []string) (map[string]string, error) {
	result := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if name, ok := d[id]; ok {
			result[id] = name
		}
	}
	return result, nil
}

type fakePublisher struct {
	published []ClearedPayment
	err       error
}

func (p *fakePublisher) PaymentLogged(ctx context.Context, payment ClearedPayment) error {
	p.published = append(p.published, payment)
	return p.err
}

type fakeRecorder struct {
	created  int
	cleared  int
	rejected map[string]int
}

func (r *fakeRecorder) ExpenditureCreated() { r.created++ }

func (r *fakeRecorder) ExpenseCleared(decimal.Decimal) { r.cleared++ }

func (r *fakeRecorder) ClearRejected(reason string) {
	if r.rejected == nil {
		r.rejected = make(map[string]int)
	}
	r.rejected[reason]++
}

func newTestService() (*Service, *fakeLedgerRepo) {
	repo := newFakeLedgerRepo()
	users := fakeDirectory{userA: "alice", userB: "bob", userC: "carol"}
	return NewService(repo, users), repo
}

func mustAmount(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	amount, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse amount %q: %v", value, err)
	}
	return amount
}

func createTrip(t *testing.T, svc *Service) *Occasion {
	t.Helper()
	occasion, err := svc.CreateOccasion(context.Background(), CreateOccasionInput{Name: "Trip", Date: "2025-01-01"})
	if err != nil {
		t.Fatalf("create occasion: %v", err)
	}
	return occasion
}

func createTaxi(t *testing.T, svc *Service, occasionID string) *ExpenditureWithUtilizers {
	t.Helper()
	expenditure, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
		OccasionID:  &occasionID,
		EventName:   "Taxi",
		Amount:      mustAmount(t, "40.00"),
		ExpenderID:  userA,
		UtilizerIDs: []string{userB, userC},
	})
	if err != nil {
		t.Fatalf("create expenditure: %v", err)
	}
	return expenditure
}

func fieldMessages(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	return verrs.ByField()
}

func TestCreateOccasionTrimsName(t *testing.T) {
	svc, repo := newTestService()

	occasion, err := svc.CreateOccasion(context.Background(), CreateOccasionInput{Name: "  Birthday Party ", Date: "2025-03-26"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if occasion.Name != "Birthday Party" {
		t.Fatalf("expected trimmed name, got %q", occasion.Name)
	}
	if !occasion.Date.Equal(time.Date(2025, 3, 26, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", occasion.Date)
	}
	if _, ok := repo.occasions[occasion.ID]; !ok {
		t.Fatalf("expected occasion persisted")
	}
}

func TestCreateOccasionReportsAllFieldErrors(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.CreateOccasion(context.Background(), CreateOccasionInput{Name: " ", Date: "invalid-date"})
	fields := fieldMessages(t, err)
	if len(fields["name"]) != 1 || len(fields["date"]) != 1 {
		t.Fatalf("expected name and date errors, got %v", fields)
	}
	if !errors.Is(err, ErrNameRequired) || !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected sentinels reachable through errors.Is, got %v", err)
	}
	if len(repo.occasions) != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestCreateExpenditureStartsOpen(t *testing.T) {
	svc, repo := newTestService()
	recorder := &fakeRecorder{}
	svc.WithRecorder(recorder)
	occasion := createTrip(t, svc)

	expenditure := createTaxi(t, svc, occasion.ID)

	if expenditure.Cleared {
		t.Fatalf("expected expenditure to start open")
	}
	if expenditure.CreatedAt.IsZero() {
		t.Fatalf("expected created_at set")
	}
	if got := repo.utilizers[expenditure.ID]; len(got) != 2 || got[0] != userB || got[1] != userC {
		t.Fatalf("expected utilizers [B C], got %v", got)
	}
	if recorder.created != 1 {
		t.Fatalf("expected one creation recorded, got %d", recorder.created)
	}
}

func TestCreateExpenditureRejectsNonPositiveAmounts(t *testing.T) {
	for _, value := range []string{"0", "0.00", "-1", "-40.00"} {
		svc, repo := newTestService()
		_, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
			EventName:   "Taxi",
			Amount:      mustAmount(t, value),
			ExpenderID:  userA,
			UtilizerIDs: []string{userB},
		})
		fields := fieldMessages(t, err)
		if len(fields["amount"]) != 1 || fields["amount"][0] != ErrAmountNotPositive.Error() {
			t.Fatalf("amount %s: expected amount field error, got %v", value, fields)
		}
		if len(repo.expenditures) != 0 {
			t.Fatalf("amount %s: expected nothing persisted", value)
		}
	}
}

func TestCreateExpenditureRejectsExcessPrecision(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
		EventName:   "Taxi",
		Amount:      mustAmount(t, "10.005"),
		ExpenderID:  userA,
		UtilizerIDs: []string{userB},
	})
	if !errors.Is(err, ErrAmountFractionSize) {
		t.Fatalf("expected ErrAmountFractionSize, got %v", err)
	}

	_, err = svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
		EventName:   "Taxi",
		Amount:      mustAmount(t, "100000000.00"),
		ExpenderID:  userA,
		UtilizerIDs: []string{userB},
	})
	if !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestCreateExpenditureRequiresUtilizers(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
		EventName:   "Taxi",
		Amount:      mustAmount(t, "40"),
		ExpenderID:  userA,
		UtilizerIDs: []string{" ", ""},
	})
	fields := fieldMessages(t, err)
	if len(fields["utilizers"]) != 1 || fields["utilizers"][0] != ErrNoUtilizers.Error() {
		t.Fatalf("expected utilizers field error, got %v", fields)
	}
	if len(repo.expenditures) != 0 {
		t.Fatalf("expected nothing persisted")
	}
}

func TestCreateExpenditureUnknownUsers(t *testing.T) {
	svc, _ := newTestService()
	stranger := "0b6a4c2e-8f3d-4f7a-9a51-0000000000ff"

	_, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
		EventName:   "Taxi",
		Amount:      mustAmount(t, "40"),
		ExpenderID:  stranger,
		UtilizerIDs: []string{userB, stranger},
	})
	fields := fieldMessages(t, err)
	if len(fields["expender"]) != 1 || len(fields["utilizers"]) != 1 {
		t.Fatalf("expected expender and utilizers errors, got %v", fields)
	}
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestCreateExpenditureUnknownOccasion(t *testing.T) {
	svc, _ := newTestService()
	missing := "0b6a4c2e-8f3d-4f7a-9a51-00000000abcd"

	_, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
		OccasionID:  &missing,
		EventName:   "Taxi",
		Amount:      mustAmount(t, "40"),
		ExpenderID:  userA,
		UtilizerIDs: []string{userB},
	})
	if !errors.Is(err, ErrUnknownOccasion) {
		t.Fatalf("expected ErrUnknownOccasion, got %v", err)
	}
}

func TestCreateExpenditureRejectsOutOfRangeExponent(t *testing.T) {
	cases := map[string]error{
		"1e2000000000":  ErrAmountTooLarge,
		"1e-2000000000": ErrAmountFractionSize,
	}
	for value, want := range cases {
		svc, repo := newTestService()
		_, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
			EventName:   "Taxi",
			Amount:      mustAmount(t, value),
			ExpenderID:  userA,
			UtilizerIDs: []string{userB},
		})
		fields := fieldMessages(t, err)
		if len(fields["amount"]) != 1 || fields["amount"][0] != want.Error() {
			t.Fatalf("amount %s: expected %v, got %v", value, want, fields)
		}
		if len(repo.expenditures) != 0 {
			t.Fatalf("amount %s: expected nothing persisted", value)
		}
	}
}

func TestCreateExpenditureCanonicalizesIDs(t *testing.T) {
	svc, repo := newTestService()
	occasion := createTrip(t, svc)
	occasionID := "urn:uuid:" + strings.ToUpper(occasion.ID)

	expenditure, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
		OccasionID:  &occasionID,
		EventName:   "Taxi",
		Amount:      mustAmount(t, "40"),
		ExpenderID:  strings.ToUpper(userA),
		UtilizerIDs: []string{"{" + userB + "}", userB, strings.ToUpper(userC)},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if expenditure.OccasionID == nil || *expenditure.OccasionID != occasion.ID || expenditure.ExpenderID != userA {
		t.Fatalf("expected canonical occasion and expender, got %+v", expenditure.Expenditure)
	}
	if got := repo.utilizers[expenditure.ID]; len(got) != 2 || got[0] != userB || got[1] != userC {
		t.Fatalf("expected utilizers [B C], got %v", got)
	}
}

func TestCreateExpenditureDanglingReferenceIsFieldError(t *testing.T) {
	cases := []struct {
		err   error
		field string
		want  error
	}{
		{err: &ReferenceError{Field: "expender"}, field: "expender", want: ErrUnknownUser},
		{err: &ReferenceError{Field: "utilizers"}, field: "utilizers", want: ErrUnknownUser},
		{err: &ReferenceError{Field: "occasion"}, field: "occasion", want: ErrUnknownOccasion},
		{err: ErrDanglingReference, field: "utilizers", want: ErrUnknownUser},
	}

	for _, tc := range cases {
		svc, repo := newTestService()
		repo.createErr = tc.err

		_, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
			EventName:   "Taxi",
			Amount:      mustAmount(t, "40"),
			ExpenderID:  userA,
			UtilizerIDs: []string{userB},
		})
		fields := fieldMessages(t, err)
		if len(fields) != 1 || len(fields[tc.field]) != 1 || fields[tc.field][0] != tc.want.Error() {
			t.Fatalf("%v: expected %s error %q, got %v", tc.err, tc.field, tc.want, fields)
		}
	}
}

func TestClearExpenseEndToEnd(t *testing.T) {
	svc, repo := newTestService()
	publisher := &fakePublisher{}
	svc.WithEvents(publisher, nil)
	occasion := createTrip(t, svc)
	expenditure := createTaxi(t, svc, occasion.ID)

	payment, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
		ExpenditureID: expenditure.ID,
		PayerID:       userB,
		Amount:        mustAmount(t, "40.00"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payment.PayerID != userB || payment.PayeeID != userA {
		t.Fatalf("expected payer B payee A, got %+v", payment.PaymentLog)
	}
	if payment.PayerUsername != "bob" || payment.PayeeUsername != "alice" {
		t.Fatalf("expected usernames bob/alice, got %q/%q", payment.PayerUsername, payment.PayeeUsername)
	}
	if !payment.Amount.Equal(mustAmount(t, "40")) {
		t.Fatalf("expected amount 40.00, got %s", payment.Amount)
	}
	if !repo.expenditures[expenditure.ID].Cleared {
		t.Fatalf("expected expenditure cleared")
	}
	if len(publisher.published) != 1 {
		t.Fatalf("expected one event published, got %d", len(publisher.published))
	}

	_, err = svc.ClearExpense(context.Background(), ClearExpenseInput{
		ExpenditureID: expenditure.ID,
		PayerID:       userC,
		Amount:        mustAmount(t, "40.00"),
	})
	if !errors.Is(err, ErrAlreadyCleared) {
		t.Fatalf("expected ErrAlreadyCleared, got %v", err)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected one payment log, got %d", len(repo.payments))
	}
}

func TestClearExpenseTwiceWithSamePayload(t *testing.T) {
	svc, repo := newTestService()
	recorder := &fakeRecorder{}
	svc.WithRecorder(recorder)
	expenditure := createTaxi(t, svc, createTrip(t, svc).ID)
	input := ClearExpenseInput{ExpenditureID: expenditure.ID, PayerID: userB, Amount: mustAmount(t, "40")}

	if _, err := svc.ClearExpense(context.Background(), input); err != nil {
		t.Fatalf("expected first clear to succeed, got %v", err)
	}
	if _, err := svc.ClearExpense(context.Background(), input); !errors.Is(err, ErrAlreadyCleared) {
		t.Fatalf("expected ErrAlreadyCleared, got %v", err)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected payment count to stay 1, got %d", len(repo.payments))
	}
	if recorder.cleared != 1 || recorder.rejected["already_cleared"] != 1 {
		t.Fatalf("unexpected recorder state %+v", recorder)
	}
}

func TestClearExpenseAmountMismatch(t *testing.T) {
	for _, value := range []string{"39.99", "40.01", "0", "-40", "400"} {
		svc, repo := newTestService()
		expenditure := createTaxi(t, svc, createTrip(t, svc).ID)

		_, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
			ExpenditureID: expenditure.ID,
			PayerID:       userB,
			Amount:        mustAmount(t, value),
		})
		if !errors.Is(err, ErrAmountMismatch) {
			t.Fatalf("amount %s: expected ErrAmountMismatch, got %v", value, err)
		}
		if repo.expenditures[expenditure.ID].Cleared || len(repo.payments) != 0 {
			t.Fatalf("amount %s: expected no writes", value)
		}
	}
}

func TestClearExpenseAcceptsEqualDecimalScale(t *testing.T) {
	svc, _ := newTestService()
	expenditure := createTaxi(t, svc, createTrip(t, svc).ID)

	if _, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
		ExpenditureID: expenditure.ID,
		PayerID:       userC,
		Amount:        mustAmount(t, "40"),
	}); err != nil {
		t.Fatalf("expected 40 to equal 40.00, got %v", err)
	}
}

func TestClearExpensePayerMustBeUtilizer(t *testing.T) {
	for _, payer := range []string{userA, "0b6a4c2e-8f3d-4f7a-9a51-0000000000ff", ""} {
		svc, repo := newTestService()
		expenditure := createTaxi(t, svc, createTrip(t, svc).ID)

		_, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
			ExpenditureID: expenditure.ID,
			PayerID:       payer,
			Amount:        mustAmount(t, "40"),
		})
		if !errors.Is(err, ErrPayerNotUtilizer) {
			t.Fatalf("payer %q: expected ErrPayerNotUtilizer, got %v", payer, err)
		}
		if len(repo.payments) != 0 {
			t.Fatalf("payer %q: expected no payment log", payer)
		}
	}
}

func TestClearExpenseChecksInOrder(t *testing.T) {
	svc, _ := newTestService()
	expenditure := createTaxi(t, svc, createTrip(t, svc).ID)

	_, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
		ExpenditureID: expenditure.ID,
		PayerID:       userA,
		Amount:        mustAmount(t, "1"),
	})
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected amount check before payer check, got %v", err)
	}
}

func TestClearExpenseNotFound(t *testing.T) {
	svc, _ := newTestService()
	recorder := &fakeRecorder{}
	svc.WithRecorder(recorder)

	ids := []string{"0b6a4c2e-8f3d-4f7a-9a51-00000000abcd", "42", ""}
	for _, id := range ids {
		_, err := svc.ClearExpense(context.Background(), ClearExpenseInput{ExpenditureID: id, PayerID: userB, Amount: mustAmount(t, "1")})
		if !errors.Is(err, ErrExpenditureNotFound) {
			t.Fatalf("id %q: expected ErrExpenditureNotFound, got %v", id, err)
		}
	}
	if recorder.rejected["not_found"] != len(ids) {
		t.Fatalf("expected %d not_found rejections, got %v", len(ids), recorder.rejected)
	}
}

func TestClearExpenseAcceptsAlternateIDForms(t *testing.T) {
	svc, repo := newTestService()
	expenditure := createTaxi(t, svc, createTrip(t, svc).ID)

	payment, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
		ExpenditureID: "urn:uuid:" + expenditure.ID,
		PayerID:       strings.ToUpper(userB),
		Amount:        mustAmount(t, "40"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if payment.ExpenditureID != expenditure.ID || payment.PayerID != userB {
		t.Fatalf("expected canonical ids on the payment log, got %+v", payment.PaymentLog)
	}
	if payment.PayerUsername != "bob" {
		t.Fatalf("expected payer bob, got %q", payment.PayerUsername)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected one payment log, got %d", len(repo.payments))
	}
}

func TestClearExpenseRejectsOutOfRangeExponent(t *testing.T) {
	for _, value := range []string{"1e2000000000", "1e-2000000000"} {
		svc, repo := newTestService()
		expenditure := createTaxi(t, svc, createTrip(t, svc).ID)

		_, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
			ExpenditureID: expenditure.ID,
			PayerID:       userB,
			Amount:        mustAmount(t, value),
		})
		if !errors.Is(err, ErrAmountMismatch) {
			t.Fatalf("amount %s: expected ErrAmountMismatch, got %v", value, err)
		}
		if repo.expenditures[expenditure.ID].Cleared || len(repo.payments) != 0 {
			t.Fatalf("amount %s: expected no writes", value)
		}
	}
}

func TestClearExpenseConcurrentRequestsSucceedOnce(t *testing.T) {
	svc, repo := newTestService()
	expenditure := createTaxi(t, svc, createTrip(t, svc).ID)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		payer := userB
		if i%2 == 1 {
			payer = userC
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
				ExpenditureID: expenditure.ID,
				PayerID:       payer,
				Amount:        decimal.RequireFromString("40.00"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrAlreadyCleared):
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one success, got %d", succeeded)
	}
	if len(repo.payments) != 1 {
		t.Fatalf("expected one payment log, got %d", len(repo.payments))
	}
}

func TestClearExpensePublishFailureIsNotSurfaced(t *testing.T) {
	svc, _ := newTestService()
	svc.WithEvents(&fakePublisher{err: errors.New("broker down")}, nil)
	expenditure := createTaxi(t, svc, createTrip(t, svc).ID)

	if _, err := svc.ClearExpense(context.Background(), ClearExpenseInput{
		ExpenditureID: expenditure.ID,
		PayerID:       userB,
		Amount:        mustAmount(t, "40"),
	}); err != nil {
		t.Fatalf("expected publish failure to be swallowed, got %v", err)
	}
}

func TestOccasionSummaryTotalsExactly(t *testing.T) {
	svc, repo := newTestService()
	occasion := createTrip(t, svc)
	for _, name := range []string{"Hotel", "Dinner"} {
		_, err := svc.CreateExpenditure(context.Background(), CreateExpenditureInput{
			OccasionID:  &occasion.ID,
			EventName:   name,
			Amount:      mustAmount(t, "150.25"),
			ExpenderID:  userA,
			UtilizerIDs: []string{userB, userC},
		})
		if err != nil {
			t.Fatalf("create expenditure: %v", err)
		}
	}

	summary, err := svc.OccasionSummary(context.Background(), occasion.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if FormatAmount(summary.TotalAmount) != "300.50" {
		t.Fatalf("expected total 300.50, got %s", FormatAmount(summary.TotalAmount))
	}
	if len(summary.Expenditures) != 2 {
		t.Fatalf("expected 2 expenditures, got %d", len(summary.Expenditures))
	}
	item := summary.Expenditures[0]
	if item.Expender != "alice" {
		t.Fatalf("expected expender username, got %q", item.Expender)
	}
	if len(item.Utilizers) != 2 || item.Utilizers[0] != "bob" || item.Utilizers[1] != "carol" {
		t.Fatalf("expected utilizer usernames, got %v", item.Utilizers)
	}
	if repo.snapshots != 1 {
		t.Fatalf("expected summary read inside one snapshot, got %d", repo.snapshots)
	}
}

func TestOccasionSummaryEmpty(t *testing.T) {
	svc, _ := newTestService()
	occasion := createTrip(t, svc)

	summary, err := svc.OccasionSummary(context.Background(), occasion.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if FormatAmount(summary.TotalAmount) != "0.00" {
		t.Fatalf("expected 0.00, got %s", FormatAmount(summary.TotalAmount))
	}
	if summary.Expenditures == nil || len(summary.Expenditures) != 0 {
		t.Fatalf("expected empty expenditure list, got %v", summary.Expenditures)
	}
}

func TestOccasionSummaryAcceptsURN(t *testing.T) {
	svc, _ := newTestService()
	occasion := createTrip(t, svc)

	summary, err := svc.OccasionSummary(context.Background(), "urn:uuid:"+occasion.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if summary.Occasion.ID != occasion.ID {
		t.Fatalf("expected occasion %s, got %s", occasion.ID, summary.Occasion.ID)
	}
}

func TestOccasionSummaryNotFound(t *testing.T) {
	svc, _ := newTestService()

	for _, id := range []string{"0b6a4c2e-8f3d-4f7a-9a51-00000000abcd", "999"} {
		if _, err := svc.OccasionSummary(context.Background(), id); !errors.Is(err, ErrOccasionNotFound) {
			t.Fatalf("id %q: expected ErrOccasionNotFound, got %v", id, err)
		}
	}
}
