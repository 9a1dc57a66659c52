package ledger

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"occasion-ledger/pkg/logger"
)

const (
	maxNameLength = 255
	dateLayout    = "2006-01-02"
)

type Service struct {
	repo      Repository
	users     UserDirectory
	publisher EventPublisher
	recorder  Recorder
	log       logger.Logger
	now       func() time.Time
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		publisher: noopPublisher{},
		recorder:  noopRecorder{},
		log:       logger.Discard(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithEvents publishes committed clearings to publisher. Publish failures go to log.
func (s *Service) WithEvents(publisher EventPublisher, log logger.Logger) *Service {
	if publisher != nil {
		s.publisher = publisher
	}
	if log != nil {
		s.log = log
	}
	return s
}

func (s *Service) WithRecorder(recorder Recorder) *Service {
	if recorder != nil {
		s.recorder = recorder
	}
	return s
}

func (s *Service) CreateOccasion(ctx context.Context, input CreateOccasionInput) (*Occasion, error) {
	var verrs ValidationErrors

	name := strings.TrimSpace(input.Name)
	switch {
	case name == "":
		verrs.Add("name", ErrNameRequired)
	case utf8.RuneCountInString(name) > maxNameLength:
		verrs.Add("name", ErrNameTooLong)
	}

	date, err := time.Parse(dateLayout, strings.TrimSpace(input.Date))
	if err != nil {
		verrs.Add("date", ErrInvalidDate)
	}

	if err := verrs.orNil(); err != nil {
		return nil, err
	}

	occasion := Occasion{
		ID:          uuid.NewString(),
		Name:        name,
		Date:        date,
		Description: input.Description,
	}
	if err := s.repo.CreateOccasion(ctx, &occasion); err != nil {
		return nil, err
	}

	return &occasion, nil
}

func (s *Service) CreateExpenditure(ctx context.Context, input CreateExpenditureInput) (*ExpenditureWithUtilizers, error) {
	var verrs ValidationErrors

	eventName := strings.TrimSpace(input.EventName)
	switch {
	case eventName == "":
		verrs.Add("event_name", ErrEventNameRequired)
	case utf8.RuneCountInString(eventName) > maxNameLength:
		verrs.Add("event_name", ErrNameTooLong)
	}

	if err := ValidateAmount(input.Amount); err != nil {
		verrs.Add("amount", err)
	}

	utilizerIDs := uniqueIDs(input.UtilizerIDs)
	if len(utilizerIDs) == 0 {
		verrs.Add("utilizers", ErrNoUtilizers)
	}

	expenderID := canonicalID(input.ExpenderID)
	lookup := utilizerIDs
	if expenderID != "" {
		lookup = append([]string{expenderID}, utilizerIDs...)
	}
	known, err := s.users.Usernames(ctx, lookup)
	if err != nil {
		return nil, err
	}
	if expenderID == "" {
		verrs.Add("expender", ErrFieldRequired)
	} else if _, ok := known[expenderID]; !ok {
		verrs.Add("expender", ErrUnknownUser)
	}
	for _, userID := range utilizerIDs {
		if _, ok := known[userID]; !ok {
			verrs.Add("utilizers", ErrUnknownUser)
			break
		}
	}

	var occasionID *string
	if input.OccasionID != nil && strings.TrimSpace(*input.OccasionID) != "" {
		id := canonicalID(*input.OccasionID)
		if _, err := s.getOccasion(ctx, s.repo, id); err != nil {
			if !errors.Is(err, ErrOccasionNotFound) {
				return nil, err
			}
			verrs.Add("occasion", ErrUnknownOccasion)
		}
		occasionID = &id
	}

	if err := verrs.orNil(); err != nil {
		return nil, err
	}

	expenditure := Expenditure{
		ID:         uuid.NewString(),
		OccasionID: occasionID,
		EventName:  eventName,
		Amount:     input.Amount,
		ExpenderID: expenderID,
		Cleared:    false,
		CreatedAt:  s.now(),
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateExpenditure(ctx, &expenditure); err != nil {
			return err
		}
		return tx.AddExpenditureUtilizers(ctx, expenditure.ID, utilizerIDs)
	})
	if err != nil {
		if verrs := danglingReferenceErrors(err); verrs != nil {
			return nil, verrs
		}
		return nil, err
	}

	s.recorder.ExpenditureCreated()
	return &ExpenditureWithUtilizers{Expenditure: expenditure, UtilizerIDs: utilizerIDs}, nil
}

// ClearExpense settles an open expenditure in full on behalf of one utilizer.
// The checks and both writes share one transaction holding the expenditure's
// row lock, so concurrent requests for the same expenditure succeed at most once.
func (s *Service) ClearExpense(ctx context.Context, input ClearExpenseInput) (*ClearedPayment, error) {
	expenditureID, ok := parseID(input.ExpenditureID)
	if !ok {
		s.recorder.ClearRejected(rejectionReason(ErrExpenditureNotFound))
		return nil, ErrExpenditureNotFound
	}
	payerID := canonicalID(input.PayerID)

	var payment PaymentLog
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		current, err := tx.GetExpenditureForUpdate(ctx, expenditureID)
		if err != nil {
			return err
		}
		if current.Cleared {
			return ErrAlreadyCleared
		}
		if ValidateAmount(input.Amount) != nil || !input.Amount.Equal(current.Amount) {
			return ErrAmountMismatch
		}

		utilizers, err := tx.GetUtilizerIDsByExpenditureIDs(ctx, []string{current.ID})
		if err != nil {
			return err
		}
		candidate := ExpenditureWithUtilizers{Expenditure: *current, UtilizerIDs: utilizers[current.ID]}
		if !candidate.Utilizes(payerID) {
			return ErrPayerNotUtilizer
		}

		updated, err := tx.MarkExpenditureCleared(ctx, current.ID)
		if err != nil {
			return err
		}
		if !updated {
			return ErrAlreadyCleared
		}

		payment = PaymentLog{
			ID:            uuid.NewString(),
			ExpenditureID: current.ID,
			PayerID:       payerID,
			PayeeID:       current.ExpenderID,
			Amount:        current.Amount,
			Timestamp:     s.now(),
		}
		return tx.CreatePaymentLog(ctx, &payment)
	})
	if err != nil {
		if reason := rejectionReason(err); reason != "" {
			s.recorder.ClearRejected(reason)
		}
		return nil, err
	}

	cleared := ClearedPayment{
		PaymentLog:    payment,
		PayerUsername: payment.PayerID,
		PayeeUsername: payment.PayeeID,
	}
	names, err := s.users.Usernames(ctx, []string{payment.PayerID, payment.PayeeID})
	if err != nil {
		s.log.InternalError("ledger.clear: resolve usernames failed", err, "payment_log_id", payment.ID)
	} else {
		cleared.PayerUsername = displayName(names, payment.PayerID)
		cleared.PayeeUsername = displayName(names, payment.PayeeID)
	}

	s.recorder.ExpenseCleared(payment.Amount)
	if err := s.publisher.PaymentLogged(ctx, cleared); err != nil {
		s.log.InternalError("ledger.clear: publish payment event failed", err, "payment_log_id", payment.ID)
	}

	return &cleared, nil
}

// OccasionSummary totals an occasion's expenditures from one read snapshot.
func (s *Service) OccasionSummary(ctx context.Context, occasionID string) (*OccasionSummary, error) {
	var (
		occasion     *Occasion
		expenditures []Expenditure
		utilizers    map[string][]string
	)

	err := s.repo.ReadSnapshot(ctx, func(tx Repository) error {
		found, err := s.getOccasion(ctx, tx, occasionID)
		if err != nil {
			return err
		}
		occasion = found

		expenditures, err = tx.ListExpendituresByOccasion(ctx, found.ID)
		if err != nil {
			return err
		}
		if len(expenditures) == 0 {
			return nil
		}

		ids := make([]string, 0, len(expenditures))
		for _, expenditure := range expenditures {
			ids = append(ids, expenditure.ID)
		}
		utilizers, err = tx.GetUtilizerIDsByExpenditureIDs(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}

	var userIDs []string
	amounts := make([]decimal.Decimal, 0, len(expenditures))
	for _, expenditure := range expenditures {
		userIDs = append(userIDs, expenditure.ExpenderID)
		userIDs = append(userIDs, utilizers[expenditure.ID]...)
		amounts = append(amounts, expenditure.Amount)
	}

	names := map[string]string{}
	if len(userIDs) > 0 {
		names, err = s.users.Usernames(ctx, uniqueIDs(userIDs))
		if err != nil {
			return nil, err
		}
	}

	items := make([]SummaryExpenditure, 0, len(expenditures))
	for _, expenditure := range expenditures {
		ids := utilizers[expenditure.ID]
		utilizerNames := make([]string, 0, len(ids))
		for _, id := range ids {
			utilizerNames = append(utilizerNames, displayName(names, id))
		}
		items = append(items, SummaryExpenditure{
			ID:        expenditure.ID,
			EventName: expenditure.EventName,
			Amount:    expenditure.Amount,
			Expender:  displayName(names, expenditure.ExpenderID),
			Utilizers: utilizerNames,
			Cleared:   expenditure.Cleared,
			CreatedAt: expenditure.CreatedAt,
		})
	}

	return &OccasionSummary{
		Occasion:     *occasion,
		TotalAmount:  SumAmounts(amounts...),
		Expenditures: items,
	}, nil
}

func (s *Service) getOccasion(ctx context.Context, repo Repository, occasionID string) (*Occasion, error) {
	id, ok := parseID(occasionID)
	if !ok {
		return nil, ErrOccasionNotFound
	}
	return repo.GetOccasionByID(ctx, id)
}

// danglingReferenceErrors turns a foreign key rejected by the store into the
// field error the same input would have produced during validation.
func danglingReferenceErrors(err error) ValidationErrors {
	if !errors.Is(err, ErrDanglingReference) {
		return nil
	}
	var refErr *ReferenceError
	if errors.As(err, &refErr) && refErr.Field == "occasion" {
		return ValidationErrors{{Field: "occasion", Err: ErrUnknownOccasion}}
	}
	field := "utilizers"
	if refErr != nil && refErr.Field == "expender" {
		field = "expender"
	}
	return ValidationErrors{{Field: field, Err: ErrUnknownUser}}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrExpenditureNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyCleared):
		return "already_cleared"
	case errors.Is(err, ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, ErrPayerNotUtilizer):
		return "payer_not_utilizer"
	default:
		return ""
	}
}

// parseID returns the canonical lowercase form of a UUID in any form uuid.Parse accepts.
func parseID(value string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// canonicalID is parseID that keeps unparseable input as trimmed text, so it
// later fails lookups as an unknown id.
func canonicalID(value string) string {
	if id, ok := parseID(value); ok {
		return id
	}
	return strings.TrimSpace(value)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		id = canonicalID(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

func displayName(names map[string]string, userID string) string {
	if name, ok := names[userID]; ok && name != "" {
		return name
	}
	return userID
}
