package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	ledgerdomain "occasion-ledger/internal/domain/ledger"
)

const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(ledgerdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ReadSnapshot(ctx context.Context, fn func(ledgerdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

func (r *PostgresRepository) CreateOccasion(ctx context.Context, occasion *ledgerdomain.Occasion) error {
	return r.db.WithContext(ctx).Create(occasion).Error
}

func (r *PostgresRepository) GetOccasionByID(ctx context.Context, occasionID string) (*ledgerdomain.Occasion, error) {
	var occasion ledgerdomain.Occasion
	if err := r.db.WithContext(ctx).Where("id = ?", occasionID).First(&occasion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgerdomain.ErrOccasionNotFound
		}
		return nil, err
	}
	return &occasion, nil
}

func (r *PostgresRepository) CreateExpenditure(ctx context.Context, expenditure *ledgerdomain.Expenditure) error {
	return mapConstraintError(r.db.WithContext(ctx).Create(expenditure).Error)
}

func (r *PostgresRepository) AddExpenditureUtilizers(ctx context.Context, expenditureID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}
	links := make([]ledgerdomain.ExpenditureUtilizer, 0, len(userIDs))
	for i, userID := range userIDs {
		links = append(links, ledgerdomain.ExpenditureUtilizer{
			ExpenditureID: expenditureID,
			UserID:        userID,
			Position:      i,
		})
	}
	return mapConstraintError(r.db.WithContext(ctx).Create(&links).Error)
}

func (r *PostgresRepository) GetExpenditureForUpdate(ctx context.Context, expenditureID string) (*ledgerdomain.Expenditure, error) {
	var expenditure ledgerdomain.Expenditure
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", expenditureID).
		First(&expenditure).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledgerdomain.ErrExpenditureNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expenditure, nil
}

func (r *PostgresRepository) ListExpendituresByOccasion(ctx context.Context, occasionID string) ([]ledgerdomain.Expenditure, error) {
	var expenditures []ledgerdomain.Expenditure
	if err := r.db.WithContext(ctx).
		Where("occasion_id = ?", occasionID).
		Order("created_at asc").
		Order("id asc").
		Find(&expenditures).Error; err != nil {
		return nil, err
	}
	return expenditures, nil
}

func (r *PostgresRepository) GetUtilizerIDsByExpenditureIDs(ctx context.Context, expenditureIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(expenditureIDs))
	if len(expenditureIDs) == 0 {
		return result, nil
	}

	var links []ledgerdomain.ExpenditureUtilizer
	if err := r.db.WithContext(ctx).
		Where("expenditure_id IN ?", expenditureIDs).
		Order("expenditure_id asc").
		Order("position asc").
		Find(&links).Error; err != nil {
		return nil, err
	}
	for _, link := range links {
		result[link.ExpenditureID] = append(result[link.ExpenditureID], link.UserID)
	}
	return result, nil
}

func (r *PostgresRepository) MarkExpenditureCleared(ctx context.Context, expenditureID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ledgerdomain.Expenditure{}).
		Where("id = ? AND cleared = ?", expenditureID, false).
		Update("cleared", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresRepository) CreatePaymentLog(ctx context.Context, payment *ledgerdomain.PaymentLog) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if isPgError(err, uniqueViolation) {
		return ledgerdomain.ErrAlreadyCleared
	}
	return mapConstraintError(err)
}

// referenceFields maps the schema's foreign key names to the input field that
// carried the id.
var referenceFields = map[string]string{
	"expenditures_occasion_id_fkey":      "occasion",
	"expenditures_expender_id_fkey":      "expender",
	"expenditure_utilizers_user_id_fkey": "utilizers",
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != foreignKeyViolation {
		return err
	}
	if field, ok := referenceFields[pgErr.ConstraintName]; ok {
		return &ledgerdomain.ReferenceError{Field: field}
	}
	return ledgerdomain.ErrDanglingReference
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
