package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecurringHistoryRepository implements domain.RecurringHistoryRepository using PostgreSQL
type RecurringHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewRecurringHistoryRepository creates a new RecurringHistoryRepository
func NewRecurringHistoryRepository(pool *pgxpool.Pool) *RecurringHistoryRepository {
	return &RecurringHistoryRepository{pool: pool}
}

const historyColumns = "id, planned_payment_id, transaction_id, scheduled_date, amount, created_date"

func scanHistory(row pgx.Row) (*domain.RecurringHistory, error) {
	var h domain.RecurringHistory
	var amount pgtype.Numeric
	if err := row.Scan(
		&h.ID, &h.PlannedPaymentID, &h.TransactionID, &h.ScheduledDate, &amount, &h.CreatedDate,
	); err != nil {
		return nil, err
	}
	h.Amount = pgNumericToDecimal(amount)
	return &h, nil
}

// Create inserts a history record. The unique constraint on
// (planned_payment_id, scheduled_date) makes concurrent materialization of
// the same occurrence fail here instead of double-writing.
func (r *RecurringHistoryRepository) Create(record *domain.RecurringHistory) (*domain.RecurringHistory, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(record.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO recurring_history (planned_payment_id, transaction_id, scheduled_date, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING `+historyColumns,
		record.PlannedPaymentID, record.TransactionID, record.ScheduledDate, amount,
	)

	created, err := scanHistory(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrDuplicateOccurrence
		}
		return nil, err
	}
	return created, nil
}

// GetByPlannedPaymentID retrieves every history record for a planned
// payment, oldest occurrence first
func (r *RecurringHistoryRepository) GetByPlannedPaymentID(plannedPaymentID int32) ([]*domain.RecurringHistory, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		"SELECT "+historyColumns+" FROM recurring_history WHERE planned_payment_id = $1 ORDER BY scheduled_date",
		plannedPaymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.RecurringHistory
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteByPlannedPaymentID removes all history records for a planned payment
func (r *RecurringHistoryRepository) DeleteByPlannedPaymentID(plannedPaymentID int32) error {
	ctx := context.Background()
	_, err := r.pool.Exec(ctx,
		"DELETE FROM recurring_history WHERE planned_payment_id = $1", plannedPaymentID)
	return err
}
