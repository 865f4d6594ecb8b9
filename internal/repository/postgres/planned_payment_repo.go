package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlannedPaymentRepository implements domain.PlannedPaymentRepository using PostgreSQL
type PlannedPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPlannedPaymentRepository creates a new PlannedPaymentRepository
func NewPlannedPaymentRepository(pool *pgxpool.Pool) *PlannedPaymentRepository {
	return &PlannedPaymentRepository{pool: pool}
}

const plannedPaymentColumns = "id, type, amount, account_id, category_id, title, description, one_time, start_date, interval_n, interval_type, auto_create_enabled, last_processed_date, created_at, updated_at"

func scanPlannedPayment(row pgx.Row) (*domain.PlannedPayment, error) {
	var p domain.PlannedPayment
	var amount pgtype.Numeric
	var intervalType *string
	if err := row.Scan(
		&p.ID, &p.Type, &amount, &p.AccountID, &p.CategoryID, &p.Title, &p.Description,
		&p.OneTime, &p.StartDate, &p.IntervalN, &intervalType,
		&p.AutoCreateEnabled, &p.LastProcessedDate, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Amount = pgNumericToDecimal(amount)
	if intervalType != nil {
		unit := domain.IntervalUnit(*intervalType)
		p.IntervalType = &unit
	}
	return &p, nil
}

func intervalTypeString(p *domain.PlannedPayment) *string {
	if p.IntervalType == nil {
		return nil
	}
	s := string(*p.IntervalType)
	return &s
}

// Create creates a new planned payment
func (r *PlannedPaymentRepository) Create(payment *domain.PlannedPayment) (*domain.PlannedPayment, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO planned_payments (type, amount, account_id, category_id, title, description, one_time, start_date, interval_n, interval_type, auto_create_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+plannedPaymentColumns,
		string(payment.Type), amount, payment.AccountID, payment.CategoryID,
		payment.Title, payment.Description, payment.OneTime, payment.StartDate,
		payment.IntervalN, intervalTypeString(payment), payment.AutoCreateEnabled,
	)
	return scanPlannedPayment(row)
}

// GetByID retrieves a planned payment by its ID
func (r *PlannedPaymentRepository) GetByID(id int32) (*domain.PlannedPayment, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+plannedPaymentColumns+" FROM planned_payments WHERE id = $1", id)

	payment, err := scanPlannedPayment(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrPlannedPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetAll retrieves all planned payments
func (r *PlannedPaymentRepository) GetAll() ([]*domain.PlannedPayment, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		"SELECT "+plannedPaymentColumns+" FROM planned_payments ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.PlannedPayment
	for rows.Next() {
		payment, err := scanPlannedPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// Update updates an existing planned payment
func (r *PlannedPaymentRepository) Update(payment *domain.PlannedPayment) (*domain.PlannedPayment, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE planned_payments
		SET type = $2, amount = $3, account_id = $4, category_id = $5, title = $6, description = $7,
		    one_time = $8, start_date = $9, interval_n = $10, interval_type = $11, auto_create_enabled = $12,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+plannedPaymentColumns,
		payment.ID, string(payment.Type), amount, payment.AccountID, payment.CategoryID,
		payment.Title, payment.Description, payment.OneTime, payment.StartDate,
		payment.IntervalN, intervalTypeString(payment), payment.AutoCreateEnabled,
	)

	updated, err := scanPlannedPayment(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrPlannedPaymentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SetLastProcessed moves the watermark without touching any other field
func (r *PlannedPaymentRepository) SetLastProcessed(id int32, lastProcessed time.Time) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		"UPDATE planned_payments SET last_processed_date = $2, updated_at = now() WHERE id = $1",
		id, lastProcessed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlannedPaymentNotFound
	}
	return nil
}

// Delete removes a planned payment
func (r *PlannedPaymentRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, "DELETE FROM planned_payments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlannedPaymentNotFound
	}
	return nil
}
