package postgres

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = "id, account_id, type, amount, title, description, category_id, date_time, planned_payment_id, transfer_pair_id, created_at, updated_at, deleted_at"

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount pgtype.Numeric
	if err := row.Scan(
		&t.ID, &t.AccountID, &t.Type, &amount, &t.Title, &t.Description,
		&t.CategoryID, &t.DateTime, &t.PlannedPaymentID, &t.TransferPairID,
		&t.CreatedAt, &t.UpdatedAt, &t.DeletedAt,
	); err != nil {
		return nil, err
	}
	t.Amount = pgNumericToDecimal(amount)
	return &t, nil
}

// queryRower is satisfied by both *pgxpool.Pool and pgx.Tx
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *TransactionRepository) insert(ctx context.Context, q queryRower, tx *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(tx.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := q.QueryRow(ctx, `
		INSERT INTO transactions (account_id, type, amount, title, description, category_id, date_time, planned_payment_id, transfer_pair_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+transactionColumns,
		tx.AccountID, string(tx.Type), amount, tx.Title, tx.Description,
		tx.CategoryID, tx.DateTime, tx.PlannedPaymentID, tx.TransferPairID,
	)
	return scanTransaction(row)
}

// Create creates a new transaction
func (r *TransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	return r.insert(context.Background(), r.pool, tx)
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1 AND deleted_at IS NULL", id)

	tx, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// GetFiltered retrieves transactions matching the filters, newest first,
// paginated
func (r *TransactionRepository) GetFiltered(filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	where := "WHERE deleted_at IS NULL"
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.AccountID != nil {
		where += " AND account_id = " + arg(*filters.AccountID)
	}
	if filters.CategoryID != nil {
		where += " AND category_id = " + arg(*filters.CategoryID)
	}
	if filters.Type != nil {
		where += " AND type = " + arg(string(*filters.Type))
	}
	if filters.StartDate != nil {
		where += " AND date_time >= " + arg(*filters.StartDate)
	}
	if filters.EndDate != nil {
		where += " AND date_time <= " + arg(*filters.EndDate)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM transactions "+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	offset := (filters.Page - 1) * filters.PageSize
	query := fmt.Sprintf(
		"SELECT %s FROM transactions %s ORDER BY date_time DESC, id DESC LIMIT %s OFFSET %s",
		transactionColumns, where, arg(filters.PageSize), arg(offset),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: int32(math.Ceil(float64(total) / float64(filters.PageSize))),
	}, nil
}

// Update updates an existing transaction
func (r *TransactionRepository) Update(tx *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(tx.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET account_id = $2, type = $3, amount = $4, title = $5, description = $6, category_id = $7, date_time = $8, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+transactionColumns,
		tx.ID, tx.AccountID, string(tx.Type), amount, tx.Title, tx.Description, tx.CategoryID, tx.DateTime,
	)

	updated, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks a transaction as deleted
func (r *TransactionRepository) SoftDelete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		"UPDATE transactions SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// CreateTransferPair inserts both legs of a transfer in one database
// transaction so a transfer is never half recorded
func (r *TransactionRepository) CreateTransferPair(fromTx, toTx *domain.Transaction) (*domain.TransferResult, error) {
	ctx := context.Background()

	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer dbTx.Rollback(ctx)

	from, err := r.insert(ctx, dbTx, fromTx)
	if err != nil {
		return nil, err
	}
	to, err := r.insert(ctx, dbTx, toTx)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.TransferResult{From: from, To: to}, nil
}

// SoftDeleteTransferPair marks both legs of a transfer as deleted
func (r *TransactionRepository) SoftDeleteTransferPair(pairID uuid.UUID) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		"UPDATE transactions SET deleted_at = now() WHERE transfer_pair_id = $1 AND deleted_at IS NULL", pairID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
