package postgres

import (
	"context"
	"fmt"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = "id, name, currency, color, icon, initial_balance, order_num, created_at, updated_at, deleted_at"

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var balance pgtype.Numeric
	if err := row.Scan(
		&a.ID, &a.Name, &a.Currency, &a.Color, &a.Icon,
		&balance, &a.OrderNum, &a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
	); err != nil {
		return nil, err
	}
	a.InitialBalance = pgNumericToDecimal(balance)
	return &a, nil
}

// Create creates a new account
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()
	initialBalance, err := decimalToPgNumeric(account.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid initial balance: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (name, currency, color, icon, initial_balance, order_num)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+accountColumns,
		account.Name, account.Currency, account.Color, account.Icon, initialBalance, account.OrderNum,
	)
	return scanAccount(row)
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(id int32) (*domain.Account, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1 AND deleted_at IS NULL", id)

	account, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// GetAll retrieves all accounts, optionally including archived ones
func (r *AccountRepository) GetAll(includeArchived bool) ([]*domain.Account, error) {
	ctx := context.Background()

	query := "SELECT " + accountColumns + " FROM accounts"
	if !includeArchived {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY order_num, id"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Update updates an existing account
func (r *AccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	ctx := context.Background()
	initialBalance, err := decimalToPgNumeric(account.InitialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid initial balance: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE accounts
		SET name = $2, currency = $3, color = $4, icon = $5, initial_balance = $6, order_num = $7, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+accountColumns,
		account.ID, account.Name, account.Currency, account.Color, account.Icon, initialBalance, account.OrderNum,
	)

	updated, err := scanAccount(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks an account as deleted
func (r *AccountRepository) SoftDelete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		"UPDATE accounts SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
