package postgres

import (
	"context"
	"fmt"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ExchangeRateRepository implements domain.ExchangeRateRepository using PostgreSQL
type ExchangeRateRepository struct {
	pool *pgxpool.Pool
}

// NewExchangeRateRepository creates a new ExchangeRateRepository
func NewExchangeRateRepository(pool *pgxpool.Pool) *ExchangeRateRepository {
	return &ExchangeRateRepository{pool: pool}
}

const rateColumns = "base_currency, currency, rate, updated_at"

func scanRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var r domain.ExchangeRate
	var rate pgtype.Numeric
	if err := row.Scan(&r.BaseCurrency, &r.Currency, &rate, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Rate = pgNumericToDecimal(rate)
	return &r, nil
}

// Upsert stores or overwrites the rate for a currency pair
func (r *ExchangeRateRepository) Upsert(rate *domain.ExchangeRate) (*domain.ExchangeRate, error) {
	ctx := context.Background()
	rateNum, err := decimalToPgNumeric(rate.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO exchange_rates (base_currency, currency, rate)
		VALUES ($1, $2, $3)
		ON CONFLICT (base_currency, currency)
		DO UPDATE SET rate = EXCLUDED.rate, updated_at = now()
		RETURNING `+rateColumns,
		rate.BaseCurrency, rate.Currency, rateNum,
	)
	return scanRate(row)
}

// GetByPair retrieves the rate for a currency pair
func (r *ExchangeRateRepository) GetByPair(baseCurrency, currency string) (*domain.ExchangeRate, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		"SELECT "+rateColumns+" FROM exchange_rates WHERE base_currency = $1 AND currency = $2",
		baseCurrency, currency)

	rate, err := scanRate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrExchangeRateNotFound
		}
		return nil, err
	}
	return rate, nil
}

// GetByBase retrieves all rates for a base currency
func (r *ExchangeRateRepository) GetByBase(baseCurrency string) ([]*domain.ExchangeRate, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		"SELECT "+rateColumns+" FROM exchange_rates WHERE base_currency = $1 ORDER BY currency",
		baseCurrency)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []*domain.ExchangeRate
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}
