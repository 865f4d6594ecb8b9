package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringHistory is the idempotency ledger for automatic materialization.
// At most one record exists per (PlannedPaymentID, ScheduledDate) pair; the
// store enforces this with a unique constraint.
type RecurringHistory struct {
	ID               int32           `json:"id"`
	PlannedPaymentID int32           `json:"plannedPaymentId"`
	TransactionID    int32           `json:"transactionId"`
	// ScheduledDate is the logical occurrence date, normalized to start of day.
	ScheduledDate time.Time       `json:"scheduledDate"`
	Amount        decimal.Decimal `json:"amount"`
	CreatedDate   time.Time       `json:"createdDate"`
}

type RecurringHistoryRepository interface {
	Create(record *RecurringHistory) (*RecurringHistory, error)
	GetByPlannedPaymentID(plannedPaymentID int32) ([]*RecurringHistory, error)
	DeleteByPlannedPaymentID(plannedPaymentID int32) error
}
