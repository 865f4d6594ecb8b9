package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// IntervalUnit is the closed set of supported recurrence units. Advance in
// the service layer switches over these exhaustively; any other value is a
// configuration error, never silently ignored.
type IntervalUnit string

const (
	IntervalDaily     IntervalUnit = "daily"
	IntervalWeekly    IntervalUnit = "weekly"
	IntervalBiweekly  IntervalUnit = "biweekly"
	IntervalMonthly   IntervalUnit = "monthly"
	IntervalQuarterly IntervalUnit = "quarterly"
	IntervalYearly    IntervalUnit = "yearly"
)

// Valid reports whether u is one of the supported interval units.
func (u IntervalUnit) Valid() bool {
	switch u {
	case IntervalDaily, IntervalWeekly, IntervalBiweekly, IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return true
	}
	return false
}

var (
	ErrUnknownIntervalUnit = errors.New("unknown interval unit")
	ErrInvalidInterval     = errors.New("recurring payment requires interval count and unit")
	ErrOneTimeHasInterval  = errors.New("one-time payment must not have an interval")
)

// PlannedPayment is a template for a future cash movement, either one-time
// (due exactly once at StartDate, resolved only by pay/skip) or recurring
// (anchored at StartDate, repeating every IntervalN IntervalType).
type PlannedPayment struct {
	ID          int32           `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	AccountID   int32           `json:"accountId"`
	CategoryID  *int32          `json:"categoryId,omitempty"`
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	OneTime     bool            `json:"oneTime"`
	StartDate   time.Time       `json:"startDate"`
	IntervalN   *int32          `json:"intervalN,omitempty"`
	IntervalType *IntervalUnit  `json:"intervalType,omitempty"`
	// AutoCreateEnabled suppresses automatic materialization when false;
	// manual pay/skip still applies.
	AutoCreateEnabled bool `json:"autoCreateEnabled"`
	// LastProcessedDate is the watermark: occurrences up to this date have
	// been materialized or explicitly skipped. Only the recurring engine and
	// the pay/skip handlers move it.
	LastProcessedDate *time.Time `json:"lastProcessedDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// HasValidInterval reports whether the payment carries a usable recurrence
// configuration (positive step count and a known unit).
func (p *PlannedPayment) HasValidInterval() bool {
	return p.IntervalN != nil && *p.IntervalN > 0 && p.IntervalType != nil && p.IntervalType.Valid()
}

// DisplayTitle returns the payment's title or a fallback for untitled payments.
func (p *PlannedPayment) DisplayTitle() string {
	if p.Title != nil && *p.Title != "" {
		return *p.Title
	}
	return "Recurring Payment"
}

type PlannedPaymentRepository interface {
	Create(payment *PlannedPayment) (*PlannedPayment, error)
	GetByID(id int32) (*PlannedPayment, error)
	GetAll() ([]*PlannedPayment, error)
	Update(payment *PlannedPayment) (*PlannedPayment, error)
	// SetLastProcessed moves the watermark without touching any other field.
	SetLastProcessed(id int32, lastProcessed time.Time) error
	Delete(id int32) error
}
