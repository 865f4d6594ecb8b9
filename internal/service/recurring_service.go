package service

import (
	"fmt"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// RecurringService materializes due occurrences of recurring planned payments
// into transactions. It exclusively owns the lastProcessedDate watermark
// during automatic processing.
type RecurringService struct {
	plannedPaymentRepo domain.PlannedPaymentRepository
	transactionRepo    domain.TransactionRepository
	historyRepo        domain.RecurringHistoryRepository
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(
	plannedPaymentRepo domain.PlannedPaymentRepository,
	transactionRepo domain.TransactionRepository,
	historyRepo domain.RecurringHistoryRepository,
) *RecurringService {
	return &RecurringService{
		plannedPaymentRepo: plannedPaymentRepo,
		transactionRepo:    transactionRepo,
		historyRepo:        historyRepo,
	}
}

// CreatedOccurrence describes one transaction materialized by a processing
// run, for notification purposes.
type CreatedOccurrence struct {
	PaymentID    int32                  `json:"paymentId"`
	PaymentTitle string                 `json:"paymentTitle"`
	Date         time.Time              `json:"date"`
	Amount       decimal.Decimal        `json:"amount"`
	Type         domain.TransactionType `json:"type"`
}

// shouldProcessPayment reports whether a planned payment is eligible for
// automatic materialization: recurring, auto-creation enabled, started, and
// carrying a valid interval configuration.
func shouldProcessPayment(p *domain.PlannedPayment, today time.Time) bool {
	if p.OneTime {
		return false
	}
	if !p.AutoCreateEnabled {
		return false
	}
	if StartOfDay(p.StartDate).After(StartOfDay(today)) {
		return false
	}
	return p.HasValidInterval()
}

// ProcessRecurring evaluates every recurring planned payment and creates one
// transaction per due occurrence since the payment's watermark, recording
// each in the history ledger so re-runs are idempotent. It returns what was
// created, for notification.
//
// Nothing propagates to the caller: this is invoked opportunistically from
// startup and a periodic ticker, so every failure is absorbed and logged. A
// failure loading the payment list yields an empty result and the next tick
// retries naturally. A failure in one payment does not affect the others; a
// failure materializing one occurrence does not block the remaining
// occurrences of the same payment.
func (s *RecurringService) ProcessRecurring(now time.Time) []CreatedOccurrence {
	today := StartOfDay(now)

	payments, err := s.plannedPaymentRepo.GetAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load planned payments for recurring processing")
		return nil
	}

	var created []CreatedOccurrence

	for _, payment := range payments {
		if !shouldProcessPayment(payment, today) {
			continue
		}

		results, err := s.processPayment(payment, today)
		if err != nil {
			log.Error().
				Err(err).
				Int32("planned_payment_id", payment.ID).
				Str("title", payment.DisplayTitle()).
				Msg("Failed to process recurring payment")
			continue
		}
		created = append(created, results...)
	}

	if len(created) > 0 {
		log.Info().Int("count", len(created)).Msg("Materialized recurring transactions")
	}

	return created
}

// processPayment materializes all due occurrences of a single payment. It
// returns an error only for failures before the occurrence loop starts (the
// watermark is then left untouched); failures inside the loop are logged and
// skipped, and the watermark still advances to today afterwards so a
// permanently-failing occurrence cannot cause a retry storm.
func (s *RecurringService) processPayment(payment *domain.PlannedPayment, today time.Time) ([]CreatedOccurrence, error) {
	fromDate := payment.StartDate
	if payment.LastProcessedDate != nil {
		fromDate = *payment.LastProcessedDate
	}

	occurrences := OccurrencesBetween(payment, fromDate, today)

	existingHistory, err := s.historyRepo.GetByPlannedPaymentID(payment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring history: %w", err)
	}

	materialized := make(map[int64]bool, len(existingHistory))
	for _, h := range existingHistory {
		materialized[StartOfDay(h.ScheduledDate).Unix()] = true
	}

	var created []CreatedOccurrence

	for _, scheduledDate := range occurrences {
		if materialized[scheduledDate.Unix()] {
			continue
		}

		occurrence, err := s.materializeOccurrence(payment, scheduledDate)
		if err != nil {
			log.Error().
				Err(err).
				Int32("planned_payment_id", payment.ID).
				Time("scheduled_date", scheduledDate).
				Msg("Failed to materialize occurrence")
			continue
		}
		created = append(created, occurrence)
	}

	// Advance the watermark even when some occurrences failed. A failed
	// occurrence is lost rather than retried forever; the history ledger
	// still protects the ones that succeeded.
	if err := s.plannedPaymentRepo.SetLastProcessed(payment.ID, today); err != nil {
		log.Error().
			Err(err).
			Int32("planned_payment_id", payment.ID).
			Msg("Failed to advance recurring watermark")
	}

	return created, nil
}

// materializeOccurrence creates the transaction and ledger entry for one
// scheduled date.
func (s *RecurringService) materializeOccurrence(payment *domain.PlannedPayment, scheduledDate time.Time) (CreatedOccurrence, error) {
	paymentID := payment.ID
	tx, err := s.transactionRepo.Create(&domain.Transaction{
		AccountID:        payment.AccountID,
		Type:             payment.Type,
		Amount:           payment.Amount,
		Title:            payment.Title,
		Description:      payment.Description,
		CategoryID:       payment.CategoryID,
		DateTime:         scheduledDate,
		PlannedPaymentID: &paymentID,
	})
	if err != nil {
		return CreatedOccurrence{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	if _, err := s.historyRepo.Create(&domain.RecurringHistory{
		PlannedPaymentID: payment.ID,
		TransactionID:    tx.ID,
		ScheduledDate:    scheduledDate,
		Amount:           payment.Amount,
	}); err != nil {
		return CreatedOccurrence{}, fmt.Errorf("failed to record history: %w", err)
	}

	return CreatedOccurrence{
		PaymentID:    payment.ID,
		PaymentTitle: payment.DisplayTitle(),
		Date:         scheduledDate,
		Amount:       payment.Amount,
		Type:         payment.Type,
	}, nil
}
