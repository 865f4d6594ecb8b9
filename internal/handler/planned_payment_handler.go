package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/ivywallet/ivywallet-server/internal/service"
	"github.com/ivywallet/ivywallet-server/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PlannedPaymentHandler handles planned payment HTTP requests
type PlannedPaymentHandler struct {
	plannedPaymentService *service.PlannedPaymentService
	publisher             websocket.EventPublisher
}

// NewPlannedPaymentHandler creates a new PlannedPaymentHandler
func NewPlannedPaymentHandler(plannedPaymentService *service.PlannedPaymentService, publisher websocket.EventPublisher) *PlannedPaymentHandler {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &PlannedPaymentHandler{
		plannedPaymentService: plannedPaymentService,
		publisher:             publisher,
	}
}

// PlannedPaymentRequest represents the create/update planned payment request body
type PlannedPaymentRequest struct {
	Type              string  `json:"type"`
	Amount            string  `json:"amount"`
	AccountID         int32   `json:"accountId"`
	CategoryID        *int32  `json:"categoryId,omitempty"`
	Title             *string `json:"title,omitempty"`
	Description       *string `json:"description,omitempty"`
	OneTime           bool    `json:"oneTime"`
	StartDate         string  `json:"startDate"`
	IntervalN         *int32  `json:"intervalN,omitempty"`
	IntervalType      *string `json:"intervalType,omitempty"`
	AutoCreateEnabled *bool   `json:"autoCreateEnabled,omitempty"`
}

// PlannedPaymentResponse represents a planned payment in API responses
type PlannedPaymentResponse struct {
	ID                int32   `json:"id"`
	Type              string  `json:"type"`
	Amount            string  `json:"amount"`
	AccountID         int32   `json:"accountId"`
	CategoryID        *int32  `json:"categoryId,omitempty"`
	Title             *string `json:"title,omitempty"`
	Description       *string `json:"description,omitempty"`
	OneTime           bool    `json:"oneTime"`
	StartDate         string  `json:"startDate"`
	IntervalN         *int32  `json:"intervalN,omitempty"`
	IntervalType      *string `json:"intervalType,omitempty"`
	AutoCreateEnabled bool    `json:"autoCreateEnabled"`
	LastProcessedDate *string `json:"lastProcessedDate,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// DuePaymentResponse pairs a planned payment with its due date
type DuePaymentResponse struct {
	Payment PlannedPaymentResponse `json:"payment"`
	DueDate string                 `json:"dueDate"`
}

// DueFeedResponse groups overdue and upcoming planned payments
type DueFeedResponse struct {
	Overdue  []DuePaymentResponse `json:"overdue"`
	Upcoming []DuePaymentResponse `json:"upcoming"`
}

// HistoryResponse represents one materialized occurrence
type HistoryResponse struct {
	ID               int32  `json:"id"`
	PlannedPaymentID int32  `json:"plannedPaymentId"`
	TransactionID    int32  `json:"transactionId"`
	ScheduledDate    string `json:"scheduledDate"`
	Amount           string `json:"amount"`
	CreatedDate      string `json:"createdDate"`
}

// bindInput parses the request body. On failure the validation response has
// already been written and the returned input is nil.
func (h *PlannedPaymentHandler) bindInput(c echo.Context) (*service.PlannedPaymentInput, error) {
	var req PlannedPaymentRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		// Accept bare dates as well
		startDate, err = time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return nil, NewValidationError(c, "Invalid startDate", []ValidationError{
				{Field: "startDate", Message: "Must be an RFC 3339 timestamp or YYYY-MM-DD date"},
			})
		}
	}

	var intervalType *domain.IntervalUnit
	if req.IntervalType != nil {
		unit := domain.IntervalUnit(*req.IntervalType)
		intervalType = &unit
	}

	return &service.PlannedPaymentInput{
		Type:              domain.TransactionType(req.Type),
		Amount:            amount,
		AccountID:         req.AccountID,
		CategoryID:        req.CategoryID,
		Title:             req.Title,
		Description:       req.Description,
		OneTime:           req.OneTime,
		StartDate:         startDate,
		IntervalN:         req.IntervalN,
		IntervalType:      intervalType,
		AutoCreateEnabled: req.AutoCreateEnabled,
	}, nil
}

func plannedPaymentError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrPlannedPaymentNotFound):
		return NewNotFoundError(c, "Planned payment not found")
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account does not exist"},
		})
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category does not exist"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be income or expense"},
		})
	case errors.Is(err, domain.ErrOneTimeHasInterval):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "intervalN", Message: "One-time payments must not have an interval"},
		})
	case errors.Is(err, domain.ErrInvalidInterval):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "intervalN", Message: "Recurring payments require a positive interval count and a valid unit"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title must be 255 characters or less"},
		})
	}
	log.Error().Err(err).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}

// Create handles POST /api/v1/planned-payments
func (h *PlannedPaymentHandler) Create(c echo.Context) error {
	input, errResp := h.bindInput(c)
	if input == nil {
		return errResp
	}

	payment, err := h.plannedPaymentService.Create(*input)
	if err != nil {
		return plannedPaymentError(c, err, "create planned payment")
	}

	h.publisher.Publish(websocket.PlannedPaymentCreated(payment))
	log.Info().Int32("planned_payment_id", payment.ID).Msg("Planned payment created")
	return c.JSON(http.StatusCreated, toPlannedPaymentResponse(payment))
}

// GetAll handles GET /api/v1/planned-payments
func (h *PlannedPaymentHandler) GetAll(c echo.Context) error {
	payments, err := h.plannedPaymentService.GetAll()
	if err != nil {
		return plannedPaymentError(c, err, "get planned payments")
	}

	response := make([]PlannedPaymentResponse, len(payments))
	for i, payment := range payments {
		response[i] = toPlannedPaymentResponse(payment)
	}
	return c.JSON(http.StatusOK, response)
}

// GetByID handles GET /api/v1/planned-payments/:id
func (h *PlannedPaymentHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid planned payment ID", nil)
	}

	payment, err := h.plannedPaymentService.GetByID(int32(id))
	if err != nil {
		return plannedPaymentError(c, err, "get planned payment")
	}
	return c.JSON(http.StatusOK, toPlannedPaymentResponse(payment))
}

// Update handles PUT /api/v1/planned-payments/:id
func (h *PlannedPaymentHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid planned payment ID", nil)
	}

	input, errResp := h.bindInput(c)
	if input == nil {
		return errResp
	}

	payment, err := h.plannedPaymentService.Update(int32(id), *input)
	if err != nil {
		return plannedPaymentError(c, err, "update planned payment")
	}

	h.publisher.Publish(websocket.PlannedPaymentUpdated(payment))
	log.Info().Int32("planned_payment_id", payment.ID).Msg("Planned payment updated")
	return c.JSON(http.StatusOK, toPlannedPaymentResponse(payment))
}

// Delete handles DELETE /api/v1/planned-payments/:id
func (h *PlannedPaymentHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid planned payment ID", nil)
	}

	if err := h.plannedPaymentService.Delete(int32(id)); err != nil {
		return plannedPaymentError(c, err, "delete planned payment")
	}

	h.publisher.Publish(websocket.PlannedPaymentDeleted(map[string]int32{"id": int32(id)}))
	log.Info().Int("planned_payment_id", id).Msg("Planned payment deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetDueFeed handles GET /api/v1/planned-payments/due
func (h *PlannedPaymentHandler) GetDueFeed(c echo.Context) error {
	feed, err := h.plannedPaymentService.GetDueFeed(time.Now())
	if err != nil {
		return plannedPaymentError(c, err, "get due planned payments")
	}

	response := DueFeedResponse{
		Overdue:  make([]DuePaymentResponse, len(feed.Overdue)),
		Upcoming: make([]DuePaymentResponse, len(feed.Upcoming)),
	}
	for i, due := range feed.Overdue {
		response.Overdue[i] = toDuePaymentResponse(due)
	}
	for i, due := range feed.Upcoming {
		response.Upcoming[i] = toDuePaymentResponse(due)
	}
	return c.JSON(http.StatusOK, response)
}

// GetHistory handles GET /api/v1/planned-payments/:id/history
func (h *PlannedPaymentHandler) GetHistory(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid planned payment ID", nil)
	}

	records, err := h.plannedPaymentService.GetHistory(int32(id))
	if err != nil {
		return plannedPaymentError(c, err, "get planned payment history")
	}

	response := make([]HistoryResponse, len(records))
	for i, record := range records {
		response[i] = HistoryResponse{
			ID:               record.ID,
			PlannedPaymentID: record.PlannedPaymentID,
			TransactionID:    record.TransactionID,
			ScheduledDate:    record.ScheduledDate.Format(time.RFC3339),
			Amount:           record.Amount.StringFixed(2),
			CreatedDate:      record.CreatedDate.Format(time.RFC3339),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// Pay handles POST /api/v1/planned-payments/:id/pay
func (h *PlannedPaymentHandler) Pay(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid planned payment ID", nil)
	}

	tx, err := h.plannedPaymentService.Pay(int32(id), time.Now())
	if err != nil {
		return plannedPaymentError(c, err, "pay planned payment")
	}

	h.publisher.Publish(websocket.TransactionCreated(tx))
	log.Info().
		Int("planned_payment_id", id).
		Int32("transaction_id", tx.ID).
		Msg("Planned payment paid")
	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// Skip handles POST /api/v1/planned-payments/:id/skip
func (h *PlannedPaymentHandler) Skip(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid planned payment ID", nil)
	}

	if err := h.plannedPaymentService.Skip(int32(id), time.Now()); err != nil {
		return plannedPaymentError(c, err, "skip planned payment")
	}

	h.publisher.Publish(websocket.PlannedPaymentUpdated(map[string]int32{"id": int32(id)}))
	log.Info().Int("planned_payment_id", id).Msg("Planned payment skipped")
	return c.NoContent(http.StatusNoContent)
}

func toPlannedPaymentResponse(payment *domain.PlannedPayment) PlannedPaymentResponse {
	resp := PlannedPaymentResponse{
		ID:                payment.ID,
		Type:              string(payment.Type),
		Amount:            payment.Amount.StringFixed(2),
		AccountID:         payment.AccountID,
		CategoryID:        payment.CategoryID,
		Title:             payment.Title,
		Description:       payment.Description,
		OneTime:           payment.OneTime,
		StartDate:         payment.StartDate.Format(time.RFC3339),
		IntervalN:         payment.IntervalN,
		AutoCreateEnabled: payment.AutoCreateEnabled,
		CreatedAt:         payment.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         payment.UpdatedAt.Format(time.RFC3339),
	}
	if payment.IntervalType != nil {
		unit := string(*payment.IntervalType)
		resp.IntervalType = &unit
	}
	if payment.LastProcessedDate != nil {
		lastProcessed := payment.LastProcessedDate.Format(time.RFC3339)
		resp.LastProcessedDate = &lastProcessed
	}
	return resp
}

func toDuePaymentResponse(due service.DuePayment) DuePaymentResponse {
	return DuePaymentResponse{
		Payment: toPlannedPaymentResponse(due.Payment),
		DueDate: due.DueDate.Format(time.RFC3339),
	}
}
