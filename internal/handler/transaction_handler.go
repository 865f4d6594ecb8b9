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

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, publisher websocket.EventPublisher) *TransactionHandler {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &TransactionHandler{
		transactionService: transactionService,
		publisher:          publisher,
	}
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	AccountID   int32   `json:"accountId"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	CategoryID  *int32  `json:"categoryId,omitempty"`
	DateTime    string  `json:"dateTime,omitempty"`
}

// TransferRequest represents the create transfer request body
type TransferRequest struct {
	FromAccountID int32   `json:"fromAccountId"`
	ToAccountID   int32   `json:"toAccountId"`
	Amount        string  `json:"amount"`
	Title         *string `json:"title,omitempty"`
	Description   *string `json:"description,omitempty"`
	DateTime      string  `json:"dateTime,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID               int32   `json:"id"`
	AccountID        int32   `json:"accountId"`
	Type             string  `json:"type"`
	Amount           string  `json:"amount"`
	Title            *string `json:"title,omitempty"`
	Description      *string `json:"description,omitempty"`
	CategoryID       *int32  `json:"categoryId,omitempty"`
	DateTime         string  `json:"dateTime"`
	PlannedPaymentID *int32  `json:"plannedPaymentId,omitempty"`
	TransferPairID   *string `json:"transferPairId,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse wraps a transaction page
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// bindInput parses the request body. On failure the validation response has
// already been written and the returned input is nil.
func (h *TransactionHandler) bindInput(c echo.Context) (*service.TransactionInput, error) {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var dateTime time.Time
	if req.DateTime != "" {
		dateTime, err = time.Parse(time.RFC3339, req.DateTime)
		if err != nil {
			return nil, NewValidationError(c, "Invalid dateTime", []ValidationError{
				{Field: "dateTime", Message: "Must be an RFC 3339 timestamp"},
			})
		}
	}

	return &service.TransactionInput{
		AccountID:   req.AccountID,
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		DateTime:    dateTime,
	}, nil
}

func transactionError(c echo.Context, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
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
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Validation failed", nil)
	}
	log.Error().Err(err).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	input, errResp := h.bindInput(c)
	if input == nil {
		return errResp
	}

	tx, err := h.transactionService.CreateTransaction(*input)
	if err != nil {
		return transactionError(c, err, "create transaction")
	}

	h.publisher.Publish(websocket.TransactionCreated(tx))
	log.Info().Int32("transaction_id", tx.ID).Msg("Transaction created")
	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	filters := &domain.TransactionFilters{}

	if v := c.QueryParam("accountId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "Invalid accountId", nil)
		}
		accountID := int32(id)
		filters.AccountID = &accountID
	}
	if v := c.QueryParam("categoryId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "Invalid categoryId", nil)
		}
		categoryID := int32(id)
		filters.CategoryID = &categoryID
	}
	if v := c.QueryParam("type"); v != "" {
		txType := domain.TransactionType(v)
		filters.Type = &txType
	}
	if v := c.QueryParam("startDate"); v != "" {
		startDate, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return NewValidationError(c, "Invalid startDate", nil)
		}
		filters.StartDate = &startDate
	}
	if v := c.QueryParam("endDate"); v != "" {
		endDate, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return NewValidationError(c, "Invalid endDate", nil)
		}
		filters.EndDate = &endDate
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "Invalid page", nil)
		}
		filters.Page = int32(page)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "Invalid pageSize", nil)
		}
		filters.PageSize = int32(pageSize)
	}

	page, err := h.transactionService.GetTransactions(filters)
	if err != nil {
		return transactionError(c, err, "get transactions")
	}

	response := PaginatedTransactionsResponse{
		Data:       make([]TransactionResponse, len(page.Data)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
	for i, tx := range page.Data {
		response.Data[i] = toTransactionResponse(tx)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	input, errResp := h.bindInput(c)
	if input == nil {
		return errResp
	}

	tx, err := h.transactionService.UpdateTransaction(int32(id), *input)
	if err != nil {
		return transactionError(c, err, "update transaction")
	}

	h.publisher.Publish(websocket.TransactionUpdated(tx))
	log.Info().Int32("transaction_id", tx.ID).Msg("Transaction updated")
	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(int32(id)); err != nil {
		return transactionError(c, err, "delete transaction")
	}

	h.publisher.Publish(websocket.TransactionDeleted(map[string]int32{"id": int32(id)}))
	log.Info().Int("transaction_id", id).Msg("Transaction deleted (soft)")
	return c.NoContent(http.StatusNoContent)
}

// CreateTransfer handles POST /api/v1/transactions/transfers
func (h *TransactionHandler) CreateTransfer(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var dateTime time.Time
	if req.DateTime != "" {
		dateTime, err = time.Parse(time.RFC3339, req.DateTime)
		if err != nil {
			return NewValidationError(c, "Invalid dateTime", nil)
		}
	}

	result, err := h.transactionService.CreateTransfer(service.TransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        amount,
		Title:         req.Title,
		Description:   req.Description,
		DateTime:      dateTime,
	})
	if err != nil {
		return transactionError(c, err, "create transfer")
	}

	h.publisher.Publish(websocket.TransactionCreated(result.From))
	h.publisher.Publish(websocket.TransactionCreated(result.To))
	log.Info().
		Int32("from_transaction_id", result.From.ID).
		Int32("to_transaction_id", result.To.ID).
		Msg("Transfer created")

	return c.JSON(http.StatusCreated, map[string]TransactionResponse{
		"from": toTransactionResponse(result.From),
		"to":   toTransactionResponse(result.To),
	})
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:               tx.ID,
		AccountID:        tx.AccountID,
		Type:             string(tx.Type),
		Amount:           tx.Amount.StringFixed(2),
		Title:            tx.Title,
		Description:      tx.Description,
		CategoryID:       tx.CategoryID,
		DateTime:         tx.DateTime.Format(time.RFC3339),
		PlannedPaymentID: tx.PlannedPaymentID,
		CreatedAt:        tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        tx.UpdatedAt.Format(time.RFC3339),
	}
	if tx.TransferPairID != nil {
		pairID := tx.TransferPairID.String()
		resp.TransferPairID = &pairID
	}
	return resp
}
