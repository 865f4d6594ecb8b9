package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/ivywallet/ivywallet-server/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// AccountRequest represents the create/update account request body
type AccountRequest struct {
	Name           string  `json:"name"`
	Currency       string  `json:"currency,omitempty"`
	Color          *string `json:"color,omitempty"`
	Icon           *string `json:"icon,omitempty"`
	InitialBalance string  `json:"initialBalance,omitempty"`
	OrderNum       int32   `json:"orderNum,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             int32   `json:"id"`
	Name           string  `json:"name"`
	Currency       string  `json:"currency"`
	Color          *string `json:"color,omitempty"`
	Icon           *string `json:"icon,omitempty"`
	InitialBalance string  `json:"initialBalance"`
	OrderNum       int32   `json:"orderNum"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt"`
	DeletedAt      *string `json:"deletedAt,omitempty"`
}

// bindInput parses the request body. On failure the validation response has
// already been written and the returned input is nil.
func (h *AccountHandler) bindInput(c echo.Context) (*service.AccountInput, error) {
	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != "" {
		var err error
		initialBalance, err = decimal.NewFromString(req.InitialBalance)
		if err != nil {
			return nil, NewValidationError(c, "Invalid initial balance", []ValidationError{
				{Field: "initialBalance", Message: "Must be a valid decimal number"},
			})
		}
	}

	return &service.AccountInput{
		Name:           req.Name,
		Currency:       req.Currency,
		Color:          req.Color,
		Icon:           req.Icon,
		InitialBalance: initialBalance,
		OrderNum:       req.OrderNum,
	}, nil
}

func accountError(c echo.Context, err error, action string) error {
	if errors.Is(err, domain.ErrAccountNotFound) {
		return NewNotFoundError(c, "Account not found")
	}
	if errors.Is(err, domain.ErrNameRequired) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	}
	if errors.Is(err, domain.ErrNameTooLong) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	}
	log.Error().Err(err).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	input, errResp := h.bindInput(c)
	if input == nil {
		return errResp
	}

	account, err := h.accountService.CreateAccount(*input)
	if err != nil {
		return accountError(c, err, "create account")
	}

	log.Info().Int32("account_id", account.ID).Str("name", account.Name).Msg("Account created")
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	includeArchived := c.QueryParam("includeArchived") == "true"

	accounts, err := h.accountService.GetAccounts(includeArchived)
	if err != nil {
		return accountError(c, err, "get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	input, errResp := h.bindInput(c)
	if input == nil {
		return errResp
	}

	account, err := h.accountService.UpdateAccount(int32(id), *input)
	if err != nil {
		return accountError(c, err, "update account")
	}

	log.Info().Int32("account_id", account.ID).Str("name", account.Name).Msg("Account updated")
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeleteAccount(int32(id)); err != nil {
		return accountError(c, err, "delete account")
	}

	log.Info().Int("account_id", id).Msg("Account deleted (soft)")
	return c.NoContent(http.StatusNoContent)
}

func toAccountResponse(account *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:             account.ID,
		Name:           account.Name,
		Currency:       account.Currency,
		Color:          account.Color,
		Icon:           account.Icon,
		InitialBalance: account.InitialBalance.StringFixed(2),
		OrderNum:       account.OrderNum,
		CreatedAt:      account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      account.UpdatedAt.Format(time.RFC3339),
	}
	if account.DeletedAt != nil {
		deletedAt := account.DeletedAt.Format(time.RFC3339)
		resp.DeletedAt = &deletedAt
	}
	return resp
}
