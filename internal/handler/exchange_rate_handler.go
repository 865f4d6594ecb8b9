package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/ivywallet/ivywallet-server/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ExchangeRateHandler handles exchange rate HTTP requests
type ExchangeRateHandler struct {
	rateService *service.ExchangeRateService
}

// NewExchangeRateHandler creates a new ExchangeRateHandler
func NewExchangeRateHandler(rateService *service.ExchangeRateService) *ExchangeRateHandler {
	return &ExchangeRateHandler{rateService: rateService}
}

// SetRateRequest represents the set rate request body
type SetRateRequest struct {
	BaseCurrency string `json:"baseCurrency"`
	Currency     string `json:"currency"`
	Rate         string `json:"rate"`
}

// ExchangeRateResponse represents an exchange rate in API responses
type ExchangeRateResponse struct {
	BaseCurrency string `json:"baseCurrency"`
	Currency     string `json:"currency"`
	Rate         string `json:"rate"`
	UpdatedAt    string `json:"updatedAt"`
}

// SetRate handles PUT /api/v1/exchange-rates
func (h *ExchangeRateHandler) SetRate(c echo.Context) error {
	var req SetRateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return NewValidationError(c, "Invalid rate", []ValidationError{
			{Field: "rate", Message: "Must be a valid decimal number"},
		})
	}

	stored, err := h.rateService.SetRate(req.BaseCurrency, req.Currency, rate)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Both currency codes are required", nil)
		}
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "rate", Message: "Rate must be positive"},
			})
		}
		log.Error().Err(err).Msg("Failed to set exchange rate")
		return NewInternalError(c, "Failed to set exchange rate")
	}

	return c.JSON(http.StatusOK, toExchangeRateResponse(stored))
}

// GetRates handles GET /api/v1/exchange-rates?base=USD
func (h *ExchangeRateHandler) GetRates(c echo.Context) error {
	base := c.QueryParam("base")
	if base == "" {
		base = domain.DefaultCurrency
	}

	rates, err := h.rateService.GetRates(base)
	if err != nil {
		log.Error().Err(err).Str("base", base).Msg("Failed to get exchange rates")
		return NewInternalError(c, "Failed to get exchange rates")
	}

	response := make([]ExchangeRateResponse, len(rates))
	for i, rate := range rates {
		response[i] = toExchangeRateResponse(rate)
	}
	return c.JSON(http.StatusOK, response)
}

// ConvertResponse represents a currency conversion result
type ConvertResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    string `json:"amount"`
	Converted string `json:"converted"`
}

// Convert handles GET /api/v1/exchange-rates/convert?from=USD&to=EUR&amount=10.00
func (h *ExchangeRateHandler) Convert(c echo.Context) error {
	from := c.QueryParam("from")
	to := c.QueryParam("to")
	if from == "" || to == "" {
		return NewValidationError(c, "Both from and to currency codes are required", nil)
	}

	amount, err := decimal.NewFromString(c.QueryParam("amount"))
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	converted, err := h.rateService.Convert(amount, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrExchangeRateNotFound) {
			return NewNotFoundError(c, "No rate stored for this currency pair")
		}
		log.Error().Err(err).Str("from", from).Str("to", to).Msg("Failed to convert amount")
		return NewInternalError(c, "Failed to convert amount")
	}

	return c.JSON(http.StatusOK, ConvertResponse{
		From:      from,
		To:        to,
		Amount:    amount.String(),
		Converted: converted.String(),
	})
}

func toExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		BaseCurrency: rate.BaseCurrency,
		Currency:     rate.Currency,
		Rate:         rate.Rate.String(),
		UpdatedAt:    rate.UpdatedAt.Format(time.RFC3339),
	}
}
