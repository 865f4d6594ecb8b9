package handler

import (
	"net/http"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RecurringHandler exposes manual control of the recurring engine
type RecurringHandler struct {
	worker *service.RecurringWorker
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(worker *service.RecurringWorker) *RecurringHandler {
	return &RecurringHandler{worker: worker}
}

// CreatedOccurrenceResponse represents one materialized occurrence
type CreatedOccurrenceResponse struct {
	PaymentID    int32  `json:"paymentId"`
	PaymentTitle string `json:"paymentTitle"`
	Date         string `json:"date"`
	Amount       string `json:"amount"`
	Type         string `json:"type"`
}

// ProcessResponse reports the outcome of a manual processing run
type ProcessResponse struct {
	Created []CreatedOccurrenceResponse `json:"created"`
	Count   int                         `json:"count"`
}

// Process handles POST /api/v1/recurring/process
func (h *RecurringHandler) Process(c echo.Context) error {
	created := h.worker.RunNow()

	response := ProcessResponse{
		Created: make([]CreatedOccurrenceResponse, len(created)),
		Count:   len(created),
	}
	for i, occ := range created {
		response.Created[i] = CreatedOccurrenceResponse{
			PaymentID:    occ.PaymentID,
			PaymentTitle: occ.PaymentTitle,
			Date:         occ.Date.Format(time.RFC3339),
			Amount:       occ.Amount.StringFixed(2),
			Type:         string(occ.Type),
		}
	}

	log.Info().Int("count", len(created)).Msg("Manual recurring processing completed")
	return c.JSON(http.StatusOK, response)
}
