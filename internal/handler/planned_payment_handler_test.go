package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ivywallet/ivywallet-server/internal/domain"
	"github.com/ivywallet/ivywallet-server/internal/service"
	"github.com/ivywallet/ivywallet-server/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type plannedPaymentHandlerFixture struct {
	paymentRepo *testutil.MockPlannedPaymentRepository
	historyRepo *testutil.MockRecurringHistoryRepository
	handler     *PlannedPaymentHandler
}

func newPlannedPaymentHandlerFixture() *plannedPaymentHandlerFixture {
	accountRepo := testutil.NewMockAccountRepository()
	accountRepo.AddAccount(&domain.Account{ID: 1, Name: "Checking", Currency: "USD"})
	categoryRepo := testutil.NewMockCategoryRepository()
	categoryRepo.AddCategory(&domain.Category{ID: 1, Name: "Bills"})

	paymentRepo := testutil.NewMockPlannedPaymentRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	historyRepo := testutil.NewMockRecurringHistoryRepository()

	svc := service.NewPlannedPaymentService(paymentRepo, transactionRepo, historyRepo, accountRepo, categoryRepo)
	return &plannedPaymentHandlerFixture{
		paymentRepo: paymentRepo,
		historyRepo: historyRepo,
		handler:     NewPlannedPaymentHandler(svc, nil),
	}
}

func TestCreatePlannedPayment_Success_Recurring(t *testing.T) {
	e := echo.New()
	f := newPlannedPaymentHandlerFixture()

	reqBody := `{"type": "expense", "amount": "1200.00", "accountId": 1, "categoryId": 1, "title": "Rent", "startDate": "2026-01-01", "intervalN": 1, "intervalType": "monthly"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/planned-payments", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := f.handler.Create(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response PlannedPaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Title == nil || *response.Title != "Rent" {
		t.Errorf("Expected title 'Rent', got %v", response.Title)
	}
	if response.Amount != "1200.00" {
		t.Errorf("Expected amount '1200.00', got %s", response.Amount)
	}
	if response.OneTime {
		t.Error("Expected recurring payment, got one-time")
	}
	if !response.AutoCreateEnabled {
		t.Error("Expected autoCreateEnabled to default to true")
	}
	if response.IntervalType == nil || *response.IntervalType != "monthly" {
		t.Errorf("Expected intervalType 'monthly', got %v", response.IntervalType)
	}
}

func TestCreatePlannedPayment_OneTimeWithInterval(t *testing.T) {
	e := echo.New()
	f := newPlannedPaymentHandlerFixture()

	reqBody := `{"type": "expense", "amount": "50.00", "accountId": 1, "oneTime": true, "startDate": "2026-01-01", "intervalN": 1, "intervalType": "monthly"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/planned-payments", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := f.handler.Create(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problemDetails ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problemDetails); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if problemDetails.Type != ErrorTypeValidation {
		t.Errorf("Expected validation error type, got %s", problemDetails.Type)
	}
}

func TestCreatePlannedPayment_InvalidAmount(t *testing.T) {
	e := echo.New()
	f := newPlannedPaymentHandlerFixture()

	reqBody := `{"type": "expense", "amount": "not-a-number", "accountId": 1, "startDate": "2026-01-01", "intervalN": 1, "intervalType": "monthly"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/planned-payments", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := f.handler.Create(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetPlannedPayment_NotFound(t *testing.T) {
	e := echo.New()
	f := newPlannedPaymentHandlerFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/planned-payments/99", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("99")

	err := f.handler.GetByID(c)
	if err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestPayPlannedPayment_OneTime(t *testing.T) {
	e := echo.New()
	f := newPlannedPaymentHandlerFixture()

	title := "Car registration"
	f.paymentRepo.AddPayment(&domain.PlannedPayment{
		ID:        5,
		Type:      domain.TransactionTypeExpense,
		Amount:    decimal.RequireFromString("150.00"),
		AccountID: 1,
		Title:     &title,
		OneTime:   true,
		StartDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/planned-payments/5/pay", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")

	err := f.handler.Pay(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rec.Code)
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Amount != "150.00" {
		t.Errorf("Expected amount '150.00', got %s", response.Amount)
	}
	if response.PlannedPaymentID == nil || *response.PlannedPaymentID != 5 {
		t.Errorf("Expected plannedPaymentId 5, got %v", response.PlannedPaymentID)
	}

	// One-time payment should be removed once paid
	if _, err := f.paymentRepo.GetByID(5); err == nil {
		t.Error("Expected one-time payment to be deleted after paying")
	}
}

func TestSkipPlannedPayment_Recurring(t *testing.T) {
	e := echo.New()
	f := newPlannedPaymentHandlerFixture()

	intervalN := int32(1)
	intervalType := domain.IntervalMonthly
	f.paymentRepo.AddPayment(&domain.PlannedPayment{
		ID:                3,
		Type:              domain.TransactionTypeExpense,
		Amount:            decimal.RequireFromString("15.00"),
		AccountID:         1,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		IntervalN:         &intervalN,
		IntervalType:      &intervalType,
		AutoCreateEnabled: true,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/planned-payments/3/skip", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("3")

	err := f.handler.Skip(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	// Recurring payment survives a skip with its watermark advanced
	payment, err := f.paymentRepo.GetByID(3)
	if err != nil {
		t.Fatalf("Expected payment to survive skip, got %v", err)
	}
	if payment.LastProcessedDate == nil {
		t.Error("Expected lastProcessedDate to be set after skip")
	}
}

func TestGetDueFeed_SplitsOverdueAndUpcoming(t *testing.T) {
	e := echo.New()
	f := newPlannedPaymentHandlerFixture()

	// One-time payment far in the past shows up as overdue
	f.paymentRepo.AddPayment(&domain.PlannedPayment{
		ID:        1,
		Type:      domain.TransactionTypeExpense,
		Amount:    decimal.RequireFromString("80.00"),
		AccountID: 1,
		OneTime:   true,
		StartDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/planned-payments/due", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := f.handler.GetDueFeed(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response DueFeedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if len(response.Overdue) != 1 {
		t.Fatalf("Expected 1 overdue payment, got %d", len(response.Overdue))
	}
	if len(response.Upcoming) != 0 {
		t.Errorf("Expected 0 upcoming payments, got %d", len(response.Upcoming))
	}
}

func TestDeletePlannedPayment_PurgesHistory(t *testing.T) {
	e := echo.New()
	f := newPlannedPaymentHandlerFixture()

	intervalN := int32(1)
	intervalType := domain.IntervalMonthly
	f.paymentRepo.AddPayment(&domain.PlannedPayment{
		ID:                7,
		Type:              domain.TransactionTypeExpense,
		Amount:            decimal.RequireFromString("9.99"),
		AccountID:         1,
		StartDate:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		IntervalN:         &intervalN,
		IntervalType:      &intervalType,
		AutoCreateEnabled: true,
	})
	_, err := f.historyRepo.Create(&domain.RecurringHistory{
		PlannedPaymentID: 7,
		TransactionID:    1,
		ScheduledDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Amount:           decimal.RequireFromString("9.99"),
	})
	if err != nil {
		t.Fatalf("Failed to seed history: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/planned-payments/7", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("7")

	err = f.handler.Delete(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}

	records, err := f.historyRepo.GetByPlannedPaymentID(7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected history to be purged, got %d records", len(records))
	}
}
