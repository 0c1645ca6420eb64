package payments_http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JustJirka/P6PP/internal/domain"
)

type stubService struct {
	createPaymentFn        func(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
	createPaymentCreditsFn func(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error)
	confirmPaymentFn       func(ctx context.Context, paymentID int64, status domain.PaymentStatus) (int64, error)
	getPaymentFn           func(ctx context.Context, id int64) (*domain.Payment, error)
	getBalanceFn           func(ctx context.Context, userID int64) (*domain.UserCredit, error)
	createBalanceFn        func(ctx context.Context, userID int64) (int64, error)
}

func (s *stubService) CreatePayment(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	return s.createPaymentFn(ctx, userID, amount)
}

func (s *stubService) CreatePaymentCredits(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
	return s.createPaymentCreditsFn(ctx, userID, amount)
}

func (s *stubService) ConfirmPayment(ctx context.Context, paymentID int64, status domain.PaymentStatus) (int64, error) {
	return s.confirmPaymentFn(ctx, paymentID, status)
}

func (s *stubService) UpdateCreditsReservation(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return nil
}

func (s *stubService) UpdateCredits(ctx context.Context, userID int64, amount decimal.Decimal) error {
	return nil
}

func (s *stubService) GetPaymentByID(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.getPaymentFn(ctx, id)
}

func (s *stubService) GetBalanceByID(ctx context.Context, userID int64) (*domain.UserCredit, error) {
	return s.getBalanceFn(ctx, userID)
}

func (s *stubService) GetCreditTransaction(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.getPaymentFn(ctx, id)
}

func (s *stubService) CreateBalance(ctx context.Context, userID int64) (int64, error) {
	return s.createBalanceFn(ctx, userID)
}

func newTestRouter(svc *stubService) chi.Router {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestCreatePaymentHandler(t *testing.T) {
	svc := &stubService{
		createPaymentFn: func(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
			assert.Equal(t, int64(1), userID)
			assert.True(t, amount.Equal(decimal.NewFromInt(100)))
			return 42, nil
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodPost, "/api/payment/createpayment",
		`{"userId":1,"roleId":2,"transactionType":"reservation","amount":100}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, float64(42), env.Data)
}

func TestCreatePaymentHandlerCreditKind(t *testing.T) {
	var creditCalled bool
	svc := &stubService{
		createPaymentCreditsFn: func(ctx context.Context, userID int64, amount decimal.Decimal) (int64, error) {
			creditCalled = true
			return 7, nil
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodPost, "/api/payment/createpayment",
		`{"userId":1,"transactionType":"credit","amount":250}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.True(t, creditCalled)
}

func TestCreatePaymentHandlerValidation(t *testing.T) {
	router := newTestRouter(&stubService{})

	tests := []struct {
		name string
		body string
	}{
		{"missing user", `{"transactionType":"reservation","amount":100}`},
		{"unknown kind", `{"userId":1,"transactionType":"transfer","amount":100}`},
		{"zero amount", `{"userId":1,"transactionType":"reservation","amount":0}`},
		{"negative amount", `{"userId":1,"transactionType":"reservation","amount":-5}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec, env := doRequest(t, router, http.MethodPost, "/api/payment/createpayment", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, "Validation failed", env.Message)
			messages, ok := env.Data.([]any)
			require.True(t, ok)
			assert.NotEmpty(t, messages)
		})
	}
}

func TestCreatePaymentHandlerBadJSON(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec, env := doRequest(t, router, http.MethodPost, "/api/payment/createpayment", `{"userId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid request body", env.Message)
}

func TestUpdatePaymentHandler(t *testing.T) {
	svc := &stubService{
		confirmPaymentFn: func(ctx context.Context, paymentID int64, status domain.PaymentStatus) (int64, error) {
			assert.Equal(t, int64(42), paymentID)
			assert.Equal(t, domain.PaymentStatusConfirm, status)
			return 42, nil
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodPost, "/api/payment/updatepayment",
		`{"Id":42,"Status":"confirm"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, float64(42), env.Data)
}

func TestUpdatePaymentHandlerErrors(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{"not found", domain.ErrPaymentNotFound, http.StatusNotFound, "Payment not found"},
		{"insufficient credit", domain.ErrInsufficientCredit, http.StatusBadRequest, "Insufficient credit balance"},
		{"no balance", domain.ErrBalanceNotFound, http.StatusBadRequest, "Credit balance not found"},
		{"invalid transition", domain.ErrInvalidStatusTransition, http.StatusBadRequest, "Invalid status transition"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{
				confirmPaymentFn: func(ctx context.Context, paymentID int64, status domain.PaymentStatus) (int64, error) {
					return 0, tc.serviceErr
				},
			}
			router := newTestRouter(svc)

			rec, env := doRequest(t, router, http.MethodPost, "/api/payment/updatepayment",
				`{"Id":42,"Status":"confirm"}`)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tc.wantMsg, env.Message)
		})
	}
}

func TestUpdatePaymentHandlerUnknownStatus(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec, env := doRequest(t, router, http.MethodPost, "/api/payment/updatepayment",
		`{"Id":42,"Status":"cancelled"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Message)
}

func TestGetBalanceHandler(t *testing.T) {
	svc := &stubService{
		getBalanceFn: func(ctx context.Context, userID int64) (*domain.UserCredit, error) {
			assert.Equal(t, int64(1), userID)
			return &domain.UserCredit{ID: 5, UserID: 1, Balance: decimal.RequireFromString("150.50")}, nil
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodGet, "/api/payment/getbalance/1", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), data["userId"])
	assert.Equal(t, "150.5", data["creditBalance"])
}

func TestGetBalanceHandlerNotFound(t *testing.T) {
	svc := &stubService{
		getBalanceFn: func(ctx context.Context, userID int64) (*domain.UserCredit, error) {
			return nil, domain.ErrBalanceNotFound
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodGet, "/api/payment/getbalance/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Credit balance not found", env.Message)
}

func TestGetBalanceHandlerBadParam(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec, env := doRequest(t, router, http.MethodGet, "/api/payment/getbalance/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
}

func TestGetPaymentHandler(t *testing.T) {
	created := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := &stubService{
		getPaymentFn: func(ctx context.Context, id int64) (*domain.Payment, error) {
			return &domain.Payment{
				ID:        id,
				UserID:    1,
				Amount:    decimal.NewFromInt(100),
				Status:    domain.PaymentStatusPending,
				Kind:      domain.KindReservation,
				CreatedAt: created,
			}, nil
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodGet, "/api/payment/getpayment/42", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), data["paymentId"])
	assert.Equal(t, "pending", data["status"])
	assert.Equal(t, "reservation", data["transactionType"])
	assert.Equal(t, created.Format(time.RFC3339), data["createdAt"])
}

func TestGetPaymentHandlerNotFound(t *testing.T) {
	svc := &stubService{
		getPaymentFn: func(ctx context.Context, id int64) (*domain.Payment, error) {
			return nil, domain.ErrPaymentNotFound
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodGet, "/api/payment/getpayment/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Payment not found", env.Message)
}

func TestCreateBalanceHandler(t *testing.T) {
	svc := &stubService{
		createBalanceFn: func(ctx context.Context, userID int64) (int64, error) {
			assert.Equal(t, int64(1), userID)
			return 5, nil
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodPost, "/api/payment/createbalance", `{"userId":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, float64(5), env.Data)
}

func TestCreateBalanceHandlerConflict(t *testing.T) {
	svc := &stubService{
		createBalanceFn: func(ctx context.Context, userID int64) (int64, error) {
			return 0, domain.ErrBalanceAlreadyExists
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodPost, "/api/payment/createbalance", `{"userId":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Credit balance already exists", env.Message)
}

func TestCreateBalanceHandlerUnknownUser(t *testing.T) {
	svc := &stubService{
		createBalanceFn: func(ctx context.Context, userID int64) (int64, error) {
			return 0, domain.ErrUserNotFound
		},
	}
	router := newTestRouter(svc)

	rec, env := doRequest(t, router, http.MethodPost, "/api/payment/createbalance", `{"userId":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "User not found", env.Message)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
