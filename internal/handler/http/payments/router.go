package payments_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JustJirka/P6PP/internal/app/payments"
)

func RegisterRoutes(r chi.Router, s payments.PaymentService, l *zap.Logger) {
	handler := NewPaymentHandler(s, l.With(zap.String("component", "PaymentHTTPHandler")))

	r.Route("/health", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("Payment service is healthy!"))
		})
	})

	r.Route("/api/payment", func(r chi.Router) {
		r.Post("/createpayment", handler.CreatePaymentHandler)
		r.Post("/updatepayment", handler.UpdatePaymentHandler)
		r.Get("/getbalance/{userId}", handler.GetBalanceHandler)
		r.Get("/getpayment/{id}", handler.GetPaymentHandler)
		r.Post("/createbalance", handler.CreateBalanceHandler)
	})
}
