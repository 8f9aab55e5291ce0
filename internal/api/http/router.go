package http

import (
	"net/http"

	"motorent-backend/internal/security"
	"motorent-backend/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the API routes. /healthz and /metrics are open; the
// /api/v1 subtree requires a valid token.
func NewRouter(
	tokens security.TokenManager,
	availability service.AvailabilityService,
	booking service.BookingService,
	payments service.PaymentService,
) *mux.Router {
	h := NewBookingHandler(availability, booking, payments)

	r := mux.NewRouter()
	r.Use(LoggingMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tokens))

	api.HandleFunc("/availability", h.CheckAvailability).Methods(http.MethodGet)
	api.HandleFunc("/quotes", h.Quote).Methods(http.MethodPost)

	api.HandleFunc("/reservations", h.CreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations", h.ListReservations).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id:[0-9]+}", h.GetReservation).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id:[0-9]+}/cancel", h.CancelReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/capture", h.CapturePayment).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/pickup", h.Pickup).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/checkout", h.Checkout).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/no-show", h.MarkNoShow).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/payments", h.RecordOfflinePayment).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id:[0-9]+}/payments", h.ListPayments).Methods(http.MethodGet)

	return r
}
