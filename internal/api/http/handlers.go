package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/pricing"
	"motorent-backend/internal/security"
	"motorent-backend/internal/service"

	"github.com/gorilla/mux"
)

// BookingHandler exposes the booking and settlement operations over
// JSON. Authorization decisions stay in the service layer; the handler
// only extracts the actor and the request shape.
type BookingHandler struct {
	availability service.AvailabilityService
	booking      service.BookingService
	payments     service.PaymentService
}

func NewBookingHandler(availability service.AvailabilityService, booking service.BookingService, payments service.PaymentService) *BookingHandler {
	return &BookingHandler{
		availability: availability,
		booking:      booking,
		payments:     payments,
	}
}

type intervalQuery struct {
	AssetID int64
	Start   time.Time
	End     time.Time
}

func parseIntervalQuery(r *http.Request) (*intervalQuery, error) {
	assetID, err := strconv.ParseInt(r.URL.Query().Get("asset_id"), 10, 64)
	if err != nil {
		return nil, domain.E(domain.CodeValidation, "asset_id must be an integer")
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		return nil, domain.E(domain.CodeValidation, "start must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		return nil, domain.E(domain.CodeValidation, "end must be RFC3339")
	}
	return &intervalQuery{AssetID: assetID, Start: start.UTC(), End: end.UTC()}, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, domain.E(domain.CodeValidation, "id must be an integer")
	}
	return id, nil
}

// GET /api/v1/availability?asset_id=&start=&end=
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q, err := parseIntervalQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.availability.Check(r.Context(), q.AssetID, q.Start, q.End)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type quotePayload struct {
	AssetID      int64                    `json:"asset_id"`
	Start        time.Time                `json:"start"`
	End          time.Time                `json:"end"`
	AddOns       []pricing.AddOnSelection `json:"addons"`
	WithCoverage bool                     `json:"with_coverage"`
	CouponCode   string                   `json:"coupon_code"`
	Notes        string                   `json:"notes"`
}

// POST /api/v1/quotes
func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorMessage("authentication required"))
		return
	}
	var payload quotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.E(domain.CodeValidation, "invalid request body"))
		return
	}
	result, err := h.booking.Quote(r.Context(), service.QuoteRequest{
		AssetID:      payload.AssetID,
		RenterID:     actor.UserID,
		Start:        payload.Start.UTC(),
		End:          payload.End.UTC(),
		AddOns:       payload.AddOns,
		WithCoverage: payload.WithCoverage,
		CouponCode:   payload.CouponCode,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// POST /api/v1/reservations
func (h *BookingHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorMessage("authentication required"))
		return
	}
	var payload quotePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.E(domain.CodeValidation, "invalid request body"))
		return
	}
	rv, err := h.booking.CreateReservation(r.Context(), service.CreateReservationRequest{
		AssetID:      payload.AssetID,
		RenterID:     actor.UserID,
		Start:        payload.Start.UTC(),
		End:          payload.End.UTC(),
		AddOns:       payload.AddOns,
		WithCoverage: payload.WithCoverage,
		CouponCode:   payload.CouponCode,
		Notes:        payload.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rv)
}

// GET /api/v1/reservations/{id}
func (h *BookingHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rv, lines, err := h.booking.GetReservation(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservation": rv,
		"addons":      lines,
	})
}

// GET /api/v1/reservations?status=&page=&page_size=
func (h *BookingHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	status := r.URL.Query().Get("status")
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	var (
		items []domain.Reservation
		total int32
		err   error
	)
	if actor.Role == security.RoleVendor {
		items, total, err = h.booking.ListByVendor(r.Context(), actor.VendorID, status, page, pageSize)
	} else {
		items, total, err = h.booking.ListByRenter(r.Context(), actor.UserID, status, page, pageSize)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservations": items,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}

type cancelPayload struct {
	Reason string `json:"reason"`
}

// POST /api/v1/reservations/{id}/cancel
func (h *BookingHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var payload cancelPayload
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	result, err := h.booking.CancelReservation(r.Context(), actor, id, payload.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type capturePayload struct {
	Source string `json:"source"`
}

// POST /api/v1/reservations/{id}/capture
func (h *BookingHandler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var payload capturePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.E(domain.CodeValidation, "invalid request body"))
		return
	}
	payment, err := h.payments.Capture(r.Context(), actor, id, payload.Source)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

// POST /api/v1/reservations/{id}/pickup
func (h *BookingHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rv, err := h.booking.Pickup(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type checkoutPayload struct {
	ActualEnd time.Time `json:"actual_end"`
}

// POST /api/v1/reservations/{id}/checkout
func (h *BookingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var payload checkoutPayload
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	rv, err := h.booking.Checkout(r.Context(), actor, id, payload.ActualEnd.UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

// POST /api/v1/reservations/{id}/no-show
func (h *BookingHandler) MarkNoShow(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rv, err := h.booking.MarkNoShow(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

type offlinePaymentPayload struct {
	AmountYen int64                 `json:"amount_yen"`
	Channel   domain.PaymentChannel `json:"channel"`
}

// POST /api/v1/reservations/{id}/payments
func (h *BookingHandler) RecordOfflinePayment(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var payload offlinePaymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, domain.E(domain.CodeValidation, "invalid request body"))
		return
	}
	payment, err := h.payments.RecordOfflinePayment(r.Context(), actor, id, payload.AmountYen, payload.Channel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// GET /api/v1/reservations/{id}/payments
func (h *BookingHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFrom(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	payments, err := h.payments.ListPayments(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

func queryInt32(r *http.Request, key string, fallback int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 1 {
		return fallback
	}
	return int32(v)
}
