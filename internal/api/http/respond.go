package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/logger"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps a domain error to an HTTP response. Reconciliation
// gaps are deliberately opaque to the client; the full detail goes to
// the log for the operator.
func writeError(w http.ResponseWriter, err error) {
	var gap *domain.ReconciliationGapError
	if errors.As(err, &gap) {
		logger.Error("Reconciliation gap surfaced to API",
			"reservation_id", gap.ReservationID, "external_tx_id", gap.ExternalTxID,
			"amount_yen", gap.AmountYen, "error", gap.Err)
		body := errorBody{}
		body.Error.Code = string(domain.CodeReconciliationGap)
		body.Error.Message = "payment could not be finalized; please contact support before retrying"
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}

	code := domain.CodeOf(err)
	body := errorBody{}
	body.Error.Code = string(code)
	body.Error.Message = rejectionDetail(err)
	writeJSON(w, statusFor(code), body)
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeInvalidCoupon, domain.CodeCouponNotActive,
		domain.CodeCouponExhausted, domain.CodeMinimumNotMet:
		return http.StatusBadRequest
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeAssetUnavailable, domain.CodeIntervalConflict, domain.CodeVendorClosed,
		domain.CodeOutsideBusinessHours, domain.CodeInvalidStateTransition, domain.CodeConflict:
		return http.StatusConflict
	case domain.CodePaymentGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func rejectionDetail(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Message
	}
	var conflict *domain.IntervalConflictError
	if errors.As(err, &conflict) {
		return conflict.Error()
	}
	// Unclassified errors keep their internals out of the response.
	if domain.CodeOf(err) == domain.CodeInternal {
		return "internal error"
	}
	return err.Error()
}
