package domain

import (
	"errors"
	"fmt"
	"time"
)

type ErrorCode string

const (
	CodeValidation             ErrorCode = "VALIDATION_ERROR"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeForbidden              ErrorCode = "FORBIDDEN"
	CodeAssetUnavailable       ErrorCode = "ASSET_UNAVAILABLE"
	CodeIntervalConflict       ErrorCode = "INTERVAL_CONFLICT"
	CodeVendorClosed           ErrorCode = "VENDOR_CLOSED"
	CodeOutsideBusinessHours   ErrorCode = "OUTSIDE_BUSINESS_HOURS"
	CodeInvalidCoupon          ErrorCode = "INVALID_COUPON"
	CodeCouponNotActive        ErrorCode = "COUPON_NOT_ACTIVE"
	CodeCouponExhausted        ErrorCode = "COUPON_EXHAUSTED"
	CodeMinimumNotMet          ErrorCode = "MINIMUM_NOT_MET"
	CodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"
	CodeConflict               ErrorCode = "CONFLICT"
	CodePaymentGateway         ErrorCode = "PAYMENT_GATEWAY_ERROR"
	CodeReconciliationGap      ErrorCode = "RECONCILIATION_GAP"
	CodeInternal               ErrorCode = "INTERNAL"
)

// Error is the common shape for domain rejections. Local validation and
// domain rejections never come with partial state mutation attached.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a domain error with a formatted message.
func E(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapE wraps an underlying error under a domain code.
func WrapE(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// IntervalConflictError is returned when a requested interval collides
// with active reservations. NextAvailable is the latest conflicting end
// time, i.e. the soonest moment the asset frees up from the conflicts
// that were found.
type IntervalConflictError struct {
	AssetID        int64
	ReservationIDs []int64
	NextAvailable  time.Time
}

func (e *IntervalConflictError) Error() string {
	return fmt.Sprintf("asset %d is already reserved for the requested interval; next available after %s",
		e.AssetID, e.NextAvailable.Format(time.RFC3339))
}

// ReconciliationGapError means the gateway captured funds but the
// datastore write that records them failed. It is fatal for the caller:
// retrying the charge would double-charge. Carries everything manual
// recovery needs.
type ReconciliationGapError struct {
	ReservationID int64
	ExternalTxID  string
	AmountYen     int64
	Err           error
}

func (e *ReconciliationGapError) Error() string {
	return fmt.Sprintf("payment of %d yen captured (tx %s) for reservation %d but not recorded: %v",
		e.AmountYen, e.ExternalTxID, e.ReservationID, e.Err)
}

func (e *ReconciliationGapError) Unwrap() error { return e.Err }

// CodeOf extracts the taxonomy code from any error in a chain.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	var ic *IntervalConflictError
	if errors.As(err, &ic) {
		return CodeIntervalConflict
	}
	var rg *ReconciliationGapError
	if errors.As(err, &rg) {
		return CodeReconciliationGap
	}
	return CodeInternal
}
