package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	bookingdomain "github.com/dirtfreecarpet/portal/internal/booking/domain"
	invoicedomain "github.com/dirtfreecarpet/portal/internal/invoice/domain"
	loyaltydomain "github.com/dirtfreecarpet/portal/internal/loyalty/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{name: "nil", err: nil, wantStatus: http.StatusInternalServerError, wantType: "internal_error"},
		{name: "unauthorized", err: ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantType: "unauthorized"},
		{name: "not found", err: invoicedomain.ErrNotFound, wantStatus: http.StatusNotFound, wantType: "not_found"},
		{name: "reward not found", err: loyaltydomain.ErrRewardNotFound, wantStatus: http.StatusNotFound, wantType: "not_found"},
		{name: "insufficient points", err: loyaltydomain.ErrInsufficientPoints, wantStatus: http.StatusBadRequest, wantType: "validation_error"},
		{name: "cannot cancel", err: bookingdomain.ErrCannotCancel, wantStatus: http.StatusConflict, wantType: "conflict"},
		{name: "rate limited", err: ErrTooManyRequests, wantStatus: http.StatusTooManyRequests, wantType: "too_many_requests"},
		{name: "wrapped", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantType: "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}

func TestValidationErrorsCarryFieldDetail(t *testing.T) {
	err := newValidationError("limit", "invalid_limit", "invalid limit")

	status, payload := mapError(err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", payload.Type)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "limit", payload.Errors[0].Field)
		assert.Equal(t, "invalid_limit", payload.Errors[0].Code)
	}
}
