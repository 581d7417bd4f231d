package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	err := New(CodeBidTooLow, "annual value below base price").
		With("min_annual", decimal.NewFromInt(5)).
		WithString("player_id", "abc")

	assert.Equal(t, "BID_TOO_LOW: annual value below base price (min_annual=5, player_id=abc)", err.Error())
	assert.Equal(t, "5", err.Params["min_annual"])
}

func TestAs_ThroughWrapping(t *testing.T) {
	inner := New(CodeRosterLimit, "no slot for player")
	wrapped := fmt.Errorf("commit failed: %w", inner)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeRosterLimit, got.Code)
	assert.True(t, Is(wrapped, CodeRosterLimit))
	assert.Equal(t, CodeRosterLimit, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestRestrict(t *testing.T) {
	t.Run("declared code passes through", func(t *testing.T) {
		err := Restrict(New(CodeAlreadyAccepted, "signed"), AcceptTradeCodes)
		assert.Equal(t, CodeAlreadyAccepted, err.Code)
	})

	t.Run("undeclared code falls back", func(t *testing.T) {
		err := Restrict(New(CodeInsufficientCap, "over cap"), AcceptTradeCodes)
		assert.Equal(t, CodeTradeFailed, err.Code)
		assert.True(t, Is(err, CodeTradeFailed))
	})

	t.Run("plain error falls back and keeps cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Restrict(cause, PlaceBidCodes)
		assert.Equal(t, CodeInternal, err.Code)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, Restrict(nil, PlaceBidCodes))
	})
}

func TestCode_Kind(t *testing.T) {
	tests := []struct {
		code Code
		want Kind
	}{
		{CodeInvalidBid, KindValidation},
		{CodeTradeInvalid, KindValidation},
		{CodeBidTooLow, KindBusiness},
		{CodeInsufficientCap, KindBusiness},
		{CodeConflict, KindConflict},
		{CodeInternal, KindFatal},
		{CodeTradeFailed, KindFatal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Kind())
		})
	}
}
