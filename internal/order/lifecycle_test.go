package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusShipped, true},
		{StatusPending, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusDelivered, StatusReturned, true},
		{StatusDelivered, StatusExchangeRequested, true},

		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusShipped, StatusProcessing, false},
		{StatusConfirmed, StatusPending, false},
		{StatusPending, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusReturned, StatusDelivered, false},
		{StatusPending, StatusReturned, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []Status{
		StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusReturned, StatusExchangeRequested,
	}
	for _, to := range all {
		assert.False(t, CanTransition(StatusCancelled, to), to)
		for _, back := range []Status{StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusCancelled} {
			assert.False(t, CanTransition(StatusDelivered, back), back)
		}
	}
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, s)

	s, err = ParseStatus("exchange_requested")
	require.NoError(t, err)
	assert.Equal(t, StatusExchangeRequested, s)

	_, err = ParseStatus("lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCheckCancellable(t *testing.T) {
	assert.NoError(t, checkCancellable(StatusPending))
	assert.NoError(t, checkCancellable(StatusConfirmed))
	assert.NoError(t, checkCancellable(StatusProcessing))
	assert.ErrorIs(t, checkCancellable(StatusShipped), ErrAlreadyShipped)
	assert.ErrorIs(t, checkCancellable(StatusDelivered), ErrAlreadyShipped)
	assert.ErrorIs(t, checkCancellable(StatusReturned), ErrAlreadyShipped)
	assert.ErrorIs(t, checkCancellable(StatusCancelled), ErrAlreadyCancelled)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "BT2026000042", FormatNumber("BT", 2026, 42))
	assert.Equal(t, "BT20261234567", FormatNumber("BT", 2026, 1234567))
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 3, TotalOrders: 21, HasNext: true}, newPagination(1, 10, 21))
	assert.Equal(t, Pagination{CurrentPage: 3, TotalPages: 3, TotalOrders: 21, HasPrev: true}, newPagination(3, 10, 21))
	assert.Equal(t, Pagination{CurrentPage: 1}, newPagination(1, 10, 0))
}
