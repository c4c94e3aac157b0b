package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for raw, want := range map[string]OrderStatus{
		"Pending":    OrderPending,
		"shipped":    OrderShipped,
		" DELIVERED": OrderDelivered,
		"cancelled":  OrderCancelled,
	} {
		got, err := ParseOrderStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}

	_, err := ParseOrderStatus("Lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderStatus_Valid(t *testing.T) {
	assert.True(t, OrderCancelled.Valid())
	assert.False(t, OrderStatus("pending").Valid())
	assert.False(t, OrderStatus("").Valid())
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("+1 (555) 010-2030"))
	assert.True(t, ValidPhone("12345"))
	assert.False(t, ValidPhone("1234"))
	assert.False(t, ValidPhone("1234567890123456"))
	assert.False(t, ValidPhone("phone"))
}

func TestOrder_Reference(t *testing.T) {
	assert.Equal(t, "TRK-1", (&Order{ID: 4, TrackingID: "TRK-1"}).Reference())
	assert.Equal(t, "4", (&Order{ID: 4}).Reference())
	assert.Equal(t, "", (&Order{}).Reference())
	assert.Equal(t, "", (*Order)(nil).Reference())
}

func TestNewOrderRequest(t *testing.T) {
	c := NewCart(GuestPartition, nil)
	require.NoError(t, c.Add(product(1, "9.99"), 2))
	require.NoError(t, c.Add(product(2, "1.01"), 1))

	form := CheckoutForm{CustomerName: "Ann", CustomerPhone: "555-0100", CustomerAddress: "Main St 1"}
	req := NewOrderRequest(form, c.Snapshot())

	assert.Equal(t, "Ann", req.CustomerName)
	assert.Equal(t, "20.99", req.TotalAmount.StringFixed(2))
	assert.Equal(t, []OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, req.Items)
}
