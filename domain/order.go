package domain

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderStatus mirrors the remote order ledger's states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

var orderStatuses = []OrderStatus{OrderPending, OrderShipped, OrderDelivered, OrderCancelled}

// ParseOrderStatus accepts any casing of the four known statuses.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	raw = strings.TrimSpace(raw)
	for _, status := range orderStatuses {
		if strings.EqualFold(string(status), raw) {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

func (s OrderStatus) Valid() bool {
	for _, status := range orderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID          int64           `json:"id,omitempty"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Order is an entry of the remote order ledger.
type Order struct {
	ID              int64           `json:"id"`
	TrackingID      string          `json:"trackingId"`
	Status          OrderStatus     `json:"status"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	CustomerAddress string          `json:"customerAddress"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	OrderDate       Timestamp       `json:"orderDate"`
}

// Reference returns the tracking id, falling back to the numeric id.
func (o *Order) Reference() string {
	if o == nil {
		return ""
	}
	if o.TrackingID != "" {
		return o.TrackingID
	}
	if o.ID != 0 {
		return strconv.FormatInt(o.ID, 10)
	}
	return ""
}

// CheckoutForm holds the customer fields entered at checkout.
type CheckoutForm struct {
	CustomerName    string `json:"customerName" validate:"required"`
	CustomerPhone   string `json:"customerPhone" validate:"required,phone"`
	CustomerEmail   string `json:"customerEmail,omitempty" validate:"omitempty,email"`
	CustomerAddress string `json:"customerAddress" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (f CheckoutForm) Normalize() CheckoutForm {
	return CheckoutForm{
		CustomerName:    strings.TrimSpace(f.CustomerName),
		CustomerPhone:   strings.TrimSpace(f.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(f.CustomerEmail),
		CustomerAddress: strings.TrimSpace(f.CustomerAddress),
	}
}

var nonDigits = regexp.MustCompile(`\D`)

// ValidPhone reports whether raw holds 5 to 15 digits once separators are stripped.
func ValidPhone(raw string) bool {
	digits := nonDigits.ReplaceAllString(raw, "")
	return len(digits) >= 5 && len(digits) <= 15
}

// OrderLine is the wire shape of an order line in a create request.
type OrderLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the body submitted to create an order.
type OrderRequest struct {
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	CustomerAddress string          `json:"customerAddress"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Items           []OrderLine     `json:"items"`
}

// NewOrderRequest builds the submission for the given cart snapshot.
func NewOrderRequest(form CheckoutForm, cart Snapshot) OrderRequest {
	lines := make([]OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return OrderRequest{
		CustomerName:    form.CustomerName,
		CustomerPhone:   form.CustomerPhone,
		CustomerEmail:   form.CustomerEmail,
		CustomerAddress: form.CustomerAddress,
		TotalAmount:     cart.TotalAmount,
		Items:           lines,
	}
}
