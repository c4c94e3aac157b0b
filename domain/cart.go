package domain

import (
	"github.com/shopspring/decimal"
)

// GuestPartition is the cart partition used while nobody is logged in.
const GuestPartition = "guest"

func init() {
	// Prices travel as JSON numbers both on the wire and in persisted carts.
	decimal.MarshalJSONWithoutQuotes = true
}

// CartItem is one line of a cart.
type CartItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is quantity × unit price.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is an ordered set of lines keyed by product id. Insertion order is display order.
// Totals are never stored; they are reduced from the lines on every call.
type Cart struct {
	Partition string
	items     []CartItem
}

// NewCart builds a cart for partition from persisted lines. Lines with a non-positive
// quantity are dropped and duplicate product ids are folded into the first occurrence.
func NewCart(partition string, items []CartItem) *Cart {
	c := &Cart{Partition: partition}
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if idx := c.index(item.ProductID); idx >= 0 {
			c.items[idx].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item)
	}
	return c
}

// Items returns a copy of the lines in display order.
func (c *Cart) Items() []CartItem {
	if c == nil || len(c.items) == 0 {
		return []CartItem{}
	}
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return c.Len() == 0
}

// Item returns the line for productID.
func (c *Cart) Item(productID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	if idx := c.index(productID); idx >= 0 {
		return c.items[idx], true
	}
	return CartItem{}, false
}

func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Add increments an existing line or appends a new one.
func (c *Cart) Add(product Product, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if idx := c.index(product.ID); idx >= 0 {
		c.items[idx].Quantity += quantity
		return nil
	}
	c.items = append(c.items, CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		ImageURL:  product.ImageURL,
		Quantity:  quantity,
	})
	return nil
}

// Remove deletes the line for productID and reports whether one existed.
func (c *Cart) Remove(productID int64) bool {
	idx := c.index(productID)
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// SetQuantity overwrites a line's quantity. Quantities below 1 are ignored; removal
// only happens through Remove.
func (c *Cart) SetQuantity(productID int64, quantity int) bool {
	if quantity < 1 {
		return false
	}
	idx := c.index(productID)
	if idx < 0 {
		return false
	}
	c.items[idx].Quantity = quantity
	return true
}

// Merge folds the lines of other into c, adding quantities for shared products.
func (c *Cart) Merge(other *Cart) {
	if other == nil {
		return
	}
	for _, item := range other.items {
		if idx := c.index(item.ProductID); idx >= 0 {
			c.items[idx].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item)
	}
}

func (c *Cart) Reset() {
	c.items = nil
}

// Snapshot is an immutable view of a cart with its derived totals.
type Snapshot struct {
	Partition     string          `json:"partition"`
	Items         []CartItem      `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{
		Partition:     c.partition(),
		Items:         c.Items(),
		TotalQuantity: c.TotalQuantity(),
		TotalAmount:   c.TotalAmount(),
	}
}

func (c *Cart) partition() string {
	if c == nil || c.Partition == "" {
		return GuestPartition
	}
	return c.Partition
}

func (c *Cart) index(productID int64) int {
	for i, item := range c.items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// CartStorageKey is the durable-storage key of a partition.
func CartStorageKey(partition string) string {
	if partition == "" {
		partition = GuestPartition
	}
	return "cartItems_" + partition
}
