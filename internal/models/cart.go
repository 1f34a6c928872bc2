package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned when an item is added with a quantity below 1.
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// VariantKey identifies a cart line: the same product in the same color
// and size is one line.
type VariantKey struct {
	ProductID string
	Color     string
	Size      string
}

// CartItem is one cart line holding a snapshot of the product.
type CartItem struct {
	Product       Product   `json:"product"`
	Quantity      int       `json:"quantity"`
	SelectedColor string    `json:"selectedColor,omitempty"`
	SelectedSize  string    `json:"selectedSize,omitempty"`
	AddedAt       time.Time `json:"addedAt"`
}

// Key returns the line's variant key.
func (i *CartItem) Key() VariantKey {
	return VariantKey{ProductID: i.Product.ProductID, Color: i.SelectedColor, Size: i.SelectedSize}
}

// LineTotal is price times quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the shopper's cart. Totals are recomputed after every
// transition and never assigned directly. Tax, shipping and discount are
// set from checkout computations, not derived from the items.
type Cart struct {
	ID                  string          `json:"id,omitempty"`
	Items               []CartItem      `json:"items"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	Tax                 decimal.Decimal `json:"tax"`
	Shipping            decimal.Decimal `json:"shipping"`
	Discount            decimal.Decimal `json:"discount"`
	Total               decimal.Decimal `json:"total"`
	AppliedDiscountCode string          `json:"appliedDiscountCode,omitempty"`
	ShippingID          string          `json:"shippingId,omitempty"`
	Region              string          `json:"region,omitempty"`
}

// CartSummary is the compact view of a cart's totals.
type CartSummary struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
}

// NewCart returns an empty cart.
func NewCart(id string) *Cart {
	return &Cart{ID: id, Items: []CartItem{}}
}

func (c *Cart) find(key VariantKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}

// AddItem merges into the line with the same variant key or appends a new
// one. Stock is not checked here.
func (c *Cart) AddItem(product Product, quantity int, color, size string, now time.Time) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	key := VariantKey{ProductID: product.ProductID, Color: color, Size: size}
	if i := c.find(key); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartItem{
			Product:       product,
			Quantity:      quantity,
			SelectedColor: color,
			SelectedSize:  size,
			AddedAt:       now,
		})
	}

	c.recalculate()
	return nil
}

// UpdateQuantity replaces a line's quantity; zero or less removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int, color, size string) {
	if quantity <= 0 {
		c.RemoveItem(productID, color, size)
		return
	}
	if i := c.find(VariantKey{ProductID: productID, Color: color, Size: size}); i >= 0 {
		c.Items[i].Quantity = quantity
	}
	c.recalculate()
}

// RemoveItem drops the line with the given variant key.
func (c *Cart) RemoveItem(productID, color, size string) {
	key := VariantKey{ProductID: productID, Color: color, Size: size}
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.Key() != key {
			kept = append(kept, item)
		}
	}
	c.Items = kept
	c.recalculate()
}

// Clear resets items, side-channel amounts and the applied code.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Tax = decimal.Zero
	c.Shipping = decimal.Zero
	c.Discount = decimal.Zero
	c.AppliedDiscountCode = ""
	c.ShippingID = ""
	c.recalculate()
}

// ApplyDiscount records a code and its computed amount.
func (c *Cart) ApplyDiscount(code string, amount decimal.Decimal) {
	c.AppliedDiscountCode = code
	c.Discount = amount
	c.recalculate()
}

// RemoveDiscount clears the applied code and amount.
func (c *Cart) RemoveDiscount() {
	c.AppliedDiscountCode = ""
	c.Discount = decimal.Zero
	c.recalculate()
}

// UpdateShipping sets the shipping cost.
func (c *Cart) UpdateShipping(cost decimal.Decimal) {
	c.Shipping = cost
	c.recalculate()
}

// UpdateTax sets the tax amount.
func (c *Cart) UpdateTax(amount decimal.Decimal) {
	c.Tax = amount
	c.recalculate()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount sums the quantities of all lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Weight sums product weight times quantity.
func (c *Cart) Weight() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Product.Weight.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Summary returns the cart totals.
func (c *Cart) Summary() CartSummary {
	return CartSummary{
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal,
		Tax:       c.Tax,
		Shipping:  c.Shipping,
		Discount:  c.Discount,
		Total:     c.Total,
	}
}

func (c *Cart) recalculate() {
	subtotal := decimal.Zero
	for i := range c.Items {
		subtotal = subtotal.Add(c.Items[i].LineTotal())
	}
	c.Subtotal = subtotal
	c.Total = subtotal.Add(c.Tax).Add(c.Shipping).Sub(c.Discount)
}
