package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderStatus is the shopper-side lifecycle status of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// AdminStatus is the fulfilment status an operator assigns to an order
type AdminStatus string

const (
	AdminStatusPending    AdminStatus = "pending"
	AdminStatusInProgress AdminStatus = "in-progress"
	AdminStatusCompleted  AdminStatus = "completed"
	AdminStatusCancelled  AdminStatus = "cancelled"
)

// AdminStatuses lists the statuses an operator may assign, in display order.
var AdminStatuses = []AdminStatus{
	AdminStatusPending,
	AdminStatusInProgress,
	AdminStatusCompleted,
	AdminStatusCancelled,
}

// IsValid reports whether s is a known admin status.
func (s AdminStatus) IsValid() bool {
	for _, known := range AdminStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Customer holds the buyer's contact details
type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Address is a postal address
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// ShippingMethod is the shipping choice recorded on an order
type ShippingMethod struct {
	ShippingID       string          `json:"shippingId"`
	ShippingName     string          `json:"shippingName"`
	ShippingType     string          `json:"shippingType"`
	ShippingCost     decimal.Decimal `json:"shippingCost"`
	EstimatedDaysMin int             `json:"estimatedDaysMin"`
	EstimatedDaysMax int             `json:"estimatedDaysMax"`
	Description      string          `json:"description"`
}

// Order is the aggregate assembled at checkout.
type Order struct {
	OrderID         string          `json:"orderId"`
	OrderDate       string          `json:"orderDate"`
	UserID          string          `json:"userId,omitempty"`
	Customer        Customer        `json:"customer"`
	Items           []CartItem      `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	ShippingAddress Address         `json:"shippingAddress"`
	BillingAddress  Address         `json:"billingAddress"`
	ShippingMethod  ShippingMethod  `json:"shippingMethod"`
	PaymentMethod   string          `json:"paymentMethod"`
	OrderNotes      string          `json:"orderNotes,omitempty"`
	Status          OrderStatus     `json:"status"`
	DiscountCode    string          `json:"discountCode,omitempty"`
}

// RelayItem is one order line inside the relay payload.
type RelayItem struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Thumbnail   string          `json:"thumbnail"`
	Color       string          `json:"color"`
	Size        string          `json:"size"`
}

// RelayPayload is the JSON document sent to the merchant and pasted back
// into the admin portal. Field order is part of the format.
type RelayPayload struct {
	OrderID         string          `json:"orderId"`
	OrderDate       string          `json:"orderDate"`
	UserID          string          `json:"userId"`
	Customer        Customer        `json:"customer"`
	ShippingAddress string          `json:"shippingAddress"`
	Items           []RelayItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	ShippingMethod  string          `json:"shippingMethod"`
	PaymentMethod   string          `json:"paymentMethod"`
	OrderNotes      string          `json:"orderNotes,omitempty"`
	DiscountCode    string          `json:"discountCode"`
}

// NewRelayPayload flattens an order for relay.
func NewRelayPayload(order *Order, userID string) *RelayPayload {
	items := make([]RelayItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, RelayItem{
			ProductID:   item.Product.ProductID,
			ProductName: item.Product.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
			Thumbnail:   item.Product.Thumbnail,
			Color:       item.SelectedColor,
			Size:        item.SelectedSize,
		})
	}

	return &RelayPayload{
		OrderID:         order.OrderID,
		OrderDate:       order.OrderDate,
		UserID:          userID,
		Customer:        order.Customer,
		ShippingAddress: order.ShippingAddress.Address1,
		Items:           items,
		Subtotal:        order.Subtotal,
		Tax:             order.Tax,
		Shipping:        order.Shipping,
		Discount:        order.Discount,
		Total:           order.Total,
		ShippingMethod:  order.ShippingMethod.ShippingName,
		PaymentMethod:   order.PaymentMethod,
		OrderNotes:      order.OrderNotes,
		DiscountCode:    order.DiscountCode,
	}
}

// Encode renders the payload as two-space indented JSON.
func (p *RelayPayload) Encode() (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode relay payload: %w", err)
	}
	return string(data), nil
}

// StoredItemProduct is the product part of an items_json entry.
type StoredItemProduct struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Thumbnail   string          `json:"thumbnail"`
}

// StoredItem is the items_json entry written to orders.csv.
type StoredItem struct {
	Product       StoredItemProduct `json:"product"`
	Quantity      int               `json:"quantity"`
	SelectedColor string            `json:"selectedColor"`
	SelectedSize  string            `json:"selectedSize"`
}

// AdminOrder is an orders.csv row decoded for the admin portal.
type AdminOrder struct {
	UserID          string          `json:"userId"`
	OrderID         string          `json:"orderId"`
	OrderDate       string          `json:"orderDate"`
	Customer        Customer        `json:"customer"`
	ShippingAddress string          `json:"shippingAddress"`
	Items           []StoredItem    `json:"items"`
	ItemsJSON       string          `json:"itemsJson,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	ShippingMethod  string          `json:"shippingMethod"`
	PaymentMethod   string          `json:"paymentMethod"`
	OrderNotes      string          `json:"orderNotes"`
	Status          string          `json:"status"`
	AdminStatus     AdminStatus     `json:"adminStatus"`
	AdminComment    string          `json:"adminComment"`
	DiscountCode    string          `json:"discountCode"`
}

// CheckoutForm is what the shopper submits at checkout.
type CheckoutForm struct {
	FirstName      string `json:"firstName" validate:"required,min=2"`
	LastName       string `json:"lastName" validate:"required,min=2"`
	Email          string `json:"email" validate:"email"`
	Phone          string `json:"phone" validate:"required,phone"`
	Address        string `json:"address" validate:"required,min=10"`
	ShippingMethod string `json:"shippingMethod" validate:"required"`
	OrderNotes     string `json:"orderNotes" validate:"max=1000"`
	SameAsShipping bool   `json:"sameAsShipping"`
	Region         string `json:"region"`
	ClientKey      string `json:"clientKey"`
}

// Customer returns the contact part of the form.
func (f *CheckoutForm) Customer() Customer {
	return Customer{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Phone:     f.Phone,
	}
}

// OrderImport is a relay payload re-entered by an operator, already
// normalized from the loosely typed pasted text.
type OrderImport struct {
	UserID          string          `json:"userId" validate:"required"`
	OrderID         string          `json:"orderId" validate:"required"`
	OrderDate       string          `json:"orderDate,omitempty"`
	FirstName       string          `json:"customerFirstName" validate:"required"`
	LastName        string          `json:"customerLastName"`
	Email           string          `json:"customerEmail"`
	Phone           string          `json:"customerPhone" validate:"required"`
	ShippingAddress string          `json:"shippingAddress"`
	Items           []RelayItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	ShippingMethod  string          `json:"shippingMethod"`
	PaymentMethod   string          `json:"paymentMethod"`
	OrderNotes      string          `json:"orderNotes"`
	AdminStatus     AdminStatus     `json:"adminStatus"`
	AdminComment    string          `json:"adminComment"`
	DiscountCode    string          `json:"discountCode"`
}

// StoredItems converts the import lines to the items_json layout.
func (o *OrderImport) StoredItems() []StoredItem {
	items := make([]StoredItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, StoredItem{
			Product: StoredItemProduct{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Price:       item.Price,
				Thumbnail:   item.Thumbnail,
			},
			Quantity:      item.Quantity,
			SelectedColor: item.Color,
			SelectedSize:  item.Size,
		})
	}
	return items
}

// Receipt is the result of a checkout submission.
type Receipt struct {
	Order       *Order `json:"order"`
	Payload     string `json:"payload"`
	Channel     string `json:"channel"`
	RelayURL    string `json:"relayUrl,omitempty"`
	RelayError  string `json:"relayError,omitempty"`
	CartCleared bool   `json:"cartCleared"`
	Cart        *Cart  `json:"cart"`
	UserID      string `json:"userId"`
}
