package services

import (
	"fmt"
	"net/url"
	"strings"

	"storefront-backend/database"
	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"github.com/tidwall/gjson"
)

const (
	defaultShippingMethod = "Standard Shipping"
	defaultPaymentMethod  = "WhatsApp Order"
)

var uriComponentUnescapes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes text the way browsers escape a URI component
func EncodeURIComponent(s string) string {
	return uriComponentUnescapes.Replace(url.QueryEscape(s))
}

// WhatsAppLink builds a wa.me deep link carrying the payload as message text
func WhatsAppLink(number, payload string) (string, error) {
	digits := utils.DigitsOnly(number)
	if digits == "" {
		return "", fmt.Errorf("%w: WhatsApp number not configured", ErrRelayNotConfigured)
	}
	return "https://wa.me/" + digits + "?text=" + EncodeURIComponent(payload), nil
}

// EmailLink builds a mailto link carrying the payload as the body
func EmailLink(address, orderID, payload string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("%w: store email not configured", ErrRelayNotConfigured)
	}
	subject := EncodeURIComponent("New Order #" + orderID)
	return "mailto:" + address + "?subject=" + subject + "&body=" + EncodeURIComponent(payload), nil
}

// RelayLink picks the configured channel and builds its link
func RelayLink(cfg models.StoreConfig, orderID, payload string) (string, string, error) {
	channel := cfg.NotificationChannel()
	if channel == models.NotifyEmail {
		link, err := EmailLink(cfg.StoreEmail, orderID, payload)
		return channel, link, err
	}
	link, err := WhatsAppLink(cfg.WhatsAppNumber, payload)
	return channel, link, err
}

// maxQRLinkLength is the byte capacity of a version 40 code at low recovery.
const maxQRLinkLength = 2953

// RelayQRCode renders a link as a PNG QR code
func RelayQRCode(link string, size int) ([]byte, error) {
	if strings.TrimSpace(link) == "" {
		return nil, validationError("url is required")
	}
	if len(link) > maxQRLinkLength {
		return nil, validationError("link is %d bytes, a QR code holds at most %d", len(link), maxQRLinkLength)
	}
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(link, qrcode.Low, size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}

// extractJSON returns the outermost object in text, tolerating chat text
// around the pasted payload.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if gjson.Valid(text) {
		return text
	}
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start >= 0 && end > start && gjson.Valid(text[start:end+1]) {
		return text[start : end+1]
	}
	return ""
}

func money(r gjson.Result) decimal.Decimal {
	return database.ParseDecimal(r.String())
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// ParseRelayPayload reads a relay payload pasted by an operator. Numbers
// may arrive as strings; missing amounts read as zero and a missing
// quantity as one.
func ParseRelayPayload(text string) (*models.OrderImport, error) {
	doc := extractJSON(text)
	if doc == "" || !gjson.Parse(doc).IsObject() {
		return nil, validationError("Failed to parse message. Please ensure you copied the complete JSON.")
	}
	root := gjson.Parse(doc)

	address := root.Get("shippingAddress")
	shippingAddress := address.String()
	if address.IsObject() {
		shippingAddress = address.Get("address1").String()
	}

	order := &models.OrderImport{
		UserID:          root.Get("userId").String(),
		OrderID:         root.Get("orderId").String(),
		OrderDate:       strings.TrimSpace(root.Get("orderDate").String()),
		FirstName:       root.Get("customer.firstName").String(),
		LastName:        root.Get("customer.lastName").String(),
		Email:           root.Get("customer.email").String(),
		Phone:           root.Get("customer.phone").String(),
		ShippingAddress: shippingAddress,
		Items:           []models.RelayItem{},
		Subtotal:        money(root.Get("subtotal")),
		Tax:             money(root.Get("tax")),
		Shipping:        money(root.Get("shipping")),
		Discount:        money(root.Get("discount")),
		Total:           money(root.Get("total")),
		ShippingMethod:  orDefault(root.Get("shippingMethod").String(), defaultShippingMethod),
		PaymentMethod:   orDefault(root.Get("paymentMethod").String(), defaultPaymentMethod),
		OrderNotes:      root.Get("orderNotes").String(),
		AdminStatus:     models.AdminStatusPending,
		DiscountCode:    root.Get("discountCode").String(),
	}

	root.Get("items").ForEach(func(_, item gjson.Result) bool {
		quantity := int(item.Get("quantity").Int())
		if quantity <= 0 {
			quantity = 1
		}
		order.Items = append(order.Items, models.RelayItem{
			ProductID:   item.Get("productId").String(),
			ProductName: item.Get("productName").String(),
			Quantity:    quantity,
			Price:       money(item.Get("price")),
			Thumbnail:   item.Get("thumbnail").String(),
			Color:       item.Get("color").String(),
			Size:        item.Get("size").String(),
		})
		return true
	})

	return order, nil
}
