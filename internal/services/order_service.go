package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"storefront-backend/database"
	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"
)

const (
	userIDKeyPrefix      = "userId:"
	localOrdersKeyPrefix = "orders:"
	notApplicable        = "N/A"
)

// OrderService turns carts into orders and relays them to the merchant
type OrderService struct {
	kv             database.KVStore
	carts          *CartService
	pricing        *PricingService
	config         *ConfigService
	clearOnFailure bool
	now            func() time.Time
}

// NewOrderService creates a new order service. clearOnFailure decides
// whether a cart is emptied when the relay channel is not configured.
func NewOrderService(kv database.KVStore, carts *CartService, pricing *PricingService, config *ConfigService, clearOnFailure bool) *OrderService {
	return &OrderService{
		kv:             kv,
		carts:          carts,
		pricing:        pricing,
		config:         config,
		clearOnFailure: clearOnFailure,
		now:            time.Now,
	}
}

// UserID returns the stable id of a browser, creating it on first use
func (s *OrderService) UserID(ctx context.Context, clientKey string) (string, error) {
	if strings.TrimSpace(clientKey) == "" {
		return "", validationError("client key is required")
	}

	key := userIDKeyPrefix + clientKey
	userID, err := s.kv.Get(ctx, key)
	if err == nil && userID != "" {
		return userID, nil
	}
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return "", fmt.Errorf("%w: failed to read user id: %v", ErrStorageUnavailable, err)
	}

	userID = utils.GenerateUserID(s.now())
	if err := s.kv.Set(ctx, key, userID); err != nil {
		return "", fmt.Errorf("%w: failed to store user id: %v", ErrStorageUnavailable, err)
	}
	log.Printf("Created user id %s", userID)
	return userID, nil
}

// LocalOrders returns the orders a user submitted, oldest first
func (s *OrderService) LocalOrders(ctx context.Context, userID string) ([]models.Order, error) {
	raw, err := s.kv.Get(ctx, localOrdersKeyPrefix+userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return []models.Order{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read local orders: %v", ErrStorageUnavailable, err)
	}
	var orders []models.Order
	if err := json.Unmarshal([]byte(raw), &orders); err != nil {
		return nil, fmt.Errorf("failed to decode local orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) appendLocalOrder(ctx context.Context, userID string, order *models.Order) error {
	orders, err := s.LocalOrders(ctx, userID)
	if err != nil {
		return err
	}
	orders = append(orders, *order)
	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to encode local orders: %w", err)
	}
	return s.kv.Set(ctx, localOrdersKeyPrefix+userID, string(data))
}

// SubmitOrder records the order locally and builds the relay link for the
// configured channel. Local persistence is best effort. A channel without
// its phone number or email yields ErrRelayNotConfigured together with the
// receipt, which still holds the payload.
func (s *OrderService) SubmitOrder(ctx context.Context, order *models.Order, cfg models.StoreConfig, clientKey string) (*models.Receipt, error) {
	userID, err := s.UserID(ctx, clientKey)
	if err != nil {
		log.Printf("⚠️ Failed to resolve user id for order %s: %v", order.OrderID, err)
		userID = utils.GenerateUserID(s.now())
	}
	order.UserID = userID

	if err := s.appendLocalOrder(ctx, userID, order); err != nil {
		log.Printf("⚠️ Failed to save order %s locally: %v", order.OrderID, err)
	}

	payload, err := models.NewRelayPayload(order, userID).Encode()
	if err != nil {
		return nil, err
	}

	receipt := &models.Receipt{Order: order, Payload: payload, UserID: userID}
	channel, link, err := RelayLink(cfg, order.OrderID, payload)
	receipt.Channel = channel
	if err != nil {
		log.Printf("❌ Order %s not relayed: %v", order.OrderID, err)
		receipt.RelayError = err.Error()
		return receipt, err
	}
	receipt.RelayURL = link

	log.Printf("📦 Order %s ready for relay via %s", order.OrderID, channel)
	return receipt, nil
}

// prepareForm fills the address from the contact details when the shopper
// asked to reuse them, and cleans free text.
func prepareForm(form *models.CheckoutForm) {
	if form.SameAsShipping && strings.TrimSpace(form.Address) == "" {
		form.Address = strings.TrimSpace(fmt.Sprintf("%s %s %s", form.FirstName, form.LastName, form.Phone))
	}
	form.FirstName = strings.TrimSpace(form.FirstName)
	form.LastName = strings.TrimSpace(form.LastName)
	form.Email = utils.NormalizeEmail(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Address = utils.CleanText(form.Address)
	form.OrderNotes = utils.CleanText(form.OrderNotes)
}

func addressFor(form *models.CheckoutForm) models.Address {
	return models.Address{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Address1:  form.Address,
		City:      notApplicable,
		State:     notApplicable,
		ZipCode:   notApplicable,
		Country:   notApplicable,
		Phone:     form.Phone,
	}
}

// Checkout validates the form, prices the cart with the chosen shipping
// method and submits the order. A relayed order empties the cart; an
// unrelayed one only does when configured to.
func (s *OrderService) Checkout(ctx context.Context, cartID string, form models.CheckoutForm) (*models.Receipt, error) {
	cart, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, validationError("Cart is empty")
	}

	prepareForm(&form)
	if err := utils.ValidateStruct(&form); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	rule, err := s.pricing.ShippingRule(form.ShippingMethod)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, validationError("Please select a shipping method")
		}
		return nil, err
	}
	if !rule.AppliesTo(cart.Subtotal) || !rule.ServesRegion(form.Region) {
		return nil, validationError("Shipping method %s is not available for this order", rule.ShippingName)
	}

	cart.Region = form.Region
	cart.ShippingID = rule.ShippingID
	s.pricing.Reprice(cart)

	now := s.now()
	address := addressFor(&form)
	order := &models.Order{
		OrderID:         utils.GenerateOrderID(now),
		OrderDate:       now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Customer:        form.Customer(),
		Items:           cart.Items,
		Subtotal:        cart.Subtotal,
		Tax:             cart.Tax,
		Shipping:        cart.Shipping,
		Discount:        cart.Discount,
		Total:           cart.Total,
		ShippingAddress: address,
		BillingAddress:  address,
		ShippingMethod: models.ShippingMethod{
			ShippingID:       rule.ShippingID,
			ShippingName:     rule.ShippingName,
			ShippingType:     rule.ShippingType,
			ShippingCost:     cart.Shipping,
			EstimatedDaysMin: rule.EstimatedDaysMin,
			EstimatedDaysMax: rule.EstimatedDaysMax,
			Description:      rule.Description,
		},
		PaymentMethod: defaultPaymentMethod,
		OrderNotes:    form.OrderNotes,
		Status:        models.OrderStatusPending,
		DiscountCode:  cart.AppliedDiscountCode,
	}

	receipt, relayErr := s.SubmitOrder(ctx, order, s.config.StoreConfig(), form.ClientKey)
	if receipt == nil {
		return nil, relayErr
	}

	if relayErr == nil || s.clearOnFailure {
		cart.Clear()
		receipt.CartCleared = true
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		log.Printf("⚠️ Failed to save cart %s after checkout: %v", cart.ID, err)
	}
	receipt.Cart = cart
	return receipt, relayErr
}
