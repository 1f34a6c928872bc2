package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront-backend/database"
	"storefront-backend/internal/models"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const cartKeyPrefix = "cart:"

// CartService loads, mutates and persists carts. The stored cart is a
// snapshot for the shopper's convenience, not a record of an order.
type CartService struct {
	kv      database.KVStore
	catalog *CatalogService
	pricing *PricingService
	now     func() time.Time
}

// NewCartService creates a new cart service
func NewCartService(kv database.KVStore, catalog *CatalogService, pricing *PricingService) *CartService {
	return &CartService{kv: kv, catalog: catalog, pricing: pricing, now: time.Now}
}

// Create starts an empty cart with a fresh id
func (s *CartService) Create(ctx context.Context) (*models.Cart, error) {
	cart := models.NewCart(uuid.New().String())
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Get loads a cart by id
func (s *CartService) Get(ctx context.Context, cartID string) (*models.Cart, error) {
	raw, err := s.kv.Get(ctx, cartKeyPrefix+cartID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, notFound("cart", cartID)
		}
		return nil, fmt.Errorf("%w: failed to load cart: %v", ErrStorageUnavailable, err)
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart %s: %w", cartID, err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.ID = cartID
	return &cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, cartKeyPrefix+cart.ID, string(data)); err != nil {
		return fmt.Errorf("%w: failed to save cart: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// mutate runs one transition, reprices and persists the result
func (s *CartService) mutate(ctx context.Context, cartID string, fn func(cart *models.Cart) error) (*models.Cart, error) {
	cart, err := s.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	s.pricing.Reprice(cart)
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// checkVariant rejects a color or size the product does not offer
func checkVariant(product *models.Product, color, size string) error {
	if color != "" && len(product.ColorVariants) > 0 && !lo.Contains(product.ColorVariants, color) {
		return validationError("%s is not available in %s", product.ProductName, color)
	}
	if size != "" && len(product.SizeVariants) > 0 && !lo.Contains(product.SizeVariants, size) {
		return validationError("%s is not available in size %s", product.ProductName, size)
	}
	return nil
}

// checkStock rejects a line quantity the product cannot cover
func checkStock(product *models.Product, quantity int) error {
	if !product.InStock() {
		return validationError("%s is out of stock", product.ProductName)
	}
	if quantity > product.StockQuantity {
		return validationError("Only %d of %s left in stock", product.StockQuantity, product.ProductName)
	}
	return nil
}

func lineQuantity(cart *models.Cart, key models.VariantKey) int {
	for i := range cart.Items {
		if cart.Items[i].Key() == key {
			return cart.Items[i].Quantity
		}
	}
	return 0
}

// AddItem adds a product to the cart, merging with an existing line of the
// same product, color and size. A zero quantity adds one.
func (s *CartService) AddItem(ctx context.Context, cartID string, req models.CartItemRequest) (*models.Cart, error) {
	product, err := s.catalog.Product(req.ProductID)
	if err != nil {
		return nil, err
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if err := checkVariant(product, req.Color, req.Size); err != nil {
		return nil, err
	}

	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		key := models.VariantKey{ProductID: product.ProductID, Color: req.Color, Size: req.Size}
		if quantity > 0 {
			if err := checkStock(product, lineQuantity(cart, key)+quantity); err != nil {
				return err
			}
		}
		if err := cart.AddItem(*product, quantity, req.Color, req.Size, s.now()); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return nil
	})
}

// UpdateItem replaces a line's quantity; zero or less removes the line
func (s *CartService) UpdateItem(ctx context.Context, cartID string, req models.CartItemRequest) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		key := models.VariantKey{ProductID: req.ProductID, Color: req.Color, Size: req.Size}
		if req.Quantity > 0 {
			if lineQuantity(cart, key) == 0 {
				return notFound("cart item", req.ProductID)
			}
			product, err := s.catalog.Product(req.ProductID)
			if err != nil {
				return err
			}
			if err := checkStock(product, req.Quantity); err != nil {
				return err
			}
		}
		cart.UpdateQuantity(req.ProductID, req.Quantity, req.Color, req.Size)
		return nil
	})
}

// RemoveItem drops one line from the cart
func (s *CartService) RemoveItem(ctx context.Context, cartID string, req models.CartItemRequest) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		cart.RemoveItem(req.ProductID, req.Color, req.Size)
		return nil
	})
}

// Clear empties the cart and drops the applied discount and shipping
func (s *CartService) Clear(ctx context.Context, cartID string) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		cart.Clear()
		return nil
	})
}

// ApplyDiscount validates a code against the cart and applies it
func (s *CartService) ApplyDiscount(ctx context.Context, cartID, code string) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		if cart.IsEmpty() {
			return validationError("Cart is empty")
		}
		discount, amount, err := s.pricing.QuoteDiscount(code, cart)
		if err != nil {
			return err
		}
		cart.ApplyDiscount(discount.DiscountCode, amount)
		return nil
	})
}

// RemoveDiscount drops the applied discount
func (s *CartService) RemoveDiscount(ctx context.Context, cartID string) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		cart.RemoveDiscount()
		return nil
	})
}

// SelectShipping picks a shipping method available for the cart's
// subtotal and the given region.
func (s *CartService) SelectShipping(ctx context.Context, cartID string, req models.ShippingRequest) (*models.Cart, error) {
	return s.mutate(ctx, cartID, func(cart *models.Cart) error {
		rule, err := s.pricing.ShippingRule(req.ShippingID)
		if err != nil {
			return err
		}
		if !rule.AppliesTo(cart.Subtotal) || !rule.ServesRegion(req.Region) {
			return validationError("Shipping method %s is not available for this order", rule.ShippingName)
		}
		cart.Region = req.Region
		cart.ShippingID = rule.ShippingID
		cart.UpdateShipping(rule.Cost(cart.Weight()))
		return nil
	})
}

// Delete removes the stored cart
func (s *CartService) Delete(ctx context.Context, cartID string) error {
	if _, err := s.Get(ctx, cartID); err != nil {
		return err
	}
	if err := s.kv.Delete(ctx, cartKeyPrefix+cartID); err != nil {
		return fmt.Errorf("%w: failed to delete cart: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Save stores a cart as is
func (s *CartService) Save(ctx context.Context, cart *models.Cart) error {
	return s.save(ctx, cart)
}
