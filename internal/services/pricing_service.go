package services

import (
	"log"
	"strings"
	"time"

	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricingService computes shipping, discounts and tax for carts
type PricingService struct {
	catalog *CatalogService
	config  *ConfigService
	now     func() time.Time
}

// NewPricingService creates a new pricing service
func NewPricingService(catalog *CatalogService, config *ConfigService) *PricingService {
	return &PricingService{catalog: catalog, config: config, now: time.Now}
}

// AvailableShipping returns the active rules whose order value window
// contains the subtotal and that ship to the region.
func (s *PricingService) AvailableShipping(subtotal decimal.Decimal, region string) ([]*models.ShippingRule, error) {
	rules, err := s.catalog.ShippingRules()
	if err != nil {
		return nil, err
	}
	return lo.Filter(rules, func(r *models.ShippingRule, _ int) bool {
		return r.AppliesTo(subtotal) && r.ServesRegion(region)
	}), nil
}

// ShippingRule finds a shipping rule by id
func (s *PricingService) ShippingRule(shippingID string) (*models.ShippingRule, error) {
	rules, err := s.catalog.ShippingRules()
	if err != nil {
		return nil, err
	}
	rule, ok := lo.Find(rules, func(r *models.ShippingRule) bool { return r.ShippingID == shippingID })
	if !ok {
		return nil, notFound("shipping method", shippingID)
	}
	return rule, nil
}

// FindDiscount looks a code up case-insensitively among usable discounts
func (s *PricingService) FindDiscount(code string) (*models.Discount, error) {
	discounts, err := s.catalog.Discounts()
	if err != nil {
		return nil, err
	}
	now := s.now()
	discount, ok := lo.Find(discounts, func(d *models.Discount) bool { return d.Matches(code) && d.UsableAt(now) })
	if !ok {
		return nil, validationError("Invalid discount code")
	}
	return discount, nil
}

// eligibleSubtotal is the part of the subtotal a restricted discount covers.
// Unrestricted discounts cover the whole subtotal.
func eligibleSubtotal(cart *models.Cart, d *models.Discount) decimal.Decimal {
	if len(d.ApplicableProducts) == 0 && len(d.ApplicableCategories) == 0 {
		return cart.Subtotal
	}
	total := decimal.Zero
	for i := range cart.Items {
		item := &cart.Items[i]
		if lo.Contains(d.ApplicableProducts, item.Product.ProductID) || lo.Contains(d.ApplicableCategories, item.Product.CategoryID) {
			total = total.Add(item.LineTotal())
		}
	}
	return total
}

// QuoteDiscount validates a code against a cart and returns the amount it
// would take off.
func (s *PricingService) QuoteDiscount(code string, cart *models.Cart) (*models.Discount, decimal.Decimal, error) {
	discount, err := s.FindDiscount(code)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if cart.Subtotal.LessThan(discount.MinPurchase) {
		symbol := s.config.StoreConfig().CurrencySymbol
		return nil, decimal.Zero, validationError("Minimum purchase of %s required", utils.FormatPrice(discount.MinPurchase, symbol))
	}

	base := eligibleSubtotal(cart, discount)
	if !base.IsPositive() {
		return nil, decimal.Zero, validationError("Discount code %s does not apply to these items", discount.DiscountCode)
	}
	return discount, discount.Amount(base, cart.Shipping), nil
}

// TaxRule picks the active rule for a region, falling back to the rule
// whose region is "default".
func (s *PricingService) TaxRule(region string) (*models.TaxRule, bool) {
	rules, err := s.catalog.TaxRules()
	if err != nil {
		log.Printf("⚠️ Failed to load tax rules: %v", err)
		return nil, false
	}
	active := lo.Filter(rules, func(r *models.TaxRule, _ int) bool { return r.IsActive })
	if region = strings.TrimSpace(region); region != "" {
		if rule, ok := lo.Find(active, func(r *models.TaxRule) bool { return strings.EqualFold(r.RegionCode, region) }); ok {
			return rule, true
		}
	}
	return lo.Find(active, func(r *models.TaxRule) bool { return strings.EqualFold(r.RegionCode, "default") })
}

// Tax returns the tax owed. Nothing is owed while tax is disabled in the
// store config; otherwise a matching tax rule wins over the config rate.
// Inclusive rules add nothing on top of the price.
func (s *PricingService) Tax(subtotal, shipping decimal.Decimal, region string) decimal.Decimal {
	cfg := s.config.StoreConfig()
	if !cfg.EnableTax {
		return decimal.Zero
	}

	rate := cfg.TaxRate
	base := subtotal
	if rule, ok := s.TaxRule(region); ok {
		if rule.IsInclusive {
			return decimal.Zero
		}
		rate = rule.TaxRate
		if rule.AppliesToShipping {
			base = base.Add(shipping)
		}
	}
	return base.Mul(rate).Div(hundred).Round(2)
}

// Reprice refreshes the checkout side channels of a cart after its items
// changed: the selected shipping method, the applied discount and tax.
// A shipping method that no longer applies and a discount that no longer
// validates are dropped.
func (s *PricingService) Reprice(cart *models.Cart) {
	if cart.IsEmpty() {
		cart.Clear()
		return
	}

	if cart.ShippingID != "" {
		rule, err := s.ShippingRule(cart.ShippingID)
		if err != nil || !rule.AppliesTo(cart.Subtotal) {
			log.Printf("⚠️ Shipping method %s no longer applies to cart %s", cart.ShippingID, cart.ID)
			cart.ShippingID = ""
			cart.UpdateShipping(decimal.Zero)
		} else {
			cart.UpdateShipping(rule.Cost(cart.Weight()))
		}
	}

	if cart.AppliedDiscountCode != "" {
		discount, amount, err := s.QuoteDiscount(cart.AppliedDiscountCode, cart)
		if err != nil {
			log.Printf("⚠️ Removing discount %s from cart %s: %v", cart.AppliedDiscountCode, cart.ID, err)
			cart.RemoveDiscount()
		} else {
			cart.ApplyDiscount(discount.DiscountCode, amount)
		}
	}

	cart.UpdateTax(s.Tax(cart.Subtotal, cart.Shipping, cart.Region))
}
