package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

func init() {
	// Money is rendered as a JSON number, matching the relay payload.
	decimal.MarshalJSONWithoutQuotes = true
}

// StockStatus classifies a product's stock level
type StockStatus string

const (
	StockStatusOut StockStatus = "out-of-stock"
	StockStatusLow StockStatus = "low-stock"
	StockStatusIn  StockStatus = "in-stock"
)

// ClassifyStock is a pure function of quantity and threshold.
func ClassifyStock(quantity, threshold int) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOut
	case quantity <= threshold:
		return StockStatusLow
	default:
		return StockStatusIn
	}
}

// StockLabel is the shopper-facing text for a stock level.
func StockLabel(quantity, threshold int) string {
	switch ClassifyStock(quantity, threshold) {
	case StockStatusOut:
		return "Out of Stock"
	case StockStatusLow:
		return fmt.Sprintf("Only %d left!", quantity)
	default:
		return "In Stock"
	}
}

// Product represents a catalog product
type Product struct {
	ProductID         string                     `json:"productId"`
	ProductName       string                     `json:"productName"`
	CategoryID        string                     `json:"categoryId"`
	SubcategoryID     string                     `json:"subcategoryId"`
	SKU               string                     `json:"sku"`
	Description       string                     `json:"description"`
	ShortDescription  string                     `json:"shortDescription"`
	Price             decimal.Decimal            `json:"price"`
	CompareAtPrice    mo.Option[decimal.Decimal] `json:"compareAtPrice"`
	CostPrice         mo.Option[decimal.Decimal] `json:"costPrice"`
	StockQuantity     int                        `json:"stockQuantity"`
	LowStockThreshold int                        `json:"lowStockThreshold"`
	IsAvailable       bool                       `json:"isAvailable"`
	IsFeatured        bool                       `json:"isFeatured"`
	Weight            decimal.Decimal            `json:"weight"`
	Dimensions        string                     `json:"dimensions"`
	ColorVariants     []string                   `json:"colorVariants"`
	SizeVariants      []string                   `json:"sizeVariants"`
	Images            []string                   `json:"images"`
	Thumbnail         string                     `json:"thumbnail"`
	VideoURL          string                     `json:"videoUrl,omitempty"`
	Brand             string                     `json:"brand"`
	Tags              []string                   `json:"tags"`
	MetaTitle         string                     `json:"metaTitle"`
	MetaDescription   string                     `json:"metaDescription"`
	CreatedDate       string                     `json:"createdDate"`
	ModifiedDate      string                     `json:"modifiedDate"`
}

// StockStatus classifies the product's current stock.
func (p *Product) StockStatus() StockStatus {
	return ClassifyStock(p.StockQuantity, p.LowStockThreshold)
}

// InStock reports whether the product can be sold right now.
func (p *Product) InStock() bool {
	return p.IsAvailable && p.StockQuantity > 0
}

// CreatedAt parses the created date; unparseable dates sort first.
func (p *Product) CreatedAt() time.Time {
	return ParseLooseTime(p.CreatedDate)
}

// ProductView is a product enriched with derived display fields.
type ProductView struct {
	*Product
	StockStatus StockStatus `json:"stockStatus"`
	StockLabel  string      `json:"stockLabel"`
	Related     []*Product  `json:"related,omitempty"`
}

// NewProductView derives the stock fields for a product.
func NewProductView(p *Product) ProductView {
	return ProductView{
		Product:     p,
		StockStatus: p.StockStatus(),
		StockLabel:  StockLabel(p.StockQuantity, p.LowStockThreshold),
	}
}

// Category represents a product category. ParentCategoryID is a weak
// self-reference; empty means top level.
type Category struct {
	CategoryID       string `json:"categoryId"`
	CategoryName     string `json:"categoryName"`
	ParentCategoryID string `json:"parentCategoryId,omitempty"`
	CategorySlug     string `json:"categorySlug"`
	Description      string `json:"description"`
	ImagePath        string `json:"imagePath"`
	IconClass        string `json:"iconClass"`
	DisplayOrder     int    `json:"displayOrder"`
	IsActive         bool   `json:"isActive"`
	MetaTitle        string `json:"metaTitle"`
	MetaDescription  string `json:"metaDescription"`
}

// ShippingRule represents a shipping method and when it applies
type ShippingRule struct {
	ShippingID       string          `json:"shippingId"`
	ShippingName     string          `json:"shippingName"`
	ShippingType     string          `json:"shippingType"`
	Description      string          `json:"description"`
	ShippingCost     decimal.Decimal `json:"shippingCost"`
	PricePerKg       decimal.Decimal `json:"pricePerKg"`
	MinOrderValue    decimal.Decimal `json:"minOrderValue"`
	MaxOrderValue    decimal.Decimal `json:"maxOrderValue"`
	EstimatedDaysMin int             `json:"estimatedDaysMin"`
	EstimatedDaysMax int             `json:"estimatedDaysMax"`
	IsActive         bool            `json:"isActive"`
	Regions          []string        `json:"regions"`
}

// AppliesTo reports whether the rule is active and the subtotal falls in
// its order value window. A zero maximum means unbounded.
func (s *ShippingRule) AppliesTo(subtotal decimal.Decimal) bool {
	if !s.IsActive || subtotal.LessThan(s.MinOrderValue) {
		return false
	}
	return s.MaxOrderValue.IsZero() || subtotal.LessThanOrEqual(s.MaxOrderValue)
}

// Cost returns the charge for a shipment of the given weight in kg.
func (s *ShippingRule) Cost(weight decimal.Decimal) decimal.Decimal {
	return s.ShippingCost.Add(s.PricePerKg.Mul(weight))
}

// ServesRegion reports whether the rule ships to a region. Rules without
// regions ship everywhere.
func (s *ShippingRule) ServesRegion(region string) bool {
	if len(s.Regions) == 0 || region == "" {
		return true
	}
	for _, r := range s.Regions {
		if strings.EqualFold(r, region) || strings.EqualFold(r, "all") {
			return true
		}
	}
	return false
}

// DiscountType represents how a discount amount is computed
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
	DiscountTypeShipping   DiscountType = "shipping"
)

// Discount represents a discount code
type Discount struct {
	DiscountID           string               `json:"discountId"`
	DiscountCode         string               `json:"discountCode"`
	DiscountType         DiscountType         `json:"discountType"`
	DiscountValue        decimal.Decimal      `json:"discountValue"`
	MinPurchase          decimal.Decimal      `json:"minPurchase"`
	MaxDiscount          decimal.Decimal      `json:"maxDiscount"`
	StartsAt             mo.Option[time.Time] `json:"startDate"`
	ExpiresAt            mo.Option[time.Time] `json:"endDate"`
	UsageLimit           int                  `json:"usageLimit"`
	Enabled              bool                 `json:"isActive"`
	Description          string               `json:"description"`
	ApplicableCategories []string             `json:"applicableCategories"`
	ApplicableProducts   []string             `json:"applicableProducts"`
}

// IsActiveAt reports whether the discount has not expired at now. A
// discount without an expiry date is always active.
func (d *Discount) IsActiveAt(now time.Time) bool {
	expiry, ok := d.ExpiresAt.Get()
	if !ok {
		return true
	}
	return expiry.After(now)
}

// UsableAt combines the enabled flag, start date and expiry.
func (d *Discount) UsableAt(now time.Time) bool {
	if !d.Enabled || !d.IsActiveAt(now) {
		return false
	}
	if start, ok := d.StartsAt.Get(); ok && start.After(now) {
		return false
	}
	return true
}

// Matches compares codes case-insensitively.
func (d *Discount) Matches(code string) bool {
	return strings.EqualFold(strings.TrimSpace(d.DiscountCode), strings.TrimSpace(code))
}

// Amount computes the discount for a subtotal and current shipping cost.
// Percentage discounts are capped by MaxDiscount when it is positive.
func (d *Discount) Amount(subtotal, shipping decimal.Decimal) decimal.Decimal {
	switch d.DiscountType {
	case DiscountTypePercentage:
		amount := subtotal.Mul(d.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
		if d.MaxDiscount.IsPositive() && amount.GreaterThan(d.MaxDiscount) {
			return d.MaxDiscount
		}
		return amount
	case DiscountTypeFixed:
		return d.DiscountValue
	case DiscountTypeShipping:
		return shipping
	}
	return decimal.Zero
}

// TaxRule represents a regional tax rate
type TaxRule struct {
	TaxID             string          `json:"taxId"`
	RegionCode        string          `json:"regionCode"`
	TaxName           string          `json:"taxName"`
	TaxRate           decimal.Decimal `json:"taxRate"`
	IsInclusive       bool            `json:"isInclusive"`
	AppliesToShipping bool            `json:"appliesToShipping"`
	IsActive          bool            `json:"isActive"`
}

// SEOEntry holds page metadata
type SEOEntry struct {
	PagePath           string `json:"pagePath"`
	PageTitle          string `json:"pageTitle"`
	MetaDescription    string `json:"metaDescription"`
	MetaKeywords       string `json:"metaKeywords"`
	OGTitle            string `json:"ogTitle"`
	OGDescription      string `json:"ogDescription"`
	OGImage            string `json:"ogImage"`
	CanonicalURL       string `json:"canonicalUrl"`
	Robots             string `json:"robots"`
	StructuredDataType string `json:"structuredDataType"`
}

var looseTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseLooseTime accepts the date spellings found in hand-edited tables.
// It returns the zero time when nothing matches.
func ParseLooseTime(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range looseTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ProductFilter holds the storefront filter criteria. Empty criteria are
// no-ops and all present criteria must match.
type ProductFilter struct {
	Query      string                     `json:"searchQuery,omitempty"`
	Categories []string                   `json:"categories,omitempty"`
	MinPrice   mo.Option[decimal.Decimal] `json:"minPrice"`
	MaxPrice   mo.Option[decimal.Decimal] `json:"maxPrice"`
	Brands     []string                   `json:"brands,omitempty"`
	Colors     []string                   `json:"colors,omitempty"`
	Sizes      []string                   `json:"sizes,omitempty"`
	InStock    bool                       `json:"inStock,omitempty"`
	Featured   bool                       `json:"isFeatured,omitempty"`
	Tags       []string                   `json:"tags,omitempty"`
}

// SortField names a product ordering
type SortField string

const (
	SortByName        SortField = "name"
	SortByPrice       SortField = "price"
	SortByCreatedDate SortField = "createdDate"
	SortByPopularity  SortField = "popularity"
)

// SortDirection is asc or desc
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ProductSort selects field and direction
type ProductSort struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// SearchResult is the answer to a free-text search
type SearchResult struct {
	Query       string     `json:"query"`
	Results     []*Product `json:"results"`
	Suggestions []*Product `json:"suggestions"`
}
