package services

import (
	"strconv"
	"strings"
	"time"

	"storefront-backend/database"
	"storefront-backend/internal/models"
	"storefront-backend/internal/utils"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// optionalPrice treats blank and non-positive prices as absent
func optionalPrice(row database.Row, names ...string) mo.Option[decimal.Decimal] {
	if row.First(names...) == "" {
		return mo.None[decimal.Decimal]()
	}
	d := row.Decimal(names...)
	if !d.IsPositive() {
		return mo.None[decimal.Decimal]()
	}
	return mo.Some(d)
}

// optionalTime treats blank and unparseable dates as absent
func optionalTime(row database.Row, names ...string) mo.Option[time.Time] {
	t := models.ParseLooseTime(row.First(names...))
	if t.IsZero() {
		return mo.None[time.Time]()
	}
	return mo.Some(t)
}

// boolOr reads a flag, falling back when the column is blank
func boolOr(row database.Row, fallback bool, names ...string) bool {
	if row.First(names...) == "" {
		return fallback
	}
	return row.Bool(names...)
}

// splitTags accepts pipe or comma separated tags
func splitTags(v string) []string {
	if strings.Contains(v, "|") {
		return database.SplitList(v)
	}
	return database.SplitList(strings.ReplaceAll(v, ",", "|"))
}

// ProductFromRow maps a products.csv row to a product. Five image slots
// are read (image_1 or image1 spellings); the thumbnail falls back to the
// first image.
func ProductFromRow(row database.Row) *models.Product {
	images := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		if img := row.First("image_" + strconv.Itoa(i)); img != "" {
			images = append(images, img)
		}
	}
	thumbnail := row.First("image_thumbnail", "thumbnail")
	if thumbnail == "" && len(images) > 0 {
		thumbnail = images[0]
	}

	return &models.Product{
		ProductID:         row.First("product_id", "id"),
		ProductName:       row.First("product_name", "name"),
		CategoryID:        row.First("category_id"),
		SubcategoryID:     row.First("subcategory_id"),
		SKU:               row.First("sku"),
		Description:       row.First("description"),
		ShortDescription:  row.First("short_description"),
		Price:             row.Decimal("price"),
		CompareAtPrice:    optionalPrice(row, "compare_at_price"),
		CostPrice:         optionalPrice(row, "cost_price"),
		StockQuantity:     lo.Max([]int{row.Int("stock_quantity"), 0}),
		LowStockThreshold: row.Int("low_stock_threshold"),
		IsAvailable:       row.Bool("is_available"),
		IsFeatured:        row.Bool("is_featured"),
		Weight:            row.Decimal("weight_kg", "weight"),
		Dimensions:        row.First("dimensions_cm", "dimensions"),
		ColorVariants:     row.List("color_variants", "variant_colors"),
		SizeVariants:      row.List("size_variants", "variant_sizes"),
		Images:            images,
		Thumbnail:         thumbnail,
		VideoURL:          row.First("video_url"),
		Brand:             row.First("brand"),
		Tags:              splitTags(row.First("tags")),
		MetaTitle:         row.First("meta_title"),
		MetaDescription:   row.First("meta_description"),
		CreatedDate:       row.First("created_date"),
		ModifiedDate:      row.First("modified_date"),
	}
}

// CategoryFromRow maps a categories.csv row. Categories are active unless
// the flag says otherwise; a missing slug is derived from the name.
func CategoryFromRow(row database.Row) *models.Category {
	name := row.First("category_name", "name")
	slug := row.First("category_slug", "slug")
	if slug == "" {
		slug = utils.Slugify(name)
	}

	return &models.Category{
		CategoryID:       row.First("category_id", "id"),
		CategoryName:     name,
		ParentCategoryID: row.First("parent_category_id", "parent_id"),
		CategorySlug:     slug,
		Description:      row.First("description"),
		ImagePath:        row.First("image_path", "image_url"),
		IconClass:        row.First("icon_class"),
		DisplayOrder:     row.Int("display_order"),
		IsActive:         boolOr(row, true, "is_active"),
		MetaTitle:        row.First("meta_title"),
		MetaDescription:  row.First("meta_description"),
	}
}

// parseDayRange reads "3-5" or "3" into a min/max pair
func parseDayRange(v string) (int, int) {
	parts := strings.SplitN(strings.TrimSpace(v), "-", 2)
	low, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	high := low
	if len(parts) == 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			high = n
		}
	}
	return low, high
}

// ShippingRuleFromRow maps a shipping.csv row. The cost column is
// shipping_cost or base_price; the delivery window is either the min/max
// columns or an estimated_days range such as "3-5".
func ShippingRuleFromRow(row database.Row) *models.ShippingRule {
	minDays, maxDays := row.Int("estimated_days_min"), row.Int("estimated_days_max")
	if minDays == 0 && maxDays == 0 {
		minDays, maxDays = parseDayRange(row.First("estimated_days"))
	}
	if maxDays < minDays {
		maxDays = minDays
	}

	return &models.ShippingRule{
		ShippingID:       row.First("shipping_id", "id"),
		ShippingName:     row.First("shipping_name", "name"),
		ShippingType:     row.First("shipping_type"),
		Description:      row.First("description"),
		ShippingCost:     row.Decimal("shipping_cost", "base_price"),
		PricePerKg:       row.Decimal("price_per_kg"),
		MinOrderValue:    row.Decimal("min_order_value"),
		MaxOrderValue:    row.Decimal("max_order_value"),
		EstimatedDaysMin: minDays,
		EstimatedDaysMax: maxDays,
		IsActive:         row.Bool("is_active"),
		Regions:          row.List("regions"),
	}
}

// DiscountFromRow maps a discounts.csv row. A blank is_active column means
// active; the expiry is end_date or expiry_date.
func DiscountFromRow(row database.Row) *models.Discount {
	return &models.Discount{
		DiscountID:           row.First("discount_id", "id"),
		DiscountCode:         row.First("discount_code", "code"),
		DiscountType:         models.DiscountType(strings.ToLower(row.First("discount_type", "type"))),
		DiscountValue:        row.Decimal("discount_value", "value"),
		MinPurchase:          row.Decimal("min_purchase", "min_order_value"),
		MaxDiscount:          row.Decimal("max_discount"),
		StartsAt:             optionalTime(row, "start_date"),
		ExpiresAt:            optionalTime(row, "end_date", "expiry_date"),
		UsageLimit:           row.Int("usage_limit"),
		Enabled:              boolOr(row, true, "is_active"),
		Description:          row.First("description"),
		ApplicableCategories: row.List("applicable_categories"),
		ApplicableProducts:   row.List("applicable_products"),
	}
}

// TaxRuleFromRow maps a taxes.csv row. Rules are active unless the flag
// says otherwise.
func TaxRuleFromRow(row database.Row) *models.TaxRule {
	return &models.TaxRule{
		TaxID:             row.First("tax_id", "id"),
		RegionCode:        row.First("region_code", "tax_region", "region"),
		TaxName:           row.First("tax_name", "name"),
		TaxRate:           row.Decimal("tax_rate", "rate"),
		IsInclusive:       row.Bool("is_inclusive"),
		AppliesToShipping: row.Bool("applies_to_shipping"),
		IsActive:          boolOr(row, true, "is_active"),
	}
}

// SEOEntryFromRow maps a seo.csv row
func SEOEntryFromRow(row database.Row) *models.SEOEntry {
	return &models.SEOEntry{
		PagePath:           row.First("page_path", "path"),
		PageTitle:          row.First("page_title", "title"),
		MetaDescription:    row.First("meta_description"),
		MetaKeywords:       row.First("meta_keywords"),
		OGTitle:            row.First("og_title"),
		OGDescription:      row.First("og_description"),
		OGImage:            row.First("og_image"),
		CanonicalURL:       row.First("canonical_url"),
		Robots:             row.First("robots"),
		StructuredDataType: row.First("structured_data_type"),
	}
}
