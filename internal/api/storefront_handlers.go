package api

import (
	"net/http"
	"strconv"
	"strings"

	"storefront-backend/database"
	"storefront-backend/internal/models"
	"storefront-backend/internal/services"
	"storefront-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
)

// StorefrontHandlers serves the read-only catalog endpoints
type StorefrontHandlers struct {
	catalog *services.CatalogService
	pricing *services.PricingService
	config  *services.ConfigService
}

// NewStorefrontHandlers creates a new storefront handlers instance
func NewStorefrontHandlers(catalog *services.CatalogService, pricing *services.PricingService, config *services.ConfigService) *StorefrontHandlers {
	return &StorefrontHandlers{catalog: catalog, pricing: pricing, config: config}
}

// GetConfig returns the typed store configuration. ?raw=true returns the
// setting_key to setting_value map instead.
func (h *StorefrontHandlers) GetConfig(c *gin.Context) {
	if database.ParseBool(c.Query("raw")) {
		raw, err := h.config.Raw()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": raw})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.config.StoreConfig(),
	})
}

// queryList collects repeated and comma separated values of a parameter.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryDecimal(c *gin.Context, key string) mo.Option[decimal.Decimal] {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return mo.None[decimal.Decimal]()
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return mo.None[decimal.Decimal]()
	}
	return mo.Some(d)
}

// productFilterFromQuery reads the storefront filter and sort parameters.
func productFilterFromQuery(c *gin.Context) (models.ProductFilter, models.ProductSort) {
	filter := models.ProductFilter{
		Query:      c.Query("q"),
		Categories: queryList(c, "category"),
		MinPrice:   queryDecimal(c, "minPrice"),
		MaxPrice:   queryDecimal(c, "maxPrice"),
		Brands:     queryList(c, "brand"),
		Colors:     queryList(c, "color"),
		Sizes:      queryList(c, "size"),
		InStock:    database.ParseBool(c.Query("inStock")),
		Featured:   database.ParseBool(c.Query("featured")),
		Tags:       queryList(c, "tag"),
	}

	order := models.ProductSort{
		Field:     models.SortField(c.DefaultQuery("sort", string(models.SortByName))),
		Direction: models.SortDirection(c.DefaultQuery("dir", string(models.SortAsc))),
	}
	return filter, order
}

// ListProducts returns the filtered and sorted catalog
func (h *StorefrontHandlers) ListProducts(c *gin.Context) {
	filter, order := productFilterFromQuery(c)

	products, err := h.catalog.ListProducts(filter, order)
	if err != nil {
		respondError(c, err)
		return
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && len(products) > limit {
		products = products[:limit]
	}

	c.JSON(http.StatusOK, models.ListResponse{
		Success: true,
		Data:    products,
		Count:   len(products),
	})
}

// FeaturedProducts returns available featured products
func (h *StorefrontHandlers) FeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))

	products, err := h.catalog.FeaturedProducts(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ListResponse{
		Success: true,
		Data:    products,
		Count:   len(products),
	})
}

// GetProduct returns one product with its stock label and related products.
// ?by=sku looks the product up by SKU instead of id.
func (h *StorefrontHandlers) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if c.Query("by") == "sku" {
		product, err := h.catalog.ProductBySKU(id)
		if err != nil {
			respondError(c, err)
			return
		}
		id = product.ProductID
	}

	view, err := h.catalog.ProductView(id)
	if err != nil {
		respondError(c, err)
		return
	}

	cfg := h.config.StoreConfig()
	response := gin.H{
		"success": true,
		"data":    view,
		"price":   utils.FormatPrice(view.Price, cfg.CurrencySymbol),
	}
	if compareAt, ok := view.CompareAtPrice.Get(); ok && compareAt.GreaterThan(view.Price) {
		response["compareAtPrice"] = utils.FormatPrice(compareAt, cfg.CurrencySymbol)
		response["discountPercent"] = utils.DiscountPercentage(compareAt, view.Price)
	}
	c.JSON(http.StatusOK, response)
}

// Search runs a free-text product search
func (h *StorefrontHandlers) Search(c *gin.Context) {
	result, err := h.catalog.Search(c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ListCategories returns active categories; ?topLevel=true drops children
func (h *StorefrontHandlers) ListCategories(c *gin.Context) {
	var (
		categories []*models.Category
		err        error
	)
	if database.ParseBool(c.Query("topLevel")) {
		categories, err = h.catalog.TopLevelCategories()
	} else {
		categories, err = h.catalog.ActiveCategories()
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ListResponse{
		Success: true,
		Data:    categories,
		Count:   len(categories),
	})
}

// Breadcrumb returns the category path from the root
func (h *StorefrontHandlers) Breadcrumb(c *gin.Context) {
	path, err := h.catalog.Breadcrumb(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    path,
	})
}

// ShippingOptions lists the shipping rules available for a subtotal
func (h *StorefrontHandlers) ShippingOptions(c *gin.Context) {
	subtotal := decimal.Zero
	if v := c.Query("subtotal"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Invalid subtotal",
			})
			return
		}
		subtotal = d
	}

	rules, err := h.pricing.AvailableShipping(subtotal, c.Query("region"))
	if err != nil {
		respondError(c, err)
		return
	}

	options := lo.Map(rules, func(r *models.ShippingRule, _ int) gin.H {
		return gin.H{
			"rule":     r,
			"estimate": utils.ShippingEstimate(r.EstimatedDaysMin, r.EstimatedDaysMax),
		}
	})

	c.JSON(http.StatusOK, models.ListResponse{
		Success: true,
		Data:    options,
		Count:   len(options),
	})
}

// GetSEO returns the metadata for a page path
func (h *StorefrontHandlers) GetSEO(c *gin.Context) {
	entry, err := h.catalog.SEOFor(c.DefaultQuery("path", "/"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}
