package services

import (
	"sort"
	"strings"

	"storefront-backend/database"
	"storefront-backend/internal/models"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CatalogService provides read access to the catalog tables
type CatalogService struct {
	cache *TableCache
}

// NewCatalogService creates a new catalog service
func NewCatalogService(cache *TableCache) *CatalogService {
	return &CatalogService{cache: cache}
}

// loadRows maps every row of a table, skipping rows without an id
func loadRows[T any](c *TableCache, name string, mapRow func(database.Row) *T, id func(*T) string) ([]*T, error) {
	table, err := c.Load(name)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(table.Rows))
	for _, row := range table.Rows {
		item := mapRow(row)
		if id(item) == "" {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Products returns every product in table order
func (s *CatalogService) Products() ([]*models.Product, error) {
	return loadRows(s.cache, database.FileProducts, ProductFromRow, func(p *models.Product) string { return p.ProductID })
}

// Product finds a product by id
func (s *CatalogService) Product(productID string) (*models.Product, error) {
	products, err := s.Products()
	if err != nil {
		return nil, err
	}
	product, ok := lo.Find(products, func(p *models.Product) bool { return p.ProductID == productID })
	if !ok {
		return nil, notFound("product", productID)
	}
	return product, nil
}

// ProductBySKU finds a product by its SKU
func (s *CatalogService) ProductBySKU(sku string) (*models.Product, error) {
	products, err := s.Products()
	if err != nil {
		return nil, err
	}
	product, ok := lo.Find(products, func(p *models.Product) bool { return p.SKU != "" && p.SKU == sku })
	if !ok {
		return nil, notFound("product sku", sku)
	}
	return product, nil
}

// ProductView returns a product with its stock label and related products
func (s *CatalogService) ProductView(productID string) (*models.ProductView, error) {
	product, err := s.Product(productID)
	if err != nil {
		return nil, err
	}
	products, err := s.Products()
	if err != nil {
		return nil, err
	}
	view := models.NewProductView(product)
	view.Related = RelatedProducts(products, product, 4)
	return &view, nil
}

// FeaturedProducts returns available featured products; limit 0 means all
func (s *CatalogService) FeaturedProducts(limit int) ([]*models.Product, error) {
	products, err := s.Products()
	if err != nil {
		return nil, err
	}
	featured := lo.Filter(products, func(p *models.Product, _ int) bool { return p.IsFeatured && p.IsAvailable })
	if limit > 0 && len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

// RelatedProducts returns available products sharing the category, the
// brand or a tag with p, excluding p itself.
func RelatedProducts(products []*models.Product, p *models.Product, limit int) []*models.Product {
	related := lo.Filter(products, func(other *models.Product, _ int) bool {
		if other.ProductID == p.ProductID || !other.IsAvailable {
			return false
		}
		return other.CategoryID == p.CategoryID ||
			(p.Brand != "" && other.Brand == p.Brand) ||
			len(lo.Intersect(other.Tags, p.Tags)) > 0
	})
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related
}

// ListProducts filters then sorts the catalog
func (s *CatalogService) ListProducts(filter models.ProductFilter, order models.ProductSort) ([]*models.Product, error) {
	products, err := s.Products()
	if err != nil {
		return nil, err
	}
	return SortProducts(FilterProducts(products, filter), order), nil
}

// FilterProducts applies every present criterion; all must match.
func FilterProducts(products []*models.Product, f models.ProductFilter) []*models.Product {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.Query))

	return lo.Filter(products, func(p *models.Product, _ int) bool {
		if query != "" {
			matches := strings.Contains(fold.String(p.ProductName), query) ||
				strings.Contains(fold.String(p.Description), query) ||
				lo.SomeBy(p.Tags, func(tag string) bool { return strings.Contains(fold.String(tag), query) })
			if !matches {
				return false
			}
		}
		if len(f.Categories) > 0 && !lo.Contains(f.Categories, p.CategoryID) && !lo.Contains(f.Categories, p.SubcategoryID) {
			return false
		}
		if lower, ok := f.MinPrice.Get(); ok && p.Price.LessThan(lower) {
			return false
		}
		if upper, ok := f.MaxPrice.Get(); ok && p.Price.GreaterThan(upper) {
			return false
		}
		if len(f.Brands) > 0 && !lo.Contains(f.Brands, p.Brand) {
			return false
		}
		if len(f.Colors) > 0 && len(lo.Intersect(p.ColorVariants, f.Colors)) == 0 {
			return false
		}
		if len(f.Sizes) > 0 && len(lo.Intersect(p.SizeVariants, f.Sizes)) == 0 {
			return false
		}
		if f.InStock && !p.InStock() {
			return false
		}
		if f.Featured && !p.IsFeatured {
			return false
		}
		if len(f.Tags) > 0 && len(lo.Intersect(p.Tags, f.Tags)) == 0 {
			return false
		}
		return true
	})
}

// SortProducts returns a sorted copy. Names compare with English collation,
// popularity puts featured products first. Unknown fields keep the input
// order.
func SortProducts(products []*models.Product, order models.ProductSort) []*models.Product {
	sorted := append([]*models.Product(nil), products...)

	var compare func(a, b *models.Product) int
	switch order.Field {
	case models.SortByPrice:
		compare = func(a, b *models.Product) int { return a.Price.Cmp(b.Price) }
	case models.SortByName:
		collator := collate.New(language.English)
		compare = func(a, b *models.Product) int { return collator.CompareString(a.ProductName, b.ProductName) }
	case models.SortByCreatedDate:
		compare = func(a, b *models.Product) int { return a.CreatedAt().Compare(b.CreatedAt()) }
	case models.SortByPopularity:
		compare = func(a, b *models.Product) int { return boolRank(b.IsFeatured) - boolRank(a.IsFeatured) }
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		c := compare(sorted[i], sorted[j])
		if order.Direction == models.SortDesc {
			return c > 0
		}
		return c < 0
	})
	return sorted
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Search matches available products on name, description, brand, tags or
// SKU. The first five results double as suggestions.
func (s *CatalogService) Search(query string) (*models.SearchResult, error) {
	result := &models.SearchResult{Query: query, Results: []*models.Product{}, Suggestions: []*models.Product{}}

	fold := cases.Fold()
	term := fold.String(strings.TrimSpace(query))
	if term == "" {
		return result, nil
	}

	products, err := s.Products()
	if err != nil {
		return nil, err
	}

	result.Results = lo.Filter(products, func(p *models.Product, _ int) bool {
		if !p.IsAvailable {
			return false
		}
		return strings.Contains(fold.String(p.ProductName), term) ||
			strings.Contains(fold.String(p.Description), term) ||
			strings.Contains(fold.String(p.Brand), term) ||
			strings.Contains(fold.String(p.SKU), term) ||
			lo.SomeBy(p.Tags, func(tag string) bool { return strings.Contains(fold.String(tag), term) })
	})
	result.Suggestions = lo.Slice(result.Results, 0, 5)
	return result, nil
}

// Categories returns every category in table order
func (s *CatalogService) Categories() ([]*models.Category, error) {
	return loadRows(s.cache, database.FileCategories, CategoryFromRow, func(c *models.Category) string { return c.CategoryID })
}

// ActiveCategories returns active categories ordered by display order, then name
func (s *CatalogService) ActiveCategories() ([]*models.Category, error) {
	categories, err := s.Categories()
	if err != nil {
		return nil, err
	}
	active := lo.Filter(categories, func(c *models.Category, _ int) bool { return c.IsActive })
	sort.SliceStable(active, func(i, j int) bool {
		if active[i].DisplayOrder != active[j].DisplayOrder {
			return active[i].DisplayOrder < active[j].DisplayOrder
		}
		return active[i].CategoryName < active[j].CategoryName
	})
	return active, nil
}

// TopLevelCategories returns active categories without a parent
func (s *CatalogService) TopLevelCategories() ([]*models.Category, error) {
	active, err := s.ActiveCategories()
	if err != nil {
		return nil, err
	}
	return lo.Filter(active, func(c *models.Category, _ int) bool { return c.ParentCategoryID == "" }), nil
}

// Breadcrumb returns the path from the root down to the category. A
// dangling parent ends the walk, and so does a category seen twice.
func (s *CatalogService) Breadcrumb(categoryID string) ([]*models.Category, error) {
	categories, err := s.Categories()
	if err != nil {
		return nil, err
	}
	return Breadcrumb(categories, categoryID)
}

// Breadcrumb walks parent links from categoryID to the root.
func Breadcrumb(categories []*models.Category, categoryID string) ([]*models.Category, error) {
	byID := lo.KeyBy(categories, func(c *models.Category) string { return c.CategoryID })

	current, ok := byID[categoryID]
	if !ok {
		return nil, notFound("category", categoryID)
	}

	seen := map[string]bool{}
	var path []*models.Category
	for current != nil && !seen[current.CategoryID] {
		seen[current.CategoryID] = true
		path = append(path, current)
		current = byID[current.ParentCategoryID]
	}
	return lo.Reverse(path), nil
}

// ShippingRules returns every shipping rule
func (s *CatalogService) ShippingRules() ([]*models.ShippingRule, error) {
	return loadRows(s.cache, database.FileShipping, ShippingRuleFromRow, func(r *models.ShippingRule) string { return r.ShippingID })
}

// Discounts returns every discount
func (s *CatalogService) Discounts() ([]*models.Discount, error) {
	return loadRows(s.cache, database.FileDiscounts, DiscountFromRow, func(d *models.Discount) string { return d.DiscountCode })
}

// TaxRules returns every tax rule
func (s *CatalogService) TaxRules() ([]*models.TaxRule, error) {
	return loadRows(s.cache, database.FileTaxes, TaxRuleFromRow, func(t *models.TaxRule) string {
		return t.TaxID + t.RegionCode
	})
}

// SEOEntries returns every SEO entry
func (s *CatalogService) SEOEntries() ([]*models.SEOEntry, error) {
	return loadRows(s.cache, database.FileSEO, SEOEntryFromRow, func(e *models.SEOEntry) string { return e.PagePath })
}

// SEOFor returns the metadata for a page path, ignoring a trailing slash
func (s *CatalogService) SEOFor(path string) (*models.SEOEntry, error) {
	entries, err := s.SEOEntries()
	if err != nil {
		return nil, err
	}
	normalize := func(p string) string {
		p = strings.TrimSpace(p)
		if len(p) > 1 {
			p = strings.TrimSuffix(p, "/")
		}
		return p
	}
	want := normalize(path)
	entry, ok := lo.Find(entries, func(e *models.SEOEntry) bool { return normalize(e.PagePath) == want })
	if !ok {
		return nil, notFound("seo entry", path)
	}
	return entry, nil
}
