package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"storefront-backend/database"
	"storefront-backend/internal/utils"

	"github.com/samber/lo"
)

// TableSpec describes how the admin editors handle one data file
type TableSpec struct {
	Name     string            `json:"name"`
	FileName string            `json:"fileName"`
	IDColumn string            `json:"idColumn"`
	Prefix   string            `json:"prefix,omitempty"`
	Columns  []string          `json:"columns"`
	Defaults map[string]string `json:"defaults,omitempty"`
}

var productImageColumns = []string{"image_1", "image_2", "image_3", "image_4", "image_5", "image_thumbnail"}

// TableSpecs lists the editable tables by name
var TableSpecs = map[string]TableSpec{
	"products": {
		Name:     "products",
		FileName: database.FileProducts,
		IDColumn: "product_id",
		Prefix:   "P",
		Columns: append(append([]string{
			"product_id", "product_name", "category_id", "subcategory_id", "sku", "description",
			"short_description", "price", "compare_at_price", "cost_price", "stock_quantity",
			"low_stock_threshold", "is_available", "is_featured", "weight_kg", "dimensions_cm",
			"color_variants", "size_variants",
		}, productImageColumns...),
			"video_url", "brand", "tags", "meta_title", "meta_description", "created_date", "modified_date"),
		Defaults: map[string]string{
			"price":               "0",
			"stock_quantity":      "0",
			"low_stock_threshold": "10",
			"is_available":        "true",
			"is_featured":         "false",
		},
	},
	"categories": {
		Name:     "categories",
		FileName: database.FileCategories,
		IDColumn: "category_id",
		Prefix:   "C",
		Columns:  []string{"category_id", "category_name", "parent_category_id", "image_url", "description", "is_active"},
		Defaults: map[string]string{"is_active": "true"},
	},
	"shipping": {
		Name:     "shipping",
		FileName: database.FileShipping,
		IDColumn: "shipping_id",
		Prefix:   "SH",
		Columns: []string{
			"shipping_id", "shipping_name", "description", "base_price", "price_per_kg",
			"min_order_value", "max_order_value", "estimated_days", "regions", "is_active",
		},
		Defaults: map[string]string{
			"base_price":      "0",
			"price_per_kg":    "0",
			"min_order_value": "0",
			"max_order_value": "0",
			"is_active":       "true",
		},
	},
	"discounts": {
		Name:     "discounts",
		FileName: database.FileDiscounts,
		IDColumn: "discount_id",
		Prefix:   "D",
		Columns: []string{
			"discount_id", "discount_code", "description", "discount_type", "discount_value",
			"min_purchase", "max_discount", "start_date", "expiry_date", "usage_limit", "is_active",
		},
		Defaults: map[string]string{
			"discount_type":  "percentage",
			"discount_value": "0",
			"min_purchase":   "0",
			"max_discount":   "0",
			"is_active":      "true",
		},
	},
	"taxes": {
		Name:     "taxes",
		FileName: database.FileTaxes,
		IDColumn: "tax_id",
		Prefix:   "T",
		Columns:  []string{"tax_id", "region_code", "tax_name", "tax_rate", "is_inclusive", "applies_to_shipping", "is_active"},
		Defaults: map[string]string{
			"tax_rate":            "0",
			"is_inclusive":        "false",
			"applies_to_shipping": "false",
			"is_active":           "true",
		},
	},
	"seo": {
		Name:     "seo",
		FileName: database.FileSEO,
		IDColumn: "page_path",
		Columns: []string{
			"page_path", "page_title", "meta_description", "meta_keywords", "og_title",
			"og_description", "og_image", "canonical_url", "robots",
		},
		Defaults: map[string]string{"robots": "index, follow"},
	},
	"config": {
		Name:     "config",
		FileName: database.FileConfig,
		IDColumn: "setting_key",
		Columns:  []string{"setting_key", "setting_value", "setting_type", "description"},
		Defaults: map[string]string{"setting_type": "text"},
	},
}

// LookupTable resolves a table by name or file name
func LookupTable(name string) (TableSpec, error) {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".csv")
	spec, ok := TableSpecs[key]
	if !ok {
		return TableSpec{}, notFound("table", name)
	}
	return spec, nil
}

// TableNames returns the editable table names in sorted order
func TableNames() []string {
	names := lo.Keys(TableSpecs)
	sort.Strings(names)
	return names
}

// EditorService implements the admin record editors. Every mutation
// rewrites the whole file and the last writer wins.
type EditorService struct {
	store database.TableStore
	now   func() time.Time
}

// NewEditorService creates a new editor service
func NewEditorService(store database.TableStore) *EditorService {
	return &EditorService{store: store, now: time.Now}
}

// Table reads a table fresh from the store. A missing file yields the
// table's default header line.
func (s *EditorService) Table(name string) (*database.Table, TableSpec, error) {
	spec, err := LookupTable(name)
	if err != nil {
		return nil, spec, err
	}
	table, err := s.store.ReadTable(spec.FileName)
	if err != nil {
		if errors.Is(err, ErrUnauthorizedFile) {
			return nil, spec, err
		}
		return nil, spec, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if len(table.Headers) == 0 {
		table.Headers = append([]string(nil), spec.Columns...)
	}
	return table, spec, nil
}

func (s *EditorService) today() string {
	return s.now().Format("2006-01-02")
}

func ids(table *database.Table, column string) []string {
	key := database.CanonicalColumn(column)
	return lo.Map(table.Rows, func(r database.Row, _ int) string { return r[key] })
}

// NewRow seeds a row with the next sequential id and the table defaults.
func (s *EditorService) NewRow(name string) (database.Row, error) {
	table, spec, err := s.Table(name)
	if err != nil {
		return nil, err
	}

	row := make(database.Row, len(spec.Columns))
	for _, col := range spec.Columns {
		row[col] = spec.Defaults[col]
	}
	if spec.Prefix != "" {
		row[spec.IDColumn] = utils.NextSequentialID(spec.Prefix, ids(table, spec.IDColumn))
	}
	if spec.Name == "products" {
		row["created_date"] = s.today()
		row["modified_date"] = s.today()
	}
	return row, nil
}

// Save appends a new row or replaces an existing one by id, then writes the
// whole table back.
func (s *EditorService) Save(name string, input map[string]string, isNew bool) (database.Row, *database.WriteResult, error) {
	table, spec, err := s.Table(name)
	if err != nil {
		return nil, nil, err
	}

	row := database.NormalizeRow(input)
	for k, v := range row {
		row[k] = strings.TrimSpace(v)
	}
	idKey := database.CanonicalColumn(spec.IDColumn)
	id := row[idKey]
	if id == "" {
		if !isNew || spec.Prefix == "" {
			return nil, nil, validationError("%s is required", spec.IDColumn)
		}
		id = utils.NextSequentialID(spec.Prefix, ids(table, spec.IDColumn))
		row[idKey] = id
	}

	idx := table.IndexOf(idKey, id)
	if isNew {
		if idx >= 0 {
			return nil, nil, validationError("%s %s already exists", spec.IDColumn, id)
		}
		for col, v := range spec.Defaults {
			if _, ok := row[col]; !ok {
				row[col] = v
			}
		}
		if spec.Name == "products" && row["created_date"] == "" {
			row["created_date"] = s.today()
		}
	} else if idx < 0 {
		return nil, nil, notFound(spec.Name+" row", id)
	}
	if spec.Name == "products" {
		row["modified_date"] = s.today()
	}

	next := table.Clone()
	if isNew {
		next.Rows = append(next.Rows, row)
	} else {
		merged := next.Rows[idx]
		for k, v := range row {
			merged[k] = v
		}
		row = merged
	}

	if spec.Name == "categories" {
		if err := checkCategoryCycle(next, id); err != nil {
			return nil, nil, err
		}
	}

	extra := lo.Filter(lo.Keys(row), func(k string, _ int) bool { return !lo.Contains(next.Columns(), k) })
	sort.Strings(extra)
	next.EnsureColumns(extra...)

	result, err := s.store.WriteTable(spec.FileName, next)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("✅ Saved %s row %s", spec.Name, id)
	return row, result, nil
}

// checkCategoryCycle rejects a parent chain that leads back to categoryID
func checkCategoryCycle(table *database.Table, categoryID string) error {
	parents := make(map[string]string, len(table.Rows))
	for _, r := range table.Rows {
		parents[r.First("category_id")] = r.First("parent_category_id")
	}

	seen := map[string]bool{categoryID: true}
	for current := parents[categoryID]; current != ""; current = parents[current] {
		if seen[current] {
			return validationError("category %s cannot be its own ancestor", categoryID)
		}
		seen[current] = true
	}
	return nil
}

// Delete removes the row with the given id and rewrites the table
func (s *EditorService) Delete(name, id string) (*database.WriteResult, error) {
	table, spec, err := s.Table(name)
	if err != nil {
		return nil, err
	}

	idx := table.IndexOf(spec.IDColumn, id)
	if idx < 0 {
		return nil, notFound(spec.Name+" row", id)
	}
	next := table.Clone()
	next.Rows = append(next.Rows[:idx], next.Rows[idx+1:]...)

	result, err := s.store.WriteTable(spec.FileName, next)
	if err != nil {
		return nil, err
	}
	log.Printf("🗑️ Deleted %s row %s", spec.Name, id)
	return result, nil
}

// SaveCSV replaces a whitelisted data file with raw content
func (s *EditorService) SaveCSV(fileName, content string) (*database.WriteResult, error) {
	if strings.TrimSpace(fileName) == "" || content == "" {
		return nil, validationError("fileName and csvContent are required")
	}
	return s.store.WriteRaw(fileName, content)
}
