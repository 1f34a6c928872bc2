package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"storefront-backend/database"

	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

const productsCSV = `product_id,product_name,category_id,sku,description,price,compare_at_price,stock_quantity,low_stock_threshold,is_available,is_featured,weight_kg,color_variants,size_variants,image_1,image_2,brand,tags,created_date
P001,Classic Tee,C001,TEE-1,Soft cotton tee,10.00,15.00,20,5,true,true,0.2,Red|Blue,S|M|L,/images/tee.jpg,/images/tee-back.jpg,Acme,cotton|summer,2024-01-10
P002,Denim Jacket,C002,JKT-1,Warm denim jacket,80.00,,3,5,true,false,1.0,,M|L,/images/jacket.jpg,,Northwind,denim|winter,2024-02-01
P003,Wool Scarf,C002,SCF-1,Knitted scarf,25.00,,0,5,true,false,0.1,,,/images/scarf.jpg,,Acme,winter,2023-12-01
P004,Hidden Item,C001,HID-1,Not for sale,5.00,,10,2,false,false,0,,,,,Acme,,2024-03-01
`

const categoriesCSV = `category_id,category_name,parent_category_id,display_order,is_active
C001,Clothing,,1,true
C002,Outerwear,C001,2,true
C003,Archive,,3,false
`

const shippingCSV = `shipping_id,shipping_name,base_price,price_per_kg,min_order_value,max_order_value,estimated_days,regions,is_active
SH001,Standard Shipping,5.00,0,0,0,3-5,,true
SH002,Free Shipping,0,0,50,0,5-7,,true
SH003,Express,15.00,2.00,0,0,1,US|CA,true
`

const discountsCSV = `discount_id,discount_code,discount_type,discount_value,min_purchase,max_discount,expiry_date,is_active
D001,SAVE10,percentage,10,20,5,,true
D002,FIVEOFF,fixed,5,0,0,,true
D003,FREESHIP,shipping,0,0,0,,true
D004,OLDCODE,percentage,50,0,0,2020-01-01,true
`

const taxesCSV = `tax_id,region_code,tax_name,tax_rate,is_inclusive,applies_to_shipping,is_active
T001,default,Sales Tax,10,false,false,true
T002,CA,GST,5,false,true,true
`

const configCSV = `setting_key,setting_value,setting_type,description
store_name,Test Shop,text,Shown in the header
whatsapp_number,+1 (555) 123-4567,phone,
enable_tax,false,boolean,
tax_rate,8,number,
`

const seoCSV = `page_path,page_title,meta_description
/,Home,Welcome
/products,All Products,Browse everything
`

// testEnv wires every service over a temporary data directory and an
// in-memory key-value store.
type testEnv struct {
	dir       string
	store     *database.FileStore
	kv        database.KVStore
	cache     *TableCache
	config    *ConfigService
	catalog   *CatalogService
	pricing   *PricingService
	carts     *CartService
	orders    *OrderService
	admin     *AdminOrderService
	editor    *EditorService
	dashboard *DashboardService
}

func defaultFixtures() map[string]string {
	return map[string]string{
		database.FileProducts:   productsCSV,
		database.FileCategories: categoriesCSV,
		database.FileShipping:   shippingCSV,
		database.FileDiscounts:  discountsCSV,
		database.FileTaxes:      taxesCSV,
		database.FileConfig:     configCSV,
		database.FileSEO:        seoCSV,
	}
}

// newTestEnv writes the default fixtures, replaced by any overrides. An
// empty override removes the file.
func newTestEnv(t *testing.T, overrides map[string]string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	files := defaultFixtures()
	for name, content := range overrides {
		files[name] = content
	}
	for name, content := range files {
		if content == "" {
			continue
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	store, err := database.NewFileStore(dir, "", database.NewSanitizer("https://shop.example.com"))
	require.NoError(t, err)

	kv, err := database.NewSQLiteKV(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	env := &testEnv{dir: dir, store: store, kv: kv}
	env.cache = NewTableCache(store, DefaultCacheTTL)
	env.config = NewConfigService(env.cache)
	env.catalog = NewCatalogService(env.cache)
	env.pricing = NewPricingService(env.catalog, env.config)
	env.pricing.now = func() time.Time { return fixedNow }
	env.carts = NewCartService(kv, env.catalog, env.pricing)
	env.carts.now = func() time.Time { return fixedNow }
	env.orders = NewOrderService(kv, env.carts, env.pricing, env.config, false)
	env.orders.now = func() time.Time { return fixedNow }
	env.admin = NewAdminOrderService(store)
	env.admin.now = func() time.Time { return fixedNow }
	env.editor = NewEditorService(store)
	env.editor.now = func() time.Time { return fixedNow }
	env.dashboard = NewDashboardService(env.catalog, env.admin, env.config)
	return env
}

func (e *testEnv) readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.dir, name))
	require.NoError(t, err)
	return string(data)
}
