package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storefront-backend/database"
	"storefront-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
)

const productsCSV = `product_id,product_name,category_id,sku,description,price,stock_quantity,low_stock_threshold,is_available,is_featured,weight_kg,color_variants,size_variants,image_1,brand,tags,created_date
P001,Classic Tee,C001,TEE-1,Soft cotton tee,10.00,20,5,true,true,0.2,Red|Blue,S|M|L,/images/tee.jpg,Acme,cotton|summer,2024-01-10
P002,Denim Jacket,C002,JKT-1,Warm denim jacket,80.00,3,5,true,false,1.0,,M|L,/images/jacket.jpg,Northwind,denim|winter,2024-02-01
P003,Wool Scarf,C002,SCF-1,Knitted scarf,25.00,0,5,true,false,0.1,,,/images/scarf.jpg,Acme,winter,2023-12-01
P004,Hidden Item,C001,HID-1,Not for sale,5.00,10,2,false,false,0,,,,Acme,,2024-03-01
`

const categoriesCSV = `category_id,category_name,parent_category_id,display_order,is_active
C001,Clothing,,1,true
C002,Outerwear,C001,2,true
`

const shippingCSV = `shipping_id,shipping_name,base_price,price_per_kg,min_order_value,max_order_value,estimated_days,regions,is_active
SH001,Standard Shipping,5.00,0,0,0,3-5,,true
SH002,Free Shipping,0,0,50,0,5-7,,true
`

const discountsCSV = `discount_id,discount_code,discount_type,discount_value,min_purchase,max_discount,expiry_date,is_active
D001,SAVE10,percentage,10,20,5,,true
D002,OLDCODE,percentage,50,0,0,2020-01-01,true
`

const configCSV = `setting_key,setting_value,setting_type,description
store_name,Test Shop,text,
whatsapp_number,+1 (555) 123-4567,phone,
enable_tax,false,boolean,
`

const seoCSV = `page_path,page_title,meta_description
/,Home,Welcome
`

const ordersCSV = `user_id,order_id,order_date,customer_first_name,customer_last_name,customer_email,customer_phone,shipping_address,items_json,subtotal,tax,shipping,discount,total,shipping_method,payment_method,order_notes,status,admin_status,admin_comment,discount_code
user_1,ORD-1,2024-05-01T10:00:00.000Z,Jane,Doe,jane@example.com,+1 555 123 4567,"12 Market Street","[]",20,0,5,0,25,Standard Shipping,WhatsApp Order,,pending,pending,,
user_2,ORD-2,2024-05-03T10:00:00.000Z,John,Roe,,+1 555 987 6543,"1 Main Road","[]",10,0,5,0,15,Standard Shipping,WhatsApp Order,"Gift wrap",pending,completed,"Shipped today",
user_1,ORD-3,2024-05-02T10:00:00.000Z,Jane,Doe,jane@example.com,+1 555 123 4567,"12 Market Street","[]",80,0,0,5,75,Free Shipping,WhatsApp Order,,pending,in-progress,,FIVEOFF
`

const pastedOrder = `New order from the shop!
{
  "orderId": "ORD-1717243200000-ABC123",
  "userId": "user_9",
  "customer": {"firstName": "Ada", "lastName": "Lovelace", "email": "", "phone": "+44 20 7946 0958"},
  "shippingAddress": "1 Analytical Way, London",
  "items": [{"productId": "P001", "productName": "Classic Tee", "quantity": "2", "price": "10", "color": "Red", "size": "M"}],
  "subtotal": "20",
  "tax": 0,
  "shipping": 5,
  "discount": 0,
  "total": 25,
  "shippingMethod": "Standard Shipping",
  "paymentMethod": "WhatsApp Order"
}`

// failingStore accepts reads but fails every write the way a full disk would.
type failingStore struct {
	database.TableStore
}

func (s failingStore) WriteRaw(name, content string) (*database.WriteResult, error) {
	return nil, &database.WriteFailure{FileName: name, Content: content, Err: os.ErrPermission}
}

func (s failingStore) WriteTable(name string, table *database.Table) (*database.WriteResult, error) {
	content, err := table.Serialize()
	if err != nil {
		return nil, err
	}
	return s.WriteRaw(name, content)
}

type APITestSuite struct {
	suite.Suite
	dir    string
	store  database.TableStore
	router *gin.Engine
}

func (suite *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.T().Setenv("DISABLE_RATE_LIMITING", "true")

	suite.dir = suite.T().TempDir()
	files := map[string]string{
		database.FileProducts:   productsCSV,
		database.FileCategories: categoriesCSV,
		database.FileShipping:   shippingCSV,
		database.FileDiscounts:  discountsCSV,
		database.FileConfig:     configCSV,
		database.FileSEO:        seoCSV,
		database.FileOrders:     ordersCSV,
	}
	for name, content := range files {
		suite.Require().NoError(os.WriteFile(filepath.Join(suite.dir, name), []byte(content), 0o644))
	}

	store, err := database.NewFileStore(suite.dir, "", database.NewSanitizer("https://shop.example.com"))
	suite.Require().NoError(err)
	suite.store = store
	suite.router = suite.newRouter(store)
}

func (suite *APITestSuite) newRouter(store database.TableStore) *gin.Engine {
	kv, err := database.NewSQLiteKV(":memory:")
	suite.Require().NoError(err)
	suite.T().Cleanup(func() { kv.Close() })

	svc := NewServices(store, kv, time.Minute, false)
	return SetupRouter(svc, RouterConfig{
		DataDir:  suite.dir,
		Security: middleware.DefaultSecurityConfig(),
	})
}

// request sends a JSON body, or a text/plain body when given a string.
func (suite *APITestSuite) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
		contentType = "text/plain; charset=utf-8"
	default:
		data, err := json.Marshal(b)
		suite.Require().NoError(err)
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *APITestSuite) readFile(name string) string {
	data, err := os.ReadFile(filepath.Join(suite.dir, name))
	suite.Require().NoError(err)
	return string(data)
}

func (suite *APITestSuite) TestHealth() {
	w := suite.request(http.MethodGet, "/api/health", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("ok", gjson.Get(w.Body.String(), "status").String())
}

func (suite *APITestSuite) TestSaveCSV() {
	content := "setting_key,setting_value,setting_type,description\nstore_name,Renamed Shop,text,\n"
	w := suite.request(http.MethodPost, "/api/save-csv", gin.H{"fileName": "config.csv", "csvContent": content})

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	suite.True(gjson.Get(body, "success").Bool())
	suite.Equal("config.csv saved successfully", gjson.Get(body, "message").String())
	suite.NotEmpty(gjson.Get(body, "backup").String())
	suite.Equal(content, suite.readFile(database.FileConfig))

	w = suite.request(http.MethodGet, "/api/config", nil)
	suite.Equal("Renamed Shop", gjson.Get(w.Body.String(), "data.storeName").String())
}

func (suite *APITestSuite) TestSaveCSVRejectsBadInput() {
	w := suite.request(http.MethodPost, "/api/save-csv", gin.H{"fileName": "config.csv"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/save-csv", gin.H{"fileName": "../secrets.csv", "csvContent": "a,b\n"})
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *APITestSuite) TestSaveCSVSanitizesImageURLs() {
	content := "product_id,product_name,price,image_1\nP001,Classic Tee,10,http://localhost:3001/images/tee.jpg\n"
	w := suite.request(http.MethodPost, "/api/save-csv", gin.H{"fileName": "products.csv", "csvContent": content})

	suite.Equal(http.StatusOK, w.Code)
	suite.True(gjson.Get(w.Body.String(), "sanitized").Bool())
	suite.Contains(suite.readFile(database.FileProducts), "P001,Classic Tee,10,/images/tee.jpg")
}

func (suite *APITestSuite) TestGetOrdersByUser() {
	w := suite.request(http.MethodGet, "/api/orders", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/api/orders?userId=user_1", nil)
	suite.Equal(http.StatusOK, w.Code)
	orders := gjson.Parse(w.Body.String()).Array()
	suite.Require().Len(orders, 2)
	suite.Equal("ORD-1", orders[0].Get("order_id").String())
	suite.Equal("ORD-3", orders[1].Get("order_id").String())
	suite.Equal("FIVEOFF", orders[1].Get("discount_code").String())

	w = suite.request(http.MethodGet, "/api/orders?userId=nobody", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String())
}

func (suite *APITestSuite) TestUpdateOrderStatus() {
	before := strings.Split(suite.readFile(database.FileOrders), "\n")

	w := suite.request(http.MethodPost, "/api/update-order-status", gin.H{"orderId": "ORD-1", "status": "completed", "comment": "Shipped today"})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	after := strings.Split(suite.readFile(database.FileOrders), "\n")
	suite.Require().Len(after, len(before))
	suite.Equal(before[0], after[0])
	suite.Equal(before[2], after[2])
	suite.Equal(before[3], after[3])
	suite.True(strings.HasSuffix(after[1], `,pending,completed,"Shipped today",`), after[1])

	w = suite.request(http.MethodPost, "/api/update-order-status", gin.H{"orderId": "ORD-404", "status": "completed"})
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPost, "/api/update-order-status", gin.H{"orderId": "ORD-1", "status": "lost"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestDeleteOrder() {
	w := suite.request(http.MethodDelete, "/api/delete-order", gin.H{"orderId": "ORD-2"})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	content := suite.readFile(database.FileOrders)
	suite.NotContains(content, "ORD-2")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	suite.Require().Len(lines, 3)
	suite.Contains(lines[1], "ORD-1")
	suite.Contains(lines[2], "ORD-3")

	w = suite.request(http.MethodDelete, "/api/delete-order", gin.H{"orderId": "ORD-2"})
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestAddOrder() {
	order := gin.H{
		"orderId":         "ORD-9",
		"orderDate":       "2024-06-01T12:00:00.000Z",
		"userId":          "user_9",
		"customer":        gin.H{"firstName": "Ada", "lastName": "Lovelace", "phone": "+44 20 7946 0958"},
		"items":           []gin.H{},
		"subtotal":        10,
		"tax":             0,
		"shipping":        5,
		"discount":        0,
		"total":           15,
		"shippingAddress": gin.H{"address1": "1 Analytical Way"},
		"shippingMethod":  gin.H{"shippingName": "Standard Shipping"},
		"paymentMethod":   "WhatsApp Order",
		"status":          "pending",
	}
	w := suite.request(http.MethodPost, "/api/add-order", gin.H{"order": order})
	suite.Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodGet, "/api/orders?userId=user_9", nil)
	orders := gjson.Parse(w.Body.String()).Array()
	suite.Require().Len(orders, 1)
	suite.Equal("1 Analytical Way", orders[0].Get("shipping_address").String())
	suite.Equal("pending", orders[0].Get("admin_status").String())
}

func (suite *APITestSuite) TestParseAndImportOrder() {
	w := suite.request(http.MethodPost, "/api/orders/parse", pastedOrder)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	suite.Equal("ORD-1717243200000-ABC123", gjson.Get(body, "data.orderId").String())
	suite.Equal(int64(2), gjson.Get(body, "data.items.0.quantity").Int())
	suite.Equal("Ada", gjson.Get(body, "data.customerFirstName").String())

	w = suite.request(http.MethodPost, "/api/orders/parse", gin.H{"message": "not an order"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/admin/orders", gin.H{"message": pastedOrder})
	suite.Equal(http.StatusCreated, w.Code, w.Body.String())

	w = suite.request(http.MethodGet, "/api/orders?userId=user_9", nil)
	orders := gjson.Parse(w.Body.String()).Array()
	suite.Require().Len(orders, 1)
	suite.Equal("25", orders[0].Get("total").String())

	w = suite.request(http.MethodPost, "/api/admin/orders", pastedOrder)
	suite.Equal(http.StatusBadRequest, w.Code, "duplicate order ids are rejected")
}

func (suite *APITestSuite) TestListAdminOrders() {
	w := suite.request(http.MethodGet, "/api/admin/orders", nil)
	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Equal(int64(3), gjson.Get(body, "total").Int())
	suite.Equal([]string{"ORD-2", "ORD-3", "ORD-1"}, ids(gjson.Get(body, "data.#.orderId")))
	suite.Equal(int64(1), gjson.Get(body, "counts.completed").Int())
	suite.Equal(int64(0), gjson.Get(body, "counts.cancelled").Int())

	w = suite.request(http.MethodGet, "/api/admin/orders?adminStatus=completed", nil)
	suite.Equal([]string{"ORD-2"}, ids(gjson.Get(w.Body.String(), "data.#.orderId")))
}

func ids(r gjson.Result) []string {
	var out []string
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}

func (suite *APITestSuite) TestListProducts() {
	w := suite.request(http.MethodGet, "/api/products?category=C002&sort=price&dir=desc", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal([]string{"P002", "P003"}, ids(gjson.Get(w.Body.String(), "data.#.productId")))

	w = suite.request(http.MethodGet, "/api/products?inStock=true&maxPrice=50", nil)
	suite.Equal([]string{"P001"}, ids(gjson.Get(w.Body.String(), "data.#.productId")))
}

func (suite *APITestSuite) TestGetProduct() {
	w := suite.request(http.MethodGet, "/api/products/P002", nil)
	suite.Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	suite.Equal("low-stock", gjson.Get(body, "data.stockStatus").String())
	suite.Equal("Only 3 left!", gjson.Get(body, "data.stockLabel").String())
	suite.Equal("$80.00", gjson.Get(body, "price").String())
	suite.False(gjson.Get(body, "discountPercent").Exists(), "no compare-at price")

	w = suite.request(http.MethodGet, "/api/products/TEE-1?by=sku", nil)
	suite.Equal("P001", gjson.Get(w.Body.String(), "data.productId").String())

	w = suite.request(http.MethodGet, "/api/products/NOPE", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestSearchAndCategories() {
	w := suite.request(http.MethodGet, "/api/search?q=winter", nil)
	suite.Equal([]string{"P002", "P003"}, ids(gjson.Get(w.Body.String(), "data.results.#.productId")))

	w = suite.request(http.MethodGet, "/api/categories/C002/breadcrumb", nil)
	suite.Equal([]string{"C001", "C002"}, ids(gjson.Get(w.Body.String(), "data.#.categoryId")))

	w = suite.request(http.MethodGet, "/api/categories?topLevel=true", nil)
	suite.Equal([]string{"C001"}, ids(gjson.Get(w.Body.String(), "data.#.categoryId")))
}

func (suite *APITestSuite) TestShippingOptions() {
	w := suite.request(http.MethodGet, "/api/shipping?subtotal=20", nil)
	suite.Equal([]string{"SH001"}, ids(gjson.Get(w.Body.String(), "data.#.rule.shippingId")))
	suite.Equal("3-5 days", gjson.Get(w.Body.String(), "data.0.estimate").String())

	w = suite.request(http.MethodGet, "/api/shipping?subtotal=60", nil)
	suite.Equal([]string{"SH001", "SH002"}, ids(gjson.Get(w.Body.String(), "data.#.rule.shippingId")))

	w = suite.request(http.MethodGet, "/api/shipping?subtotal=lots", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestCartAndCheckoutFlow() {
	w := suite.request(http.MethodPost, "/api/carts", nil)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	cartID := gjson.Get(w.Body.String(), "data.id").String()
	suite.Require().NotEmpty(cartID)
	base := "/api/carts/" + cartID

	w = suite.request(http.MethodPost, base+"/items", gin.H{"productId": "P001", "quantity": 3, "selectedColor": "Red", "selectedSize": "M"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	w = suite.request(http.MethodPost, base+"/items", gin.H{"productId": "P001", "quantity": 1, "selectedColor": "Red", "selectedSize": "M"})
	body := w.Body.String()
	suite.Equal(int64(1), gjson.Get(body, "data.items.#").Int())
	suite.Equal(int64(4), gjson.Get(body, "data.items.0.quantity").Int())
	suite.Equal(40.0, gjson.Get(body, "data.subtotal").Float())

	w = suite.request(http.MethodPost, base+"/discount", gin.H{"code": "save10"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Equal(4.0, gjson.Get(w.Body.String(), "data.discount").Float())

	w = suite.request(http.MethodPost, base+"/discount", gin.H{"code": "OLDCODE"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPut, base+"/shipping", gin.H{"shippingId": "SH001"})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	body = w.Body.String()
	suite.Equal(5.0, gjson.Get(body, "data.shipping").Float())
	suite.Equal(41.0, gjson.Get(body, "data.total").Float())
	suite.Equal(int64(4), gjson.Get(body, "summary.itemCount").Int())

	form := gin.H{
		"firstName":      "Jane",
		"lastName":       "Doe",
		"email":          "jane@example.com",
		"phone":          "+1 555 123 4567",
		"address":        "12 Market Street, Springfield",
		"shippingMethod": "SH001",
		"clientKey":      "browser-1",
	}
	w = suite.request(http.MethodPost, base+"/checkout", form)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	body = w.Body.String()
	suite.True(strings.HasPrefix(gjson.Get(body, "data.relayUrl").String(), "https://wa.me/15551234567?text="))
	suite.True(gjson.Get(body, "data.cartCleared").Bool())
	userID := gjson.Get(body, "data.userId").String()
	suite.NotEmpty(userID)

	w = suite.request(http.MethodGet, base, nil)
	suite.Equal(int64(0), gjson.Get(w.Body.String(), "data.items.#").Int())

	w = suite.request(http.MethodGet, "/api/users/browser-1/id", nil)
	suite.Equal(userID, gjson.Get(w.Body.String(), "data.userId").String())

	w = suite.request(http.MethodGet, "/api/users/"+userID+"/local-orders", nil)
	suite.Equal(int64(1), gjson.Get(w.Body.String(), "count").Int())
}

func (suite *APITestSuite) TestCheckoutWithoutRelayChannel() {
	suite.Require().NoError(os.WriteFile(filepath.Join(suite.dir, database.FileConfig), []byte("setting_key,setting_value,setting_type,description\nstore_name,Test Shop,text,\n"), 0o644))
	suite.router = suite.newRouter(suite.store)

	w := suite.request(http.MethodPost, "/api/carts", nil)
	base := "/api/carts/" + gjson.Get(w.Body.String(), "data.id").String()
	w = suite.request(http.MethodPost, base+"/items", gin.H{"productId": "P001", "quantity": 1})
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodPost, base+"/checkout", gin.H{
		"firstName":      "Jane",
		"lastName":       "Doe",
		"phone":          "+1 555 123 4567",
		"address":        "12 Market Street, Springfield",
		"shippingMethod": "SH001",
		"clientKey":      "browser-2",
	})
	suite.Equal(http.StatusUnprocessableEntity, w.Code, w.Body.String())
	body := w.Body.String()
	suite.False(gjson.Get(body, "data.cartCleared").Bool())
	suite.Contains(gjson.Get(body, "data.payload").String(), "Classic Tee")

	w = suite.request(http.MethodGet, base, nil)
	suite.Equal(int64(1), gjson.Get(w.Body.String(), "data.items.#").Int())
}

func (suite *APITestSuite) TestCartErrors() {
	w := suite.request(http.MethodGet, "/api/carts/missing", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPost, "/api/carts", nil)
	base := "/api/carts/" + gjson.Get(w.Body.String(), "data.id").String()

	w = suite.request(http.MethodPost, base+"/items", gin.H{"productId": "P003", "quantity": 1})
	suite.Equal(http.StatusBadRequest, w.Code, "out of stock products cannot be added")

	w = suite.request(http.MethodPost, base+"/items", gin.H{"quantity": 1})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, base+"/checkout", gin.H{"firstName": "Jane"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *APITestSuite) TestRelayQRCode() {
	w := suite.request(http.MethodGet, "/api/relay/qr?url=https://wa.me/15551234567", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("image/png", w.Header().Get("Content-Type"))
	suite.True(bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = suite.request(http.MethodGet, "/api/relay/qr", nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	// A pretty-printed payload grows past the query length limit once encoded.
	payload := strings.Repeat("{\n  \"productName\": \"Classic Tee\"\n}", 30)
	link := "https://wa.me/15551234567?text=" + url.QueryEscape(payload)
	suite.Greater(len(link), 1000)

	w = suite.request(http.MethodGet, "/api/relay/qr?url="+url.QueryEscape(link), nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/relay/qr", map[string]interface{}{"url": link, "size": 320})
	suite.Equal(http.StatusOK, w.Code)
	suite.True(bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = suite.request(http.MethodPost, "/api/relay/qr", map[string]interface{}{"size": 320})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/relay/qr", map[string]interface{}{"url": "https://wa.me/1?text=" + strings.Repeat("x", 3000)})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(gjson.Get(w.Body.String(), "error").String(), "QR code holds at most")
}

func (suite *APITestSuite) TestAdminTableEditing() {
	w := suite.request(http.MethodGet, "/api/admin/tables/products", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(int64(4), gjson.Get(w.Body.String(), "count").Int())

	w = suite.request(http.MethodPost, "/api/admin/tables/products/new", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("P005", gjson.Get(w.Body.String(), "data.product_id").String())

	w = suite.request(http.MethodPut, "/api/admin/tables/products/rows", gin.H{
		"row":   gin.H{"productName": "Canvas Tote", "price": "12.50", "stockQuantity": "7"},
		"isNew": true,
	})
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.Equal("P005", gjson.Get(w.Body.String(), "data.product_id").String())

	w = suite.request(http.MethodGet, "/api/products/P005", nil)
	suite.Equal(http.StatusOK, w.Code, "writes invalidate the catalog cache")
	suite.Equal("Canvas Tote", gjson.Get(w.Body.String(), "data.productName").String())

	w = suite.request(http.MethodDelete, "/api/admin/tables/products/rows/P005", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.NotContains(suite.readFile(database.FileProducts), "Canvas Tote")

	w = suite.request(http.MethodDelete, "/api/admin/tables/products/rows/P005", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/admin/tables/passwords", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *APITestSuite) TestCategoryCycleRejected() {
	w := suite.request(http.MethodPut, "/api/admin/tables/categories/rows", gin.H{
		"row":   gin.H{"category_id": "C001", "parent_category_id": "C002"},
		"isNew": false,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(gjson.Get(w.Body.String(), "error").String(), "own ancestor")
}

func (suite *APITestSuite) TestFailedWriteOffersDownload() {
	suite.router = suite.newRouter(failingStore{TableStore: suite.store})

	w := suite.request(http.MethodPut, "/api/admin/tables/shipping/rows", gin.H{
		"row":   gin.H{"shipping_name": "Courier", "base_price": "9"},
		"isNew": true,
	})
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	body := w.Body.String()
	suite.False(gjson.Get(body, "success").Bool())
	suite.Equal("shipping.csv", gjson.Get(body, "fallback.fileName").String())
	suite.Contains(gjson.Get(body, "fallback.csvContent").String(), "SH003,Courier")
	suite.NotContains(suite.readFile(database.FileShipping), "Courier")

	w = suite.request(http.MethodPost, "/api/update-order-status", gin.H{"orderId": "ORD-1", "status": "completed"})
	suite.Equal(http.StatusServiceUnavailable, w.Code)
	suite.Contains(gjson.Get(w.Body.String(), "fallback.csvContent").String(), "ORD-1")
}

func (suite *APITestSuite) TestDashboard() {
	w := suite.request(http.MethodGet, "/api/admin/dashboard", nil)
	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	body := w.Body.String()
	suite.Equal(int64(4), gjson.Get(body, "data.products").Int())
	suite.Equal(int64(3), gjson.Get(body, "data.orders").Int())
	suite.Equal("Test Shop", gjson.Get(body, "data.storeName").String())
}

func (suite *APITestSuite) TestStaticDataFiles() {
	w := suite.request(http.MethodGet, "/data/products.csv", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal(dataCacheControl, w.Header().Get("Cache-Control"))
	suite.Contains(w.Body.String(), "Classic Tee")

	w = suite.request(http.MethodGet, "/api/nothing-here", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
