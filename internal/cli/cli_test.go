package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront-backend/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const productsCSV = `product_id,product_name,category_id,price,stock_quantity,is_available
P001,Classic Tee,C001,10.00,20,true
P002,Denim Jacket,C002,80.00,3,true
`

const ordersCSV = `user_id,order_id,order_date,customer_first_name,customer_last_name,customer_email,customer_phone,shipping_address,items_json,subtotal,tax,shipping,discount,total,shipping_method,payment_method,order_notes,status,admin_status,admin_comment,discount_code
user_1,ORD-1,2024-05-01T10:00:00.000Z,Jane,Doe,jane@example.com,+1 555 123 4567,"12 Market Street","[]",20,0,5,0,25,Standard Shipping,WhatsApp Order,,pending,pending,,
user_2,ORD-2,2024-05-03T10:00:00.000Z,John,Roe,,+1 555 987 6543,"1 Main Road","[]",10,0,5,0,15,Standard Shipping,WhatsApp Order,"Gift wrap",pending,completed,"Shipped today",
`

const payload = `Hi! Here is my order:
{
  "orderId": "ORD-1717243200000-ABC123",
  "userId": "user_9",
  "customer": {"firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com", "phone": "+44 20 7946 0958"},
  "shippingAddress": "1 Analytical Way, London",
  "items": [{"productId": "P001", "productName": "Classic Tee", "quantity": 2, "price": 10}],
  "subtotal": 20,
  "shipping": 5,
  "total": 25
}`

func setupDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, database.FileProducts), []byte(productsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, database.FileOrders), []byte(ordersCSV), 0o644))
	return dir
}

func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--data-dir", dir, "--fallback-dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "shopctl", cmd.Use)

	for _, path := range [][]string{
		{"tables", "list"}, {"tables", "show"}, {"tables", "delete"},
		{"orders", "list"}, {"orders", "status"}, {"orders", "delete"}, {"orders", "import"},
		{"relay", "link"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, setupDataDir(t), "", "--format", "xml", "tables", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestTablesList(t *testing.T) {
	out, err := run(t, setupDataDir(t), "", "--format", "json", "tables", "list")
	require.NoError(t, err)

	names := gjson.Get(out, "#.name").Array()
	assert.Len(t, names, 7)
	assert.Equal(t, "products.csv", gjson.Get(out, `#(name=="products").fileName`).String())
}

func TestTablesShow(t *testing.T) {
	dir := setupDataDir(t)

	out, err := run(t, dir, "", "tables", "show", "products")
	require.NoError(t, err)
	assert.Contains(t, out, "product_id")
	assert.Contains(t, out, "Denim Jacket")
	assert.Contains(t, out, "2 rows in products.csv")

	out, err = run(t, dir, "", "--format", "json", "tables", "show", "products")
	require.NoError(t, err)
	assert.Equal(t, "product_id", gjson.Get(out, "idColumn").String())
	assert.Equal(t, "P002", gjson.Get(out, "rows.1.product_id").String())

	_, err = run(t, dir, "", "tables", "show", "passwords")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestTablesDelete(t *testing.T) {
	dir := setupDataDir(t)

	out, err := run(t, dir, "", "tables", "delete", "products", "P001")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted P001 from products.csv")
	backups, err := filepath.Glob(filepath.Join(dir, "backups", "products.csv.*.bak"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
	assert.NotContains(t, readFile(t, dir, database.FileProducts), "Classic Tee")

	_, err = run(t, dir, "", "tables", "delete", "products", "P001")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestOrdersList(t *testing.T) {
	dir := setupDataDir(t)

	out, err := run(t, dir, "", "orders", "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "ORD-2"), strings.Index(out, "ORD-1"), "newest first")
	assert.Contains(t, out, "2 of 2 orders")
	assert.Contains(t, out, "completed=1")

	out, err = run(t, dir, "", "--format", "yaml", "orders", "list", "--status", "completed")
	require.NoError(t, err)

	var doc struct {
		Orders []map[string]interface{} `yaml:"orders"`
		Total  int                      `yaml:"total"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Orders, 1)
	assert.Equal(t, "ORD-2", doc.Orders[0]["orderId"])
	assert.Equal(t, 2, doc.Total)
}

func TestOrdersStatusAndDelete(t *testing.T) {
	dir := setupDataDir(t)

	out, err := run(t, dir, "", "orders", "status", "ORD-1", "in-progress", "--comment", "Packing")
	require.NoError(t, err)
	assert.Contains(t, out, "Order ORD-1 marked in-progress")
	assert.Contains(t, readFile(t, dir, database.FileOrders), `,pending,in-progress,"Packing",`)

	_, err = run(t, dir, "", "orders", "status", "ORD-1", "lost")
	assert.Error(t, err)

	out, err = run(t, dir, "", "--format", "json", "orders", "delete", "ORD-2")
	require.NoError(t, err)
	assert.Equal(t, "Order ORD-2 deleted", gjson.Get(out, "message").String())
	assert.NotContains(t, readFile(t, dir, database.FileOrders), "ORD-2")
}

func TestOrdersImport(t *testing.T) {
	dir := setupDataDir(t)

	out, err := run(t, dir, payload, "orders", "import")
	require.NoError(t, err)
	assert.Contains(t, out, "Order ORD-1717243200000-ABC123 added (Ada Lovelace, 1 items, total 25.00)")

	content := readFile(t, dir, database.FileOrders)
	assert.Contains(t, content, "user_9,ORD-1717243200000-ABC123,")

	file := filepath.Join(t.TempDir(), "paste.txt")
	require.NoError(t, os.WriteFile(file, []byte(payload), 0o644))
	_, err = run(t, dir, "", "orders", "import", file)
	assert.Error(t, err, "duplicate order ids are rejected")

	_, err = run(t, dir, "just saying hello", "orders", "import", "-")
	assert.Error(t, err)
}

func TestRelayLink(t *testing.T) {
	dir := setupDataDir(t)
	file := filepath.Join(dir, "payload.json")
	require.NoError(t, os.WriteFile(file, []byte(payload), 0o644))

	out, err := run(t, dir, "", "relay", "link", file, "--to", "+1 (555) 123-4567")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "https://wa.me/15551234567?text="), out)

	qr := filepath.Join(dir, "order.png")
	out, err = run(t, dir, "", "--format", "json", "relay", "link", file, "--channel", "email", "--to", "shop@example.com", "--qr", qr)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1717243200000-ABC123", gjson.Get(out, "orderId").String())
	assert.True(t, strings.HasPrefix(gjson.Get(out, "link").String(), "mailto:shop@example.com?subject=New%20Order%20%23ORD-1717243200000-ABC123&body="))
	png, err := os.ReadFile(qr)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = run(t, dir, "", "relay", "link", file, "--channel", "sms", "--to", "123")
	assert.Error(t, err)
}

func TestSaveFallback(t *testing.T) {
	dir := t.TempDir()

	failure := &database.WriteFailure{FileName: "orders.csv", Content: "a,b\n1,2\n", Err: os.ErrPermission}
	err := saveFallback(dir, failure)
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "intended content saved to")
	assert.Equal(t, "a,b\n1,2\n", readFile(t, dir, "orders.csv"))

	other := errors.New("boom")
	assert.Same(t, other, saveFallback(dir, other))
}
