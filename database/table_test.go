package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"productId", "product_id"},
		{"product_id", "product_id"},
		{"Product Id", "product_id"},
		{"image1", "image_1"},
		{"image_1", "image_1"},
		{"imageThumbnail", "image_thumbnail"},
		{"imageURL", "image_url"},
		{"  setting_key ", "setting_key"},
		{"\ufeffsetting_key", "setting_key"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalColumn(tt.in))
		})
	}
}

func TestParseTableRoundTrip(t *testing.T) {
	text := "product_id,product_name,description,price\n" +
		"P001,Widget,\"Small, useful\",10\n" +
		"P002,\"Gadget \"\"Pro\"\"\",Plain,20.50\n"

	table, err := ParseTable(text)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, []string{"product_id", "product_name", "description", "price"}, table.Headers)
	assert.Equal(t, "Small, useful", table.Rows[0]["description"])
	assert.Equal(t, `Gadget "Pro"`, table.Rows[1]["product_name"])

	out, err := table.Serialize()
	require.NoError(t, err)
	assert.Equal(t, text, out)

	again, err := ParseTable(out)
	require.NoError(t, err)
	assert.Equal(t, table.Headers, again.Headers)
	assert.Equal(t, table.Rows, again.Rows)
}

func TestParseTableAliasesAndPadding(t *testing.T) {
	text := "productId,productName,stockQuantity\r\n\r\nP001,Widget\r\n   \r\nP002,Gadget,7\r\n"

	table, err := ParseTable(text)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, "P001", first.Get("productId"))
	assert.Equal(t, "P001", first.Get("product_id"))
	assert.Equal(t, "", first.Get("stock_quantity"))
	assert.True(t, first.Has("stockQuantity"))
	assert.Equal(t, 7, table.Rows[1].Int("stock_quantity"))

	out, err := table.Serialize()
	require.NoError(t, err)
	assert.Contains(t, out, "productId,productName,stockQuantity\n")
}

func TestParseTableEmpty(t *testing.T) {
	for _, text := range []string{"", "   \n", "\ufeff"} {
		table, err := ParseTable(text)
		require.NoError(t, err)
		assert.Empty(t, table.Rows)
	}
}

func TestRowHelpers(t *testing.T) {
	row := NormalizeRow(map[string]string{
		"colorVariants":  " Red | Blue ||  ",
		"color_variants": "",
		"is_available":   "TRUE",
		"price":          "$12.50",
		"stock_quantity": "5.0",
		"thumbnail":      "",
		"imageThumbnail": "/images/t.png",
	})

	assert.Equal(t, []string{"Red", "Blue"}, row.List("color_variants"))
	assert.True(t, row.Bool("isAvailable"))
	assert.Equal(t, "12.5", row.Decimal("price").String())
	assert.Equal(t, 5, row.Int("stockQuantity"))
	assert.Equal(t, "/images/t.png", row.First("thumbnail", "image_thumbnail"))
	assert.Empty(t, SplitList(""))
	assert.True(t, ParseDecimal("abc").IsZero())
}

func TestTableHelpers(t *testing.T) {
	table := NewTable("category_id", "category_name")
	table.Rows = append(table.Rows, Row{"category_id": "C001", "category_name": "Shoes"})

	assert.Equal(t, 0, table.IndexOf("categoryId", "C001"))
	assert.Equal(t, -1, table.IndexOf("category_id", "C999"))

	table.EnsureColumns("categoryName", "is_active")
	assert.Equal(t, []string{"category_id", "category_name", "is_active"}, table.Headers)

	clone := table.Clone()
	clone.Rows[0]["category_name"] = "Boots"
	assert.Equal(t, "Shoes", table.Rows[0]["category_name"])
}
