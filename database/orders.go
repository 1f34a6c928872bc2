package database

import (
	"fmt"
	"strings"
)

// OrderSchemaVersion identifies the positional orders.csv layout below.
// Bump it if the column list ever changes.
const OrderSchemaVersion = 1

// Positions of the legacy orders.csv columns.
const (
	OrderColUserID = iota
	OrderColOrderID
	OrderColOrderDate
	OrderColFirstName
	OrderColLastName
	OrderColEmail
	OrderColPhone
	OrderColShippingAddress
	OrderColItemsJSON
	OrderColSubtotal
	OrderColTax
	OrderColShipping
	OrderColDiscount
	OrderColTotal
	OrderColShippingMethod
	OrderColPaymentMethod
	OrderColOrderNotes
	OrderColStatus
	OrderColAdminStatus
	OrderColAdminComment
	OrderColDiscountCode
	OrderColumnCount
)

// OrderColumns is the header of orders.csv, in positional order.
var OrderColumns = [OrderColumnCount]string{
	"user_id",
	"order_id",
	"order_date",
	"customer_first_name",
	"customer_last_name",
	"customer_email",
	"customer_phone",
	"shipping_address",
	"items_json",
	"subtotal",
	"tax",
	"shipping",
	"discount",
	"total",
	"shipping_method",
	"payment_method",
	"order_notes",
	"status",
	"admin_status",
	"admin_comment",
	"discount_code",
}

// alwaysQuoted columns are written inside quotes even when they would not need it.
var alwaysQuoted = map[int]bool{
	OrderColShippingAddress: true,
	OrderColItemsJSON:       true,
}

// quotedWhenSet columns are quoted whenever they carry a value.
var quotedWhenSet = map[int]bool{
	OrderColOrderNotes:   true,
	OrderColAdminComment: true,
}

// OrderRecord is one decoded orders.csv line. Amounts stay textual here;
// the service layer converts them.
type OrderRecord struct {
	UserID          string `json:"user_id"`
	OrderID         string `json:"order_id"`
	OrderDate       string `json:"order_date"`
	FirstName       string `json:"customer_first_name"`
	LastName        string `json:"customer_last_name"`
	Email           string `json:"customer_email"`
	Phone           string `json:"customer_phone"`
	ShippingAddress string `json:"shipping_address"`
	ItemsJSON       string `json:"items_json"`
	Subtotal        string `json:"subtotal"`
	Tax             string `json:"tax"`
	Shipping        string `json:"shipping"`
	Discount        string `json:"discount"`
	Total           string `json:"total"`
	ShippingMethod  string `json:"shipping_method"`
	PaymentMethod   string `json:"payment_method"`
	OrderNotes      string `json:"order_notes"`
	Status          string `json:"status"`
	AdminStatus     string `json:"admin_status"`
	AdminComment    string `json:"admin_comment"`
	DiscountCode    string `json:"discount_code"`
}

func (o OrderRecord) values() [OrderColumnCount]string {
	return [OrderColumnCount]string{
		o.UserID, o.OrderID, o.OrderDate, o.FirstName, o.LastName, o.Email, o.Phone,
		o.ShippingAddress, o.ItemsJSON, o.Subtotal, o.Tax, o.Shipping, o.Discount, o.Total,
		o.ShippingMethod, o.PaymentMethod, o.OrderNotes, o.Status, o.AdminStatus,
		o.AdminComment, o.DiscountCode,
	}
}

func recordFromValues(v [OrderColumnCount]string) OrderRecord {
	return OrderRecord{
		UserID: v[OrderColUserID], OrderID: v[OrderColOrderID], OrderDate: v[OrderColOrderDate],
		FirstName: v[OrderColFirstName], LastName: v[OrderColLastName], Email: v[OrderColEmail],
		Phone: v[OrderColPhone], ShippingAddress: v[OrderColShippingAddress], ItemsJSON: v[OrderColItemsJSON],
		Subtotal: v[OrderColSubtotal], Tax: v[OrderColTax], Shipping: v[OrderColShipping],
		Discount: v[OrderColDiscount], Total: v[OrderColTotal], ShippingMethod: v[OrderColShippingMethod],
		PaymentMethod: v[OrderColPaymentMethod], OrderNotes: v[OrderColOrderNotes], Status: v[OrderColStatus],
		AdminStatus: v[OrderColAdminStatus], AdminComment: v[OrderColAdminComment], DiscountCode: v[OrderColDiscountCode],
	}
}

// orderLine keeps the exact bytes of a record next to its raw field
// segments so untouched lines and fields are written back verbatim.
type orderLine struct {
	raw    string
	fields []string
}

// OrderTable is an in-memory orders.csv. Columns are resolved by header
// name when the header carries the known names and by position otherwise.
type OrderTable struct {
	header   string
	layout   [OrderColumnCount]int
	lines    []orderLine
	newline  string
	trailing bool
}

// NewOrderTable returns an empty table with the canonical header.
func NewOrderTable() *OrderTable {
	t := &OrderTable{header: strings.Join(OrderColumns[:], ","), newline: "\n"}
	t.layout = resolveLayout(splitFields(t.header))
	return t
}

// ParseOrderTable decodes orders.csv content. Quoted fields may contain
// commas, doubled quotes and line breaks.
func ParseOrderTable(content string) (*OrderTable, error) {
	content = strings.TrimPrefix(content, "\ufeff")
	if strings.TrimSpace(content) == "" {
		return NewOrderTable(), nil
	}

	records, newline, trailing, err := splitRecords(content)
	if err != nil {
		return nil, err
	}

	t := &OrderTable{newline: newline, trailing: trailing}
	first := true
	for _, rec := range records {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		if first {
			t.header = rec
			t.layout = resolveLayout(splitFields(rec))
			first = false
			continue
		}
		t.lines = append(t.lines, orderLine{raw: rec, fields: splitFields(rec)})
	}
	if first {
		return NewOrderTable(), nil
	}
	return t, nil
}

func resolveLayout(header []string) [OrderColumnCount]int {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		byName[CanonicalColumn(unquoteField(h))] = i
	}
	var layout [OrderColumnCount]int
	for col, name := range OrderColumns {
		if i, ok := byName[name]; ok {
			layout[col] = i
		} else {
			layout[col] = col
		}
	}
	return layout
}

// splitRecords cuts content into records on line breaks outside quotes.
func splitRecords(content string) ([]string, string, bool, error) {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	var records []string
	inQuotes := false
	start := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '"':
			if inQuotes && i+1 < len(content) && content[i+1] == '"' {
				i++
				continue
			}
			inQuotes = !inQuotes
		case '\n':
			if !inQuotes {
				records = append(records, strings.TrimSuffix(content[start:i], "\r"))
				start = i + 1
			}
		}
	}
	if inQuotes {
		return nil, "", false, fmt.Errorf("unterminated quoted field in orders table")
	}

	trailing := start == len(content)
	if !trailing {
		records = append(records, strings.TrimSuffix(content[start:], "\r"))
	}
	return records, newline, trailing, nil
}

// splitFields cuts one record into raw field segments, quotes included.
func splitFields(record string) []string {
	var fields []string
	inQuotes := false
	start := 0
	for i := 0; i < len(record); i++ {
		switch record[i] {
		case '"':
			if inQuotes && i+1 < len(record) && record[i+1] == '"' {
				i++
				continue
			}
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				fields = append(fields, record[start:i])
				start = i + 1
			}
		}
	}
	return append(fields, record[start:])
}

func unquoteField(raw string) string {
	if !strings.Contains(raw, `"`) {
		return raw
	}
	var b strings.Builder
	inQuotes := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '"' {
			b.WriteByte(c)
			continue
		}
		if inQuotes && i+1 < len(raw) && raw[i+1] == '"' {
			b.WriteByte('"')
			i++
			continue
		}
		inQuotes = !inQuotes
	}
	return b.String()
}

func quoteField(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func encodeField(col int, value string) string {
	switch {
	case alwaysQuoted[col]:
		return quoteField(value)
	case value == "":
		return ""
	case quotedWhenSet[col], strings.ContainsAny(value, ",\"\r\n"):
		return quoteField(value)
	}
	return value
}

func (t *OrderTable) decode(line orderLine) OrderRecord {
	var v [OrderColumnCount]string
	for col, pos := range t.layout {
		if pos < len(line.fields) {
			v[col] = unquoteField(line.fields[pos])
		}
	}
	return recordFromValues(v)
}

func (t *OrderTable) width() int {
	w := len(splitFields(t.header))
	for _, pos := range t.layout {
		if pos+1 > w {
			w = pos + 1
		}
	}
	return w
}

// Len returns the number of order records.
func (t *OrderTable) Len() int {
	return len(t.lines)
}

// Records decodes every order in file order.
func (t *OrderTable) Records() []OrderRecord {
	out := make([]OrderRecord, 0, len(t.lines))
	for _, line := range t.lines {
		out = append(out, t.decode(line))
	}
	return out
}

// FilterByUser returns the orders placed by one user id.
func (t *OrderTable) FilterByUser(userID string) []OrderRecord {
	out := []OrderRecord{}
	for _, line := range t.lines {
		rec := t.decode(line)
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

func (t *OrderTable) indexOf(orderID string) int {
	pos := t.layout[OrderColOrderID]
	for i, line := range t.lines {
		if pos < len(line.fields) && unquoteField(line.fields[pos]) == orderID {
			return i
		}
	}
	return -1
}

// Find returns the order with the given id.
func (t *OrderTable) Find(orderID string) (OrderRecord, error) {
	i := t.indexOf(orderID)
	if i < 0 {
		return OrderRecord{}, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return t.decode(t.lines[i]), nil
}

// Append adds a new record at the end of the table.
func (t *OrderTable) Append(rec OrderRecord) {
	fields := make([]string, t.width())
	values := rec.values()
	for col, pos := range t.layout {
		fields[pos] = encodeField(col, values[col])
	}
	t.lines = append(t.lines, orderLine{raw: strings.Join(fields, ","), fields: fields})
}

// UpdateStatus rewrites the admin status and comment of one order. Every
// other field of that line, and every other line, keeps its exact bytes.
func (t *OrderTable) UpdateStatus(orderID, adminStatus, comment string) error {
	i := t.indexOf(orderID)
	if i < 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	line := t.lines[i]
	fields := append([]string(nil), line.fields...)
	for len(fields) < t.width() {
		fields = append(fields, "")
	}
	fields[t.layout[OrderColAdminStatus]] = encodeField(OrderColAdminStatus, adminStatus)
	fields[t.layout[OrderColAdminComment]] = encodeField(OrderColAdminComment, comment)

	t.lines[i] = orderLine{raw: strings.Join(fields, ","), fields: fields}
	return nil
}

// Delete removes one order, keeping the relative order of the rest.
func (t *OrderTable) Delete(orderID string) error {
	i := t.indexOf(orderID)
	if i < 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	t.lines = append(t.lines[:i], t.lines[i+1:]...)
	return nil
}

// String renders the table with the line endings it was read with.
func (t *OrderTable) String() string {
	parts := make([]string, 0, len(t.lines)+1)
	parts = append(parts, t.header)
	for _, line := range t.lines {
		parts = append(parts, line.raw)
	}
	out := strings.Join(parts, t.newline)
	if t.trailing {
		out += t.newline
	}
	return out
}
