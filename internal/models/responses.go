package models

// APIResponse is the envelope every JSON endpoint answers with
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ListResponse wraps a collection with its size
type ListResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
	Error   string      `json:"error,omitempty"`
}

// DownloadFallback carries the content of a failed write so the operator
// can save it by hand.
type DownloadFallback struct {
	FileName   string `json:"fileName"`
	CSVContent string `json:"csvContent"`
}

// FailedWriteResponse is returned when a table could not be written
type FailedWriteResponse struct {
	Success  bool             `json:"success"`
	Error    string           `json:"error"`
	Fallback DownloadFallback `json:"fallback"`
}

// SaveCSVRequest is the body of POST /api/save-csv
type SaveCSVRequest struct {
	FileName   string `json:"fileName"`
	CSVContent string `json:"csvContent"`
}

// UpdateOrderStatusRequest is the body of POST /api/update-order-status
type UpdateOrderStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// DeleteOrderRequest is the body of DELETE /api/delete-order
type DeleteOrderRequest struct {
	OrderID string `json:"orderId"`
}

// CartItemRequest adds, updates or removes a cart line
type CartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"selectedColor"`
	Size      string `json:"selectedSize"`
}

// DiscountRequest applies a discount code to a cart
type DiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

// ShippingRequest selects a shipping rule for a cart
// RelayQRRequest carries a relay link too long for a query string
type RelayQRRequest struct {
	URL  string `json:"url" binding:"required"`
	Size int    `json:"size"`
}

type ShippingRequest struct {
	ShippingID string `json:"shippingId" binding:"required"`
	Region     string `json:"region"`
}

// SaveRowRequest is the body of the admin row save endpoint
type SaveRowRequest struct {
	Row   map[string]string `json:"row"`
	IsNew bool              `json:"isNew"`
}

// AddOrderRequest is the body of POST /api/add-order
type AddOrderRequest struct {
	Order *Order `json:"order" binding:"required"`
}

// ParseOrderRequest carries a pasted relay message
type ParseOrderRequest struct {
	Message string `json:"message"`
}
