package api

import (
	"encoding/json"
	"io"
	"net/http"

	"storefront-backend/database"
	"storefront-backend/internal/models"
	"storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// FileHandlers serves the data-file API used by the admin portal
type FileHandlers struct {
	editor *services.EditorService
	orders *services.AdminOrderService
}

// NewFileHandlers creates a new file handlers instance
func NewFileHandlers(editor *services.EditorService, orders *services.AdminOrderService) *FileHandlers {
	return &FileHandlers{editor: editor, orders: orders}
}

// Health reports that the API is up
func (h *FileHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "CSV API server running",
	})
}

// SaveCSV replaces a whitelisted data file
func (h *FileHandlers) SaveCSV(c *gin.Context) {
	var req models.SaveCSVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.editor.SaveCSV(req.FileName, req.CSVContent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   req.FileName + " saved successfully",
		"backup":    result.Backup,
		"sanitized": result.Sanitized,
	})
}

// AddOrder appends a checkout order to orders.csv
func (h *FileHandlers) AddOrder(c *gin.Context) {
	var req models.AddOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.orders.AddOrder(req.Order); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order saved successfully",
	})
}

// GetOrders lists the rows of one user as snake_case objects
func (h *FileHandlers) GetOrders(c *gin.Context) {
	records, err := h.orders.ByUser(c.Query("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []database.OrderRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// UpdateOrderStatus sets the admin status and comment of an order
func (h *FileHandlers) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.orders.UpdateStatus(req.OrderID, req.Status, req.Comment); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order status updated successfully",
	})
}

// DeleteOrder removes an order row
func (h *FileHandlers) DeleteOrder(c *gin.Context) {
	var req models.DeleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := h.orders.Delete(req.OrderID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted successfully",
	})
}

// ParseOrder previews a pasted relay message before it is imported. The
// body is either the raw text or {"message": "..."}.
func (h *FileHandlers) ParseOrder(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}

	order, err := services.ParseRelayPayload(messageText(body))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// ImportOrder parses a pasted relay message and appends it to orders.csv.
// Operator edits may be sent as {"order": {...}} instead of raw text.
func (h *FileHandlers) ImportOrder(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}

	var imp *models.OrderImport
	if edited := gjson.GetBytes(body, "order"); edited.IsObject() {
		imp = &models.OrderImport{}
		if err := json.Unmarshal([]byte(edited.Raw), imp); err != nil {
			badRequest(c, err)
			return
		}
	} else {
		imp, err = services.ParseRelayPayload(messageText(body))
		if err != nil {
			respondError(c, err)
			return
		}
	}

	if _, err := h.orders.Import(imp); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order " + imp.OrderID + " added successfully",
		"data":    imp,
	})
}

// ListOrders returns every order newest first with per-status counts
func (h *FileHandlers) ListOrders(c *gin.Context) {
	list, err := h.orders.List(c.Query("adminStatus"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list.Orders,
		"counts":  list.Counts,
		"total":   list.Total,
	})
}

// messageText unwraps {"message": "..."} bodies; anything else is the
// pasted text itself.
func messageText(body []byte) string {
	if m := gjson.GetBytes(body, "message"); m.Type == gjson.String {
		return m.String()
	}
	return string(body)
}
