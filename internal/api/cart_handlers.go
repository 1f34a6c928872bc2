package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"storefront-backend/internal/models"
	"storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// CartHandlers serves cart, checkout and client-state endpoints
type CartHandlers struct {
	carts  *services.CartService
	orders *services.OrderService
}

// NewCartHandlers creates a new cart handlers instance
func NewCartHandlers(carts *services.CartService, orders *services.OrderService) *CartHandlers {
	return &CartHandlers{carts: carts, orders: orders}
}

func cartResponse(c *gin.Context, status int, cart *models.Cart) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    cart,
		"summary": cart.Summary(),
	})
}

// CreateCart starts an empty cart
func (h *CartHandlers) CreateCart(c *gin.Context) {
	cart, err := h.carts.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusCreated, cart)
}

// GetCart returns a cart with its totals
func (h *CartHandlers) GetCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusOK, cart)
}

// AddItem adds a product variant to the cart
func (h *CartHandlers) AddItem(c *gin.Context) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusOK, cart)
}

// UpdateItem replaces a line's quantity; zero removes the line
func (h *CartHandlers) UpdateItem(c *gin.Context) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.carts.UpdateItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusOK, cart)
}

// RemoveItem drops a line from the cart
func (h *CartHandlers) RemoveItem(c *gin.Context) {
	var req models.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.carts.RemoveItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusOK, cart)
}

// ClearCart empties the cart. ?purge=true forgets the cart entirely.
func (h *CartHandlers) ClearCart(c *gin.Context) {
	if c.Query("purge") == "true" {
		if err := h.carts.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Cart deleted",
		})
		return
	}

	cart, err := h.carts.Clear(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusOK, cart)
}

// ApplyDiscount applies a discount code to the cart
func (h *CartHandlers) ApplyDiscount(c *gin.Context) {
	var req models.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.carts.ApplyDiscount(c.Request.Context(), c.Param("id"), req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusOK, cart)
}

// RemoveDiscount clears the applied discount code
func (h *CartHandlers) RemoveDiscount(c *gin.Context) {
	cart, err := h.carts.RemoveDiscount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusOK, cart)
}

// SelectShipping prices the cart with a shipping rule
func (h *CartHandlers) SelectShipping(c *gin.Context) {
	var req models.ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	cart, err := h.carts.SelectShipping(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	cartResponse(c, http.StatusOK, cart)
}

// Checkout turns the cart into an order and returns the relay link. When
// the relay channel is not configured the receipt is still returned with
// status 422 so the shopper can copy the payload by hand.
func (h *CartHandlers) Checkout(c *gin.Context) {
	var form models.CheckoutForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}
	if form.ClientKey == "" {
		form.ClientKey = c.GetHeader("X-Client-Key")
	}

	receipt, err := h.orders.Checkout(c.Request.Context(), c.Param("id"), form)
	if err != nil {
		if receipt != nil && errors.Is(err, services.ErrRelayNotConfigured) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error":   err.Error(),
				"data":    receipt,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Order " + receipt.Order.OrderID + " placed",
		"data":    receipt,
	})
}

// GetUserID returns the stable user id of a browser; the path id is the
// browser's client key
func (h *CartHandlers) GetUserID(c *gin.Context) {
	userID, err := h.orders.UserID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"userId": userID},
	})
}

// LocalOrders returns the orders a user submitted from this device
func (h *CartHandlers) LocalOrders(c *gin.Context) {
	orders, err := h.orders.LocalOrders(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ListResponse{
		Success: true,
		Data:    orders,
		Count:   len(orders),
	})
}

// RelayQRCode renders a relay link as a PNG QR code. GET reads ?url=;
// POST reads a JSON body, which full relay links need.
func (h *CartHandlers) RelayQRCode(c *gin.Context) {
	var req models.RelayQRRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	} else {
		req.URL = c.Query("url")
		req.Size, _ = strconv.Atoi(c.DefaultQuery("size", "256"))
	}
	if req.Size > 1024 {
		req.Size = 1024
	}

	png, err := services.RelayQRCode(req.URL, req.Size)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Printf("📱 Rendered relay QR code (%d bytes)", len(png))
	c.Data(http.StatusOK, "image/png", png)
}
