package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cura-service/internal/orders"
	"cura-service/pkg/ctxmanage"
	"cura-service/pkg/logkey"
)

// Checkout submits the cart as an order. The cart is cleared only
// after the upstream confirms the order; a failed submission leaves it
// intact so the user can retry.
func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		ShippingAddress string `json:"shipping_address" validate:"required"`
		PaymentMethod   string `json:"payment_method" validate:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(request); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Shipping address and payment method are required"})
		return
	}

	lines := h.cart.Lines()
	if len(lines) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cart is empty"})
		return
	}

	items := make([]orders.NewOrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, orders.NewOrderItem{MedicineID: line.ProductID, Quantity: line.Quantity})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), items, request.ShippingAddress, request.PaymentMethod)
	if err != nil {
		slog.Error("error creating order", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to create order"})
		return
	}

	// Order confirmed upstream; now the cart can go.
	h.cart.Clear()

	slog.Info("order created", slog.String(logkey.TraceID, traceId), slog.String("OrderID", order.ID))
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *Handler) ListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	orderList, err := h.orders.GetOrders(c.Request.Context())
	if err != nil {
		slog.Error("error fetching orders", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orderList})
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("error fetching order", slog.String(logkey.TraceID, traceId),
			slog.String("OrderID", c.Param("id")), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if err := h.orders.CancelOrder(c.Request.Context(), c.Param("id")); err != nil {
		slog.Error("error cancelling order", slog.String(logkey.TraceID, traceId),
			slog.String("OrderID", c.Param("id")), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to cancel order"})
		return
	}

	slog.Info("order cancelled", slog.String(logkey.TraceID, traceId), slog.String("OrderID", c.Param("id")))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order cancelled"})
}
