package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cura-service/internal/cart"
	"cura-service/pkg/ctxmanage"
	"cura-service/pkg/logkey"
)

// GetCart returns the cart lines in insertion order together with the
// derived totals the pages display.
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"items":       h.cart.Lines(),
		"total_price": h.cart.TotalPrice(),
		"total_items": h.cart.TotalItemCount(),
	})
}

// AddToCart looks the medicine up in the catalog and adds one unit of
// it to the cart. The catalog snapshot taken here (price, stock,
// image) is what the cart keeps; it is not refreshed later.
func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		MedicineID string `json:"medicine_id" validate:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(request); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Medicine ID is required"})
		return
	}

	// Fetch product details from the catalog to build the candidate.
	medicine, err := h.catalog.GetMedicine(c.Request.Context(), request.MedicineID)
	if err != nil {
		slog.Error("error fetching medicine details", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch medicine details"})
		return
	}

	err = h.cart.AddItem(cart.Candidate{
		ProductID:            medicine.ID,
		Name:                 medicine.Name,
		Price:                medicine.Price,
		Image:                medicine.PrimaryImage(),
		Stock:                medicine.Stock,
		RequiresPrescription: medicine.RequiresPrescription,
	})
	if err != nil {
		if errors.Is(err, cart.ErrOutOfStock) {
			slog.Info("rejected out of stock add", slog.String(logkey.TraceID, traceId), slog.String("MedicineID", request.MedicineID))
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"success": false, "message": "Medicine is out of stock"})
			return
		}
		slog.Error("error adding medicine to cart", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to add medicine to cart"})
		return
	}

	slog.Info("medicine added to cart", slog.String(logkey.TraceID, traceId),
		slog.String("MedicineID", request.MedicineID), slog.Int("TotalItems", h.cart.TotalItemCount()))

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"items":       h.cart.Lines(),
		"total_price": h.cart.TotalPrice(),
		"total_items": h.cart.TotalItemCount(),
	})
}

// UpdateCartItem sets the quantity for a line. Zero or negative
// removes it; requests above the stored stock bound are clamped, not
// rejected.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	h.cart.SetQuantity(c.Param("id"), request.Quantity)

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"items":       h.cart.Lines(),
		"total_price": h.cart.TotalPrice(),
		"total_items": h.cart.TotalItemCount(),
	})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	h.cart.RemoveItem(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"items":       h.cart.Lines(),
		"total_price": h.cart.TotalPrice(),
		"total_items": h.cart.TotalItemCount(),
	})
}

func (h *Handler) ClearCart(c *gin.Context) {
	h.cart.Clear()
	c.JSON(http.StatusOK, gin.H{"success": true, "items": h.cart.Lines(), "total_price": 0, "total_items": 0})
}

// AddPresetToCart adds every medicine of a saved preset to the cart at
// its saved quantity, clamped per medicine against current stock.
func (h *Handler) AddPresetToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	presetID := c.Param("id")

	presets, err := h.catalog.ListPresets(c.Request.Context())
	if err != nil {
		slog.Error("error fetching presets", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch presets"})
		return
	}

	var skipped []string
	for _, preset := range presets {
		if preset.ID != presetID {
			continue
		}
		for _, entry := range preset.Medicines {
			// The preset stores only a display snapshot; fetch the
			// medicine for a current stock bound.
			medicine, err := h.catalog.GetMedicine(c.Request.Context(), entry.Medicine.ID)
			if err != nil {
				slog.Error("error fetching preset medicine", slog.String(logkey.TraceID, traceId),
					slog.String("MedicineID", entry.Medicine.ID), slog.String(logkey.ERROR, err.Error()))
				skipped = append(skipped, entry.Medicine.ID)
				continue
			}
			for i := 0; i < entry.Quantity; i++ {
				if err := h.cart.AddItem(cart.Candidate{
					ProductID:            medicine.ID,
					Name:                 medicine.Name,
					Price:                medicine.Price,
					Image:                medicine.PrimaryImage(),
					Stock:                medicine.Stock,
					RequiresPrescription: medicine.RequiresPrescription,
				}); err != nil {
					skipped = append(skipped, medicine.ID)
					break
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"items":       h.cart.Lines(),
			"total_price": h.cart.TotalPrice(),
			"total_items": h.cart.TotalItemCount(),
			"skipped":     skipped,
		})
		return
	}

	slog.Error("preset not found", slog.String(logkey.TraceID, traceId), slog.String("PresetID", presetID))
	c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"success": false, "message": "Preset not found"})
}
