package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"cura-service/internal/catalog"
	"cura-service/pkg/ctxmanage"
	"cura-service/pkg/logkey"
)

func (h *Handler) ListMedicines(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	medicines, err := h.catalog.ListMedicines(c.Request.Context())
	if err != nil {
		slog.Error("error fetching medicines", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch medicines"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": medicines})
}

func (h *Handler) GetMedicine(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	medicine, err := h.catalog.GetMedicine(c.Request.Context(), c.Param("id"))
	if err != nil {
		slog.Error("error fetching medicine", slog.String(logkey.TraceID, traceId),
			slog.String("MedicineID", c.Param("id")), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch medicine"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": medicine})
}

func (h *Handler) SearchMedicines(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	query := c.Query("q")
	if query == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Search query is required"})
		return
	}

	medicines, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		slog.Error("error searching medicines", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to search medicines"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medicines": medicines})
}

func (h *Handler) ListPresets(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	presets, err := h.catalog.ListPresets(c.Request.Context())
	if err != nil {
		slog.Error("error fetching presets", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch presets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "presets": presets})
}

func (h *Handler) CreatePreset(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	// Presets are small named bundles; anything bigger than this is a
	// malformed request.
	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Request body too large"})
		return
	}

	var preset catalog.Preset
	if err := c.ShouldBindJSON(&preset); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if preset.Name == "" || len(preset.Medicines) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Preset needs a name and at least one medicine"})
		return
	}

	created, err := h.catalog.CreatePreset(c.Request.Context(), preset)
	if err != nil {
		slog.Error("error creating preset", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to create preset"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "preset": created})
}

func (h *Handler) DeletePreset(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if err := h.catalog.DeletePreset(c.Request.Context(), c.Param("id")); err != nil {
		slog.Error("error deleting preset", slog.String(logkey.TraceID, traceId),
			slog.String("PresetID", c.Param("id")), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to delete preset"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Preset deleted"})
}
