package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"cura-service/internal/users"
	"cura-service/pkg/ctxmanage"
	"cura-service/pkg/logkey"
)

func (h *Handler) Login(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
		OTP      string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(request); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid email and password are required"})
		return
	}

	result, err := h.users.Login(c.Request.Context(), request.Email, request.Password, request.OTP)
	if err != nil {
		slog.Error("login request failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Login failed"})
		return
	}
	if !result.Success {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success":     false,
			"requiresOTP": result.RequiresOTP,
			"message":     result.Message,
		})
		return
	}

	slog.Info("user logged in", slog.String(logkey.TraceID, traceId), slog.String("Email", request.Email))
	c.JSON(http.StatusOK, gin.H{"success": true, "user": h.users.CurrentUser()})
}

func (h *Handler) Register(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	if c.Request.ContentLength > 5*1024 {
		slog.Error("request body limit breached", slog.String(logkey.TraceID, traceId), slog.Int64("Size Received", c.Request.ContentLength))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Request body too large"})
		return
	}

	var newUser users.NewUser
	if err := c.ShouldBindJSON(&newUser); err != nil {
		slog.Error("json validation error", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	if err := h.validate.Struct(newUser); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			vErr := vErrs[0]
			switch vErr.Tag() {
			case "required":
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": vErr.Field() + " value missing"})
			case "min":
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": vErr.Field() + " must be at least " + vErr.Param() + " characters"})
			case "email":
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email is not valid"})
			default:
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
			}
			slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": http.StatusText(http.StatusBadRequest)})
		return
	}

	result, err := h.users.Register(c.Request.Context(), newUser)
	if err != nil {
		slog.Error("registration request failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Registration failed"})
		return
	}
	if !result.Success {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": result.Message})
		return
	}

	slog.Info("user registered", slog.String(logkey.TraceID, traceId), slog.String("Email", newUser.Email))
	c.JSON(http.StatusOK, gin.H{"success": true, "user": result.User})
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		UserID string `json:"user_id" validate:"required"`
		OTP    string `json:"otp" validate:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(request); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "User ID and OTP are required"})
		return
	}

	if err := h.users.VerifyOTP(c.Request.Context(), request.UserID, request.OTP); err != nil {
		slog.Error("otp verification failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "OTP verification failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email verified"})
}

// Logout drops the local session. The cart survives; it belongs to the
// device, not the account.
func (h *Handler) Logout(c *gin.Context) {
	h.users.Logout()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (h *Handler) GetProfile(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	user, err := h.users.GetProfile(c.Request.Context())
	if err != nil {
		slog.Error("error fetching profile", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to fetch profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request body"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), updates)
	if err != nil {
		slog.Error("error updating profile", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"success": false, "message": "Failed to update profile"})
		return
	}

	slog.Info("profile updated", slog.String(logkey.TraceID, traceId))
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}
