package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"cura-service/internal/cart"
	"cura-service/internal/catalog"
	"cura-service/internal/orders"
	"cura-service/internal/users"
	"cura-service/middleware"
	"cura-service/pkg/ctxmanage"
)

type Handler struct {
	cart     *cart.Store
	catalog  *catalog.Conf
	orders   *orders.Conf
	users    *users.Conf
	validate *validator.Validate
}

func NewHandler(cartStore *cart.Store, cat *catalog.Conf, ord *orders.Conf, u *users.Conf) *Handler {
	return &Handler{
		cart:     cartStore,
		catalog:  cat,
		orders:   ord,
		users:    u,
		validate: validator.New(),
	}
}

func API(endpointPrefix string, cartStore *cart.Store, cat *catalog.Conf, ord *orders.Conf, u *users.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	m, err := middleware.NewMid(u)
	if err != nil {
		panic(err)
	}
	h := NewHandler(cartStore, cat, ord, u)
	//apply middleware to all the endpoints using r.Use
	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)
	v1 := r.Group(endpointPrefix)
	{
		// catalog (read-only proxy to the upstream medicine API)
		v1.GET("/medicines", h.ListMedicines)
		v1.GET("/medicines/search", h.SearchMedicines)
		v1.GET("/medicines/presets", h.ListPresets)
		v1.POST("/medicines/presets", h.CreatePreset)
		v1.DELETE("/medicines/presets/:id", h.DeletePreset)
		v1.GET("/medicines/:id", h.GetMedicine)

		// device-local cart
		v1.GET("/cart", h.GetCart)
		v1.POST("/cart/items", h.AddToCart)
		v1.PUT("/cart/items/:id", h.UpdateCartItem)
		v1.DELETE("/cart/items/:id", h.RemoveCartItem)
		v1.DELETE("/cart", h.ClearCart)
		v1.POST("/cart/presets/:id", h.AddPresetToCart)

		// session
		v1.POST("/users/login", h.Login)
		v1.POST("/users/register", h.Register)
		v1.POST("/users/verify-otp", h.VerifyOTP)
		v1.POST("/users/logout", h.Logout)

		authed := v1.Group("")
		authed.Use(m.Authenticated())
		{
			authed.GET("/users/profile", h.GetProfile)
			authed.PUT("/users/profile", h.UpdateProfile)
			authed.GET("/orders", h.ListOrders)
			authed.GET("/orders/:id", h.GetOrder)
			authed.POST("/orders/checkout", h.Checkout)
			authed.POST("/orders/:id/cancel", h.CancelOrder)
		}
	}

	return r
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	fmt.Println("healthCheck handler ", traceId)
	//JSON serializes the given struct as JSON into the response body. It also sets the Content-Type as "application/json".
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
