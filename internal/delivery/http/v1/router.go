package v1

import (
	"net/http"

	"dangerous-goods-backend/internal/delivery/http/middleware"
)

type Handlers struct {
	Order        *OrderHandler
	Catalog      *CatalogHandler
	Config       *ConfigHandler
	AdminConfig  *AdminConfigHandler
	AdminCatalog *AdminCatalogHandler
}

// RegisterRoutes mounts the API on mux.
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	auth := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(fn)
	}
	manager := func(fn http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.StoreManagerMiddleware(fn))
	}

	// Public
	mux.HandleFunc("GET /api/v1/config/dangerous-goods", h.Config.GetDangerousGoodsConfig)
	mux.HandleFunc("GET /api/v1/products/{id}/dangerous-goods", h.Catalog.GetProductDangerousGoods)

	// Cart & Order (Protected)
	mux.Handle("GET /api/v1/cart", auth(h.Order.GetCart))
	mux.Handle("POST /api/v1/cart", auth(h.Order.AddToCart))
	mux.Handle("PUT /api/v1/cart", auth(h.Order.UpdateCart))
	mux.Handle("DELETE /api/v1/cart/{productId}", auth(h.Order.RemoveFromCart))
	mux.Handle("POST /api/v1/checkout", auth(h.Order.Checkout))
	mux.Handle("GET /api/v1/orders", auth(h.Order.GetMyOrders))
	mux.Handle("GET /api/v1/orders/{id}", auth(h.Order.GetOrder))

	// Store management
	mux.Handle("GET /api/v1/admin/settings/dangerous-goods", manager(h.AdminConfig.GetSettings))
	mux.Handle("PUT /api/v1/admin/settings/dangerous-goods", manager(h.AdminConfig.SaveSettings))
	mux.Handle("PUT /api/v1/admin/products/{id}", manager(h.AdminCatalog.UpsertProduct))
	mux.Handle("PUT /api/v1/admin/products/{id}/dangerous-goods", manager(h.AdminCatalog.SetDangerousGoods))
	mux.Handle("GET /api/v1/admin/dangerous-goods/products", manager(h.AdminCatalog.ListDangerousProducts))

	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // load balancers check the root path
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
