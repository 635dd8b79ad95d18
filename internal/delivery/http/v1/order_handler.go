package v1

import (
	"net/http"
	"strings"

	"dangerous-goods-backend/internal/usecase"
	"dangerous-goods-backend/pkg/logger"
	"dangerous-goods-backend/pkg/utils"
)

type OrderHandler struct {
	cartUC          *usecase.CartUsecase
	orderUC         *usecase.OrderUsecase
	maxCartQuantity int
}

func NewOrderHandler(cartUC *usecase.CartUsecase, orderUC *usecase.OrderUsecase, maxCartQuantity int) *OrderHandler {
	return &OrderHandler{
		cartUC:          cartUC,
		orderUC:         orderUC,
		maxCartQuantity: maxCartQuantity,
	}
}

// --- Cart Handlers ---

func (h *OrderHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cart, err := h.cartUC.ViewMyCart(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, "Failed to load cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

type cartItemReq struct {
	ProductID   string  `json:"productId"`
	VariationID *string `json:"variationId"`
	Quantity    int     `json:"quantity"`
}

func (req *cartItemReq) normalize() {
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.VariationID != nil && strings.TrimSpace(*req.VariationID) == "" {
		req.VariationID = nil
	}
}

func (h *OrderHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.normalize()
	if req.ProductID == "" {
		utils.WriteError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "Quantity must be positive")
		return
	}
	if req.Quantity > h.maxCartQuantity {
		utils.WriteError(w, http.StatusBadRequest, "Quantity exceeds maximum limit")
		return
	}

	cart, err := h.cartUC.AddToCart(r.Context(), user.ID, req.ProductID, req.VariationID, req.Quantity)
	if err != nil {
		logger.WithContext(r.Context()).Warn().Err(err).
			Str("user_id", user.ID).
			Str("product_id", req.ProductID).
			Msg("AddToCart failed")
		writeError(w, r, err, "Failed to add to cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

func (h *OrderHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	req.normalize()
	if req.ProductID == "" {
		utils.WriteError(w, http.StatusBadRequest, "productId is required")
		return
	}

	cart, err := h.cartUC.UpdateCartItemQuantity(r.Context(), user.ID, req.ProductID, req.VariationID, req.Quantity)
	if err != nil {
		writeError(w, r, err, "Failed to update cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

func (h *OrderHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID := r.PathValue("productId")
	if productID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Product ID required")
		return
	}
	var variationID *string
	if v := r.URL.Query().Get("variationId"); v != "" {
		variationID = &v
	}

	cart, err := h.cartUC.RemoveFromCart(r.Context(), user.ID, productID, variationID)
	if err != nil {
		writeError(w, r, err, "Failed to remove from cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, cart)
}

// --- Order Handlers ---

func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	order, err := h.orderUC.Checkout(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, "Checkout failed")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, h.orderUC.OrderView(r.Context(), order))
}

func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	orders, err := h.orderUC.GetMyOrders(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err, "Failed to fetch orders")
		return
	}
	views := make([]*usecase.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, h.orderUC.OrderView(r.Context(), &orders[i]))
	}
	utils.WriteJSON(w, http.StatusOK, views)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	order, err := h.orderUC.GetOrder(r.Context(), user, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to fetch order")
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.orderUC.OrderView(r.Context(), order))
}
