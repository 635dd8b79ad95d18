package v1

import (
	"net/http"
	"strings"

	"dangerous-goods-backend/internal/domain"
	"dangerous-goods-backend/internal/usecase"
	"dangerous-goods-backend/pkg/utils"
)

type AdminCatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewAdminCatalogHandler(uc *usecase.CatalogUsecase) *AdminCatalogHandler {
	return &AdminCatalogHandler{catalogUC: uc}
}

type productReq struct {
	ParentID       *string `json:"parentId"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Status         string  `json:"status"`
	DangerousGoods string  `json:"dangerousGoods"` // "yes", "no" or empty
	Classification string  `json:"dangerousGoodsClassification"`
	UNNumber       string  `json:"dangerousGoodsUnNumber"`
}

// PUT /api/v1/admin/products/{id}
func (h *AdminCatalogHandler) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req productReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	product := &domain.Product{
		ID:             r.PathValue("id"),
		ParentID:       req.ParentID,
		Name:           req.Name,
		Type:           req.Type,
		Status:         req.Status,
		DangerousGoods: strings.ToLower(strings.TrimSpace(req.DangerousGoods)),
		Classification: req.Classification,
		UNNumber:       req.UNNumber,
	}
	if err := h.catalogUC.UpsertProduct(r.Context(), product); err != nil {
		writeError(w, r, err, "Failed to save product")
		return
	}
	utils.WriteJSON(w, http.StatusOK, product)
}

type dangerousGoodsReq struct {
	DangerousGoods bool   `json:"dangerousGoods"`
	Classification string `json:"classification"`
	UNNumber       string `json:"unNumber"`
}

// PUT /api/v1/admin/products/{id}/dangerous-goods
func (h *AdminCatalogHandler) SetDangerousGoods(w http.ResponseWriter, r *http.Request) {
	var req dangerousGoodsReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := r.PathValue("id")
	if err := h.catalogUC.SetDangerousGoods(r.Context(), id, req.DangerousGoods, req.Classification, req.UNNumber); err != nil {
		writeError(w, r, err, "Failed to update dangerous goods")
		return
	}

	view, err := h.catalogUC.GetProductDangerousGoods(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Failed to load product")
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}

// GET /api/v1/admin/dangerous-goods/products
func (h *AdminCatalogHandler) ListDangerousProducts(w http.ResponseWriter, r *http.Request) {
	ids, err := h.catalogUC.ListDangerousProducts(r.Context())
	if err != nil {
		writeError(w, r, err, "Failed to list products")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"productIds": ids,
		"count":      len(ids),
	})
}
