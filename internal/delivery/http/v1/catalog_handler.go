package v1

import (
	"net/http"

	"dangerous-goods-backend/internal/usecase"
	"dangerous-goods-backend/pkg/utils"
)

type CatalogHandler struct {
	catalogUC *usecase.CatalogUsecase
}

func NewCatalogHandler(uc *usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUC: uc}
}

// GET /api/v1/products/{id}/dangerous-goods
func (h *CatalogHandler) GetProductDangerousGoods(w http.ResponseWriter, r *http.Request) {
	view, err := h.catalogUC.GetProductDangerousGoods(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, "Failed to load product")
		return
	}
	utils.WriteJSON(w, http.StatusOK, view)
}
