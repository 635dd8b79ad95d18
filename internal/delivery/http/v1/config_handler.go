package v1

import (
	"net/http"
	"time"

	"dangerous-goods-backend/internal/usecase"
	"dangerous-goods-backend/pkg/cache"
	"dangerous-goods-backend/pkg/utils"
)

const publicConfigTTL = 5 * time.Minute

// feeConfigResponse is the public preview of the handling fee.
type feeConfigResponse struct {
	FeeLabel     string `json:"feeLabel"`
	FeeAmount    string `json:"feeAmount"`
	FeeEnabled   bool   `json:"feeEnabled"`
	FormattedFee string `json:"formattedFee"`
	Badge        string `json:"badge"`
	ItemWarning  string `json:"itemWarning"`
}

type ConfigHandler struct {
	cache          cache.CacheService
	settings       usecase.SettingsProvider
	currencySymbol string
}

func NewConfigHandler(cache cache.CacheService, settings usecase.SettingsProvider, currencySymbol string) *ConfigHandler {
	return &ConfigHandler{cache: cache, settings: settings, currencySymbol: currencySymbol}
}

// GET /api/v1/config/dangerous-goods
func (h *ConfigHandler) GetDangerousGoodsConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")

	if val, found := h.cache.Get(cache.KeyPublicFeeConfig); found {
		utils.WriteJSON(w, http.StatusOK, val)
		return
	}

	settings := h.settings.Get(r.Context())
	response := feeConfigResponse{
		FeeLabel:     settings.FeeLabel,
		FeeAmount:    settings.FeeAmount.StringFixed(2),
		FeeEnabled:   settings.FeeEnabled(),
		FormattedFee: utils.FormatPrice(h.currencySymbol, settings.FeeAmount),
		Badge:        usecase.ShopLoopBadge,
		ItemWarning:  usecase.CartItemWarning,
	}

	h.cache.Set(cache.KeyPublicFeeConfig, response, publicConfigTTL)
	utils.WriteJSON(w, http.StatusOK, response)
}
