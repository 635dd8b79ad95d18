package v1

import (
	"net/http"

	"dangerous-goods-backend/internal/usecase"
	"dangerous-goods-backend/pkg/logger"
	"dangerous-goods-backend/pkg/utils"
)

type AdminConfigHandler struct {
	settingsUC *usecase.SettingsUsecase
}

func NewAdminConfigHandler(settingsUC *usecase.SettingsUsecase) *AdminConfigHandler {
	return &AdminConfigHandler{settingsUC: settingsUC}
}

// GET /api/v1/admin/settings/dangerous-goods
func (h *AdminConfigHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings := h.settingsUC.Get(r.Context())
	utils.WriteJSON(w, http.StatusOK, settings)
}

// PUT /api/v1/admin/settings/dangerous-goods
func (h *AdminConfigHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var input usecase.SettingsInput
	if err := utils.DecodeJSONUseNumber(r, &input); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.settingsUC.Save(r.Context(), user, input)
	if err != nil {
		logger.WithContext(r.Context()).Warn().Err(err).Str("user_id", user.ID).Msg("settings save rejected")
		writeError(w, r, err, "Failed to save settings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, settings)
}
