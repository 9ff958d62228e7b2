package handler

import (
	"cf_tracker/internal/app/service"
	"cf_tracker/internal/common"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(ss *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: ss}
}

func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.getSettings)
	r.Put("/", h.updateSettings)
}

func (h *SettingsHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.Get(r.Context())
	if err != nil {
		log.Printf("ERROR: Loading settings: %v", err)
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Failed to load settings")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.settingsService.Update(r.Context(), req)
	if err != nil {
		log.Printf("ERROR: Updating settings: %v", err)
		if errors.Is(err, common.ErrBadRequest) {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid settings values")
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Failed to update settings")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, settings)
}
