package handler

import (
	"cf_tracker/internal/app/service"
	"cf_tracker/internal/common"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SyncHandler struct {
	syncService *service.SyncService
}

func NewSyncHandler(ss *service.SyncService) *SyncHandler {
	return &SyncHandler{syncService: ss}
}

func (h *SyncHandler) RegisterRoutes(r chi.Router) {
	r.Post("/student/{id}", h.syncStudent)
	r.Post("/all", h.syncAll)
	r.Get("/status", h.syncStatus)
}

func (h *SyncHandler) syncStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.syncService.SyncStudentByID(r.Context(), id); err != nil {
		log.Printf("ERROR: Sync failed for student %s: %v", id, err)
		if errors.Is(err, common.ErrNotFound) {
			common.RespondWithError(w, http.StatusNotFound, "Student not found")
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Failed to sync student data")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Student data synced successfully"})
}

func (h *SyncHandler) syncAll(w http.ResponseWriter, r *http.Request) {
	if err := h.syncService.SyncAll(r.Context()); err != nil {
		log.Printf("ERROR: Fleet sync failed: %v", err)
		if errors.Is(err, common.ErrSyncInProgress) {
			common.RespondWithError(w, http.StatusConflict, "A fleet sync is already in progress")
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Failed to sync all students data")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "All students data synced successfully"})
}

func (h *SyncHandler) syncStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.syncService.ListSyncStatus(r.Context())
	if err != nil {
		log.Printf("ERROR: Listing sync status: %v", err)
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Failed to load sync status")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, statuses)
}
