package handler

import (
	"cf_tracker/internal/app/service"
	"cf_tracker/internal/common"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultStatsPeriodDays = 365

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(ss *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: ss}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}/stats", h.studentStats)
	r.Get("/{id}/profile", h.studentProfile)
}

func (h *StatsHandler) studentStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	period := periodFromQuery(r)

	stats, err := h.statsService.StudentStats(r.Context(), id, period)
	if err != nil {
		log.Printf("ERROR: Loading stats for student %s: %v", id, err)
		if errors.Is(err, common.ErrNotFound) {
			common.RespondWithError(w, http.StatusNotFound, "Student not found")
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Failed to load student stats")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *StatsHandler) studentProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	period := periodFromQuery(r)

	profile, err := h.statsService.StudentProfile(r.Context(), id, period)
	if err != nil {
		log.Printf("ERROR: Loading profile for student %s: %v", id, err)
		if errors.Is(err, common.ErrNotFound) {
			common.RespondWithError(w, http.StatusNotFound, "Student not found")
			return
		}
		common.RespondWithError(w, common.HTTPStatusFromError(err), "Failed to load student profile")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, profile)
}

func periodFromQuery(r *http.Request) int {
	if v, err := strconv.Atoi(r.URL.Query().Get("period")); err == nil && v > 0 {
		return v
	}
	return defaultStatsPeriodDays
}
