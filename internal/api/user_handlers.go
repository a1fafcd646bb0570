package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"golfalerts/internal/catalog"
	"golfalerts/internal/entities"
	apperrors "golfalerts/internal/errors"
	"golfalerts/internal/service"
)

type TeeTimeHandler struct {
	Service *service.TeeTimeService
	Logger  *zap.Logger
}

func NewTeeTimeHandler(svc *service.TeeTimeService, logger *zap.Logger) *TeeTimeHandler {
	return &TeeTimeHandler{Service: svc, Logger: logger}
}

func (h *TeeTimeHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses := h.Service.ListCourses()
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAllTeeTimes answers 200 even when some upstreams failed; the
// degraded header tells the caller the list may be incomplete.
func (h *TeeTimeHandler) GetAllTeeTimes(w http.ResponseWriter, r *http.Request) {
	slots, degraded, err := h.Service.GetAllTeeTimes(r.Context(), mux.Vars(r)["date"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeSlots(w, slots, degraded)
}

func (h *TeeTimeHandler) GetTeeTimes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	clubID, err := strconv.Atoi(vars["club_id"])
	if err != nil {
		writeError(w, h.Logger, apperrors.NewValidationError("club_id must be an integer"))
		return
	}
	courseID, err := strconv.Atoi(vars["course_id"])
	if err != nil {
		writeError(w, h.Logger, apperrors.NewValidationError("course_id must be an integer"))
		return
	}

	slots, degraded, err := h.Service.GetTeeTimes(r.Context(), catalog.Provider(vars["provider"]), clubID, courseID, vars["date"])
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeSlots(w, slots, degraded)
}

func writeSlots(w http.ResponseWriter, slots []entities.TeeTimeSlot, degraded bool) {
	if slots == nil {
		slots = []entities.TeeTimeSlot{}
	}
	if degraded {
		w.Header().Set(degradedHeader, "true")
	}
	writeJSON(w, http.StatusOK, slots)
}

type AlertHandler struct {
	Service *service.AlertService
	Logger  *zap.Logger
}

func NewAlertHandler(svc *service.AlertService, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{Service: svc, Logger: logger}
}

func (h *AlertHandler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Logger, apperrors.ErrBadRequest("invalid request body"))
		return
	}
	alert, err := h.Service.Create(r.Context(), req)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

func (h *AlertHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Service.List(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *AlertHandler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.Logger, apperrors.NewValidationError("id must be an integer"))
		return
	}
	alert, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertHandler) DeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.Logger, apperrors.NewValidationError("id must be an integer"))
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert deleted."})
}
