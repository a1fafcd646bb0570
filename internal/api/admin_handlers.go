package api

import (
	"net/http"

	"go.uber.org/zap"

	"golfalerts/internal/auth"
	"golfalerts/internal/service"
)

type AdminHandler struct {
	Cycle  *service.CycleService
	Logger *zap.Logger
}

func NewAdminHandler(cycle *service.CycleService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Cycle: cycle, Logger: logger}
}

// RunCycle triggers a notification cycle on demand and returns its report.
func (h *AdminHandler) RunCycle(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("manual cycle requested", zap.String("admin", auth.AdminFrom(r.Context())))
	report := h.Cycle.RunCycleOnce(r.Context())
	writeJSON(w, http.StatusOK, report)
}
