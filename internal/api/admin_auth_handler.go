package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apperrors "golfalerts/internal/errors"
	"golfalerts/internal/service"
)

type AdminAuthHandler struct {
	service service.AdminAuthService
	logger  *zap.Logger
}

func NewAdminAuthHandler(svc service.AdminAuthService, logger *zap.Logger) *AdminAuthHandler {
	return &AdminAuthHandler{service: svc, logger: logger}
}

func (h *AdminAuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperrors.ErrBadRequest("invalid request body"))
		return
	}

	token, err := h.service.Login(req.Email, req.Password)
	if err != nil {
		h.logger.Warn("admin login rejected", zap.String("email", req.Email), zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}
