package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"golfalerts/internal/auth"
)

type Handlers struct {
	TeeTimes  *TeeTimeHandler
	Alerts    *AlertHandler
	AdminAuth *AdminAuthHandler
	Admin     *AdminHandler
	Issuer    *auth.Issuer
}

func NewRouter(h Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Public endpoints
	r.HandleFunc("/api/courses", h.TeeTimes.ListCourses).Methods("GET")
	r.HandleFunc("/api/tee-times/{date}", h.TeeTimes.GetAllTeeTimes).Methods("GET")
	r.HandleFunc("/api/tee-times/{provider}/{club_id:[0-9]+}/{course_id:[0-9]+}/{date}", h.TeeTimes.GetTeeTimes).Methods("GET")
	r.HandleFunc("/api/alerts", h.Alerts.ListAlerts).Methods("GET")
	r.HandleFunc("/api/alerts", h.Alerts.CreateAlert).Methods("POST")
	r.HandleFunc("/api/alerts/{id:[0-9]+}", h.Alerts.GetAlert).Methods("GET")
	r.HandleFunc("/api/alerts/{id:[0-9]+}", h.Alerts.DeleteAlert).Methods("DELETE")

	r.HandleFunc("/admin/login", h.AdminAuth.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(h.Issuer))
	admin.HandleFunc("/cycle", h.Admin.RunCycle).Methods("POST")

	return r
}
