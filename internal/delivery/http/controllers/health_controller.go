package controllers

import (
	"net/http"

	"conferencereg/internal/delivery/http/helpers"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

// Health godoc
// @Summary Liveness probe
// @Tags ops
// @Produce json
// @Success 200 {object} controllers.HealthResponse
// @Router /healthz [get]
func Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, HealthResponse{Success: true, Status: "ok"})
}
