package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/LepeyevaEmiliya/projects/logging"
	"github.com/LepeyevaEmiliya/projects/utils"
)

// Pinger is satisfied by the relational store.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db         Pinger
	apiVersion string
	env        string
	started    time.Time
}

func NewHealthHandler(db Pinger, apiVersion, env string) *HealthHandler {
	return &HealthHandler{db: db, apiVersion: apiVersion, env: env, started: time.Now()}
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	utils.WriteData(w, http.StatusOK, map[string]string{
		"name":        "TaskFlow API",
		"version":     h.apiVersion,
		"environment": h.env,
	})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}
	if err := h.db.Ping(ctx); err != nil {
		logging.Logger.Warnf("Event ID: HEALTH_DB_DOWN, Description: Database ping failed: %v", err)
		body["status"] = "unavailable"
		body["database"] = "down"
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.Envelope{Success: false, Data: body, Error: "Database unavailable"})
		return
	}
	body["database"] = "up"
	utils.WriteData(w, http.StatusOK, body)
}
