package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/warrantywizard-backend/api/responses"
	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
	"github.com/angelmondragon/warrantywizard-backend/pkg/db"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
)

const (
	envHeader   = "X-WarrantyWizard-Env"
	pingTimeout = 2 * time.Second
)

type healthResponse struct {
	Status   string `json:"status"`
	Env      string `json:"env"`
	Store    string `json:"store"`
	Database string `json:"database"`
	Time     string `json:"time"`
}

// Health reports liveness plus a database ping when one is configured.
// A failed ping answers 503.
func Health(cfg *config.Config, pinger db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		status, resp := check(r.Context(), cfg, pinger, logg)
		responses.WriteSuccessStatus(w, status, resp)
	}
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, pinger db.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		status, _ := check(r.Context(), cfg, pinger, logg)
		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		responses.WriteSuccessStatus(w, status, map[string]string{"status": state})
	}
}

func check(ctx context.Context, cfg *config.Config, pinger db.Pinger, logg *logger.Logger) (int, healthResponse) {
	resp := healthResponse{
		Status:   "ok",
		Env:      cfg.App.Env,
		Store:    cfg.Store.Driver,
		Database: "disabled",
		Time:     time.Now().UTC().Format(time.RFC3339),
	}
	if pinger == nil {
		return http.StatusOK, resp
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pinger.Ping(pingCtx); err != nil {
		if logg != nil {
			logg.Error(ctx, "health.db_ping_failed", err)
		}
		resp.Status = "degraded"
		resp.Database = "unavailable"
		return http.StatusServiceUnavailable, resp
	}
	resp.Database = "ok"
	return http.StatusOK, resp
}
