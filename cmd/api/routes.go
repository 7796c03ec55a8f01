package main

import (
	"net/http"

	"github.com/talentbridge/backend/internal/auth"
	"github.com/talentbridge/backend/internal/middleware"
	"github.com/talentbridge/backend/internal/pipeline"
	"github.com/talentbridge/backend/internal/unlock"
)

// registerRoutes wires the HTTP surface. Every route except the health check
// sits behind bearer auth; role checks stay with the handlers.
func registerRoutes(
	mux *http.ServeMux,
	authSvc auth.Service,
	unlockHandler *unlock.Handler,
	pipelineHandler *pipeline.Handler,
) {
	authed := middleware.BearerAuth(authSvc)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// No method pattern: the handler answers non-POST with a JSON 405 body.
	mux.Handle("/unlock-profile", authed(http.HandlerFunc(unlockHandler.UnlockProfile)))
	mux.Handle("GET /unlocked-profiles", authed(http.HandlerFunc(unlockHandler.ListUnlocked)))

	mux.Handle("POST /applications/{id}/status", authed(http.HandlerFunc(pipelineHandler.ManualTransition)))
	mux.Handle("GET /applications/{id}/history", authed(http.HandlerFunc(pipelineHandler.GetHistory)))

	// Chat subsystem ingestion hook. Service-to-service, not user-facing, so
	// it skips bearer auth; the payload carries its own sender provenance.
	mux.HandleFunc("POST /hooks/messages", pipelineHandler.InboundMessage)
}
