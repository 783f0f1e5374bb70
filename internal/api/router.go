package api

import (
	"net/http"
	"waste-route-service/internal/api/handlers"
	"waste-route-service/internal/platform/metrics"
	"waste-route-service/internal/ports"
	"waste-route-service/internal/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP layer needs. Assistant may be nil.
type Deps struct {
	Bins       ports.BinRepository
	Fleet      *services.Fleet
	FillLevels *services.FillLevelService
	Events     ports.BinEventBroker
	Assistant  *services.Assistant
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	binHandler := &handlers.BinHandler{Repo: deps.Bins, FillLevels: deps.FillLevels}
	routeHandler := &handlers.RouteHandler{Bins: deps.Bins, Fleet: deps.Fleet}
	dashboardHandler := &handlers.DashboardHandler{Bins: deps.Bins}
	assistantHandler := &handlers.AssistantHandler{Assistant: deps.Assistant}
	liveHandler := &handlers.LiveHandler{Events: deps.Events}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /cities", handlers.ListCities)
	mux.HandleFunc("GET /cities/{city}", handlers.GetCity)
	mux.HandleFunc("GET /cities/{city}/bins", binHandler.ListByCity)
	mux.HandleFunc("GET /cities/{city}/bins/live", liveHandler.Stream)
	mux.HandleFunc("POST /bins/{binId}/fill-level", binHandler.UpdateFillLevel)

	mux.HandleFunc("GET /routes/{city}", routeHandler.Plan)
	mux.HandleFunc("GET /dashboard/{city}", dashboardHandler.Get)

	mux.HandleFunc("POST /ai/query", assistantHandler.Query)
	mux.HandleFunc("POST /ai/query-stream", assistantHandler.Stream)

	return requestIDMiddleware(loggingMiddleware(mux))
}
