package handlers

import (
	"net/http"
	"waste-route-service/internal/api/dto"
	"waste-route-service/internal/ports"
	"waste-route-service/internal/services"
)

type DashboardHandler struct {
	Bins ports.BinRepository
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	city, ok := cityParam(w, r)
	if !ok {
		return
	}

	d, err := services.BuildDashboard(r.Context(), city, h.Bins)
	if err != nil {
		writeServiceError(w, r, "build dashboard", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.DashboardResponse{
		City:           d.CityName,
		TotalBins:      d.Stats.TotalBins,
		BinsAtRisk:     d.Stats.BinsAtRisk,
		TrucksRequired: d.Stats.TrucksRequired,
		Efficiency:     d.Stats.Efficiency,
		Zones:          d.Zones,
		FestivalImpact: d.FestivalImpact,
		Stats:          toBinResponses(d.Bins),
	})
}
