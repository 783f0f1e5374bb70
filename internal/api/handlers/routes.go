package handlers

import (
	"net/http"
	"waste-route-service/internal/api/dto"
	"waste-route-service/internal/ports"
	"waste-route-service/internal/services"
)

type RouteHandler struct {
	Bins  ports.BinRepository
	Fleet *services.Fleet
}

// Plan assigns the city's bins to its trucks. ?festival=true switches to
// festival mode; any other value means normal operations.
func (h *RouteHandler) Plan(w http.ResponseWriter, r *http.Request) {
	city, ok := cityParam(w, r)
	if !ok {
		return
	}

	req := services.PlanRoutesRequest{
		City:         city,
		FestivalMode: r.URL.Query().Get("festival") == "true",
	}

	plan, err := services.PlanRoutes(r.Context(), req, h.Bins, h.Fleet)
	if err != nil {
		writeServiceError(w, r, "plan routes", err)
		return
	}

	res := dto.RoutesResponse{
		City:         plan.CityName,
		Trucks:       make([]dto.TruckRouteResponse, 0, len(plan.Trucks)),
		Explanation:  plan.Explanation,
		FestivalMode: plan.FestivalMode,
	}
	for _, it := range plan.Trucks {
		stops := make([]dto.RouteStopResponse, 0, len(it.Stops))
		for _, s := range it.Stops {
			stops = append(stops, dto.RouteStopResponse{
				ID:        s.BinRef,
				BinID:     s.BinID,
				Location:  s.Location,
				FillLevel: s.FillLevel,
				Priority:  string(s.Priority),
				StopOrder: s.StopOrder,
			})
		}

		var id *string
		if !it.Festival {
			truckID := it.TruckID
			id = &truckID
		}

		res.Trucks = append(res.Trucks, dto.TruckRouteResponse{
			ID:            id,
			Name:          it.Name,
			Zone:          it.Zone,
			Color:         it.Color,
			Bins:          stops,
			Distance:      it.Distance(),
			EstimatedTime: it.EstimatedTime(),
			Stops:         it.StopCount(),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}
