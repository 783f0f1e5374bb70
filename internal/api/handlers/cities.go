package handlers

import (
	"net/http"
	"waste-route-service/internal/api/dto"
	"waste-route-service/internal/domain"
)

func toCityResponse(p domain.CityProfile) dto.CityResponse {
	return dto.CityResponse{
		ID:             string(p.City),
		Name:           p.Name,
		Zones:          p.Zones,
		FestivalImpact: p.FestivalImpact,
		Explanation:    p.Explanation,
	}
}

func ListCities(w http.ResponseWriter, r *http.Request) {
	res := dto.ListCitiesResponse{Cities: make([]dto.CityResponse, 0, len(domain.Cities))}
	for _, c := range domain.Cities {
		p, err := c.Profile()
		if err != nil {
			writeServiceError(w, r, "list cities", err)
			return
		}
		res.Cities = append(res.Cities, toCityResponse(p))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// GetCity answers 404 rather than 400 for an unknown city: the city is the
// resource being looked up.
func GetCity(w http.ResponseWriter, r *http.Request) {
	city, err := domain.ParseCity(r.PathValue("city"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, "city not found")
		return
	}
	p, err := city.Profile()
	if err != nil {
		writeServiceError(w, r, "get city", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toCityResponse(p))
}
