package dto

type CityResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Zones          []string `json:"zones"`
	FestivalImpact float64  `json:"festivalImpact"`
	Explanation    string   `json:"explanation"`
}

type ListCitiesResponse struct {
	Cities []CityResponse `json:"cities"`
}
