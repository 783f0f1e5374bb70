package dto

type DashboardResponse struct {
	City           string        `json:"city"`
	TotalBins      int           `json:"totalBins"`
	BinsAtRisk     int           `json:"binsAtRisk"`
	TrucksRequired int           `json:"trucksRequired"`
	Efficiency     int           `json:"efficiency"`
	Zones          []string      `json:"zones"`
	FestivalImpact float64       `json:"festivalImpact"`
	Stats          []BinResponse `json:"stats"`
}
