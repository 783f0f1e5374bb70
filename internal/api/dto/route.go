package dto

type RouteStopResponse struct {
	ID        string `json:"id"`
	BinID     string `json:"binId"`
	Location  string `json:"location"`
	FillLevel int    `json:"fillLevel"`
	Priority  string `json:"priority"`
	StopOrder int    `json:"stopOrder"`
}

type TruckRouteResponse struct {
	// ID is null for the festival support truck, which is not stored.
	ID            *string             `json:"id"`
	Name          string              `json:"name"`
	Zone          string              `json:"zone"`
	Color         string              `json:"color"`
	Bins          []RouteStopResponse `json:"bins"`
	Distance      string              `json:"distance"`
	EstimatedTime string              `json:"estimatedTime"`
	Stops         int                 `json:"stops"`
}

type RoutesResponse struct {
	City         string               `json:"city"`
	Trucks       []TruckRouteResponse `json:"trucks"`
	Explanation  string               `json:"explanation"`
	FestivalMode bool                 `json:"festivalMode"`
}
