package dto

import "time"

type BinResponse struct {
	ID            string     `json:"id"`
	BinID         string     `json:"binId"`
	Location      string     `json:"location"`
	City          string     `json:"city"`
	Zone          string     `json:"zone"`
	FillLevel     int        `json:"fillLevel"`
	Priority      string     `json:"priority"`
	Status        string     `json:"status"`
	TruckAssigned *string    `json:"truckAssigned"`
	Capacity      int        `json:"capacity"`
	LastCollected *time.Time `json:"lastCollected"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type ListBinsResponse struct {
	City string        `json:"city"`
	Bins []BinResponse `json:"bins"`
}

// FillLevelRequest carries either a relative Delta or an absolute FillLevel.
type FillLevelRequest struct {
	Delta     *int `json:"delta"`
	FillLevel *int `json:"fillLevel"`
}
