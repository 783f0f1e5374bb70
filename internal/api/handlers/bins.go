package handlers

import (
	"net/http"
	"strings"
	"waste-route-service/internal/api/dto"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/ports"
	"waste-route-service/internal/services"
)

type BinHandler struct {
	Repo       ports.BinRepository
	FillLevels *services.FillLevelService
}

func toBinResponse(b domain.Bin) dto.BinResponse {
	return dto.BinResponse{
		ID:            b.ID,
		BinID:         b.BinID,
		Location:      b.Location,
		City:          string(b.City),
		Zone:          b.Zone,
		FillLevel:     b.FillLevel,
		Priority:      string(b.Priority),
		Status:        string(b.Status),
		TruckAssigned: b.TruckAssigned,
		Capacity:      b.Capacity,
		LastCollected: b.LastCollected,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBinResponses(bins []domain.Bin) []dto.BinResponse {
	out := make([]dto.BinResponse, 0, len(bins))
	for _, b := range bins {
		out = append(out, toBinResponse(b))
	}
	return out
}

func (h *BinHandler) ListByCity(w http.ResponseWriter, r *http.Request) {
	city, ok := cityParam(w, r)
	if !ok {
		return
	}

	bins, err := h.Repo.FindByCity(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, "list bins", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListBinsResponse{City: string(city), Bins: toBinResponses(bins)})
}

// UpdateFillLevel applies a manual reading. Exactly one of delta and
// fillLevel must be present.
func (h *BinHandler) UpdateFillLevel(w http.ResponseWriter, r *http.Request) {
	var req dto.FillLevelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if (req.Delta == nil) == (req.FillLevel == nil) {
		writeError(w, r, http.StatusBadRequest, "exactly one of delta or fillLevel is required")
		return
	}

	upd := services.FillLevelUpdate{
		BinID:  strings.TrimSpace(r.PathValue("binId")),
		Level:  req.FillLevel,
		Source: services.SourceAPI,
	}
	if req.Delta != nil {
		upd.Delta = *req.Delta
	}

	bin, err := h.FillLevels.UpdateFillLevel(r.Context(), upd)
	if err != nil && bin == nil {
		writeServiceError(w, r, "update fill level", err)
		return
	}
	if err != nil {
		// Stored, but listeners were not notified.
		log.Warnf("update fill level: req_id=%s %v", requestID(r), err)
	}

	writeJSON(w, r, http.StatusOK, toBinResponse(*bin))
}
