package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"waste-route-service/internal/api/dto"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/services"
)

// AssistantHandler serves the operations assistant. With a nil Assistant
// (no API key configured) every request is answered 503.
type AssistantHandler struct {
	Assistant *services.Assistant
}

func toAssistantContext(actx domain.AssistantContext) dto.AssistantContext {
	return dto.AssistantContext{
		City: actx.City,
		SystemMetrics: dto.SystemMetrics{
			TotalBins:             actx.TotalBins,
			BinsNeedingCollection: actx.BinsNeedingCollection,
			AverageFillLevel:      actx.AverageFillLevel,
			ActiveTrucks:          actx.ActiveTrucks,
			Live:                  actx.Available,
		},
	}
}

func (h *AssistantHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if h.Assistant == nil {
		writeError(w, r, http.StatusServiceUnavailable, "assistant is not configured")
		return false
	}
	return true
}

func (h *AssistantHandler) Query(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	var req dto.AssistantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ans, err := h.Assistant.Ask(r.Context(), req.Query, req.City)
	if err != nil {
		writeServiceError(w, r, "assistant query", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.AssistantResponse{
		Response: ans.Response,
		Context:  toAssistantContext(ans.Context),
	})
}

// Stream answers as server-sent events: one {"text"} frame per chunk, then
// {"done":true}. Errors before the first chunk get a normal JSON error
// response; later errors end the stream with an {"error"} frame.
func (h *AssistantHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}

	var req dto.AssistantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	started := false
	send := func(frame dto.StreamChunk) error {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		b, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	_, err := h.Assistant.AskStream(r.Context(), req.Query, req.City, func(text string) error {
		if text == "" {
			return nil
		}
		return send(dto.StreamChunk{Text: text})
	})
	if err != nil {
		if !started {
			writeServiceError(w, r, "assistant stream", err)
			return
		}
		log.Errorf("assistant stream failed: req_id=%s err=%v", requestID(r), err)
		_ = send(dto.StreamChunk{Error: "stream interrupted"})
		return
	}

	_ = send(dto.StreamChunk{Done: true})
}
