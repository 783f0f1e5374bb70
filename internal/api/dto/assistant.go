package dto

type AssistantRequest struct {
	Query string `json:"query"`
	City  string `json:"city"`
}

type SystemMetrics struct {
	TotalBins             int  `json:"totalBins"`
	BinsNeedingCollection int  `json:"binsNeedingCollection"`
	AverageFillLevel      int  `json:"averageFillLevel"`
	ActiveTrucks          int  `json:"activeTrucks"`
	Live                  bool `json:"live"`
}

type AssistantContext struct {
	City          string        `json:"city"`
	SystemMetrics SystemMetrics `json:"systemMetrics"`
}

type AssistantResponse struct {
	Response string           `json:"response"`
	Context  AssistantContext `json:"context"`
}

// StreamChunk is one SSE data frame of a streamed answer.
type StreamChunk struct {
	Text  string `json:"text,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}
