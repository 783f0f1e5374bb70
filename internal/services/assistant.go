package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"waste-route-service/internal/domain"
	"waste-route-service/internal/platform/logger"
	"waste-route-service/internal/platform/metrics"
	"waste-route-service/internal/platform/obs"
	"waste-route-service/internal/ports"

	"gonum.org/v1/gonum/stat"
)

var ErrEmptyQuery = errors.New("query is required")

// SystemInstruction frames every assistant conversation.
const SystemInstruction = `You are an intelligent assistant for WasteWise, a comprehensive waste management system.
You help users with queries about:
- Waste bin status and collection schedules
- Truck routing and assignment
- Zone management and optimization
- Festival mode operations
- Environmental impact and efficiency metrics
- Priority-based bin collection strategies

Provide concise, actionable responses focused on waste management operations.
If asked about metrics, reference real-time data when available.
Always suggest optimization opportunities and best practices for waste management.
Keep responses focused on waste management topics only.`

const allCities = "all"

// BuildAssistantContext summarizes bins and trucks for one city, or all
// cities when city is nil. If either store fails the zero context is
// returned with Available=false; the failure is logged, never returned.
func BuildAssistantContext(
	ctx context.Context,
	city *domain.City,
	bins ports.BinRepository,
	trucks ports.TruckRepository,
	log logger.Logger,
) domain.AssistantContext {
	label := allCities
	if city != nil {
		label = string(*city)
	}

	actx, err := loadAssistantContext(ctx, city, bins, trucks)
	if err != nil {
		metrics.AssistantContextUnavailable.Inc()
		if log != nil {
			log.Warnf("context unavailable req_id=%s city=%s: %v", obs.RequestID(ctx), label, err)
		}
		return domain.AssistantContext{City: label}
	}

	actx.City = label
	return actx
}

func loadAssistantContext(
	ctx context.Context,
	city *domain.City,
	binRepo ports.BinRepository,
	truckRepo ports.TruckRepository,
) (domain.AssistantContext, error) {
	var (
		bins   []domain.Bin
		trucks []domain.Truck
		err    error
	)

	if city != nil {
		bins, err = binRepo.FindByCity(ctx, *city)
	} else {
		bins, err = binRepo.List(ctx)
	}
	if err != nil {
		return domain.AssistantContext{}, fmt.Errorf("load bins: %w", err)
	}

	if city != nil {
		trucks, err = truckRepo.FindByCity(ctx, *city)
	} else {
		trucks, err = truckRepo.List(ctx)
	}
	if err != nil {
		return domain.AssistantContext{}, fmt.Errorf("load trucks: %w", err)
	}

	actx := domain.AssistantContext{TotalBins: len(bins), Available: true}

	levels := make([]float64, 0, len(bins))
	for _, b := range bins {
		levels = append(levels, float64(b.FillLevel))
		if b.FillLevel > domain.HighThreshold || b.Priority == domain.PriorityHigh {
			actx.BinsNeedingCollection++
		}
	}
	if len(levels) > 0 {
		actx.AverageFillLevel = int(math.Round(stat.Mean(levels, nil)))
	}

	for _, t := range trucks {
		if t.Active() {
			actx.ActiveTrucks++
		}
	}

	return actx, nil
}

// FormatPrompt combines live context with the user's query. Both the plain
// and the streaming paths use it.
func FormatPrompt(actx domain.AssistantContext, query string) string {
	var b strings.Builder
	b.WriteString("Current Waste Management System Context:\n")
	b.WriteString(actx.Summary())
	fmt.Fprintf(&b, "\n- Average Fill Level: %d%%", actx.AverageFillLevel)
	fmt.Fprintf(&b, "\n- Bins Needing Collection: %d", actx.BinsNeedingCollection)
	fmt.Fprintf(&b, "\n- Active Trucks: %d", actx.ActiveTrucks)
	fmt.Fprintf(&b, "\n- City Focus: %s", actx.City)
	fmt.Fprintf(&b, "\n\nUser Query: %s", query)
	b.WriteString("\n\nPlease provide a helpful response about waste management based on the current system state.")
	return b.String()
}

// AssistantAnswer is a completed assistant reply with the context it was built on.
type AssistantAnswer struct {
	Response string
	Context  domain.AssistantContext
}

// Assistant answers operator questions through a completion provider.
type Assistant struct {
	Bins     ports.BinRepository
	Trucks   ports.TruckRepository
	Provider ports.CompletionProvider
	Log      logger.Logger
}

func (a *Assistant) prepare(ctx context.Context, query, city string) (ports.CompletionRequest, domain.AssistantContext, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return ports.CompletionRequest{}, domain.AssistantContext{}, ErrEmptyQuery
	}

	var focus *domain.City
	if strings.TrimSpace(city) != "" {
		c, err := domain.ParseCity(city)
		if err != nil {
			return ports.CompletionRequest{}, domain.AssistantContext{}, err
		}
		focus = &c
	}

	actx := BuildAssistantContext(ctx, focus, a.Bins, a.Trucks, a.Log)
	req := ports.CompletionRequest{
		SystemInstruction: SystemInstruction,
		Prompt:            FormatPrompt(actx, query),
	}
	return req, actx, nil
}

// Ask returns the full completion for query. city may be empty.
func (a *Assistant) Ask(ctx context.Context, query, city string) (_ *AssistantAnswer, err error) {
	defer obs.Time(ctx, "assistant_ask")(&err)
	defer func() { countAssistant("query", err) }()

	req, actx, err := a.prepare(ctx, query, city)
	if err != nil {
		return nil, fmt.Errorf("assistant ask: %w", err)
	}

	text, err := a.Provider.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("assistant ask: complete: %w", err)
	}

	return &AssistantAnswer{Response: text, Context: actx}, nil
}

// AskStream forwards the completion to onChunk as it arrives and returns the
// context the prompt was built on.
func (a *Assistant) AskStream(
	ctx context.Context,
	query, city string,
	onChunk func(text string) error,
) (_ domain.AssistantContext, err error) {
	defer obs.Time(ctx, "assistant_stream")(&err)
	defer func() { countAssistant("stream", err) }()

	req, actx, err := a.prepare(ctx, query, city)
	if err != nil {
		return domain.AssistantContext{}, fmt.Errorf("assistant stream: %w", err)
	}

	if err := a.Provider.Stream(ctx, req, onChunk); err != nil {
		return actx, fmt.Errorf("assistant stream: %w", err)
	}

	return actx, nil
}

func countAssistant(mode string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AssistantRequests.WithLabelValues(mode, status).Inc()
}
