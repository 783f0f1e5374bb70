package services

import (
	"context"
	"testing"
	"waste-route-service/internal/adapters/repositories"
	"waste-route-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeBins(t *testing.T) {
	stats := SummarizeBins(indoreBins())

	assert.Equal(t, 10, stats.TotalBins)
	assert.Equal(t, 7, stats.BinsAtRisk)
	assert.Equal(t, 9, stats.BinsNotCritical)
	assert.Equal(t, 1, stats.TrucksRequired)
	assert.Equal(t, 90, stats.Efficiency)
}

func TestSummarizeBinsEmpty(t *testing.T) {
	stats := SummarizeBins(nil)
	assert.Equal(t, domain.DashboardStats{}, stats)
}

func TestSummarizeBinsNoneCritical(t *testing.T) {
	bins := []domain.Bin{bin("A", 89), bin("B", 10), bin("C", 0), bin("D", 76)}
	stats := SummarizeBins(bins)

	assert.Equal(t, 100, stats.Efficiency)
	assert.Equal(t, 4, stats.BinsNotCritical)
	assert.Equal(t, 2, stats.BinsAtRisk)
	assert.Equal(t, 1, stats.TrucksRequired)
}

func TestSummarizeBinsTrucksRequired(t *testing.T) {
	bins := make([]domain.Bin, 151)
	for i := range bins {
		bins[i] = bin("B", 95)
	}
	stats := SummarizeBins(bins)
	assert.Equal(t, 2, stats.TrucksRequired)
	assert.Equal(t, 0, stats.Efficiency)
	assert.Equal(t, 151, stats.BinsAtRisk)
}

func TestBuildDashboard(t *testing.T) {
	mem := repositories.NewMemoryStore()
	saveBins(t, mem, indoreBins())

	d, err := BuildDashboard(context.Background(), domain.CityIndore, mem.Bins())
	require.NoError(t, err)
	assert.Equal(t, "Indore", d.CityName)
	assert.Equal(t, []string{"Commercial", "Industrial"}, d.Zones)
	assert.InDelta(t, 1.4, d.FestivalImpact, 1e-9)
	assert.Len(t, d.Bins, 10)
	assert.Equal(t, 90, d.Stats.Efficiency)

	empty, err := BuildDashboard(context.Background(), domain.CitySurat, mem.Bins())
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Stats.TotalBins)
	assert.Equal(t, 0, empty.Stats.TrucksRequired)

	_, err = BuildDashboard(context.Background(), "pune", mem.Bins())
	assert.ErrorIs(t, err, domain.ErrUnsupportedCity)
}
