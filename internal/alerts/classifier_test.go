package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

func classifyOne(t *testing.T, snap domain.ProductSnapshot) Buckets {
	t.Helper()
	return Classify([]domain.ProductSnapshot{snap}, domain.DefaultThresholds())
}

func TestClassifyOutOfStock(t *testing.T) {
	// Zero stock wins regardless of velocity
	for _, velocity := range []float64{0, 0.5, 10} {
		buckets := classifyOne(t, domain.ProductSnapshot{ID: "p", Name: "P", Stock: 0, DailySalesVelocity: velocity})

		require.Len(t, buckets.OutOfStock, 1)
		assert.Empty(t, buckets.Critical)
		assert.Empty(t, buckets.Warning)

		product := buckets.OutOfStock[0]
		assert.Equal(t, domain.StatusOutOfStock, product.Status)
		require.NotNil(t, product.DaysUntilStockout)
		assert.Equal(t, 0, *product.DaysUntilStockout)
	}
}

func TestClassifyForecastCritical(t *testing.T) {
	// ceil(1/1.2) = 1 <= 3 days
	buckets := classifyOne(t, domain.ProductSnapshot{ID: "p", Name: "P", Stock: 1, DailySalesVelocity: 1.2})

	require.Len(t, buckets.Critical, 1)
	require.NotNil(t, buckets.Critical[0].DaysUntilStockout)
	assert.Equal(t, 1, *buckets.Critical[0].DaysUntilStockout)
}

func TestClassifyForecastOverridesRawStock(t *testing.T) {
	// Stock 4 alone would only warn, but ceil(4/1.5) = 3 days is critical
	buckets := classifyOne(t, domain.ProductSnapshot{ID: "p", Name: "P", Stock: 4, DailySalesVelocity: 1.5})

	require.Len(t, buckets.Critical, 1)
	assert.Empty(t, buckets.Warning)
	require.NotNil(t, buckets.Critical[0].DaysUntilStockout)
	assert.Equal(t, 3, *buckets.Critical[0].DaysUntilStockout)
}

func TestClassifyZeroVelocityUsesStockOnly(t *testing.T) {
	// No forecast: 3 > 2 so not critical, 3 <= 5 so warning
	buckets := classifyOne(t, domain.ProductSnapshot{ID: "p", Name: "P", Stock: 3, DailySalesVelocity: 0})

	assert.Empty(t, buckets.Critical)
	require.Len(t, buckets.Warning, 1)
	assert.Nil(t, buckets.Warning[0].DaysUntilStockout, "no forecast without velocity")
}

func TestClassifyHealthyProductsOmitted(t *testing.T) {
	buckets := classifyOne(t, domain.ProductSnapshot{ID: "p", Name: "P", Stock: 50, DailySalesVelocity: 1})

	assert.Empty(t, buckets.OutOfStock)
	assert.Empty(t, buckets.Critical)
	assert.Empty(t, buckets.Warning)
}

func TestClassifyBucketsAreDisjoint(t *testing.T) {
	snapshots := []domain.ProductSnapshot{
		{ID: "p1", Name: "A", Stock: 0, DailySalesVelocity: 2},
		{ID: "p2", Name: "B", Stock: 1, DailySalesVelocity: 1.2},
		{ID: "p3", Name: "C", Stock: 4, DailySalesVelocity: 1.5},
		{ID: "p4", Name: "D", Stock: 3, DailySalesVelocity: 0},
		{ID: "p5", Name: "E", Stock: 100, DailySalesVelocity: 0.1},
	}

	buckets := Classify(snapshots, domain.DefaultThresholds())

	seen := make(map[string]int)
	for _, p := range buckets.OutOfStock {
		seen[p.ID]++
	}
	for _, p := range buckets.Critical {
		seen[p.ID]++
	}
	for _, p := range buckets.Warning {
		seen[p.ID]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "product %s must appear in exactly one bucket", id)
	}
	assert.NotContains(t, seen, "p5", "healthy product must be omitted")
}

func TestClassifyPreservesInputOrder(t *testing.T) {
	snapshots := []domain.ProductSnapshot{
		{ID: "w1", Name: "A", Stock: 5, DailySalesVelocity: 0},
		{ID: "w2", Name: "B", Stock: 4, DailySalesVelocity: 0},
		{ID: "w3", Name: "C", Stock: 3, DailySalesVelocity: 0},
	}

	buckets := Classify(snapshots, domain.DefaultThresholds())

	require.Len(t, buckets.Warning, 3)
	assert.Equal(t, "w1", buckets.Warning[0].ID)
	assert.Equal(t, "w2", buckets.Warning[1].ID)
	assert.Equal(t, "w3", buckets.Warning[2].ID)
}

func TestClassifyCustomThresholds(t *testing.T) {
	thresholds := domain.Thresholds{CriticalStock: 10, CriticalDays: 1, WarningStock: 20, WarningDays: 2}

	buckets := Classify([]domain.ProductSnapshot{
		{ID: "p1", Name: "A", Stock: 8, DailySalesVelocity: 0},
		{ID: "p2", Name: "B", Stock: 15, DailySalesVelocity: 0},
	}, thresholds)

	assert.Len(t, buckets.Critical, 1)
	assert.Len(t, buckets.Warning, 1)
}
