package allocation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products []ProductVolume
	sales    []SalesRecord
	stocks   []StockRecord
	err      error
}

func (m *memoryRepo) ActiveProducts(_ context.Context, productIDs []int64) ([]ProductVolume, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(productIDs) == 0 {
		return m.products, nil
	}
	want := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
	}
	var out []ProductVolume
	for _, p := range m.products {
		if want[p.ProductID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryRepo) SalesLast7Days(_ context.Context, _, _ []int64) ([]SalesRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sales, nil
}

func (m *memoryRepo) StockOnHand(_ context.Context, _, _ []int64) ([]StockRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stocks, nil
}

type stubSuggester struct {
	allocations []Allocation
	err         error
	called      bool
}

func (s *stubSuggester) Suggest(_ context.Context, _ SuggestionRequest) ([]Allocation, error) {
	s.called = true
	return s.allocations, s.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func qtyFor(t *testing.T, allocations []Allocation, branchID, productID int64) int {
	t.Helper()
	for _, a := range allocations {
		if a.BranchID == branchID && a.ProductID == productID {
			return a.SuggestedQty
		}
	}
	t.Fatalf("no allocation for branch %d product %d", branchID, productID)
	return 0
}

func TestCalculateBaselineWithNoHistory(t *testing.T) {
	// No sales, no stock: every requested product gets the PAR level. The
	// volumes put each branch at 4.5 m³, past the scaling threshold.
	repo := &memoryRepo{products: []ProductVolume{
		{ProductID: 1, VolumeM3: 0.04},
		{ProductID: 2, VolumeM3: 0.05},
	}}
	engine := NewEngine(testLogger(), repo, nil)

	got, err := engine.Calculate(context.Background(), []int64{10, 11}, []int64{1, 2}, 0)
	require.NoError(t, err)
	require.Len(t, got, 4)
	for _, a := range got {
		assert.Equal(t, ParLevel, a.SuggestedQty)
		assert.GreaterOrEqual(t, a.SuggestedQty, 0)
	}
}

func TestCalculateSalesVelocityFormula(t *testing.T) {
	// 7-day sales of 40 and stock of 5: floor(40*1.1) - 5 = 39. At 0.09 m³
	// per unit that is 3.51 m³, above the 40% fill floor, so no scaling.
	repo := &memoryRepo{
		products: []ProductVolume{{ProductID: 1, VolumeM3: 0.09}},
		sales:    []SalesRecord{{BranchID: 10, ProductID: 1, Qty: 40}},
		stocks:   []StockRecord{{BranchID: 10, ProductID: 1, Qty: 5}},
	}
	engine := NewEngine(testLogger(), repo, nil)

	got, err := engine.Calculate(context.Background(), []int64{10}, nil, 12)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 39, got[0].SuggestedQty)
}

func TestCalculateStockWithoutSalesTopsUpToPar(t *testing.T) {
	repo := &memoryRepo{
		products: []ProductVolume{{ProductID: 1, VolumeM3: 0.09}},
		stocks:   []StockRecord{{BranchID: 10, ProductID: 1, Qty: 12}},
	}
	engine := NewEngine(testLogger(), repo, nil)

	got, err := engine.Calculate(context.Background(), []int64{10}, nil, 12)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ParLevel-12, got[0].SuggestedQty)
}

func TestCalculateNeverReturnsNegativeQuantities(t *testing.T) {
	// Stock far above demand.
	repo := &memoryRepo{
		products: []ProductVolume{{ProductID: 1, VolumeM3: 0.06}},
		sales:    []SalesRecord{{BranchID: 10, ProductID: 1, Qty: 10}},
		stocks:   []StockRecord{{BranchID: 10, ProductID: 1, Qty: 500}},
	}
	engine := NewEngine(testLogger(), repo, nil)

	got, err := engine.Calculate(context.Background(), []int64{10}, nil, 12)
	require.NoError(t, err)
	for _, a := range got {
		assert.GreaterOrEqual(t, a.SuggestedQty, 0)
	}
}

func TestCalculateScalesUnderfilledBranch(t *testing.T) {
	// One product, tiny velocity: 5 units of 0.01 m³ = 0.05 m³, far below
	// 40% of the 8.4 m³ target. Post-scaling volume must reach the target.
	repo := &memoryRepo{
		products: []ProductVolume{{ProductID: 1, VolumeM3: 0.01}},
		sales:    []SalesRecord{{BranchID: 10, ProductID: 1, Qty: 5}},
		stocks:   []StockRecord{{BranchID: 10, ProductID: 1, Qty: 0}},
	}
	engine := NewEngine(testLogger(), repo, nil)

	got, err := engine.Calculate(context.Background(), []int64{10}, nil, 12)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// 8.4 / 0.05 inflates the branch by a factor of 168: round(5*168) = 840.
	assert.Equal(t, 840, got[0].SuggestedQty)

	target := 12 * TargetCapacityPct
	total := float64(got[0].SuggestedQty) * 0.01
	assert.GreaterOrEqual(t, total, target*MinFillRatio)
}

func TestCalculateDoesNotScaleWellFilledBranch(t *testing.T) {
	// 100 units of 0.06 m³ = 6 m³, above 40% of the 8.4 m³ target.
	repo := &memoryRepo{
		products: []ProductVolume{{ProductID: 1, VolumeM3: 0.06}},
		sales:    []SalesRecord{{BranchID: 10, ProductID: 1, Qty: 91}},
		stocks:   []StockRecord{{BranchID: 10, ProductID: 1, Qty: 0}},
	}
	engine := NewEngine(testLogger(), repo, nil)

	got, err := engine.Calculate(context.Background(), []int64{10}, nil, 12)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].SuggestedQty)
}

func TestCalculatePrefersSuggesterResult(t *testing.T) {
	repo := &memoryRepo{products: []ProductVolume{{ProductID: 1, VolumeM3: 0.05}}}
	suggester := &stubSuggester{allocations: []Allocation{
		{BranchID: 10, ProductID: 1, SuggestedQty: 120},
	}}
	engine := NewEngine(testLogger(), repo, suggester)

	got, err := engine.Calculate(context.Background(), []int64{10}, []int64{1}, 12)
	require.NoError(t, err)
	require.True(t, suggester.called)
	require.Len(t, got, 1)
	assert.Equal(t, 120, got[0].SuggestedQty)
}

func TestCalculateFiltersSuggesterNoise(t *testing.T) {
	repo := &memoryRepo{products: []ProductVolume{{ProductID: 1, VolumeM3: 0.05}}}
	suggester := &stubSuggester{allocations: []Allocation{
		{BranchID: 10, ProductID: 1, SuggestedQty: 80},
		{BranchID: 99, ProductID: 1, SuggestedQty: 10},  // branch not requested
		{BranchID: 10, ProductID: 42, SuggestedQty: 10}, // unknown product
		{BranchID: 10, ProductID: 1, SuggestedQty: 0},   // non-positive qty
	}}
	engine := NewEngine(testLogger(), repo, suggester)

	got, err := engine.Calculate(context.Background(), []int64{10}, []int64{1}, 12)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(10), got[0].BranchID)
	assert.Equal(t, 80, got[0].SuggestedQty)
}

func TestCalculateSuggesterFailureFallsThrough(t *testing.T) {
	repo := &memoryRepo{
		products: []ProductVolume{{ProductID: 1, VolumeM3: 0.09}},
		sales:    []SalesRecord{{BranchID: 10, ProductID: 1, Qty: 40}},
		stocks:   []StockRecord{{BranchID: 10, ProductID: 1, Qty: 5}},
	}
	suggester := &stubSuggester{err: errors.New("gateway timeout")}
	engine := NewEngine(testLogger(), repo, suggester)

	got, err := engine.Calculate(context.Background(), []int64{10}, nil, 12)
	require.NoError(t, err, "suggester failure must not surface to the caller")
	require.Len(t, got, 1)
	assert.Equal(t, 39, got[0].SuggestedQty)
}

func TestCalculateVolumeFillWhenNoSignalAtAll(t *testing.T) {
	// Active catalogue, but no sales, no stock, and no explicitly requested
	// products: the velocity strategy yields nothing and the volume fill
	// spreads the target evenly.
	repo := &memoryRepo{products: []ProductVolume{
		{ProductID: 1, VolumeM3: 0.02},
		{ProductID: 2, VolumeM3: 0.02},
	}}
	engine := NewEngine(testLogger(), repo, nil)

	got, err := engine.Calculate(context.Background(), []int64{10}, nil, 12)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Target 8.4 m³ split over two products, 4.2 m³ each at 0.02 m³/unit.
	assert.Equal(t, 210, qtyFor(t, got, 10, 1))
	assert.Equal(t, 210, qtyFor(t, got, 10, 2))
}

func TestCalculateRepositoryFailureSurfaces(t *testing.T) {
	repo := &memoryRepo{err: errors.New("connection refused")}
	engine := NewEngine(testLogger(), repo, nil)

	_, err := engine.Calculate(context.Background(), []int64{10}, nil, 12)
	require.Error(t, err)
}
