package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fruitmandi/internal/core/apperror"
	"fruitmandi/internal/core/types"
)

// fakeLotRepo is an in-memory Repository. Lock semantics are irrelevant in
// a single-goroutine test; ordering must match the real implementation.
type fakeLotRepo struct {
	lots    []*Lot
	nextID  int64
	nextSeq int64
}

func newFakeLotRepo() *fakeLotRepo {
	return &fakeLotRepo{nextID: 1, nextSeq: 1}
}

func (r *fakeLotRepo) CreateLot(ctx context.Context, lot *Lot) error {
	lot.ID = r.nextID
	lot.Seq = r.nextSeq
	r.nextID++
	r.nextSeq++
	r.lots = append(r.lots, lot)
	return nil
}

func (r *fakeLotRepo) ListOpenLotsForUpdate(ctx context.Context, fruit string) ([]*Lot, error) {
	var out []*Lot
	for _, l := range r.lots {
		if l.Fruit == fruit && l.Remaining > 0 {
			out = append(out, l)
		}
	}
	sortLots(out)
	return out, nil
}

func (r *fakeLotRepo) UpdateRemaining(ctx context.Context, lotID int64, remaining int64) error {
	for _, l := range r.lots {
		if l.ID == lotID {
			l.Remaining = remaining
			return nil
		}
	}
	return apperror.NewNotFound("stock lot", lotID)
}

func (r *fakeLotRepo) ListLots(ctx context.Context, fruit string, asOf *time.Time) ([]*Lot, error) {
	var out []*Lot
	for _, l := range r.lots {
		if l.Fruit != fruit {
			continue
		}
		if asOf != nil && l.IntakeDate.After(*asOf) {
			continue
		}
		out = append(out, l)
	}
	sortLots(out)
	return out, nil
}

func (r *fakeLotRepo) TotalsByFruit(ctx context.Context) (map[string]int64, error) {
	totals := make(map[string]int64)
	for _, l := range r.lots {
		totals[l.Fruit] += l.Remaining
	}
	for fruit, n := range totals {
		if n == 0 {
			delete(totals, fruit)
		}
	}
	return totals, nil
}

func sortLots(lots []*Lot) {
	for i := 1; i < len(lots); i++ {
		for j := i; j > 0; j-- {
			a, b := lots[j-1], lots[j]
			if b.IntakeDate.Before(a.IntakeDate) || (b.IntakeDate.Equal(a.IntakeDate) && b.Seq < a.Seq) {
				lots[j-1], lots[j] = b, a
			} else {
				break
			}
		}
	}
}

func day(n int) time.Time {
	return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC)
}

func TestAddLot_Validation(t *testing.T) {
	engine := NewEngine(newFakeLotRepo())
	ctx := context.Background()

	_, err := engine.AddLot(ctx, "  ", 5, types.MustMoney("100"), day(1))
	assert.Error(t, err)

	_, err = engine.AddLot(ctx, "mango", 0, types.MustMoney("100"), day(1))
	assert.Error(t, err)

	_, err = engine.AddLot(ctx, "mango", 5, types.MustMoney("-1"), day(1))
	assert.Error(t, err)
}

func TestAddLot_NormalizesAndNeverMerges(t *testing.T) {
	repo := newFakeLotRepo()
	engine := NewEngine(repo)
	ctx := context.Background()

	first, err := engine.AddLot(ctx, " mango ", 10, types.MustMoney("500"), day(1))
	require.NoError(t, err)
	assert.Equal(t, "MANGO", first.Fruit)
	assert.Equal(t, int64(10), first.Remaining)

	// Same fruit, same day: still a distinct lot.
	second, err := engine.AddLot(ctx, "MANGO", 5, types.MustMoney("500"), day(1))
	require.NoError(t, err)
	assert.Len(t, repo.lots, 2)
	assert.Greater(t, second.Seq, first.Seq)
}

func TestReduceFIFO_OrderAndTieBreak(t *testing.T) {
	repo := newFakeLotRepo()
	engine := NewEngine(repo)
	ctx := context.Background()

	// Two same-day lots and a later one; seq breaks the same-day tie.
	a, _ := engine.AddLot(ctx, "MANGO", 5, types.MustMoney("500"), day(1))
	b, _ := engine.AddLot(ctx, "MANGO", 5, types.MustMoney("510"), day(1))
	c, _ := engine.AddLot(ctx, "MANGO", 5, types.MustMoney("600"), day(2))

	require.NoError(t, engine.ReduceFIFO(ctx, "MANGO", 7))

	assert.Equal(t, int64(0), a.Remaining)
	assert.Equal(t, int64(3), b.Remaining)
	assert.Equal(t, int64(5), c.Remaining)
}

func TestReduceFIFO_InsufficientLeavesLotsUntouched(t *testing.T) {
	repo := newFakeLotRepo()
	engine := NewEngine(repo)
	ctx := context.Background()

	a, _ := engine.AddLot(ctx, "MANGO", 10, types.MustMoney("500"), day(1))
	b, _ := engine.AddLot(ctx, "MANGO", 5, types.MustMoney("600"), day(2))

	err := engine.ReduceFIFO(ctx, "MANGO", 16)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, int64(16), appErr.Details["requested"])
	assert.Equal(t, int64(15), appErr.Details["available"])
	assert.Equal(t, int64(1), appErr.Details["short_by"])

	assert.Equal(t, int64(10), a.Remaining)
	assert.Equal(t, int64(5), b.Remaining)
}

func TestReduceFIFO_RejectsNonPositive(t *testing.T) {
	engine := NewEngine(newFakeLotRepo())

	err := engine.ReduceFIFO(context.Background(), "MANGO", 0)
	assert.Error(t, err)
}

func TestWeightedAvgCost_EmptyIsZero(t *testing.T) {
	engine := NewEngine(newFakeLotRepo())

	cost, err := engine.WeightedAvgCost(context.Background(), "MANGO", nil)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

func TestWeightedAvgCost_IgnoresDepletion(t *testing.T) {
	repo := newFakeLotRepo()
	engine := NewEngine(repo)
	ctx := context.Background()

	_, _ = engine.AddLot(ctx, "MANGO", 10, types.MustMoney("500"), day(1))
	_, _ = engine.AddLot(ctx, "MANGO", 5, types.MustMoney("600"), day(2))

	before, err := engine.WeightedAvgCost(ctx, "MANGO", nil)
	require.NoError(t, err)

	// Valuation weights total historical intake, so depleting boxes must
	// not move the average.
	require.NoError(t, engine.ReduceFIFO(ctx, "MANGO", 12))

	after, err := engine.WeightedAvgCost(ctx, "MANGO", nil)
	require.NoError(t, err)
	assert.True(t, before.Equal(after))
	assert.Equal(t, "533.33", after.Round(2).String())
}

func TestWeightedAvgCost_AsOfFiltersLaterIntakes(t *testing.T) {
	repo := newFakeLotRepo()
	engine := NewEngine(repo)
	ctx := context.Background()

	_, _ = engine.AddLot(ctx, "MANGO", 10, types.MustMoney("500"), day(1))
	_, _ = engine.AddLot(ctx, "MANGO", 5, types.MustMoney("600"), day(2))

	asOf := day(1)
	cost, err := engine.WeightedAvgCost(ctx, "MANGO", &asOf)
	require.NoError(t, err)
	assert.Equal(t, "500", cost.String())
}

func TestDepletionAndValuationScenario(t *testing.T) {
	repo := newFakeLotRepo()
	engine := NewEngine(repo)
	ctx := context.Background()

	day1, _ := engine.AddLot(ctx, "MANGO", 10, types.MustMoney("500"), day(1))
	day2, _ := engine.AddLot(ctx, "MANGO", 5, types.MustMoney("600"), day(2))

	require.NoError(t, engine.ReduceFIFO(ctx, "MANGO", 12))
	assert.Equal(t, int64(0), day1.Remaining)
	assert.Equal(t, int64(3), day2.Remaining)

	avg, err := engine.WeightedAvgCost(ctx, "MANGO", nil)
	require.NoError(t, err)

	// (10*500 + 5*600) / 15 boxes; 12 boxes of COGS round to 6400.00.
	cogs := types.MulBoxes(avg, 12)
	assert.Equal(t, "6400", cogs.String())

	totals, err := engine.CurrentStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals["MANGO"])
}

func TestCurrentStock_ExcludesExhaustedFruits(t *testing.T) {
	repo := newFakeLotRepo()
	engine := NewEngine(repo)
	ctx := context.Background()

	_, _ = engine.AddLot(ctx, "MANGO", 5, types.MustMoney("500"), day(1))
	_, _ = engine.AddLot(ctx, "BANANA", 3, types.MustMoney("150"), day(1))
	require.NoError(t, engine.ReduceFIFO(ctx, "BANANA", 3))

	totals, err := engine.CurrentStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"MANGO": 5}, totals)
}
