package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/planner"
	"ai-pack-planner/internal/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLists struct {
	mu       sync.Mutex
	failKind gear.Kind
	distErr  error
	existing []string
	targets  map[gear.Kind]float64
}

func (f *fakeLists) Distribution(_ context.Context, _ trip.Parameters, maxWeight float64) (gear.WeightBudget, error) {
	if f.distErr != nil {
		return planner.FallbackBudget(maxWeight), f.distErr
	}
	return gear.WeightBudget{Clothing: 8, Cooking: 5, Sleeping: 10, Food: 12, Misc: 6}, nil
}

func (f *fakeLists) Category(_ context.Context, kind gear.Kind, _ trip.Parameters, target float64, existing []string) (*gear.CategoryList, error) {
	f.mu.Lock()
	if f.targets == nil {
		f.targets = map[gear.Kind]float64{}
	}
	f.targets[kind] = target
	if kind == gear.Misc {
		f.existing = existing
	}
	f.mu.Unlock()

	if kind == f.failKind {
		return nil, &planner.GenerationError{Stage: string(kind), Err: errors.New("backend down")}
	}
	if kind == gear.Food {
		return gear.Recalculate(&gear.CategoryList{Kind: gear.Food, Days: []gear.FoodDay{{
			Day:   1,
			Meals: map[gear.MealSlot]*gear.Meal{gear.Breakfast: {Item: "Oatmeal", Weight: 0.3, Price: 2, Calories: 300}},
		}}}), nil
	}
	items := map[gear.Kind][]gear.Item{
		gear.Clothing: {{Name: "Rain Jacket", Weight: 0.8, Price: 120}},
		gear.Cooking:  {{Name: "Titanium Pot", Weight: 0.3, Price: 40}},
		gear.Sleeping: {{Name: "Sleeping Bag", Weight: 2.1, Price: 300}},
		gear.Misc:     {{Name: "rain jacket", Weight: 0.8, Price: 120}, {Name: "Headlamp", Weight: 0.2, Price: 30}},
	}
	return gear.Recalculate(&gear.CategoryList{Kind: kind, Items: items[kind]}), nil
}

type fakeEnricher struct {
	block chan struct{}
}

func (f *fakeEnricher) Enrich(ctx context.Context, list *gear.CategoryList) (planner.EnrichResult, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return planner.EnrichResult{List: list, Links: []gear.GroundingLink{}}, ctx.Err()
		}
	}
	links := []gear.GroundingLink{{URI: "https://example.com/" + string(list.Kind), Title: string(list.Kind)}}
	return planner.EnrichResult{List: list.WithLinks(links), Links: links, Attempts: 1}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Notify(_ context.Context, msg string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return nil
}

func validParams() trip.Parameters {
	p := trip.Defaults()
	p.Age = 30
	p.BodyWeight = 180
	p.Days = 3
	return p
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	n := &recordingNotifier{}
	w := New(&fakeLists{}, WithNotifier(n))

	p := validParams()
	p.Age = 0
	run, err := w.Submit(context.Background(), p)
	assert.Nil(t, run)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "age")
	assert.Equal(t, []string{MsgFixInputs}, n.msgs)
	assert.Equal(t, PhaseIdle, w.Store().Snapshot().Phase)
}

func TestSubmitCompletesAllCategories(t *testing.T) {
	n := &recordingNotifier{}
	lists := &fakeLists{}
	w := New(lists, WithNotifier(n), WithEnricher(&fakeEnricher{}))

	run, err := w.Submit(context.Background(), validParams())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	st := run.Wait(context.Background())
	assert.Equal(t, PhaseComplete, st.Phase)
	assert.False(t, st.Loading)
	assert.Equal(t, 45.0, st.MaxWeight)
	require.NotNil(t, st.Budget)
	assert.Equal(t, 8.0, st.Budget.Clothing)
	assert.Equal(t, 8.0, lists.targets[gear.Clothing])
	assert.Equal(t, 6.0, lists.targets[gear.Misc])

	for _, k := range gear.Kinds {
		require.NotNil(t, st.Lists[k], k)
		require.Len(t, st.Links[k], 1, k)
	}
	assert.Empty(t, st.Enriching)
	assert.Equal(t, "https://example.com/sleeping", st.Lists[gear.Sleeping].Items[0].Link)

	// misc sees the primary items and drops its near-duplicate
	assert.Contains(t, lists.existing, "Rain Jacket")
	assert.Contains(t, lists.existing, "Oatmeal")
	require.Len(t, st.Lists[gear.Misc].Items, 1)
	assert.Equal(t, "Headlamp", st.Lists[gear.Misc].Items[0].Name)
	assert.Equal(t, 0.2, st.Lists[gear.Misc].TotalWeight)

	assert.Equal(t, []string{MsgStepWeight, MsgStepBudget, MsgStepCategories, MsgStepMisc, MsgDone}, n.msgs)
}

func TestFailedCategoryDoesNotBlockOthers(t *testing.T) {
	n := &recordingNotifier{}
	w := New(&fakeLists{failKind: gear.Clothing}, WithNotifier(n))

	run, err := w.Submit(context.Background(), validParams())
	require.NoError(t, err)

	st := run.State()
	assert.Equal(t, PhaseComplete, st.Phase)
	assert.Nil(t, st.Lists[gear.Clothing])
	assert.Contains(t, st.Errors[gear.Clothing], "backend down")
	assert.Equal(t, "Failed to generate clothing list.", st.ErrorMessage)
	for _, k := range []gear.Kind{gear.Food, gear.Cooking, gear.Sleeping, gear.Misc} {
		assert.NotNil(t, st.Lists[k], k)
	}
	assert.Contains(t, n.msgs, "Failed to generate clothing list.")
	assert.Equal(t, MsgDone, n.msgs[len(n.msgs)-1])
}

func TestDistributionFailureUsesFallback(t *testing.T) {
	lists := &fakeLists{distErr: errors.New("timeout")}
	w := New(lists)

	run, err := w.Submit(context.Background(), validParams())
	require.NoError(t, err)

	st := run.State()
	require.NotNil(t, st.Budget)
	assert.Equal(t, planner.FallbackBudget(45), *st.Budget)
	assert.Equal(t, planner.FallbackWeight(gear.Food, 45), lists.targets[gear.Food])
	assert.NotEmpty(t, st.ErrorMessage)
	assert.Equal(t, PhaseComplete, st.Phase)
}

func TestSubmitReturnsBeforeEnrichmentSettles(t *testing.T) {
	enricher := &fakeEnricher{block: make(chan struct{})}
	w := New(&fakeLists{}, WithEnricher(enricher))

	run, err := w.Submit(context.Background(), validParams())
	require.NoError(t, err)

	st := run.State()
	assert.Equal(t, PhaseComplete, st.Phase)
	assert.Len(t, st.Enriching, len(gear.Kinds))
	assert.Empty(t, st.Links)

	close(enricher.block)
	st = run.Wait(context.Background())
	assert.Empty(t, st.Enriching)
	assert.Len(t, st.Links, len(gear.Kinds))
}

func TestWaitHonoursContext(t *testing.T) {
	enricher := &fakeEnricher{block: make(chan struct{})}
	defer close(enricher.block)
	w := New(&fakeLists{}, WithEnricher(enricher))

	run, err := w.Submit(context.Background(), validParams())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	st := run.Wait(ctx)
	assert.Equal(t, PhaseComplete, st.Phase)
	assert.NotEmpty(t, st.Enriching)
}

func TestNewRunDropsLateEventsFromPreviousRun(t *testing.T) {
	enricher := &fakeEnricher{block: make(chan struct{})}
	w := New(&fakeLists{}, WithEnricher(enricher))

	first, err := w.Submit(context.Background(), validParams())
	require.NoError(t, err)

	p := validParams()
	p.Days = 5
	second, err := w.Submit(context.Background(), p)
	require.NoError(t, err)

	close(enricher.block)
	first.Wait(context.Background())
	second.Wait(context.Background())

	cur := w.Store().Snapshot()
	assert.Equal(t, second.ID, cur.RunID)
	assert.Equal(t, 5, cur.Params.Days)
	assert.Len(t, cur.Links, len(gear.Kinds))

	// the first run's late enrichment never reached the store
	assert.Len(t, first.State().Links, 0)
	assert.Equal(t, first.ID, first.State().RunID)
}
