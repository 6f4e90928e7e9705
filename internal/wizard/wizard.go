package wizard

import (
	"context"
	"fmt"
	"sync"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/logger"
	"ai-pack-planner/internal/planner"
	"ai-pack-planner/internal/trip"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Progress messages sent to the Notifier.
const (
	MsgFixInputs      = "Please fix input errors."
	MsgStepWeight     = "Step 1: Calculated pack weight."
	MsgStepBudget     = "Step 2: Getting category weights..."
	MsgStepCategories = "Step 3: Generating food, clothing, cooking, and sleeping lists..."
	MsgStepMisc       = "Step 4: Generating miscellaneous list..."
	MsgDone           = "Pack lists generated!"
)

// Notifier receives user-facing progress messages. Delivery errors are
// ignored by the wizard.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// ListGenerator produces the distribution and category lists.
type ListGenerator interface {
	Distribution(ctx context.Context, params trip.Parameters, maxWeight float64) (gear.WeightBudget, error)
	Category(ctx context.Context, kind gear.Kind, params trip.Parameters, target float64, existing []string) (*gear.CategoryList, error)
}

// ListEnricher adds cited sources to a list.
type ListEnricher interface {
	Enrich(ctx context.Context, list *gear.CategoryList) (planner.EnrichResult, error)
}

// ValidationError blocks a submission. Fields maps input names to messages.
type ValidationError struct {
	Fields trip.FieldErrors
}

func (e *ValidationError) Error() string {
	return "invalid trip parameters: " + e.Fields.Error()
}

// Wizard drives one pack-planning run from validated input to complete
// lists.
type Wizard struct {
	lists      ListGenerator
	enricher   ListEnricher
	store      *Store
	notifier   Notifier
	log        *logger.Logger
	similarity float64
}

type Option func(*Wizard)

// WithEnricher enables background grounding of finished lists.
func WithEnricher(e ListEnricher) Option { return func(w *Wizard) { w.enricher = e } }

func WithNotifier(n Notifier) Option { return func(w *Wizard) { w.notifier = n } }

func WithLogger(l *logger.Logger) Option { return func(w *Wizard) { w.log = l } }

// WithStore shares a store, e.g. with a presentation layer subscribed to it.
func WithStore(s *Store) Option { return func(w *Wizard) { w.store = s } }

// WithSimilarity sets the misc de-duplication threshold.
func WithSimilarity(threshold float64) Option { return func(w *Wizard) { w.similarity = threshold } }

func New(lists ListGenerator, opts ...Option) *Wizard {
	w := &Wizard{lists: lists, similarity: gear.DefaultSimilarity}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.NewNop()
	}
	if w.store == nil {
		w.store = NewStore(w.log)
	}
	return w
}

// Store exposes the wizard's state store.
func (w *Wizard) Store() *Store { return w.store }

// Run is a handle on one submission.
type Run struct {
	ID string

	store      *Store
	enrichment sync.WaitGroup

	mu   sync.Mutex
	last State
}

func (r *Run) dispatch(ev Event) {
	st, ok := r.store.Dispatch(ev)
	if !ok {
		return
	}
	r.mu.Lock()
	if st.Version > r.last.Version {
		r.last = st
	}
	r.mu.Unlock()
}

// State returns the latest snapshot of this run, even after a newer run has
// replaced it in the store.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Wait blocks until background enrichment has settled or ctx is done and
// returns the run's latest state.
func (r *Run) Wait(ctx context.Context) State {
	done := make(chan struct{})
	go func() {
		r.enrichment.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return r.State()
}

// Submit validates params and runs the pipeline up to Complete. Enrichment
// keeps running in the background; use Run.Wait to block on it.
func (w *Wizard) Submit(ctx context.Context, params trip.Parameters) (*Run, error) {
	if errs := trip.Validate(params); len(errs) > 0 {
		w.notify(ctx, MsgFixInputs)
		return nil, &ValidationError{Fields: errs}
	}

	run := &Run{ID: uuid.NewString(), store: w.store}
	ctx = planner.WithRunID(ctx, run.ID)
	log := w.log.With("run_id", run.ID)

	maxWeight := trip.PackLimit(params)
	run.dispatch(RunStarted{RunID: run.ID, Params: params, MaxWeight: maxWeight})
	w.notify(ctx, MsgStepWeight)
	log.Info("run started", "max_weight", maxWeight, "days", params.Days)

	run.dispatch(DistributionRequested{RunID: run.ID})
	w.notify(ctx, MsgStepBudget)
	budget, err := w.lists.Distribution(ctx, params, maxWeight)
	run.dispatch(DistributionResolved{RunID: run.ID, Budget: budget, Err: err})
	if err != nil {
		log.Warn("distribution failed, using fallback ratios", "error", err)
		w.notify(ctx, "Could not get category weights; using default ratios.")
	}

	run.dispatch(CategoriesRequested{RunID: run.ID})
	w.notify(ctx, MsgStepCategories)

	// Goroutines never return an error so one failed category cannot
	// cancel the others.
	var g errgroup.Group
	for _, kind := range gear.PrimaryKinds {
		g.Go(func() error {
			w.generate(ctx, run, kind, params, budget.For(kind), nil)
			return nil
		})
	}
	_ = g.Wait()
	run.dispatch(CategoriesResolved{RunID: run.ID})

	w.enrich(ctx, run, gear.PrimaryKinds...)

	run.dispatch(MiscRequested{RunID: run.ID})
	w.notify(ctx, MsgStepMisc)
	existing := run.State().ItemNames(gear.PrimaryKinds...)
	w.generate(ctx, run, gear.Misc, params, budget.Misc, existing)
	w.enrich(ctx, run, gear.Misc)

	run.dispatch(Completed{RunID: run.ID})
	w.notify(ctx, MsgDone)
	log.Info("run complete")
	return run, nil
}

func (w *Wizard) generate(ctx context.Context, run *Run, kind gear.Kind, params trip.Parameters, target float64, existing []string) {
	log := w.log.With("run_id", run.ID, "stage", kind)

	list, err := w.lists.Category(ctx, kind, params, target, existing)
	if err != nil {
		log.Error("category generation failed", "error", err)
		run.dispatch(CategoryResolved{RunID: run.ID, Kind: kind, Err: err})
		w.notify(ctx, fmt.Sprintf("Failed to generate %s list.", kind))
		return
	}

	if kind == gear.Misc {
		var dropped []string
		list, dropped = gear.RemoveNearDuplicates(list, existing, w.similarity)
		if len(dropped) > 0 {
			log.Info("removed items already packed elsewhere", "items", dropped)
		}
	}

	log.Info("category generated", "items", list.Len(), "weight", list.TotalWeight)
	run.dispatch(CategoryResolved{RunID: run.ID, Kind: kind, List: list})
}

// enrich starts background grounding for every listed kind that has a list.
func (w *Wizard) enrich(ctx context.Context, run *Run, kinds ...gear.Kind) {
	if w.enricher == nil {
		return
	}

	snapshot := run.State()
	var targets []gear.Kind
	for _, k := range kinds {
		if snapshot.Lists[k] != nil {
			targets = append(targets, k)
		}
	}
	if len(targets) == 0 {
		return
	}
	run.dispatch(EnrichmentRequested{RunID: run.ID, Kinds: targets})

	for _, kind := range targets {
		list := snapshot.Lists[kind]
		run.enrichment.Add(1)
		go func() {
			defer run.enrichment.Done()
			res, err := w.enricher.Enrich(ctx, list)
			if err != nil {
				w.log.Warn("enrichment failed", "run_id", run.ID, "stage", kind, "error", err)
			}
			run.dispatch(EnrichmentResolved{
				RunID: run.ID,
				Kind:  kind,
				List:  res.List,
				Links: res.Links,
				Err:   err,
			})
		}()
	}
}

func (w *Wizard) notify(ctx context.Context, msg string) {
	if w.notifier == nil {
		return
	}
	if err := w.notifier.Notify(ctx, msg); err != nil {
		w.log.Debug("notification not delivered", "message", msg, "error", err)
	}
}
