package wizard

import (
	"fmt"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/trip"
)

type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseDistributionRequested Phase = "distribution_requested"
	PhaseDistributionResolved  Phase = "distribution_resolved"
	PhaseCategoriesRequested   Phase = "categories_requested"
	PhaseCategoriesResolved    Phase = "categories_resolved"
	PhaseEnrichmentRequested   Phase = "enrichment_requested"
	PhaseMiscRequested         Phase = "misc_requested"
	PhaseComplete              Phase = "complete"
)

// State is an immutable snapshot of one run. Reduce never mutates the maps
// or lists of a previous snapshot, so snapshots can be shared freely.
type State struct {
	RunID        string
	Version      int
	Phase        Phase
	Loading      bool
	ErrorMessage string

	Params    trip.Parameters
	MaxWeight float64
	Budget    *gear.WeightBudget

	// Lists holds a nil entry for a category whose generation failed.
	Lists     map[gear.Kind]*gear.CategoryList
	Links     map[gear.Kind][]gear.GroundingLink
	Errors    map[gear.Kind]string
	Enriching map[gear.Kind]bool
}

// Event is a state transition tagged with the run it belongs to.
type Event interface {
	Run() string
}

type RunStarted struct {
	RunID     string
	Params    trip.Parameters
	MaxWeight float64
}

type DistributionRequested struct{ RunID string }

type DistributionResolved struct {
	RunID  string
	Budget gear.WeightBudget
	Err    error
}

type CategoriesRequested struct{ RunID string }

type CategoryResolved struct {
	RunID string
	Kind  gear.Kind
	List  *gear.CategoryList
	Err   error
}

type CategoriesResolved struct{ RunID string }

type EnrichmentRequested struct {
	RunID string
	Kinds []gear.Kind
}

type EnrichmentResolved struct {
	RunID string
	Kind  gear.Kind
	List  *gear.CategoryList
	Links []gear.GroundingLink
	Err   error
}

type MiscRequested struct{ RunID string }

type Completed struct{ RunID string }

func (e RunStarted) Run() string            { return e.RunID }
func (e DistributionRequested) Run() string { return e.RunID }
func (e DistributionResolved) Run() string  { return e.RunID }
func (e CategoriesRequested) Run() string   { return e.RunID }
func (e CategoryResolved) Run() string      { return e.RunID }
func (e CategoriesResolved) Run() string    { return e.RunID }
func (e EnrichmentRequested) Run() string   { return e.RunID }
func (e EnrichmentResolved) Run() string    { return e.RunID }
func (e MiscRequested) Run() string         { return e.RunID }
func (e Completed) Run() string             { return e.RunID }

// Reduce applies ev to s and returns the next snapshot. Events from a run
// other than the current one leave s unchanged (same Version).
func Reduce(s State, ev Event) State {
	if start, ok := ev.(RunStarted); ok {
		return State{
			RunID:     start.RunID,
			Version:   s.Version + 1,
			Phase:     PhaseIdle,
			Loading:   true,
			Params:    start.Params,
			MaxWeight: start.MaxWeight,
			Lists:     map[gear.Kind]*gear.CategoryList{},
			Links:     map[gear.Kind][]gear.GroundingLink{},
			Errors:    map[gear.Kind]string{},
			Enriching: map[gear.Kind]bool{},
		}
	}
	if s.RunID == "" || ev.Run() != s.RunID {
		return s
	}

	next := s.clone()
	next.Version++

	switch e := ev.(type) {
	case DistributionRequested:
		next.Phase = PhaseDistributionRequested
	case DistributionResolved:
		b := e.Budget
		next.Budget = &b
		next.Phase = PhaseDistributionResolved
		if e.Err != nil {
			next.ErrorMessage = "Could not get category weights; using default ratios."
		}
	case CategoriesRequested:
		next.Phase = PhaseCategoriesRequested
	case CategoryResolved:
		if e.Err != nil {
			next.Lists[e.Kind] = nil
			next.Errors[e.Kind] = e.Err.Error()
			next.ErrorMessage = fmt.Sprintf("Failed to generate %s list.", e.Kind)
		} else {
			next.Lists[e.Kind] = e.List
			delete(next.Errors, e.Kind)
		}
	case CategoriesResolved:
		next.Phase = PhaseCategoriesResolved
	case EnrichmentRequested:
		for _, k := range e.Kinds {
			next.Enriching[k] = true
		}
		if next.Phase == PhaseCategoriesResolved {
			next.Phase = PhaseEnrichmentRequested
		}
	case EnrichmentResolved:
		delete(next.Enriching, e.Kind)
		links := e.Links
		if links == nil {
			links = []gear.GroundingLink{}
		}
		next.Links[e.Kind] = links
		if e.Err == nil && e.List != nil {
			next.Lists[e.Kind] = e.List
		}
	case MiscRequested:
		next.Phase = PhaseMiscRequested
	case Completed:
		next.Phase = PhaseComplete
		next.Loading = false
	default:
		return s
	}
	return next
}

func (s State) clone() State {
	out := s
	out.Lists = make(map[gear.Kind]*gear.CategoryList, len(s.Lists))
	for k, v := range s.Lists {
		out.Lists[k] = v
	}
	out.Links = make(map[gear.Kind][]gear.GroundingLink, len(s.Links))
	for k, v := range s.Links {
		out.Links[k] = v
	}
	out.Errors = make(map[gear.Kind]string, len(s.Errors))
	for k, v := range s.Errors {
		out.Errors[k] = v
	}
	out.Enriching = make(map[gear.Kind]bool, len(s.Enriching))
	for k, v := range s.Enriching {
		out.Enriching[k] = v
	}
	return out
}

// ItemNames returns the names of every item in the given categories.
func (s State) ItemNames(kinds ...gear.Kind) []string {
	var names []string
	for _, k := range kinds {
		names = append(names, s.Lists[k].Names()...)
	}
	return names
}
