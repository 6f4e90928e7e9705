package planner

import (
	"context"
	"fmt"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/llm"
	"ai-pack-planner/internal/logger"
	"ai-pack-planner/internal/trip"
)

// Planner runs the individual generation stages of a pack plan: the weight
// distribution and one list per category.
type Planner struct {
	lists        *Generator
	distribution *Generator
	budget       BudgetParser
	log          *logger.Logger
}

// NewPlanner creates a Planner. distribution may be the same generator as
// lists; it is separate so a prose-mode backend can serve it.
func NewPlanner(lists, distribution *Generator, budget BudgetParser, log *logger.Logger) *Planner {
	if distribution == nil {
		distribution = lists
	}
	if budget == nil {
		budget = RegexBudgetParser{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Planner{lists: lists, distribution: distribution, budget: budget, log: log}
}

// Distribution asks for the weight split of maxWeight. A backend failure is
// returned together with the full fallback budget so the run can continue.
func (p *Planner) Distribution(ctx context.Context, params trip.Parameters, maxWeight float64) (gear.WeightBudget, error) {
	prompt, err := BuildDistributionPrompt(params, maxWeight)
	if err != nil {
		return FallbackBudget(maxWeight), err
	}
	schema, err := SchemaFor("distribution")
	if err != nil {
		return FallbackBudget(maxWeight), err
	}

	raw, err := p.distribution.Generate(ctx, "distribution", prompt, schema)
	if err != nil {
		return FallbackBudget(maxWeight), err
	}

	budget := p.budget.Parse(llm.NormalizeResponse(raw), maxWeight)
	if len(budget.Fallback) > 0 {
		p.log.Info("distribution used fallback ratios",
			"run_id", RunIDFrom(ctx), "categories", budget.Fallback)
	}
	return budget, nil
}

// Category generates, normalizes, parses and recalculates the list for
// kind. Failures are *GenerationError or *gear.ParseError.
func (p *Planner) Category(ctx context.Context, kind gear.Kind, params trip.Parameters, target float64, existing []string) (*gear.CategoryList, error) {
	prompt, err := BuildCategoryPrompt(kind, params, target, existing)
	if err != nil {
		return nil, err
	}
	schema, err := SchemaFor(string(kind))
	if err != nil {
		return nil, err
	}

	raw, err := p.lists.Generate(ctx, string(kind), prompt, schema)
	if err != nil {
		return nil, err
	}

	list, err := gear.ParseList(kind, llm.NormalizeResponse(raw))
	if err != nil {
		return nil, fmt.Errorf("%s list: %w", kind, err)
	}
	return list, nil
}
