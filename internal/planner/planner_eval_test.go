package planner

import (
	"context"
	"os"
	"testing"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/llm"
	"ai-pack-planner/internal/trip"
)

// TestPlanner_LiveEval makes real model calls and checks the answers are
// usable, not just parseable.
// Run with: GROQ_API_KEY=... go test -v ./internal/planner -run TestPlanner_LiveEval
func TestPlanner_LiveEval(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping live eval in short mode")
	}
	key := os.Getenv("GROQ_API_KEY")
	if key == "" {
		t.Skip("Skipping: GROQ_API_KEY not set")
	}

	ctx := context.Background()
	model := "llama-3.3-70b-versatile"
	p := NewPlanner(
		NewGenerator(llm.NewGroqClient(key, model, true), nil, nil),
		NewGenerator(llm.NewGroqClient(key, model, false), nil, nil),
		nil, nil,
	)

	params := trip.Defaults()
	params.Age, params.BodyWeight, params.Days = 35, 170, 3
	maxWeight := trip.PackLimit(params)

	// EVAL A: the distribution is answered in the expected prose format and
	// stays under the carry limit.
	budget, err := p.Distribution(ctx, params, maxWeight)
	if err != nil {
		t.Fatalf("distribution failed: %v", err)
	}
	if len(budget.Fallback) > 0 {
		t.Errorf("QUALITY FAIL: distribution fell back for %v", budget.Fallback)
	}
	if budget.Total() > maxWeight*1.05 {
		t.Errorf("QUALITY FAIL: distribution totals %.2f lb over a %.2f lb limit", budget.Total(), maxWeight)
	}

	// EVAL B: the clothing list lands near its target.
	clothing, err := p.Category(ctx, gear.Clothing, params, budget.Clothing, nil)
	if err != nil {
		t.Fatalf("clothing failed: %v", err)
	}
	if clothing.Len() == 0 {
		t.Fatal("QUALITY FAIL: empty clothing list")
	}
	if clothing.TotalWeight < 0.5*budget.Clothing || clothing.TotalWeight > 1.5*budget.Clothing {
		t.Errorf("QUALITY FAIL: clothing weighs %.2f lb for a %.2f lb target", clothing.TotalWeight, budget.Clothing)
	}

	// EVAL C: one food entry per day.
	food, err := p.Category(ctx, gear.Food, params, budget.Food, nil)
	if err != nil {
		t.Fatalf("food failed: %v", err)
	}
	if len(food.Days) != params.Days {
		t.Errorf("QUALITY FAIL: %d food days for a %d-day trip", len(food.Days), params.Days)
	}

	// EVAL D: misc respects the already-packed list.
	misc, err := p.Category(ctx, gear.Misc, params, budget.Misc, clothing.Names())
	if err != nil {
		t.Fatalf("misc failed: %v", err)
	}
	_, dupes := gear.RemoveNearDuplicates(misc, clothing.Names(), gear.DefaultSimilarity)
	if len(dupes) > 0 {
		t.Errorf("QUALITY FAIL: misc repeated packed items %v", dupes)
	}
}
