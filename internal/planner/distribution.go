package planner

import (
	"regexp"
	"strconv"

	"ai-pack-planner/internal/gear"
)

// BudgetParser turns a distribution response into a weight budget. It never
// fails: anything it cannot read is replaced by the fallback ratios.
type BudgetParser interface {
	Parse(raw string, maxWeight float64) gear.WeightBudget
}

// fallbackRatios are shares of the max pack weight used when the model's
// distribution is missing or unreadable.
var fallbackRatios = map[gear.Kind]float64{
	gear.Clothing: 0.15,
	gear.Cooking:  0.10,
	gear.Sleeping: 0.20,
	gear.Food:     0.40,
	gear.Misc:     0.15,
}

// FallbackWeight is the ratio-based target for kind.
func FallbackWeight(kind gear.Kind, maxWeight float64) float64 {
	return gear.Round2(maxWeight * fallbackRatios[kind])
}

// FallbackBudget returns a budget built entirely from the ratio table.
func FallbackBudget(maxWeight float64) gear.WeightBudget {
	return RegexBudgetParser{}.Parse("", maxWeight)
}

// distributionRe requires all five labels in this order. A partial answer
// does not match at all.
var distributionRe = regexp.MustCompile(
	`Clothing:\s*(\d+(?:\.\d+)?)\s*pounds[\s\S]*` +
		`Cooking Equipment:\s*(\d+(?:\.\d+)?)\s*pounds[\s\S]*` +
		`Sleeping:\s*(\d+(?:\.\d+)?)\s*pounds[\s\S]*` +
		`Food:\s*(\d+(?:\.\d+)?)\s*pounds[\s\S]*` +
		`Misc:\s*(\d+(?:\.\d+)?)\s*pounds`,
)

// RegexBudgetParser reads the "Label: N pounds" prose format.
type RegexBudgetParser struct{}

func (RegexBudgetParser) Parse(raw string, maxWeight float64) gear.WeightBudget {
	order := []gear.Kind{gear.Clothing, gear.Cooking, gear.Sleeping, gear.Food, gear.Misc}
	values := make(map[gear.Kind]float64, len(order))

	if m := distributionRe.FindStringSubmatch(raw); m != nil {
		for i, kind := range order {
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err == nil {
				values[kind] = v
			}
		}
	}

	var budget gear.WeightBudget
	for _, kind := range order {
		v := values[kind]
		if v == 0 {
			v = FallbackWeight(kind, maxWeight)
			budget.Fallback = append(budget.Fallback, kind)
		}
		switch kind {
		case gear.Clothing:
			budget.Clothing = v
		case gear.Cooking:
			budget.Cooking = v
		case gear.Sleeping:
			budget.Sleeping = v
		case gear.Food:
			budget.Food = v
		case gear.Misc:
			budget.Misc = v
		}
	}
	return budget
}

// ParseDistribution parses raw with the default regex parser.
func ParseDistribution(raw string, maxWeight float64) gear.WeightBudget {
	return RegexBudgetParser{}.Parse(raw, maxWeight)
}
