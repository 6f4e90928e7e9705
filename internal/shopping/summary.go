package shopping

import (
	"ai-pack-planner/internal/gear"
)

// Line is the roll-up of one category.
type Line struct {
	Kind     gear.Kind
	Title    string
	Entries  int
	Weight   float64
	Price    float64
	Calories *int
	Target   float64
	// Missing marks a category whose list failed to generate.
	Missing bool
}

// OverTarget reports whether the list weighs more than its budget.
func (l Line) OverTarget() bool {
	return l.Target > 0 && l.Weight > l.Target
}

// Purchase is one thing to buy.
type Purchase struct {
	Kind     gear.Kind
	Name     string
	Quantity float64
	Price    float64
}

// Summary is the consolidated shopping view over every category. It is
// derived from the lists on demand and never stored.
type Summary struct {
	Lines         []Line
	Purchases     []Purchase
	TotalWeight   float64
	TotalPrice    float64
	TotalCalories int
	MaxWeight     float64
}

// Remaining is the weight still available under the carry limit. It is
// negative when the pack is over.
func (s Summary) Remaining() float64 {
	return gear.Round2(s.MaxWeight - s.TotalWeight)
}

func (s Summary) OverMax() bool {
	return s.MaxWeight > 0 && s.TotalWeight > s.MaxWeight
}

// Summarize rolls lists up in category order. budget may be nil.
func Summarize(lists map[gear.Kind]*gear.CategoryList, budget *gear.WeightBudget, maxWeight float64) Summary {
	s := Summary{MaxWeight: maxWeight}

	for _, kind := range gear.Kinds {
		list, present := lists[kind]
		if !present {
			continue
		}
		line := Line{Kind: kind, Title: kind.Title()}
		if budget != nil {
			line.Target = budget.For(kind)
		}
		if list == nil {
			line.Missing = true
			s.Lines = append(s.Lines, line)
			continue
		}

		list = gear.Recalculate(list)
		line.Entries = list.Len()
		line.Weight = list.TotalWeight
		line.Price = list.TotalPrice
		line.Calories = list.TotalCalories
		s.Lines = append(s.Lines, line)

		s.TotalWeight += list.TotalWeight
		s.TotalPrice += list.TotalPrice
		if list.TotalCalories != nil {
			s.TotalCalories += *list.TotalCalories
		}
		s.Purchases = append(s.Purchases, purchases(list)...)
	}

	s.TotalWeight = gear.Round2(s.TotalWeight)
	s.TotalPrice = gear.Round2(s.TotalPrice)
	return s
}

// purchases flattens a list. Food meals with the same name are merged
// across days.
func purchases(list *gear.CategoryList) []Purchase {
	if list.Kind != gear.Food {
		out := make([]Purchase, 0, len(list.Items))
		for _, it := range list.Items {
			out = append(out, Purchase{
				Kind:     list.Kind,
				Name:     it.Name,
				Quantity: it.Qty(),
				Price:    gear.Round2(it.Price * it.Qty()),
			})
		}
		return out
	}

	var out []Purchase
	index := map[string]int{}
	for _, day := range list.Days {
		for _, slot := range gear.MealSlots {
			meal := day.Meals[slot]
			if meal == nil || meal.Item == "" {
				continue
			}
			if i, ok := index[meal.Item]; ok {
				out[i].Quantity++
				out[i].Price = gear.Round2(out[i].Price + meal.Price)
				continue
			}
			index[meal.Item] = len(out)
			out = append(out, Purchase{Kind: gear.Food, Name: meal.Item, Quantity: 1, Price: meal.Price})
		}
	}
	return out
}
