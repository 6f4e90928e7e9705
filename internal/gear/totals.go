package gear

import "math"

// Recalculate returns a copy of list with totals recomputed from its
// entries. It is the only place totals are written.
//
// Food sums Weight, Price and Calories over every present meal slot of
// every day. Other kinds sum weight and price times quantity (default 1).
// Weight and price are rounded to cents, calories to whole numbers.
func Recalculate(list *CategoryList) *CategoryList {
	out := list.Clone()
	if out == nil {
		return nil
	}

	var weight, price float64
	if out.Kind == Food {
		var calories float64
		for _, d := range out.Days {
			for _, slot := range MealSlots {
				m := d.Meals[slot]
				if m == nil {
					continue
				}
				weight += m.Weight
				price += m.Price
				calories += m.Calories
			}
		}
		c := int(math.Round(calories))
		out.TotalCalories = &c
	} else {
		for _, it := range out.Items {
			weight += it.Weight * it.Qty()
			price += it.Price * it.Qty()
		}
		out.TotalCalories = nil
	}

	out.TotalWeight = Round2(weight)
	out.TotalPrice = Round2(price)
	return out
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
