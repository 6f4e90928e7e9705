package gear

import (
	"encoding/json"
	"fmt"
)

// Kind names one of the five gear categories.
type Kind string

const (
	Food     Kind = "food"
	Clothing Kind = "clothing"
	Cooking  Kind = "cooking"
	Sleeping Kind = "sleeping"
	Misc     Kind = "misc"
)

// Kinds lists every category in display order.
var Kinds = []Kind{Food, Clothing, Cooking, Sleeping, Misc}

// PrimaryKinds are generated concurrently before misc.
var PrimaryKinds = []Kind{Food, Clothing, Cooking, Sleeping}

func (k Kind) String() string { return string(k) }

// Title is the human label used in prompts and rendering.
func (k Kind) Title() string {
	switch k {
	case Food:
		return "Food"
	case Clothing:
		return "Clothing"
	case Cooking:
		return "Cooking Equipment"
	case Sleeping:
		return "Sleeping"
	case Misc:
		return "Misc"
	}
	return string(k)
}

// Item is one non-food gear entry. Quantity zero means "one".
type Item struct {
	Name     string  `json:"item"`
	Weight   float64 `json:"weight"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity,omitempty"`
	Link     string  `json:"link,omitempty"`
}

// Qty is the effective quantity.
func (i Item) Qty() float64 {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

type MealSlot string

const (
	Breakfast MealSlot = "Breakfast"
	Lunch     MealSlot = "Lunch"
	Snack     MealSlot = "Snack"
	Dinner    MealSlot = "Dinner"
)

// MealSlots is the fixed slot order of a food day.
var MealSlots = []MealSlot{Breakfast, Lunch, Snack, Dinner}

type Meal struct {
	Item     string  `json:"Item"`
	Weight   float64 `json:"Weight"`
	Price    float64 `json:"Price"`
	Calories float64 `json:"Calories"`
}

// FoodDay holds up to four meals. Absent slots are skipped everywhere.
type FoodDay struct {
	Day   int
	Meals map[MealSlot]*Meal
	Link  string
}

func (d FoodDay) MarshalJSON() ([]byte, error) {
	out := map[string]any{"day": d.Day}
	for _, slot := range MealSlots {
		if m := d.Meals[slot]; m != nil {
			out[string(slot)] = m
		}
	}
	if d.Link != "" {
		out["link"] = d.Link
	}
	return json.Marshal(out)
}

// MealNames returns the item names of the day's meals in slot order.
func (d FoodDay) MealNames() []string {
	var names []string
	for _, slot := range MealSlots {
		if m := d.Meals[slot]; m != nil && m.Item != "" {
			names = append(names, m.Item)
		}
	}
	return names
}

// CategoryList is the parsed list for one category. Food lists use Days,
// every other kind uses Items. Totals are only ever set by Recalculate.
type CategoryList struct {
	Kind          Kind
	Items         []Item
	Days          []FoodDay
	TotalWeight   float64
	TotalPrice    float64
	TotalCalories *int
}

// MarshalJSON emits a single "items" key for every kind.
func (l CategoryList) MarshalJSON() ([]byte, error) {
	type wire struct {
		Items         any     `json:"items"`
		TotalWeight   float64 `json:"totalWeight"`
		TotalPrice    float64 `json:"totalPrice"`
		TotalCalories *int    `json:"totalCalories,omitempty"`
	}
	w := wire{TotalWeight: l.TotalWeight, TotalPrice: l.TotalPrice, TotalCalories: l.TotalCalories}
	if l.Kind == Food {
		w.Items = nonNil(l.Days)
	} else {
		w.Items = nonNil(l.Items)
	}
	return json.Marshal(w)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Len is the number of entries: days for food, items otherwise.
func (l *CategoryList) Len() int {
	if l == nil {
		return 0
	}
	if l.Kind == Food {
		return len(l.Days)
	}
	return len(l.Items)
}

// Names returns every item name in display order.
func (l *CategoryList) Names() []string {
	if l == nil {
		return nil
	}
	var names []string
	if l.Kind == Food {
		for _, d := range l.Days {
			names = append(names, d.MealNames()...)
		}
		return names
	}
	for _, it := range l.Items {
		if it.Name != "" {
			names = append(names, it.Name)
		}
	}
	return names
}

// Clone returns a deep copy.
func (l *CategoryList) Clone() *CategoryList {
	if l == nil {
		return nil
	}
	out := &CategoryList{
		Kind:        l.Kind,
		TotalWeight: l.TotalWeight,
		TotalPrice:  l.TotalPrice,
	}
	if l.TotalCalories != nil {
		c := *l.TotalCalories
		out.TotalCalories = &c
	}
	if l.Items != nil {
		out.Items = append([]Item(nil), l.Items...)
	}
	if l.Days != nil {
		out.Days = make([]FoodDay, len(l.Days))
		for i, d := range l.Days {
			nd := FoodDay{Day: d.Day, Link: d.Link, Meals: make(map[MealSlot]*Meal, len(d.Meals))}
			for slot, m := range d.Meals {
				if m != nil {
					cp := *m
					nd.Meals[slot] = &cp
				}
			}
			out.Days[i] = nd
		}
	}
	return out
}

// GroundingLink is a cited source attached to a list.
type GroundingLink struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// WithLinks returns a copy with links attached positionally: the i-th link
// goes to the i-th item (or day, for food). Extra links are ignored.
func (l *CategoryList) WithLinks(links []GroundingLink) *CategoryList {
	out := l.Clone()
	if out == nil {
		return nil
	}
	if out.Kind == Food {
		for i := range out.Days {
			if i < len(links) {
				out.Days[i].Link = links[i].URI
			}
		}
		return out
	}
	for i := range out.Items {
		if i < len(links) {
			out.Items[i].Link = links[i].URI
		}
	}
	return out
}

// ParseError reports a response that could not be turned into a list,
// even after repair.
type ParseError struct {
	Kind     Kind
	Response string
	Err      error
}

func (e *ParseError) Error() string {
	resp := e.Response
	if len(resp) > 200 {
		resp = resp[:200] + "..."
	}
	return fmt.Sprintf("failed to parse %s list: %v. Response: %s", e.Kind, e.Err, resp)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WeightBudget is the per-category weight target in pounds. Fallback lists
// the categories whose value came from the fixed ratio table instead of the
// model.
type WeightBudget struct {
	Clothing float64 `json:"clothing"`
	Cooking  float64 `json:"cooking"`
	Sleeping float64 `json:"sleeping"`
	Food     float64 `json:"food"`
	Misc     float64 `json:"misc"`
	Fallback []Kind  `json:"fallback,omitempty"`
}

// For returns the target for kind.
func (b WeightBudget) For(kind Kind) float64 {
	switch kind {
	case Clothing:
		return b.Clothing
	case Cooking:
		return b.Cooking
	case Sleeping:
		return b.Sleeping
	case Food:
		return b.Food
	case Misc:
		return b.Misc
	}
	return 0
}

// Total is the sum of all category targets.
func (b WeightBudget) Total() float64 {
	return Round2(b.Clothing + b.Cooking + b.Sleeping + b.Food + b.Misc)
}
