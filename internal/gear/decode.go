package gear

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"ai-pack-planner/internal/llm"
)

var errNoItems = errors.New("no items array in response")

// keyAliases maps every field spelling models are known to use onto one
// canonical key. Lookup is case-insensitive.
var keyAliases = map[string]string{
	"item":     "item",
	"name":     "item",
	"weight":   "weight",
	"price":    "price",
	"quantity": "quantity",
	"qty":      "quantity",
	"link":     "link",
	"url":      "link",
	"uri":      "link",
	"calories": "calories",
	"day":      "day",
}

// aliasOrder is the precedence used when one object carries several
// spellings of the same field: canonical names first, then aliases.
var aliasOrder = []string{"item", "name", "weight", "price", "quantity", "qty", "link", "url", "uri", "calories", "day"}

// orderedKeys returns the keys of obj in alias precedence. Keys differing only
// in case prefer the lowercase spelling; unknown keys sort last by name.
func orderedKeys(obj map[string]any) []string {
	rank := func(k string) int {
		if i := slices.Index(aliasOrder, strings.ToLower(strings.TrimSpace(k))); i >= 0 {
			return i
		}
		return len(aliasOrder)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		if la, lb := a == strings.ToLower(a), b == strings.ToLower(b); la != lb {
			if la {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return keys
}

// CanonicalKey returns the canonical name for a model field, or "" when the
// field is not part of the list model.
func CanonicalKey(k string) string {
	return keyAliases[strings.ToLower(strings.TrimSpace(k))]
}

func mealSlotFor(k string) (MealSlot, bool) {
	for _, slot := range MealSlots {
		if strings.EqualFold(strings.TrimSpace(k), string(slot)) {
			return slot, true
		}
	}
	return "", false
}

// ParseList turns a normalized model response into a recalculated list.
// One repair pass is attempted before giving up with a *ParseError.
// Model-reported totals are ignored.
func ParseList(kind Kind, text string) (*CategoryList, error) {
	raw, err := DecodeRawItems(text)
	if err != nil {
		return nil, &ParseError{Kind: kind, Response: text, Err: err}
	}
	return Recalculate(FromRaw(kind, raw)), nil
}

// DecodeRawItems returns the raw items array of a response, accepting either
// {"items": [...]} or a bare array.
func DecodeRawItems(text string) ([]any, error) {
	var root any
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		repaired, rerr := llm.ExtractJSON(text)
		if rerr != nil {
			return nil, fmt.Errorf("%v (repair: %w)", err, rerr)
		}
		if err := json.Unmarshal([]byte(repaired), &root); err != nil {
			return nil, fmt.Errorf("repaired JSON still invalid: %w", err)
		}
	}
	return itemsOf(root)
}

func itemsOf(root any) ([]any, error) {
	switch v := root.(type) {
	case []any:
		return v, nil
	case map[string]any:
		keys := orderedKeys(v)
		for _, want := range []string{"items", "days", "list"} {
			for _, k := range keys {
				if strings.ToLower(k) != want {
					continue
				}
				if arr, ok := v[k].([]any); ok {
					return arr, nil
				}
			}
		}
	}
	return nil, errNoItems
}

// FromRaw builds a list from decoded entries without computing totals.
// Entries that are not objects are dropped.
func FromRaw(kind Kind, raw []any) *CategoryList {
	list := &CategoryList{Kind: kind}
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if kind == Food {
			list.Days = append(list.Days, foodDayFromRaw(obj, i+1))
			continue
		}
		list.Items = append(list.Items, itemFromRaw(obj))
	}
	if kind == Food && list.Days == nil {
		list.Days = []FoodDay{}
	}
	if kind != Food && list.Items == nil {
		list.Items = []Item{}
	}
	return list
}

func itemFromRaw(obj map[string]any) Item {
	var it Item
	seen := map[string]bool{}
	for _, k := range orderedKeys(obj) {
		v := obj[k]
		key := CanonicalKey(k)
		if key == "" || seen[key] {
			continue
		}
		switch key {
		case "item":
			it.Name = asString(v)
		case "weight":
			it.Weight = asNumber(v)
		case "price":
			it.Price = asNumber(v)
		case "quantity":
			it.Quantity = asNumber(v)
		case "link":
			it.Link = asString(v)
		default:
			continue
		}
		seen[key] = it.fieldSet(key)
	}
	return it
}

// fieldSet reports whether the canonical field now holds a value, so a
// later empty alias does not overwrite an earlier good one.
func (i Item) fieldSet(key string) bool {
	switch key {
	case "item":
		return i.Name != ""
	case "weight":
		return i.Weight != 0
	case "price":
		return i.Price != 0
	case "quantity":
		return i.Quantity != 0
	case "link":
		return i.Link != ""
	}
	return false
}

func (m *Meal) fieldSet(key string) bool {
	switch key {
	case "item":
		return m.Item != ""
	case "weight":
		return m.Weight != 0
	case "price":
		return m.Price != 0
	case "calories":
		return m.Calories != 0
	}
	return false
}

func foodDayFromRaw(obj map[string]any, fallbackDay int) FoodDay {
	day := FoodDay{Day: fallbackDay, Meals: map[MealSlot]*Meal{}}
	daySet := false
	for _, k := range orderedKeys(obj) {
		v := obj[k]
		if slot, ok := mealSlotFor(k); ok {
			if _, taken := day.Meals[slot]; taken {
				continue
			}
			if m := mealFromRaw(v); m != nil {
				day.Meals[slot] = m
			}
			continue
		}
		switch CanonicalKey(k) {
		case "day":
			if n := asNumber(v); n > 0 && !daySet {
				day.Day = int(n)
				daySet = true
			}
		case "link":
			if day.Link == "" {
				day.Link = asString(v)
			}
		}
	}
	return day
}

func mealFromRaw(v any) *Meal {
	switch m := v.(type) {
	case string:
		if strings.TrimSpace(m) == "" {
			return nil
		}
		return &Meal{Item: strings.TrimSpace(m)}
	case map[string]any:
		meal := &Meal{}
		seen := map[string]bool{}
		for _, k := range orderedKeys(m) {
			val := m[k]
			key := CanonicalKey(k)
			if key == "" || seen[key] {
				continue
			}
			switch key {
			case "item":
				meal.Item = asString(val)
			case "weight":
				meal.Weight = asNumber(val)
			case "price":
				meal.Price = asNumber(val)
			case "calories":
				meal.Calories = asNumber(val)
			default:
				continue
			}
			seen[key] = meal.fieldSet(key)
		}
		return meal
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// asNumber accepts JSON numbers and numeric text such as "2.5 lbs" or "$12".
func asNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := FirstNumber(n)
		return f
	case bool:
		return 0
	}
	return 0
}

var (
	leadingNumberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	firstNumberRe   = regexp.MustCompile(`-?(\d+\.?\d*|\.\d+)`)
)

// LeadingNumber parses the numeric prefix of s after leading whitespace,
// so "2 pairs" yields 2 and "about 2" yields false.
func LeadingNumber(s string) (float64, bool) {
	m := leadingNumberRe.FindString(strings.TrimLeft(s, " \t\n\r"))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FirstNumber extracts the first numeric token anywhere in s, so
// "approx. 2.5 lbs" yields 2.5.
func FirstNumber(s string) (float64, bool) {
	m := firstNumberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
