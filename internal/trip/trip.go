package trip

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
)

type PackWeight string

const (
	PackUltralight PackWeight = "ultralight"
	PackLight      PackWeight = "light"
	PackStandard   PackWeight = "standard"
	PackRobust     PackWeight = "robust"
)

type Diet string

const (
	DietFlexible   Diet = "flexible"
	DietVegetarian Diet = "vegetarian"
	DietVegan      Diet = "vegan"
)

// Parameters is the hiker and trip input for one planning run.
// Elevations are feet, body weight is pounds.
type Parameters struct {
	Age          float64
	BodyWeight   float64
	Sex          Sex
	Days         int
	Season       Season
	AvgElevation float64
	MaxElevation float64
	PackWeight   PackWeight
	Diet         Diet
	TentCapacity int
}

// Defaults returns the parameters the input form starts with.
func Defaults() Parameters {
	return Parameters{
		Sex:          SexMale,
		Season:       SeasonSummer,
		AvgElevation: 3500,
		MaxElevation: 7500,
		PackWeight:   PackStandard,
		Diet:         DietFlexible,
		TentCapacity: 1,
	}
}

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return strings.Join(parts, "; ")
}

// MaxCarryWeight returns the recommended maximum pack weight in pounds.
// Minors and seniors carry a smaller share of body weight.
func MaxCarryWeight(age, bodyWeight float64) float64 {
	switch {
	case age < 18:
		return bodyWeight * 0.15
	case age > 65:
		return bodyWeight * 0.18
	default:
		return bodyWeight * 0.25
	}
}

// PackLimit is MaxCarryWeight rounded to one decimal, the value every
// downstream prompt and fallback ratio is computed from.
func PackLimit(p Parameters) float64 {
	return math.Round(MaxCarryWeight(p.Age, p.BodyWeight)*10) / 10
}
