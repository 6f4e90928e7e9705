package trip

import (
	"math"
	"strconv"
	"strings"
)

// Validate checks the numeric inputs that bound the run. An empty result
// means the parameters can be submitted.
func Validate(p Parameters) FieldErrors {
	errs := FieldErrors{}

	switch {
	case missing(p.Age):
		errs["age"] = "Age is required and must be a number."
	case p.Age < 10 || p.Age > 80:
		errs["age"] = "Age must be between 10 and 80."
	}

	switch {
	case missing(p.BodyWeight):
		errs["weight"] = "Weight is required and must be a number."
	case p.BodyWeight < 20 || p.BodyWeight > 400:
		errs["weight"] = "Weight must be between 20 and 400 lbs."
	}

	switch {
	case p.Days == 0:
		errs["days"] = "Number of days is required and must be a number."
	case p.Days < 1 || p.Days > 30:
		errs["days"] = "Days must be between 1 and 30."
	}

	return errs
}

func missing(v float64) bool {
	return v == 0 || math.IsNaN(v)
}

// ParseParameters builds Parameters from loosely typed key/value input such
// as a form post or a chat command. Unknown keys are ignored and absent keys
// keep their Defaults value. Format problems are reported per field, as is a
// tent capacity outside 1..6; the other range checks are left to Validate.
func ParseParameters(values map[string]string) (Parameters, FieldErrors) {
	p := Defaults()
	errs := FieldErrors{}

	norm := make(map[string]string, len(values))
	for k, v := range values {
		norm[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	number := func(key, field, msg string, dst *float64) {
		raw, ok := norm[key]
		if !ok || raw == "" {
			return
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs[field] = msg
			return
		}
		*dst = v
	}
	integer := func(key, field, msg string, dst *int) {
		raw, ok := norm[key]
		if !ok || raw == "" {
			return
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs[field] = msg
			return
		}
		*dst = v
	}

	number("age", "age", "Age is required and must be a number.", &p.Age)
	number("weight", "weight", "Weight is required and must be a number.", &p.BodyWeight)
	integer("days", "days", "Number of days is required and must be a number.", &p.Days)
	number("avgelevation", "avgElevation", "Average elevation must be a number.", &p.AvgElevation)
	number("maxelevation", "maxElevation", "Max elevation must be a number.", &p.MaxElevation)
	integer("tentcapacity", "tentCapacity", "Tent capacity must be a number.", &p.TentCapacity)
	if _, bad := errs["tentCapacity"]; !bad && (p.TentCapacity < 1 || p.TentCapacity > 6) {
		errs["tentCapacity"] = "Tent capacity must be between 1 and 6."
	}

	if raw, ok := norm["sex"]; ok && raw != "" {
		switch s := Sex(strings.ToLower(raw)); s {
		case SexMale, SexFemale:
			p.Sex = s
		default:
			errs["sex"] = "Sex must be male or female."
		}
	}
	if raw, ok := norm["season"]; ok && raw != "" {
		switch s := Season(strings.ToLower(raw)); s {
		case SeasonSpring, SeasonSummer, SeasonFall:
			p.Season = s
		default:
			errs["season"] = "Season must be spring, summer or fall."
		}
	}
	if raw, ok := norm["packweight"]; ok && raw != "" {
		switch w := PackWeight(strings.ToLower(raw)); w {
		case PackUltralight, PackLight, PackStandard, PackRobust:
			p.PackWeight = w
		default:
			errs["packWeight"] = "Pack weight must be ultralight, light, standard or robust."
		}
	}
	if raw, ok := norm["diet"]; ok && raw != "" {
		switch d := Diet(strings.ToLower(raw)); d {
		case DietFlexible, DietVegetarian, DietVegan:
			p.Diet = d
		default:
			errs["diet"] = "Diet must be flexible, vegetarian or vegan."
		}
	}

	return p, errs
}
