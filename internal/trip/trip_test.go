package trip

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() Parameters {
	p := Defaults()
	p.Age = 30
	p.BodyWeight = 180
	p.Days = 3
	return p
}

func TestMaxCarryWeight(t *testing.T) {
	tests := []struct {
		name   string
		age    float64
		weight float64
		want   float64
	}{
		{"minor", 17, 100, 15},
		{"senior", 66, 100, 18},
		{"adult", 30, 100, 25},
		{"boundary 18 is adult", 18, 100, 25},
		{"boundary 65 is adult", 65, 100, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MaxCarryWeight(tt.age, tt.weight), 1e-9)
		})
	}
}

func TestPackLimitRoundsToOneDecimal(t *testing.T) {
	p := validParams()
	p.BodyWeight = 163
	// 163 * 0.25 = 40.75
	assert.Equal(t, 40.8, PackLimit(p))
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.Empty(t, Validate(validParams()))
	})

	t.Run("age below range only flags age", func(t *testing.T) {
		p := validParams()
		p.Age = 5
		errs := Validate(p)
		require.Len(t, errs, 1)
		assert.Equal(t, "Age must be between 10 and 80.", errs["age"])
	})

	t.Run("missing fields", func(t *testing.T) {
		p := validParams()
		p.Age = 0
		p.BodyWeight = math.NaN()
		p.Days = 0
		errs := Validate(p)
		assert.Equal(t, "Age is required and must be a number.", errs["age"])
		assert.Equal(t, "Weight is required and must be a number.", errs["weight"])
		assert.Equal(t, "Number of days is required and must be a number.", errs["days"])
	})

	t.Run("range violations", func(t *testing.T) {
		p := validParams()
		p.BodyWeight = 401
		p.Days = 31
		errs := Validate(p)
		assert.Equal(t, "Weight must be between 20 and 400 lbs.", errs["weight"])
		assert.Equal(t, "Days must be between 1 and 30.", errs["days"])
		assert.NotContains(t, errs, "age")
	})

	t.Run("only the three numeric inputs are checked", func(t *testing.T) {
		errs := Validate(Parameters{Age: 5, BodyWeight: 150, Days: 5})
		assert.Equal(t, FieldErrors{"age": "Age must be between 10 and 80."}, errs)
	})
}

func TestParseParameters(t *testing.T) {
	t.Run("defaults and overrides", func(t *testing.T) {
		p, errs := ParseParameters(map[string]string{
			"age":          "42",
			"Weight":       "170.5",
			"days":         "4",
			"season":       "Fall",
			"diet":         "vegan",
			"tentCapacity": "2",
		})
		require.Empty(t, errs)
		assert.Equal(t, 42.0, p.Age)
		assert.Equal(t, 170.5, p.BodyWeight)
		assert.Equal(t, 4, p.Days)
		assert.Equal(t, SeasonFall, p.Season)
		assert.Equal(t, DietVegan, p.Diet)
		assert.Equal(t, 2, p.TentCapacity)
		assert.Equal(t, SexMale, p.Sex)
		assert.Equal(t, 3500.0, p.AvgElevation)
		assert.Equal(t, PackStandard, p.PackWeight)
	})

	t.Run("format errors", func(t *testing.T) {
		_, errs := ParseParameters(map[string]string{
			"age":    "old",
			"season": "winter",
		})
		assert.Equal(t, "Age is required and must be a number.", errs["age"])
		assert.Contains(t, errs, "season")
	})

	t.Run("tent capacity out of range", func(t *testing.T) {
		_, errs := ParseParameters(map[string]string{"tentCapacity": "7"})
		assert.Equal(t, "Tent capacity must be between 1 and 6.", errs["tentCapacity"])

		_, errs = ParseParameters(map[string]string{"tentCapacity": "six"})
		assert.Equal(t, "Tent capacity must be a number.", errs["tentCapacity"])
	})
}

func TestFieldErrorsMessageIsStable(t *testing.T) {
	errs := FieldErrors{"weight": "b", "age": "a"}
	assert.Equal(t, "age: a; weight: b", errs.Error())
}
