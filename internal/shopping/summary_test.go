package shopping

import (
	"testing"

	"ai-pack-planner/internal/gear"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	lists := map[gear.Kind]*gear.CategoryList{
		gear.Clothing: {Kind: gear.Clothing, Items: []gear.Item{
			{Name: "Wool Socks", Weight: 0.15, Price: 20, Quantity: 3},
			{Name: "Rain Jacket", Weight: 0.8, Price: 120},
		}},
		gear.Food: {Kind: gear.Food, Days: []gear.FoodDay{
			{Day: 1, Meals: map[gear.MealSlot]*gear.Meal{
				gear.Breakfast: {Item: "Oatmeal", Weight: 0.3, Price: 2, Calories: 300},
				gear.Dinner:    {Item: "Ramen", Weight: 0.25, Price: 1.5, Calories: 450},
			}},
			{Day: 2, Meals: map[gear.MealSlot]*gear.Meal{
				gear.Breakfast: {Item: "Oatmeal", Weight: 0.3, Price: 2, Calories: 300},
			}},
		}},
		gear.Cooking: nil,
	}
	budget := &gear.WeightBudget{Clothing: 1, Food: 2, Cooking: 3}

	s := Summarize(lists, budget, 10)

	require.Len(t, s.Lines, 3)
	assert.Equal(t, gear.Food, s.Lines[0].Kind)
	assert.Equal(t, gear.Clothing, s.Lines[1].Kind)
	assert.Equal(t, gear.Cooking, s.Lines[2].Kind)

	clothing := s.Lines[1]
	assert.Equal(t, 1.25, clothing.Weight)
	assert.Equal(t, 180.0, clothing.Price)
	assert.True(t, clothing.OverTarget())

	assert.True(t, s.Lines[2].Missing)
	assert.Equal(t, "Cooking Equipment", s.Lines[2].Title)

	assert.Equal(t, 2.1, s.TotalWeight)
	assert.Equal(t, 185.5, s.TotalPrice)
	assert.Equal(t, 1050, s.TotalCalories)
	assert.Equal(t, 7.9, s.Remaining())
	assert.False(t, s.OverMax())

	require.Len(t, s.Purchases, 4)
	assert.Equal(t, Purchase{Kind: gear.Food, Name: "Oatmeal", Quantity: 2, Price: 4}, s.Purchases[0])
	assert.Equal(t, Purchase{Kind: gear.Clothing, Name: "Wool Socks", Quantity: 3, Price: 60}, s.Purchases[2])
}

func TestSummarizeOverMax(t *testing.T) {
	lists := map[gear.Kind]*gear.CategoryList{
		gear.Sleeping: {Kind: gear.Sleeping, Items: []gear.Item{{Name: "Tent", Weight: 6, Price: 400}}},
	}
	s := Summarize(lists, nil, 5)
	assert.True(t, s.OverMax())
	assert.Equal(t, -1.0, s.Remaining())
	assert.False(t, s.Lines[0].OverTarget())
}
