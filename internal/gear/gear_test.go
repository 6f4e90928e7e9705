package gear

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculate(t *testing.T) {
	t.Run("quantity multiplies weight and price", func(t *testing.T) {
		list := &CategoryList{Kind: Clothing, Items: []Item{
			{Name: "Socks", Weight: 0.3, Price: 2, Quantity: 3},
		}}
		got := Recalculate(list)
		assert.Equal(t, 0.9, got.TotalWeight)
		assert.Equal(t, 6.0, got.TotalPrice)
		assert.Nil(t, got.TotalCalories)
	})

	t.Run("missing quantity counts once", func(t *testing.T) {
		list := &CategoryList{Kind: Sleeping, Items: []Item{
			{Name: "Bag", Weight: 2.1, Price: 199.99},
			{Name: "Pad", Weight: 1.05, Price: 80.004},
		}}
		got := Recalculate(list)
		assert.Equal(t, 3.15, got.TotalWeight)
		assert.Equal(t, 279.99, got.TotalPrice)
	})

	t.Run("food skips absent slots", func(t *testing.T) {
		list := &CategoryList{Kind: Food, Days: []FoodDay{{
			Day:   1,
			Meals: map[MealSlot]*Meal{Breakfast: {Item: "Oats", Weight: 1.2, Price: 3, Calories: 400}},
		}}}
		got := Recalculate(list)
		assert.Equal(t, 1.2, got.TotalWeight)
		assert.Equal(t, 3.0, got.TotalPrice)
		require.NotNil(t, got.TotalCalories)
		assert.Equal(t, 400, *got.TotalCalories)
	})

	t.Run("does not mutate input", func(t *testing.T) {
		list := &CategoryList{Kind: Misc, TotalWeight: 99, Items: []Item{{Name: "Map", Weight: 0.1, Price: 10}}}
		got := Recalculate(list)
		assert.Equal(t, 99.0, list.TotalWeight)
		assert.Equal(t, 0.1, got.TotalWeight)
	})

	t.Run("nil list", func(t *testing.T) {
		assert.Nil(t, Recalculate(nil))
	})
}

func TestParseList(t *testing.T) {
	t.Run("ignores model totals and mixed casing", func(t *testing.T) {
		text := `{"items":[{"Item":"Socks","Weight":"0.3 lbs","Price":2,"quantity":"3 pairs"},{"name":"Hat","weight":0.2,"price":"$15"}],"totalWeight":100,"totalPrice":1}`
		list, err := ParseList(Clothing, text)
		require.NoError(t, err)
		require.Len(t, list.Items, 2)
		assert.Equal(t, "Socks", list.Items[0].Name)
		assert.Equal(t, 3.0, list.Items[0].Quantity)
		assert.Equal(t, "Hat", list.Items[1].Name)
		assert.Equal(t, 15.0, list.Items[1].Price)
		assert.Equal(t, 1.1, list.TotalWeight)
		assert.Equal(t, 21.0, list.TotalPrice)
	})

	t.Run("bare array", func(t *testing.T) {
		list, err := ParseList(Misc, `[{"item":"Map","weight":0.1,"price":12}]`)
		require.NoError(t, err)
		assert.Equal(t, []string{"Map"}, list.Names())
	})

	t.Run("repairs prose wrapped json", func(t *testing.T) {
		list, err := ParseList(Cooking, "Sure! Here is the list:\n{\"items\":[{\"item\":\"Stove\",\"weight\":.4,\"price\":50,}]}\nHappy hiking")
		require.NoError(t, err)
		assert.Equal(t, 0.4, list.TotalWeight)
	})

	t.Run("food days", func(t *testing.T) {
		text := `{"items":[
			{"day":1,"Breakfast":{"Item":"Oats","Weight":0.5,"Price":2,"Calories":300},"lunch":{"item":"Wrap","weight":0.6,"price":4,"calories":500.4}},
			{"Day":"Day 2","Dinner":"Ramen"}
		]}`
		list, err := ParseList(Food, text)
		require.NoError(t, err)
		require.Len(t, list.Days, 2)
		assert.Equal(t, 1, list.Days[0].Day)
		assert.Equal(t, 2, list.Days[1].Day)
		assert.Equal(t, []string{"Oats", "Wrap", "Ramen"}, list.Names())
		assert.Equal(t, 1.1, list.TotalWeight)
		assert.Equal(t, 800, *list.TotalCalories)
	})

	t.Run("unparseable", func(t *testing.T) {
		_, err := ParseList(Sleeping, "I could not find any gear")
		var perr *ParseError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, Sleeping, perr.Kind)
	})

	t.Run("object without items", func(t *testing.T) {
		_, err := ParseList(Misc, `{"gear":"none"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, errNoItems)
	})
}

func TestCategoryListJSONUsesItemsKey(t *testing.T) {
	list := Recalculate(&CategoryList{Kind: Food, Days: []FoodDay{{
		Day:   1,
		Meals: map[MealSlot]*Meal{Dinner: {Item: "Chili", Weight: 0.7, Price: 9, Calories: 650}},
	}}})
	b, err := json.Marshal(list)
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(b, &v))
	days := v["items"].([]any)
	require.Len(t, days, 1)
	day := days[0].(map[string]any)
	assert.Equal(t, float64(1), day["day"])
	assert.Contains(t, day, "Dinner")
	assert.NotContains(t, day, "Breakfast")
	assert.Equal(t, float64(650), v["totalCalories"])

	b, err = json.Marshal(&CategoryList{Kind: Misc})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"totalWeight":0,"totalPrice":0}`, string(b))
}

func TestNumberCoercion(t *testing.T) {
	n, ok := LeadingNumber("2 pairs")
	assert.True(t, ok)
	assert.Equal(t, 2.0, n)

	_, ok = LeadingNumber("about 2")
	assert.False(t, ok)

	n, ok = FirstNumber("approx. 2.5 lbs")
	assert.True(t, ok)
	assert.Equal(t, 2.5, n)

	n, ok = FirstNumber(".5 lbs")
	assert.True(t, ok)
	assert.Equal(t, 0.5, n)

	list, err := ParseList(Clothing, `{"items":[{"item":"Buff","weight":".5 lbs","price":"$12"}]}`)
	require.NoError(t, err)
	assert.Equal(t, 0.5, list.Items[0].Weight)
	assert.Equal(t, 0.5, list.TotalWeight)
}

func TestParseListAliasPrecedence(t *testing.T) {
	const gearResp = `{"list":[{"name":"Liner"}],"items":[{"name":"Merino socks","item":"Socks","Weight":1,"weight":2,"qty":2,"quantity":3,"url":"https://b","link":"https://a"}]}`
	const foodResp = `{"items":[{"day":1,"Dinner":{"Item":"Pasta"},"dinner":{"name":"Curry","item":"Rice","Calories":100,"calories":600,"weight":1}}]}`

	for i := 0; i < 50; i++ {
		list, err := ParseList(Clothing, gearResp)
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, Item{Name: "Socks", Weight: 2, Quantity: 3, Link: "https://a"}, list.Items[0])
		assert.Equal(t, 6.0, list.TotalWeight)

		food, err := ParseList(Food, foodResp)
		require.NoError(t, err)
		require.Len(t, food.Days, 1)
		dinner := food.Days[0].Meals[Dinner]
		require.NotNil(t, dinner)
		assert.Equal(t, "Rice", dinner.Item)
		assert.Equal(t, 600.0, dinner.Calories)
	}
}

func TestWithLinks(t *testing.T) {
	list := &CategoryList{Kind: Clothing, Items: []Item{{Name: "A"}, {Name: "B"}}}
	got := list.WithLinks([]GroundingLink{{URI: "https://a"}})
	assert.Equal(t, "https://a", got.Items[0].Link)
	assert.Empty(t, got.Items[1].Link)
	assert.Empty(t, list.Items[0].Link, "input untouched")
}

func TestRemoveNearDuplicates(t *testing.T) {
	misc := Recalculate(&CategoryList{Kind: Misc, Items: []Item{
		{Name: "Headlamp", Weight: 0.2, Price: 30},
		{Name: "Wool Socks", Weight: 0.3, Price: 20},
		{Name: "Sunscreen", Weight: 0.2, Price: 8},
	}})

	got, dropped := RemoveNearDuplicates(misc, []string{"wool sock", "Jetboil Flash"}, DefaultSimilarity)
	assert.Equal(t, []string{"Wool Socks"}, dropped)
	assert.Equal(t, []string{"Headlamp", "Sunscreen"}, got.Names())
	assert.Equal(t, 0.4, got.TotalWeight)
	assert.Equal(t, 38.0, got.TotalPrice)

	same, none := RemoveNearDuplicates(misc, []string{"Tent"}, DefaultSimilarity)
	assert.Nil(t, none)
	assert.Same(t, misc, same)
}
