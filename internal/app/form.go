package app

import (
	"errors"
	"strconv"

	"ai-pack-planner/internal/trip"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

func packHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(colorDim)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(colorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(colorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(colorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(colorFg).Background(colorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(colorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(colorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(colorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(colorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(colorRed)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(colorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(colorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(colorDim)

	return t
}

// FormValues are the raw form fields, keyed like trip.ParseParameters input.
type FormValues map[string]*string

// NewFormValues seeds the form with the defaults.
func NewFormValues() FormValues {
	d := trip.Defaults()
	s := func(v string) *string { return &v }
	return FormValues{
		"age":          s(""),
		"weight":       s(""),
		"days":         s(""),
		"sex":          s(string(d.Sex)),
		"season":       s(string(d.Season)),
		"avgElevation": s(strconv.FormatFloat(d.AvgElevation, 'f', -1, 64)),
		"maxElevation": s(strconv.FormatFloat(d.MaxElevation, 'f', -1, 64)),
		"packWeight":   s(string(d.PackWeight)),
		"diet":         s(string(d.Diet)),
		"tentCapacity": s(strconv.Itoa(d.TentCapacity)),
	}
}

// Parameters parses the current values.
func (v FormValues) Parameters() (trip.Parameters, trip.FieldErrors) {
	raw := make(map[string]string, len(v))
	for k, p := range v {
		raw[k] = *p
	}
	return trip.ParseParameters(raw)
}

// fieldValidator reports the parse or range message for one field.
func fieldValidator(field string) func(string) error {
	return func(s string) error {
		p, errs := trip.ParseParameters(map[string]string{field: s})
		if msg, ok := errs[field]; ok {
			return errors.New(msg)
		}
		if msg, ok := trip.Validate(p)[field]; ok {
			return errors.New(msg)
		}
		return nil
	}
}

// NewTripForm builds the interactive trip form over values.
func NewTripForm(values FormValues) *huh.Form {
	input := func(field, title, placeholder string) *huh.Input {
		return huh.NewInput().
			Title(title).
			Placeholder(placeholder).
			Value(values[field]).
			Validate(fieldValidator(field))
	}
	choice := func(field, title string, options ...string) *huh.Select[string] {
		return huh.NewSelect[string]().
			Title(title).
			Options(huh.NewOptions(options...)...).
			Value(values[field])
	}

	return huh.NewForm(
		huh.NewGroup(
			input("age", "Age", "30"),
			input("weight", "Body weight (lbs)", "170"),
			choice("sex", "Sex", string(trip.SexMale), string(trip.SexFemale)),
		).Title("Hiker"),
		huh.NewGroup(
			input("days", "Number of days", "3"),
			choice("season", "Season", string(trip.SeasonSpring), string(trip.SeasonSummer), string(trip.SeasonFall)),
			input("avgElevation", "Average elevation (ft)", "3500"),
			input("maxElevation", "Max elevation (ft)", "7500"),
		).Title("Trip"),
		huh.NewGroup(
			choice("packWeight", "Pack style",
				string(trip.PackUltralight), string(trip.PackLight), string(trip.PackStandard), string(trip.PackRobust)),
			choice("diet", "Diet", string(trip.DietFlexible), string(trip.DietVegetarian), string(trip.DietVegan)),
			input("tentCapacity", "Tent capacity", "1"),
		).Title("Preferences"),
	).WithTheme(packHuhTheme()).WithShowHelp(false)
}
