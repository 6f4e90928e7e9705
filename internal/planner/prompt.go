package planner

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/trip"
)

//go:embed *_prompt.md
var promptFS embed.FS

var prompts = template.Must(
	template.New("prompts").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptFS, "*_prompt.md"),
)

type promptData struct {
	Days         int
	MaxWeight    string
	PackWeight   trip.PackWeight
	Target       string
	Minimum      string
	DailyFood    string
	Diet         trip.Diet
	Season       trip.Season
	AvgElevation string
	MaxElevation string
	TentSize     int
	Existing     []string

	Kind    string
	Summary string
}

func newPromptData(p trip.Parameters) promptData {
	return promptData{
		Days:         p.Days,
		PackWeight:   p.PackWeight,
		Diet:         p.Diet,
		Season:       p.Season,
		AvgElevation: fmt.Sprintf("%.0f", p.AvgElevation),
		MaxElevation: fmt.Sprintf("%.0f", p.MaxElevation),
		TentSize:     max(p.TentCapacity, 1) + 1,
	}
}

// BuildDistributionPrompt asks for the five-way weight split of maxWeight.
func BuildDistributionPrompt(p trip.Parameters, maxWeight float64) (string, error) {
	data := newPromptData(p)
	data.MaxWeight = fmt.Sprintf("%.1f", maxWeight)
	return render("distribution_prompt.md", data)
}

// BuildCategoryPrompt renders the list prompt for kind with its weight
// target. existing names items already chosen in other categories and is
// only used by the misc prompt.
func BuildCategoryPrompt(kind gear.Kind, p trip.Parameters, target float64, existing []string) (string, error) {
	data := newPromptData(p)
	data.Target = fmt.Sprintf("%.2f", target)
	data.Minimum = fmt.Sprintf("%.2f", 0.9*target)
	if p.Days > 0 {
		data.DailyFood = fmt.Sprintf("%.2f", target/float64(p.Days))
	}
	if kind == gear.Misc {
		data.Existing = existing
	}
	return render(string(kind)+"_prompt.md", data)
}

// BuildGroundingPrompt asks the grounded backend to cite sources for the
// items summarized in summary.
func BuildGroundingPrompt(kind gear.Kind, summary string) (string, error) {
	return render("grounding_prompt.md", promptData{
		Kind:    strings.ToLower(kind.Title()),
		Summary: summary,
	})
}

func render(name string, data promptData) (string, error) {
	tmpl := prompts.Lookup(name)
	if tmpl == nil {
		return "", fmt.Errorf("no prompt template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
