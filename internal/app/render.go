package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/shopping"
	"ai-pack-planner/internal/wizard"

	"github.com/charmbracelet/lipgloss"
)

// Trail palette.
var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorBlue   = lipgloss.Color("#83a598")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorHeader = lipgloss.Color("#fe8019")
)

var (
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleBold   = lipgloss.NewStyle().Foreground(colorFg).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	styleRed    = lipgloss.NewStyle().Foreground(colorRed)
	styleLink   = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
)

func renderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		PaddingLeft(1).
		PaddingRight(1)
	return box.Render(styleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
}

// RenderPlan renders a run snapshot for the terminal.
func RenderPlan(st wizard.State) string {
	var sections []string
	sections = append(sections, renderBudget(st))

	for _, kind := range gear.Kinds {
		list, present := st.Lists[kind]
		if !present {
			continue
		}
		sections = append(sections, renderBox(kind.Title(), renderCategory(st, kind, list)))
	}

	if st.Phase == wizard.PhaseComplete {
		sections = append(sections, renderBox("Shopping Summary", RenderSummary(shopping.Summarize(st.Lists, st.Budget, st.MaxWeight))))
	}
	return strings.Join(sections, "\n")
}

func renderBudget(st wizard.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", styleBold.Render("Max carry weight:"), formatWeight(st.MaxWeight))
	if st.Budget == nil {
		return renderBox("Pack Budget", b.String())
	}

	fallback := map[gear.Kind]bool{}
	for _, k := range st.Budget.Fallback {
		fallback[k] = true
	}
	for _, kind := range gear.Kinds {
		line := fmt.Sprintf("%-18s %s", kind.Title(), formatWeight(st.Budget.For(kind)))
		if fallback[kind] {
			line += styleDim.Render("  (default ratio)")
		}
		b.WriteString(line + "\n")
	}
	if st.ErrorMessage != "" {
		b.WriteString("\n" + styleYellow.Render(st.ErrorMessage) + "\n")
	}
	return renderBox("Pack Budget", strings.TrimRight(b.String(), "\n"))
}

func renderCategory(st wizard.State, kind gear.Kind, list *gear.CategoryList) string {
	if list == nil {
		return styleRed.Render(fmt.Sprintf("Failed to generate %s list.", kind))
	}

	var b strings.Builder
	if kind == gear.Food {
		for _, day := range list.Days {
			b.WriteString(styleBold.Render(fmt.Sprintf("Day %d", day.Day)))
			if day.Link != "" {
				b.WriteString("  " + styleLink.Render(day.Link))
			}
			b.WriteString("\n")
			for _, slot := range gear.MealSlots {
				meal := day.Meals[slot]
				if meal == nil {
					continue
				}
				fmt.Fprintf(&b, "  %-9s %s  %s  %s  %.0f cal\n",
					string(slot)+":", meal.Item, formatWeight(meal.Weight), formatPrice(meal.Price), meal.Calories)
			}
		}
	} else {
		for _, it := range list.Items {
			name := it.Name
			if it.Qty() != 1 {
				name = fmt.Sprintf("%s x%s", name, trimFloat(it.Qty()))
			}
			fmt.Fprintf(&b, "- %s  %s  %s\n", name, formatWeight(it.Weight), formatPrice(it.Price))
			if it.Link != "" {
				b.WriteString("  " + styleLink.Render(it.Link) + "\n")
			}
		}
	}

	total := fmt.Sprintf("Total: %s, %s", formatWeight(list.TotalWeight), formatPrice(list.TotalPrice))
	if list.TotalCalories != nil {
		total += fmt.Sprintf(", %d cal", *list.TotalCalories)
	}
	b.WriteString("\n" + styleGreen.Render(total))

	if st.Enriching[kind] {
		b.WriteString("\n" + styleDim.Render("Finding sources..."))
	}
	if links := st.Links[kind]; len(links) > 0 {
		b.WriteString("\n\n" + styleBold.Render("Sources") + "\n")
		for i, l := range links {
			title := l.Title
			if title == "" {
				title = l.URI
			}
			fmt.Fprintf(&b, "%d. %s %s\n", i+1, title, styleLink.Render(l.URI))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderSummary renders the shopping roll-up.
func RenderSummary(s shopping.Summary) string {
	var b strings.Builder
	for _, line := range s.Lines {
		if line.Missing {
			fmt.Fprintf(&b, "%-18s %s\n", line.Title, styleRed.Render("missing"))
			continue
		}
		row := fmt.Sprintf("%-18s %s  %s", line.Title, formatWeight(line.Weight), formatPrice(line.Price))
		if line.OverTarget() {
			row += styleYellow.Render(fmt.Sprintf("  over target %s", formatWeight(line.Target)))
		}
		b.WriteString(row + "\n")
	}

	fmt.Fprintf(&b, "\n%s %s of %s, %s\n",
		styleBold.Render("Pack:"), formatWeight(s.TotalWeight), formatWeight(s.MaxWeight), formatPrice(s.TotalPrice))
	if s.TotalCalories > 0 {
		fmt.Fprintf(&b, "%s %d cal\n", styleBold.Render("Food energy:"), s.TotalCalories)
	}
	if s.OverMax() {
		b.WriteString(styleRed.Render(fmt.Sprintf("Over the carry limit by %s", formatWeight(-s.Remaining()))))
	} else {
		b.WriteString(styleGreen.Render(fmt.Sprintf("%s to spare", formatWeight(s.Remaining()))))
	}
	return b.String()
}

func formatWeight(lb float64) string { return fmt.Sprintf("%.2f lb", lb) }

func formatPrice(p float64) string { return fmt.Sprintf("$%.2f", p) }

func trimFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// ConsoleNotifier prints progress messages, one per line.
type ConsoleNotifier struct {
	W io.Writer
}

func (n ConsoleNotifier) Notify(_ context.Context, message string) error {
	style := styleDim
	if strings.HasPrefix(message, "Failed") || strings.HasPrefix(message, "Could not") || strings.HasPrefix(message, "Please") {
		style = styleYellow
	}
	_, err := fmt.Fprintln(n.W, style.Render("› "+message))
	return err
}
