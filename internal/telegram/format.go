package telegram

import (
	"fmt"
	"sort"
	"strings"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/metrics"
	"ai-pack-planner/internal/shopping"
)

const helpText = "🎒 *Pack Planner*\n\n" +
	"`/pack age=30 weight=170 days=3` plans a pack list.\n" +
	"Optional: `sex` (male|female), `season` (spring|summer|fall), " +
	"`avgElevation`, `maxElevation` (ft), `packWeight` (ultralight|light|standard|robust), " +
	"`diet` (flexible|vegetarian|vegan), `tentCapacity` (1-6).\n\n" +
	"`/metrics` shows usage (admin only)."

// parseCommand splits "/cmd@bot args" into "/cmd" and "args".
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", text
	}
	cmd, args, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// parseKeyValues reads "key=value" or "key: value" pairs separated by
// spaces, commas or newlines.
func parseKeyValues(args string) map[string]string {
	out := map[string]string{}
	args = strings.ReplaceAll(args, ": ", ":")
	fields := strings.FieldsFunc(args, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\n' || r == '\t'
	})
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			k, v, ok = strings.Cut(f, ":")
		}
		if ok && k != "" {
			out[k] = v
		}
	}
	return out
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func formatFieldErrors(errs map[string]string) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var sb strings.Builder
	sb.WriteString("⚠️ *Please fix input errors:*\n")
	for _, f := range fields {
		fmt.Fprintf(&sb, "• %s\n", escapeMarkdown(errs[f]))
	}
	sb.WriteString("\nSend /help for the format.")
	return sb.String()
}

func formatCategoryMarkdown(kind gear.Kind, list *gear.CategoryList) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n\n", kind.Title())
	if list == nil {
		fmt.Fprintf(&sb, "❌ Failed to generate %s list.", kind)
		return sb.String()
	}

	if kind == gear.Food {
		for _, day := range list.Days {
			fmt.Fprintf(&sb, "*Day %d*\n", day.Day)
			for _, slot := range gear.MealSlots {
				meal := day.Meals[slot]
				if meal == nil {
					continue
				}
				fmt.Fprintf(&sb, "• _%s_: %s (%.2f lb, $%.2f, %.0f cal)\n",
					slot, escapeMarkdown(meal.Item), meal.Weight, meal.Price, meal.Calories)
			}
		}
	} else {
		for _, it := range list.Items {
			name := escapeMarkdown(it.Name)
			if it.Link != "" {
				name = fmt.Sprintf("[%s](%s)", name, it.Link)
			}
			if it.Qty() != 1 {
				fmt.Fprintf(&sb, "• %s ×%g (%.2f lb, $%.2f)\n", name, it.Qty(), it.Weight, it.Price)
			} else {
				fmt.Fprintf(&sb, "• %s (%.2f lb, $%.2f)\n", name, it.Weight, it.Price)
			}
		}
	}

	fmt.Fprintf(&sb, "\n*Total:* %.2f lb, $%.2f", list.TotalWeight, list.TotalPrice)
	if list.TotalCalories != nil {
		fmt.Fprintf(&sb, ", %d cal", *list.TotalCalories)
	}
	return sb.String()
}

func formatSummaryMarkdown(s shopping.Summary) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Shopping Summary*\n\n")
	for _, line := range s.Lines {
		if line.Missing {
			fmt.Fprintf(&sb, "• %s: _missing_\n", line.Title)
			continue
		}
		fmt.Fprintf(&sb, "• %s: %.2f lb, $%.2f", line.Title, line.Weight, line.Price)
		if line.OverTarget() {
			fmt.Fprintf(&sb, " ⚠️ over %.2f lb", line.Target)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\n*Pack:* %.2f of %.2f lb, $%.2f\n", s.TotalWeight, s.MaxWeight, s.TotalPrice)
	if s.OverMax() {
		fmt.Fprintf(&sb, "⚠️ Over the carry limit by %.2f lb", -s.Remaining())
	} else {
		fmt.Fprintf(&sb, "✅ %.2f lb to spare", s.Remaining())
	}
	return sb.String()
}

// formatSourcesMarkdown lists grounding links per category, or "" when
// there are none.
func formatSourcesMarkdown(links map[gear.Kind][]gear.GroundingLink) string {
	var sb strings.Builder
	for _, kind := range gear.Kinds {
		ls := links[kind]
		if len(ls) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n*%s*\n", kind.Title())
		for i, l := range ls {
			title := l.Title
			if title == "" {
				title = l.URI
			}
			fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, escapeMarkdown(title), l.URI)
		}
	}
	if sb.Len() == 0 {
		return ""
	}
	return "🔗 *Sources*\n" + sb.String()
}

func formatMetricsMarkdown(daily []metrics.DailyUsage, stages []metrics.StageUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(daily) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range daily {
		fmt.Fprintf(&sb, "• *%s*: %d tokens (%d calls, %d failed)\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures)
	}

	if len(stages) > 0 {
		sb.WriteString("\n🧩 *By Stage*\n")
		for _, s := range stages {
			fmt.Fprintf(&sb, "• %s: %d tokens, %d calls, avg %dms\n",
				escapeMarkdown(s.Stage), s.Tokens, s.Calls, s.AvgLatencyMS)
		}
	}

	sb.WriteString("\n🧠 *System Health*\n")
	fmt.Fprintf(&sb, "• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB)
	fmt.Fprintf(&sb, "• Goroutines: %d\n", health.Goroutines)
	fmt.Fprintf(&sb, "• Uptime: %s\n", health.Uptime)
	fmt.Fprintf(&sb, "• Disk Data: %s\n", health.DataSize)
	return sb.String()
}
