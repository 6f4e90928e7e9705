package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"ai-pack-planner/internal/app"
	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/metrics"
	"ai-pack-planner/internal/shopping"
	"ai-pack-planner/internal/trip"
	"ai-pack-planner/internal/wizard"

	"github.com/spf13/cobra"
)

func newRootCmd(a *app.App, interactive func() bool) *cobra.Command {
	root := &cobra.Command{
		Use:           "pack-planner",
		Short:         "Generate hiking pack lists sized to what you can carry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newGenerateCmd(a, interactive),
		newMetricsCmd(a),
		newMetricsCleanupCmd(a),
	)
	return root
}

// tripFlags maps flag names to trip.ParseParameters keys.
var tripFlags = []struct{ flag, key, usage string }{
	{"age", "age", "hiker age in years"},
	{"weight", "weight", "body weight in lbs"},
	{"sex", "sex", "male or female"},
	{"days", "days", "trip length in days"},
	{"season", "season", "spring, summer or fall"},
	{"avg-elevation", "avgElevation", "average elevation in ft"},
	{"max-elevation", "maxElevation", "max elevation in ft"},
	{"pack-weight", "packWeight", "ultralight, light, standard or robust"},
	{"diet", "diet", "flexible, vegetarian or vegan"},
	{"tent-capacity", "tentCapacity", "people the tent sleeps (1-6)"},
}

func newGenerateCmd(a *app.App, interactive func() bool) *cobra.Command {
	var (
		asJSON bool
		form   bool
		values = map[string]*string{}
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Plan a pack list from trip flags or an interactive form",
		Example: "  pack-planner generate --age 30 --weight 170 --days 3\n" +
			"  pack-planner generate --form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			useForm := form || (cmd.Flags().NFlag() == 0 && interactive())
			params, err := readParams(cmd, values, useForm)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			opts := []wizard.Option{}
			if !asJSON {
				opts = append(opts, wizard.WithNotifier(app.ConsoleNotifier{W: cmd.ErrOrStderr()}))
			}
			st, err := a.Generate(ctx, params, opts...)
			if err != nil {
				var verr *wizard.ValidationError
				if errors.As(err, &verr) {
					return verr.Fields
				}
				return err
			}

			if asJSON {
				return writeJSON(out, st)
			}
			fmt.Fprintln(out, app.RenderPlan(st))
			return nil
		},
	}

	for _, f := range tripFlags {
		values[f.key] = cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().BoolVar(&form, "form", false, "fill in the trip with an interactive form")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")
	return cmd
}

func readParams(cmd *cobra.Command, values map[string]*string, useForm bool) (trip.Parameters, error) {
	if useForm {
		fv := app.NewFormValues()
		if err := app.NewTripForm(fv).RunWithContext(cmd.Context()); err != nil {
			return trip.Parameters{}, fmt.Errorf("trip form: %w", err)
		}
		params, errs := fv.Parameters()
		if len(errs) > 0 {
			return trip.Parameters{}, errs
		}
		return params, nil
	}

	raw := map[string]string{}
	for _, f := range tripFlags {
		if cmd.Flags().Changed(f.flag) {
			raw[f.key] = *values[f.key]
		}
	}
	params, errs := trip.ParseParameters(raw)
	if len(errs) > 0 {
		return trip.Parameters{}, errs
	}
	return params, nil
}

type planJSON struct {
	RunID     string                             `json:"runId"`
	MaxWeight float64                            `json:"maxWeight"`
	Budget    *gear.WeightBudget                 `json:"budget"`
	Lists     map[gear.Kind]*gear.CategoryList   `json:"lists"`
	Links     map[gear.Kind][]gear.GroundingLink `json:"links"`
	Errors    map[gear.Kind]string               `json:"errors,omitempty"`
	Summary   shoppingJSON                       `json:"summary"`
}

type shoppingJSON struct {
	TotalWeight   float64 `json:"totalWeight"`
	TotalPrice    float64 `json:"totalPrice"`
	TotalCalories int     `json:"totalCalories"`
	Remaining     float64 `json:"remaining"`
}

func writeJSON(w io.Writer, st wizard.State) error {
	s := shopping.Summarize(st.Lists, st.Budget, st.MaxWeight)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(planJSON{
		RunID:     st.RunID,
		MaxWeight: st.MaxWeight,
		Budget:    st.Budget,
		Lists:     st.Lists,
		Links:     st.Links,
		Errors:    st.Errors,
		Summary: shoppingJSON{
			TotalWeight:   s.TotalWeight,
			TotalPrice:    s.TotalPrice,
			TotalCalories: s.TotalCalories,
			Remaining:     s.Remaining(),
		},
	})
}

func newMetricsCmd(a *app.App) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show model usage and process health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			daily, err := a.Metrics.GetDailyUsage(ctx, days)
			if err != nil {
				return err
			}
			stages, err := a.Metrics.GetStageUsage(ctx, days)
			if err != nil {
				return err
			}
			printMetrics(cmd.OutOrStdout(), daily, stages, metrics.GetSysHealth(a.DataDir()))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "days of history to include")
	return cmd
}

func printMetrics(w io.Writer, daily []metrics.DailyUsage, stages []metrics.StageUsage, h metrics.SysHealth) {
	fmt.Fprintln(w, "Recent model usage")
	if len(daily) == 0 {
		fmt.Fprintln(w, "  no data yet")
	}
	for _, d := range daily {
		fmt.Fprintf(w, "  %s  %6d tokens  %3d calls  %d failed\n",
			d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution, d.Failures)
	}
	if len(stages) > 0 {
		fmt.Fprintln(w, "\nBy stage")
		for _, s := range stages {
			fmt.Fprintf(w, "  %-20s %6d tokens  %3d calls  avg %dms\n", s.Stage, s.Tokens, s.Calls, s.AvgLatencyMS)
		}
	}
	fmt.Fprintln(w, "\nHealth")
	fmt.Fprintf(w, "  RAM %dMB alloc / %dMB sys, %d goroutines, data %s\n", h.AllocMB, h.SysMB, h.Goroutines, h.DataSize)
}

func newMetricsCleanupCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics-cleanup [days]",
		Short: "Delete usage records older than the given number of days (default 30)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 30
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("days must be a positive integer, got %q", args[0])
				}
				days = n
			}
			removed, err := a.Metrics.Cleanup(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records older than %d days.\n", removed, days)
			return nil
		},
	}
}
