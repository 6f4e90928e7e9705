package planner

import (
	"context"
	"regexp"
	"strings"

	"ai-pack-planner/internal/gear"
	"ai-pack-planner/internal/llm"
	"ai-pack-planner/internal/logger"
)

// DefaultEnrichAttempts is one try plus two retries.
const DefaultEnrichAttempts = 3

var citationMarkerRe = regexp.MustCompile(`\[\d+\]`)

// EnrichResult is the outcome of grounding one list. Links is never nil.
type EnrichResult struct {
	List     *gear.CategoryList
	Links    []gear.GroundingLink
	Attempts int
}

// Enricher asks a search-grounded backend for sources behind a list.
//
// It keeps asking while the answer is usable but carries no citations
// (Satisfied returns false) or while the backend fails, up to MaxAttempts
// calls in total.
type Enricher struct {
	gen         *GroundedGenerator
	MaxAttempts int
	Satisfied   func(llm.GroundedResponse) bool
	log         *logger.Logger
}

// NewEnricher creates an Enricher. maxAttempts below 1 means the default.
func NewEnricher(gen *GroundedGenerator, maxAttempts int, log *logger.Logger) *Enricher {
	if maxAttempts < 1 {
		maxAttempts = DefaultEnrichAttempts
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Enricher{
		gen:         gen,
		MaxAttempts: maxAttempts,
		Satisfied:   func(r llm.GroundedResponse) bool { return len(r.Citations) > 0 },
		log:         log,
	}
}

// Enrich grounds list. The returned list always has fresh totals. When every
// attempt failed the original list comes back with the last error; when
// attempts ran out on answers without citations the result has an empty
// link set and no error.
func (e *Enricher) Enrich(ctx context.Context, list *gear.CategoryList) (EnrichResult, error) {
	empty := EnrichResult{List: list, Links: []gear.GroundingLink{}}
	if list == nil || list.Len() == 0 {
		return empty, nil
	}

	kind := list.Kind
	stage := string(kind) + "-grounding"
	log := e.log.With("stage", stage, "run_id", RunIDFrom(ctx))

	schema, err := SchemaFor(string(kind))
	if err != nil {
		return empty, err
	}
	prompt, err := BuildGroundingPrompt(kind, Summarize(list))
	if err != nil {
		return empty, err
	}

	var (
		lastErr    error
		lastParsed []any
		attempt    int
	)
	for attempt = 1; attempt <= e.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		resp, err := e.gen.Generate(ctx, stage, prompt, schema)
		if err != nil {
			lastErr = err
			log.Warn("grounding attempt failed", "attempt", attempt, "error", err)
			continue
		}

		text := llm.NormalizeResponse(resp.Content)
		raw, err := gear.DecodeRawItems(text)
		if err != nil {
			lastErr = &gear.ParseError{Kind: kind, Response: text, Err: err}
			log.Warn("grounding response unparseable", "attempt", attempt, "error", err)
			continue
		}
		lastParsed = raw

		if e.Satisfied(resp) {
			links := toLinks(resp.Citations)
			log.Info("grounding succeeded", "attempt", attempt, "links", len(links))
			return EnrichResult{
				List:     merge(list, raw, links),
				Links:    links,
				Attempts: attempt,
			}, nil
		}
		log.Debug("grounding returned no citations", "attempt", attempt)
	}
	if attempt > e.MaxAttempts {
		attempt = e.MaxAttempts
	}

	if lastParsed != nil {
		log.Info("grounding gave up without citations", "attempts", attempt)
		return EnrichResult{
			List:     merge(list, lastParsed, nil),
			Links:    []gear.GroundingLink{},
			Attempts: attempt,
		}, nil
	}

	empty.Attempts = attempt
	return empty, lastErr
}

// Summarize renders the item names of list for the grounding prompt. Food
// joins each day's meals with commas and the days with semicolons.
func Summarize(list *gear.CategoryList) string {
	if list == nil {
		return ""
	}
	if list.Kind == gear.Food {
		days := make([]string, 0, len(list.Days))
		for _, d := range list.Days {
			if names := d.MealNames(); len(names) > 0 {
				days = append(days, strings.Join(names, ", "))
			}
		}
		return strings.Join(days, "; ")
	}
	return strings.Join(list.Names(), ", ")
}

// merge builds the grounded list from raw items, falling back to the
// original entries when the grounded answer had none, then attaches links
// and recalculates.
func merge(original *gear.CategoryList, raw []any, links []gear.GroundingLink) *gear.CategoryList {
	cleaned := make([]any, len(raw))
	for i, entry := range raw {
		cleaned[i] = cleanGrounded(entry)
	}

	grounded := gear.FromRaw(original.Kind, cleaned)
	if grounded.Len() == 0 {
		grounded = original
	}
	return gear.Recalculate(grounded.WithLinks(links))
}

// cleanGrounded strips citation markers from every string and coerces the
// quantity (numeric prefix) and weight (first number) fields.
func cleanGrounded(v any) any {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(citationMarkerRe.ReplaceAllString(val, ""))
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cleanGrounded(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			e = cleanGrounded(e)
			if s, ok := e.(string); ok {
				switch gear.CanonicalKey(k) {
				case "quantity":
					if n, ok := gear.LeadingNumber(s); ok {
						e = n
					}
				case "weight":
					if n, ok := gear.FirstNumber(s); ok {
						e = n
					}
				}
			}
			out[k] = e
		}
		return out
	}
	return v
}

func toLinks(citations []llm.Citation) []gear.GroundingLink {
	links := make([]gear.GroundingLink, 0, len(citations))
	for _, c := range citations {
		links = append(links, gear.GroundingLink{URI: c.URI, Title: c.Title})
	}
	return links
}
