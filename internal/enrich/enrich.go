// Package enrich turns a notice into structured action items using a text
// generation model, with a deterministic fallback whenever the model cannot
// answer.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/regwatch/internal/metrics"
)

// ActionItems is the structured analysis of one notice. Every list is
// non-nil so it always serializes as an array.
type ActionItems struct {
	Affected           []string `json:"affected"`
	Deadlines          []string `json:"deadlines"`
	Actions            []string `json:"actions"`
	RelatedRegulations []string `json:"relatedRegulations"`
	Summary            string   `json:"summary"`
}

// TextGenerator completes a prompt. Implementations live in internal/llm.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

const pendingSummary = "Impact assessment pending"

var (
	errNoGenerator = errors.New("no text generator configured")
	errNoJSON      = errors.New("model response contains no JSON object")

	jsonObject = regexp.MustCompile(`(?s)\{.*\}`)
)

const promptTemplate = `Analyze this Indian financial/tax regulation and provide structured insights:

Regulation: %s
Source: %s
Date: %s

Provide a JSON response with:
1. "affected": List of who is impacted (e.g., "Businesses", "Individual taxpayers", "Financial advisors", "Specific sectors")
2. "deadlines": Any compliance deadlines or effective dates mentioned
3. "actions": Specific action steps that affected parties should take
4. "relatedRegulations": Related regulations or compliance areas
5. "summary": One-line impact summary

Format as valid JSON only, no markdown:
{
  "affected": [],
  "deadlines": [],
  "actions": [],
  "relatedRegulations": [],
  "summary": ""
}`

// Prompt renders the analysis prompt for a notice.
func Prompt(title, source, date string) string {
	if strings.TrimSpace(date) == "" {
		date = "Recent"
	}
	return fmt.Sprintf(promptTemplate, title, source, date)
}

// Analyze asks the generator for action items. It never fails: a missing
// generator, a remote error or an unparseable answer all produce
// Fallback(title, source).
func (a *Analyzer) Analyze(ctx context.Context, title, source, date string) ActionItems {
	items, err := a.analyze(ctx, title, source, date)
	if err != nil {
		a.logger.Warn("analysis fell back to heuristics",
			zap.String("title", title),
			zap.String("source", source),
			zap.Error(err),
		)
		metrics.ObserveEnrich(metrics.EnrichFallback)
		return Fallback(title, source)
	}
	metrics.ObserveEnrich(metrics.EnrichModel)
	return items
}

func (a *Analyzer) analyze(ctx context.Context, title, source, date string) (out ActionItems, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
	}()
	if a.generator == nil {
		return ActionItems{}, errNoGenerator
	}
	text, err := a.generator.Generate(ctx, Prompt(title, source, date))
	if err != nil {
		return ActionItems{}, fmt.Errorf("generate: %w", err)
	}
	return ParseResponse(text)
}

// ParseResponse extracts the first JSON object from a model answer. Missing
// lists become empty and a missing summary becomes a pending marker.
func ParseResponse(text string) (ActionItems, error) {
	raw := jsonObject.FindString(text)
	if raw == "" {
		return ActionItems{}, errNoJSON
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return ActionItems{}, fmt.Errorf("decode model json: %w", err)
	}
	out := ActionItems{
		Affected:           stringList(fields["affected"]),
		Deadlines:          stringList(fields["deadlines"]),
		Actions:            stringList(fields["actions"]),
		RelatedRegulations: stringList(fields["relatedRegulations"]),
		Summary:            pendingSummary,
	}
	if s, ok := fields["summary"].(string); ok && strings.TrimSpace(s) != "" {
		out.Summary = s
	}
	return out, nil
}

func stringList(v any) []string {
	out := []string{}
	values, ok := v.([]any)
	if !ok {
		return out
	}
	for _, value := range values {
		switch x := value.(type) {
		case nil:
		case string:
			out = append(out, x)
		default:
			out = append(out, fmt.Sprint(x))
		}
	}
	return out
}

// Fallback derives action items from the source label alone.
func Fallback(_ string, source string) ActionItems {
	out := ActionItems{
		Deadlines: []string{"Check official notification for specific dates"},
		Summary:   "Regulatory update requiring attention",
	}
	switch {
	case strings.Contains(source, "Income Tax") || strings.Contains(source, "CBDT"):
		out.Affected = []string{"Individual taxpayers", "Tax professionals", "Businesses"}
		out.Actions = []string{"Review notification details", "Consult with tax advisor", "Update compliance procedures"}
		out.RelatedRegulations = []string{"Income Tax Act, 1961"}
	case strings.Contains(source, "GST") || strings.Contains(source, "CBIC"):
		out.Affected = []string{"GST-registered businesses", "Tax practitioners"}
		out.Actions = []string{"Review GST portal for updates", "Assess impact on current filings", "Update GST compliance"}
		out.RelatedRegulations = []string{"GST Act"}
	case strings.Contains(source, "RBI"):
		out.Affected = []string{"Banks", "Financial institutions", "NBFCs"}
		out.Actions = []string{"Review RBI circular", "Update internal policies", "Ensure compliance by deadline"}
		out.RelatedRegulations = []string{"Banking Regulation Act", "RBI guidelines"}
	case strings.Contains(source, "SEBI"):
		out.Affected = []string{"Listed companies", "Stock brokers", "Investors"}
		out.Actions = []string{"Review SEBI circular", "Update disclosure requirements", "Assess impact on operations"}
		out.RelatedRegulations = []string{"SEBI regulations", "Securities laws"}
	default:
		out.Affected = []string{"Businesses", "Compliance officers"}
		out.Actions = []string{"Review official notification", "Assess applicability", "Consult legal advisor"}
		out.RelatedRegulations = []string{}
	}
	return out
}
