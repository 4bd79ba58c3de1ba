package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

const synthesisSystemPrompt = "You are a smart fridge assistant. Combine the category analyses below " +
	"into one short, friendly summary for the user. Lead with the most " +
	"important category. Do not invent facts not present in the analyses."

// Validator cross-checks the merged analyzer output against the raw sensor
// values, orders the categories by urgency, and synthesizes the final
// user-facing summary.
type Validator struct {
	log *logger.Logger
	ai  AIClient
}

func NewValidator(log *logger.Logger, ai AIClient) *Validator {
	return &Validator{log: log.With("service", "Validator"), ai: ai}
}

// Validate produces the final pipeline result. The safety re-check runs on
// the raw reading, never on analyzer prose, so a degraded or misleading
// safety text can not mask a dangerous condition. The input map is read only;
// categories absent from it get the degraded placeholder.
func (v *Validator) Validate(ctx context.Context, reading types.SensorReading, results map[types.Category]types.AnalysisResult, expiring []types.ExpiringItem) types.PipelineResult {
	merged := make(map[types.Category]types.AnalysisResult, len(types.Categories()))
	for _, category := range types.Categories() {
		result, ok := results[category]
		if !ok {
			result = unavailableResult(category, types.SeverityOK)
		}
		merged[category] = result
	}

	sensorSeverity, _ := EvaluateSensorSeverity(reading)
	safety := merged[types.CategorySafety]
	if sensorSeverity > safety.Severity {
		safety.Severity = sensorSeverity
		merged[types.CategorySafety] = safety
	}

	priority := prioritize(merged, expiring)

	analysis := map[types.Category]string{}
	for _, category := range types.Categories() {
		analysis[category] = merged[category].Text
	}

	return types.PipelineResult{
		AIResponse: v.synthesize(ctx, priority, merged),
		Priority:   priority,
		Analysis:   analysis,
	}
}

// prioritize applies the urgency cascade, first match wins: unsafe conditions,
// then imminent expirations, then urgent freshness wording, then the relaxed
// default.
func prioritize(results map[types.Category]types.AnalysisResult, expiring []types.ExpiringItem) []types.Category {
	switch {
	case results[types.CategorySafety].Severity != types.SeverityOK:
		return []types.Category{types.CategorySafety, types.CategoryFreshness, types.CategoryRecipes, types.CategoryExpiration}
	case len(expiring) > 0:
		return []types.Category{types.CategorySafety, types.CategoryExpiration, types.CategoryFreshness, types.CategoryRecipes}
	case FreshnessUrgent(results[types.CategoryFreshness].Text):
		return []types.Category{types.CategoryFreshness, types.CategorySafety, types.CategoryRecipes, types.CategoryExpiration}
	default:
		return []types.Category{types.CategoryRecipes, types.CategoryFreshness, types.CategorySafety, types.CategoryExpiration}
	}
}

func (v *Validator) synthesize(ctx context.Context, priority []types.Category, results map[types.Category]types.AnalysisResult) string {
	if v.ai != nil {
		ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
		defer cancel()

		var b strings.Builder
		for _, category := range priority {
			fmt.Fprintf(&b, "%s (%s):\n%s\n\n", category, results[category].Severity, results[category].Text)
		}
		text, err := v.ai.GenerateText(ctx, synthesisSystemPrompt, b.String())
		if err == nil {
			return text
		}
		v.log.Warn("Summary synthesis degraded", "error", err)
	}
	return templateSummary(priority, results)
}

// templateSummary is the deterministic fallback: the analyses concatenated in
// priority order with severity markers, no collaborator involved.
func templateSummary(priority []types.Category, results map[types.Category]types.AnalysisResult) string {
	var parts []string
	for _, category := range priority {
		result := results[category]
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", result.Severity, category, result.Text))
	}
	return strings.Join(parts, "\n")
}
