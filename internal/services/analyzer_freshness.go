package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

const freshnessSystemPrompt = "You are a food freshness expert. Given refrigerator conditions and the " +
	"items currently stored, assess how fresh the food is likely to be and " +
	"which items should be consumed first. Be concise."

// freshnessUrgencyKeywords mark freshness prose that should bump the
// category's priority during synthesis.
var freshnessUrgencyKeywords = []string{"soon", "old", "expire"}

// FreshnessUrgent reports whether freshness text contains wording that
// warrants prioritizing the category.
func FreshnessUrgent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range freshnessUrgencyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FreshnessAnalyzer assesses how storage conditions affect the detected
// items. Severity stays OK; freshness never gates the pipeline.
type FreshnessAnalyzer struct {
	log *logger.Logger
	ai  AIClient
}

func NewFreshnessAnalyzer(log *logger.Logger, ai AIClient) *FreshnessAnalyzer {
	return &FreshnessAnalyzer{log: log.With("analyzer", "freshness"), ai: ai}
}

func (a *FreshnessAnalyzer) Category() types.Category { return types.CategoryFreshness }

func (a *FreshnessAnalyzer) Analyze(ctx context.Context, in AnalysisContext) types.AnalysisResult {
	if a.ai == nil {
		return unavailableResult(types.CategoryFreshness, types.SeverityOK)
	}

	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"Refrigerator conditions:\nTemperature: %.1f°C\nHumidity: %.0f%%\n\n"+
			"Items in the fridge: %s\n\n"+
			"How fresh are these items likely to be under these conditions, and "+
			"which should be eaten first?",
		in.Reading.Temp, in.Reading.Humidity, itemsPrompt(in.Items),
	)

	text, err := a.ai.GenerateText(ctx, freshnessSystemPrompt, prompt)
	if err != nil {
		a.log.Warn("Freshness analysis degraded", "error", err)
		return unavailableResult(types.CategoryFreshness, types.SeverityOK)
	}

	severity := types.SeverityOK
	if FreshnessUrgent(text) {
		severity = types.SeverityCaution
	}

	return types.AnalysisResult{
		Category: types.CategoryFreshness,
		Text:     text,
		Severity: severity,
	}
}
