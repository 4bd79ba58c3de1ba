package services

import (
	"context"
	"strings"

	"github.com/yungbote/smartfridge-backend/internal/types"
)

// AnalysisContext carries everything an analyzer may need for one cycle.
// Safety reads the sensor values; freshness and recipes read the item list;
// expiration reads the tracker state for the fridge.
type AnalysisContext struct {
	FridgeID string
	Reading  types.SensorReading
	Items    []string
}

// Analyzer is one category evaluator. Implementations must never return an
// error: a failed collaborator call degrades to an "unavailable" result so a
// single analyzer can never abort the pipeline.
type Analyzer interface {
	Category() types.Category
	Analyze(ctx context.Context, in AnalysisContext) types.AnalysisResult
}

// unavailableResult is the fixed degraded value substituted when the
// inference collaborator fails.
func unavailableResult(category types.Category, severity types.Severity) types.AnalysisResult {
	return types.AnalysisResult{
		Category: category,
		Text:     string(category) + " unavailable",
		Severity: severity,
	}
}

func itemsPrompt(items []string) string {
	if len(items) == 0 {
		return "No items detected"
	}
	return strings.Join(items, ", ")
}
