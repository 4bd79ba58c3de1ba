package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

// Refrigeration bands. Temperature is safe in [0,5]°C and ideal in [3,5];
// humidity is acceptable in [40,70]%; gas above 300 ppm demands immediate
// attention.
const (
	safeTempMin      = 0.0
	safeTempMax      = 5.0
	idealTempMin     = 3.0
	safeHumidityMin  = 40.0
	safeHumidityMax  = 70.0
	dangerGasPPM     = 300
	safetyCallBudget = 45 * time.Second
)

const safetySystemPrompt = "You are a food safety expert monitoring refrigerator conditions. " +
	"Assess the given temperature, humidity and gas readings for safety. " +
	"Be concise and factual. Focus only on safety aspects of refrigeration."

// EvaluateSensorSeverity derives the machine-readable safety signal straight
// from the raw sensor values. The validator relies on this, never on prose.
func EvaluateSensorSeverity(reading types.SensorReading) (types.Severity, []string) {
	severity := types.SeverityOK
	findings := []string{}

	raise := func(s types.Severity, finding string) {
		if s > severity {
			severity = s
		}
		findings = append(findings, finding)
	}

	if reading.Temp < safeTempMin || reading.Temp > safeTempMax {
		raise(types.SeverityDanger, fmt.Sprintf("temperature %.1f°C is outside the safe 0-5°C range", reading.Temp))
	} else if reading.Temp < idealTempMin {
		raise(types.SeverityCaution, fmt.Sprintf("temperature %.1f°C is below the ideal 3-5°C band", reading.Temp))
	}

	if reading.Gas > dangerGasPPM {
		raise(types.SeverityDanger, fmt.Sprintf("gas level %d ppm exceeds the %d ppm danger threshold", reading.Gas, dangerGasPPM))
	}

	if reading.Humidity < safeHumidityMin || reading.Humidity > safeHumidityMax {
		raise(types.SeverityCaution, fmt.Sprintf("humidity %.0f%% is outside the 40-70%% range", reading.Humidity))
	}

	return severity, findings
}

// SafetyAnalyzer evaluates raw sensor conditions. The severity is always
// computed locally; only the wording is delegated to the collaborator.
type SafetyAnalyzer struct {
	log *logger.Logger
	ai  AIClient
}

func NewSafetyAnalyzer(log *logger.Logger, ai AIClient) *SafetyAnalyzer {
	return &SafetyAnalyzer{log: log.With("analyzer", "safety"), ai: ai}
}

func (a *SafetyAnalyzer) Category() types.Category { return types.CategorySafety }

func (a *SafetyAnalyzer) Analyze(ctx context.Context, in AnalysisContext) types.AnalysisResult {
	severity, findings := EvaluateSensorSeverity(in.Reading)

	if a.ai == nil {
		return unavailableResult(types.CategorySafety, severity)
	}

	ctx, cancel := context.WithTimeout(ctx, safetyCallBudget)
	defer cancel()

	prompt := fmt.Sprintf(
		"Please analyze these refrigerator conditions for safety:\n\n"+
			"Temperature: %.1f°C\nHumidity: %.0f%%\nGas Level: %d ppm\n"+
			"Computed status: %s\nFindings: %s\n\n"+
			"Provide a concise safety assessment.",
		in.Reading.Temp, in.Reading.Humidity, in.Reading.Gas,
		severity.String(), strings.Join(findings, "; "),
	)

	text, err := a.ai.GenerateText(ctx, safetySystemPrompt, prompt)
	if err != nil {
		a.log.Warn("Safety analysis degraded", "error", err)
		return unavailableResult(types.CategorySafety, severity)
	}

	return types.AnalysisResult{
		Category: types.CategorySafety,
		Text:     text,
		Severity: severity,
	}
}
