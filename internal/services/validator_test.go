package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/smartfridge-backend/internal/types"
)

func okResults() map[types.Category]types.AnalysisResult {
	results := map[types.Category]types.AnalysisResult{}
	for _, category := range types.Categories() {
		results[category] = types.AnalysisResult{
			Category: category,
			Text:     "all good",
			Severity: types.SeverityOK,
		}
	}
	return results
}

func categoriesEqual(a, b []types.Category) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPrioritizeCascade(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(map[types.Category]types.AnalysisResult)
		expiring []types.ExpiringItem
		want     []types.Category
	}{
		{
			name:   "calm fridge leads with recipes",
			mutate: func(map[types.Category]types.AnalysisResult) {},
			want:   []types.Category{types.CategoryRecipes, types.CategoryFreshness, types.CategorySafety, types.CategoryExpiration},
		},
		{
			name: "safety issue leads with safety",
			mutate: func(r map[types.Category]types.AnalysisResult) {
				r[types.CategorySafety] = types.AnalysisResult{Category: types.CategorySafety, Text: "too warm", Severity: types.SeverityDanger}
			},
			want: []types.Category{types.CategorySafety, types.CategoryFreshness, types.CategoryRecipes, types.CategoryExpiration},
		},
		{
			name:     "expiring items promote expiration",
			mutate:   func(map[types.Category]types.AnalysisResult) {},
			expiring: []types.ExpiringItem{{Item: "milk", DaysRemaining: 1}},
			want:     []types.Category{types.CategorySafety, types.CategoryExpiration, types.CategoryFreshness, types.CategoryRecipes},
		},
		{
			name: "urgent freshness wording promotes freshness",
			mutate: func(r map[types.Category]types.AnalysisResult) {
				r[types.CategoryFreshness] = types.AnalysisResult{Category: types.CategoryFreshness, Text: "the lettuce is looking old", Severity: types.SeverityCaution}
			},
			want: []types.Category{types.CategoryFreshness, types.CategorySafety, types.CategoryRecipes, types.CategoryExpiration},
		},
		{
			name: "safety wins over expiring and freshness",
			mutate: func(r map[types.Category]types.AnalysisResult) {
				r[types.CategorySafety] = types.AnalysisResult{Category: types.CategorySafety, Text: "gas spike", Severity: types.SeverityDanger}
				r[types.CategoryFreshness] = types.AnalysisResult{Category: types.CategoryFreshness, Text: "will expire soon", Severity: types.SeverityCaution}
			},
			expiring: []types.ExpiringItem{{Item: "milk", DaysRemaining: 1}},
			want:     []types.Category{types.CategorySafety, types.CategoryFreshness, types.CategoryRecipes, types.CategoryExpiration},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := okResults()
			tt.mutate(results)
			got := prioritize(results, tt.expiring)
			if !categoriesEqual(got, tt.want) {
				t.Errorf("priority = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriorityIsAlwaysAFullPermutation(t *testing.T) {
	severities := []types.Severity{types.SeverityOK, types.SeverityCaution, types.SeverityDanger}
	texts := []string{"all good", "will expire soon"}
	expirings := [][]types.ExpiringItem{nil, {{Item: "milk", DaysRemaining: 0}}}

	for _, severity := range severities {
		for _, text := range texts {
			for _, expiring := range expirings {
				results := okResults()
				results[types.CategorySafety] = types.AnalysisResult{Category: types.CategorySafety, Text: "x", Severity: severity}
				results[types.CategoryFreshness] = types.AnalysisResult{Category: types.CategoryFreshness, Text: text, Severity: types.SeverityOK}

				got := prioritize(results, expiring)
				if len(got) != 4 {
					t.Fatalf("priority has %d entries, want 4", len(got))
				}
				seen := map[types.Category]bool{}
				for _, category := range got {
					if seen[category] {
						t.Fatalf("category %q repeated in %v", category, got)
					}
					seen[category] = true
				}
			}
		}
	}
}

func TestValidateRawSensorOverridesProse(t *testing.T) {
	validator := NewValidator(testLogger(), nil)

	// The safety analyzer degraded and reported OK, but the raw reading is
	// dangerous. The re-check must win.
	results := okResults()
	results[types.CategorySafety] = types.AnalysisResult{
		Category: types.CategorySafety,
		Text:     "safety unavailable",
		Severity: types.SeverityOK,
	}

	out := validator.Validate(context.Background(), types.SensorReading{Temp: 12, Humidity: 55, Gas: 100}, results, nil)

	if out.Priority[0] != types.CategorySafety {
		t.Errorf("priority = %v, want safety first", out.Priority)
	}
	if !strings.Contains(out.AIResponse, "[danger] safety") {
		t.Errorf("summary = %q, want escalated safety severity", out.AIResponse)
	}
	if results[types.CategorySafety].Severity != types.SeverityOK {
		t.Errorf("input map mutated: safety severity = %v", results[types.CategorySafety].Severity)
	}
}

func TestValidateFillsMissingCategories(t *testing.T) {
	validator := NewValidator(testLogger(), nil)

	results := okResults()
	delete(results, types.CategoryRecipes)

	out := validator.Validate(context.Background(), types.SensorReading{Temp: 4, Humidity: 55, Gas: 100}, results, nil)

	if got := out.Analysis[types.CategoryRecipes]; got != "recipes unavailable" {
		t.Errorf("analysis[recipes] = %q, want degraded placeholder", got)
	}
	if len(out.Analysis) != 4 {
		t.Errorf("analysis entries = %d, want 4", len(out.Analysis))
	}
	if !strings.Contains(out.AIResponse, "recipes unavailable") {
		t.Errorf("summary = %q, want degraded recipes entry", out.AIResponse)
	}
	if _, ok := results[types.CategoryRecipes]; ok {
		t.Error("input map mutated: recipes entry added")
	}
}

func TestValidateSynthesisFallsBackToTemplate(t *testing.T) {
	validator := NewValidator(testLogger(), &fakeAI{err: errors.New("quota exceeded")})
	results := okResults()

	out := validator.Validate(context.Background(), types.SensorReading{Temp: 4, Humidity: 55, Gas: 100}, results, nil)

	if out.AIResponse == "" {
		t.Fatal("AIResponse empty; template fallback expected")
	}
	for _, category := range types.Categories() {
		if !strings.Contains(out.AIResponse, string(category)) {
			t.Errorf("template summary missing category %q: %q", category, out.AIResponse)
		}
	}
}

func TestValidateUsesSynthesizedSummary(t *testing.T) {
	validator := NewValidator(testLogger(), &fakeAI{text: "Your fridge is in great shape."})
	results := okResults()

	out := validator.Validate(context.Background(), types.SensorReading{Temp: 4, Humidity: 55, Gas: 100}, results, nil)

	if out.AIResponse != "Your fridge is in great shape." {
		t.Errorf("AIResponse = %q", out.AIResponse)
	}
	if len(out.Analysis) != 4 {
		t.Errorf("analysis entries = %d, want 4", len(out.Analysis))
	}
}

func TestTemplateSummaryIsDeterministic(t *testing.T) {
	results := okResults()
	priority := prioritize(results, nil)

	first := templateSummary(priority, results)
	for i := 0; i < 5; i++ {
		if got := templateSummary(priority, results); got != first {
			t.Fatalf("templateSummary varies between calls: %q vs %q", first, got)
		}
	}
}
