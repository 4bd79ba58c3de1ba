package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

const recipeSystemPrompt = "You are a creative chef. Suggest simple recipes using the available " +
	"ingredients. Prefer recipes that use items likely to expire soon. Keep " +
	"suggestions short and practical."

// RecipeAnalyzer suggests meals from the detected items.
type RecipeAnalyzer struct {
	log *logger.Logger
	ai  AIClient
}

func NewRecipeAnalyzer(log *logger.Logger, ai AIClient) *RecipeAnalyzer {
	return &RecipeAnalyzer{log: log.With("analyzer", "recipes"), ai: ai}
}

func (a *RecipeAnalyzer) Category() types.Category { return types.CategoryRecipes }

func (a *RecipeAnalyzer) Analyze(ctx context.Context, in AnalysisContext) types.AnalysisResult {
	if a.ai == nil {
		return unavailableResult(types.CategoryRecipes, types.SeverityOK)
	}

	ctx, cancel := context.WithTimeout(ctx, 45*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"Available ingredients: %s\n\nSuggest 1-2 simple recipes I could make.",
		itemsPrompt(in.Items),
	)

	text, err := a.ai.GenerateText(ctx, recipeSystemPrompt, prompt)
	if err != nil {
		a.log.Warn("Recipe analysis degraded", "error", err)
		return unavailableResult(types.CategoryRecipes, types.SeverityOK)
	}

	return types.AnalysisResult{
		Category: types.CategoryRecipes,
		Text:     text,
		Severity: types.SeverityOK,
	}
}
