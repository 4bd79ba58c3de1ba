package types

// Category identifies one of the four analysis categories produced per cycle.
type Category string

const (
	CategorySafety     Category = "safety"
	CategoryFreshness  Category = "freshness"
	CategoryRecipes    Category = "recipes"
	CategoryExpiration Category = "expiration"
)

// Categories returns the canonical category order. Priority lists are always
// a permutation of this set.
func Categories() []Category {
	return []Category{CategorySafety, CategoryFreshness, CategoryRecipes, CategoryExpiration}
}

// Severity is the machine-readable safety signal carried alongside analyzer
// text. Branching decisions read this, never the prose.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityCaution
	SeverityDanger
)

func (s Severity) String() string {
	switch s {
	case SeverityCaution:
		return "caution"
	case SeverityDanger:
		return "danger"
	default:
		return "ok"
	}
}

// ClassificationMethod records which stage of the admission cascade produced
// a classification.
type ClassificationMethod string

const (
	MethodPrimary   ClassificationMethod = "primary"
	MethodHeuristic ClassificationMethod = "heuristic"
	MethodFallback  ClassificationMethod = "fallback"
)

// ClassificationResult is the admission gate's verdict for one image. It is
// produced fresh per cycle and never persisted.
type ClassificationResult struct {
	IsLikelyFood bool                 `json:"is_likely_food"`
	Confidence   float64              `json:"confidence"`
	Method       ClassificationMethod `json:"method"`
	Labels       []string             `json:"labels"`
}

// AnalysisResult is one category analyzer's output. Text is never empty; a
// failed collaborator call yields "<category> unavailable".
type AnalysisResult struct {
	Category Category `json:"category"`
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// PipelineResult is the reconciled output of one orchestration cycle.
// Priority always contains each category exactly once, and Analysis always
// has all four keys.
type PipelineResult struct {
	AIResponse string              `json:"ai_response"`
	Priority   []Category          `json:"priority"`
	Analysis   map[Category]string `json:"analysis"`
}
