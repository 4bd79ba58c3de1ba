package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/yungbote/smartfridge-backend/internal/logger"
)

const visionSystemPrompt = "You are a smart fridge AI that detects food items in images. " +
	"Return ONLY a JSON array of food items visible in the image. " +
	"Be specific, but use common food names."

const visionUserPrompt = "What food items do you see in this fridge image? " +
	"Return ONLY a JSON array of food names (e.g., [\"apple\", \"milk\"])."

// VisionService extracts the visible item list from an admitted fridge image.
// Any collaborator failure yields an empty list, never an error to the
// pipeline.
type VisionService struct {
	log     *logger.Logger
	ai      AIClient
	timeout time.Duration
}

func NewVisionService(log *logger.Logger, ai AIClient) *VisionService {
	return &VisionService{
		log:     log.With("service", "VisionService"),
		ai:      ai,
		timeout: 45 * time.Second,
	}
}

func (s *VisionService) DetectFoodItems(ctx context.Context, imageBase64 string) []string {
	if s.ai == nil {
		s.log.Warn("Vision extraction skipped; no AI client configured")
		return []string{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.ai.GenerateTextWithImage(ctx, visionSystemPrompt, visionUserPrompt, imageBase64)
	if err != nil {
		s.log.Warn("Vision extraction failed", "error", err)
		return []string{}
	}

	items := parseItemList(content)
	s.log.Info("Vision extraction complete", "item_count", len(items))
	return items
}

// parseItemList tolerates loose model output: it first tries the bracketed
// JSON array, then the whole payload, then falls back to line scanning.
func parseItemList(content string) []string {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start != -1 && end > start {
		var items []string
		if err := json.Unmarshal([]byte(content[start:end+1]), &items); err == nil {
			return cleanItems(items)
		}
	}

	var items []string
	if err := json.Unmarshal([]byte(content), &items); err == nil {
		return cleanItems(items)
	}

	out := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		for _, prefix := range []string{"-", "*", "\"", "'"} {
			line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
		line = strings.Trim(line, "\",'")
		if line == "" || strings.HasPrefix(line, "[") || strings.HasPrefix(line, "]") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func cleanItems(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}
