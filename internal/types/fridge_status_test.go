package types

import (
	"encoding/json"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func mustJSON(t *testing.T, v any) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %v: %v", v, err)
	}
	return datatypes.JSON(raw)
}

func TestFridgeStatusToResponseRoundTrip(t *testing.T) {
	summary := "Everything looks fine."
	items := []string{"Milk", "Fish"}
	priority := []Category{CategoryRecipes, CategoryFreshness, CategorySafety, CategoryExpiration}
	analysis := map[Category]string{
		CategorySafety:     "all good",
		CategoryFreshness:  "still fresh",
		CategoryRecipes:    "try an omelette",
		CategoryExpiration: "No items are expiring soon.",
	}

	status := FridgeStatus{
		FridgeID:   "kitchen",
		Status:     "analyzed",
		Timestamp:  time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Temp:       4,
		Humidity:   55,
		Gas:        100,
		Items:      mustJSON(t, items),
		AIResponse: &summary,
		Priority:   mustJSON(t, priority),
		Analysis:   mustJSON(t, analysis),
	}

	out := status.ToResponse()

	if out.Status != "analyzed" || !out.Timestamp.Equal(status.Timestamp) {
		t.Errorf("header fields changed: %+v", out)
	}
	if out.Temp != 4 || out.Humidity != 55 || out.Gas != 100 {
		t.Errorf("sensor fields changed: %+v", out)
	}
	if out.AIResponse == nil || *out.AIResponse != summary {
		t.Errorf("ai_response = %v, want %q", out.AIResponse, summary)
	}
	if len(out.Items) != len(items) {
		t.Fatalf("items = %v, want %v", out.Items, items)
	}
	for i, item := range items {
		if out.Items[i] != item {
			t.Errorf("items[%d] = %q, want %q", i, out.Items[i], item)
		}
	}
	if len(out.Priority) != len(priority) {
		t.Fatalf("priority = %v, want %v", out.Priority, priority)
	}
	for i, category := range priority {
		if out.Priority[i] != category {
			t.Errorf("priority[%d] = %q, want %q", i, out.Priority[i], category)
		}
	}
	for category, text := range analysis {
		if out.Analysis[category] != text {
			t.Errorf("analysis[%s] = %q, want %q", category, out.Analysis[category], text)
		}
	}
}

func TestFridgeStatusToResponseToleratesUnreadableColumns(t *testing.T) {
	status := FridgeStatus{
		Status:    "analyzed",
		Timestamp: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC),
		Items:     datatypes.JSON(`{not json`),
		Priority:  datatypes.JSON(`{not json`),
		Analysis:  datatypes.JSON(`{not json`),
	}

	out := status.ToResponse()

	if out.Items == nil || len(out.Items) != 0 {
		t.Errorf("items = %v, want empty", out.Items)
	}
	if out.Priority == nil || len(out.Priority) != 0 {
		t.Errorf("priority = %v, want empty", out.Priority)
	}
	if out.Analysis == nil || len(out.Analysis) != 0 {
		t.Errorf("analysis = %v, want empty", out.Analysis)
	}
}
