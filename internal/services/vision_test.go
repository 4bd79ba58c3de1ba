package services

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestParseItemList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "clean json array",
			content: `["milk", "eggs", "cheese"]`,
			want:    []string{"milk", "eggs", "cheese"},
		},
		{
			name:    "array embedded in prose",
			content: "Sure! Here are the items I can see:\n[\"milk\", \"eggs\"]\nLet me know if you need more.",
			want:    []string{"milk", "eggs"},
		},
		{
			name:    "bulleted lines fallback",
			content: "- milk\n- eggs\n* cheese",
			want:    []string{"milk", "eggs", "cheese"},
		},
		{
			name:    "quoted lines fallback",
			content: "\"milk\"\n'eggs'",
			want:    []string{"milk", "eggs"},
		},
		{
			name:    "whitespace entries dropped",
			content: `["milk", "  ", ""]`,
			want:    []string{"milk"},
		},
		{
			name:    "empty payload",
			content: "",
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseItemList(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseItemList(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestDetectFoodItemsNeverErrors(t *testing.T) {
	t.Run("collaborator failure yields empty list", func(t *testing.T) {
		svc := NewVisionService(testLogger(), &fakeAI{err: errors.New("timeout")})
		if got := svc.DetectFoodItems(context.Background(), "aGVsbG8="); len(got) != 0 {
			t.Errorf("items = %v, want empty", got)
		}
	})

	t.Run("no client yields empty list", func(t *testing.T) {
		svc := NewVisionService(testLogger(), nil)
		if got := svc.DetectFoodItems(context.Background(), "aGVsbG8="); len(got) != 0 {
			t.Errorf("items = %v, want empty", got)
		}
	})
}
