package services

import "testing"

func TestLoadShelfLifeTable(t *testing.T) {
	table, err := LoadShelfLifeTable()
	if err != nil {
		t.Fatalf("LoadShelfLifeTable: %v", err)
	}
	if len(table) == 0 {
		t.Fatal("embedded table empty")
	}
	if days, ok := table["milk"]; !ok || days != 7 {
		t.Errorf("milk = %d, %v; want 7, true", days, ok)
	}
}

func TestShelfLifeLookup(t *testing.T) {
	table := ShelfLifeTable{"milk": 7, "fish": 2, "bread": 7}

	tests := []struct {
		item     string
		wantDays int
		wantOK   bool
	}{
		{"milk", 7, true},
		{"Whole Milk", 7, true},
		{"smoked fish fillet", 2, true},
		{"brea", 7, true}, // partial name still matches the key
		{"car battery", 0, false},
		{"", 0, false},
		{"   ", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			days, ok := table.Lookup(tt.item)
			if days != tt.wantDays || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = %d, %v; want %d, %v", tt.item, days, ok, tt.wantDays, tt.wantOK)
			}
		})
	}
}
