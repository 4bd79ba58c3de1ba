package services

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed shelf_life.yaml
var shelfLifeYAML []byte

// ShelfLifeTable maps lowercase food keywords to typical refrigerated
// shelf life in days.
type ShelfLifeTable map[string]int

// LoadShelfLifeTable parses the embedded shelf life data.
func LoadShelfLifeTable() (ShelfLifeTable, error) {
	table := ShelfLifeTable{}
	if err := yaml.Unmarshal(shelfLifeYAML, &table); err != nil {
		return nil, fmt.Errorf("parse shelf life table: %w", err)
	}
	return table, nil
}

// Lookup matches an item name against the table. A key matches when it
// contains the item name or the item name contains the key, so "whole milk"
// still resolves to "milk". Returns 0, false when nothing matches.
func (t ShelfLifeTable) Lookup(name string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return 0, false
	}
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(lower, key) || strings.Contains(key, lower) {
			return t[key], true
		}
	}
	return 0, false
}
