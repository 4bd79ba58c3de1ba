package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/repos"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

const (
	// An item unseen for longer than this is considered taken out.
	removalGracePeriod = 24 * time.Hour
	// Items within this many days of expiry are "expiring soon".
	ExpiringSoonDays = 3

	defaultShelfLifeDays = 7
	maxShelfLifeDays     = 365
)

const shelfLifeSystemPrompt = "You are a food storage expert. When asked how long a food item lasts " +
	"refrigerated, answer with a single number of days and nothing else."

var firstNumberRe = regexp.MustCompile(`\d+`)

// ExpirationTracker maintains the per-fridge item lifecycle: first sighting,
// last sighting, estimated expiry, and removal. History is never deleted.
type ExpirationTracker struct {
	log   *logger.Logger
	repo  repos.ItemObservationRepo
	ai    AIClient
	table ShelfLifeTable
	now   func() time.Time
}

func NewExpirationTracker(log *logger.Logger, repo repos.ItemObservationRepo, ai AIClient, table ShelfLifeTable) *ExpirationTracker {
	return &ExpirationTracker{
		log:   log.With("service", "ExpirationTracker"),
		repo:  repo,
		ai:    ai,
		table: table,
		now:   time.Now,
	}
}

// Process reconciles the tracker with one detection pass. Detected items get
// their LastSeen refreshed (or a fresh lifecycle if new or previously
// removed); active items absent past the grace period get RemovedDate set
// exactly once. Processing the same item list twice is a no-op beyond
// LastSeen.
func (t *ExpirationTracker) Process(ctx context.Context, tx *gorm.DB, fridgeID string, items []string) error {
	now := t.now()
	seen := map[string]bool{}

	for _, raw := range items {
		display := strings.TrimSpace(raw)
		if display == "" {
			continue
		}
		key := strings.ToLower(display)
		if seen[key] {
			continue
		}
		seen[key] = true

		obs, err := t.repo.GetByName(ctx, tx, fridgeID, key)
		switch {
		case err == nil && obs.RemovedDate == nil:
			obs.LastSeen = now
			if err := t.repo.Save(ctx, tx, obs); err != nil {
				return fmt.Errorf("refresh item %q: %w", key, err)
			}
		case err == nil:
			// Back in the fridge after removal: new lifecycle, fresh estimate.
			days := t.estimateShelfLife(ctx, display)
			obs.DisplayName = display
			obs.FirstSeen = now
			obs.LastSeen = now
			obs.EstimatedExpiryDays = days
			obs.EstimatedExpiryDate = now.AddDate(0, 0, days)
			obs.RemovedDate = nil
			if err := t.repo.Save(ctx, tx, obs); err != nil {
				return fmt.Errorf("restart item %q: %w", key, err)
			}
		case pkgerrors.IsNotFound(err):
			days := t.estimateShelfLife(ctx, display)
			obs := &types.ItemObservation{
				FridgeID:            fridgeID,
				Name:                key,
				DisplayName:         display,
				FirstSeen:           now,
				LastSeen:            now,
				EstimatedExpiryDays: days,
				EstimatedExpiryDate: now.AddDate(0, 0, days),
			}
			if err := t.repo.Create(ctx, tx, obs); err != nil {
				return fmt.Errorf("track item %q: %w", key, err)
			}
		default:
			return fmt.Errorf("look up item %q: %w", key, err)
		}
	}

	existing, err := t.repo.ListByFridge(ctx, tx, fridgeID)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	for _, obs := range existing {
		if obs.RemovedDate != nil || seen[obs.Name] {
			continue
		}
		if now.Sub(obs.LastSeen) > removalGracePeriod {
			removed := now
			obs.RemovedDate = &removed
			if err := t.repo.Save(ctx, tx, obs); err != nil {
				return fmt.Errorf("mark item %q removed: %w", obs.Name, err)
			}
			t.log.Info("Item removed from fridge", "fridge_id", fridgeID, "item", obs.Name)
		}
	}
	return nil
}

// estimateShelfLife resolves the expected shelf life in days: the local
// table first, then the collaborator under a numeric-only contract, then a
// fixed default.
func (t *ExpirationTracker) estimateShelfLife(ctx context.Context, name string) int {
	if days, ok := t.table.Lookup(name); ok {
		return days
	}

	if t.ai != nil {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		prompt := fmt.Sprintf("How many days does %s typically last in a refrigerator?", name)
		answer, err := t.ai.GenerateText(ctx, shelfLifeSystemPrompt, prompt)
		if err == nil {
			if days, ok := parseShelfLifeDays(answer); ok {
				return days
			}
			t.log.Warn("Unparseable shelf life answer", "item", name, "answer", answer)
		} else {
			t.log.Warn("Shelf life estimate degraded", "item", name, "error", err)
		}
	}

	return defaultShelfLifeDays
}

// parseShelfLifeDays extracts the first integer from a collaborator answer
// and bounds it to a sane range.
func parseShelfLifeDays(answer string) (int, bool) {
	match := firstNumberRe.FindString(answer)
	if match == "" {
		return 0, false
	}
	days, err := strconv.Atoi(match)
	if err != nil || days < 1 || days > maxShelfLifeDays {
		return 0, false
	}
	return days, true
}

// ExpiringSoon lists active items within thresholdDays of their estimated
// expiry, soonest first. Already-expired items report negative days.
func (t *ExpirationTracker) ExpiringSoon(ctx context.Context, tx *gorm.DB, fridgeID string, thresholdDays int) ([]types.ExpiringItem, error) {
	existing, err := t.repo.ListByFridge(ctx, tx, fridgeID)
	if err != nil {
		return nil, err
	}

	now := t.now()
	soon := []types.ExpiringItem{}
	for _, obs := range existing {
		if obs.RemovedDate != nil {
			continue
		}
		days := daysUntil(now, obs.EstimatedExpiryDate)
		if days <= thresholdDays {
			soon = append(soon, types.ExpiringItem{
				Item:          obs.DisplayName,
				DaysRemaining: days,
				ExpiryDate:    obs.EstimatedExpiryDate,
			})
		}
	}

	sort.SliceStable(soon, func(i, j int) bool {
		return soon[i].DaysRemaining < soon[j].DaysRemaining
	})
	return soon, nil
}

func daysUntil(now, expiry time.Time) int {
	return int(math.Floor(expiry.Sub(now).Hours() / 24))
}

// AnalysisText renders the expiration summary deterministically; it never
// consults the collaborator.
func AnalysisText(soon []types.ExpiringItem) string {
	if len(soon) == 0 {
		return "No items are expiring soon."
	}

	var expired, expiring []string
	for _, item := range soon {
		switch {
		case item.DaysRemaining <= 0:
			expired = append(expired, item.Item)
		case item.DaysRemaining == 1:
			expiring = append(expiring, fmt.Sprintf("%s (today)", item.Item))
		default:
			expiring = append(expiring, fmt.Sprintf("%s (%d days)", item.Item, item.DaysRemaining))
		}
	}

	var parts []string
	if len(expired) > 0 {
		parts = append(parts, fmt.Sprintf("Already expired: %s. Remove these items.", strings.Join(expired, ", ")))
	}
	if len(expiring) > 0 {
		parts = append(parts, fmt.Sprintf("Expiring soon: %s. Use these first.", strings.Join(expiring, ", ")))
	}
	return strings.Join(parts, " ")
}

// ExpirationAnalyzer exposes the tracker as a category analyzer. The tracker
// must already have been reconciled for this pass.
type ExpirationAnalyzer struct {
	log     *logger.Logger
	tracker *ExpirationTracker
}

func NewExpirationAnalyzer(log *logger.Logger, tracker *ExpirationTracker) *ExpirationAnalyzer {
	return &ExpirationAnalyzer{log: log.With("analyzer", "expiration"), tracker: tracker}
}

func (a *ExpirationAnalyzer) Category() types.Category { return types.CategoryExpiration }

func (a *ExpirationAnalyzer) Analyze(ctx context.Context, in AnalysisContext) types.AnalysisResult {
	soon, err := a.tracker.ExpiringSoon(ctx, nil, in.FridgeID, ExpiringSoonDays)
	if err != nil {
		a.log.Warn("Expiration analysis degraded", "error", err)
		return unavailableResult(types.CategoryExpiration, types.SeverityOK)
	}

	severity := types.SeverityOK
	for _, item := range soon {
		if item.DaysRemaining <= 0 {
			severity = types.SeverityDanger
			break
		}
		severity = types.SeverityCaution
	}

	return types.AnalysisResult{
		Category: types.CategoryExpiration,
		Text:     AnalysisText(soon),
		Severity: severity,
	}
}
