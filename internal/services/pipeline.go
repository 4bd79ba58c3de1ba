package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/smartfridge-backend/internal/logger"
	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/repos"
	"github.com/yungbote/smartfridge-backend/internal/types"
	"github.com/yungbote/smartfridge-backend/internal/utils"
)

// DefaultFridgeID is used when an upload does not name a fridge.
const DefaultFridgeID = "default"

// ProcessInput is one upload from a fridge unit. ImageBase64 may be empty
// for sensor-only updates.
type ProcessInput struct {
	FridgeID    string
	Reading     types.SensorReading
	ImageBase64 string
}

// ProcessOutcome reports what the pipeline did with an upload. A rejected
// image yields Accepted=false with the classification that rejected it; the
// cycle still runs on an empty item list, so Status is always populated.
type ProcessOutcome struct {
	Accepted       bool                        `json:"accepted"`
	Classification *types.ClassificationResult `json:"classification,omitempty"`
	Status         *types.FridgeStatusResponse `json:"status,omitempty"`
}

// Pipeline runs the full analysis cycle for one upload: admission gate, item
// detection, analyzer fan-out, expiration reconciliation, validation, and
// persistence. One cycle per fridge runs at a time.
type Pipeline struct {
	log        *logger.Logger
	guard      *ImageGuardrail
	vision     *VisionService
	tracker    *ExpirationTracker
	validator  *Validator
	analyzers  []Analyzer
	itemRepo   repos.ItemObservationRepo
	statusRepo repos.FridgeStatusRepo
	notifier   *NotificationService
	threshold  float64

	mu          sync.Mutex
	fridgeLocks map[string]*sync.Mutex
}

func NewPipeline(
	log *logger.Logger,
	guard *ImageGuardrail,
	vision *VisionService,
	tracker *ExpirationTracker,
	validator *Validator,
	analyzers []Analyzer,
	itemRepo repos.ItemObservationRepo,
	statusRepo repos.FridgeStatusRepo,
	notifier *NotificationService,
) *Pipeline {
	return &Pipeline{
		log:         log.With("service", "Pipeline"),
		guard:       guard,
		vision:      vision,
		tracker:     tracker,
		validator:   validator,
		analyzers:   analyzers,
		itemRepo:    itemRepo,
		statusRepo:  statusRepo,
		notifier:    notifier,
		threshold:   utils.GetEnvAsFloat("ADMISSION_THRESHOLD", DefaultAdmissionThreshold, log),
		fridgeLocks: make(map[string]*sync.Mutex),
	}
}

// lockFridge serializes cycles per fridge. Different fridges proceed in
// parallel.
func (p *Pipeline) lockFridge(fridgeID string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	lock, ok := p.fridgeLocks[fridgeID]
	if !ok {
		lock = &sync.Mutex{}
		p.fridgeLocks[fridgeID] = lock
	}
	return lock
}

// Process runs one cycle. Analyzer failures degrade to placeholder text and
// never abort the cycle; only invalid input and persistence errors stop it.
func (p *Pipeline) Process(ctx context.Context, in ProcessInput) (*ProcessOutcome, error) {
	fridgeID := strings.TrimSpace(in.FridgeID)
	if fridgeID == "" {
		fridgeID = DefaultFridgeID
	}

	lock := p.lockFridge(fridgeID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()

	items, admitted, classification, err := p.resolveItems(ctx, fridgeID, in.ImageBase64)
	if err != nil {
		return nil, err
	}

	if err := p.tracker.Process(ctx, nil, fridgeID, items); err != nil {
		return nil, fmt.Errorf("expiration tracking: %w", err)
	}

	results := p.fanOut(ctx, AnalysisContext{
		FridgeID: fridgeID,
		Reading:  in.Reading,
		Items:    items,
	})

	expiring, err := p.tracker.ExpiringSoon(ctx, nil, fridgeID, ExpiringSoonDays)
	if err != nil {
		p.log.Warn("Expiring-soon lookup failed", "error", err)
		expiring = nil
	}

	final := p.validator.Validate(ctx, in.Reading, results, expiring)

	status, err := p.persistStatus(ctx, fridgeID, in.Reading, items, final)
	if err != nil {
		return nil, fmt.Errorf("persist status: %w", err)
	}

	p.emitNotifications(ctx, results, expiring)
	p.notifier.BroadcastStatus(ctx, *status)

	p.log.Info("Analysis cycle complete",
		"fridge_id", fridgeID,
		"items", len(items),
		"priority", final.Priority,
		"duration", time.Since(started))

	return &ProcessOutcome{
		Accepted:       admitted,
		Classification: classification,
		Status:         status,
	}, nil
}

// resolveItems runs the admission gate and item detection when an image is
// present; sensor-only cycles reuse the currently tracked items and are
// always admitted. A rejected image skips the expensive extraction call and
// yields the empty item list.
func (p *Pipeline) resolveItems(ctx context.Context, fridgeID, imageBase64 string) ([]string, bool, *types.ClassificationResult, error) {
	if imageBase64 == "" {
		return p.activeItems(ctx, fridgeID), true, nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, false, nil, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidImage, err)
	}

	admit, result := p.guard.ShouldProcess(ctx, raw, p.threshold)
	if !admit {
		p.log.Info("Image rejected by admission gate",
			"fridge_id", fridgeID,
			"method", result.Method,
			"confidence", result.Confidence)
		return []string{}, false, &result, nil
	}
	return p.vision.DetectFoodItems(ctx, imageBase64), true, &result, nil
}

// activeItems lists the currently tracked items. An unreadable store is
// treated as empty so a sensor-only cycle can still run.
func (p *Pipeline) activeItems(ctx context.Context, fridgeID string) []string {
	observations, err := p.itemRepo.ListByFridge(ctx, nil, fridgeID)
	if err != nil {
		p.log.Warn("Tracked item lookup failed", "fridge_id", fridgeID, "error", err)
		return []string{}
	}
	items := []string{}
	for _, obs := range observations {
		if obs.RemovedDate == nil {
			items = append(items, obs.DisplayName)
		}
	}
	return items
}

// fanOut runs every analyzer concurrently and merges by category, so the
// result is identical regardless of completion order. A missing category
// gets the degraded placeholder.
func (p *Pipeline) fanOut(ctx context.Context, in AnalysisContext) map[types.Category]types.AnalysisResult {
	var mu sync.Mutex
	results := make(map[types.Category]types.AnalysisResult, len(p.analyzers))

	group, groupCtx := errgroup.WithContext(ctx)
	for _, analyzer := range p.analyzers {
		group.Go(func() error {
			result := analyzer.Analyze(groupCtx, in)
			mu.Lock()
			results[analyzer.Category()] = result
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	for _, category := range types.Categories() {
		if _, ok := results[category]; !ok {
			results[category] = unavailableResult(category, types.SeverityOK)
		}
	}
	return results
}

func (p *Pipeline) persistStatus(ctx context.Context, fridgeID string, reading types.SensorReading, items []string, final types.PipelineResult) (*types.FridgeStatusResponse, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	priorityJSON, err := json.Marshal(final.Priority)
	if err != nil {
		return nil, err
	}
	analysisJSON, err := json.Marshal(final.Analysis)
	if err != nil {
		return nil, err
	}

	aiResponse := final.AIResponse
	record := &types.FridgeStatus{
		FridgeID:   fridgeID,
		Status:     "analyzed",
		Timestamp:  reading.Timestamp,
		Temp:       reading.Temp,
		Humidity:   reading.Humidity,
		Gas:        reading.Gas,
		Items:      itemsJSON,
		AIResponse: &aiResponse,
		Priority:   priorityJSON,
		Analysis:   analysisJSON,
	}
	if err := p.statusRepo.Upsert(ctx, nil, record); err != nil {
		return nil, err
	}

	response := record.ToResponse()
	return &response, nil
}

// emitNotifications applies the alerting rules for one cycle. Notification
// failures are logged and dropped; they never fail the cycle.
func (p *Pipeline) emitNotifications(ctx context.Context, results map[types.Category]types.AnalysisResult, expiring []types.ExpiringItem) {
	if results[types.CategorySafety].Severity == types.SeverityDanger {
		p.notify(ctx, &types.Notification{
			Type:     types.NotificationAlert,
			Title:    "Unsafe fridge conditions",
			Message:  results[types.CategorySafety].Text,
			Priority: 1,
		})
	}

	var expired, soon []string
	for _, item := range expiring {
		if item.DaysRemaining <= 0 {
			expired = append(expired, item.Item)
		} else {
			soon = append(soon, item.Item)
		}
	}
	if len(expired) > 0 {
		p.notify(ctx, &types.Notification{
			Type:     types.NotificationExpiry,
			Title:    "Items expired",
			Message:  fmt.Sprintf("Expired: %s. Remove these items.", strings.Join(expired, ", ")),
			Priority: 1,
		})
	}
	if len(soon) > 0 {
		p.notify(ctx, &types.Notification{
			Type:     types.NotificationExpiry,
			Title:    "Items expiring soon",
			Message:  fmt.Sprintf("Expiring within %d days: %s.", ExpiringSoonDays, strings.Join(soon, ", ")),
			Priority: 2,
		})
	}

	if FreshnessUrgent(results[types.CategoryFreshness].Text) {
		p.notify(ctx, &types.Notification{
			Type:     types.NotificationInfo,
			Title:    "Freshness check",
			Message:  results[types.CategoryFreshness].Text,
			Priority: 3,
		})
	}
}

func (p *Pipeline) notify(ctx context.Context, n *types.Notification) {
	if err := p.notifier.Notify(ctx, n); err != nil {
		p.log.Warn("Notification delivery failed", "title", n.Title, "error", err)
	}
}
