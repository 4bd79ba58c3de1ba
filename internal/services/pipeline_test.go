package services

import (
	"context"
	"encoding/base64"
	"errors"
	"image/color"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/smartfridge-backend/internal/clients/gcp"
	pkgerrors "github.com/yungbote/smartfridge-backend/internal/pkg/errors"
	"github.com/yungbote/smartfridge-backend/internal/sse"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

type memStatusRepo struct {
	upserts  int
	statuses map[string]*types.FridgeStatus
}

func newMemStatusRepo() *memStatusRepo {
	return &memStatusRepo{statuses: map[string]*types.FridgeStatus{}}
}

func (r *memStatusRepo) Upsert(_ context.Context, _ *gorm.DB, status *types.FridgeStatus) error {
	r.upserts++
	r.statuses[status.FridgeID] = status
	return nil
}

func (r *memStatusRepo) GetByFridge(_ context.Context, _ *gorm.DB, fridgeID string) (*types.FridgeStatus, error) {
	status, ok := r.statuses[fridgeID]
	if !ok {
		return nil, pkgerrors.ErrNotFound
	}
	return status, nil
}

type memNotificationRepo struct {
	created []*types.Notification
}

func (r *memNotificationRepo) Create(_ context.Context, _ *gorm.DB, n *types.Notification) error {
	n.ID = uuid.New()
	r.created = append(r.created, n)
	return nil
}

func (r *memNotificationRepo) List(_ context.Context, _ *gorm.DB) ([]*types.Notification, error) {
	return r.created, nil
}

func (r *memNotificationRepo) CountUnread(_ context.Context, _ *gorm.DB) (int64, error) {
	return int64(len(r.created)), nil
}

func (r *memNotificationRepo) MarkRead(_ context.Context, _ *gorm.DB, _ uuid.UUID) error { return nil }

func (r *memNotificationRepo) MarkAllRead(_ context.Context, _ *gorm.DB) error { return nil }

type pipelineFixture struct {
	itemRepo   *memItemRepo
	statusRepo *memStatusRepo
	noteRepo   *memNotificationRepo
	pipeline   *Pipeline
}

// newPipelineFixture wires a pipeline against in-memory stores. detector
// drives the admission gate; visionAI drives item extraction. Analyzers and
// synthesis run without a collaborator and degrade deterministically.
func newPipelineFixture(detector gcp.LabelDetector, visionAI AIClient) *pipelineFixture {
	log := testLogger()
	itemRepo := &memItemRepo{}
	statusRepo := newMemStatusRepo()
	noteRepo := &memNotificationRepo{}

	table := ShelfLifeTable{"milk": 7, "fish": 2}
	tracker := NewExpirationTracker(log, itemRepo, nil, table)
	notifier := NewNotificationService(log, noteRepo, sse.NewHub(log), nil)

	pipeline := NewPipeline(
		log,
		NewImageGuardrail(log, detector),
		NewVisionService(log, visionAI),
		tracker,
		NewValidator(log, nil),
		[]Analyzer{
			NewSafetyAnalyzer(log, nil),
			NewFreshnessAnalyzer(log, nil),
			NewRecipeAnalyzer(log, nil),
			NewExpirationAnalyzer(log, tracker),
		},
		itemRepo,
		statusRepo,
		notifier,
	)

	return &pipelineFixture{
		itemRepo:   itemRepo,
		statusRepo: statusRepo,
		noteRepo:   noteRepo,
		pipeline:   pipeline,
	}
}

func okReading() types.SensorReading {
	return types.SensorReading{Temp: 4, Humidity: 55, Gas: 100, Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestPipelineRejectedImageSkipsExtraction(t *testing.T) {
	visionAI := &fakeAI{text: `["milk"]`}
	fix := newPipelineFixture(nil, visionAI)

	gray := solidImage(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, 8, 8)
	outcome, err := fix.pipeline.Process(context.Background(), ProcessInput{
		Reading:     okReading(),
		ImageBase64: base64.StdEncoding.EncodeToString(gray),
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if outcome.Accepted {
		t.Error("Accepted = true for a rejected image")
	}
	if outcome.Classification == nil || outcome.Classification.IsLikelyFood {
		t.Errorf("Classification = %+v, want rejection verdict", outcome.Classification)
	}
	if visionAI.lastUser != "" {
		t.Error("vision extraction invoked despite rejection")
	}

	// The cycle still runs on an empty item list.
	if outcome.Status == nil {
		t.Fatal("no status for a rejected-image cycle")
	}
	if len(outcome.Status.Items) != 0 {
		t.Errorf("Items = %v, want empty", outcome.Status.Items)
	}
	if len(outcome.Status.Priority) != 4 {
		t.Errorf("Priority entries = %d, want 4", len(outcome.Status.Priority))
	}
	if len(fix.itemRepo.items) != 0 {
		t.Error("tracker recorded items despite rejection")
	}
}

func TestPipelineAcceptedCycle(t *testing.T) {
	detector := &fakeDetector{labels: []gcp.Label{{Description: "food", Score: 0.9}}}
	fix := newPipelineFixture(detector, &fakeAI{text: `["Milk", "Fish"]`})

	outcome, err := fix.pipeline.Process(context.Background(), ProcessInput{
		FridgeID:    "kitchen",
		Reading:     okReading(),
		ImageBase64: base64.StdEncoding.EncodeToString(colorfulImage(t)),
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if !outcome.Accepted {
		t.Fatal("Accepted = false for an admitted image")
	}
	if outcome.Status == nil {
		t.Fatal("Status missing for a completed cycle")
	}
	if !reflect.DeepEqual(outcome.Status.Items, []string{"Milk", "Fish"}) {
		t.Errorf("Items = %v", outcome.Status.Items)
	}
	if len(outcome.Status.Priority) != 4 {
		t.Errorf("Priority entries = %d, want 4", len(outcome.Status.Priority))
	}
	if len(outcome.Status.Analysis) != 4 {
		t.Errorf("Analysis entries = %d, want 4", len(outcome.Status.Analysis))
	}
	if len(fix.itemRepo.items) != 2 {
		t.Errorf("tracked items = %d, want 2", len(fix.itemRepo.items))
	}
	if _, err := fix.statusRepo.GetByFridge(context.Background(), nil, "kitchen"); err != nil {
		t.Errorf("status not persisted under fridge id: %v", err)
	}
}

func TestPipelineSensorOnlyReusesTrackedItems(t *testing.T) {
	detector := &fakeDetector{labels: []gcp.Label{{Description: "food", Score: 0.9}}}
	fix := newPipelineFixture(detector, &fakeAI{text: `["Milk"]`})

	if _, err := fix.pipeline.Process(context.Background(), ProcessInput{
		Reading:     okReading(),
		ImageBase64: base64.StdEncoding.EncodeToString(colorfulImage(t)),
	}); err != nil {
		t.Fatalf("image cycle: %v", err)
	}

	outcome, err := fix.pipeline.Process(context.Background(), ProcessInput{Reading: okReading()})
	if err != nil {
		t.Fatalf("sensor-only cycle: %v", err)
	}

	if !outcome.Accepted {
		t.Error("sensor-only cycle not accepted")
	}
	if outcome.Classification != nil {
		t.Error("classification reported without an image")
	}
	if !reflect.DeepEqual(outcome.Status.Items, []string{"Milk"}) {
		t.Errorf("Items = %v, want tracked items reused", outcome.Status.Items)
	}
}

func TestPipelineDangerEmitsAlert(t *testing.T) {
	fix := newPipelineFixture(nil, &fakeAI{})

	_, err := fix.pipeline.Process(context.Background(), ProcessInput{
		Reading: types.SensorReading{Temp: 12, Humidity: 55, Gas: 500, Timestamp: time.Now()},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	var alert *types.Notification
	for _, n := range fix.noteRepo.created {
		if n.Type == types.NotificationAlert {
			alert = n
			break
		}
	}
	if alert == nil {
		t.Fatal("no alert notification for dangerous conditions")
	}
	if alert.Priority != 1 {
		t.Errorf("alert priority = %d, want 1", alert.Priority)
	}
}

func TestPipelineCalmCycleEmitsNothing(t *testing.T) {
	fix := newPipelineFixture(nil, &fakeAI{})

	if _, err := fix.pipeline.Process(context.Background(), ProcessInput{Reading: okReading()}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(fix.noteRepo.created) != 0 {
		t.Errorf("notifications = %d, want none for a calm fridge", len(fix.noteRepo.created))
	}
}

func TestPipelineInvalidBase64(t *testing.T) {
	fix := newPipelineFixture(nil, &fakeAI{})

	_, err := fix.pipeline.Process(context.Background(), ProcessInput{
		Reading:     okReading(),
		ImageBase64: "!!!not base64!!!",
	})
	if !errors.Is(err, pkgerrors.ErrInvalidImage) {
		t.Errorf("err = %v, want ErrInvalidImage", err)
	}
}

func TestFanOutMergeIsDeterministic(t *testing.T) {
	fix := newPipelineFixture(nil, &fakeAI{})
	in := AnalysisContext{
		FridgeID: "default",
		Reading:  okReading(),
		Items:    []string{"milk"},
	}

	first := fix.pipeline.fanOut(context.Background(), in)
	if len(first) != 4 {
		t.Fatalf("merged results = %d, want 4", len(first))
	}
	for category, result := range first {
		if result.Category != category {
			t.Errorf("result under key %q carries category %q", category, result.Category)
		}
	}

	// Completion order must not leak into the merged output.
	for i := 0; i < 10; i++ {
		if got := fix.pipeline.fanOut(context.Background(), in); !reflect.DeepEqual(got, first) {
			t.Fatalf("fanOut result varies between runs")
		}
	}
}

func TestPipelineDefaultsFridgeID(t *testing.T) {
	fix := newPipelineFixture(nil, &fakeAI{})

	if _, err := fix.pipeline.Process(context.Background(), ProcessInput{Reading: okReading()}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := fix.statusRepo.GetByFridge(context.Background(), nil, DefaultFridgeID); err != nil {
		t.Errorf("status not stored under %q: %v", DefaultFridgeID, err)
	}
}
