package services

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/smartfridge-backend/internal/sse"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

func TestNotifyStoresAndBroadcasts(t *testing.T) {
	log := testLogger()
	repo := &memNotificationRepo{}
	hub := sse.NewHub(log)
	svc := NewNotificationService(log, repo, hub, nil)

	client := hub.NewClient()
	defer hub.CloseClient(client)

	err := svc.Notify(context.Background(), &types.Notification{
		Type:     types.NotificationAlert,
		Title:    "Unsafe fridge conditions",
		Message:  "Temperature out of range",
		Priority: 1,
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("stored notifications = %d, want 1", len(repo.created))
	}

	select {
	case msg := <-client.Outbound:
		if msg.Event != sse.EventNotificationCreated {
			t.Errorf("event = %q, want %q", msg.Event, sse.EventNotificationCreated)
		}
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
	}
}

func TestBroadcastStatusReachesClients(t *testing.T) {
	log := testLogger()
	hub := sse.NewHub(log)
	svc := NewNotificationService(log, &memNotificationRepo{}, hub, nil)

	client := hub.NewClient()
	defer hub.CloseClient(client)

	svc.BroadcastStatus(context.Background(), types.FridgeStatusResponse{Status: "analyzed"})

	select {
	case msg := <-client.Outbound:
		if msg.Event != sse.EventStatusUpdated {
			t.Errorf("event = %q, want %q", msg.Event, sse.EventStatusUpdated)
		}
	case <-time.After(time.Second):
		t.Fatal("no broadcast received")
	}
}
