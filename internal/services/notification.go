package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/smartfridge-backend/internal/clients/redis"
	"github.com/yungbote/smartfridge-backend/internal/logger"
	"github.com/yungbote/smartfridge-backend/internal/repos"
	"github.com/yungbote/smartfridge-backend/internal/sse"
	"github.com/yungbote/smartfridge-backend/internal/types"
)

// NotificationService persists notifications and fans them out to connected
// clients, through Redis when configured so every replica's streams see them.
type NotificationService struct {
	log  *logger.Logger
	repo repos.NotificationRepo
	hub  *sse.Hub
	bus  redis.EventBus
}

// NewNotificationService wires the sink. bus may be nil for single-instance
// deployments; events then go straight to the local hub.
func NewNotificationService(log *logger.Logger, repo repos.NotificationRepo, hub *sse.Hub, bus redis.EventBus) *NotificationService {
	return &NotificationService{
		log:  log.With("service", "NotificationService"),
		repo: repo,
		hub:  hub,
		bus:  bus,
	}
}

// Notify stores the notification and broadcasts it. A broadcast failure is
// logged, never returned; the stored record is the source of truth.
func (s *NotificationService) Notify(ctx context.Context, n *types.Notification) error {
	if err := s.repo.Create(ctx, nil, n); err != nil {
		return err
	}
	s.log.Info("Notification created", "type", n.Type, "priority", n.Priority, "title", n.Title)

	msg := sse.Message{Event: sse.EventNotificationCreated, Data: n}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, msg); err != nil {
			s.log.Warn("Redis publish failed; falling back to local broadcast", "error", err)
			s.hub.Broadcast(msg)
		}
		return nil
	}
	s.hub.Broadcast(msg)
	return nil
}

// BroadcastStatus announces a fresh pipeline snapshot to streaming clients.
func (s *NotificationService) BroadcastStatus(ctx context.Context, status types.FridgeStatusResponse) {
	msg := sse.Message{Event: sse.EventStatusUpdated, Data: status}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, msg); err != nil {
			s.log.Warn("Redis publish failed; falling back to local broadcast", "error", err)
			s.hub.Broadcast(msg)
		}
		return
	}
	s.hub.Broadcast(msg)
}

func (s *NotificationService) List(ctx context.Context) ([]*types.Notification, error) {
	return s.repo.List(ctx, nil)
}

func (s *NotificationService) CountUnread(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(ctx, nil)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, nil, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.repo.MarkAllRead(ctx, nil)
}
