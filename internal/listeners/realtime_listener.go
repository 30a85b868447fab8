package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"paper-system/internal/entities"
	"paper-system/internal/events"
	"paper-system/pkg/eventbus"
	"paper-system/pkg/websocket"
)

// Pusher доставляет сообщения подключённым клиентам.
type Pusher interface {
	SendToUser(userID uint64, messageType string, payload interface{}) error
	Broadcast(messageType string, payload interface{}) error
}

type PaperFinder interface {
	FindByID(ctx context.Context, id uint64) (*entities.Paper, error)
}

// RealtimeListener сообщает владельцам о проверке статей и всем о новых уведомлениях.
type RealtimeListener struct {
	pusher Pusher
	papers PaperFinder
	logger *zap.Logger
}

func NewRealtimeListener(pusher Pusher, papers PaperFinder, logger *zap.Logger) *RealtimeListener {
	return &RealtimeListener{pusher: pusher, papers: papers, logger: logger}
}

func (l *RealtimeListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.PaperAudited, l.handlePaperAudited)
	bus.Subscribe(events.NotificationPublished, l.handleNotificationPublished)
	l.logger.Info("RealtimeListener подписан на события",
		zap.Strings("events", []string{events.PaperAudited, events.NotificationPublished}))
}

func (l *RealtimeListener) handlePaperAudited(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.PaperAuditedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}
	for _, id := range event.PaperIDs {
		paper, err := l.papers.FindByID(ctx, id)
		if err != nil {
			l.logger.Warn("Статья для уведомления владельца не найдена", zap.Uint64("paperID", id), zap.Error(err))
			continue
		}
		payload := websocket.PaperAuditedPayload{
			PaperID: paper.ID,
			Title:   paper.Title,
			Status:  event.Status,
			Comment: event.Comment,
		}
		if err := l.pusher.SendToUser(paper.UserID, websocket.MessagePaperAudited, payload); err != nil {
			return err
		}
	}
	return nil
}

func (l *RealtimeListener) handleNotificationPublished(_ context.Context, e eventbus.Event) error {
	event, ok := e.(events.NotificationPublishedEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}
	return l.pusher.Broadcast(websocket.MessageNotificationPublished, websocket.NotificationPayload{
		ID:    event.NotificationID,
		Title: event.Title,
		Type:  event.Type,
	})
}
