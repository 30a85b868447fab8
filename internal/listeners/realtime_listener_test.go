package listeners

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-system/internal/entities"
	"paper-system/internal/events"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/eventbus"
	"paper-system/pkg/websocket"
)

type pushed struct {
	userID      uint64
	messageType string
	payload     interface{}
}

type fakePusher struct {
	mu        sync.Mutex
	direct    []pushed
	broadcast []pushed
}

func (f *fakePusher) SendToUser(userID uint64, messageType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, pushed{userID: userID, messageType: messageType, payload: payload})
	return nil
}

func (f *fakePusher) Broadcast(messageType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, pushed{messageType: messageType, payload: payload})
	return nil
}

type fakePapers map[uint64]*entities.Paper

func (f fakePapers) FindByID(_ context.Context, id uint64) (*entities.Paper, error) {
	p, ok := f[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func TestAuditedPaperReachesOwners(t *testing.T) {
	pusher := &fakePusher{}
	papers := fakePapers{
		1: {ID: 1, Title: "Первая", UserID: 10},
		2: {ID: 2, Title: "Вторая", UserID: 20},
	}
	bus := eventbus.New(zap.NewNop())
	NewRealtimeListener(pusher, papers, zap.NewNop()).Register(bus)

	bus.Publish(context.Background(), events.PaperAuditedEvent{
		PaperIDs: []uint64{1, 2, 99},
		Status:   entities.PaperStatusRejected,
		Comment:  "Нет DOI",
	})
	bus.Wait()

	require.Len(t, pusher.direct, 2)
	assert.Equal(t, uint64(10), pusher.direct[0].userID)
	assert.Equal(t, websocket.MessagePaperAudited, pusher.direct[0].messageType)
	assert.Equal(t, websocket.PaperAuditedPayload{
		PaperID: 2, Title: "Вторая", Status: entities.PaperStatusRejected, Comment: "Нет DOI",
	}, pusher.direct[1].payload)
	assert.Empty(t, pusher.broadcast)
}

func TestPublishedNotificationIsBroadcast(t *testing.T) {
	pusher := &fakePusher{}
	bus := eventbus.New(zap.NewNop())
	NewRealtimeListener(pusher, fakePapers{}, zap.NewNop()).Register(bus)

	bus.Publish(context.Background(), events.NotificationPublishedEvent{
		NotificationID: 3, Title: "Новость", Type: entities.NotificationTypeAnnouncement,
	})
	bus.Wait()

	require.Len(t, pusher.broadcast, 1)
	assert.Equal(t, websocket.NotificationPayload{ID: 3, Title: "Новость", Type: entities.NotificationTypeAnnouncement},
		pusher.broadcast[0].payload)
}
