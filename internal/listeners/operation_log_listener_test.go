package listeners

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-system/internal/entities"
	"paper-system/internal/events"
	"paper-system/pkg/eventbus"
	"paper-system/pkg/types"
)

type fakeLogRepo struct {
	mu   sync.Mutex
	logs []entities.OperationLog
}

func (f *fakeLogRepo) Create(_ context.Context, l *entities.OperationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *l)
	return nil
}

func (f *fakeLogRepo) GetLogs(context.Context, types.Filter) ([]entities.OperationLog, uint64, error) {
	return nil, 0, nil
}

func (f *fakeLogRepo) DeleteOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeLogRepo) Count(context.Context) (uint64, error) { return 0, nil }

func TestOperationLogListenerStoresEvent(t *testing.T) {
	repo := &fakeLogRepo{}
	bus := eventbus.New(zap.NewNop())
	NewOperationLogListener(repo, zap.NewNop()).Register(bus)

	userID, paperID := uint64(7), uint64(42)
	bus.Publish(context.Background(), events.OperationEvent{
		UserID:       &userID,
		Action:       events.ActionAudit,
		ResourceType: events.ResourcePaper,
		ResourceID:   &paperID,
		Description:  "Статья проверена",
		IP:           "10.0.0.1",
	})
	bus.Wait()

	require.Len(t, repo.logs, 1)
	got := repo.logs[0]
	assert.Equal(t, userID, *got.UserID)
	assert.Equal(t, events.ActionAudit, got.Action)
	assert.Equal(t, events.ResourcePaper, got.ResourceType)
	assert.Equal(t, paperID, *got.ResourceID)
	assert.Equal(t, "10.0.0.1", got.IP)
}
