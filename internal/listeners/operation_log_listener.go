package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"paper-system/internal/entities"
	"paper-system/internal/events"
	"paper-system/internal/repositories"
	"paper-system/pkg/eventbus"
)

// OperationLogListener пишет события изменений в журнал операций.
type OperationLogListener struct {
	repo   repositories.OperationLogRepositoryInterface
	logger *zap.Logger
}

func NewOperationLogListener(repo repositories.OperationLogRepositoryInterface, logger *zap.Logger) *OperationLogListener {
	return &OperationLogListener{repo: repo, logger: logger}
}

func (l *OperationLogListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.OperationPerformed, l.handleOperation)
	l.logger.Info("OperationLogListener подписан на событие", zap.String("event", events.OperationPerformed))
}

func (l *OperationLogListener) handleOperation(ctx context.Context, e eventbus.Event) error {
	event, ok := e.(events.OperationEvent)
	if !ok {
		return fmt.Errorf("неожиданный тип события %T", e)
	}
	return l.repo.Create(ctx, &entities.OperationLog{
		UserID:       event.UserID,
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		Description:  event.Description,
		IP:           event.IP,
		UserAgent:    event.UserAgent,
	})
}
