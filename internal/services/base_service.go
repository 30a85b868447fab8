package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"paper-system/internal/events"
	"paper-system/internal/repositories"
	"paper-system/pkg/eventbus"
	"paper-system/pkg/utils"
)

// backgroundTimeout - время жизни фоновой best-effort задачи.
const backgroundTimeout = 5 * time.Second

type BaseService struct {
	cache  repositories.CacheRepositoryInterface
	bus    *eventbus.Bus
	logger *zap.Logger
}

func NewBaseService(cache repositories.CacheRepositoryInterface, bus *eventbus.Bus, logger *zap.Logger) *BaseService {
	return &BaseService{cache: cache, bus: bus, logger: logger}
}

// CacheGet получает данные из кэша
func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		s.logger.Warn("Повреждённое значение в кэше", zap.String("key", key), zap.Error(err))
		return false
	}
	s.logger.Debug("Данные получены из кэша", zap.String("key", key))
	return true
}

// CacheSet сохраняет данные в кэш в фоне, ошибки только логируются.
func (s *BaseService) CacheSet(key string, data interface{}, ttl time.Duration) {
	serialized, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("Не удалось сериализовать данные для кэша", zap.String("key", key), zap.Error(err))
		return
	}
	go func() {
		ctx, cancel := utils.Detached(backgroundTimeout)
		defer cancel()
		if err := s.cache.Set(ctx, key, serialized, ttl); err != nil {
			s.logger.Warn("Не удалось записать в кэш", zap.String("key", key), zap.Error(err))
		}
	}()
}

func (s *BaseService) CacheDel(ctx context.Context, keys ...string) {
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.logger.Warn("Не удалось очистить кэш", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Record публикует событие для журнала операций от имени текущего пользователя.
func (s *BaseService) Record(ctx context.Context, action, resource string, resourceID *uint64, description string) {
	if s.bus == nil {
		return
	}
	client := utils.ClientFromCtx(ctx)
	event := events.OperationEvent{
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		Description:  description,
		IP:           client.IP,
		UserAgent:    client.UserAgent,
	}
	if p, err := utils.PrincipalFromCtx(ctx); err == nil {
		userID := p.ID
		event.UserID = &userID
	}
	s.bus.Publish(ctx, event)
}

func (s *BaseService) Publish(ctx context.Context, event eventbus.Event) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, event)
}
