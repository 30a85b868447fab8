package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/events"
	"paper-system/internal/repositories"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/monitor"
	"paper-system/pkg/types"
)

const (
	systemConfigCacheKey = "system:config"
	systemConfigTTL      = 10 * time.Minute
	defaultLogRetention  = 30
)

// PingFunc - проверка доступности зависимости для /health.
type PingFunc func(ctx context.Context) error

type SystemServiceInterface interface {
	GetConfigs(ctx context.Context) ([]dto.ConfigItemDTO, error)
	UpdateConfigs(ctx context.Context, payload dto.UpdateConfigDTO) ([]dto.ConfigItemDTO, error)
	SetMaintenance(ctx context.Context, enabled bool) error
	MaintenanceEnabled(ctx context.Context) bool
	Stats(ctx context.Context) (*dto.SystemStatsDTO, error)
	Logs(ctx context.Context, filter types.Filter) ([]entities.OperationLog, uint64, error)
	CleanupLogs(ctx context.Context, days int) (*dto.CleanupResultDTO, error)
	Health(ctx context.Context) (*dto.HealthDTO, bool)
}

type SystemService struct {
	*BaseService
	configRepo  repositories.SystemConfigRepositoryInterface
	logRepo     repositories.OperationLogRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	paperRepo   repositories.PaperRepositoryInterface
	journalRepo repositories.JournalRepositoryInterface
	monitor     *monitor.Monitor
	dbPing      PingFunc
	cachePing   PingFunc
	logger      *zap.Logger
	now         func() time.Time
}

func NewSystemService(
	base *BaseService,
	configRepo repositories.SystemConfigRepositoryInterface,
	logRepo repositories.OperationLogRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	paperRepo repositories.PaperRepositoryInterface,
	journalRepo repositories.JournalRepositoryInterface,
	mon *monitor.Monitor,
	dbPing, cachePing PingFunc,
	logger *zap.Logger,
) SystemServiceInterface {
	return &SystemService{
		BaseService: base,
		configRepo:  configRepo,
		logRepo:     logRepo,
		userRepo:    userRepo,
		paperRepo:   paperRepo,
		journalRepo: journalRepo,
		monitor:     mon,
		dbPing:      dbPing,
		cachePing:   cachePing,
		logger:      logger,
		now:         time.Now,
	}
}

// decodeValue - значение из строки хранилища в тип параметра; нечитаемое остаётся строкой.
func decodeValue(cfg entities.SystemConfig) interface{} {
	switch cfg.Type {
	case entities.ConfigTypeNumber:
		if f, err := strconv.ParseFloat(cfg.Value, 64); err == nil {
			return f
		}
	case entities.ConfigTypeBoolean:
		if b, err := strconv.ParseBool(cfg.Value); err == nil {
			return b
		}
	case entities.ConfigTypeJSON:
		var v interface{}
		if err := json.Unmarshal([]byte(cfg.Value), &v); err == nil {
			return v
		}
	}
	return cfg.Value
}

// encodeValue - обратное преобразование с проверкой типа.
func encodeValue(configType string, value interface{}) (string, error) {
	switch configType {
	case entities.ConfigTypeNumber:
		switch v := value.(type) {
		case float64:
			if v < 0 {
				return "", fmt.Errorf("значение не может быть отрицательным")
			}
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil || f < 0 {
				return "", fmt.Errorf("ожидается неотрицательное число")
			}
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return "", fmt.Errorf("ожидается число")
	case entities.ConfigTypeBoolean:
		switch v := value.(type) {
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return "", fmt.Errorf("ожидается true или false")
			}
			return strconv.FormatBool(b), nil
		}
		return "", fmt.Errorf("ожидается true или false")
	case entities.ConfigTypeJSON:
		raw, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("ожидается JSON")
		}
		return string(raw), nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("ожидается строка")
	}
	return s, nil
}

func (s *SystemService) loadConfigs(ctx context.Context) ([]dto.ConfigItemDTO, error) {
	var items []dto.ConfigItemDTO
	if s.CacheGet(ctx, systemConfigCacheKey, &items) {
		return items, nil
	}
	configs, err := s.configRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	items = make([]dto.ConfigItemDTO, 0, len(configs))
	for _, c := range configs {
		items = append(items, dto.ConfigItemDTO{
			Key:         c.Key,
			Value:       decodeValue(c),
			Type:        c.Type,
			Description: c.Description,
		})
	}
	s.CacheSet(systemConfigCacheKey, items, systemConfigTTL)
	return items, nil
}

func (s *SystemService) GetConfigs(ctx context.Context) ([]dto.ConfigItemDTO, error) {
	return s.loadConfigs(ctx)
}

func (s *SystemService) UpdateConfigs(ctx context.Context, payload dto.UpdateConfigDTO) ([]dto.ConfigItemDTO, error) {
	configs, err := s.configRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	configTypes := make(map[string]string, len(configs))
	for _, c := range configs {
		configTypes[c.Key] = c.Type
	}

	values := make(map[string]string, len(payload.Configs))
	fieldErrors := make(map[string]interface{})
	for key, raw := range payload.Configs {
		configType, ok := configTypes[key]
		if !ok {
			fieldErrors[key] = "Неизвестный параметр"
			continue
		}
		encoded, err := encodeValue(configType, raw)
		if err != nil {
			fieldErrors[key] = err.Error()
			continue
		}
		values[key] = encoded
	}
	if len(fieldErrors) > 0 {
		return nil, apperrors.NewValidationError("Ошибка валидации параметров", fieldErrors)
	}

	if err := s.configRepo.SetValues(ctx, values); err != nil {
		return nil, err
	}
	s.CacheDel(ctx, systemConfigCacheKey)

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s.Record(ctx, events.ActionUpdate, events.ResourceSystem, nil, "Изменены параметры: "+strings.Join(keys, ", "))
	return s.loadConfigs(ctx)
}

func (s *SystemService) SetMaintenance(ctx context.Context, enabled bool) error {
	if err := s.configRepo.SetValues(ctx, map[string]string{
		entities.ConfigMaintenanceMode: strconv.FormatBool(enabled),
	}); err != nil {
		return err
	}
	s.CacheDel(ctx, systemConfigCacheKey)
	s.Record(ctx, events.ActionUpdate, events.ResourceSystem, nil, fmt.Sprintf("Режим обслуживания: %t", enabled))
	s.logger.Warn("Режим обслуживания изменён", zap.Bool("enabled", enabled))
	return nil
}

// MaintenanceEnabled - при ошибке чтения конфигурации считаем режим выключенным.
func (s *SystemService) MaintenanceEnabled(ctx context.Context) bool {
	items, err := s.loadConfigs(ctx)
	if err != nil {
		s.logger.Warn("Не удалось прочитать режим обслуживания", zap.Error(err))
		return false
	}
	for _, item := range items {
		if item.Key == entities.ConfigMaintenanceMode {
			enabled, _ := item.Value.(bool)
			return enabled
		}
	}
	return false
}

func (s *SystemService) Stats(ctx context.Context) (*dto.SystemStatsDTO, error) {
	users, err := s.userRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	papers, err := s.paperRepo.CountPapers(ctx, authz.Scope{Kind: authz.ScopeAll}, types.Filter{})
	if err != nil {
		return nil, err
	}
	journals, err := s.journalRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := s.logRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SystemStatsDTO{
		Runtime:       s.monitor.Snapshot(),
		Users:         users,
		Papers:        papers,
		Journals:      journals,
		OperationLogs: logs,
	}, nil
}

func (s *SystemService) Logs(ctx context.Context, filter types.Filter) ([]entities.OperationLog, uint64, error) {
	return s.logRepo.GetLogs(ctx, filter)
}

func (s *SystemService) CleanupLogs(ctx context.Context, days int) (*dto.CleanupResultDTO, error) {
	if days == 0 {
		days = defaultLogRetention
	}
	if days < 1 {
		return nil, apperrors.NewValidationError("Неверный срок хранения",
			map[string]interface{}{"days": "Ожидается положительное число дней"})
	}
	deleted, err := s.logRepo.DeleteOlderThan(ctx, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionCleanup, events.ResourceSystem, nil,
		fmt.Sprintf("Удалено %d записей журнала старше %d дней", deleted, days))
	return &dto.CleanupResultDTO{Deleted: deleted, Days: days}, nil
}

// Health возвращает состояние и признак полной готовности.
func (s *SystemService) Health(ctx context.Context) (*dto.HealthDTO, bool) {
	health := &dto.HealthDTO{Status: "ok", Database: "ok", Redis: "ok", Time: s.now().UTC().Format(time.RFC3339)}
	healthy := true
	if s.dbPing != nil {
		if err := s.dbPing(ctx); err != nil {
			s.logger.Error("База данных недоступна", zap.Error(err))
			health.Database, healthy = "unavailable", false
		}
	}
	if s.cachePing != nil {
		if err := s.cachePing(ctx); err != nil {
			s.logger.Error("Redis недоступен", zap.Error(err))
			health.Redis, healthy = "unavailable", false
		}
	}
	if !healthy {
		health.Status = "degraded"
	}
	return health, healthy
}
