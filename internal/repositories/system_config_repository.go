package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"paper-system/internal/entities"
)

const systemConfigSelectFields = "config_key, config_value, config_type, description, updated_at"

type SystemConfigRepositoryInterface interface {
	GetAll(ctx context.Context) ([]entities.SystemConfig, error)
	Get(ctx context.Context, key string) (*entities.SystemConfig, error)
	SetValues(ctx context.Context, values map[string]string) error
	Upsert(ctx context.Context, cfg entities.SystemConfig) error
}

type SystemConfigRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSystemConfigRepository(storage *pgxpool.Pool, logger *zap.Logger) SystemConfigRepositoryInterface {
	return &SystemConfigRepository{storage: storage, logger: logger}
}

func scanSystemConfig(row pgx.Row) (*entities.SystemConfig, error) {
	var c entities.SystemConfig
	if err := row.Scan(&c.Key, &c.Value, &c.Type, &c.Description, &c.UpdatedAt); err != nil {
		return nil, translateError(err)
	}
	return &c, nil
}

func (r *SystemConfigRepository) GetAll(ctx context.Context) ([]entities.SystemConfig, error) {
	rows, err := r.storage.Query(ctx, "SELECT "+systemConfigSelectFields+" FROM system_configs ORDER BY config_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make([]entities.SystemConfig, 0)
	for rows.Next() {
		c, err := scanSystemConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *c)
	}
	return configs, rows.Err()
}

func (r *SystemConfigRepository) Get(ctx context.Context, key string) (*entities.SystemConfig, error) {
	return scanSystemConfig(r.storage.QueryRow(ctx,
		"SELECT "+systemConfigSelectFields+" FROM system_configs WHERE config_key = $1", key))
}

// SetValues обновляет значения существующих ключей одной пачкой.
func (r *SystemConfigRepository) SetValues(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for key, value := range values {
		batch.Queue(`UPDATE system_configs SET config_value = $2, updated_at = NOW() WHERE config_key = $1`, key, value)
	}
	return r.storage.SendBatch(ctx, batch).Close()
}

func (r *SystemConfigRepository) Upsert(ctx context.Context, cfg entities.SystemConfig) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO system_configs (config_key, config_value, config_type, description)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (config_key) DO UPDATE SET
			config_value = EXCLUDED.config_value,
			config_type = EXCLUDED.config_type,
			description = EXCLUDED.description,
			updated_at = NOW()`,
		cfg.Key, cfg.Value, cfg.Type, cfg.Description)
	return translateError(err)
}
