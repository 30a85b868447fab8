package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func seedDepartments(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение департаментов...")
	batch := &pgx.Batch{}
	for _, d := range departmentsData {
		batch.Queue(`INSERT INTO departments (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			d.Name, d.Description)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("не удалось вставить департаменты: %w", err)
	}
	return nil
}

// seedSystemConfigs не перезаписывает значения, уже изменённые администратором.
func seedSystemConfigs(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение параметров системы...")
	batch := &pgx.Batch{}
	for _, c := range configsData {
		batch.Queue(`
			INSERT INTO system_configs (config_key, config_value, config_type, description)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (config_key) DO NOTHING`,
			c.Key, c.Value, c.Type, c.Description)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("не удалось вставить параметры системы: %w", err)
	}
	return nil
}
