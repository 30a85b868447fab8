package postgresql

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	connectTimeout  = 10 * time.Second
	maxConnIdleTime = 5 * time.Minute
)

// ConnectDB открывает пул и проверяет соединение; при ошибке завершает процесс.
// Используется сервером и сидерами.
func ConnectDB(dsn string) *pgxpool.Pool {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatalf("Некорректная строка подключения к БД: %v", err)
	}
	poolCfg.MaxConnIdleTime = maxConnIdleTime

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	dbpool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Fatalf("Ошибка создания пула соединений к БД: %v", err)
	}
	if err := dbpool.Ping(ctx); err != nil {
		dbpool.Close()
		log.Fatalf("Не удалось пинговать БД %s: %v", poolCfg.ConnConfig.Host, err)
	}

	log.Printf("✅ Подключено к PostgreSQL (%s/%s)", poolCfg.ConnConfig.Host, poolCfg.ConnConfig.Database)
	return dbpool
}
