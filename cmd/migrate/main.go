package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"paper-system/migrations"
	"paper-system/pkg/config"
)

func openDB() (*sql.DB, error) {
	cfg := config.New()
	db, err := goose.OpenDBWithDriver("pgx", cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// withDB открывает соединение на время выполнения одной команды.
func withDB(fn func(db *sql.DB, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return fn(db, args)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Управление схемой БД платформы публикаций",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Применить все новые миграции",
			RunE: withDB(func(db *sql.DB, _ []string) error {
				return goose.Up(db, ".")
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Откатить последнюю миграцию",
			RunE: withDB(func(db *sql.DB, _ []string) error {
				return goose.Down(db, ".")
			}),
		},
		&cobra.Command{
			Use:   "down-to [version]",
			Short: "Откатить миграции до указанной версии",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(db *sql.DB, args []string) error {
				version, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("некорректная версия %q: %w", args[0], err)
				}
				return goose.DownTo(db, ".", version)
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Показать состояние миграций",
			RunE: withDB(func(db *sql.DB, _ []string) error {
				return goose.Status(db, ".")
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Показать текущую версию схемы",
			RunE: withDB(func(db *sql.DB, _ []string) error {
				return goose.Version(db, ".")
			}),
		},
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("❌ Ошибка миграции: %v", err)
		os.Exit(1)
	}
}
