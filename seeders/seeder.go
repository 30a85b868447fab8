package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCoreDictionaries наполняет справочники без зависимостей: департаменты и параметры системы.
func SeedCoreDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения базовых справочников...")

	if err := seedDepartments(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Департаментов: %v", err)
	}
	if err := seedSystemConfigs(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Параметров системы: %v", err)
	}
	log.Println("✅ Наполнение базовых справочников завершено!")
}

// SeedUsers создаёт учётные записи по умолчанию и приветственное уведомление.
// Департаменты должны быть уже созданы.
func SeedUsers(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания пользователей...")

	if err := seedDefaultUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания Пользователей: %v", err)
	}
	if err := seedWelcomeNotification(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания Приветственного уведомления: %v", err)
	}
	log.Println("✅ Создание пользователей завершено!")
}
