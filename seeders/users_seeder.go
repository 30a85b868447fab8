package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paper-system/internal/entities"
	"paper-system/pkg/utils"
)

func seedDefaultUsers(ctx context.Context, db *pgxpool.Pool) error {
	hashedPassword, err := utils.HashPassword(DefaultPassword)
	if err != nil {
		return fmt.Errorf("не удалось захешировать пароль: %w", err)
	}

	for _, u := range usersData {
		var departmentID uint64
		err := db.QueryRow(ctx, "SELECT id FROM departments WHERE name = $1", u.Department).Scan(&departmentID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("департамент '%s' не найден, сначала запустите -core", u.Department)
		}
		if err != nil {
			return err
		}

		tag, err := db.Exec(ctx, `
			INSERT INTO users (username, password, name, role, department_id, email, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (username) DO NOTHING`,
			u.Username, hashedPassword, u.Name, string(u.Role), departmentID, u.Email, entities.UserStatusActive)
		if err != nil {
			return fmt.Errorf("не удалось создать пользователя %s: %w", u.Username, err)
		}
		if tag.RowsAffected() == 0 {
			log.Printf("    - Пользователь %s уже существует. Пропускаем.", u.Username)
			continue
		}
		log.Printf("    - Создан пользователь %s (%s) / %s", u.Username, u.Role, DefaultPassword)
	}
	return nil
}

func seedWelcomeNotification(ctx context.Context, db *pgxpool.Pool) error {
	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM notifications)").Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err := db.Exec(ctx, `
		INSERT INTO notifications (title, content, type, status, author_id)
		SELECT $1, $2, $3, $4, id FROM users WHERE username = 'admin'`,
		"Добро пожаловать на платформу научных публикаций",
		"Ознакомьтесь с руководством пользователя. По всем вопросам обращайтесь к администратору.",
		entities.NotificationTypeAnnouncement, entities.NotificationStatusPublished)
	return err
}
