package seeders

import (
	"paper-system/internal/authz"
	"paper-system/internal/entities"
)

// DefaultPassword - пароль всех учётных записей по умолчанию, сменить после первого входа.
const DefaultPassword = "123456"

var departmentsData = []struct {
	Name        string
	Description string
}{
	{Name: "Отдел информатики", Description: "Информатика и вычислительная техника"},
	{Name: "Отдел искусственного интеллекта", Description: "Искусственный интеллект и машинное обучение"},
	{Name: "Отдел науки о данных", Description: "Анализ больших данных и интеллектуальный анализ"},
	{Name: "Отдел программной инженерии", Description: "Разработка ПО и архитектура систем"},
	{Name: "Административный отдел", Description: "Администрирование и операционная поддержка"},
}

var usersData = []struct {
	Username   string
	Name       string
	Role       authz.Role
	Department string
	Email      string
}{
	{Username: "admin", Name: "Системный администратор", Role: authz.RoleAdmin, Department: "Административный отдел", Email: "admin@example.com"},
	{Username: "manager1", Name: "Менеджер публикаций", Role: authz.RoleManager, Department: "Отдел информатики", Email: "manager@example.com"},
	{Username: "secretary1", Name: "Секретарь группы", Role: authz.RoleSecretary, Department: "Отдел искусственного интеллекта", Email: "secretary@example.com"},
	{Username: "researcher1", Name: "Научный сотрудник", Role: authz.RoleUser, Department: "Отдел информатики", Email: "researcher@example.com"},
}

var configsData = []entities.SystemConfig{
	{Key: "system_name", Value: "Платформа научных публикаций", Type: entities.ConfigTypeString, Description: "Название системы"},
	{Key: "file_upload_limit", Value: "52428800", Type: entities.ConfigTypeNumber, Description: "Лимит загрузки файла (байт)"},
	{Key: "audit_period", Value: "7", Type: entities.ConfigTypeNumber, Description: "Срок проверки статьи (дней)"},
	{Key: "email_notification", Value: "true", Type: entities.ConfigTypeBoolean, Description: "Уведомления по email"},
	{Key: entities.ConfigMaintenanceMode, Value: "false", Type: entities.ConfigTypeBoolean, Description: "Режим обслуживания"},
}
