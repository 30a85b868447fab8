package dto

import (
	"paper-system/internal/entities"
	"paper-system/pkg/monitor"
)

type ConfigItemDTO struct {
	Key         string      `json:"key"`
	Value       interface{} `json:"value"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
}

// UpdateConfigDTO - ключ конфигурации -> новое значение своего типа.
type UpdateConfigDTO struct {
	Configs map[string]interface{} `json:"configs" validate:"required,min=1"`
}

type MaintenanceDTO struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

type SystemStatsDTO struct {
	Runtime       monitor.Snapshot     `json:"runtime"`
	Users         map[string]uint64    `json:"users"`
	Papers        entities.PaperCounts `json:"papers"`
	Journals      uint64               `json:"journals"`
	OperationLogs uint64               `json:"operation_logs"`
}

type CleanupResultDTO struct {
	Deleted int64 `json:"deleted"`
	Days    int   `json:"days"`
}

type HealthDTO struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Time     string `json:"time"`
}
