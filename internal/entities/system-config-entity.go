package entities

import "time"

const (
	ConfigTypeString  = "string"
	ConfigTypeNumber  = "number"
	ConfigTypeBoolean = "boolean"
	ConfigTypeJSON    = "json"
)

const (
	ConfigMaintenanceMode = "maintenance_mode"
)

type SystemConfig struct {
	Key         string     `json:"key" db:"config_key"`
	Value       string     `json:"-" db:"config_value"`
	Type        string     `json:"type" db:"type"`
	Description string     `json:"description" db:"description"`
	UpdatedAt   *time.Time `json:"updated_at" db:"updated_at"`
}
