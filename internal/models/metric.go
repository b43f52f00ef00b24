package models

import "time"

const HealthMetricsSchemaVersion = 1

type HealthMetric struct {
	Name      string    `json:"name" msgpack:"name"`
	Value     float64   `json:"value" msgpack:"value"`
	Unit      string    `json:"unit" msgpack:"unit"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
}

// HealthMetrics is the per-user metrics document.
type HealthMetrics struct {
	UserID        string         `json:"user_id" msgpack:"user_id"`
	Metrics       []HealthMetric `json:"metrics" msgpack:"metrics"`
	UpdatedAt     time.Time      `json:"updated_at" msgpack:"updated_at"`
	SchemaVersion int            `json:"schema_version" msgpack:"schema_version"`
}
