package domain

import "time"

// DeletedEntity is a tombstone left behind when a record is removed, so
// change-tracking clients can learn about the deletion.
type DeletedEntity struct {
	Meta         `yaml:",inline"`
	ResourceType string    `json:"resource_type" yaml:"resource_type"`
	EntityID     string    `json:"entity_id" yaml:"entity_id"`
	DeletedAt    time.Time `json:"deleted_at" yaml:"deleted_at"`
}

// DeletedEntityTable is the column table for tombstones.
var DeletedEntityTable = NewTable("deleted_entities",
	func(d *DeletedEntity) *Meta { return &d.Meta },
	StringCol("resource_type", func(d *DeletedEntity) *string { return &d.ResourceType }),
	StringCol("entity_id", func(d *DeletedEntity) *string { return &d.EntityID }),
	TimeCol("deleted_at", func(d *DeletedEntity) *time.Time { return &d.DeletedAt }),
)

// Log is a provisioning log line.
type Log struct {
	Meta       `yaml:",inline"`
	LogMessage string    `json:"log_message" yaml:"log_message"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// LogTable is the column table for log lines.
var LogTable = NewTable("logs",
	func(l *Log) *Meta { return &l.Meta },
	StringCol("log_message", func(l *Log) *string { return &l.LogMessage }),
	TimeCol("timestamp", func(l *Log) *time.Time { return &l.Timestamp }),
)
