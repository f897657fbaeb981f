package models

import (
	"time"
)

// RecordStatus mirrors the lifecycle states the Record Store tracks
type RecordStatus string

const (
	RecordStatusActive RecordStatus = "active"
	RecordStatusDraft  RecordStatus = "draft"
	RecordStatusTrash  RecordStatus = "trash"
)

// JSONMap is a type alias for JSONB columns
type JSONMap map[string]interface{}

// Record is a form or a view. Records are owned by the Record Store;
// folders only reference their ids.
type Record struct {
	ID        RecordID     `json:"id" db:"id"`
	Kind      Kind         `json:"kind" db:"kind"`
	Title     string       `json:"title" db:"title"`
	Status    RecordStatus `json:"status" db:"status"`
	Meta      JSONMap      `json:"meta,omitempty" db:"meta"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// Trashed reports whether the record sits in the trash
func (r *Record) Trashed() bool {
	return r.Status == RecordStatusTrash
}
