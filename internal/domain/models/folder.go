package models

import (
	"fmt"
	"time"
)

// Kind namespaces folders and memberships. A form folder never holds a
// view and vice versa.
type Kind string

const (
	KindForm Kind = "form"
	KindView Kind = "view"
)

// Kinds lists every supported kind in display order
var Kinds = []Kind{KindForm, KindView}

// ParseKind accepts "form"/"forms" and "view"/"views"
func ParseKind(s string) (Kind, error) {
	switch s {
	case "form", "forms":
		return KindForm, nil
	case "view", "views":
		return KindView, nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// Valid reports whether k is one of the supported kinds
func (k Kind) Valid() bool {
	return k == KindForm || k == KindView
}

// Ordered reports whether folders of this kind keep a display order
func (k Kind) Ordered() bool {
	return k == KindView
}

// Plural is used in route segments and messages ("forms", "views")
func (k Kind) Plural() string {
	return string(k) + "s"
}

// RecordID identifies a form or view in the Record Store
type RecordID int64

type Folder struct {
	ID        string    `json:"id" db:"id"`
	Kind      Kind      `json:"kind" db:"kind"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FolderSummary is a folder with its current member count
type FolderSummary struct {
	Folder
	RecordCount int `json:"record_count"`
}

// Membership represents "record X is in folder Y". A nil FolderID means
// the record is unassigned.
type Membership struct {
	RecordID  RecordID  `json:"record_id" db:"record_id"`
	Kind      Kind      `json:"kind" db:"kind"`
	FolderID  *string   `json:"folder_id" db:"folder_id"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FolderOrder is the advisory display order for a view folder
type FolderOrder struct {
	FolderID  string     `json:"folder_id" db:"folder_id"`
	RecordIDs []RecordID `json:"record_ids" db:"record_ids"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// FolderContents is a folder with its member records in display order
type FolderContents struct {
	Folder  Folder   `json:"folder"`
	Records []Record `json:"records"`
}

// OutcomeStatus is the per-record result of a bulk assignment
type OutcomeStatus string

const (
	OutcomeApplied OutcomeStatus = "applied"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomeSkipped OutcomeStatus = "skipped" // not attempted after an earlier failure
)

// ItemOutcome reports what happened to one record of a bulk assignment
type ItemOutcome struct {
	RecordID RecordID      `json:"record_id"`
	Status   OutcomeStatus `json:"status"`
	Error    string        `json:"error,omitempty"`
}
