package models

import (
	"strings"
	"time"
)

const ShortlistSchemaVersion = 1

// Shortlist is a named list of candidate players with scouting notes.
type Shortlist struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Name          string           `gorm:"uniqueIndex;size:100;not null" json:"name"`
	SchemaVersion int              `gorm:"default:1" json:"schema_version"`
	Entries       []ShortlistEntry `gorm:"constraint:OnDelete:CASCADE" json:"entries"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Shortlist) TableName() string {
	return "shortlists"
}

// ShortlistEntry is one tracked player. Ratings run 1..5; Status is a
// free-form stage label defaulting to "scouting".
type ShortlistEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ShortlistID uint      `gorm:"not null;index" json:"shortlist_id"`
	ExternalID  string    `gorm:"uniqueIndex;size:36" json:"external_id"`
	Name        string    `gorm:"not null" json:"name"`
	Position    string    `json:"position"`
	Team        string    `json:"team"`
	League      string    `json:"league"`
	Age         *int      `json:"age,omitempty"`
	ValueMil    *float64  `json:"value_mil,omitempty"`
	Rating      int       `gorm:"default:3" json:"rating"`
	Status      string    `gorm:"default:scouting" json:"status"`
	Tags        string    `json:"tags"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ShortlistEntry) TableName() string {
	return "shortlist_entries"
}

// SameIdentity reports whether two entries refer to the same player:
// name, team and position compared case-insensitively. Used to upsert
// instead of duplicating.
func (e *ShortlistEntry) SameIdentity(other *ShortlistEntry) bool {
	return strings.EqualFold(e.Name, other.Name) &&
		strings.EqualFold(e.Team, other.Team) &&
		strings.EqualFold(e.Position, other.Position)
}

// ClampRating forces the rating into the 1..5 scale, defaulting to 3.
func ClampRating(rating int) int {
	if rating == 0 {
		return 3
	}
	if rating < 1 {
		return 1
	}
	if rating > 5 {
		return 5
	}
	return rating
}
