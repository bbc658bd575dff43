package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/scoutlab/xi-optimizer/internal/scout"
)

// Squad is a persisted lineup snapshot: formation plus a denormalized
// copy of each assigned player at assignment time. Saving never merges
// with an existing row's slots; the snapshot replaces them wholesale.
type Squad struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ExternalID    string         `gorm:"uniqueIndex;size:36" json:"external_id"`
	Name          string         `gorm:"not null" json:"name"`
	Formation     string         `gorm:"not null" json:"formation"`
	Slots         datatypes.JSON `json:"slots"`
	TotalValueMil float64        `json:"total_value_mil"`
	IsOptimized   bool           `gorm:"default:false" json:"is_optimized"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Squad) TableName() string {
	return "squads"
}

// Lineup decodes the stored slot snapshot.
func (s *Squad) Lineup() (scout.Lineup, error) {
	lineup := scout.Lineup{
		Formation: s.Formation,
		Slots:     make(map[string]*scout.Player),
	}
	if len(s.Slots) == 0 {
		return lineup, nil
	}
	if err := json.Unmarshal(s.Slots, &lineup.Slots); err != nil {
		return scout.Lineup{}, fmt.Errorf("corrupt squad %q slots: %w", s.Name, err)
	}
	return lineup, nil
}

// SetLineup replaces the stored snapshot with the given lineup and
// refreshes the cached total value.
func (s *Squad) SetLineup(lineup scout.Lineup) error {
	data, err := json.Marshal(lineup.Slots)
	if err != nil {
		return fmt.Errorf("failed to encode squad slots: %w", err)
	}
	s.Formation = lineup.Formation
	s.Slots = datatypes.JSON(data)
	s.TotalValueMil = lineup.TotalValueMil()
	return nil
}
