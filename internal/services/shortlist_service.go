package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/scoutlab/xi-optimizer/internal/models"
)

// csvColumns is the export column order, and doubles as the canonical
// header for imports.
var csvColumns = []string{"id", "name", "position", "team", "league", "age", "value_mil", "rating", "status", "tags", "notes"}

// csvAliases accepts Spanish and legacy header spellings on import.
var csvAliases = map[string][]string{
	"name":      {"name", "nombre"},
	"position":  {"position", "pos"},
	"team":      {"team", "equipo", "club"},
	"league":    {"league", "liga", "comp"},
	"age":       {"age", "edad"},
	"value_mil": {"value_mil", "market_value_mil", "valor"},
	"rating":    {"rating", "score"},
	"status":    {"status", "estado"},
	"notes":     {"notes", "nota", "observaciones"},
}

// ShortlistService manages scouting shortlists and their entries.
// Entries upsert on player identity (name, team, position) so adding
// the same player twice updates the notes instead of duplicating.
type ShortlistService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewShortlistService(db *gorm.DB, logger *logrus.Logger) *ShortlistService {
	return &ShortlistService{
		db:     db,
		logger: logger,
	}
}

// ListShortlists returns all shortlists without their entries.
func (s *ShortlistService) ListShortlists() ([]models.Shortlist, error) {
	var lists []models.Shortlist
	if err := s.db.Order("name ASC").Find(&lists).Error; err != nil {
		return nil, fmt.Errorf("listing shortlists: %w", err)
	}
	return lists, nil
}

// GetShortlist fetches a shortlist by name, entries included, creating
// it when missing.
func (s *ShortlistService) GetShortlist(name string) (*models.Shortlist, error) {
	var list models.Shortlist
	err := s.db.Preload("Entries").Where("name = ?", name).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		list = models.Shortlist{Name: name, SchemaVersion: models.ShortlistSchemaVersion}
		if err := s.db.Create(&list).Error; err != nil {
			return nil, fmt.Errorf("creating shortlist: %w", err)
		}
		return &list, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching shortlist: %w", err)
	}
	return &list, nil
}

// DeleteShortlist removes a shortlist and its entries.
func (s *ShortlistService) DeleteShortlist(name string) error {
	var list models.Shortlist
	err := s.db.Where("name = ?", name).First(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("shortlist %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("fetching shortlist: %w", err)
	}

	if err := s.db.Where("shortlist_id = ?", list.ID).Delete(&models.ShortlistEntry{}).Error; err != nil {
		return fmt.Errorf("deleting shortlist entries: %w", err)
	}
	if err := s.db.Delete(&list).Error; err != nil {
		return fmt.Errorf("deleting shortlist: %w", err)
	}
	return nil
}

// AddEntry upserts an entry. A player already on the list (same name,
// team, position) gets their rating, status, tags and notes updated in
// place.
func (s *ShortlistService) AddEntry(shortlistName string, entry models.ShortlistEntry) (*models.ShortlistEntry, error) {
	if strings.TrimSpace(entry.Name) == "" {
		return nil, fmt.Errorf("entry name is required")
	}

	list, err := s.GetShortlist(shortlistName)
	if err != nil {
		return nil, err
	}

	entry.Rating = models.ClampRating(entry.Rating)
	if entry.Status == "" {
		entry.Status = "scouting"
	}

	for i := range list.Entries {
		existing := &list.Entries[i]
		if !existing.SameIdentity(&entry) {
			continue
		}
		existing.League = entry.League
		existing.Age = entry.Age
		existing.ValueMil = entry.ValueMil
		existing.Rating = entry.Rating
		existing.Status = entry.Status
		existing.Tags = entry.Tags
		existing.Notes = entry.Notes
		if err := s.db.Save(existing).Error; err != nil {
			return nil, fmt.Errorf("updating shortlist entry: %w", err)
		}
		return existing, nil
	}

	entry.ShortlistID = list.ID
	if entry.ExternalID == "" {
		entry.ExternalID = uuid.New().String()
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("creating shortlist entry: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"shortlist": shortlistName,
		"player":    entry.Name,
	}).Info("Added shortlist entry")
	return &entry, nil
}

// UpdateEntry applies partial updates to an entry by external ID.
func (s *ShortlistService) UpdateEntry(externalID string, updates map[string]interface{}) (*models.ShortlistEntry, error) {
	var entry models.ShortlistEntry
	err := s.db.Where("external_id = ?", externalID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("entry %s: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching shortlist entry: %w", err)
	}

	if r, ok := updates["rating"]; ok {
		switch v := r.(type) {
		case float64:
			updates["rating"] = models.ClampRating(int(v))
		case int:
			updates["rating"] = models.ClampRating(v)
		}
	}
	delete(updates, "id")
	delete(updates, "external_id")
	delete(updates, "shortlist_id")

	if err := s.db.Model(&entry).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("updating shortlist entry: %w", err)
	}
	return &entry, nil
}

// DeleteEntry removes an entry by external ID.
func (s *ShortlistService) DeleteEntry(externalID string) error {
	res := s.db.Where("external_id = ?", externalID).Delete(&models.ShortlistEntry{})
	if res.Error != nil {
		return fmt.Errorf("deleting shortlist entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("entry %s: %w", externalID, ErrNotFound)
	}
	return nil
}

// ExportCSV writes a shortlist's entries as CSV.
func (s *ShortlistService) ExportCSV(shortlistName string, w io.Writer) error {
	list, err := s.GetShortlist(shortlistName)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, e := range list.Entries {
		record := []string{
			e.ExternalID,
			e.Name,
			e.Position,
			e.Team,
			e.League,
			formatIntPtr(e.Age),
			formatFloatPtr(e.ValueMil),
			strconv.Itoa(e.Rating),
			e.Status,
			e.Tags,
			e.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ImportCSV reads entries from CSV and upserts them into the
// shortlist. Headers are matched case-insensitively against the known
// aliases; rows without a name are skipped.
func (s *ShortlistService) ImportCSV(shortlistName string, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("reading csv header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	pick := func(record []string, field string) string {
		aliases, ok := csvAliases[field]
		if !ok {
			aliases = []string{field}
		}
		for _, alias := range aliases {
			if idx, ok := cols[alias]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
		}
		return ""
	}

	imported := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("reading csv row: %w", err)
		}

		name := pick(record, "name")
		if name == "" {
			continue
		}

		entry := models.ShortlistEntry{
			ExternalID: pick(record, "id"),
			Name:       name,
			Position:   pick(record, "position"),
			Team:       pick(record, "team"),
			League:     pick(record, "league"),
			Status:     pick(record, "status"),
			Tags:       pick(record, "tags"),
			Notes:      pick(record, "notes"),
		}
		if age, err := strconv.Atoi(pick(record, "age")); err == nil {
			entry.Age = &age
		}
		if v, err := strconv.ParseFloat(pick(record, "value_mil"), 64); err == nil {
			entry.ValueMil = &v
		}
		if rating, err := strconv.Atoi(pick(record, "rating")); err == nil {
			entry.Rating = models.ClampRating(rating)
		}

		if _, err := s.AddEntry(shortlistName, entry); err != nil {
			return imported, err
		}
		imported++
	}

	s.logger.WithFields(logrus.Fields{
		"shortlist": shortlistName,
		"imported":  imported,
	}).Info("Imported shortlist entries from CSV")
	return imported, nil
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
