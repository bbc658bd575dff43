package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/scoutlab/xi-optimizer/internal/models"
	"github.com/scoutlab/xi-optimizer/internal/optimizer"
	"github.com/scoutlab/xi-optimizer/internal/scout"
)

// ErrNotFound marks lookups for records that do not exist; handlers
// translate it to a 404.
var ErrNotFound = errors.New("not found")

// ErrPlayerNotFound is returned when a player name cannot be resolved
// against the pool, even fuzzily.
var ErrPlayerNotFound = errors.New("player not found in pool")

// ErrDuplicate marks creates that would reuse an existing squad name;
// handlers translate it to a 409.
var ErrDuplicate = errors.New("already exists")

// SquadService manages saved squads: manual slot edits, optimizer
// snapshots, comparison and file export/import.
type SquadService struct {
	db      *gorm.DB
	pool    *PoolService
	dataDir string
	logger  *logrus.Logger
}

func NewSquadService(db *gorm.DB, pool *PoolService, dataDir string, logger *logrus.Logger) *SquadService {
	return &SquadService{
		db:      db,
		pool:    pool,
		dataDir: dataDir,
		logger:  logger,
	}
}

// CreateSquad creates an empty squad with every formation slot present
// and unfilled.
func (s *SquadService) CreateSquad(name, formation string) (*models.Squad, error) {
	slots, err := optimizer.FormationSlots(formation)
	if err != nil {
		return nil, err
	}

	var existing int64
	if err := s.db.Model(&models.Squad{}).Where("name = ?", name).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("checking squad name: %w", err)
	}
	if existing > 0 {
		return nil, fmt.Errorf("squad %q: %w", name, ErrDuplicate)
	}

	lineup := scout.Lineup{
		Formation: formation,
		Slots:     make(map[string]*scout.Player, len(slots)),
	}
	for _, slot := range slots {
		lineup.Slots[slot] = nil
	}

	squad := &models.Squad{
		ExternalID: uuid.New().String(),
		Name:       name,
	}
	if err := squad.SetLineup(lineup); err != nil {
		return nil, err
	}

	if err := s.db.Create(squad).Error; err != nil {
		return nil, fmt.Errorf("creating squad: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"squad":     squad.ExternalID,
		"formation": formation,
	}).Info("Created squad")
	return squad, nil
}

// ListSquads returns all squads, most recently updated first.
func (s *SquadService) ListSquads() ([]models.Squad, error) {
	var squads []models.Squad
	if err := s.db.Order("updated_at DESC").Find(&squads).Error; err != nil {
		return nil, fmt.Errorf("listing squads: %w", err)
	}
	return squads, nil
}

// GetSquad fetches a squad by external ID.
func (s *SquadService) GetSquad(externalID string) (*models.Squad, error) {
	var squad models.Squad
	err := s.db.Where("external_id = ?", externalID).First(&squad).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("squad %s: %w", externalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching squad: %w", err)
	}
	return &squad, nil
}

// DeleteSquad removes a squad by external ID.
func (s *SquadService) DeleteSquad(externalID string) error {
	res := s.db.Where("external_id = ?", externalID).Delete(&models.Squad{})
	if res.Error != nil {
		return fmt.Errorf("deleting squad: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("squad %s: %w", externalID, ErrNotFound)
	}
	return nil
}

// SetFormation switches a squad's formation. All slots reset to empty,
// since slot names do not carry over between formations.
func (s *SquadService) SetFormation(externalID, formation string) (*models.Squad, error) {
	squad, err := s.GetSquad(externalID)
	if err != nil {
		return nil, err
	}

	slots, err := optimizer.FormationSlots(formation)
	if err != nil {
		return nil, err
	}

	lineup := scout.Lineup{
		Formation: formation,
		Slots:     make(map[string]*scout.Player, len(slots)),
	}
	for _, slot := range slots {
		lineup.Slots[slot] = nil
	}

	if err := squad.SetLineup(lineup); err != nil {
		return nil, err
	}
	squad.IsOptimized = false
	if err := s.db.Save(squad).Error; err != nil {
		return nil, fmt.Errorf("saving squad: %w", err)
	}
	return squad, nil
}

// SetPlayer resolves a player by name against the pool and assigns the
// resolved player to the given slot. Manual placement does not check
// positional eligibility; scouts override the optimizer on purpose.
func (s *SquadService) SetPlayer(ctx context.Context, externalID, slot, playerName string) (*models.Squad, error) {
	squad, err := s.GetSquad(externalID)
	if err != nil {
		return nil, err
	}

	lineup, err := squad.Lineup()
	if err != nil {
		return nil, err
	}
	if _, ok := lineup.Slots[slot]; !ok {
		return nil, fmt.Errorf("slot %q not in formation %s", slot, lineup.Formation)
	}

	player, err := s.pool.FindPlayer(ctx, playerName)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("%q: %w", playerName, ErrPlayerNotFound)
	}

	lineup.Slots[slot] = player
	if err := squad.SetLineup(lineup); err != nil {
		return nil, err
	}
	squad.IsOptimized = false
	if err := s.db.Save(squad).Error; err != nil {
		return nil, fmt.Errorf("saving squad: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"squad":  externalID,
		"slot":   slot,
		"player": player.Name,
	}).Info("Assigned player to slot")
	return squad, nil
}

// ClearSlot empties a slot.
func (s *SquadService) ClearSlot(externalID, slot string) (*models.Squad, error) {
	squad, err := s.GetSquad(externalID)
	if err != nil {
		return nil, err
	}

	lineup, err := squad.Lineup()
	if err != nil {
		return nil, err
	}
	if _, ok := lineup.Slots[slot]; !ok {
		return nil, fmt.Errorf("slot %q not in formation %s", slot, lineup.Formation)
	}

	lineup.Slots[slot] = nil
	if err := squad.SetLineup(lineup); err != nil {
		return nil, err
	}
	if err := s.db.Save(squad).Error; err != nil {
		return nil, fmt.Errorf("saving squad: %w", err)
	}
	return squad, nil
}

// SaveOptimized persists an optimizer result as a new squad.
func (s *SquadService) SaveOptimized(name, formation string, assignments []optimizer.SlotAssignment) (*models.Squad, error) {
	slots, err := optimizer.FormationSlots(formation)
	if err != nil {
		return nil, err
	}

	lineup := scout.Lineup{
		Formation: formation,
		Slots:     make(map[string]*scout.Player, len(slots)),
	}
	for _, slot := range slots {
		lineup.Slots[slot] = nil
	}
	for _, a := range assignments {
		player := a.Player.Player
		lineup.Slots[a.Slot] = &player
	}

	squad := &models.Squad{
		ExternalID:  uuid.New().String(),
		Name:        name,
		IsOptimized: true,
	}
	if err := squad.SetLineup(lineup); err != nil {
		return nil, err
	}
	if err := s.db.Create(squad).Error; err != nil {
		return nil, fmt.Errorf("creating squad: %w", err)
	}
	return squad, nil
}

// Compare returns aggregate metric rows for two squads.
func (s *SquadService) Compare(aID, bID string) ([]optimizer.ComparisonRow, error) {
	a, err := s.GetSquad(aID)
	if err != nil {
		return nil, err
	}
	b, err := s.GetSquad(bID)
	if err != nil {
		return nil, err
	}

	lineupA, err := a.Lineup()
	if err != nil {
		return nil, err
	}
	lineupB, err := b.Lineup()
	if err != nil {
		return nil, err
	}
	return optimizer.Compare(lineupA, lineupB), nil
}

// filePath maps a user-supplied file name onto the squads directory,
// stripped to characters that are safe in a path segment.
func (s *SquadService) filePath(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if safe == "" {
		safe = "default"
	}
	return filepath.Join(s.dataDir, "squads", safe+".json")
}

// SaveToFile exports a squad under the configured data directory and
// returns the path written.
func (s *SquadService) SaveToFile(externalID, filename string) (string, error) {
	path := s.filePath(filename)
	if err := s.ExportToFile(externalID, path); err != nil {
		return "", err
	}
	return path, nil
}

// LoadFromFile imports a squad file from the configured data
// directory as a new squad.
func (s *SquadService) LoadFromFile(name, filename string) (*models.Squad, error) {
	return s.ImportFromFile(name, s.filePath(filename))
}

// squadFile is the on-disk export format.
type squadFile struct {
	Formation string                   `json:"formation"`
	Slots     map[string]*scout.Player `json:"slots"`
}

// ExportToFile writes a squad to a JSON file. The write goes through a
// temp file and rename so a crash never leaves a half-written export.
func (s *SquadService) ExportToFile(externalID, path string) error {
	squad, err := s.GetSquad(externalID)
	if err != nil {
		return err
	}
	lineup, err := squad.Lineup()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(squadFile{Formation: lineup.Formation, Slots: lineup.Slots}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding squad: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing squad export: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing squad export: %w", err)
	}
	return nil
}

// ImportFromFile loads a squad export and saves it as a new squad. An
// empty file yields a fresh default squad; a corrupt file is copied
// aside with a .corrupt suffix and reported as an error.
func (s *SquadService) ImportFromFile(name, path string) (*models.Squad, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading squad file: %w", err)
	}

	if len(raw) == 0 {
		return s.CreateSquad(name, optimizer.DefaultFormation)
	}

	var file squadFile
	if err := json.Unmarshal(raw, &file); err != nil {
		if writeErr := os.WriteFile(path+".corrupt", raw, 0o644); writeErr != nil {
			s.logger.WithError(writeErr).Warn("Failed to save corrupt squad copy")
		}
		return nil, fmt.Errorf("corrupt squad file %s: %w", path, err)
	}

	return s.ImportSnapshot(name, file.Formation, file.Slots)
}

// ImportSnapshot saves an exported formation/slots snapshot as a new
// squad. Unknown slot names are dropped; missing ones stay empty.
func (s *SquadService) ImportSnapshot(name, formation string, snapshot map[string]*scout.Player) (*models.Squad, error) {
	if formation == "" {
		formation = optimizer.DefaultFormation
	}
	slots, err := optimizer.FormationSlots(formation)
	if err != nil {
		return nil, err
	}

	lineup := scout.Lineup{
		Formation: formation,
		Slots:     make(map[string]*scout.Player, len(slots)),
	}
	for _, slot := range slots {
		lineup.Slots[slot] = snapshot[slot]
	}

	squad := &models.Squad{
		ExternalID: uuid.New().String(),
		Name:       name,
	}
	if err := squad.SetLineup(lineup); err != nil {
		return nil, err
	}
	if err := s.db.Create(squad).Error; err != nil {
		return nil, fmt.Errorf("creating squad: %w", err)
	}
	return squad, nil
}
