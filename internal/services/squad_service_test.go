package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlab/xi-optimizer/internal/optimizer"
	"github.com/scoutlab/xi-optimizer/internal/scout"
)

func newTestSquadService(t *testing.T, stats *stubStats) *SquadService {
	t.Helper()

	pool := NewPoolService(stats, nil, NewMemoryCache(), "2024-2025", "", time.Hour, 0, testLogger())
	return NewSquadService(newTestDB(t), pool, t.TempDir(), testLogger())
}

func emptyStats() *stubStats {
	return &stubStats{rows: []scout.RawRow{{"player": "Filler", "position": "FW"}}}
}

func TestCreateSquad_AllSlotsPresentAndEmpty(t *testing.T) {
	svc := newTestSquadService(t, emptyStats())

	squad, err := svc.CreateSquad("First XI", "4-3-3")
	require.NoError(t, err)
	assert.NotEmpty(t, squad.ExternalID)

	lineup, err := squad.Lineup()
	require.NoError(t, err)
	assert.Len(t, lineup.Slots, 11)
	assert.Zero(t, lineup.FilledSlots())
}

func TestCreateSquad_DuplicateNameRejected(t *testing.T) {
	svc := newTestSquadService(t, emptyStats())

	_, err := svc.CreateSquad("First XI", "4-3-3")
	require.NoError(t, err)

	_, err = svc.CreateSquad("First XI", "4-4-2")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateSquad_UnknownFormation(t *testing.T) {
	svc := newTestSquadService(t, emptyStats())

	_, err := svc.CreateSquad("Bad", "9-9-9")
	assert.Error(t, err)
}

func TestSetPlayer_AndClearSlot(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Erling Haaland", "position": "FW", "goals": "27"},
	}}
	svc := newTestSquadService(t, stats)

	squad, err := svc.CreateSquad("First XI", "4-3-3")
	require.NoError(t, err)

	squad, err = svc.SetPlayer(context.Background(), squad.ExternalID, "ST", "erling haaland")
	require.NoError(t, err)

	lineup, err := squad.Lineup()
	require.NoError(t, err)
	require.NotNil(t, lineup.Slots["ST"])
	assert.Equal(t, "Erling Haaland", lineup.Slots["ST"].Name)
	assert.Equal(t, 1, lineup.FilledSlots())

	squad, err = svc.ClearSlot(squad.ExternalID, "ST")
	require.NoError(t, err)
	lineup, err = squad.Lineup()
	require.NoError(t, err)
	assert.Nil(t, lineup.Slots["ST"])
}

func TestSetPlayer_UnknownSlotAndPlayer(t *testing.T) {
	svc := newTestSquadService(t, emptyStats())
	squad, err := svc.CreateSquad("First XI", "4-3-3")
	require.NoError(t, err)

	_, err = svc.SetPlayer(context.Background(), squad.ExternalID, "CAM", "Filler")
	assert.Error(t, err, "CAM is not a 4-3-3 slot")

	_, err = svc.SetPlayer(context.Background(), squad.ExternalID, "ST", "Nobody At All")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestSetFormation_ResetsSlots(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Erling Haaland", "position": "FW"},
	}}
	svc := newTestSquadService(t, stats)

	squad, err := svc.CreateSquad("First XI", "4-3-3")
	require.NoError(t, err)
	_, err = svc.SetPlayer(context.Background(), squad.ExternalID, "ST", "Erling Haaland")
	require.NoError(t, err)

	squad, err = svc.SetFormation(squad.ExternalID, "4-4-2")
	require.NoError(t, err)

	lineup, err := squad.Lineup()
	require.NoError(t, err)
	assert.Equal(t, "4-4-2", lineup.Formation)
	assert.Len(t, lineup.Slots, 11)
	assert.Zero(t, lineup.FilledSlots(), "formation change empties every slot")
}

func TestGetSquad_NotFound(t *testing.T) {
	svc := newTestSquadService(t, emptyStats())

	_, err := svc.GetSquad("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveOptimized(t *testing.T) {
	svc := newTestSquadService(t, emptyStats())

	assignments := []optimizer.SlotAssignment{
		{Slot: "ST", Player: optimizer.ScoredPlayer{
			Player: scout.Player{Name: "Erling Haaland", Pos: "FW", MarketValueMil: scout.FloatPtr(180)},
		}},
	}
	squad, err := svc.SaveOptimized("Optimized XI", "4-3-3", assignments)
	require.NoError(t, err)
	assert.True(t, squad.IsOptimized)
	assert.Equal(t, 180.0, squad.TotalValueMil)

	lineup, err := squad.Lineup()
	require.NoError(t, err)
	assert.Equal(t, 1, lineup.FilledSlots())
	assert.Nil(t, lineup.Slots["GK"], "unassigned slots stay present and empty")
}

func TestExportImportFile_RoundTrip(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Erling Haaland", "position": "FW", "goals": "27"},
	}}
	svc := newTestSquadService(t, stats)

	squad, err := svc.CreateSquad("First XI", "4-3-3")
	require.NoError(t, err)
	_, err = svc.SetPlayer(context.Background(), squad.ExternalID, "ST", "Erling Haaland")
	require.NoError(t, err)

	path, err := svc.SaveToFile(squad.ExternalID, "first-xi")
	require.NoError(t, err)
	assert.FileExists(t, path)

	loaded, err := svc.LoadFromFile("Restored XI", "first-xi")
	require.NoError(t, err)
	lineup, err := loaded.Lineup()
	require.NoError(t, err)
	require.NotNil(t, lineup.Slots["ST"])
	assert.Equal(t, "Erling Haaland", lineup.Slots["ST"].Name)
}

func TestImportFromFile_EmptyFileYieldsFreshSquad(t *testing.T) {
	svc := newTestSquadService(t, emptyStats())

	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	squad, err := svc.ImportFromFile("Fresh", path)
	require.NoError(t, err)
	assert.Equal(t, optimizer.DefaultFormation, squad.Formation)
}

func TestImportFromFile_CorruptFileMarkedAside(t *testing.T) {
	svc := newTestSquadService(t, emptyStats())

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := svc.ImportFromFile("Broken", path)
	require.Error(t, err)
	assert.FileExists(t, path+".corrupt", "corrupt input is preserved for inspection")
}

func TestCompareSquads(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Erling Haaland", "position": "FW", "goals": "27"},
	}}
	svc := newTestSquadService(t, stats)

	a, err := svc.CreateSquad("A", "4-3-3")
	require.NoError(t, err)
	b, err := svc.CreateSquad("B", "4-3-3")
	require.NoError(t, err)
	_, err = svc.SetPlayer(context.Background(), b.ExternalID, "ST", "Erling Haaland")
	require.NoError(t, err)

	rows, err := svc.Compare(a.ExternalID, b.ExternalID)
	require.NoError(t, err)

	for _, row := range rows {
		if row.Metric == "total_goals" {
			assert.Equal(t, 27.0, row.Delta)
		}
	}
}
