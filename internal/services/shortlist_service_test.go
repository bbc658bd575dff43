package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlab/xi-optimizer/internal/models"
)

func newTestShortlistService(t *testing.T) *ShortlistService {
	t.Helper()
	return NewShortlistService(newTestDB(t), testLogger())
}

func TestGetShortlist_CreatesWhenMissing(t *testing.T) {
	svc := newTestShortlistService(t)

	list, err := svc.GetShortlist("targets")
	require.NoError(t, err)
	assert.Equal(t, "targets", list.Name)
	assert.Equal(t, models.ShortlistSchemaVersion, list.SchemaVersion)
	assert.Empty(t, list.Entries)
}

func TestAddEntry_DefaultsAndClamping(t *testing.T) {
	svc := newTestShortlistService(t)

	entry, err := svc.AddEntry("targets", models.ShortlistEntry{Name: "Some Player"})
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Rating, "missing rating defaults to 3")
	assert.Equal(t, "scouting", entry.Status)
	assert.NotEmpty(t, entry.ExternalID)

	entry, err = svc.AddEntry("targets", models.ShortlistEntry{Name: "Over Rated", Rating: 99})
	require.NoError(t, err)
	assert.Equal(t, 5, entry.Rating, "ratings clamp to 1..5")
}

func TestAddEntry_RequiresName(t *testing.T) {
	svc := newTestShortlistService(t)

	_, err := svc.AddEntry("targets", models.ShortlistEntry{Team: "Nameless FC"})
	assert.Error(t, err)
}

func TestAddEntry_UpsertsOnIdentity(t *testing.T) {
	svc := newTestShortlistService(t)

	first, err := svc.AddEntry("targets", models.ShortlistEntry{
		Name: "Erling Haaland", Team: "Manchester City", Position: "FW", Notes: "watch",
	})
	require.NoError(t, err)

	// Same player, different case: must update, not duplicate.
	second, err := svc.AddEntry("targets", models.ShortlistEntry{
		Name: "erling haaland", Team: "MANCHESTER CITY", Position: "fw",
		Rating: 5, Notes: "sign now",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Rating)
	assert.Equal(t, "sign now", second.Notes)

	list, err := svc.GetShortlist("targets")
	require.NoError(t, err)
	assert.Len(t, list.Entries, 1)
}

func TestUpdateEntry(t *testing.T) {
	svc := newTestShortlistService(t)

	entry, err := svc.AddEntry("targets", models.ShortlistEntry{Name: "Some Player"})
	require.NoError(t, err)

	updated, err := svc.UpdateEntry(entry.ExternalID, map[string]interface{}{
		"status": "signed",
		"rating": float64(9), // JSON numbers arrive as float64
	})
	require.NoError(t, err)
	assert.Equal(t, "signed", updated.Status)
	assert.Equal(t, 5, updated.Rating)

	_, err = svc.UpdateEntry("no-such-id", map[string]interface{}{"status": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEntryAndShortlist(t *testing.T) {
	svc := newTestShortlistService(t)

	entry, err := svc.AddEntry("targets", models.ShortlistEntry{Name: "Some Player"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntry(entry.ExternalID))
	assert.ErrorIs(t, svc.DeleteEntry(entry.ExternalID), ErrNotFound)

	require.NoError(t, svc.DeleteShortlist("targets"))
	assert.ErrorIs(t, svc.DeleteShortlist("targets"), ErrNotFound)
}

func TestCSV_ExportImportRoundTrip(t *testing.T) {
	svc := newTestShortlistService(t)

	age := 24
	value := 180.0
	_, err := svc.AddEntry("targets", models.ShortlistEntry{
		Name: "Erling Haaland", Position: "FW", Team: "Manchester City",
		League: "ENG-Premier League", Age: &age, ValueMil: &value,
		Rating: 5, Status: "shortlisted", Tags: "striker", Notes: "generational",
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV("targets", &buf))
	assert.Contains(t, buf.String(), "Erling Haaland")

	other := newTestShortlistService(t)
	imported, err := other.ImportCSV("incoming", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, imported)

	list, err := other.GetShortlist("incoming")
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	got := list.Entries[0]
	assert.Equal(t, "Erling Haaland", got.Name)
	assert.Equal(t, 24, *got.Age)
	assert.Equal(t, 180.0, *got.ValueMil)
	assert.Equal(t, 5, got.Rating)
}

func TestImportCSV_SpanishHeaders(t *testing.T) {
	svc := newTestShortlistService(t)

	csvData := strings.Join([]string{
		"nombre,equipo,pos,edad,valor,score,estado,observaciones",
		"Nico Williams,Athletic Club,FW,22,60,4,scouting,rapido",
		",No Name FC,FW,20,10,3,scouting,skip me",
	}, "\n")

	imported, err := svc.ImportCSV("liga", strings.NewReader(csvData))
	require.NoError(t, err)
	assert.Equal(t, 1, imported, "rows without a name are skipped")

	list, err := svc.GetShortlist("liga")
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	got := list.Entries[0]
	assert.Equal(t, "Nico Williams", got.Name)
	assert.Equal(t, "Athletic Club", got.Team)
	assert.Equal(t, 22, *got.Age)
	assert.Equal(t, 60.0, *got.ValueMil)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "rapido", got.Notes)
}
