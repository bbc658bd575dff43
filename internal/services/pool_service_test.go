package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scoutlab/xi-optimizer/internal/scout"
)

func newTestPoolService(stats *stubStats, values *stubValues, maxLookups int) *PoolService {
	var vp scout.ValueProvider
	if values != nil {
		vp = values
	}
	return NewPoolService(stats, vp, NewMemoryCache(),
		"2024-2025", "Big 5 European Leagues Combined", time.Hour, maxLookups, testLogger())
}

func TestRefresh_MapsVariantColumns(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{
			"player": "Erling Haaland", "position": "FW", "team": "Manchester City",
			"league": "Big 5 European Leagues Combined", "season": "2024-2025",
			"age": "24-063", "minutes": "2,558", "goals": "27", "assists": "5", "xg": "28.2",
		},
		{
			// Legacy export shape with flattened stat columns.
			"Player": "Rodri", "Pos": "mf", "Squad": "Manchester City",
			"Playing Time_Min": "3010", "Performance_Gls": "8", "Performance_Ast": "9", "Expected_xG": "6.1",
		},
		{
			// No name, dropped.
			"position": "DF", "minutes": "900",
		},
	}}
	svc := newTestPoolService(stats, nil, 0)

	require.NoError(t, svc.Refresh(context.Background()))
	pool := svc.Pool()
	require.Len(t, pool, 2)

	haaland := pool[0]
	assert.Equal(t, "Erling Haaland", haaland.Name)
	assert.Equal(t, "FW", haaland.Pos)
	assert.Equal(t, 24.0, scout.FloatVal(haaland.Age), "age keeps the year part only")
	assert.Equal(t, 2558.0, scout.FloatVal(haaland.Minutes), "thousands separator stripped")
	assert.Equal(t, 28.2, scout.FloatVal(haaland.XG))

	rodri := pool[1]
	assert.Equal(t, "Rodri", rodri.Name)
	assert.Equal(t, "MF", rodri.Pos, "position is uppercased")
	assert.Equal(t, "Manchester City", rodri.Team)
	assert.Equal(t, "2024-2025", rodri.Season, "missing season defaults to the configured one")
	assert.Equal(t, 3010.0, scout.FloatVal(rodri.Minutes))
	assert.Equal(t, 8.0, scout.FloatVal(rodri.Goals))
	assert.Nil(t, rodri.Age, "absent stats stay missing")
}

func TestRefresh_FiltersOtherLeagues(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "In League", "position": "FW", "league": "Big 5 European Leagues Combined"},
		{"player": "Other League", "position": "FW", "league": "ENG-Championship"},
		{"player": "No League", "position": "FW"},
	}}
	svc := newTestPoolService(stats, nil, 0)

	require.NoError(t, svc.Refresh(context.Background()))
	pool := svc.Pool()
	require.Len(t, pool, 2)
	assert.Equal(t, "In League", pool[0].Name)
	assert.Equal(t, "No League", pool[1].Name, "rows without a league label are kept")
}

func TestEnsurePool_LoadsFromCacheSnapshot(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Someone", "position": "FW"},
	}}
	cache := NewMemoryCache()
	first := NewPoolService(stats, nil, cache, "2024-2025", "", time.Hour, 0, testLogger())
	require.NoError(t, first.Refresh(context.Background()))

	// A second service over the same cache should come up without
	// touching the stats source.
	failing := &stubStats{err: assert.AnError}
	second := NewPoolService(failing, nil, cache, "2024-2025", "", time.Hour, 0, testLogger())
	require.NoError(t, second.EnsurePool(context.Background()))
	assert.Len(t, second.Pool(), 1)
	assert.False(t, second.RefreshedAt().IsZero())
}

func TestAddMarketValues_BoundedLookups(t *testing.T) {
	rows := make([]scout.RawRow, 5)
	names := []string{"A", "B", "C", "D", "E"}
	for i, n := range names {
		rows[i] = scout.RawRow{"player": n, "position": "FW"}
	}
	values := &stubValues{values: map[string]float64{"A": 10, "B": 20, "C": 30, "D": 40, "E": 50}}
	svc := newTestPoolService(&stubStats{rows: rows}, values, 2)

	require.NoError(t, svc.Refresh(context.Background()))
	require.NoError(t, svc.AddMarketValues(context.Background()))

	assert.Equal(t, 2, values.lookups, "lookup budget is enforced")
	priced := 0
	for _, p := range svc.Pool() {
		if p.MarketValueMil != nil {
			priced++
		}
	}
	assert.Equal(t, 2, priced)
}

func TestFindPlayer_ExactNormalizedMatchFirst(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Nico González", "position": "MF"},
		{"player": "Nico Gonzalez", "position": "FW"},
	}}
	svc := newTestPoolService(stats, nil, 0)

	p, err := svc.FindPlayer(context.Background(), "nico gonzalez")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Nico González", p.Name, "first exact normalized match wins")
}

func TestFindPlayer_FuzzyMatch(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Erling Haaland", "position": "FW"},
		{"player": "Lionel Messi", "position": "FW"},
	}}
	values := &stubValues{values: map[string]float64{"Erling Haaland": 180}}
	svc := newTestPoolService(stats, values, 0)

	p, err := svc.FindPlayer(context.Background(), "Erling Halaand")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Erling Haaland", p.Name)
	assert.Equal(t, 180.0, scout.FloatVal(p.MarketValueMil), "market value attached on lookup")
}

func TestFindPlayer_NoMatchBelowCutoff(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Erling Haaland", "position": "FW"},
	}}
	svc := newTestPoolService(stats, nil, 0)

	p, err := svc.FindPlayer(context.Background(), "Totally Different")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSearchPlayers(t *testing.T) {
	stats := &stubStats{rows: []scout.RawRow{
		{"player": "Erling Haaland", "position": "FW"},
		{"player": "Erling Other", "position": "MF"},
		{"player": "Lionel Messi", "position": "FW"},
	}}
	svc := newTestPoolService(stats, nil, 0)
	require.NoError(t, svc.Refresh(context.Background()))

	found := svc.SearchPlayers("erling", 0)
	assert.Len(t, found, 2)

	found = svc.SearchPlayers("erling", 1)
	assert.Len(t, found, 1)

	assert.Empty(t, svc.SearchPlayers("", 0))
}
