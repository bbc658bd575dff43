package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scoutlab/xi-optimizer/internal/scout"
	"github.com/scoutlab/xi-optimizer/pkg/textutil"
)

// Column aliases accepted from stats sources. Each canonical field
// takes the first alias present in a row, so differently shaped
// exports all map onto the same Player.
var (
	nameAliases    = []string{"player", "Player", "name", "Name"}
	posAliases     = []string{"pos", "Pos", "position", "Position"}
	teamAliases    = []string{"team", "Team", "squad", "Squad"}
	leagueAliases  = []string{"league", "League", "comp", "Comp", "comp_level", "competition", "Competition"}
	seasonAliases  = []string{"season", "Season"}
	ageAliases     = []string{"age", "Age"}
	minutesAliases = []string{"minutes", "min", "Min", "Playing Time_Min", "Playing_Time_Min"}
	goalsAliases   = []string{"goals", "gls", "Gls", "Performance_Gls"}
	assistsAliases = []string{"assists", "ast", "Ast", "Performance_Ast"}
	xgAliases      = []string{"xg", "xG", "Expected_xG"}
)

// fuzzyMatchCutoff is the minimum similarity for a fuzzy player-name
// match; below it a lookup reports not found rather than guessing.
const fuzzyMatchCutoff = 0.8

// PoolService holds the in-memory player pool snapshot and refreshes
// it from the stats provider. Reads are cheap and concurrent; refresh
// swaps the whole snapshot under the write lock.
type PoolService struct {
	stats  scout.StatsProvider
	values scout.ValueProvider
	cache  scout.CacheProvider
	logger *logrus.Logger

	season          string
	league          string
	cacheTTL        time.Duration
	maxValueLookups int

	mu          sync.RWMutex
	players     []scout.Player
	refreshedAt time.Time
}

func NewPoolService(stats scout.StatsProvider, values scout.ValueProvider, cache scout.CacheProvider, season, league string, cacheTTL time.Duration, maxValueLookups int, logger *logrus.Logger) *PoolService {
	return &PoolService{
		stats:           stats,
		values:          values,
		cache:           cache,
		logger:          logger,
		season:          season,
		league:          league,
		cacheTTL:        cacheTTL,
		maxValueLookups: maxValueLookups,
	}
}

// Season returns the season the pool is configured for.
func (s *PoolService) Season() string { return s.season }

// League returns the league the pool is configured for.
func (s *PoolService) League() string { return s.league }

// Pool returns a copy of the current snapshot.
func (s *PoolService) Pool() []scout.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]scout.Player, len(s.players))
	copy(out, s.players)
	return out
}

// RefreshedAt reports when the snapshot was last rebuilt; zero when no
// refresh has completed yet.
func (s *PoolService) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// EnsurePool loads the pool from cache if a snapshot exists, otherwise
// refreshes from the stats provider.
func (s *PoolService) EnsurePool(ctx context.Context) error {
	s.mu.RLock()
	loaded := len(s.players) > 0
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	var cached poolSnapshot
	if err := s.cache.GetSimple(PoolCacheKey(s.season, s.league), &cached); err == nil && len(cached.Players) > 0 {
		s.mu.Lock()
		s.players = cached.Players
		s.refreshedAt = cached.RefreshedAt
		s.mu.Unlock()

		s.logger.WithFields(logrus.Fields{
			"players": len(cached.Players),
			"season":  s.season,
			"league":  s.league,
		}).Info("Loaded player pool from cache")
		return nil
	}

	return s.Refresh(ctx)
}

type poolSnapshot struct {
	Players     []scout.Player `json:"players"`
	RefreshedAt time.Time      `json:"refreshed_at"`
}

// Refresh rebuilds the snapshot from the stats provider and caches the
// result.
func (s *PoolService) Refresh(ctx context.Context) error {
	rows, err := s.stats.FetchSeasonStats(ctx, s.season, s.league)
	if err != nil {
		return fmt.Errorf("refreshing player pool: %w", err)
	}

	players := make([]scout.Player, 0, len(rows))
	for _, row := range rows {
		player, ok := s.mapRow(row)
		if !ok {
			continue
		}
		players = append(players, player)
	}

	refreshedAt := time.Now().UTC()
	s.mu.Lock()
	s.players = players
	s.refreshedAt = refreshedAt
	s.mu.Unlock()

	snapshot := poolSnapshot{Players: players, RefreshedAt: refreshedAt}
	if err := s.cache.SetSimple(PoolCacheKey(s.season, s.league), snapshot, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache player pool")
	}

	s.logger.WithFields(logrus.Fields{
		"players": len(players),
		"season":  s.season,
		"league":  s.league,
	}).Info("Refreshed player pool")
	return nil
}

// mapRow converts one raw provider row into a canonical Player. Rows
// without a name are dropped; rows for other leagues are skipped when
// both sides carry a league label.
func (s *PoolService) mapRow(row scout.RawRow) (scout.Player, bool) {
	name := pickField(row, nameAliases)
	if name == "" {
		return scout.Player{}, false
	}

	league := pickField(row, leagueAliases)
	if s.league != "" && league != "" && league != s.league {
		return scout.Player{}, false
	}

	season := pickField(row, seasonAliases)
	if season == "" {
		season = s.season
	}

	return scout.Player{
		Name:    name,
		Pos:     strings.ToUpper(strings.TrimSpace(pickField(row, posAliases))),
		Team:    pickField(row, teamAliases),
		League:  league,
		Season:  season,
		Age:     pickNumber(row, ageAliases),
		Minutes: pickNumber(row, minutesAliases),
		Goals:   pickNumber(row, goalsAliases),
		Assists: pickNumber(row, assistsAliases),
		XG:      pickNumber(row, xgAliases),
	}, true
}

func pickField(row scout.RawRow, aliases []string) string {
	for _, alias := range aliases {
		if v, ok := row[alias]; ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// pickNumber parses the first present alias as a float. Thousands
// separators are stripped, and "24-063" style age values (years-days)
// keep only the year part. Unparseable values stay missing.
func pickNumber(row scout.RawRow, aliases []string) *float64 {
	raw := pickField(row, aliases)
	if raw == "" {
		return nil
	}

	raw = strings.ReplaceAll(raw, ",", "")
	if idx := strings.Index(raw, "-"); idx > 0 {
		raw = raw[:idx]
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return scout.FloatPtr(v)
}

// AddMarketValues looks up market values for pool players that do not
// have one yet, bounded so a full refresh never turns into thousands
// of scrapes.
func (s *PoolService) AddMarketValues(ctx context.Context) error {
	if s.values == nil {
		return nil
	}

	pool := s.Pool()
	looked := 0
	values := make(map[string]*float64)
	for _, p := range pool {
		if p.MarketValueMil != nil {
			continue
		}
		if looked >= s.maxValueLookups {
			break
		}
		looked++

		mv, err := s.values.GetMarketValue(ctx, p.Name)
		if err != nil {
			s.logger.WithField("player", p.Name).WithError(err).Debug("Market value lookup failed")
			continue
		}
		values[p.Name] = mv
	}

	s.mu.Lock()
	for i := range s.players {
		if mv, ok := values[s.players[i].Name]; ok && mv != nil {
			s.players[i].MarketValueMil = mv
		}
	}
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"lookups":  looked,
		"resolved": len(values),
	}).Info("Added market values to pool")
	return nil
}

// FindPlayer resolves a player by name: exact match on normalized
// names first, then fuzzy match with a similarity cutoff. The returned
// player carries a market value when the lookup succeeds.
func (s *PoolService) FindPlayer(ctx context.Context, name string) (*scout.Player, error) {
	if err := s.EnsurePool(ctx); err != nil {
		return nil, err
	}

	pool := s.Pool()
	target := textutil.Normalize(name)

	var found *scout.Player
	for i := range pool {
		if textutil.Normalize(pool[i].Name) == target {
			found = &pool[i]
			break
		}
	}

	if found == nil {
		options := make([]string, len(pool))
		for i := range pool {
			options[i] = textutil.Normalize(pool[i].Name)
		}
		if idx, ok := textutil.BestMatch(target, options, fuzzyMatchCutoff); ok {
			found = &pool[idx]
		}
	}

	if found == nil {
		return nil, nil
	}

	player := *found
	if player.MarketValueMil == nil && s.values != nil {
		mv, err := s.values.GetMarketValue(ctx, player.Name)
		if err != nil {
			s.logger.WithField("player", player.Name).WithError(err).Debug("Market value lookup failed")
		} else {
			player.MarketValueMil = mv
		}
	}
	return &player, nil
}

// SearchPlayers returns pool players whose name contains the query,
// case- and accent-insensitively.
func (s *PoolService) SearchPlayers(query string, limit int) []scout.Player {
	target := textutil.Normalize(query)
	if target == "" {
		return nil
	}

	var out []scout.Player
	for _, p := range s.Pool() {
		if strings.Contains(textutil.Normalize(p.Name), target) {
			out = append(out, p)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}
