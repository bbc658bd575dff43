package scout

import (
	"context"
	"time"
)

// Player is one canonical row of the scouting pool: a single
// player-season. Optional numerics are pointers so a missing stat is
// distinguishable from zero.
type Player struct {
	Name           string   `json:"name"`
	Pos            string   `json:"pos"`
	Team           string   `json:"team,omitempty"`
	League         string   `json:"league,omitempty"`
	Season         string   `json:"season,omitempty"`
	Age            *float64 `json:"age,omitempty"`
	Minutes        *float64 `json:"minutes,omitempty"`
	Goals          *float64 `json:"goals,omitempty"`
	Assists        *float64 `json:"assists,omitempty"`
	XG             *float64 `json:"xG,omitempty"`
	MarketValueMil *float64 `json:"market_value_mil,omitempty"`
}

// Lineup is a formation plus a snapshot of the player chosen for each
// slot. Every slot of the formation is present as a key; an unfilled
// slot maps to nil. Loading a persisted lineup replaces the whole
// in-memory value, lineups are never merged.
type Lineup struct {
	Formation string             `json:"formation"`
	Slots     map[string]*Player `json:"slots"`
}

// TotalValueMil sums market value over filled slots, missing treated
// as zero.
func (l Lineup) TotalValueMil() float64 {
	total := 0.0
	for _, p := range l.Slots {
		if p != nil && p.MarketValueMil != nil {
			total += *p.MarketValueMil
		}
	}
	return total
}

// FilledSlots returns how many slots have a player assigned.
func (l Lineup) FilledSlots() int {
	n := 0
	for _, p := range l.Slots {
		if p != nil {
			n++
		}
	}
	return n
}

// RawRow is an uncanonicalized record from a stats source, keyed by
// whatever column names the source uses. The pool service maps these
// to Player exactly once at the ingestion boundary; nothing past that
// point deals in variant column names.
type RawRow map[string]string

// StatsProvider supplies season statistics rows from an external
// source.
type StatsProvider interface {
	FetchSeasonStats(ctx context.Context, season, league string) ([]RawRow, error)
}

// ValueProvider supplies a player's market value in millions of euros,
// or nil when the source has no value for the name.
type ValueProvider interface {
	GetMarketValue(ctx context.Context, name string) (*float64, error)
}

// CacheProvider abstracts response caching so providers never depend
// on a concrete backend and tests can substitute an in-memory fake.
type CacheProvider interface {
	SetSimple(key string, value interface{}, expiration time.Duration) error
	GetSimple(key string, dest interface{}) error
}

// FloatVal returns the pointed-to value, or 0 when missing.
func FloatVal(p *float64) float64 {
	if p != nil {
		return *p
	}
	return 0
}

// FloatPtr is a convenience for building optional stats.
func FloatPtr(v float64) *float64 {
	return &v
}
