package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/scoutlab/xi-optimizer/internal/models"
	"github.com/scoutlab/xi-optimizer/internal/scout"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Squad{}, &models.Shortlist{}, &models.ShortlistEntry{}))
	return db
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// stubStats serves a fixed set of raw rows.
type stubStats struct {
	rows []scout.RawRow
	err  error
}

func (s *stubStats) FetchSeasonStats(_ context.Context, _, _ string) ([]scout.RawRow, error) {
	return s.rows, s.err
}

// stubValues resolves market values from a fixed name table.
type stubValues struct {
	values  map[string]float64
	lookups int
}

func (s *stubValues) GetMarketValue(_ context.Context, name string) (*float64, error) {
	s.lookups++
	if v, ok := s.values[name]; ok {
		return scout.FloatPtr(v), nil
	}
	return nil, nil
}
