package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/scoutlab/xi-optimizer/internal/models"
	"github.com/scoutlab/xi-optimizer/internal/optimizer"
	"github.com/scoutlab/xi-optimizer/internal/scout"
	"github.com/scoutlab/xi-optimizer/pkg/config"
	"github.com/scoutlab/xi-optimizer/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := runMigrations(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func runMigrations(db *database.DB) error {
	if err := db.DB.AutoMigrate(
		&models.Squad{},
		&models.Shortlist{},
		&models.ShortlistEntry{},
	); err != nil {
		return fmt.Errorf("failed to migrate models: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_squads_name ON squads(name)",
		"CREATE INDEX IF NOT EXISTS idx_shortlist_entries_name ON shortlist_entries(name)",
		"CREATE INDEX IF NOT EXISTS idx_shortlist_entries_status ON shortlist_entries(status)",
	}
	for _, index := range indexes {
		if err := db.DB.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func dropTables(db *database.DB) error {
	// Entries first to respect the shortlist foreign key
	tables := []string{
		"shortlist_entries",
		"shortlists",
		"squads",
	}

	for _, table := range tables {
		if err := db.DB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}

func seedData(db *database.DB) error {
	slots, err := optimizer.FormationSlots(optimizer.DefaultFormation)
	if err != nil {
		return err
	}

	lineup := scout.Lineup{
		Formation: optimizer.DefaultFormation,
		Slots:     make(map[string]*scout.Player, len(slots)),
	}
	for _, slot := range slots {
		lineup.Slots[slot] = nil
	}

	squad := &models.Squad{
		ExternalID: uuid.New().String(),
		Name:       "Example XI",
	}
	if err := squad.SetLineup(lineup); err != nil {
		return err
	}
	if err := db.DB.Create(squad).Error; err != nil {
		return fmt.Errorf("failed to create squad: %w", err)
	}

	shortlist := &models.Shortlist{
		Name:          "default",
		SchemaVersion: models.ShortlistSchemaVersion,
	}
	if err := db.DB.Create(shortlist).Error; err != nil {
		return fmt.Errorf("failed to create shortlist: %w", err)
	}

	age := 23
	value := 45.0
	entries := []models.ShortlistEntry{
		{
			ShortlistID: shortlist.ID,
			ExternalID:  uuid.New().String(),
			Name:        "Example Forward",
			Position:    "FW",
			Team:        "Example FC",
			League:      "Big 5 European Leagues Combined",
			Age:         &age,
			ValueMil:    &value,
			Rating:      4,
			Status:      "scouting",
			Tags:        "pressing,finisher",
		},
	}
	if err := db.DB.Create(&entries).Error; err != nil {
		return fmt.Errorf("failed to create shortlist entries: %w", err)
	}

	logrus.Infof("Seeded squad %q and shortlist %q", squad.Name, shortlist.Name)
	return nil
}
