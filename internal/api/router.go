package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/scoutlab/xi-optimizer/internal/api/handlers"
	"github.com/scoutlab/xi-optimizer/internal/services"
)

// SetupRoutes configures all API routes on the given router group.
func SetupRoutes(group *gin.RouterGroup, pool *services.PoolService, squads *services.SquadService, shortlists *services.ShortlistService, optimizerTimeout time.Duration, logger *logrus.Logger) {
	poolHandler := handlers.NewPoolHandler(pool)
	optimizerHandler := handlers.NewOptimizerHandler(pool, squads, optimizerTimeout, logger)
	squadHandler := handlers.NewSquadHandler(squads)
	shortlistHandler := handlers.NewShortlistHandler(shortlists)

	// Pool endpoints
	group.GET("/pool", poolHandler.GetPool)
	group.POST("/pool/refresh", poolHandler.RefreshPool)
	group.GET("/pool/search", poolHandler.SearchPlayers)
	group.GET("/players/:name", poolHandler.GetPlayer)

	// Optimizer endpoints
	group.GET("/formations", optimizerHandler.GetFormations)
	group.POST("/optimize", optimizerHandler.OptimizeXI)

	// Squad endpoints
	group.GET("/squads", squadHandler.ListSquads)
	group.POST("/squads", squadHandler.CreateSquad)
	group.GET("/squads/compare", squadHandler.CompareSquads)
	group.POST("/squads/import", squadHandler.ImportSquad)
	group.GET("/squads/:id", squadHandler.GetSquad)
	group.DELETE("/squads/:id", squadHandler.DeleteSquad)
	group.PUT("/squads/:id/formation", squadHandler.SetFormation)
	group.PUT("/squads/:id/slots/:slot", squadHandler.SetPlayer)
	group.DELETE("/squads/:id/slots/:slot", squadHandler.ClearSlot)
	group.GET("/squads/:id/export", squadHandler.ExportSquad)
	group.POST("/squads/:id/file", squadHandler.SaveSquadFile)
	group.POST("/squads/load-file", squadHandler.LoadSquadFile)

	// Shortlist endpoints
	group.GET("/shortlists", shortlistHandler.ListShortlists)
	group.GET("/shortlists/:name", shortlistHandler.GetShortlist)
	group.DELETE("/shortlists/:name", shortlistHandler.DeleteShortlist)
	group.POST("/shortlists/:name/entries", shortlistHandler.AddEntry)
	group.GET("/shortlists/:name/export", shortlistHandler.ExportCSV)
	group.POST("/shortlists/:name/import", shortlistHandler.ImportCSV)
	group.PUT("/shortlist-entries/:id", shortlistHandler.UpdateEntry)
	group.DELETE("/shortlist-entries/:id", shortlistHandler.DeleteEntry)
}
