package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/scoutlab/xi-optimizer/internal/models"
	"github.com/scoutlab/xi-optimizer/internal/scout"
	"github.com/scoutlab/xi-optimizer/internal/services"
	"github.com/scoutlab/xi-optimizer/pkg/utils"
)

type SquadHandler struct {
	squads *services.SquadService
}

func NewSquadHandler(squads *services.SquadService) *SquadHandler {
	return &SquadHandler{
		squads: squads,
	}
}

// squadResponse inlines the decoded lineup next to the stored record
// so clients never parse the raw slots column.
func squadResponse(squad *models.Squad) (gin.H, error) {
	lineup, err := squad.Lineup()
	if err != nil {
		return nil, err
	}
	return gin.H{
		"id":              squad.ExternalID,
		"name":            squad.Name,
		"formation":       squad.Formation,
		"slots":           lineup.Slots,
		"filled_slots":    lineup.FilledSlots(),
		"total_value_mil": squad.TotalValueMil,
		"is_optimized":    squad.IsOptimized,
		"created_at":      squad.CreatedAt,
		"updated_at":      squad.UpdatedAt,
	}, nil
}

func (h *SquadHandler) sendSquad(c *gin.Context, squad *models.Squad, err error) {
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Squad not found")
			return
		}
		if errors.Is(err, services.ErrPlayerNotFound) {
			utils.SendNotFound(c, "Player not found in pool")
			return
		}
		if errors.Is(err, services.ErrDuplicate) {
			utils.SendConflict(c, "Squad name already in use")
			return
		}
		utils.SendValidationError(c, "Squad operation failed", err.Error())
		return
	}

	resp, err := squadResponse(squad)
	if err != nil {
		utils.SendInternalError(c, "Failed to decode squad")
		return
	}
	utils.SendSuccess(c, resp)
}

// ListSquads returns all saved squads.
func (h *SquadHandler) ListSquads(c *gin.Context) {
	squads, err := h.squads.ListSquads()
	if err != nil {
		utils.SendInternalError(c, "Failed to list squads")
		return
	}

	out := make([]gin.H, 0, len(squads))
	for i := range squads {
		resp, err := squadResponse(&squads[i])
		if err != nil {
			utils.SendInternalError(c, "Failed to decode squad")
			return
		}
		out = append(out, resp)
	}
	utils.SendSuccess(c, out)
}

// CreateSquad creates an empty squad for a formation.
func (h *SquadHandler) CreateSquad(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Formation string `json:"formation" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	squad, err := h.squads.CreateSquad(req.Name, req.Formation)
	h.sendSquad(c, squad, err)
}

// GetSquad returns one squad by external ID.
func (h *SquadHandler) GetSquad(c *gin.Context) {
	squad, err := h.squads.GetSquad(c.Param("id"))
	h.sendSquad(c, squad, err)
}

// DeleteSquad removes a squad.
func (h *SquadHandler) DeleteSquad(c *gin.Context) {
	if err := h.squads.DeleteSquad(c.Param("id")); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Squad not found")
			return
		}
		utils.SendInternalError(c, "Failed to delete squad")
		return
	}
	utils.SendSuccess(c, gin.H{"deleted": c.Param("id")})
}

// SetFormation switches a squad's formation, emptying all slots.
func (h *SquadHandler) SetFormation(c *gin.Context) {
	var req struct {
		Formation string `json:"formation" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	squad, err := h.squads.SetFormation(c.Param("id"), req.Formation)
	h.sendSquad(c, squad, err)
}

// SetPlayer assigns a named player to a slot.
func (h *SquadHandler) SetPlayer(c *gin.Context) {
	var req struct {
		Player string `json:"player" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	squad, err := h.squads.SetPlayer(c.Request.Context(), c.Param("id"), c.Param("slot"), req.Player)
	h.sendSquad(c, squad, err)
}

// ClearSlot empties a slot.
func (h *SquadHandler) ClearSlot(c *gin.Context) {
	squad, err := h.squads.ClearSlot(c.Param("id"), c.Param("slot"))
	h.sendSquad(c, squad, err)
}

// CompareSquads returns aggregate metric deltas between two squads.
func (h *SquadHandler) CompareSquads(c *gin.Context) {
	a := c.Query("a")
	b := c.Query("b")
	if a == "" || b == "" {
		utils.SendValidationError(c, "Missing squads", "a and b query parameters are required")
		return
	}

	rows, err := h.squads.Compare(a, b)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Squad not found")
			return
		}
		utils.SendInternalError(c, "Failed to compare squads")
		return
	}
	utils.SendSuccess(c, rows)
}

// ExportSquad returns a squad as a portable formation/slots snapshot.
func (h *SquadHandler) ExportSquad(c *gin.Context) {
	squad, err := h.squads.GetSquad(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Squad not found")
			return
		}
		utils.SendInternalError(c, "Failed to fetch squad")
		return
	}

	lineup, err := squad.Lineup()
	if err != nil {
		utils.SendInternalError(c, "Failed to decode squad")
		return
	}
	utils.SendSuccess(c, gin.H{
		"formation": lineup.Formation,
		"slots":     lineup.Slots,
	})
}

// SaveSquadFile writes a squad export to the server's data directory.
func (h *SquadHandler) SaveSquadFile(c *gin.Context) {
	var req struct {
		Filename string `json:"filename" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	path, err := h.squads.SaveToFile(c.Param("id"), req.Filename)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Squad not found")
			return
		}
		utils.SendInternalError(c, "Failed to save squad file")
		return
	}
	utils.SendSuccess(c, gin.H{"path": path})
}

// LoadSquadFile imports a squad file from the server's data directory
// as a new squad.
func (h *SquadHandler) LoadSquadFile(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Filename string `json:"filename" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	squad, err := h.squads.LoadFromFile(req.Name, req.Filename)
	h.sendSquad(c, squad, err)
}

// ImportSquad saves an exported snapshot as a new squad.
func (h *SquadHandler) ImportSquad(c *gin.Context) {
	var req struct {
		Name      string                   `json:"name" binding:"required"`
		Formation string                   `json:"formation"`
		Slots     map[string]*scout.Player `json:"slots"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	squad, err := h.squads.ImportSnapshot(req.Name, req.Formation, req.Slots)
	h.sendSquad(c, squad, err)
}
