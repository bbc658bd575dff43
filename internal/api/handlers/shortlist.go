package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scoutlab/xi-optimizer/internal/models"
	"github.com/scoutlab/xi-optimizer/internal/services"
	"github.com/scoutlab/xi-optimizer/pkg/utils"
)

type ShortlistHandler struct {
	shortlists *services.ShortlistService
}

func NewShortlistHandler(shortlists *services.ShortlistService) *ShortlistHandler {
	return &ShortlistHandler{
		shortlists: shortlists,
	}
}

// ListShortlists returns all shortlists.
func (h *ShortlistHandler) ListShortlists(c *gin.Context) {
	lists, err := h.shortlists.ListShortlists()
	if err != nil {
		utils.SendInternalError(c, "Failed to list shortlists")
		return
	}
	utils.SendSuccess(c, lists)
}

// GetShortlist returns one shortlist with entries, creating it when
// missing.
func (h *ShortlistHandler) GetShortlist(c *gin.Context) {
	list, err := h.shortlists.GetShortlist(c.Param("name"))
	if err != nil {
		utils.SendInternalError(c, "Failed to fetch shortlist")
		return
	}
	utils.SendSuccess(c, list)
}

// DeleteShortlist removes a shortlist and its entries.
func (h *ShortlistHandler) DeleteShortlist(c *gin.Context) {
	if err := h.shortlists.DeleteShortlist(c.Param("name")); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Shortlist not found")
			return
		}
		utils.SendInternalError(c, "Failed to delete shortlist")
		return
	}
	utils.SendSuccess(c, gin.H{"deleted": c.Param("name")})
}

// AddEntry upserts a player onto a shortlist.
func (h *ShortlistHandler) AddEntry(c *gin.Context) {
	var entry models.ShortlistEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	saved, err := h.shortlists.AddEntry(c.Param("name"), entry)
	if err != nil {
		utils.SendValidationError(c, "Failed to add entry", err.Error())
		return
	}
	utils.SendSuccess(c, saved)
}

// UpdateEntry applies partial updates to an entry.
func (h *ShortlistHandler) UpdateEntry(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}

	entry, err := h.shortlists.UpdateEntry(c.Param("id"), updates)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Entry not found")
			return
		}
		utils.SendInternalError(c, "Failed to update entry")
		return
	}
	utils.SendSuccess(c, entry)
}

// DeleteEntry removes an entry.
func (h *ShortlistHandler) DeleteEntry(c *gin.Context) {
	if err := h.shortlists.DeleteEntry(c.Param("id")); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.SendNotFound(c, "Entry not found")
			return
		}
		utils.SendInternalError(c, "Failed to delete entry")
		return
	}
	utils.SendSuccess(c, gin.H{"deleted": c.Param("id")})
}

// ExportCSV streams a shortlist as a CSV download.
func (h *ShortlistHandler) ExportCSV(c *gin.Context) {
	name := c.Param("name")
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".csv"))

	if err := h.shortlists.ExportCSV(name, c.Writer); err != nil {
		c.Status(http.StatusInternalServerError)
	}
}

// ImportCSV reads CSV rows from the request body and upserts them into
// the shortlist.
func (h *ShortlistHandler) ImportCSV(c *gin.Context) {
	imported, err := h.shortlists.ImportCSV(c.Param("name"), c.Request.Body)
	if err != nil {
		utils.SendValidationError(c, "CSV import failed", err.Error())
		return
	}
	utils.SendSuccess(c, gin.H{"imported": imported})
}
