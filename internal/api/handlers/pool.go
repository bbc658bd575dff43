package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scoutlab/xi-optimizer/internal/services"
	"github.com/scoutlab/xi-optimizer/pkg/utils"
)

const (
	defaultSearchLimit  = 25
	defaultPoolPageSize = 100
	maxPoolPageSize     = 500
)

type PoolHandler struct {
	pool *services.PoolService
}

func NewPoolHandler(pool *services.PoolService) *PoolHandler {
	return &PoolHandler{
		pool: pool,
	}
}

// GetPool returns a page of the current player pool snapshot.
func (h *PoolHandler) GetPool(c *gin.Context) {
	if err := h.pool.EnsurePool(c.Request.Context()); err != nil {
		utils.SendInternalError(c, "Failed to load player pool")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPoolPageSize)))
	if perPage < 1 || perPage > maxPoolPageSize {
		perPage = defaultPoolPageSize
	}

	players := h.pool.Pool()
	total := len(players)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	utils.SendSuccessWithMeta(c, gin.H{
		"season":       h.pool.Season(),
		"league":       h.pool.League(),
		"refreshed_at": h.pool.RefreshedAt(),
		"players":      players[start:end],
	}, &utils.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int64(total),
		TotalPages: totalPages,
	})
}

// RefreshPool forces a pool rebuild from the stats source.
func (h *PoolHandler) RefreshPool(c *gin.Context) {
	if err := h.pool.Refresh(c.Request.Context()); err != nil {
		utils.SendInternalError(c, "Failed to refresh player pool")
		return
	}
	if err := h.pool.AddMarketValues(c.Request.Context()); err != nil {
		utils.SendInternalError(c, "Failed to add market values")
		return
	}

	utils.SendSuccess(c, gin.H{
		"refreshed_at": h.pool.RefreshedAt(),
		"count":        len(h.pool.Pool()),
	})
}

// SearchPlayers returns pool players whose name matches the query.
func (h *PoolHandler) SearchPlayers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.SendValidationError(c, "Missing query", "q parameter is required")
		return
	}
	if err := h.pool.EnsurePool(c.Request.Context()); err != nil {
		utils.SendInternalError(c, "Failed to load player pool")
		return
	}

	players := h.pool.SearchPlayers(query, defaultSearchLimit)
	utils.SendSuccess(c, gin.H{
		"query":   query,
		"count":   len(players),
		"players": players,
	})
}

// GetPlayer resolves a single player by name, fuzzily, with market
// value attached.
func (h *PoolHandler) GetPlayer(c *gin.Context) {
	name := c.Param("name")

	player, err := h.pool.FindPlayer(c.Request.Context(), name)
	if err != nil {
		utils.SendInternalError(c, "Failed to look up player")
		return
	}
	if player == nil {
		utils.SendNotFound(c, "Player not found")
		return
	}
	utils.SendSuccess(c, player)
}
