package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/scoutlab/xi-optimizer/internal/optimizer"
	"github.com/scoutlab/xi-optimizer/internal/services"
	"github.com/scoutlab/xi-optimizer/pkg/utils"
)

type OptimizerHandler struct {
	pool    *services.PoolService
	squads  *services.SquadService
	timeout time.Duration
	logger  *logrus.Logger
}

func NewOptimizerHandler(pool *services.PoolService, squads *services.SquadService, timeout time.Duration, logger *logrus.Logger) *OptimizerHandler {
	return &OptimizerHandler{
		pool:    pool,
		squads:  squads,
		timeout: timeout,
		logger:  logger,
	}
}

// GetFormations lists the supported formations and their slots.
func (h *OptimizerHandler) GetFormations(c *gin.Context) {
	out := make(map[string][]string, len(optimizer.Formations))
	for _, name := range optimizer.FormationNames() {
		slots, _ := optimizer.FormationSlots(name)
		out[name] = slots
	}
	utils.SendSuccess(c, out)
}

// OptimizeXI assigns the best eleven from the current pool to the
// requested formation, optionally under a budget, and optionally saves
// the result as a squad.
func (h *OptimizerHandler) OptimizeXI(c *gin.Context) {
	var req struct {
		Formation string   `json:"formation"`
		BudgetMil *float64 `json:"budget_mil"`
		SaveAs    string   `json:"save_as"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request body", err.Error())
		return
	}
	if req.Formation == "" {
		req.Formation = optimizer.DefaultFormation
	}
	if req.BudgetMil != nil && *req.BudgetMil < 0 {
		utils.SendValidationError(c, "Invalid budget", "budget_mil must be >= 0")
		return
	}

	if err := h.pool.EnsurePool(c.Request.Context()); err != nil {
		utils.SendInternalError(c, "Failed to load player pool")
		return
	}
	pool := h.pool.Pool()

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	assignments, err := optimizer.Optimize(ctx, req.Formation, pool, req.BudgetMil)
	if err != nil {
		utils.SendValidationError(c, "Optimization failed", err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"formation": req.Formation,
		"assigned":  len(assignments),
		"budgeted":  req.BudgetMil != nil,
	}).Info("Optimized XI")

	totalScore := 0.0
	totalValue := 0.0
	for _, a := range assignments {
		totalScore += a.Player.SlotScore
		if a.Player.MarketValueMil != nil {
			totalValue += *a.Player.MarketValueMil
		}
	}

	resp := gin.H{
		"formation":       req.Formation,
		"assignments":     assignments,
		"total_score":     totalScore,
		"total_value_mil": totalValue,
	}

	if req.SaveAs != "" {
		squad, err := h.squads.SaveOptimized(req.SaveAs, req.Formation, assignments)
		if err != nil {
			utils.SendInternalError(c, "Failed to save optimized squad")
			return
		}
		resp["squad_id"] = squad.ExternalID
	}

	utils.SendSuccess(c, resp)
}
