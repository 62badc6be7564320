package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/models"
	"github.com/CastleLabs/prizewheel/internal/services"
)

// PrizeHandler covers prize CRUD and the odds calculator endpoints.
type PrizeHandler struct {
	engine *services.WheelEngine
	log    *logrus.Entry
}

func NewPrizeHandler(engine *services.WheelEngine, log *logrus.Logger) *PrizeHandler {
	return &PrizeHandler{
		engine: engine,
		log:    log.WithField("component", "prize_handler"),
	}
}

func (h *PrizeHandler) GetPrizes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prizes": h.engine.Prizes()})
}

type addPrizeRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	Color       string  `json:"color"`
	SoundPath   string  `json:"sound_path"`
	IsWinner    *bool   `json:"is_winner"`
	Enabled     *bool   `json:"enabled"`
}

func (h *PrizeHandler) AddPrize(c *gin.Context) {
	var req addPrizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	prize := models.Prize{
		Name:        req.Name,
		Description: req.Description,
		Weight:      req.Weight,
		Color:       req.Color,
		SoundPath:   req.SoundPath,
		IsWinner:    true,
		Enabled:     true,
	}
	if prize.Color == "" {
		prize.Color = "#FF6B6B"
	}
	if req.IsWinner != nil {
		prize.IsWinner = *req.IsWinner
	}
	if req.Enabled != nil {
		prize.Enabled = *req.Enabled
	}

	added, err := h.engine.AddPrize(prize)
	if err != nil {
		h.prizeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prize added successfully", "prize": added})
}

func (h *PrizeHandler) UpdatePrize(c *gin.Context) {
	var update models.PrizeUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.engine.UpdatePrize(c.Param("id"), &update)
	if err != nil {
		h.prizeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prize updated successfully", "prize": updated})
}

func (h *PrizeHandler) DeletePrize(c *gin.Context) {
	if err := h.engine.DeletePrize(c.Param("id")); err != nil {
		h.prizeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prize deleted successfully"})
}

func (h *PrizeHandler) prizeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPrizeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Prize not found"})
	default:
		h.log.WithError(err).Error("Prize operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ---- Odds calculator ----

func (h *PrizeHandler) GetOddsPrizes(c *gin.Context) {
	prizes := h.engine.Prizes()
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"prizes":        prizes,
		"count":         len(prizes),
		"enabled_count": len(models.EnabledPrizes(prizes)),
	})
}

type simulateRequest struct {
	Simulations int `json:"simulations"`
}

func (h *PrizeHandler) SimulateSpins(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := h.engine.SimulateSpins(req.Simulations)
	if err != nil {
		if errors.Is(err, services.ErrNoEnabledPrizes) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No enabled prizes found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *PrizeHandler) GetOddsAnalysis(c *gin.Context) {
	analysis, err := h.engine.AnalyzeOdds()
	if err != nil {
		if errors.Is(err, services.ErrNoEnabledPrizes) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No enabled prizes found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, analysis)
}
