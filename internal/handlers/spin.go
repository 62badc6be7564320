package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/services"
)

// SpinHandler is the REST spin adapter.
type SpinHandler struct {
	engine *services.WheelEngine
	log    *logrus.Entry
}

func NewSpinHandler(engine *services.WheelEngine, log *logrus.Logger) *SpinHandler {
	return &SpinHandler{
		engine: engine,
		log:    log.WithField("component", "spin_handler"),
	}
}

type spinRequest struct {
	UserInfo string `json:"user_info"`
	Source   string `json:"source"`
}

// TriggerSpin handles POST /api/spin. A busy wheel answers 409 with
// the current guard snapshot so callers can decide whether to retry.
func (h *SpinHandler) TriggerSpin(c *gin.Context) {
	if status := h.engine.Status(); status.IsSpinning {
		c.JSON(http.StatusConflict, gin.H{
			"success":      false,
			"error":        "wheel_busy",
			"message":      "Wheel is currently spinning. Please wait for it to complete.",
			"is_spinning":  true,
			"wheel_status": status,
			"timestamp":    time.Now().Format(time.RFC3339),
		})
		return
	}

	req := spinRequest{UserInfo: "api_client", Source: "rest_api"}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.UserInfo == "" {
			req.UserInfo = "api_client"
		}
		if req.Source == "" {
			req.Source = "rest_api"
		}
	}

	h.log.WithFields(logrus.Fields{
		"user_info": req.UserInfo,
		"source":    req.Source,
	}).Info("API spin request")

	if !h.engine.RequestSpin("api_"+req.Source, req.UserInfo) {
		c.JSON(http.StatusConflict, gin.H{
			"success":      false,
			"error":        "spin_rejected",
			"message":      "Spin was rejected by the server (wheel may be busy)",
			"wheel_status": h.engine.Status(),
			"timestamp":    time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Spin triggered successfully",
		"spin_number":  h.engine.Status().TotalSpins,
		"wheel_status": h.engine.Status(),
		"timestamp":    time.Now().Format(time.RFC3339),
	})
}

// GetStatus handles GET /api/spin/status.
func (h *SpinHandler) GetStatus(c *gin.Context) {
	status := h.engine.Status()
	c.JSON(http.StatusOK, gin.H{
		"is_spinning":         status.IsSpinning,
		"connected_clients":   status.ConnectedClients,
		"total_spins_session": status.TotalSpins,
		"last_winner":         status.LastWinner,
		"last_spin_source":    status.LastSpinSource,
		"detailed_status":     status,
		"timestamp":           time.Now().Format(time.RFC3339),
	})
}
