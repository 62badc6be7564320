package handlers

import (
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/CastleLabs/prizewheel/internal/services"
)

var allowedSoundExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
	".ogg": true,
	".m4a": true,
	".aac": true,
}

const maxSoundUploadBytes = 16 << 20

// AdminHandler covers configuration, dashboard data, history export
// and the asset plumbing endpoints.
type AdminHandler struct {
	engine        *services.WheelEngine
	soundsDir     string
	gpioAvailable bool
	log           *logrus.Entry
}

func NewAdminHandler(engine *services.WheelEngine, soundsDir string, gpioAvailable bool, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		engine:        engine,
		soundsDir:     soundsDir,
		gpioAvailable: gpioAvailable,
		log:           log.WithField("component", "admin_handler"),
	}
}

// UpdateConfig handles POST /api/config. Unknown keys in the request
// are ignored; recognized numeric keys are clamped before persisting.
func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	var update map[string]any
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg, err := h.engine.UpdateConfig(update)
	if err != nil {
		h.log.WithError(err).Error("Config save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save configuration"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Configuration saved successfully", "config": cfg})
}

func (h *AdminHandler) GetDashboardData(c *gin.Context) {
	state := h.engine.DashboardState()
	c.JSON(http.StatusOK, gin.H{
		"prizes":       h.engine.Prizes(),
		"config":       h.engine.Config(),
		"recent_spins": state.History,
		"stats":        state.Stats,
		"performance":  state.Performance,
		"system_info": gin.H{
			"gpio_available":    h.gpioAvailable,
			"connected_clients": state.Stats.ConnectedClients,
			"wheel_status":      h.engine.Status(),
		},
	})
}

func (h *AdminHandler) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.State().Metrics())
}

// ExportCSV handles GET /api/export/csv, a tabular dump of the
// persisted history.
func (h *AdminHandler) ExportCSV(c *gin.Context) {
	history := h.engine.History()
	if len(history) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No history data to export"})
		return
	}

	filename := fmt.Sprintf("prize_wheel_history_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"Timestamp", "Prize Name", "Prize ID", "Is Winner", "Source", "Session Spin"}); err != nil {
		h.log.WithError(err).Error("CSV header write failed")
		return
	}
	for _, rec := range history {
		isWinner := "No"
		if rec.IsWinner {
			isWinner = "Yes"
		}
		row := []string{
			rec.Timestamp.Format(time.RFC3339),
			rec.PrizeName,
			rec.PrizeID,
			isWinner,
			rec.Source,
			fmt.Sprintf("%d", rec.SessionSpin),
		}
		if err := w.Write(row); err != nil {
			h.log.WithError(err).Error("CSV row write failed")
			return
		}
	}
	w.Flush()
	h.log.WithField("records", len(history)).Info("CSV export generated")
}

// ClearStats handles DELETE /api/stats: back up, then empty.
func (h *AdminHandler) ClearStats(c *gin.Context) {
	if err := h.engine.ClearHistory(); err != nil {
		h.log.WithError(err).Error("History clear failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "History cleared successfully"})
}

// GetQRCode returns a QR code for the kiosk URL as a base64 data URI,
// for putting on signage so phones can reach the wheel.
func (h *AdminHandler) GetQRCode(c *gin.Context) {
	url := fmt.Sprintf("http://%s/", c.Request.Host)

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		h.log.WithError(err).Error("QR code generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qr_code": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		"url":     url,
	})
}

// ---- Sound assets ----

func (h *AdminHandler) ListSounds(c *gin.Context) {
	var sounds []string

	entries, err := os.ReadDir(h.soundsDir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && allowedSoundExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
				sounds = append(sounds, "/static/sounds/"+e.Name())
			}
		}
	}

	// System sounds from config may live outside the upload dir.
	if system, ok := h.engine.Config()["system_sounds"].(map[string]any); ok {
		for _, v := range system {
			if path, ok := v.(string); ok && path != "" && !contains(sounds, path) {
				sounds = append(sounds, path)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"sounds": sounds})
}

func (h *AdminHandler) UploadSound(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	if file.Size > maxSoundUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File exceeds 16MB limit"})
		return
	}

	name := filepath.Base(file.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedSoundExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Allowed: mp3, wav, ogg, m4a, aac"})
		return
	}

	// Never overwrite an existing asset; suffix until the name is free.
	base := strings.TrimSuffix(name, ext)
	target := name
	for counter := 1; ; counter++ {
		if _, err := os.Stat(filepath.Join(h.soundsDir, target)); os.IsNotExist(err) {
			break
		}
		target = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}

	if err := c.SaveUploadedFile(file, filepath.Join(h.soundsDir, target)); err != nil {
		h.log.WithError(err).Error("Sound upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	h.log.WithField("filename", target).Info("Sound uploaded")
	c.JSON(http.StatusOK, gin.H{
		"message":  "Sound uploaded successfully",
		"filename": target,
		"url":      "/static/sounds/" + target,
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
