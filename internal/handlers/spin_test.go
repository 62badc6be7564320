package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/handlers"
	"github.com/CastleLabs/prizewheel/internal/services"
	"github.com/CastleLabs/prizewheel/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *services.WheelEngine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	st, err := store.New(t.TempDir(), log)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	engine := services.NewWheelEngine(st, services.NewWheelState(log), log)

	spinHandler := handlers.NewSpinHandler(engine, log)
	prizeHandler := handlers.NewPrizeHandler(engine, log)
	adminHandler := handlers.NewAdminHandler(engine, t.TempDir(), false, log)

	router := gin.New()
	api := router.Group("/api")
	api.POST("/spin", spinHandler.TriggerSpin)
	api.GET("/spin/status", spinHandler.GetStatus)
	api.GET("/prizes", prizeHandler.GetPrizes)
	api.POST("/prizes", prizeHandler.AddPrize)
	api.PUT("/prizes/:id", prizeHandler.UpdatePrize)
	api.DELETE("/prizes/:id", prizeHandler.DeletePrize)
	api.POST("/config", adminHandler.UpdateConfig)
	api.GET("/export/csv", adminHandler.ExportCSV)

	return router, engine
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON response for %s %s: %v", method, path, err)
		}
	}
	return w, decoded
}

func TestTriggerSpinBusyConflict(t *testing.T) {
	router, engine := newTestRouter(t)

	if !engine.State().TryStartSpin("test") {
		t.Fatal("could not occupy the guard")
	}

	w, body := doJSON(t, router, http.MethodPost, "/api/spin", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while spinning, got %d", w.Code)
	}
	if body["error"] != "wheel_busy" {
		t.Errorf("expected wheel_busy error, got %v", body["error"])
	}
	if body["is_spinning"] != true {
		t.Errorf("busy response should report is_spinning, got %v", body["is_spinning"])
	}
}

func TestTriggerSpinAccepted(t *testing.T) {
	router, engine := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodPost, "/api/spin", `{"user_info":"curl test","source":"curl"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["success"] != true {
		t.Errorf("expected success true, got %v", body["success"])
	}

	history := engine.History()
	if len(history) != 1 {
		t.Fatalf("expected one history record, got %d", len(history))
	}
	if history[0].Source != "api_curl" {
		t.Errorf("expected source api_curl, got %q", history[0].Source)
	}
	if history[0].UserData != "curl test" {
		t.Errorf("expected user data from request, got %q", history[0].UserData)
	}
}

func TestSpinStatus(t *testing.T) {
	router, _ := newTestRouter(t)

	w, body := doJSON(t, router, http.MethodGet, "/api/spin/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["is_spinning"] != false {
		t.Errorf("fresh wheel should be idle, got %v", body["is_spinning"])
	}
}

func TestPrizeEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/prizes", `{"name":"","weight":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("nameless prize should be 400, got %d", w.Code)
	}

	w, body := doJSON(t, router, http.MethodPost, "/api/prizes", `{"name":"Sticker","weight":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("add prize failed: %d %s", w.Code, w.Body.String())
	}
	prize := body["prize"].(map[string]any)
	id := prize["id"].(string)
	if id == "" {
		t.Fatal("added prize should carry an id")
	}
	if prize["enabled"] != true || prize["is_winner"] != true {
		t.Errorf("enabled and is_winner should default true, got %v", prize)
	}

	w, _ = doJSON(t, router, http.MethodPut, "/api/prizes/"+id, `{"weight":9}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", w.Code, w.Body.String())
	}

	w, _ = doJSON(t, router, http.MethodPut, "/api/prizes/missing", `{"weight":9}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown prize update should be 404, got %d", w.Code)
	}

	w, _ = doJSON(t, router, http.MethodDelete, "/api/prizes/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete failed: %d", w.Code)
	}
	w, _ = doJSON(t, router, http.MethodDelete, "/api/prizes/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("double delete should be 404, got %d", w.Code)
	}

	// The two default prizes remain.
	w, body = doJSON(t, router, http.MethodGet, "/api/prizes", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list failed: %d", w.Code)
	}
	if prizes := body["prizes"].([]any); len(prizes) != 2 {
		t.Errorf("expected 2 prizes after delete, got %d", len(prizes))
	}
}

func TestUpdateConfigClamps(t *testing.T) {
	router, engine := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodPost, "/api/config", `{"volume":500,"modal_delay_ms":99999,"evil_key":"x"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("config update failed: %d %s", w.Code, w.Body.String())
	}

	cfg := engine.Config()
	if got := cfg["volume"]; got != float64(100) && got != 100 {
		t.Errorf("volume should clamp to 100, got %v", got)
	}
	if got := cfg["modal_delay_ms"]; got != float64(10000) && got != 10000 {
		t.Errorf("modal_delay_ms should clamp to 10000, got %v", got)
	}
	if _, ok := cfg["evil_key"]; ok {
		t.Error("unrecognized update keys must never be persisted")
	}
}

func TestExportCSVEmpty(t *testing.T) {
	router, _ := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/export/csv", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("empty history export should be 404, got %d", w.Code)
	}
}
