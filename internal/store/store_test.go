package store_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/models"
	"github.com/CastleLabs/prizewheel/internal/store"
)

func newTestStore(t *testing.T) (*store.Store, string) {
	t.Helper()
	dir := t.TempDir()
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)

	s, err := store.New(dir, log)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s, dir
}

func TestPrizesRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	prizes := []models.Prize{
		{ID: "a", Name: "Grand Prize", Weight: 0.5, Color: "#FFD700", IsWinner: true, Enabled: true},
		{ID: "b", Name: "Try Again", Weight: 10, Color: "#9E9E9E", Enabled: true},
	}
	if err := s.SavePrizes(prizes); err != nil {
		t.Fatalf("failed to save prizes: %v", err)
	}

	loaded := s.LoadPrizes()
	if len(loaded) != 2 {
		t.Fatalf("expected 2 prizes, got %d", len(loaded))
	}
	if loaded[0] != prizes[0] || loaded[1] != prizes[1] {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, prizes)
	}
}

func TestMissingFileBootstrapsDefault(t *testing.T) {
	s, dir := newTestStore(t)

	prizes := s.LoadPrizes()
	if len(prizes) != len(models.DefaultPrizes()) {
		t.Fatalf("expected default prizes, got %d entries", len(prizes))
	}
	if _, err := os.Stat(filepath.Join(dir, "prizes.json")); err != nil {
		t.Errorf("first load should write the canonical file: %v", err)
	}
}

func TestCorruptionRecovery(t *testing.T) {
	s, dir := newTestStore(t)

	path := filepath.Join(dir, "prizes.json")
	if err := os.WriteFile(path, []byte("{not json!!"), 0o644); err != nil {
		t.Fatalf("failed to plant corrupt file: %v", err)
	}

	prizes := s.LoadPrizes()
	if len(prizes) != len(models.DefaultPrizes()) {
		t.Fatalf("corrupt load should return defaults, got %d entries", len(prizes))
	}

	backups := backupFiles(t, dir, "prizes.json")
	if len(backups) != 1 {
		t.Fatalf("expected exactly one backup, got %v", backups)
	}
	raw, err := os.ReadFile(backups[0])
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(raw) != "{not json!!" {
		t.Errorf("backup should preserve corrupt content, got %q", raw)
	}

	// A second load must be stable: defaults again, no new backup.
	again := s.LoadPrizes()
	if len(again) != len(models.DefaultPrizes()) {
		t.Errorf("second load should still return defaults")
	}
	if got := backupFiles(t, dir, "prizes.json"); len(got) != 1 {
		t.Errorf("healed document must not back up again, got %v", got)
	}
}

func TestPrizesWrongShapeIsCorruption(t *testing.T) {
	s, dir := newTestStore(t)

	path := filepath.Join(dir, "prizes.json")
	if err := os.WriteFile(path, []byte(`{"id":"a"}`), 0o644); err != nil {
		t.Fatalf("failed to plant mapping-shaped file: %v", err)
	}

	prizes := s.LoadPrizes()
	if len(prizes) != len(models.DefaultPrizes()) {
		t.Fatalf("mapping-shaped prize file should reset to defaults")
	}
	if got := backupFiles(t, dir, "prizes.json"); len(got) != 1 {
		t.Errorf("expected a backup of the bad file, got %v", got)
	}
}

func TestHistoryRetention(t *testing.T) {
	s, _ := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		_, err := s.AppendHistory(models.SpinRecord{
			Timestamp:   base.Add(time.Duration(i) * time.Second),
			PrizeID:     fmt.Sprintf("p%d", i),
			PrizeName:   "Prize",
			Source:      "web_interface",
			SessionSpin: i + 1,
		})
		if err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	history := s.LoadHistory()
	if len(history) != models.HistoryRetention {
		t.Fatalf("expected %d records, got %d", models.HistoryRetention, len(history))
	}
	if history[0].PrizeID != "p149" {
		t.Errorf("newest record should be first, got %s", history[0].PrizeID)
	}
	if history[len(history)-1].PrizeID != "p50" {
		t.Errorf("oldest retained record should be p50, got %s", history[len(history)-1].PrizeID)
	}
}

func TestClearHistoryBacksUp(t *testing.T) {
	s, dir := newTestStore(t)

	if _, err := s.AppendHistory(models.SpinRecord{PrizeID: "a", Timestamp: time.Now()}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := s.ClearHistory(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if got := s.LoadHistory(); len(got) != 0 {
		t.Errorf("history should be empty after clear, got %d", len(got))
	}
	if got := backupFiles(t, dir, "history.json"); len(got) != 1 {
		t.Errorf("clear should leave a backup, got %v", got)
	}
}

func TestSavePrizesBacksUpPrevious(t *testing.T) {
	s, dir := newTestStore(t)

	if err := s.SavePrizes(models.DefaultPrizes()); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	updated := []models.Prize{{ID: "x", Name: "Replacement", Weight: 1, Enabled: true}}
	if err := s.SavePrizes(updated); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if got := backupFiles(t, dir, "prizes.json"); len(got) != 1 {
		t.Errorf("overwriting prizes should snapshot the previous file, got %v", got)
	}
}

func TestConfigRoundTripPreservesUnknownKeys(t *testing.T) {
	s, _ := newTestStore(t)

	cfg := models.DefaultConfig()
	cfg["custom_vendor_key"] = "keepme"
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := s.LoadConfig()
	if loaded["custom_vendor_key"] != "keepme" {
		t.Errorf("unknown keys must survive persistence, got %v", loaded["custom_vendor_key"])
	}
	if loaded.SpinDuration() != 8*time.Second {
		t.Errorf("expected default spin duration, got %v", loaded.SpinDuration())
	}
}

func backupFiles(t *testing.T, dir, prefix string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	var backups []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix+".") && strings.HasSuffix(e.Name(), ".bak") {
			backups = append(backups, filepath.Join(dir, e.Name()))
		}
	}
	return backups
}
