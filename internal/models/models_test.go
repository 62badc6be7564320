package models_test

import (
	"testing"

	"github.com/CastleLabs/prizewheel/internal/models"
)

func TestPrizeValidate(t *testing.T) {
	prize := models.Prize{ID: "p1", Name: "Free Drink", Weight: 2.5}
	if err := prize.Validate(); err != nil {
		t.Errorf("valid prize failed validation: %v", err)
	}

	noName := models.Prize{ID: "p2", Weight: 1}
	if err := noName.Validate(); err == nil {
		t.Error("prize without a name should fail validation")
	}

	badWeight := models.Prize{ID: "p3", Name: "Nothing", Weight: 0}
	if err := badWeight.Validate(); err == nil {
		t.Error("prize with zero weight should fail validation")
	}
}

func TestPrizeApplyPartialUpdate(t *testing.T) {
	prize := models.Prize{ID: "p1", Name: "Free Drink", Weight: 2, Enabled: true}

	newWeight := 5.0
	disabled := false
	prize.Apply(&models.PrizeUpdate{Weight: &newWeight, Enabled: &disabled})

	if prize.Weight != 5.0 {
		t.Errorf("expected weight 5.0, got %v", prize.Weight)
	}
	if prize.Enabled {
		t.Error("expected prize to be disabled after update")
	}
	if prize.Name != "Free Drink" {
		t.Errorf("name should be untouched, got %q", prize.Name)
	}
}

func TestConfigMergeWhitelistAndClamp(t *testing.T) {
	cfg := models.DefaultConfig()

	cfg.Merge(map[string]any{
		"modal_delay_ms": 99999,
		"volume":         250,
		"evil_key":       "payload",
	})

	if got := cfg.ModalDelayMs(); got != 10000 {
		t.Errorf("modal_delay_ms should clamp to 10000, got %d", got)
	}
	if _, ok := cfg["evil_key"]; ok {
		t.Error("unrecognized keys must not be merged")
	}
	if v, _ := cfg["volume"].(int); v != 100 {
		t.Errorf("volume should clamp to 100, got %v", cfg["volume"])
	}
}

func TestConfigPreservesUnknownStoredKeys(t *testing.T) {
	cfg := models.WheelConfig{
		"spin_duration_seconds": 8,
		"legacy_setting":        true,
	}

	cfg.Merge(map[string]any{"spin_duration_seconds": 12})

	if _, ok := cfg["legacy_setting"]; !ok {
		t.Error("keys already on disk must survive a merge")
	}
	if cfg.SpinDuration().Seconds() != 12 {
		t.Errorf("expected spin duration 12s, got %v", cfg.SpinDuration())
	}
}

func TestNewPrizeID(t *testing.T) {
	prizes := models.DefaultPrizes()

	id, err := models.NewPrizeID(prizes)
	if err != nil {
		t.Fatalf("failed to generate prize id: %v", err)
	}
	for _, p := range prizes {
		if p.ID == id {
			t.Fatalf("generated id collides with existing prize %q", p.ID)
		}
	}
}
