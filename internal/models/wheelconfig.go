package models

import "time"

// WheelConfig is the persisted config.json document. It is a plain map
// so that unknown keys written by older versions survive round-trips;
// typed access goes through the getters below.
type WheelConfig map[string]any

// Recognized config keys. Updates through Merge only touch these.
const (
	KeySpinDurationSeconds   = "spin_duration_seconds"
	KeyCooldownSeconds       = "cooldown_seconds"
	KeyVolume                = "volume"
	KeyButtonPin             = "button_pin"
	KeySystemSounds          = "system_sounds"
	KeyModalDelayMs          = "modal_delay_ms"
	KeyModalAutoCloseMs      = "modal_auto_close_ms"
	KeyWinnerFlashDurationMs = "winner_flash_duration_ms"
)

var configWhitelist = []string{
	KeyVolume,
	KeySpinDurationSeconds,
	KeyCooldownSeconds,
	KeySystemSounds,
	KeyButtonPin,
	KeyModalDelayMs,
	KeyModalAutoCloseMs,
	KeyWinnerFlashDurationMs,
}

func DefaultConfig() WheelConfig {
	return WheelConfig{
		KeySpinDurationSeconds: 8,
		KeyCooldownSeconds:     3,
		KeyVolume:              75,
		KeyButtonPin:           17,
		KeySystemSounds: map[string]any{
			"spin":   "/static/sounds/spin.mp3",
			"winner": "/static/sounds/victory.mp3",
			"loser":  "/static/sounds/try-again.mp3",
		},
		KeyModalDelayMs:          3000,
		KeyModalAutoCloseMs:      10000,
		KeyWinnerFlashDurationMs: 4000,
	}
}

// Merge applies an update through the key whitelist, ignoring anything
// unrecognized, then re-clamps the numeric keys. Ignoring unknown keys
// is deliberate: arbitrary caller-supplied keys must never reach disk.
func (c WheelConfig) Merge(update map[string]any) {
	for _, key := range configWhitelist {
		if v, ok := update[key]; ok {
			c[key] = v
		}
	}
	c.clamp()
}

func (c WheelConfig) clamp() {
	if _, ok := c[KeyVolume]; ok {
		c[KeyVolume] = clampInt(c.intValue(KeyVolume, 75), 0, 100)
	}
	if _, ok := c[KeyModalDelayMs]; ok {
		c[KeyModalDelayMs] = clampInt(c.intValue(KeyModalDelayMs, 3000), 500, 10000)
	}
	if _, ok := c[KeyModalAutoCloseMs]; ok {
		c[KeyModalAutoCloseMs] = clampInt(c.intValue(KeyModalAutoCloseMs, 10000), 2000, 30000)
	}
	if _, ok := c[KeyWinnerFlashDurationMs]; ok {
		c[KeyWinnerFlashDurationMs] = clampInt(c.intValue(KeyWinnerFlashDurationMs, 4000), 1000, 10000)
	}
}

func (c WheelConfig) SpinDuration() time.Duration {
	return time.Duration(c.intValue(KeySpinDurationSeconds, 8)) * time.Second
}

func (c WheelConfig) CooldownMs() int {
	return c.intValue(KeyCooldownSeconds, 3) * 1000
}

func (c WheelConfig) ModalDelayMs() int {
	return c.intValue(KeyModalDelayMs, 3000)
}

func (c WheelConfig) ModalAutoCloseMs() int {
	return c.intValue(KeyModalAutoCloseMs, 10000)
}

func (c WheelConfig) ButtonPin() int {
	return c.intValue(KeyButtonPin, 17)
}

// intValue tolerates the types a JSON round-trip can produce for a
// number (float64 after decode, int when set in code).
func (c WheelConfig) intValue(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
