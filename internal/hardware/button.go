package hardware

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SpinTrigger is the engine's spin entry point. The button is just one
// more concurrent producer behind the same gatekeeper as the web and
// API adapters.
type SpinTrigger interface {
	RequestSpin(source, userData string) bool
}

const (
	// DebounceWindow filters mechanical switch noise: repeated edges
	// inside the window are a single press. This is independent of the
	// guard's busy rejection.
	DebounceWindow = time.Second

	pollInterval = 20 * time.Millisecond
)

// Button watches a sysfs GPIO value file for falling edges (the kiosk
// button pulls the pin low) and debounces before requesting a spin.
type Button struct {
	pin       int
	valuePath string
	trigger   SpinTrigger
	log       *logrus.Entry

	mu        sync.Mutex
	debounce  time.Duration
	lastPress time.Time
}

// NewButton creates a watcher for the given BCM pin. An empty
// valuePath resolves to the standard sysfs location.
func NewButton(pin int, valuePath string, trigger SpinTrigger, log *logrus.Logger) *Button {
	if valuePath == "" {
		valuePath = fmt.Sprintf("/sys/class/gpio/gpio%d/value", pin)
	}
	return &Button{
		pin:       pin,
		valuePath: valuePath,
		trigger:   trigger,
		debounce:  DebounceWindow,
		log:       log.WithField("component", "hardware_button"),
	}
}

// Available reports whether the pin's value file can be read. When it
// can't, the kiosk runs in simulation mode and spins come from the web
// and API adapters only.
func (b *Button) Available() bool {
	_, err := os.Stat(b.valuePath)
	return err == nil
}

// Watch polls for falling edges until the context is cancelled.
func (b *Button) Watch(ctx context.Context) {
	b.log.WithFields(logrus.Fields{
		"pin":  b.pin,
		"path": b.valuePath,
	}).Info("GPIO button watcher started")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	prev := "1"
	for {
		select {
		case <-ctx.Done():
			b.log.Info("GPIO button watcher stopped")
			return
		case <-ticker.C:
			raw, err := os.ReadFile(b.valuePath)
			if err != nil {
				continue
			}
			cur := strings.TrimSpace(string(raw))
			if prev == "1" && cur == "0" {
				b.Press()
			}
			prev = cur
		}
	}
}

// Press is the debounced trigger path. It is exported so a simulated
// rig can drive the button without sysfs.
func (b *Button) Press() {
	b.mu.Lock()
	now := time.Now()
	if now.Sub(b.lastPress) < b.debounce {
		b.mu.Unlock()
		b.log.Debug("Button press debounced")
		return
	}
	b.lastPress = now
	b.mu.Unlock()

	b.log.WithField("pin", b.pin).Info("Button pressed")
	if !b.trigger.RequestSpin("hardware_button", fmt.Sprintf("GPIO_%d", b.pin)) {
		b.log.Warn("Button spin rejected by server")
	}
}
