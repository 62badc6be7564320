package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/models"
)

// WheelState is the spin guard: the single mutual-exclusion boundary
// for everything the spin sources share. At most one spin is ever in
// flight, no matter how many sources race TryStartSpin.
//
// Runtime state only — nothing here is persisted, so a restart always
// comes back Idle.
type WheelState struct {
	mu sync.Mutex

	isSpinning     bool
	spinStartedAt  time.Time
	lastSpinSource string
	lastWinner     string
	sessionSpins   int

	clients          map[string]struct{}
	startTime        time.Time
	totalConnections int
	peakConcurrent   int

	log *logrus.Entry
}

func NewWheelState(log *logrus.Logger) *WheelState {
	return &WheelState{
		clients:   make(map[string]struct{}),
		startTime: time.Now(),
		log:       log.WithField("component", "wheel_state"),
	}
}

// TryStartSpin attempts the Idle -> Spinning transition. On success it
// atomically flips the state, bumps the session counter and records
// the start time and source. While spinning it changes nothing and
// returns false.
func (ws *WheelState) TryStartSpin(source string) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.isSpinning {
		ws.log.WithFields(logrus.Fields{
			"source":  source,
			"blocker": ws.lastSpinSource,
		}).Debug("Spin blocked, wheel already spinning")
		return false
	}

	ws.isSpinning = true
	ws.sessionSpins++
	ws.spinStartedAt = time.Now()
	ws.lastSpinSource = source

	ws.log.WithFields(logrus.Fields{
		"spin":   ws.sessionSpins,
		"source": source,
	}).Info("Spin started")
	return true
}

// EndSpin returns the guard to Idle. Calling it while already Idle is
// a no-op; every abort path releases unconditionally.
func (ws *WheelState) EndSpin() {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if ws.isSpinning {
		ws.log.WithFields(logrus.Fields{
			"spin":     ws.sessionSpins,
			"duration": time.Since(ws.spinStartedAt).Round(100 * time.Millisecond).String(),
		}).Info("Spin completed")
	}
	ws.isSpinning = false
	ws.spinStartedAt = time.Time{}
}

func (ws *WheelState) SetLastWinner(name string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.lastWinner = name
}

func (ws *WheelState) AddClient(id string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.clients[id] = struct{}{}
	ws.totalConnections++
	if len(ws.clients) > ws.peakConcurrent {
		ws.peakConcurrent = len(ws.clients)
	}
}

func (ws *WheelState) RemoveClient(id string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.clients, id)
}

// Snapshot copies the guarded fields out atomically for status
// reporting. Nothing is readable outside the lock except through here.
func (ws *WheelState) Snapshot() models.WheelStatus {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	var elapsed float64
	if ws.isSpinning && !ws.spinStartedAt.IsZero() {
		elapsed = time.Since(ws.spinStartedAt).Seconds()
	}
	return models.WheelStatus{
		IsSpinning:       ws.isSpinning,
		ConnectedClients: len(ws.clients),
		TotalSpins:       ws.sessionSpins,
		LastWinner:       ws.lastWinner,
		LastSpinSource:   ws.lastSpinSource,
		SpinDuration:     elapsed,
	}
}

func (ws *WheelState) Metrics() models.PerformanceMetrics {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	return models.PerformanceMetrics{
		StartTime:        ws.startTime.Unix(),
		TotalConnections: ws.totalConnections,
		PeakConcurrent:   ws.peakConcurrent,
	}
}

func (ws *WheelState) Uptime() time.Duration {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return time.Since(ws.startTime)
}
