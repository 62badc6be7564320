package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CastleLabs/prizewheel/internal/models"
	"github.com/CastleLabs/prizewheel/internal/store"
)

const maxSimulations = 10000

// WheelEngine composes the store, the selector and the spin guard into
// the end-to-end spin transaction, and owns the admin operations that
// share the same documents.
type WheelEngine struct {
	store       *store.Store
	state       *WheelState
	selector    *Selector
	broadcaster Broadcaster
	log         *logrus.Entry

	// Completion scheduling hook; tests fire it by hand.
	scheduleComplete func(d time.Duration, fn func())
}

func NewWheelEngine(st *store.Store, state *WheelState, log *logrus.Logger) *WheelEngine {
	return &WheelEngine{
		store:    st,
		state:    state,
		selector: NewSelector(),
		log:      log.WithField("component", "wheel_engine"),
		scheduleComplete: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

// SetBroadcaster wires the event fan-out. The hub needs the engine for
// incoming spin messages and the engine needs the hub for broadcasts,
// so this is set after construction.
func (e *WheelEngine) SetBroadcaster(b Broadcaster) {
	e.broadcaster = b
}

func (e *WheelEngine) Status() models.WheelStatus {
	return e.state.Snapshot()
}

func (e *WheelEngine) State() *WheelState {
	return e.state
}

// RequestSpin is the single entry point for every spin source: web
// socket, REST caller and hardware button all funnel through here. It
// returns immediately; true means the spin was accepted and will
// complete asynchronously after the configured duration.
//
// The guard is released on every abort path. A leaked Spinning state
// would wedge the kiosk until restart.
func (e *WheelEngine) RequestSpin(source, userData string) bool {
	if !e.state.TryStartSpin(source) {
		e.log.WithField("source", source).Warn("Spin rejected, wheel busy")
		e.emitRejected(models.SpinRejectedEvent{
			Reason:       "wheel_busy",
			Message:      "Wheel is currently spinning or in cooldown. Please wait.",
			Source:       source,
			CurrentState: e.state.Snapshot(),
			Timestamp:    time.Now().Format(time.RFC3339),
		})
		return false
	}

	spinNumber := e.state.Snapshot().TotalSpins

	prizes := e.store.LoadPrizes()
	cfg := e.store.LoadConfig()

	enabled := models.EnabledPrizes(prizes)
	if len(enabled) == 0 {
		e.log.Error("Spin aborted, no enabled prizes")
		e.emitError(models.SpinErrorEvent{
			Message:   "Cannot spin: No prizes are enabled!",
			ErrorType: "no_prizes",
		})
		e.state.EndSpin()
		return false
	}

	winner, err := e.selector.Pick(enabled)
	if err != nil {
		e.log.WithError(err).Error("Spin aborted, winner draw failed")
		e.emitError(models.SpinErrorEvent{
			Message:   "Cannot spin: Winner calculation failed.",
			ErrorType: "calculation_failed",
		})
		e.state.EndSpin()
		return false
	}

	record := models.SpinRecord{
		Timestamp:   time.Now(),
		PrizeID:     winner.ID,
		PrizeName:   winner.Name,
		IsWinner:    winner.IsWinner,
		Source:      source,
		SessionSpin: spinNumber,
		UserData:    userData,
	}
	history, err := e.store.AppendHistory(record)
	if err != nil {
		e.log.WithError(err).Error("Spin aborted, history write failed")
		e.emitError(models.SpinErrorEvent{
			Message:   fmt.Sprintf("Spin failed: %v", err),
			ErrorType: "storage_error",
		})
		e.state.EndSpin()
		return false
	}

	e.state.SetLastWinner(winner.Name)

	duration := cfg.SpinDuration()
	e.log.WithFields(logrus.Fields{
		"winner":   winner.Name,
		"spin":     spinNumber,
		"source":   source,
		"duration": duration.String(),
	}).Info("Winner drawn")

	e.emitStarted(models.SpinStartedEvent{
		WinnerID:         winner.ID,
		SpinDuration:     int(duration.Milliseconds()),
		Prizes:           enabled,
		SpinNumber:       spinNumber,
		Source:           source,
		CooldownDuration: cfg.CooldownMs(),
		ModalDelay:       cfg.ModalDelayMs(),
		ModalAutoClose:   cfg.ModalAutoCloseMs(),
	})

	totalSpins := len(history)
	e.scheduleComplete(duration, func() {
		e.completeSpin(winner, cfg, spinNumber, totalSpins)
	})
	return true
}

// completeSpin is the deferred second phase: release the guard, then
// announce completion and a fresh dashboard snapshot.
func (e *WheelEngine) completeSpin(winner models.Prize, cfg models.WheelConfig, spinNumber, totalSpins int) {
	e.state.EndSpin()

	e.emitComplete(models.SpinCompleteEvent{
		Winner:           winner,
		CooldownDuration: cfg.CooldownMs(),
		ModalDelay:       cfg.ModalDelayMs(),
		ModalAutoClose:   cfg.ModalAutoCloseMs(),
		SpinStats: models.SpinStats{
			TotalSpins:   totalSpins,
			SessionSpins: spinNumber,
		},
	})
	e.emitStateUpdate(e.DashboardState())
}

// DashboardState assembles the aggregate view for dashboard clients.
func (e *WheelEngine) DashboardState() models.DashboardState {
	prizes := e.store.LoadPrizes()
	history := e.store.LoadHistory()
	snapshot := e.state.Snapshot()

	winnerIDs := make(map[string]bool, len(prizes))
	active := 0
	for _, p := range prizes {
		if p.IsWinner {
			winnerIDs[p.ID] = true
		}
		if p.Enabled {
			active++
		}
	}

	winnerSpins := 0
	for _, rec := range history {
		if winnerIDs[rec.PrizeID] {
			winnerSpins++
		}
	}

	winRate := 0.0
	if len(history) > 0 {
		winRate = float64(winnerSpins) / float64(len(history)) * 100
	}

	lastSpin := "Never"
	if len(history) > 0 {
		lastSpin = history[0].Timestamp.Format(time.RFC3339)
	}

	view := history
	if len(view) > models.DashboardHistoryLimit {
		view = view[:models.DashboardHistoryLimit]
	}

	return models.DashboardState{
		Stats: models.DashboardStats{
			TotalSpins:       len(history),
			SessionSpins:     snapshot.TotalSpins,
			WinRate:          fmt.Sprintf("%.1f", winRate),
			ActivePrizes:     active,
			LastSpin:         lastSpin,
			ConnectedClients: snapshot.ConnectedClients,
			PeakConcurrent:   e.state.Metrics().PeakConcurrent,
			UptimeHours:      fmt.Sprintf("%.1f", e.state.Uptime().Hours()),
			LastWinner:       snapshot.LastWinner,
		},
		History:     view,
		Performance: e.state.Metrics(),
	}
}

// ---- Prize administration ----

func (e *WheelEngine) Prizes() []models.Prize {
	return e.store.LoadPrizes()
}

func (e *WheelEngine) AddPrize(p models.Prize) (models.Prize, error) {
	if err := p.Validate(); err != nil {
		return models.Prize{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	prizes := e.store.LoadPrizes()
	id, err := models.NewPrizeID(prizes)
	if err != nil {
		return models.Prize{}, err
	}
	p.ID = id

	prizes = append(prizes, p)
	if err := e.store.SavePrizes(prizes); err != nil {
		return models.Prize{}, err
	}

	e.log.WithField("prize", p.Name).Info("Prize added")
	return p, nil
}

func (e *WheelEngine) UpdatePrize(id string, update *models.PrizeUpdate) (models.Prize, error) {
	prizes := e.store.LoadPrizes()
	idx := -1
	for i := range prizes {
		if prizes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Prize{}, ErrPrizeNotFound
	}

	updated := prizes[idx]
	updated.Apply(update)
	if err := updated.Validate(); err != nil {
		return models.Prize{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	prizes[idx] = updated
	if err := e.store.SavePrizes(prizes); err != nil {
		return models.Prize{}, err
	}

	e.log.WithField("prize", updated.Name).Info("Prize updated")
	return updated, nil
}

func (e *WheelEngine) DeletePrize(id string) error {
	prizes := e.store.LoadPrizes()
	for i := range prizes {
		if prizes[i].ID == id {
			name := prizes[i].Name
			prizes = append(prizes[:i], prizes[i+1:]...)
			if err := e.store.SavePrizes(prizes); err != nil {
				return err
			}
			e.log.WithField("prize", name).Info("Prize deleted")
			return nil
		}
	}
	return ErrPrizeNotFound
}

// ---- History ----

func (e *WheelEngine) History() []models.SpinRecord {
	return e.store.LoadHistory()
}

// ClearHistory backs up then empties the spin history.
func (e *WheelEngine) ClearHistory() error {
	if err := e.store.ClearHistory(); err != nil {
		return err
	}
	e.log.Info("Spin history cleared")
	return nil
}

// ---- Configuration ----

func (e *WheelEngine) Config() models.WheelConfig {
	return e.store.LoadConfig()
}

// UpdateConfig merges an update through the key whitelist and persists.
func (e *WheelEngine) UpdateConfig(update map[string]any) (models.WheelConfig, error) {
	cfg := e.store.LoadConfig()
	cfg.Merge(update)
	if err := e.store.SaveConfig(cfg); err != nil {
		return nil, err
	}
	e.log.Info("Configuration updated")
	return cfg, nil
}

// ---- Odds calculator ----

// SimulateSpins runs repeated draws against the enabled prize set to
// check the distribution, capped to keep the endpoint cheap.
func (e *WheelEngine) SimulateSpins(n int) (models.SimulationReport, error) {
	if n <= 0 {
		n = 1000
	}
	if n > maxSimulations {
		n = maxSimulations
	}

	enabled := models.EnabledPrizes(e.store.LoadPrizes())
	if len(enabled) == 0 {
		return models.SimulationReport{}, ErrNoEnabledPrizes
	}

	counts := make(map[string]int, len(enabled))
	for i := 0; i < n; i++ {
		winner, err := e.selector.Pick(enabled)
		if err != nil {
			return models.SimulationReport{}, err
		}
		counts[winner.ID]++
	}

	totalWeight := 0.0
	for _, p := range enabled {
		totalWeight += p.Weight
	}

	report := models.SimulationReport{Simulations: n}
	for _, p := range enabled {
		expected := 0.0
		if totalWeight > 0 {
			expected = p.Weight / totalWeight * 100
		}
		outcome := models.SimulationOutcome{
			ID:                 p.ID,
			Name:               p.Name,
			ExpectedPercentage: expected,
			ActualPercentage:   float64(counts[p.ID]) / float64(n) * 100,
			Count:              counts[p.ID],
			IsWinner:           p.IsWinner,
		}
		report.Results = append(report.Results, outcome)
		if p.IsWinner {
			report.TotalWinners += outcome.Count
		}
	}
	report.WinRate = float64(report.TotalWinners) / float64(n) * 100
	return report, nil
}

// AnalyzeOdds reports the exact per-prize probabilities implied by the
// current weights.
func (e *WheelEngine) AnalyzeOdds() (models.OddsAnalysis, error) {
	prizes := e.store.LoadPrizes()
	enabled := models.EnabledPrizes(prizes)
	if len(enabled) == 0 {
		return models.OddsAnalysis{}, ErrNoEnabledPrizes
	}

	totalWeight := 0.0
	for _, p := range enabled {
		totalWeight += p.Weight
	}

	analysis := models.OddsAnalysis{
		TotalPrizes:    len(prizes),
		EnabledPrizes:  len(enabled),
		DisabledPrizes: len(prizes) - len(enabled),
		TotalWeight:    totalWeight,
	}

	winnerWeight := 0.0
	for _, p := range enabled {
		probability := 0.0
		if totalWeight > 0 {
			probability = p.Weight / totalWeight * 100
		}
		analysis.Prizes = append(analysis.Prizes, models.PrizeOdds{
			ID:          p.ID,
			Name:        p.Name,
			Weight:      p.Weight,
			Probability: probability,
			IsWinner:    p.IsWinner,
			Color:       p.Color,
			Enabled:     p.Enabled,
		})
		if p.IsWinner {
			winnerWeight += p.Weight
		}
	}

	if totalWeight > 0 {
		analysis.WinProbability = winnerWeight / totalWeight * 100
		analysis.LoseProbability = 100 - analysis.WinProbability
	}
	if analysis.WinProbability > 0 {
		analysis.ExpectedSpinsToWin = 100 / analysis.WinProbability
	}

	sort.Slice(analysis.Prizes, func(i, j int) bool {
		return analysis.Prizes[i].Probability > analysis.Prizes[j].Probability
	})
	analysis.MostLikely = &analysis.Prizes[0]
	analysis.LeastLikely = &analysis.Prizes[len(analysis.Prizes)-1]

	return analysis, nil
}

// ---- Event emission ----

func (e *WheelEngine) emitStarted(ev models.SpinStartedEvent) {
	if e.broadcaster != nil {
		e.broadcaster.BroadcastSpinStarted(ev)
	}
}

func (e *WheelEngine) emitComplete(ev models.SpinCompleteEvent) {
	if e.broadcaster != nil {
		e.broadcaster.BroadcastSpinComplete(ev)
	}
}

func (e *WheelEngine) emitRejected(ev models.SpinRejectedEvent) {
	if e.broadcaster != nil {
		e.broadcaster.BroadcastSpinRejected(ev)
	}
}

func (e *WheelEngine) emitError(ev models.SpinErrorEvent) {
	if e.broadcaster != nil {
		e.broadcaster.BroadcastSpinError(ev)
	}
}

func (e *WheelEngine) emitStateUpdate(state models.DashboardState) {
	if e.broadcaster != nil {
		e.broadcaster.BroadcastStateUpdate(state)
	}
}
