package models

import "time"

// SpinRecord is one entry in history.json, newest first.
type SpinRecord struct {
	Timestamp   time.Time `json:"timestamp"`
	PrizeID     string    `json:"prize_id"`
	PrizeName   string    `json:"prize_name"`
	IsWinner    bool      `json:"is_winner"`
	Source      string    `json:"source"`
	SessionSpin int       `json:"session_spin"`
	UserData    string    `json:"user_data,omitempty"`
}

// HistoryRetention is how many records history.json keeps on disk.
const HistoryRetention = 100

// DashboardHistoryLimit is how many records the dashboard view shows.
const DashboardHistoryLimit = 30

// WheelStatus is an atomic snapshot of the guard state for status
// reporting and rejection payloads.
type WheelStatus struct {
	IsSpinning       bool    `json:"is_spinning"`
	ConnectedClients int     `json:"connected_clients"`
	TotalSpins       int     `json:"total_spins"`
	LastWinner       string  `json:"last_winner"`
	LastSpinSource   string  `json:"last_spin_source"`
	SpinDuration     float64 `json:"spin_duration"`
}

type PerformanceMetrics struct {
	StartTime        int64 `json:"start_time"`
	TotalConnections int   `json:"total_connections"`
	PeakConcurrent   int   `json:"peak_concurrent"`
}

type DashboardStats struct {
	TotalSpins       int    `json:"total_spins"`
	SessionSpins     int    `json:"session_spins"`
	WinRate          string `json:"win_rate"`
	ActivePrizes     int    `json:"active_prizes"`
	LastSpin         string `json:"last_spin"`
	ConnectedClients int    `json:"connected_clients"`
	PeakConcurrent   int    `json:"peak_concurrent"`
	UptimeHours      string `json:"uptime_hours"`
	LastWinner       string `json:"last_winner"`
}

type DashboardState struct {
	Stats       DashboardStats     `json:"stats"`
	History     []SpinRecord       `json:"history"`
	Performance PerformanceMetrics `json:"performance"`
}
