package models

// Broadcast event payloads. Event names and field names are the wire
// contract toward the display and dashboard clients.

type SpinStartedEvent struct {
	WinnerID         string  `json:"winner_id"`
	SpinDuration     int     `json:"spin_duration"` // milliseconds
	Prizes           []Prize `json:"prizes"`
	SpinNumber       int     `json:"spin_number"`
	Source           string  `json:"source"`
	CooldownDuration int     `json:"cooldown_duration"`
	ModalDelay       int     `json:"modal_delay"`
	ModalAutoClose   int     `json:"modal_auto_close"`
}

type SpinStats struct {
	TotalSpins   int `json:"total_spins"`
	SessionSpins int `json:"session_spins"`
}

type SpinCompleteEvent struct {
	Winner           Prize     `json:"winner"`
	CooldownDuration int       `json:"cooldown_duration"`
	ModalDelay       int       `json:"modal_delay"`
	ModalAutoClose   int       `json:"modal_auto_close"`
	SpinStats        SpinStats `json:"spin_stats"`
}

type SpinRejectedEvent struct {
	Reason       string      `json:"reason"`
	Message      string      `json:"message"`
	Source       string      `json:"source"`
	CurrentState WheelStatus `json:"current_state"`
	Timestamp    string      `json:"timestamp"`
}

type SpinErrorEvent struct {
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
}
