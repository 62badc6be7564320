package models

import "fmt"

// Prize is one wheel segment. The json field names are the on-disk
// contract for prizes.json and must not change.
type Prize struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
	Color       string  `json:"color"`
	IsWinner    bool    `json:"is_winner"`
	Enabled     bool    `json:"enabled"`
	SoundPath   string  `json:"sound_path"`
}

// PrizeUpdate carries a partial prize mutation. Pointer fields
// distinguish "not sent" from zero values.
type PrizeUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Weight      *float64 `json:"weight"`
	Color       *string  `json:"color"`
	IsWinner    *bool    `json:"is_winner"`
	Enabled     *bool    `json:"enabled"`
	SoundPath   *string  `json:"sound_path"`
}

func (p *Prize) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name must be a non-empty string")
	}
	if p.Weight <= 0 {
		return fmt.Errorf("weight must be a positive number")
	}
	return nil
}

// Apply copies the fields present in the update onto the prize.
func (p *Prize) Apply(u *PrizeUpdate) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Weight != nil {
		p.Weight = *u.Weight
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	if u.IsWinner != nil {
		p.IsWinner = *u.IsWinner
	}
	if u.Enabled != nil {
		p.Enabled = *u.Enabled
	}
	if u.SoundPath != nil {
		p.SoundPath = *u.SoundPath
	}
}

// EnabledPrizes filters to prizes eligible for the current draw.
func EnabledPrizes(prizes []Prize) []Prize {
	enabled := make([]Prize, 0, len(prizes))
	for _, p := range prizes {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// DefaultPrizes seeds prizes.json on first run.
func DefaultPrizes() []Prize {
	return []Prize{
		{
			ID:          "1",
			Name:        "$50 Castle Card",
			Description: "Great Spin! Major cash prize!",
			Weight:      0.5,
			Color:       "#FFD700",
			IsWinner:    true,
			Enabled:     true,
			SoundPath:   "/static/sounds/victory.mp3",
		},
		{
			ID:          "2",
			Name:        "Try Again",
			Description: "Better luck next time!",
			Weight:      10,
			Color:       "#9E9E9E",
			IsWinner:    false,
			Enabled:     true,
			SoundPath:   "/static/sounds/try-again.mp3",
		},
	}
}
