package models

import (
	"fmt"

	"github.com/google/uuid"
)

const maxIDAttempts = 5

// NewPrizeID generates an ID not present in the current prize list.
// The attempt bound exists so a pathological ID space can never loop
// forever; with v4 UUIDs it is unreachable in practice.
func NewPrizeID(prizes []Prize) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := uuid.New().String()
		if !prizeIDExists(prizes, id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique prize id in %d attempts", maxIDAttempts)
}

func prizeIDExists(prizes []Prize, id string) bool {
	for _, p := range prizes {
		if p.ID == id {
			return true
		}
	}
	return false
}
