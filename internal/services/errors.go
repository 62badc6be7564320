package services

import "errors"

var (
	// ErrValidation marks a bad prize or config payload. No state changes.
	ErrValidation = errors.New("validation failed")

	// ErrPrizeNotFound marks an unknown prize id.
	ErrPrizeNotFound = errors.New("prize not found")

	// ErrNoEnabledPrizes means a draw was requested with every prize disabled.
	ErrNoEnabledPrizes = errors.New("no enabled prizes")
)
