package services

import "github.com/CastleLabs/prizewheel/internal/models"

// Broadcaster fans spin lifecycle events out to every subscribed
// client. The websocket hub implements it; tests substitute a fake.
type Broadcaster interface {
	BroadcastSpinStarted(models.SpinStartedEvent)
	BroadcastSpinComplete(models.SpinCompleteEvent)
	BroadcastSpinRejected(models.SpinRejectedEvent)
	BroadcastSpinError(models.SpinErrorEvent)
	BroadcastStateUpdate(models.DashboardState)
}
