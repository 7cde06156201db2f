package services

import (
	"log"

	"roomdesk-backend/models"
)

// Notifier dispatches guest and staff notifications after a booking
// mutation commits. Implementations must be safe to fail: callers log and
// swallow every error.
type Notifier interface {
	BookingCreated(b *models.Booking) error
	BookingStatusChanged(b *models.Booking, previous string) error
}

// LogNotifier writes notifications to the application log. The real email
// sender lives behind the same interface in the deployment wrapper; the
// core only promises delivery is attempted, never that it succeeded.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) BookingCreated(b *models.Booking) error {
	log.Printf("notify: booking %s created for %s %s (%s), %s -> %s",
		b.Reference, b.FirstName, b.LastName, b.Email,
		b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"))
	return nil
}

func (n *LogNotifier) BookingStatusChanged(b *models.Booking, previous string) error {
	log.Printf("notify: booking %s moved %s -> %s", b.Reference, previous, b.Status)
	return nil
}
