package services

import "log"

// Notifier delivers the best-effort admin notification fired when a new custom
// order lands. Implementations must be safe to call from a goroutine; the
// order create path never waits on the result.
type Notifier interface {
	NotifyOrderCreated(orderID uint, uniqueID string) error
}

var notifierInstance Notifier

// InitNotifier installs the notifier used by the order service. Pass nil to
// fall back to log-only delivery.
func InitNotifier(n Notifier) Notifier {
	if n == nil {
		n = &LogNotifier{}
	}
	notifierInstance = n
	return notifierInstance
}

// GetNotifier returns the installed notifier.
func GetNotifier() Notifier {
	if notifierInstance == nil {
		notifierInstance = &LogNotifier{}
	}
	return notifierInstance
}

// SetNotifier replaces the notifier instance (primarily for testing)
func SetNotifier(n Notifier) {
	notifierInstance = n
}

// LogNotifier writes the notification to the application log. Used in
// development and whenever no broker is configured.
type LogNotifier struct{}

// NotifyOrderCreated logs the new order reference.
func (l *LogNotifier) NotifyOrderCreated(orderID uint, uniqueID string) error {
	log.Printf("notification: custom order created id=%d unique_id=%s", orderID, uniqueID)
	return nil
}
