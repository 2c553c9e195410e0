package events

import "fmt"

// Event names. Draw events never carry the wish message or the outcome.
const (
	DrawRequested = "draw.requested"
	DrawCompleted = "draw.completed"
	DrawRejected  = "draw.rejected"
	DrawFailed    = "draw.failed"

	CatalogLoaded = "catalog.loaded"

	JournalError = "journal.error"

	PublisherConnected    = "publisher.connected"
	PublisherDisconnected = "publisher.disconnected"

	SystemStartup  = "system.startup"
	SystemShutdown = "system.shutdown"
	SystemError    = "system.error"
)

var allowedEvents = map[string]struct{}{
	// draw
	DrawRequested: {},
	DrawCompleted: {},
	DrawRejected:  {},
	DrawFailed:    {},

	// catalog
	CatalogLoaded: {},

	// journal
	JournalError: {},

	// publisher
	PublisherConnected:    {},
	PublisherDisconnected: {},

	// system
	SystemStartup:  {},
	SystemShutdown: {},
	SystemError:    {},
}

// Validate rejects event names outside the allow-list.
func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
