package services

import (
	"log"

	"storefront/internal/models"
)

// EventPublisher delivers committed order events to downstream consumers.
type EventPublisher interface {
	PublishOrderEvent(event models.OrderEvent) error
}

// publishEvent sends event if a publisher is configured. Delivery failures
// are logged and never undo the committed change.
func publishEvent(publisher EventPublisher, event models.OrderEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.PublishOrderEvent(event); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", event.Type, event.OrderNumber, err)
		return
	}
	log.Printf("Published %s event for order %s", event.Type, event.OrderNumber)
}
