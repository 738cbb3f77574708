package service

import (
	"context"

	"voicepad-be/internal/pkg/logger"
	"voicepad-be/pkg/events"
	pktNats "voicepad-be/pkg/nats"
)

// EventDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type EventDelivery interface {
	Broadcast(payload interface{})
}

// EventPushService relays bus events (TASK_CREATED, NOTE_CREATED, VOICE_*)
// to every connected client so open tabs refresh their lists live.
type EventPushService struct {
	subscriber *pktNats.Subscriber
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewEventPushService(sub *pktNats.Subscriber, delivery EventDelivery, log logger.ILogger) *EventPushService {
	return &EventPushService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *EventPushService) Start() {
	err := s.subscriber.Subscribe("events.>", "event-push-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("EventPushService", "Failed to start event subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("EventPushService", "Event push service started, listening to events.>", nil)
}

func (s *EventPushService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("EventPushService", "Relaying event", map[string]interface{}{"type": event.EventType()})

	if s.delivery != nil {
		s.delivery.Broadcast(map[string]interface{}{
			"type":        "event",
			"event_type":  event.EventType(),
			"data":        event.Payload(),
			"occurred_at": event.Timestamp(),
		})
	}
	return nil
}
