package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/internal/repository"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/metrics"
)

// Emitter records domain events for asynchronous delivery.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type EventService struct {
	outboxRepo repository.OutboxRepository
	metrics    *metrics.Metrics
}

func NewEventService(outboxRepo repository.OutboxRepository, metrics *metrics.Metrics) *EventService {
	return &EventService{
		outboxRepo: outboxRepo,
		metrics:    metrics,
	}
}

// Emit writes the event to the outbox. The outbox processor publishes it later.
func (s *EventService) Emit(ctx context.Context, eventType string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payloadJSON,
	}

	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.metrics.OutboxEventsRecorded.WithLabelValues(eventType, "error").Inc()
		return fmt.Errorf("failed to create outbox event: %w", err)
	}

	s.metrics.OutboxEventsRecorded.WithLabelValues(eventType, "success").Inc()
	return nil
}
