package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/SumatiPandey/Doctor-Appointment/internal/email"
	"github.com/SumatiPandey/Doctor-Appointment/internal/model"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/messaging"
	"github.com/SumatiPandey/Doctor-Appointment/pkg/metrics"
)

const (
	statusSent    = "sent"
	statusFailed  = "failed"
	statusSkipped = "skipped"
)

// Service consumes published domain events and emails the affected person.
type Service struct {
	emailSvc email.Service
	broker   messaging.Subscriber
	channel  string
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewService(emailSvc email.Service, broker messaging.Subscriber, channel string, logger zerolog.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		emailSvc: emailSvc,
		broker:   broker,
		channel:  channel,
		logger:   logger.With().Str("component", "notification").Logger(),
		metrics:  metrics,
	}
}

// Run blocks until ctx is cancelled or the subscription ends.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info().Str("channel", s.channel).Msg("notification consumer started")

	err := messaging.Consume(ctx, s.broker, s.channel, s.Handle, func(err error) {
		s.logger.Error().Err(err).Msg("failed to handle event")
	})
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", s.channel, err)
	}

	s.logger.Info().Msg("notification consumer stopped")
	return nil
}

// Handle processes one published envelope. Events without a template are skipped.
func (s *Service) Handle(ctx context.Context, payload []byte) error {
	var envelope model.EventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("failed to decode envelope: %w", err)
	}

	tmpl, ok := templates[envelope.Type]
	if !ok {
		s.metrics.NotificationsSent.WithLabelValues(envelope.Type, statusSkipped).Inc()
		return nil
	}

	to, data, err := decodeRecipient(envelope)
	if err != nil {
		s.metrics.NotificationsSent.WithLabelValues(envelope.Type, statusFailed).Inc()
		return err
	}
	if to == "" {
		s.metrics.NotificationsSent.WithLabelValues(envelope.Type, statusSkipped).Inc()
		return nil
	}

	msg, err := render(tmpl, to, data)
	if err != nil {
		s.metrics.NotificationsSent.WithLabelValues(envelope.Type, statusFailed).Inc()
		return fmt.Errorf("failed to render %s: %w", envelope.Type, err)
	}

	if err := s.emailSvc.Send(ctx, msg); err != nil {
		s.metrics.NotificationsSent.WithLabelValues(envelope.Type, statusFailed).Inc()
		return fmt.Errorf("failed to send %s notification for event %s: %w", envelope.Type, envelope.ID, err)
	}

	s.metrics.NotificationsSent.WithLabelValues(envelope.Type, statusSent).Inc()
	s.logger.Debug().
		Str("event_id", envelope.ID.String()).
		Str("event_type", envelope.Type).
		Msg("notification sent")
	return nil
}

func decodeRecipient(envelope model.EventEnvelope) (string, interface{}, error) {
	switch envelope.Type {
	case model.EventDoctorProvisioned:
		var event model.DoctorEvent
		if err := json.Unmarshal(envelope.Payload, &event); err != nil {
			return "", nil, fmt.Errorf("failed to decode %s payload: %w", envelope.Type, err)
		}
		return event.Email, &event, nil
	default:
		var event model.AppointmentEvent
		if err := json.Unmarshal(envelope.Payload, &event); err != nil {
			return "", nil, fmt.Errorf("failed to decode %s payload: %w", envelope.Type, err)
		}
		return event.Patient.Email, &event, nil
	}
}

func render(tmpl *emailTemplate, to string, data interface{}) (*email.Message, error) {
	var subject, text, html bytes.Buffer
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return nil, err
	}
	if err := tmpl.text.Execute(&text, data); err != nil {
		return nil, err
	}
	if err := tmpl.html.Execute(&html, data); err != nil {
		return nil, err
	}

	return &email.Message{
		To:      to,
		Subject: subject.String(),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}
