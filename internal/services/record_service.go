// Package services orchestrates the command path: validation, the
// record store write, and the async change notification.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/command"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

// RecordService forwards validated commands to the record store and
// publishes a change message per successful write. Publish failures are
// logged, never surfaced: the store write already succeeded and the
// export worker catches up on the next message.
type RecordService struct {
	store      store.Store
	amqpClient *amqp.Client
}

func NewRecordService(st store.Store, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		store:      st,
		amqpClient: amqpClient,
	}
}

// RecordService satisfies command.Writer so an edit session can submit
// through it directly.
var _ command.Writer = (*RecordService)(nil)

// Submit validates the draft and issues a create, or an update when the
// session is editing a record.
func (s *RecordService) Submit(ctx context.Context, userID string, session *command.Session, d command.Draft) (string, error) {
	return session.Submit(ctx, s, userID, d)
}

func (s *RecordService) Create(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	id, err := s.store.Create(ctx, userID, tx)
	if err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}
	s.publishChange(ctx, userID, id, amqp.ChangeCreate)
	return id, nil
}

func (s *RecordService) Update(ctx context.Context, userID, id string, tx core.Transaction) error {
	if err := s.store.Update(ctx, userID, id, tx); err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	s.publishChange(ctx, userID, id, amqp.ChangeUpdate)
	return nil
}

func (s *RecordService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.publishChange(ctx, userID, id, amqp.ChangeDelete)
	return nil
}

func (s *RecordService) publishChange(ctx context.Context, userID, id string, kind amqp.ChangeKind) {
	if s.amqpClient == nil {
		return
	}
	msg := amqp.NewRecordChangeMessage(userID, id, kind)
	if err := s.amqpClient.PublishRecordChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"record_id", id,
			"kind", kind,
			"error", err)
	}
}

// Close releases the AMQP connection and the store when it owns one.
func (s *RecordService) Close() error {
	var errs []error

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}
