// Package worker consumes record-change messages and keeps the
// spreadsheet mirror in step with the record store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/store"
)

// RecordGetter fetches a single record; the change message only carries ids.
type RecordGetter interface {
	Get(ctx context.Context, userID, id string) (core.Transaction, error)
}

type ExportWorker struct {
	records RecordGetter
	mirror  export.Mirror
}

func NewExportWorker(records RecordGetter, mirror export.Mirror) *ExportWorker {
	return &ExportWorker{
		records: records,
		mirror:  mirror,
	}
}

// HandleChange processes one record-change message. Returning an error
// requeues the delivery, so handlers must be safe to retry.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.RecordChangeMessage) error {
	if err := msg.Valid(); err != nil {
		// Malformed messages would requeue forever; drop them loudly.
		slog.ErrorContext(ctx, "Dropping invalid change message", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Processing record change",
		"record_id", msg.RecordID,
		"kind", msg.Kind)

	if msg.Kind == amqp.ChangeDelete {
		if err := w.mirror.DeleteRecord(ctx, msg.RecordID); err != nil {
			return fmt.Errorf("mirror delete: %w", err)
		}
		return nil
	}

	tx, err := w.records.Get(ctx, msg.UserID, msg.RecordID)
	if errors.Is(err, store.ErrNotFound) {
		// The record was deleted before this message was handled; the
		// delete message follows, but clear the row now so a stale
		// update cannot resurrect it.
		slog.WarnContext(ctx, "Record gone before export, clearing mirror row",
			"record_id", msg.RecordID)
		if err := w.mirror.DeleteRecord(ctx, msg.RecordID); err != nil {
			return fmt.Errorf("mirror delete: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}

	switch msg.Kind {
	case amqp.ChangeCreate:
		if err := w.mirror.AppendRecord(ctx, tx); err != nil {
			return fmt.Errorf("mirror append: %w", err)
		}
	case amqp.ChangeUpdate:
		if err := w.mirror.UpdateRecord(ctx, tx); err != nil {
			return fmt.Errorf("mirror update: %w", err)
		}
	}
	return nil
}
