// Package worker turns entry events into journal rows.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/ledger"
)

// EntryReader fetches the current state of an entry.
type EntryReader interface {
	GetByID(ctx context.Context, id int64) (core.EntryView, error)
}

// JournalAppender writes one row per exported entry.
type JournalAppender interface {
	AppendEntry(ctx context.Context, view core.EntryView) error
}

// ExportWorker consumes entry events and appends added entries to the
// journal. The journal is append-only, so edit and delete events are
// only logged.
type ExportWorker struct {
	entries EntryReader
	journal JournalAppender
	logger  *slog.Logger
}

func NewExportWorker(entries EntryReader, journal JournalAppender, logger *slog.Logger) *ExportWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportWorker{entries: entries, journal: journal, logger: logger}
}

// HandleEntryEvent processes one event. Returning an error requeues the
// event, so unrecoverable conditions (entry already deleted, ignored
// ops) are swallowed after logging.
func (w *ExportWorker) HandleEntryEvent(ctx context.Context, event *amqp.EntryEvent) error {
	switch event.Op {
	case amqp.OpAdd:
		return w.exportEntry(ctx, event.EntryID)
	case amqp.OpEdit, amqp.OpDelete:
		w.logger.InfoContext(ctx, "Ignoring event for append-only journal",
			"op", event.Op, "entry_id", event.EntryID)
		return nil
	default:
		w.logger.WarnContext(ctx, "Unknown entry event op", "op", event.Op)
		return nil
	}
}

func (w *ExportWorker) exportEntry(ctx context.Context, id int64) error {
	view, err := w.entries.GetByID(ctx, id)
	if errors.Is(err, ledger.ErrNotFound) {
		// Deleted between the event and now. Nothing to export.
		w.logger.InfoContext(ctx, "Entry gone before export", "entry_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch entry %d: %w", id, err)
	}

	if err := w.journal.AppendEntry(ctx, view); err != nil {
		return fmt.Errorf("append entry %d: %w", id, err)
	}
	return nil
}
