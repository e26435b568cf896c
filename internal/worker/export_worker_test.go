package worker

import (
	"context"
	"errors"
	"testing"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/ledger"
)

type fakeReader struct {
	views map[int64]core.EntryView
	err   error
}

func (r *fakeReader) GetByID(_ context.Context, id int64) (core.EntryView, error) {
	if r.err != nil {
		return core.EntryView{}, r.err
	}
	view, ok := r.views[id]
	if !ok {
		return core.EntryView{}, ledger.ErrNotFound
	}
	return view, nil
}

type fakeJournal struct {
	appended []core.EntryView
	err      error
}

func (j *fakeJournal) AppendEntry(_ context.Context, view core.EntryView) error {
	if j.err != nil {
		return j.err
	}
	j.appended = append(j.appended, view)
	return nil
}

func TestHandleEntryEventAdd(t *testing.T) {
	name := "Food"
	reader := &fakeReader{views: map[int64]core.EntryView{
		7: {ID: 7, Description: "Coffee", Value: -3.5,
			Category: core.CategoryView{ID: 1, Name: &name}},
	}}
	journal := &fakeJournal{}
	w := NewExportWorker(reader, journal, nil)

	if err := w.HandleEntryEvent(context.Background(), amqp.NewEntryEvent(amqp.OpAdd, 7)); err != nil {
		t.Fatalf("handle add: %v", err)
	}
	if len(journal.appended) != 1 || journal.appended[0].ID != 7 {
		t.Errorf("appended = %+v", journal.appended)
	}
}

func TestHandleEntryEventIgnoresEditAndDelete(t *testing.T) {
	journal := &fakeJournal{}
	w := NewExportWorker(&fakeReader{}, journal, nil)

	for _, op := range []string{amqp.OpEdit, amqp.OpDelete} {
		if err := w.HandleEntryEvent(context.Background(), amqp.NewEntryEvent(op, 7)); err != nil {
			t.Errorf("handle %s: %v", op, err)
		}
	}
	if len(journal.appended) != 0 {
		t.Errorf("journal should be untouched, got %+v", journal.appended)
	}
}

func TestHandleEntryEventEntryGone(t *testing.T) {
	w := NewExportWorker(&fakeReader{}, &fakeJournal{}, nil)

	// The entry was deleted before the worker got to the event. This
	// must not requeue.
	if err := w.HandleEntryEvent(context.Background(), amqp.NewEntryEvent(amqp.OpAdd, 404)); err != nil {
		t.Errorf("expected nil for vanished entry, got %v", err)
	}
}

func TestHandleEntryEventRetriableFailures(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		w := NewExportWorker(&fakeReader{err: errors.New("db locked")}, &fakeJournal{}, nil)
		if err := w.HandleEntryEvent(context.Background(), amqp.NewEntryEvent(amqp.OpAdd, 7)); err == nil {
			t.Error("expected error so the event is requeued")
		}
	})

	t.Run("append failure", func(t *testing.T) {
		reader := &fakeReader{views: map[int64]core.EntryView{7: {ID: 7}}}
		w := NewExportWorker(reader, &fakeJournal{err: errors.New("quota exceeded")}, nil)
		if err := w.HandleEntryEvent(context.Background(), amqp.NewEntryEvent(amqp.OpAdd, 7)); err == nil {
			t.Error("expected error so the event is requeued")
		}
	})
}
