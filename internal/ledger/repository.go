// Package ledger implements the budget book on top of the generic
// store: entries with a timestamp, category, description and signed
// value, plus the fixed category list.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/core"
	"budget/internal/store"
)

var (
	ErrNotFound         = errors.New("entry not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// EventPublisher receives a notification after every successful write.
// Publishing is best effort: a failed publish never fails the write.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, op string, entryID int64) error
}

type Repository struct {
	store  *store.Store
	events EventPublisher
	logger *slog.Logger
}

// New creates a Repository. events may be nil, in which case writes are
// not announced anywhere.
func New(s *store.Store, events EventPublisher, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{store: s, events: events, logger: logger}
}

// Categories is a point-in-time snapshot of the category table, loaded
// once per request so every entry in a response resolves names against
// the same state.
type Categories struct {
	byID map[int64]string
	list []core.Category
}

// Name resolves a category id against the snapshot.
func (c *Categories) Name(id int64) (string, bool) {
	name, ok := c.byID[id]
	return name, ok
}

// List returns the categories in name order.
func (c *Categories) List() []core.Category {
	return c.list
}

// Snapshot loads the current category table.
func (r *Repository) Snapshot(ctx context.Context) (*Categories, error) {
	rows, err := r.store.Select(ctx, store.TableCategories, []string{"id", "name"}, "ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	snap := &Categories{byID: make(map[int64]string)}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		snap.byID[c.ID] = c.Name
		snap.list = append(snap.list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return snap, nil
}

// Add inserts a new entry and returns its stored form with the category
// name resolved.
func (r *Repository) Add(ctx context.Context, in core.EntryInput) (core.EntryView, error) {
	if err := in.Validate(); err != nil {
		return core.EntryView{}, err
	}

	snap, err := r.Snapshot(ctx)
	if err != nil {
		return core.EntryView{}, err
	}
	if _, ok := snap.Name(in.CategoryID); !ok {
		return core.EntryView{}, fmt.Errorf("%w: %d", ErrCategoryNotFound, in.CategoryID)
	}

	id, err := r.store.Insert(ctx, store.TableEntries, map[string]any{
		"cat_id":      in.CategoryID,
		"dt":          in.At.ISO8601(),
		"description": in.Description,
		"value":       in.Value,
	})
	if err != nil {
		return core.EntryView{}, err
	}

	r.publish(ctx, "add", id)

	entry := core.Entry{
		ID:          id,
		CategoryID:  in.CategoryID,
		At:          in.At,
		Description: in.Description,
		Value:       in.Value,
	}
	return r.resolve(entry, snap), nil
}

// Edit overwrites every field of an existing entry. A missing id is
// reported as ErrNotFound.
func (r *Repository) Edit(ctx context.Context, id int64, in core.EntryInput) (core.EntryView, error) {
	if err := in.Validate(); err != nil {
		return core.EntryView{}, err
	}

	snap, err := r.Snapshot(ctx)
	if err != nil {
		return core.EntryView{}, err
	}
	if _, ok := snap.Name(in.CategoryID); !ok {
		return core.EntryView{}, fmt.Errorf("%w: %d", ErrCategoryNotFound, in.CategoryID)
	}
	if _, err := r.fetch(ctx, id); err != nil {
		return core.EntryView{}, err
	}

	err = r.store.Update(ctx, store.TableEntries,
		map[string]any{
			"cat_id":      in.CategoryID,
			"dt":          in.At.ISO8601(),
			"description": in.Description,
			"value":       in.Value,
		},
		map[string]any{"id": id})
	if err != nil {
		return core.EntryView{}, err
	}

	r.publish(ctx, "edit", id)

	entry := core.Entry{
		ID:          id,
		CategoryID:  in.CategoryID,
		At:          in.At,
		Description: in.Description,
		Value:       in.Value,
	}
	return r.resolve(entry, snap), nil
}

// Delete removes an entry. A missing id is reported as ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	n, err := r.store.Delete(ctx, store.TableEntries, map[string]any{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	r.publish(ctx, "delete", id)
	return nil
}

// GetByID returns a single entry with its category name resolved.
func (r *Repository) GetByID(ctx context.Context, id int64) (core.EntryView, error) {
	entry, err := r.fetch(ctx, id)
	if err != nil {
		return core.EntryView{}, err
	}
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return core.EntryView{}, err
	}
	return r.resolve(entry, snap), nil
}

// ListByRange returns every entry whose timestamp falls inside the
// inclusive [from, to] range, newest first. The bounds are canonical
// ISO-8601 strings produced by the repository itself; they are still
// passed through SanitizeTimestamp because the range clause cannot be
// parameter-bound by the generic store.
func (r *Repository) ListByRange(ctx context.Context, from, to core.Timestamp) ([]core.EntryView, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	clause := fmt.Sprintf(
		"WHERE datetime(dt) BETWEEN datetime('%s') AND datetime('%s') ORDER BY datetime(dt) DESC",
		store.SanitizeTimestamp(from.ISO8601()),
		store.SanitizeTimestamp(to.ISO8601()),
	)

	rows, err := r.store.Select(ctx, store.TableEntries,
		[]string{"id", "cat_id", "dt", "description", "value"}, clause)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := []core.EntryView{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, r.resolve(entry, snap))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return views, nil
}

// ListCategories returns the category table in name order.
func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	snap, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.list == nil {
		return []core.Category{}, nil
	}
	return snap.list, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.Entry, error) {
	var entry core.Entry
	var dt string
	if err := row.Scan(&entry.ID, &entry.CategoryID, &dt, &entry.Description, &entry.Value); err != nil {
		return core.Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	at, err := core.ParseTimestamp(dt)
	if err != nil {
		return core.Entry{}, fmt.Errorf("stored timestamp %q: %w", dt, err)
	}
	entry.At = at
	return entry, nil
}

func (r *Repository) fetch(ctx context.Context, id int64) (core.Entry, error) {
	rows, err := r.store.Select(ctx, store.TableEntries,
		[]string{"id", "cat_id", "dt", "description", "value"},
		fmt.Sprintf("WHERE id = %d", id))
	if err != nil {
		return core.Entry{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return core.Entry{}, fmt.Errorf("fetch entry: %w", err)
		}
		return core.Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return scanEntry(rows)
}

func (r *Repository) resolve(entry core.Entry, snap *Categories) core.EntryView {
	if name, ok := snap.Name(entry.CategoryID); ok {
		return entry.View(&name)
	}
	return entry.View(nil)
}

func (r *Repository) publish(ctx context.Context, op string, id int64) {
	if r.events == nil {
		return
	}
	if err := r.events.PublishEntryEvent(ctx, op, id); err != nil {
		r.logger.Error("Failed to publish entry event", "op", op, "id", id, "error", err)
	}
}
