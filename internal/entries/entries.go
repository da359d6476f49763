// Package entries reacts to the host's "thread entry changed" notification:
// it decides the effective content format for the entry and persists the
// decision so later renders use the right path.
package entries

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/exedev/ticketmd/internal/config"
	"github.com/exedev/ticketmd/internal/detect"
	"github.com/exedev/ticketmd/internal/format"
)

// FormatStore persists the selected format per entry.
type FormatStore interface {
	GetFormat(ctx context.Context, id uuid.UUID) (format.Format, bool, error)
	SetFormat(ctx context.Context, id uuid.UUID, f format.Format, confidence int) error
}

// Repository is the Postgres-backed FormatStore.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetFormat(ctx context.Context, id uuid.UUID) (format.Format, bool, error) {
	var f string
	err := r.db.QueryRow(ctx,
		`SELECT format FROM entry_formats WHERE entry_id = $1`, id).Scan(&f)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get entry format: %w", err)
	}
	return format.Normalize(f), true, nil
}

func (r *Repository) SetFormat(ctx context.Context, id uuid.UUID, f format.Format, confidence int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO entry_formats (entry_id, format, confidence) VALUES ($1, $2, $3)
		ON CONFLICT (entry_id) DO UPDATE
		SET format = EXCLUDED.format, confidence = EXCLUDED.confidence, updated_at = now()
	`, id, string(f), confidence)
	if err != nil {
		return fmt.Errorf("set entry format: %w", err)
	}
	return nil
}

// MemFormatStore is an in-memory FormatStore for tests and standalone runs.
type MemFormatStore struct {
	mu      sync.RWMutex
	formats map[uuid.UUID]format.Format
}

func NewMemFormatStore() *MemFormatStore {
	return &MemFormatStore{formats: make(map[uuid.UUID]format.Format)}
}

func (m *MemFormatStore) GetFormat(_ context.Context, id uuid.UUID) (format.Format, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.formats[id]
	return f, ok, nil
}

func (m *MemFormatStore) SetFormat(_ context.Context, id uuid.UUID, f format.Format, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.formats[id] = f
	return nil
}

// Hook handles entry-changed notifications from the host.
type Hook struct {
	store   config.Store
	formats FormatStore
}

func NewHook(store config.Store, formats FormatStore) *Hook {
	return &Hook{store: store, formats: formats}
}

// EntryChanged selects the format for an entry's message (explicit choice
// wins over detection, detection over the configured default) and persists
// it. Returns the selected format.
func (h *Hook) EntryChanged(ctx context.Context, id uuid.UUID, message, explicit string) (format.Format, error) {
	settings, err := config.LoadSettings(ctx, h.store)
	if err != nil {
		return "", err
	}

	sel := format.NewSelector(settings.DefaultFormat, settings.AutoDetect, settings.Threshold)
	f := sel.Select(explicit, message)
	confidence := detect.Score(message)

	if err := h.formats.SetFormat(ctx, id, f, confidence); err != nil {
		return "", err
	}

	slog.Debug("entry format selected",
		"entry_id", id,
		"format", f,
		"confidence", confidence,
	)
	return f, nil
}
