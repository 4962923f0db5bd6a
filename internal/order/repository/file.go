package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"delta-market/backend/internal/order/domain"
)

// FileRepository keeps the full order set in a single JSON file, one entry per
// order ID. Every mutation rewrites the file through a temp-file-then-rename
// so a crash mid-write never corrupts the last persisted state. A single mutex
// serializes writers.
type FileRepository struct {
	path string

	mu     sync.Mutex
	orders map[string]domain.Order
}

// NewFileRepository loads the order set from path, creating an empty set when
// the file does not exist yet.
func NewFileRepository(path string) (*FileRepository, error) {
	r := &FileRepository{path: path, orders: make(map[string]domain.Order)}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return r, nil
		}
		return nil, fmt.Errorf("orders file: read %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &r.orders); err != nil {
			return nil, fmt.Errorf("orders file: parse %s: %w", path, err)
		}
	}
	return r, nil
}

// Create persists a new order. Durable before return.
func (r *FileRepository) Create(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; ok {
		return domain.ErrOrderIDTaken
	}
	r.orders[o.ID] = *o
	if err := r.persistLocked(); err != nil {
		delete(r.orders, o.ID)
		return err
	}
	return nil
}

// GetByID returns the order for id, or nil if not found.
func (r *FileRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

// Complete transitions the order to completed. The mutex guarantees that two
// concurrent calls for the same id serialize and only one sees already=false.
func (r *FileRepository) Complete(ctx context.Context, id string, at time.Time) (*domain.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, false, domain.ErrOrderNotFound
	}
	if o.Status == domain.StatusCompleted {
		return &o, true, nil
	}
	prev := o
	o.Status = domain.StatusCompleted
	o.CompletedAt = &at
	r.orders[id] = o
	if err := r.persistLocked(); err != nil {
		r.orders[id] = prev
		return nil, false, err
	}
	return &o, false, nil
}

// Delete removes the order permanently.
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, id)
	if err := r.persistLocked(); err != nil {
		r.orders[id] = o
		return err
	}
	return nil
}

// List returns all orders.
func (r *FileRepository) List(ctx context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Order, 0, len(r.orders))
	for id := range r.orders {
		o := r.orders[id]
		out = append(out, &o)
	}
	return out, nil
}

// persistLocked rewrites the whole file atomically. Callers hold r.mu.
func (r *FileRepository) persistLocked() error {
	raw, err := json.MarshalIndent(r.orders, "", "  ")
	if err != nil {
		return fmt.Errorf("orders file: encode: %w", err)
	}
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".orders-*.json")
	if err != nil {
		return fmt.Errorf("orders file: temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("orders file: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("orders file: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("orders file: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("orders file: rename: %w", err)
	}
	return nil
}
