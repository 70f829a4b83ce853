package portfolio

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"pricepeak/internal/model"
)

// MaxAllocation is the ceiling the manager keeps the total weight under.
const MaxAllocation = 100.0

// ResetAllocation is the allocation Reset restores.
var ResetAllocation = model.Portfolio{"Crude Oil": 50, "Gold": 50}

// Manager holds the current allocation with concurrency safety and mirrors
// every change to its Store.
type Manager struct {
	mu      sync.Mutex
	current model.Portfolio
	store   Store
	logger  *zap.Logger
}

// NewManager loads the saved allocation, or starts from initial when none exists.
func NewManager(ctx context.Context, store Store, initial model.Portfolio, logger *zap.Logger) (*Manager, error) {
	p, found, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	if !found {
		p = initial.Clone()
		logger.Info("no saved portfolio, using initial allocation", zap.Any("portfolio", p))
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	m := &Manager{current: p, store: store, logger: logger}
	if err := m.save(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns a copy of the current allocation.
func (m *Manager) Get() model.Portfolio {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Set changes one instrument's weight. When the new total would exceed 100
// the weight is reduced by the excess, never below zero.
func (m *Manager) Set(ctx context.Context, id string, weight float64) (model.Portfolio, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty instrument id", model.ErrInvalidParameter)
	}
	if weight < 0 || weight > MaxAllocation {
		return nil, fmt.Errorf("%w: weight %v out of [0,100]", model.ErrInvalidParameter, weight)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current.Clone()
	next[id] = weight
	if total := next.Total(); total > MaxAllocation {
		// The others may already exceed the ceiling after a Replace.
		next[id] = max(0, weight-(total-MaxAllocation))
	}
	return m.commit(ctx, next)
}

// Remove drops an instrument from the allocation.
func (m *Manager) Remove(ctx context.Context, id string) (model.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current.Clone()
	delete(next, id)
	return m.commit(ctx, next)
}

// Replace swaps in a whole allocation.
func (m *Manager) Replace(ctx context.Context, p model.Portfolio) (model.Portfolio, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit(ctx, p.Clone())
}

// Reset restores ResetAllocation.
func (m *Manager) Reset(ctx context.Context) (model.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commit(ctx, ResetAllocation.Clone())
}

func (m *Manager) commit(ctx context.Context, next model.Portfolio) (model.Portfolio, error) {
	prev := m.current
	m.current = next
	if err := m.save(ctx); err != nil {
		m.current = prev
		return nil, err
	}
	m.logger.Debug("portfolio updated", zap.Any("portfolio", next))
	return next.Clone(), nil
}

func (m *Manager) save(ctx context.Context) error {
	if err := m.store.Save(ctx, m.current); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}

func validate(p model.Portfolio) error {
	for id, w := range p {
		if id == "" {
			return fmt.Errorf("%w: empty instrument id", model.ErrInvalidParameter)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative weight %v for %s", model.ErrInvalidParameter, w, id)
		}
	}
	return nil
}
