package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/models"
)

// Memory is a Store held in process memory. A single writer lock serializes transactions.
type Memory struct {
	writeMu sync.Mutex

	mu        sync.RWMutex
	divisions map[uuid.UUID]*models.Division
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{divisions: make(map[uuid.UUID]*models.Division)}
}

func (m *Memory) CreateDivision(_ context.Context, div *models.Division) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.divisions[div.ID]; exists {
		return fmt.Errorf("division %s already exists", div.ID)
	}
	m.divisions[div.ID] = div.Clone()
	return nil
}

func (m *Memory) GetDivision(_ context.Context, id uuid.UUID) (*models.Division, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	div, ok := m.divisions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDivisionNotFound, id)
	}
	return div.Clone(), nil
}

func (m *Memory) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	tx := &memoryTx{
		store:   m,
		working: make(map[uuid.UUID]*models.Division),
		dirty:   make(map[uuid.UUID]*models.Division),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, div := range tx.dirty {
		m.divisions[id] = div.Clone()
	}
	return nil
}

type memoryTx struct {
	store   *Memory
	working map[uuid.UUID]*models.Division
	dirty   map[uuid.UUID]*models.Division
}

func (tx *memoryTx) GetDivision(ctx context.Context, id uuid.UUID) (*models.Division, error) {
	if div, ok := tx.working[id]; ok {
		return div, nil
	}
	div, err := tx.store.GetDivision(ctx, id)
	if err != nil {
		return nil, err
	}
	tx.working[id] = div
	return div, nil
}

func (tx *memoryTx) UpdateDivision(_ context.Context, div *models.Division) error {
	w, ok := tx.working[div.ID]
	if !ok {
		return fmt.Errorf("%w: %s was not loaded in this transaction", ErrDivisionNotFound, div.ID)
	}
	teams, trades := w.Teams, w.Trades
	*w = *div
	w.Teams, w.Trades = teams, trades
	tx.dirty[div.ID] = w
	return nil
}

func (tx *memoryTx) UpdateTeam(_ context.Context, divisionID uuid.UUID, team *models.Team) error {
	w, ok := tx.working[divisionID]
	if !ok {
		return fmt.Errorf("%w: %s was not loaded in this transaction", ErrDivisionNotFound, divisionID)
	}
	for i, t := range w.Teams {
		if t.ID == team.ID {
			if t != team {
				w.Teams[i] = team.Clone()
			}
			tx.dirty[divisionID] = w
			return nil
		}
	}
	return fmt.Errorf("team %s is not in division %s", team.ID, divisionID)
}

func (tx *memoryTx) AppendTrade(_ context.Context, divisionID uuid.UUID, trade models.Trade) error {
	w, ok := tx.working[divisionID]
	if !ok {
		return fmt.Errorf("%w: %s was not loaded in this transaction", ErrDivisionNotFound, divisionID)
	}
	// the engine may already have appended to the working copy it holds
	for _, existing := range w.Trades {
		if existing.ID == trade.ID {
			tx.dirty[divisionID] = w
			return nil
		}
	}
	w.Trades = append(w.Trades, trade.Clone())
	tx.dirty[divisionID] = w
	return nil
}
