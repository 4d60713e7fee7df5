// Package store defines the transactional persistence contract of the draft engine and
// an in-memory implementation of it.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/tierdraft/go/internal/models"
)

var ErrDivisionNotFound = errors.New("division not found")

// Tx is a unit of work over one or more divisions. Divisions returned by GetDivision are
// working copies; changes only persist through the Update and Append calls and only once
// the surrounding WithinTx returns nil.
type Tx interface {
	GetDivision(ctx context.Context, id uuid.UUID) (*models.Division, error)
	UpdateDivision(ctx context.Context, div *models.Division) error
	UpdateTeam(ctx context.Context, divisionID uuid.UUID, team *models.Team) error
	AppendTrade(ctx context.Context, divisionID uuid.UUID, trade models.Trade) error
}

// Store loads and saves Division aggregates with all-or-nothing semantics.
type Store interface {
	// WithinTx runs fn in a transaction. An error from fn rolls every write back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// GetDivision reads the last committed state of a division.
	GetDivision(ctx context.Context, id uuid.UUID) (*models.Division, error)
	// CreateDivision inserts a new division with its teams.
	CreateDivision(ctx context.Context, div *models.Division) error
}
