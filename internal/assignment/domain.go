package assignment

import (
	"errors"
	"time"

	"github.com/homeward-pm/homeward/internal/authz"
)

// Status tracks the lifecycle of an assignment edge. Active edges transition
// to removed (explicit removal) or completed (task-scope closure); both are
// terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusRemoved   Status = "removed"
	StatusCompleted Status = "completed"
)

// Assignment is an edge between a principal and a portfolio or property.
type Assignment struct {
	ID         int64
	UserID     int64
	AssignedBy int64
	ScopeType  authz.EntityType
	ScopeID    int64
	Kind       authz.EdgeKind
	Status     Status
	StartDate  time.Time
	EndDate    *time.Time
	Notes      string
}

// MoveFailure reports one property that could not be moved.
type MoveFailure struct {
	PropertyID int64
	Reason     string
}

// MoveResult carries the per-item outcome of a portfolio-to-portfolio move.
type MoveResult struct {
	Moved  []int64
	Failed []MoveFailure
}

var (
	// ErrForbidden indicates the actor lacks the permission or scope to
	// perform the assignment operation.
	ErrForbidden = errors.New("assignment: actor not authorized")
	// ErrCrossCompany indicates the operation would cross a company boundary.
	ErrCrossCompany = errors.New("assignment: cross-company violation")
	// ErrAlreadyAssigned indicates an active edge already exists for the tuple.
	ErrAlreadyAssigned = errors.New("assignment: already assigned")
	// ErrNotAssigned indicates no active edge exists for the tuple.
	ErrNotAssigned = errors.New("assignment: not assigned")
	// ErrInvalidScope indicates the scope type or kind is outside the
	// closed enumeration.
	ErrInvalidScope = errors.New("assignment: invalid scope type or kind")
)
