package assignment

import (
	"context"
	"time"

	"github.com/homeward-pm/homeward/internal/authz"
)

// RepositoryPort defines the persistence operations the manager needs.
type RepositoryPort interface {
	// Create inserts an active assignment. The storage layer enforces at
	// most one active edge per (user, scope type, scope, kind) tuple;
	// implementations translate that conflict into ErrAlreadyAssigned.
	Create(ctx context.Context, a Assignment) (Assignment, error)
	// FindActive returns the active edge for the tuple, or shared.ErrNotFound.
	FindActive(ctx context.Context, userID int64, scopeType authz.EntityType, scopeID int64, kind authz.EdgeKind) (Assignment, error)
	// Close transitions an edge out of active and stamps its end date.
	Close(ctx context.Context, id int64, status Status, endDate time.Time) error
	// UserCompany returns the home company of a user, or shared.ErrNotFound.
	UserCompany(ctx context.Context, userID int64) (int64, error)
	// MoveProperty reparents a property from one portfolio to another.
	// Returns shared.ErrNotFound when the property is not in the source
	// portfolio.
	MoveProperty(ctx context.Context, propertyID, fromPortfolioID, toPortfolioID, actorID int64) error
	// CompleteExpired transitions active edges whose end date has passed to
	// completed and returns how many were closed.
	CompleteExpired(ctx context.Context, now time.Time) (int64, error)
}
