package team

import (
	"context"

	"github.com/homeward-pm/homeward/internal/authz"
)

// RepositoryPort defines the directory reads the service needs.
type RepositoryPort interface {
	// Get returns one member with roles, or shared.ErrNotFound.
	Get(ctx context.Context, id int64) (Member, error)
	// ListAll returns every active member across companies.
	ListAll(ctx context.Context) ([]Member, error)
	// ListByCompany returns the active members of one company.
	ListByCompany(ctx context.Context, companyID int64) ([]Member, error)
	// ListAssigned returns members holding an active assignment in any of
	// the given scopes.
	ListAssigned(ctx context.Context, scopeType authz.EntityType, scopeIDs []int64) ([]Member, error)
	// SharesScope reports whether the member holds an active assignment
	// inside a scope the manager actively manages.
	SharesScope(ctx context.Context, managerID, memberID int64) (bool, error)
}
