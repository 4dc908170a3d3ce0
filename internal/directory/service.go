package directory

import (
	"context"
	"errors"

	"github.com/homeward-pm/homeward/internal/authz"
)

// ErrDenied indicates the principal may not see the requested entity.
// Handlers fold it into the same response as a missing entity so callers
// cannot distinguish "hidden" from "absent".
var ErrDenied = errors.New("directory: access denied")

// RepositoryPort defines data access for the directory read models.
// A nil ID filter means no constraint.
type RepositoryPort interface {
	ListCompanies(ctx context.Context, ids []int64) ([]Company, error)
	ListPortfolios(ctx context.Context, ids []int64) ([]Portfolio, error)
	ListProperties(ctx context.Context, ids []int64) ([]Property, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	GetPortfolio(ctx context.Context, id int64) (Portfolio, error)
	GetProperty(ctx context.Context, id int64) (Property, error)
}

// Service serves company/portfolio/property listings constrained by the
// principal's resolved scope, instead of fetching everything and filtering
// in memory.
type Service struct {
	authorizer *authz.Authorizer
	repo       RepositoryPort
}

// NewService builds a Service instance.
func NewService(authorizer *authz.Authorizer, repo RepositoryPort) *Service {
	return &Service{authorizer: authorizer, repo: repo}
}

// ListCompanies returns the companies visible to the principal.
func (s *Service) ListCompanies(ctx context.Context, p authz.Principal) ([]Company, error) {
	scope, err := s.authorizer.Resolve(ctx, p, authz.EntityCompany)
	if err != nil {
		return nil, err
	}
	if scope.IsFull() {
		return s.repo.ListCompanies(ctx, nil)
	}
	if scope.Len() == 0 {
		return []Company{}, nil
	}
	return s.repo.ListCompanies(ctx, scope.IDs())
}

// ListPortfolios returns the portfolios visible to the principal.
func (s *Service) ListPortfolios(ctx context.Context, p authz.Principal) ([]Portfolio, error) {
	scope, err := s.authorizer.Resolve(ctx, p, authz.EntityPortfolio)
	if err != nil {
		return nil, err
	}
	if scope.IsFull() {
		return s.repo.ListPortfolios(ctx, nil)
	}
	if scope.Len() == 0 {
		return []Portfolio{}, nil
	}
	return s.repo.ListPortfolios(ctx, scope.IDs())
}

// ListProperties returns the properties visible to the principal.
func (s *Service) ListProperties(ctx context.Context, p authz.Principal) ([]Property, error) {
	scope, err := s.authorizer.Resolve(ctx, p, authz.EntityProperty)
	if err != nil {
		return nil, err
	}
	if scope.IsFull() {
		return s.repo.ListProperties(ctx, nil)
	}
	if scope.Len() == 0 {
		return []Property{}, nil
	}
	return s.repo.ListProperties(ctx, scope.IDs())
}

// GetProperty returns one property after an authorization check.
func (s *Service) GetProperty(ctx context.Context, p authz.Principal, id int64) (Property, error) {
	property, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return Property{}, err
	}
	if err := s.authorize(ctx, p, authz.PermPropertyRead, authz.Resource{Type: authz.EntityProperty, ID: id}); err != nil {
		return Property{}, err
	}
	return property, nil
}

// GetPortfolio returns one portfolio after an authorization check.
func (s *Service) GetPortfolio(ctx context.Context, p authz.Principal, id int64) (Portfolio, error) {
	portfolio, err := s.repo.GetPortfolio(ctx, id)
	if err != nil {
		return Portfolio{}, err
	}
	if err := s.authorize(ctx, p, authz.PermPortfolioRead, authz.Resource{Type: authz.EntityPortfolio, ID: id}); err != nil {
		return Portfolio{}, err
	}
	return portfolio, nil
}

// GetCompany returns one company after an authorization check.
func (s *Service) GetCompany(ctx context.Context, p authz.Principal, id int64) (Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if err := s.authorize(ctx, p, authz.PermCompanyRead, authz.Resource{Type: authz.EntityCompany, ID: id}); err != nil {
		return Company{}, err
	}
	return company, nil
}

func (s *Service) authorize(ctx context.Context, p authz.Principal, perm authz.Permission, res authz.Resource) error {
	decision, err := s.authorizer.Authorize(ctx, p, perm, res)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return ErrDenied
	}
	return nil
}
