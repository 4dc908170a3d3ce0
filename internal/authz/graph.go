package authz

import "context"

// Graph is the read-only view over ownership and assignment relationships
// that scope resolution traverses. Implementations execute against the
// persistence layer; the engine only defines the query shapes it needs.
//
// A decision is made from a single consistent read. Implementations must not
// cache results between calls within one resolution.
type Graph interface {
	// PortfoliosOfCompany returns the portfolio IDs owned by a company.
	PortfoliosOfCompany(ctx context.Context, companyID int64) ([]int64, error)
	// PropertiesOfCompany returns the property IDs owned by a company,
	// including properties without a portfolio link.
	PropertiesOfCompany(ctx context.Context, companyID int64) ([]int64, error)
	// PropertiesOfPortfolio returns the property IDs inside a portfolio.
	PropertiesOfPortfolio(ctx context.Context, portfolioID int64) ([]int64, error)
	// CompanyOfPortfolio resolves a portfolio to its owning company.
	// Returns shared.ErrNotFound when the portfolio does not exist.
	CompanyOfPortfolio(ctx context.Context, portfolioID int64) (int64, error)
	// CompanyOfProperty resolves a property to its owning company.
	// Returns shared.ErrNotFound when the property does not exist.
	CompanyOfProperty(ctx context.Context, propertyID int64) (int64, error)
	// ActiveEdges returns the scope IDs of active assignment edges held by
	// a principal for the given kind and scope type.
	ActiveEdges(ctx context.Context, principalID int64, kind EdgeKind, scope EntityType) ([]int64, error)
}
