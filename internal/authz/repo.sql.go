package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homeward-pm/homeward/internal/shared"
)

// GraphRepository implements Graph over PostgreSQL.
type GraphRepository struct {
	pool *pgxpool.Pool
}

// NewGraphRepository constructs a repository over the given pool.
func NewGraphRepository(pool *pgxpool.Pool) *GraphRepository {
	return &GraphRepository{pool: pool}
}

var _ Graph = (*GraphRepository)(nil)

// PortfoliosOfCompany returns the portfolio IDs owned by a company.
func (r *GraphRepository) PortfoliosOfCompany(ctx context.Context, companyID int64) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT id FROM portfolios WHERE company_id = $1 AND deleted_at IS NULL`, companyID)
}

// PropertiesOfCompany returns the property IDs owned by a company.
func (r *GraphRepository) PropertiesOfCompany(ctx context.Context, companyID int64) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT id FROM properties WHERE company_id = $1 AND deleted_at IS NULL`, companyID)
}

// PropertiesOfPortfolio returns the property IDs inside a portfolio.
func (r *GraphRepository) PropertiesOfPortfolio(ctx context.Context, portfolioID int64) ([]int64, error) {
	return r.queryIDs(ctx, `SELECT id FROM properties WHERE portfolio_id = $1 AND deleted_at IS NULL`, portfolioID)
}

// CompanyOfPortfolio resolves a portfolio to its owning company.
func (r *GraphRepository) CompanyOfPortfolio(ctx context.Context, portfolioID int64) (int64, error) {
	var companyID int64
	err := r.pool.QueryRow(ctx, `SELECT company_id FROM portfolios WHERE id = $1 AND deleted_at IS NULL`, portfolioID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return companyID, nil
}

// CompanyOfProperty resolves a property to its owning company.
func (r *GraphRepository) CompanyOfProperty(ctx context.Context, propertyID int64) (int64, error) {
	var companyID int64
	err := r.pool.QueryRow(ctx, `SELECT company_id FROM properties WHERE id = $1 AND deleted_at IS NULL`, propertyID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return companyID, nil
}

// ActiveEdges returns the scope IDs of active assignment edges.
func (r *GraphRepository) ActiveEdges(ctx context.Context, principalID int64, kind EdgeKind, scope EntityType) ([]int64, error) {
	return r.queryIDs(ctx,
		`SELECT scope_id FROM assignments WHERE user_id = $1 AND kind = $2 AND scope_type = $3 AND status = 'active'`,
		principalID, string(kind), string(scope))
}

func (r *GraphRepository) queryIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
