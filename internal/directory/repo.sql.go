package directory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homeward-pm/homeward/internal/shared"
)

// Repository implements RepositoryPort over PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository over the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

// ListCompanies lists companies, optionally restricted to the given IDs.
func (r *Repository) ListCompanies(ctx context.Context, ids []int64) ([]Company, error) {
	query := `SELECT id, name, created_at, updated_at FROM companies WHERE deleted_at IS NULL`
	args := []any{}
	if ids != nil {
		query += ` AND id = ANY($1)`
		args = append(args, ids)
	}
	query += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Company{}
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListPortfolios lists portfolios, optionally restricted to the given IDs.
func (r *Repository) ListPortfolios(ctx context.Context, ids []int64) ([]Portfolio, error) {
	query := `SELECT id, company_id, name, created_at, updated_at FROM portfolios WHERE deleted_at IS NULL`
	args := []any{}
	if ids != nil {
		query += ` AND id = ANY($1)`
		args = append(args, ids)
	}
	query += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Portfolio{}
	for rows.Next() {
		var p Portfolio
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListProperties lists properties, optionally restricted to the given IDs.
func (r *Repository) ListProperties(ctx context.Context, ids []int64) ([]Property, error) {
	query := `SELECT id, company_id, portfolio_id, name, address, created_at, updated_at FROM properties WHERE deleted_at IS NULL`
	args := []any{}
	if ids != nil {
		query += ` AND id = ANY($1)`
		args = append(args, ids)
	}
	query += ` ORDER BY name`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetCompany fetches one company by ID.
func (r *Repository) GetCompany(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM companies WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Company{}, shared.ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

// GetPortfolio fetches one portfolio by ID.
func (r *Repository) GetPortfolio(ctx context.Context, id int64) (Portfolio, error) {
	var p Portfolio
	err := r.pool.QueryRow(ctx,
		`SELECT id, company_id, name, created_at, updated_at FROM portfolios WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(&p.ID, &p.CompanyID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Portfolio{}, shared.ErrNotFound
		}
		return Portfolio{}, err
	}
	return p, nil
}

// GetProperty fetches one property by ID.
func (r *Repository) GetProperty(ctx context.Context, id int64) (Property, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, company_id, portfolio_id, name, address, created_at, updated_at FROM properties WHERE id = $1 AND deleted_at IS NULL`, id)
	p, err := scanProperty(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Property{}, shared.ErrNotFound
		}
		return Property{}, err
	}
	return p, nil
}

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	var portfolioID pgtype.Int8
	if err := row.Scan(&p.ID, &p.CompanyID, &portfolioID, &p.Name, &p.Address, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Property{}, err
	}
	if portfolioID.Valid {
		p.PortfolioID = portfolioID.Int64
	}
	return p, nil
}
