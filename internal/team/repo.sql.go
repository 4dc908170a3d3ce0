package team

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homeward-pm/homeward/internal/authz"
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

const memberColumns = `u.id, u.company_id, u.name, u.email, u.is_active,
	COALESCE(array_agg(r.name) FILTER (WHERE r.name IS NOT NULL), '{}')`

// Get fetches one member with roles.
func (r *Repository) Get(ctx context.Context, id int64) (Member, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		WHERE u.id = $1
		GROUP BY u.id`, id)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Member{}, shared.ErrNotFound
		}
		return Member{}, err
	}
	return m, nil
}

// ListAll lists every active member.
func (r *Repository) ListAll(ctx context.Context) ([]Member, error) {
	return r.queryMembers(ctx, `
		SELECT `+memberColumns+`
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		WHERE u.is_active
		GROUP BY u.id
		ORDER BY u.name`)
}

// ListByCompany lists the active members of one company.
func (r *Repository) ListByCompany(ctx context.Context, companyID int64) ([]Member, error) {
	return r.queryMembers(ctx, `
		SELECT `+memberColumns+`
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		WHERE u.is_active AND u.company_id = $1
		GROUP BY u.id
		ORDER BY u.name`, companyID)
}

// ListAssigned lists members with an active assignment in any given scope.
func (r *Repository) ListAssigned(ctx context.Context, scopeType authz.EntityType, scopeIDs []int64) ([]Member, error) {
	return r.queryMembers(ctx, `
		SELECT `+memberColumns+`
		FROM users u
		JOIN assignments a ON a.user_id = u.id
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		LEFT JOIN roles r ON r.id = ur.role_id
		WHERE u.is_active
		  AND a.status = 'active'
		  AND a.scope_type = $1
		  AND a.scope_id = ANY($2)
		GROUP BY u.id
		ORDER BY u.name`, string(scopeType), scopeIDs)
}

// SharesScope reports whether the member sits inside a scope the manager
// actively manages.
func (r *Repository) SharesScope(ctx context.Context, managerID, memberID int64) (bool, error) {
	var shares bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM assignments mgr
			JOIN assignments mem
			  ON mem.scope_type = mgr.scope_type AND mem.scope_id = mgr.scope_id
			WHERE mgr.user_id = $1 AND mgr.kind = 'managed' AND mgr.status = 'active'
			  AND mem.user_id = $2 AND mem.status = 'active'
		)`, managerID, memberID).Scan(&shares)
	return shares, err
}

func (r *Repository) queryMembers(ctx context.Context, query string, args ...any) ([]Member, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := []Member{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	var companyID pgtype.Int8
	var roleNames []string
	if err := row.Scan(&m.ID, &companyID, &m.Name, &m.Email, &m.Active, &roleNames); err != nil {
		return Member{}, err
	}
	if companyID.Valid {
		m.CompanyID = companyID.Int64
	}
	m.Roles = make([]authz.Role, len(roleNames))
	for i, name := range roleNames {
		m.Roles[i] = authz.Role(name)
	}
	return m, nil
}
