package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/platform/db"
	"github.com/homeward-pm/homeward/internal/shared"
)

// uniqueViolation is the SQLSTATE raised by the partial unique index on
// active assignment tuples.
const uniqueViolation = "23505"

// Repository provides PostgreSQL backed persistence for assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

// Create inserts an active assignment edge. Two concurrent inserts for the
// same tuple race on the unique index; the loser observes a conflict which
// is reported as ErrAlreadyAssigned rather than a raw storage error.
func (r *Repository) Create(ctx context.Context, a Assignment) (Assignment, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO assignments (user_id, assigned_by, scope_type, scope_id, kind, status, start_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		a.UserID, a.AssignedBy, string(a.ScopeType), a.ScopeID, string(a.Kind), string(a.Status), a.StartDate, a.Notes,
	).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Assignment{}, ErrAlreadyAssigned
		}
		return Assignment{}, err
	}
	return a, nil
}

// FindActive returns the active edge for the tuple.
func (r *Repository) FindActive(ctx context.Context, userID int64, scopeType authz.EntityType, scopeID int64, kind authz.EdgeKind) (Assignment, error) {
	var (
		a       Assignment
		endDate *time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, assigned_by, scope_type, scope_id, kind, status, start_date, end_date, notes
		 FROM assignments
		 WHERE user_id = $1 AND scope_type = $2 AND scope_id = $3 AND kind = $4 AND status = 'active'`,
		userID, string(scopeType), scopeID, string(kind),
	).Scan(&a.ID, &a.UserID, &a.AssignedBy, &a.ScopeType, &a.ScopeID, &a.Kind, &a.Status, &a.StartDate, &endDate, &a.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Assignment{}, shared.ErrNotFound
		}
		return Assignment{}, err
	}
	a.EndDate = endDate
	return a, nil
}

// Close transitions an edge out of active and stamps its end date.
func (r *Repository) Close(ctx context.Context, id int64, status Status, endDate time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assignments SET status = $2, end_date = $3 WHERE id = $1 AND status = 'active'`,
		id, string(status), endDate)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UserCompany returns the home company of a user.
func (r *Repository) UserCompany(ctx context.Context, userID int64) (int64, error) {
	var companyID int64
	err := r.pool.QueryRow(ctx, `SELECT company_id FROM users WHERE id = $1 AND is_active`, userID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return companyID, nil
}

// MoveProperty reparents a property between portfolios of the same company.
// The property update and the portfolio touch timestamps land in one
// transaction so a half-applied move never becomes visible.
func (r *Repository) MoveProperty(ctx context.Context, propertyID, fromPortfolioID, toPortfolioID, actorID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE properties SET portfolio_id = $3, updated_by = $4, updated_at = NOW()
			 WHERE id = $1 AND portfolio_id = $2 AND deleted_at IS NULL`,
			propertyID, fromPortfolioID, toPortfolioID, actorID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE portfolios SET updated_at = NOW() WHERE id = ANY($1)`,
			[]int64{fromPortfolioID, toPortfolioID})
		return err
	})
}

// CompleteExpired closes active edges whose end date has passed.
func (r *Repository) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE assignments SET status = 'completed' WHERE status = 'active' AND end_date IS NOT NULL AND end_date < $1`,
		now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
