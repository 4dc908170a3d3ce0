package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/shared"
)

// AuditRecorder persists assignment lifecycle audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Manager is the only engine component with write side effects. It creates
// and removes assignment edges, enforcing the same-company and no-duplicate
// invariants.
type Manager struct {
	authorizer *authz.Authorizer
	graph      authz.Graph
	repo       RepositoryPort
	audit      AuditRecorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewManager constructs a Manager.
func NewManager(authorizer *authz.Authorizer, graph authz.Graph, repo RepositoryPort, audit AuditRecorder, logger *slog.Logger) *Manager {
	return &Manager{
		authorizer: authorizer,
		graph:      graph,
		repo:       repo,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

// Assign creates an active edge placing a user in a portfolio or property.
func (m *Manager) Assign(ctx context.Context, actor authz.Principal, userID int64, scopeType authz.EntityType, scopeID int64, kind authz.EdgeKind) (Assignment, error) {
	if err := validateTuple(scopeType, kind); err != nil {
		return Assignment{}, err
	}

	scopeCompany, err := m.scopeCompany(ctx, scopeType, scopeID)
	if err != nil {
		return Assignment{}, err
	}
	userCompany, err := m.repo.UserCompany(ctx, userID)
	if err != nil {
		return Assignment{}, err
	}
	// Company boundaries hold regardless of the actor's own permissions.
	if userCompany != scopeCompany {
		return Assignment{}, ErrCrossCompany
	}

	if err := m.authorizeScope(ctx, actor, scopeType, scopeID); err != nil {
		return Assignment{}, err
	}

	if _, err := m.repo.FindActive(ctx, userID, scopeType, scopeID, kind); err == nil {
		return Assignment{}, ErrAlreadyAssigned
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Assignment{}, err
	}

	created, err := m.repo.Create(ctx, Assignment{
		UserID:     userID,
		AssignedBy: actor.ID,
		ScopeType:  scopeType,
		ScopeID:    scopeID,
		Kind:       kind,
		Status:     StatusActive,
		StartDate:  m.now().UTC(),
	})
	if err != nil {
		return Assignment{}, err
	}

	m.recordAudit(ctx, actor.ID, "team.assigned", scopeType, scopeID, map[string]any{
		"user_id":       userID,
		"kind":          string(kind),
		"assignment_id": created.ID,
	})
	return created, nil
}

// Remove transitions the active edge for the tuple to removed.
func (m *Manager) Remove(ctx context.Context, actor authz.Principal, userID int64, scopeType authz.EntityType, scopeID int64, kind authz.EdgeKind) (Assignment, error) {
	if err := validateTuple(scopeType, kind); err != nil {
		return Assignment{}, err
	}

	scopeCompany, err := m.scopeCompany(ctx, scopeType, scopeID)
	if err != nil {
		return Assignment{}, err
	}
	userCompany, err := m.repo.UserCompany(ctx, userID)
	if err != nil {
		return Assignment{}, err
	}
	if userCompany != scopeCompany {
		return Assignment{}, ErrCrossCompany
	}

	if err := m.authorizeScope(ctx, actor, scopeType, scopeID); err != nil {
		return Assignment{}, err
	}

	edge, err := m.repo.FindActive(ctx, userID, scopeType, scopeID, kind)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Assignment{}, ErrNotAssigned
		}
		return Assignment{}, err
	}

	endDate := m.now().UTC()
	if err := m.repo.Close(ctx, edge.ID, StatusRemoved, endDate); err != nil {
		return Assignment{}, err
	}
	edge.Status = StatusRemoved
	edge.EndDate = &endDate

	m.recordAudit(ctx, actor.ID, "team.removed", scopeType, scopeID, map[string]any{
		"user_id":       userID,
		"kind":          string(kind),
		"assignment_id": edge.ID,
	})
	return edge, nil
}

// Move reassigns properties from one portfolio to another within the same
// company. Each property succeeds or fails independently.
func (m *Manager) Move(ctx context.Context, actor authz.Principal, propertyIDs []int64, fromPortfolioID, toPortfolioID int64) (MoveResult, error) {
	fromCompany, err := m.graph.CompanyOfPortfolio(ctx, fromPortfolioID)
	if err != nil {
		return MoveResult{}, err
	}
	toCompany, err := m.graph.CompanyOfPortfolio(ctx, toPortfolioID)
	if err != nil {
		return MoveResult{}, err
	}
	if fromCompany != toCompany {
		return MoveResult{}, ErrCrossCompany
	}

	for _, portfolioID := range []int64{fromPortfolioID, toPortfolioID} {
		decision, err := m.authorizer.Authorize(ctx, actor, authz.PermPortfolioUpdate, authz.Resource{Type: authz.EntityPortfolio, ID: portfolioID})
		if err != nil {
			return MoveResult{}, err
		}
		if !decision.Allowed {
			return MoveResult{}, fmt.Errorf("%w: %s", ErrForbidden, decision.Reason)
		}
	}

	var result MoveResult
	for _, propertyID := range propertyIDs {
		err := m.repo.MoveProperty(ctx, propertyID, fromPortfolioID, toPortfolioID, actor.ID)
		switch {
		case err == nil:
			result.Moved = append(result.Moved, propertyID)
		case errors.Is(err, shared.ErrNotFound):
			result.Failed = append(result.Failed, MoveFailure{PropertyID: propertyID, Reason: "not in source portfolio"})
		default:
			if m.logger != nil {
				m.logger.Error("move property", slog.Int64("property_id", propertyID), slog.Any("error", err))
			}
			result.Failed = append(result.Failed, MoveFailure{PropertyID: propertyID, Reason: "storage error"})
		}
	}

	m.recordAudit(ctx, actor.ID, "property.moved", authz.EntityPortfolio, fromPortfolioID, map[string]any{
		"target_portfolio_id": toPortfolioID,
		"moved":               result.Moved,
		"failed":              len(result.Failed),
	})
	return result, nil
}

// CompleteExpired closes active edges whose end date has passed. Invoked by
// the background sweep job.
func (m *Manager) CompleteExpired(ctx context.Context) (int64, error) {
	return m.repo.CompleteExpired(ctx, m.now().UTC())
}

func (m *Manager) scopeCompany(ctx context.Context, scopeType authz.EntityType, scopeID int64) (int64, error) {
	switch scopeType {
	case authz.EntityPortfolio:
		return m.graph.CompanyOfPortfolio(ctx, scopeID)
	case authz.EntityProperty:
		return m.graph.CompanyOfProperty(ctx, scopeID)
	default:
		return 0, ErrInvalidScope
	}
}

func (m *Manager) authorizeScope(ctx context.Context, actor authz.Principal, scopeType authz.EntityType, scopeID int64) error {
	perm := authz.PermPortfolioAssign
	if scopeType == authz.EntityProperty {
		perm = authz.PermPropertyAssign
	}
	decision, err := m.authorizer.Authorize(ctx, actor, perm, authz.Resource{Type: scopeType, ID: scopeID})
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return fmt.Errorf("%w: %s", ErrForbidden, decision.Reason)
	}
	return nil
}

func (m *Manager) recordAudit(ctx context.Context, actorID int64, action string, scopeType authz.EntityType, scopeID int64, meta map[string]any) {
	if m.audit == nil {
		return
	}
	err := m.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   string(scopeType),
		EntityID: strconv.FormatInt(scopeID, 10),
		Meta:     meta,
		At:       m.now().UTC(),
	})
	if err != nil && m.logger != nil {
		m.logger.Error("record audit", slog.String("action", action), slog.Any("error", err))
	}
}

func validateTuple(scopeType authz.EntityType, kind authz.EdgeKind) error {
	if scopeType != authz.EntityPortfolio && scopeType != authz.EntityProperty {
		return ErrInvalidScope
	}
	if kind != authz.EdgeManaged && kind != authz.EdgeAssigned {
		return ErrInvalidScope
	}
	return nil
}
