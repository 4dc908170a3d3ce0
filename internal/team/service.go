package team

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homeward-pm/homeward/internal/assignment"
	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/shared"
)

const lockTTL = 10 * time.Second

// Service is the team-facing surface over the assignment manager and the
// member directory. Mutations are serialized per assignment tuple through a
// short redis lock so concurrent duplicates surface as ErrAlreadyAssigned
// instead of racing the unique index.
type Service struct {
	authorizer  *authz.Authorizer
	manager     *assignment.Manager
	repo        RepositoryPort
	idempotency *shared.IdempotencyStore
	redis       *redis.Client
	logger      *slog.Logger
}

// NewService constructs a Service. The idempotency store and redis client
// may be nil, which disables the respective guard.
func NewService(authorizer *authz.Authorizer, manager *assignment.Manager, repo RepositoryPort, idem *shared.IdempotencyStore, rdb *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		authorizer:  authorizer,
		manager:     manager,
		repo:        repo,
		idempotency: idem,
		redis:       rdb,
		logger:      logger,
	}
}

// AssignInput describes an assignment mutation.
type AssignInput struct {
	UserID         int64
	ScopeType      authz.EntityType
	ScopeID        int64
	Kind           authz.EdgeKind
	IdempotencyKey string
}

// Assign places a user into a portfolio or property after the rank
// guardrail: an actor never assigns someone who outranks them.
func (s *Service) Assign(ctx context.Context, actor authz.Principal, in AssignInput) (assignment.Assignment, error) {
	keyed := in.IdempotencyKey != "" && s.idempotency != nil
	if keyed {
		if err := s.idempotency.CheckAndInsert(ctx, in.IdempotencyKey, "team.assign"); err != nil {
			return assignment.Assignment{}, err
		}
	}

	created, err := s.assign(ctx, actor, in)
	if err != nil && keyed {
		// Failed attempts must stay retryable under the same key.
		if delErr := s.idempotency.Delete(context.WithoutCancel(ctx), in.IdempotencyKey); delErr != nil {
			s.logger.Warn("roll back idempotency key", slog.String("key", in.IdempotencyKey), slog.Any("error", delErr))
		}
	}
	return created, err
}

func (s *Service) assign(ctx context.Context, actor authz.Principal, in AssignInput) (assignment.Assignment, error) {
	unlock, err := s.lockTuple(ctx, in)
	if err != nil {
		return assignment.Assignment{}, err
	}
	defer unlock()

	member, err := s.repo.Get(ctx, in.UserID)
	if err != nil {
		return assignment.Assignment{}, err
	}
	if member.bestRank() < authz.HighestRank(actor) {
		return assignment.Assignment{}, assignment.ErrForbidden
	}

	return s.manager.Assign(ctx, actor, in.UserID, in.ScopeType, in.ScopeID, in.Kind)
}

// Remove closes the active assignment for the tuple.
func (s *Service) Remove(ctx context.Context, actor authz.Principal, in AssignInput) (assignment.Assignment, error) {
	unlock, err := s.lockTuple(ctx, in)
	if err != nil {
		return assignment.Assignment{}, err
	}
	defer unlock()

	return s.manager.Remove(ctx, actor, in.UserID, in.ScopeType, in.ScopeID, in.Kind)
}

// MoveProperties reparents properties between two portfolios of the same
// company, reporting per-property outcomes.
func (s *Service) MoveProperties(ctx context.Context, actor authz.Principal, propertyIDs []int64, fromPortfolioID, toPortfolioID int64) (assignment.MoveResult, error) {
	return s.manager.Move(ctx, actor, propertyIDs, fromPortfolioID, toPortfolioID)
}

// ListMembers returns the team members visible to the actor.
func (s *Service) ListMembers(ctx context.Context, actor authz.Principal) ([]Member, error) {
	perms := authz.EffectivePermissions(actor)
	if _, all := perms[authz.PermAll]; all {
		return s.repo.ListAll(ctx)
	}
	if _, ok := perms[authz.PermUserRead]; !ok {
		return []Member{}, nil
	}

	if actor.HasRole(authz.RoleCompanyAdmin) || actor.HasRole(authz.RoleCompanyOwner) {
		if actor.CompanyID == 0 {
			return []Member{}, nil
		}
		return s.repo.ListByCompany(ctx, actor.CompanyID)
	}

	seen := map[int64]struct{}{}
	members := []Member{}
	for _, entity := range []authz.EntityType{authz.EntityPortfolio, authz.EntityProperty} {
		scope, err := s.authorizer.Resolve(ctx, actor, entity)
		if err != nil {
			return nil, err
		}
		if scope.Len() == 0 {
			continue
		}
		batch, err := s.repo.ListAssigned(ctx, entity, scope.IDs())
		if err != nil {
			return nil, err
		}
		for _, m := range batch {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			members = append(members, m)
		}
	}
	return members, nil
}

// GetMember returns one member when the actor manages them. Denied lookups
// are indistinguishable from missing members at the HTTP layer.
func (s *Service) GetMember(ctx context.Context, actor authz.Principal, memberID int64) (Member, error) {
	member, err := s.repo.Get(ctx, memberID)
	if err != nil {
		return Member{}, err
	}
	ok, err := s.canManage(ctx, actor, member)
	if err != nil {
		return Member{}, err
	}
	if !ok {
		return Member{}, ErrDenied
	}
	return member, nil
}

func (s *Service) canManage(ctx context.Context, actor authz.Principal, member Member) (bool, error) {
	if actor.ID == member.ID {
		return true, nil
	}
	perms := authz.EffectivePermissions(actor)
	if _, all := perms[authz.PermAll]; all {
		return true, nil
	}
	if _, ok := perms[authz.PermUserRead]; !ok {
		return false, nil
	}
	if actor.HasRole(authz.RoleCompanyAdmin) || actor.HasRole(authz.RoleCompanyOwner) {
		return actor.CompanyID != 0 && actor.CompanyID == member.CompanyID, nil
	}
	return s.repo.SharesScope(ctx, actor.ID, member.ID)
}

// lockTuple serializes mutations for one assignment tuple. Lock loss on the
// happy path only shortens the guard window, so release errors are logged
// and dropped.
func (s *Service) lockTuple(ctx context.Context, in AssignInput) (func(), error) {
	if s.redis == nil {
		return func() {}, nil
	}
	key := shared.AssignmentLockKey(in.UserID, string(in.ScopeType), in.ScopeID, string(in.Kind))
	ok, err := s.redis.SetNX(ctx, key, "1", lockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := s.redis.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			s.logger.Warn("release assignment lock", slog.String("key", key), slog.Any("error", err))
		}
	}, nil
}
