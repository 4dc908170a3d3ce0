package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/shared"
)

type graphKey struct {
	principalID int64
	kind        authz.EdgeKind
	scope       authz.EntityType
}

type fakeGraph struct {
	companyByPortfolio map[int64]int64
	companyByProperty  map[int64]int64
	portfolioProps     map[int64][]int64
	edges              map[graphKey][]int64
}

func (g *fakeGraph) PortfoliosOfCompany(ctx context.Context, companyID int64) ([]int64, error) {
	var ids []int64
	for id, c := range g.companyByPortfolio {
		if c == companyID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (g *fakeGraph) PropertiesOfCompany(ctx context.Context, companyID int64) ([]int64, error) {
	var ids []int64
	for id, c := range g.companyByProperty {
		if c == companyID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (g *fakeGraph) PropertiesOfPortfolio(ctx context.Context, portfolioID int64) ([]int64, error) {
	return g.portfolioProps[portfolioID], nil
}

func (g *fakeGraph) CompanyOfPortfolio(ctx context.Context, portfolioID int64) (int64, error) {
	if c, ok := g.companyByPortfolio[portfolioID]; ok {
		return c, nil
	}
	return 0, shared.ErrNotFound
}

func (g *fakeGraph) CompanyOfProperty(ctx context.Context, propertyID int64) (int64, error) {
	if c, ok := g.companyByProperty[propertyID]; ok {
		return c, nil
	}
	return 0, shared.ErrNotFound
}

func (g *fakeGraph) ActiveEdges(ctx context.Context, principalID int64, kind authz.EdgeKind, scope authz.EntityType) ([]int64, error) {
	return g.edges[graphKey{principalID, kind, scope}], nil
}

type tupleKey struct {
	userID    int64
	scopeType authz.EntityType
	scopeID   int64
	kind      authz.EdgeKind
}

type fakeRepo struct {
	companies map[int64]int64
	active    map[tupleKey]Assignment
	closed    []Assignment
	propPortfolio map[int64]int64
	moveErr   error
	nextID    int64
	expired   int64
}

func (r *fakeRepo) Create(ctx context.Context, a Assignment) (Assignment, error) {
	key := tupleKey{a.UserID, a.ScopeType, a.ScopeID, a.Kind}
	if _, ok := r.active[key]; ok {
		return Assignment{}, ErrAlreadyAssigned
	}
	r.nextID++
	a.ID = r.nextID
	if r.active == nil {
		r.active = make(map[tupleKey]Assignment)
	}
	r.active[key] = a
	return a, nil
}

func (r *fakeRepo) FindActive(ctx context.Context, userID int64, scopeType authz.EntityType, scopeID int64, kind authz.EdgeKind) (Assignment, error) {
	if a, ok := r.active[tupleKey{userID, scopeType, scopeID, kind}]; ok {
		return a, nil
	}
	return Assignment{}, shared.ErrNotFound
}

func (r *fakeRepo) Close(ctx context.Context, id int64, status Status, endDate time.Time) error {
	for key, a := range r.active {
		if a.ID == id {
			a.Status = status
			a.EndDate = &endDate
			r.closed = append(r.closed, a)
			delete(r.active, key)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *fakeRepo) UserCompany(ctx context.Context, userID int64) (int64, error) {
	if c, ok := r.companies[userID]; ok {
		return c, nil
	}
	return 0, shared.ErrNotFound
}

func (r *fakeRepo) MoveProperty(ctx context.Context, propertyID, fromPortfolioID, toPortfolioID, actorID int64) error {
	if r.moveErr != nil {
		return r.moveErr
	}
	if r.propPortfolio[propertyID] != fromPortfolioID {
		return shared.ErrNotFound
	}
	r.propPortfolio[propertyID] = toPortfolioID
	return nil
}

func (r *fakeRepo) CompleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.expired, nil
}

type fakeAudit struct {
	logs []shared.AuditLog
}

func (a *fakeAudit) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func newTestManager(graph *fakeGraph, repo *fakeRepo) (*Manager, *fakeAudit) {
	audit := &fakeAudit{}
	authorizer := authz.NewAuthorizer(authz.NewResolver(graph))
	return NewManager(authorizer, graph, repo, audit, nil), audit
}

func defaultFixture() (*fakeGraph, *fakeRepo) {
	graph := &fakeGraph{
		companyByPortfolio: map[int64]int64{7: 4, 8: 4, 30: 3},
		companyByProperty:  map[int64]int64{10: 4, 11: 4, 70: 3},
		portfolioProps:     map[int64][]int64{7: {10, 11}, 30: {70}},
		edges:              map[graphKey][]int64{},
	}
	repo := &fakeRepo{
		companies:     map[int64]int64{5: 4, 6: 3, 9: 4},
		active:        map[tupleKey]Assignment{},
		propPortfolio: map[int64]int64{10: 7, 11: 7, 70: 30},
	}
	return graph, repo
}

func adminActor() authz.Principal {
	return authz.Principal{ID: 1, CompanyID: 4, Roles: []authz.Role{authz.RoleCompanyAdmin}}
}

func TestAssignCreatesActiveEdge(t *testing.T) {
	graph, repo := defaultFixture()
	manager, audit := newTestManager(graph, repo)

	created, err := manager.Assign(context.Background(), adminActor(), 5, authz.EntityProperty, 10, authz.EdgeManaged)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if created.Status != StatusActive || created.ID == 0 {
		t.Fatalf("unexpected assignment %+v", created)
	}
	if created.AssignedBy != 1 {
		t.Fatalf("expected actor recorded, got %d", created.AssignedBy)
	}
	if len(audit.logs) != 1 || audit.logs[0].Action != "team.assigned" {
		t.Fatalf("expected audit entry, got %+v", audit.logs)
	}
}

func TestAssignIsIdempotent(t *testing.T) {
	graph, repo := defaultFixture()
	manager, _ := newTestManager(graph, repo)
	actor := adminActor()

	if _, err := manager.Assign(context.Background(), actor, 5, authz.EntityProperty, 10, authz.EdgeManaged); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	_, err := manager.Assign(context.Background(), actor, 5, authz.EntityProperty, 10, authz.EdgeManaged)
	if !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
	if len(repo.active) != 1 {
		t.Fatalf("expected a single active edge, got %d", len(repo.active))
	}
}

func TestAssignRejectsCrossCompany(t *testing.T) {
	graph, repo := defaultFixture()
	manager, _ := newTestManager(graph, repo)

	// User 5 belongs to company 4; property 70 belongs to company 3.
	_, err := manager.Assign(context.Background(), adminActor(), 5, authz.EntityProperty, 70, authz.EdgeManaged)
	if !errors.Is(err, ErrCrossCompany) {
		t.Fatalf("expected ErrCrossCompany, got %v", err)
	}

	// The boundary holds even for a system admin actor.
	sysadmin := authz.Principal{ID: 2, Roles: []authz.Role{authz.RoleSystemAdmin}}
	_, err = manager.Assign(context.Background(), sysadmin, 6, authz.EntityProperty, 10, authz.EdgeManaged)
	if !errors.Is(err, ErrCrossCompany) {
		t.Fatalf("expected ErrCrossCompany for system admin, got %v", err)
	}
}

func TestAssignDeniesActorWithoutScope(t *testing.T) {
	graph, repo := defaultFixture()
	manager, _ := newTestManager(graph, repo)

	// Portfolio manager without a managed edge to portfolio 7.
	actor := authz.Principal{ID: 3, CompanyID: 4, Roles: []authz.Role{authz.RolePortfolioManager}}
	_, err := manager.Assign(context.Background(), actor, 5, authz.EntityPortfolio, 7, authz.EdgeAssigned)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// With a managed edge the same call goes through.
	graph.edges[graphKey{3, authz.EdgeManaged, authz.EntityPortfolio}] = []int64{7}
	if _, err := manager.Assign(context.Background(), actor, 5, authz.EntityPortfolio, 7, authz.EdgeAssigned); err != nil {
		t.Fatalf("assign after granting edge: %v", err)
	}
}

func TestAssignUnknownScope(t *testing.T) {
	graph, repo := defaultFixture()
	manager, _ := newTestManager(graph, repo)

	_, err := manager.Assign(context.Background(), adminActor(), 5, authz.EntityProperty, 404, authz.EdgeManaged)
	if !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, err = manager.Assign(context.Background(), adminActor(), 5, authz.EntityCompany, 4, authz.EdgeManaged)
	if !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope, got %v", err)
	}
}

func TestRemoveWithoutActiveEdge(t *testing.T) {
	graph, repo := defaultFixture()
	manager, _ := newTestManager(graph, repo)

	_, err := manager.Remove(context.Background(), adminActor(), 5, authz.EntityPortfolio, 7, authz.EdgeManaged)
	if !errors.Is(err, ErrNotAssigned) {
		t.Fatalf("expected ErrNotAssigned, got %v", err)
	}
}

func TestRemoveClosesEdgeAndStampsEndDate(t *testing.T) {
	graph, repo := defaultFixture()
	manager, audit := newTestManager(graph, repo)
	actor := adminActor()

	if _, err := manager.Assign(context.Background(), actor, 5, authz.EntityPortfolio, 7, authz.EdgeAssigned); err != nil {
		t.Fatalf("assign: %v", err)
	}
	removed, err := manager.Remove(context.Background(), actor, 5, authz.EntityPortfolio, 7, authz.EdgeAssigned)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Status != StatusRemoved || removed.EndDate == nil {
		t.Fatalf("unexpected removed edge %+v", removed)
	}
	if len(repo.active) != 0 {
		t.Fatalf("edge still active after removal")
	}
	if len(audit.logs) != 2 || audit.logs[1].Action != "team.removed" {
		t.Fatalf("expected removal audit entry, got %+v", audit.logs)
	}
}

func TestMovePartialFailure(t *testing.T) {
	graph, repo := defaultFixture()
	manager, _ := newTestManager(graph, repo)

	// Property 70 is not in portfolio 7, so it fails individually.
	result, err := manager.Move(context.Background(), adminActor(), []int64{10, 11, 70}, 7, 8)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if len(result.Moved) != 2 {
		t.Fatalf("expected two moved properties, got %v", result.Moved)
	}
	if len(result.Failed) != 1 || result.Failed[0].PropertyID != 70 {
		t.Fatalf("expected property 70 to fail, got %v", result.Failed)
	}
	if repo.propPortfolio[10] != 8 || repo.propPortfolio[11] != 8 {
		t.Fatalf("properties not reparented: %v", repo.propPortfolio)
	}
}

func TestMoveRejectsCrossCompanyPortfolios(t *testing.T) {
	graph, repo := defaultFixture()
	manager, _ := newTestManager(graph, repo)

	_, err := manager.Move(context.Background(), adminActor(), []int64{10}, 7, 30)
	if !errors.Is(err, ErrCrossCompany) {
		t.Fatalf("expected ErrCrossCompany, got %v", err)
	}
	if repo.propPortfolio[10] != 7 {
		t.Fatalf("property moved despite rejection")
	}
}

func TestMoveRequiresBothPortfolioScopes(t *testing.T) {
	graph, repo := defaultFixture()
	manager, _ := newTestManager(graph, repo)

	// Manager holds only the source portfolio.
	actor := authz.Principal{ID: 3, CompanyID: 4, Roles: []authz.Role{authz.RolePortfolioManager}}
	graph.edges[graphKey{3, authz.EdgeManaged, authz.EntityPortfolio}] = []int64{7}

	_, err := manager.Move(context.Background(), actor, []int64{10}, 7, 8)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	graph.edges[graphKey{3, authz.EdgeManaged, authz.EntityPortfolio}] = []int64{7, 8}
	result, err := manager.Move(context.Background(), actor, []int64{10}, 7, 8)
	if err != nil {
		t.Fatalf("move with both scopes: %v", err)
	}
	if len(result.Moved) != 1 {
		t.Fatalf("expected one moved property, got %v", result)
	}
}
