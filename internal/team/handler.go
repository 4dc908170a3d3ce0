package team

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/homeward-pm/homeward/internal/assignment"
	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/platform/httpx"
	"github.com/homeward-pm/homeward/internal/shared"
)

// Handler wires HTTP endpoints for team membership and assignments.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers team routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/members", h.handleListMembers)
	r.Get("/members/{id}", h.handleGetMember)
	r.Post("/portfolios/{id}/assignments", h.scopedAssign(authz.EntityPortfolio))
	r.Delete("/portfolios/{id}/assignments/{userID}", h.scopedRemove(authz.EntityPortfolio))
	r.Post("/properties/{id}/assignments", h.scopedAssign(authz.EntityProperty))
	r.Delete("/properties/{id}/assignments/{userID}", h.scopedRemove(authz.EntityProperty))
	r.Post("/portfolios/{id}/move-properties", h.handleMoveProperties)
}

type assignRequest struct {
	UserID int64  `json:"user_id" validate:"required"`
	Kind   string `json:"kind" validate:"required,oneof=managed assigned"`
}

type assignmentResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	ScopeType string `json:"scope_type"`
	ScopeID   int64  `json:"scope_id"`
	Kind      string `json:"kind"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
}

func toAssignmentResponse(a assignment.Assignment) assignmentResponse {
	return assignmentResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		ScopeType: string(a.ScopeType),
		ScopeID:   a.ScopeID,
		Kind:      string(a.Kind),
		Status:    string(a.Status),
		StartDate: a.StartDate.Format("2006-01-02"),
	}
}

func (h *Handler) scopedAssign(scopeType authz.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authz.PrincipalFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		scopeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid scope id")
			return
		}
		var req assignRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}

		created, err := h.service.Assign(r.Context(), actor, AssignInput{
			UserID:         req.UserID,
			ScopeType:      scopeType,
			ScopeID:        scopeID,
			Kind:           authz.EdgeKind(req.Kind),
			IdempotencyKey: r.Header.Get("Idempotency-Key"),
		})
		if err != nil {
			h.respondAssignmentError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, toAssignmentResponse(created))
	}
}

func (h *Handler) scopedRemove(scopeType authz.EntityType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := authz.PrincipalFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		scopeID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid scope id")
			return
		}
		userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
			return
		}
		kind := r.URL.Query().Get("kind")
		if kind == "" {
			kind = string(authz.EdgeAssigned)
		}
		if kind != string(authz.EdgeAssigned) && kind != string(authz.EdgeManaged) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid kind")
			return
		}

		closed, err := h.service.Remove(r.Context(), actor, AssignInput{
			UserID:    userID,
			ScopeType: scopeType,
			ScopeID:   scopeID,
			Kind:      authz.EdgeKind(kind),
		})
		if err != nil {
			h.respondAssignmentError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toAssignmentResponse(closed))
	}
}

type moveRequest struct {
	ToPortfolioID int64   `json:"to_portfolio_id" validate:"required"`
	PropertyIDs   []int64 `json:"property_ids" validate:"required,min=1,dive,required"`
}

type moveResponse struct {
	Moved  []int64           `json:"moved"`
	Failed []moveFailureItem `json:"failed"`
}

type moveFailureItem struct {
	PropertyID int64  `json:"property_id"`
	Reason     string `json:"reason"`
}

func (h *Handler) handleMoveProperties(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	fromPortfolioID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid portfolio id")
		return
	}
	var req moveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.MoveProperties(r.Context(), actor, req.PropertyIDs, fromPortfolioID, req.ToPortfolioID)
	if err != nil {
		h.respondAssignmentError(w, err)
		return
	}
	resp := moveResponse{Moved: result.Moved, Failed: []moveFailureItem{}}
	if resp.Moved == nil {
		resp.Moved = []int64{}
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, moveFailureItem{PropertyID: f.PropertyID, Reason: f.Reason})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	members, err := h.service.ListMembers(r.Context(), actor)
	if err != nil {
		h.logger.Error("list members", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMemberResponses(members))
}

func (h *Handler) handleGetMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	memberID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	member, err := h.service.GetMember(r.Context(), actor, memberID)
	if err != nil {
		if errors.Is(err, ErrDenied) || errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("get member", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toMemberResponse(member))
}

type memberResponse struct {
	ID        int64    `json:"id"`
	CompanyID int64    `json:"company_id,omitempty"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
}

func toMemberResponse(m Member) memberResponse {
	roles := make([]string, len(m.Roles))
	for i, role := range m.Roles {
		roles[i] = string(role)
	}
	return memberResponse{ID: m.ID, CompanyID: m.CompanyID, Name: m.Name, Email: m.Email, Roles: roles}
}

func toMemberResponses(members []Member) []memberResponse {
	out := make([]memberResponse, len(members))
	for i, m := range members {
		out[i] = toMemberResponse(m)
	}
	return out
}

func (h *Handler) respondAssignmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, assignment.ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, assignment.ErrCrossCompany):
		httpx.Problem(w, http.StatusConflict, "Conflict", "user and scope belong to different companies")
	case errors.Is(err, assignment.ErrAlreadyAssigned):
		httpx.Problem(w, http.StatusConflict, "Conflict", "already assigned")
	case errors.Is(err, assignment.ErrNotAssigned):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no active assignment")
	case errors.Is(err, assignment.ErrInvalidScope):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "request already processed")
	case errors.Is(err, ErrLocked):
		httpx.Problem(w, http.StatusConflict, "Conflict", "concurrent update in progress")
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	default:
		h.logger.Error("assignment operation", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
