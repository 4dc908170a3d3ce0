package directory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/platform/httpx"
	"github.com/homeward-pm/homeward/internal/shared"
)

// Handler wires HTTP endpoints for the scope-filtered directory.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers directory routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/companies", h.handleListCompanies)
	r.Get("/companies/{id}", h.handleGetCompany)
	r.Get("/portfolios", h.handleListPortfolios)
	r.Get("/portfolios/{id}", h.handleGetPortfolio)
	r.Get("/properties", h.handleListProperties)
	r.Get("/properties/{id}", h.handleGetProperty)
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	companies, err := h.service.ListCompanies(r.Context(), principal)
	if err != nil {
		h.logger.Error("list companies", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	writeListing(w, r, companies)
}

func (h *Handler) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	portfolios, err := h.service.ListPortfolios(r.Context(), principal)
	if err != nil {
		h.logger.Error("list portfolios", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	writeListing(w, r, portfolios)
}

func (h *Handler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	properties, err := h.service.ListProperties(r.Context(), principal)
	if err != nil {
		h.logger.Error("list properties", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	writeListing(w, r, properties)
}

func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	h.serveGet(w, r, func(principal authz.Principal, id int64) (any, error) {
		return h.service.GetCompany(r.Context(), principal, id)
	})
}

func (h *Handler) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	h.serveGet(w, r, func(principal authz.Principal, id int64) (any, error) {
		return h.service.GetPortfolio(r.Context(), principal, id)
	})
}

func (h *Handler) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	h.serveGet(w, r, func(principal authz.Principal, id int64) (any, error) {
		return h.service.GetProperty(r.Context(), principal, id)
	})
}

type listingResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

// writeListing pages a scope-filtered result set. Scope filtering happens
// before paging, so page numbers are stable for a given principal.
func writeListing[T any](w http.ResponseWriter, r *http.Request, items []T) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	p := shared.NewPagination(page, perPage, len(items))

	start := (p.Page - 1) * p.PerPage
	if start > len(items) {
		start = len(items)
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	httpx.JSON(w, http.StatusOK, listingResponse[T]{Data: items[start:end], Pagination: p})
}

// serveGet handles the shared shape of single-entity reads. Denied and
// missing entities produce the same 404 so scope probing reveals nothing.
func (h *Handler) serveGet(w http.ResponseWriter, r *http.Request, fetch func(authz.Principal, int64) (any, error)) {
	principal, ok := authz.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	entity, err := fetch(principal, id)
	if err != nil {
		if errors.Is(err, ErrDenied) || errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "")
			return
		}
		h.logger.Error("directory get", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entity)
}
