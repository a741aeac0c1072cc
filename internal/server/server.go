// Package server exposes the lending-ops REST API: the lender catalog, the
// deal pipeline with its match grid, the task tracker and the content
// calendar.
package server

import (
	"context"
	"fmt"
	"net/http"

	"lending-ops/internal/airank"
	"lending-ops/internal/common/logger"
	"lending-ops/internal/common/observability"
	"lending-ops/internal/matching"
	"lending-ops/internal/models"
	"lending-ops/internal/notify"
	"lending-ops/internal/search"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// LenderCatalog is the slice of the lender store the API needs.
type LenderCatalog interface {
	List(ctx context.Context, loanType models.LoanType) ([]models.LenderRow, error)
	Get(ctx context.Context, loanType models.LoanType, id string) (models.LenderRow, error)
	Create(ctx context.Context, lender models.LenderRow) (models.LenderRow, error)
	Update(ctx context.Context, lender models.LenderRow) (models.LenderRow, error)
	Delete(ctx context.Context, loanType models.LoanType, id string) error
	SearchByName(ctx context.Context, loanType models.LoanType, term string) ([]models.LenderRow, error)
}

// CatalogSnapshots serves the cached active-lender snapshots the match grid
// evaluates against.
type CatalogSnapshots interface {
	ActiveCatalog(ctx context.Context, loanType models.LoanType) ([]models.LenderRow, error)
	Invalidate(ctx context.Context, loanType models.LoanType) error
}

// DealRepo is the slice of the deal store the API needs.
type DealRepo interface {
	Create(ctx context.Context, deal models.Deal) (models.Deal, error)
	Get(ctx context.Context, id string) (models.Deal, error)
	List(ctx context.Context, status models.DealStatus) ([]models.Deal, error)
	Update(ctx context.Context, deal models.Deal) (models.Deal, error)
	UpdateStatus(ctx context.Context, id string, status models.DealStatus) error
	Delete(ctx context.Context, id string) error
	AddStatement(ctx context.Context, st models.DealBankStatement) (models.DealBankStatement, error)
	ListStatements(ctx context.Context, dealID string) ([]models.DealBankStatement, error)
	AddFundingPosition(ctx context.Context, fp models.DealFundingPosition) (models.DealFundingPosition, error)
	ListFundingPositions(ctx context.Context, dealID string) ([]models.DealFundingPosition, error)
}

type TaskRepo interface {
	Create(ctx context.Context, task models.Task) (models.Task, error)
	Get(ctx context.Context, id string) (models.Task, error)
	List(ctx context.Context, status models.TaskStatus) ([]models.Task, error)
	Update(ctx context.Context, task models.Task) (models.Task, error)
	Delete(ctx context.Context, id string) error
}

type ContentRepo interface {
	Create(ctx context.Context, post models.ContentPost) (models.ContentPost, error)
	Get(ctx context.Context, id string) (models.ContentPost, error)
	List(ctx context.Context, status models.ContentStatus) ([]models.ContentPost, error)
	Update(ctx context.Context, post models.ContentPost) (models.ContentPost, error)
	Delete(ctx context.Context, id string) error
}

// Ranker orders qualifying lenders by fit. nil disables the AI ordering.
type Ranker interface {
	Rank(ctx context.Context, deal models.Deal, matches []matching.LenderMatch) ([]airank.RankedMatch, error)
}

// Notifier sends submission emails. nil disables submissions.
type Notifier interface {
	SendSubmission(ctx context.Context, deal models.Deal, lender models.LenderRow) (*notify.SubmissionResult, error)
}

// Searcher backs the catalog search box. nil falls back to Postgres ILIKE.
type Searcher interface {
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
	IndexLender(ctx context.Context, row models.LenderRow) error
	DeleteLender(ctx context.Context, loanType models.LoanType, id string) error
}

type Server struct {
	lenders  LenderCatalog
	catalog  CatalogSnapshots
	deals    DealRepo
	tasks    TaskRepo
	content  ContentRepo
	ranker   Ranker
	notifier Notifier
	searcher Searcher

	maxAIMatches int
	healthCheck  func(ctx context.Context) error
	obs          *observability.Observability
	log          logger.Logger
}

type Deps struct {
	Lenders  LenderCatalog
	Catalog  CatalogSnapshots
	Deals    DealRepo
	Tasks    TaskRepo
	Content  ContentRepo
	Ranker   Ranker
	Notifier Notifier
	Searcher Searcher

	MaxAIMatches int
	// HealthCheck pings the backing stores. nil makes /healthz report ok
	// unconditionally.
	HealthCheck   func(ctx context.Context) error
	Observability *observability.Observability
	Logger        logger.Logger
}

func New(deps Deps) *Server {
	maxMatches := deps.MaxAIMatches
	if maxMatches <= 0 {
		maxMatches = 6
	}
	return &Server{
		lenders:      deps.Lenders,
		catalog:      deps.Catalog,
		deals:        deps.Deals,
		tasks:        deps.Tasks,
		content:      deps.Content,
		ranker:       deps.Ranker,
		notifier:     deps.Notifier,
		searcher:     deps.Searcher,
		maxAIMatches: maxMatches,
		healthCheck:  deps.HealthCheck,
		obs:          deps.Observability,
		log:          deps.Logger,
	}
}

// Router mounts every API route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/lenders/{loanType}", func(r chi.Router) {
			r.Get("/", s.handleListLenders)
			r.Post("/", s.handleCreateLender)
			r.Get("/search", s.handleSearchLenders)
			r.Get("/{id}", s.handleGetLender)
			r.Put("/{id}", s.handleUpdateLender)
			r.Delete("/{id}", s.handleDeleteLender)
		})

		r.Route("/deals", func(r chi.Router) {
			r.Post("/", s.handleCreateDeal)
			r.Get("/", s.handleListDeals)
			r.Get("/{id}", s.handleGetDeal)
			r.Put("/{id}", s.handleUpdateDeal)
			r.Delete("/{id}", s.handleDeleteDeal)
			r.Post("/{id}/status", s.handleUpdateDealStatus)
			r.Post("/{id}/statements", s.handleAddStatement)
			r.Get("/{id}/statements", s.handleListStatements)
			r.Post("/{id}/funding-positions", s.handleAddFundingPosition)
			r.Get("/{id}/funding-positions", s.handleListFundingPositions)
			r.Get("/{id}/matches", s.handleDealMatches)
			r.Post("/{id}/ai-matches", s.handleDealAIMatches)
			r.Post("/{id}/submissions", s.handleDealSubmissions)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.handleCreateTask)
			r.Get("/", s.handleListTasks)
			r.Get("/{id}", s.handleGetTask)
			r.Put("/{id}", s.handleUpdateTask)
			r.Delete("/{id}", s.handleDeleteTask)
		})

		r.Route("/content", func(r chi.Router) {
			r.Post("/", s.handleCreateContent)
			r.Get("/", s.handleListContent)
			r.Get("/{id}", s.handleGetContent)
			r.Put("/{id}", s.handleUpdateContent)
			r.Delete("/{id}", s.handleDeleteContent)
		})
	})

	return r
}

// loanTypeSlugs maps the URL slug to the loan product. Product names carry
// spaces and punctuation, so routes use slugs.
var loanTypeSlugs = map[string]models.LoanType{
	"mca":          models.LoanTypeMCA,
	"business-loc": models.LoanTypeBusinessLOC,
	"term-loan":    models.LoanTypeTermLoan,
	"sba":          models.LoanTypeSBA,
	"dscr":         models.LoanTypeDSCR,
	"equipment":    models.LoanTypeEquipment,
	"fix-flip":     models.LoanTypeFixFlip,
	"cre":          models.LoanTypeCRE,
}

func loanTypeFromSlug(slug string) (models.LoanType, error) {
	if lt, ok := loanTypeSlugs[slug]; ok {
		return lt, nil
	}
	return "", fmt.Errorf("unknown loan type %q", slug)
}

func validLoanType(loanType models.LoanType) bool {
	for _, lt := range loanTypeSlugs {
		if lt == loanType {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		if err := s.healthCheck(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
