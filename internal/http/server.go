// Package http serves the fintrack JSON API: ledger writes and reads,
// budgets, recurring templates and monthly insights.
package http

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
)

const (
	requestTimeout       = 7 * time.Second
	categoryCacheSize    = 500
	categoryCacheTTL     = 5 * time.Minute
	cacheCleanupInterval = 10 * time.Minute
)

type (
	TransactionAPI interface {
		Create(ctx context.Context, t core.Transaction) (int64, error)
		Update(ctx context.Context, t core.Transaction) error
		Delete(ctx context.Context, userID, id int64) error
		Get(ctx context.Context, userID, id int64) (core.Transaction, error)
		List(ctx context.Context, userID int64, month core.Month) ([]core.Transaction, error)
		Recent(ctx context.Context, userID int64, limit int) ([]core.Transaction, error)
		Overview(ctx context.Context, userID int64, month core.Month) (core.MonthOverview, error)
		Categories(ctx context.Context, userID int64) ([]string, error)
	}

	BudgetAPI interface {
		Set(ctx context.Context, userID int64, category string, limit core.Money) (core.Budget, error)
		Delete(ctx context.Context, userID, id int64) error
		Status(ctx context.Context, userID int64, month core.Month) ([]core.BudgetStatus, error)
	}

	RecurringAPI interface {
		CreateTemplate(ctx context.Context, rt core.RecurringTransaction) (int64, error)
		ListTemplates(ctx context.Context, userID int64) ([]core.RecurringTransaction, error)
		DeleteTemplate(ctx context.Context, userID, id int64) error
	}

	InsightAPI interface {
		Build(ctx context.Context, userID int64, month core.Month) (core.InsightDigest, error)
	}
)

// Dependencies are the services behind the API. Ready, when set, is probed
// by /readyz.
type Dependencies struct {
	Transactions TransactionAPI
	Budgets      BudgetAPI
	Recurring    RecurringAPI
	Insights     InsightAPI
	Ready        func(ctx context.Context) error
	Logger       *log.Logger
	RateLimit    ratelimit.Config
}

type appMetrics struct {
	uptime      time.Time
	writes      int64
	cacheHits   int64
	cacheMisses int64
}

type Server struct {
	http.Server

	transactions TransactionAPI
	budgets      BudgetAPI
	recurring    RecurringAPI
	insights     InsightAPI
	ready        func(ctx context.Context) error
	logger       *log.Logger

	categoryCache    *cache.LRUCache[[]string]
	cacheManager     *cache.Manager
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware and returns a server ready to
// ListenAndServe on addr.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	limits := deps.RateLimit
	if limits.RequestsPerMinute == 0 {
		limits = ratelimit.DefaultConfig()
	}

	s := &Server{
		transactions:     deps.Transactions,
		budgets:          deps.Budgets,
		recurring:        deps.Recurring,
		insights:         deps.Insights,
		ready:            deps.Ready,
		logger:           logger.WithComponent(log.ComponentHTTP),
		categoryCache:    cache.NewLRUCache[[]string](categoryCacheSize, categoryCacheTTL),
		cacheManager:     cache.NewManager(),
		rateLimiter:      ratelimit.NewLimiter(limits),
		securityDetector: security.NewDetector(),
		traceMiddleware:  trace.NewMiddleware(),
		appMetrics:       &appMetrics{uptime: time.Now()},
		now:              time.Now,
	}
	s.cacheManager.Register(s.categoryCache)
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/transactions/recent", s.handleRecentTransactions)
	mux.HandleFunc("/api/transactions/{id}", s.handleTransaction)
	mux.HandleFunc("/api/overview", s.handleOverview)
	mux.HandleFunc("/api/categories", s.handleCategories)
	mux.HandleFunc("/api/budgets", s.handleBudgets)
	mux.HandleFunc("/api/budgets/{id}", s.handleBudget)
	mux.HandleFunc("/api/insights", s.handleInsights)
	mux.HandleFunc("/api/recurring", s.handleRecurringTemplates)
	mux.HandleFunc("/api/recurring/{id}", s.handleRecurringTemplate)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	})(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = log.Middleware(logger, trace.RequestID, s.securityDetector.ExtractClientIP)(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Shutdown stops background cleanup and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func categoryCacheKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *Server) invalidateCategories(userID int64) {
	s.categoryCache.Delete(categoryCacheKey(userID))
}

// writeError renders err and logs server-side failures with the request's
// logger.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	resp := errorFor(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, operation, nil)
	}
	resp.Write(w)
}
