package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/daybook-app/daybook/internal/journal"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/server/models"
	"github.com/daybook-app/daybook/internal/server/services"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// EntryBackend is the slice of the entry service the handlers need.
type EntryBackend interface {
	Upsert(ctx context.Context, userID string, c journal.Candidate) (journal.Outcome, *models.Entry, *journal.ValidationError, error)
	Push(ctx context.Context, userID, deviceID string, candidates []journal.Candidate) ([]services.PushResult, error)
}

// QueryBackend serves read-only lookups.
type QueryBackend interface {
	ForUserDate(ctx context.Context, userID string, date journal.Date) (*models.Entry, error)
	Flashbacks(ctx context.Context, userID string, date journal.Date) (services.Flashbacks, error)
}

// UserBackend handles the magic-link account flow.
type UserBackend interface {
	RequestMagicLink(ctx context.Context, email string) (string, error)
	ConsumeMagicLink(ctx context.Context, token string) (string, error)
}

// Server wires the HTTP surface to the application services.
type Server struct {
	addr      string
	logger    logging.Logger
	entries   EntryBackend
	queries   QueryBackend
	users     UserBackend
	jwtSecret []byte
	validate  *validator.Validate
}

func NewServer(addr string, logger logging.Logger, entries EntryBackend, queries QueryBackend, users UserBackend, jwtSecret string) *Server {
	return &Server{
		addr:      addr,
		logger:    logger,
		entries:   entries,
		queries:   queries,
		users:     users,
		jwtSecret: []byte(jwtSecret),
		validate:  validator.New(),
	}
}

// Router builds the route table. Exposed for handler tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/api/ping", s.handlePing).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/magic-link/request", s.handleMagicLinkRequest).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/magic-link/consume", s.handleMagicLinkConsume).Methods(http.MethodPost)

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/api/sync/push", s.handlePush).Methods(http.MethodPost)
	authed.HandleFunc("/api/entries/upsert", s.handleUpsert).Methods(http.MethodPost)
	authed.HandleFunc("/api/entries/{date}", s.handleGetEntry).Methods(http.MethodGet)
	authed.HandleFunc("/api/flashbacks/{date}", s.handleFlashbacks).Methods(http.MethodGet)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info(ctx, "http server listening", "addr", s.addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
