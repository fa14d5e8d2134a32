// Package cli is the interactive journal front end: a small REPL that
// drives the reconciliation service.
package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/daybook-app/daybook/internal/client/client"
	"github.com/daybook-app/daybook/internal/client/config"
	"github.com/daybook-app/daybook/internal/client/services"
	"github.com/daybook-app/daybook/internal/logging"
	"github.com/daybook-app/daybook/internal/timex"
)

type App struct {
	config  *config.Config
	journal *services.JournalService
	repos   *client.Repositories
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	repos, err := client.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	journal := services.NewJournalService(apiClient, repos.Records, repos.Metadata, timex.SystemClock{}, logger)

	return &App{
		config:  c,
		journal: journal,
		repos:   repos,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.repos.DB.Close()

	// Opportunistic catch-up before the first prompt; offline is fine.
	a.trySync(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, scanner, a.out)
}
