package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/otpnotes/internal/client/client"
	"github.com/dmitrijs2005/otpnotes/internal/client/config"
	"github.com/dmitrijs2005/otpnotes/internal/client/services"
	"github.com/dmitrijs2005/otpnotes/internal/client/session"
	"github.com/dmitrijs2005/otpnotes/internal/logging"

	_ "modernc.org/sqlite"
)

const signInHint = "Please sign in: type 'signin', or 'signup' if you need an account"

type App struct {
	config *config.Config
	log    logging.Logger

	client client.Client
	store  session.Store
	auth   *services.AuthFlow
	notes  *services.NotesScreen

	signedIn bool

	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires the REST client, the SQLite session store and the services
// from cfg. The session database is not touched until first use.
func NewApp(cfg *config.Config) (*App, error) {
	log, err := logging.NewTextLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(&http.Client{}, cfg.APIBaseURL, cfg.RequestTimeout)
	if err != nil {
		return nil, err
	}

	store := session.NewSQLiteStore(cfg.SessionDBPath)

	return newApp(cfg, log, apiClient, store, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newApp(cfg *config.Config, log logging.Logger, c client.Client, store session.Store, r *bufio.Reader, out io.Writer) *App {
	return &App{
		config: cfg,
		log:    log,
		client: c,
		store:  store,
		auth:   services.NewAuthFlow(c, store, log),
		notes:  services.NewNotesScreen(c, store, log),
		reader: r,
		out:    out,
	}
}

// Run opens the dashboard if a session is stored, otherwise asks the user to
// sign in, then serves commands until exit or end of input.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	fmt.Fprintln(a.out, "Welcome to otpnotes (type 'help' for commands)")
	a.log.Debug(ctx, "starting", "api", a.config.APIBaseURL, "session_db", a.config.SessionDBPath)

	if err := a.enterDashboard(ctx); err != nil {
		if !errors.Is(err, services.ErrNotAuthenticated) {
			a.log.Error(ctx, "could not open the dashboard", "error", err)
		}
		fmt.Fprintln(a.out, signInHint)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close(ctx context.Context) {
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.log.Warn(ctx, "closing session store", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.signedIn
}

func (a *App) getStatus() string {
	if !a.signedIn {
		return "(signed out)"
	}
	return fmt.Sprintf("(%s)", a.notes.User().Email)
}

// enterDashboard mounts the notes screen and greets the user.
func (a *App) enterDashboard(ctx context.Context) error {
	if err := a.notes.Mount(ctx); err != nil {
		a.signedIn = false
		return err
	}
	a.signedIn = true

	fmt.Fprintf(a.out, "Welcome, %s!\n", a.notes.User().Name)
	return nil
}

// alert shows err to the user the way the flow wants it phrased.
func (a *App) alert(err error) {
	fmt.Fprintln(a.out, services.AlertText(err))
}
