package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jonathan/hiredoor/internal/api"
	"github.com/jonathan/hiredoor/internal/auth"
	"github.com/jonathan/hiredoor/internal/config"
	"github.com/jonathan/hiredoor/internal/logger"
	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/observability"
	"github.com/jonathan/hiredoor/internal/prefs"
	"github.com/jonathan/hiredoor/internal/tracker"
)

// loginReturnKey remembers the command that hit an expired session.
const loginReturnKey = "login"

// openBrowser opens url in the user's browser. Tests replace it.
var openBrowser = func(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// now is the clock used for derived dates. Tests replace it.
var now = time.Now

// app holds the services shared by every command.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	prefs    *prefs.Store
	session  *auth.Session
	client   *api.Client
	notifier notify.Notifier
	printer  *observability.Printer
	out      io.Writer
	errOut   io.Writer

	tracker *tracker.Store

	expireOnce sync.Once
	expired    atomic.Bool
}

type runFunc func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error

// withApp builds the app for one command run and closes it afterwards.
func withApp(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		a, err := newApp(ctx, cmd, args)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(ctx, a, cmd, args)
	}
}

func newApp(ctx context.Context, cmd *cobra.Command, args []string) (*app, error) {
	if err := config.ReadFile(v, cfgFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(cmd.ErrOrStderr(), cfg.Verbose)
	store, err := prefs.Open(ctx, cfg.DataDir)
	if err != nil {
		return nil, err
	}

	session := auth.NewSession(auth.Config{
		ClientID:     cfg.Auth.ClientID,
		AuthURL:      cfg.Auth.AuthURL,
		TokenURL:     cfg.Auth.TokenURL,
		RedirectPort: cfg.Auth.RedirectPort,
		Scopes:       cfg.Auth.Scopes,
	}, store, log)

	a := &app{
		cfg:      cfg,
		log:      log,
		prefs:    store,
		session:  session,
		notifier: notify.NewWriter(cmd.ErrOrStderr()),
		printer:  observability.NewPrinter(cmd.OutOrStdout()),
		out:      cmd.OutOrStdout(),
		errOut:   cmd.ErrOrStderr(),
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	commandLine := strings.Join(append([]string{cmd.CommandPath()}, args...), " ")

	a.client, err = api.NewClient(api.Options{
		BaseURL:     cfg.APIURL,
		TokenSource: session,
		Limiter:     rate.NewLimiter(limit, max(cfg.Burst, 1)),
		Logger:      log,
		OnUnauthorized: func() {
			a.expireSession(ctx, commandLine)
		},
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.tracker = tracker.NewStore(a.client, a.notifier, tracker.WithClock(now))
	return a, nil
}

// Close releases the local store.
func (a *app) Close() {
	if err := a.prefs.Close(); err != nil {
		a.log.Warn("failed to close preferences", "error", err)
	}
}

// errSessionExpired stops a command once the backend has rejected its session.
var errSessionExpired = errors.New("session expired: run `hiredoor login` to sign in again")

// expireSession forgets a session the backend rejected and remembers where the
// user was so login can point back to it. Only the first rejection per run acts.
func (a *app) expireSession(ctx context.Context, commandLine string) {
	a.expireOnce.Do(func() {
		a.expired.Store(true)
		if err := a.session.SignOut(ctx); err != nil {
			a.log.Warn("failed to clear session", "error", err)
		}
		if err := a.prefs.SetReturnPath(ctx, loginReturnKey, commandLine); err != nil {
			a.log.Warn("failed to save return path", "error", err)
		}
		notify.Info(a.notifier, "Your session has expired. Run `hiredoor login` to sign in again.")
	})
}

// requireUser returns the signed-in user and records them with the backend once per session.
func (a *app) requireUser(ctx context.Context) (*auth.User, error) {
	user, err := a.session.CurrentUser(ctx)
	if errors.Is(err, auth.ErrNotSignedIn) {
		a.log.Debug("no usable session", "error", err)
		return nil, fmt.Errorf("not signed in: run `hiredoor login` first")
	}
	if err != nil {
		return nil, err
	}
	if err := a.session.SyncUser(ctx, a.client); err != nil {
		a.log.Warn("failed to sync user", "error", err)
	}
	if a.expired.Load() {
		return nil, errSessionExpired
	}
	return user, nil
}

//nolint:errcheck // terminal output; nothing to recover
func (a *app) println(format string, args ...any) {
	fmt.Fprintf(a.out, format+"\n", args...)
}
