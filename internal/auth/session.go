package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/jonathan/hiredoor/internal/logger"
	"github.com/jonathan/hiredoor/internal/prefs"
	"github.com/jonathan/hiredoor/internal/types"
)

// CallbackPath is the loopback path the identity provider redirects to.
const CallbackPath = "/callback"

// Config describes the identity provider.
type Config struct {
	ClientID     string
	AuthURL      string
	TokenURL     string
	RedirectPort int
	Scopes       []string
}

// Store persists the session between runs.
type Store interface {
	Session(ctx context.Context) (string, error)
	SetSession(ctx context.Context, blob string) error
	ClearSession(ctx context.Context) error
	SyncedUsers(ctx context.Context) (map[string]bool, error)
	MarkSynced(ctx context.Context, userID string, synced bool) error
}

// UserUpserter records the user with the backend.
type UserUpserter interface {
	UpsertUser(ctx context.Context, req types.UpsertUserRequest) (*types.UserResponse, error)
}

// Session holds the OAuth token of the signed-in user. It implements
// oauth2.TokenSource and refreshes expired tokens, persisting the result.
type Session struct {
	cfg   Config
	store Store
	log   *slog.Logger

	mu     sync.Mutex
	token  *oauth2.Token
	loaded bool
}

// NewSession creates a session backed by store.
func NewSession(cfg Config, store Store, log *slog.Logger) *Session {
	if log == nil {
		log = logger.Discard()
	}
	return &Session{cfg: cfg, store: store, log: log}
}

func (s *Session) oauthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: s.cfg.ClientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   s.cfg.AuthURL,
			TokenURL:  s.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirectURL,
		Scopes:      s.cfg.Scopes,
	}
}

func (s *Session) redirectURL(port int) string {
	return "http://127.0.0.1:" + strconv.Itoa(port) + CallbackPath
}

// load reads the persisted token once. Callers hold s.mu.
func (s *Session) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	blob, err := s.store.Session(ctx)
	if errors.Is(err, prefs.ErrNotFound) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal([]byte(blob), tok); err != nil {
		s.log.Warn("discarding unreadable session", "error", err)
		s.loaded = true
		return nil
	}
	s.token = tok
	s.loaded = true
	return nil
}

func (s *Session) save(ctx context.Context, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.store.SetSession(ctx, string(data)); err != nil {
		return err
	}
	s.token = tok
	s.loaded = true
	return nil
}

// Token returns a valid access token, refreshing it when expired.
func (s *Session) Token() (*oauth2.Token, error) {
	return s.TokenContext(context.Background())
}

// TokenContext is Token with an explicit context for storage and refresh calls.
func (s *Session) TokenContext(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	if s.token == nil || s.token.AccessToken == "" {
		return nil, ErrNotSignedIn
	}
	if s.token.Valid() {
		return s.token, nil
	}

	fresh, err := s.oauthConfig("").TokenSource(ctx, s.token).Token()
	if err != nil {
		// An unrefreshable session is as good as none: the user has to sign in again.
		return nil, fmt.Errorf("%w: failed to refresh session: %w", ErrNotSignedIn, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.token.RefreshToken
	}
	if err := s.save(ctx, fresh); err != nil {
		return nil, err
	}
	s.log.Debug("session refreshed", "expiry", fresh.Expiry)
	return fresh, nil
}

// IsAuthenticated reports whether a usable session exists.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	_, err := s.TokenContext(ctx)
	return err == nil
}

// CurrentUser returns the signed-in user, or ErrNotSignedIn.
func (s *Session) CurrentUser(ctx context.Context) (*User, error) {
	tok, err := s.TokenContext(ctx)
	if err != nil {
		return nil, err
	}
	return ParseUser(tok.AccessToken)
}

// AuthCodeURL returns the provider sign-in URL for a PKCE flow using verifier.
func (s *Session) AuthCodeURL(state, verifier string) string {
	return s.oauthConfig(s.redirectURL(s.cfg.RedirectPort)).
		AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
}

// SignIn exchanges an authorization code for a session and persists it.
func (s *Session) SignIn(ctx context.Context, code, verifier string) (*User, error) {
	return s.exchange(ctx, s.redirectURL(s.cfg.RedirectPort), code, verifier)
}

func (s *Session) exchange(ctx context.Context, redirectURL, code, verifier string) (*User, error) {
	tok, err := s.oauthConfig(redirectURL).Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	user, err := ParseUser(tok.AccessToken)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A new sign-in starts a new session, so earlier syncs no longer count.
	if err := s.store.ClearSession(ctx); err != nil {
		return nil, err
	}
	if err := s.save(ctx, tok); err != nil {
		return nil, err
	}
	s.log.Info("signed in", "user_id", user.ID)
	return user, nil
}

// SignInWithBrowser runs the full PKCE flow: it listens on the loopback redirect
// port, calls open with the sign-in URL and waits for the provider's callback.
func (s *Session) SignInWithBrowser(ctx context.Context, open func(url string) error) (*User, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.cfg.RedirectPort)))
	if err != nil {
		return nil, fmt.Errorf("failed to listen for sign-in callback: %w", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	redirectURL := s.redirectURL(port)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var res result
		switch {
		case query.Get("error") != "":
			res.err = fmt.Errorf("sign-in failed: %s", query.Get("error_description"))
			if query.Get("error_description") == "" {
				res.err = fmt.Errorf("sign-in failed: %s", query.Get("error"))
			}
		case query.Get("state") != state:
			res.err = fmt.Errorf("sign-in failed: state mismatch")
		case query.Get("code") == "":
			res.err = fmt.Errorf("sign-in failed: no authorization code")
		default:
			res.code = query.Get("code")
		}

		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = w.Write([]byte("Signed in. You can close this window and return to the terminal."))
		}
		select {
		case results <- res:
		default:
		}
	})

	server := &http.Server{Handler: mux}
	go func() { _ = server.Serve(listener) }()
	defer func() { _ = server.Close() }()

	authURL := s.oauthConfig(redirectURL).
		AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	if err := open(authURL); err != nil {
		return nil, fmt.Errorf("failed to open sign-in page: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-results:
		if res.err != nil {
			return nil, res.err
		}
		return s.exchange(ctx, redirectURL, res.code, verifier)
	}
}

// SignOut forgets the session.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ClearSession(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	s.token = nil
	s.loaded = true
	return nil
}

// SyncUser records the signed-in user with the backend once per session.
// A failed sync is forgotten so the next call retries.
func (s *Session) SyncUser(ctx context.Context, upserter UserUpserter) error {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return err
	}

	synced, err := s.store.SyncedUsers(ctx)
	if err != nil {
		return err
	}
	if synced[user.ID] {
		return nil
	}
	if err := s.store.MarkSynced(ctx, user.ID, true); err != nil {
		return err
	}

	if _, err := upserter.UpsertUser(ctx, types.UpsertUserRequest{ID: user.ID, Name: user.Name}); err != nil {
		if unmarkErr := s.store.MarkSynced(ctx, user.ID, false); unmarkErr != nil {
			s.log.Warn("failed to forget user sync", "error", unmarkErr)
		}
		return fmt.Errorf("failed to sync user: %w", err)
	}
	return nil
}
