package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jonathan/hiredoor/internal/auth"
	"github.com/jonathan/hiredoor/internal/outreach"
	"github.com/jonathan/hiredoor/internal/prefs"
	"github.com/jonathan/hiredoor/internal/types"
)

const (
	testUserID = "user-123"
	testJobURL = "https://boards.greenhouse.io/acme/jobs/123"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// backend is a fake hiredoor API recording what the CLI sends.
type backend struct {
	t      *testing.T
	server *httptest.Server

	mu             sync.Mutex
	calls          []string
	searchResp     types.SearchJobResponse
	confirmResp    types.SearchJobResponse
	searchRequests []types.SearchJobRequest
	jobs           []types.TrackerJob
	statuses       map[string]types.OutreachStatusEntry
	user           types.UserResponse
	resume         types.ResumeResponse
	generated      types.GenerateEmailResponse
	created        []types.CreateOutreachRequest
	updated        []types.UpdateOutreachStatusRequest
	deleted        []types.DeleteOutreachesRequest
	checkouts      []types.CheckoutRequest
	upserts        int
	failWith       map[string]int
}

func newBackend(t *testing.T) *backend {
	b := &backend{
		t:        t,
		user:     types.UserResponse{ID: testUserID, Name: types.StringPtr("Sam Doe"), Plan: "free", TokensRemaining: 3},
		failWith: map[string]int{},
	}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.server.Close)
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *backend) decode(r *http.Request, v any) {
	require.NoError(b.t, json.NewDecoder(r.Body).Decode(v))
}

func (b *backend) called(call string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (b *backend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	call := r.Method + " " + r.URL.Path
	b.calls = append(b.calls, call)

	if status, ok := b.failWith[call]; ok {
		writeJSON(w, status, map[string]any{
			"success": false,
			"error":   map[string]any{"code": "FAILED", "message": "failed", "userMessage": "The server is having trouble."},
		})
		return
	}

	switch call {
	case "POST /api/user":
		b.upserts++
		writeJSON(w, http.StatusOK, b.user)
	case "GET /api/user/" + testUserID:
		writeJSON(w, http.StatusOK, b.user)
	case "POST /api/jobs/search":
		var req types.SearchJobRequest
		b.decode(r, &req)
		b.searchRequests = append(b.searchRequests, req)
		writeJSON(w, http.StatusOK, b.searchResp)
	case "POST /api/jobs/search/confirm":
		var req types.SearchJobRequest
		b.decode(r, &req)
		b.searchRequests = append(b.searchRequests, req)
		writeJSON(w, http.StatusOK, b.confirmResp)
	case "GET /api/outreach":
		writeJSON(w, http.StatusOK, types.GetOutreachesResponse{Jobs: b.jobs})
	case "GET /api/outreach/statuses":
		writeJSON(w, http.StatusOK, types.OutreachStatusResponse{Statuses: b.statuses})
	case "GET /api/outreach/previous":
		writeJSON(w, http.StatusOK, types.PreviousOutreachesResponse{})
	case "POST /api/outreach":
		var req types.CreateOutreachRequest
		b.decode(r, &req)
		b.created = append(b.created, req)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case "PUT /api/outreach/status":
		var req types.UpdateOutreachStatusRequest
		b.decode(r, &req)
		b.updated = append(b.updated, req)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case "DELETE /api/outreach":
		var req types.DeleteOutreachesRequest
		b.decode(r, &req)
		b.deleted = append(b.deleted, req)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case "POST /api/email/generate":
		writeJSON(w, http.StatusOK, b.generated)
	case "GET /api/resume":
		writeJSON(w, http.StatusOK, b.resume)
	case "POST /api/resume":
		filename := "resume.txt"
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			_, header, err := r.FormFile("file")
			require.NoError(b.t, err)
			filename = header.Filename
		} else {
			var req types.ResumeTextRequest
			b.decode(r, &req)
			filename = req.Filename
		}
		b.resume = types.ResumeResponse{HasResume: true, ResumeFilename: types.StringPtr(filename)}
		writeJSON(w, http.StatusOK, types.ResumeUploadResponse{
			Success:        true,
			Profile:        types.ParsedProfile{CurrentRole: "Engineer", Skills: []string{"Go"}},
			ResumeFilename: filename,
		})
	case "DELETE /api/resume":
		b.resume = types.ResumeResponse{}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case "POST /api/payments/checkout":
		var req types.CheckoutRequest
		b.decode(r, &req)
		b.checkouts = append(b.checkouts, req)
		writeJSON(w, http.StatusOK, types.CheckoutResponse{CheckoutURL: "https://pay.example.com/session/1"})
	case "POST /api/payments/portal":
		writeJSON(w, http.StatusOK, types.PortalResponse{PortalURL: "https://pay.example.com/portal"})
	case "GET /api/tokens/usage":
		writeJSON(w, http.StatusOK, types.TokenUsageResponse{Usage: []types.TokenUsage{
			{ID: "u1", Action: "search", JobURL: types.StringPtr(testJobURL), CreatedAt: testNow},
		}})
	default:
		http.NotFound(w, r)
	}
}

// setup points the CLI at a fresh fake backend and data directory.
func setup(t *testing.T) (*backend, string) {
	t.Helper()
	b := newBackend(t)
	dataDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HIREDOOR_API_URL", b.server.URL)
	t.Setenv("HIREDOOR_DATA_DIR", dataDir)
	t.Setenv("HIREDOOR_REQUESTS_PER_SECOND", "0")

	prevNow, prevOpen := now, openBrowser
	now = func() time.Time { return testNow }
	openBrowser = func(string) error { return nil }
	t.Cleanup(func() {
		now, openBrowser = prevNow, prevOpen
	})
	return b, dataDir
}

func accessToken(t *testing.T, subject, email, name string, expiresAt time.Time) string {
	t.Helper()
	claims := auth.Claims{
		Email:        email,
		UserMetadata: auth.UserMetadata{FullName: name},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// signIn stores a valid session in dataDir.
func signIn(t *testing.T, dataDir string) {
	t.Helper()
	expiry := time.Now().Add(time.Hour)
	tok := &oauth2.Token{
		AccessToken:  accessToken(t, testUserID, "sam@example.com", "Sam Doe", expiry),
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		Expiry:       expiry,
	}
	data, err := json.Marshal(tok)
	require.NoError(t, err)

	ctx := context.Background()
	store, err := prefs.Open(ctx, dataDir)
	require.NoError(t, err)
	require.NoError(t, store.SetSession(ctx, string(data)))
	require.NoError(t, store.Close())
}

func openPrefs(t *testing.T, dataDir string) *prefs.Store {
	t.Helper()
	store, err := prefs.Open(context.Background(), dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func successResponse() types.SearchJobResponse {
	return types.SearchJobResponse{
		Status: types.SearchSuccess,
		Job: &types.Job{
			URL:           testJobURL,
			Company:       "Acme",
			CompanyDomain: types.StringPtr("acme.com"),
			Role:          "Backend Engineer",
		},
		Contacts: []types.Contact{
			{ID: "p1", Email: "ann@acme.com", FirstName: types.StringPtr("Ann"), LastName: types.StringPtr("Lee"), Title: types.StringPtr("CTO"), EmailConfidence: 95, Category: types.CategoryExecutive},
			{ID: "p2", Email: "bo@acme.com", FirstName: types.StringPtr("Bo"), Category: types.CategoryEngineering},
		},
	}
}

func trackedJob() types.TrackerJob {
	sent := testNow.Add(-48 * time.Hour)
	return types.TrackerJob{
		ID:      "job-1",
		URL:     testJobURL,
		Title:   types.StringPtr("Backend Engineer"),
		Company: types.TrackerCompany{Domain: "acme.com", Name: types.StringPtr("Acme")},
		Contacts: []types.TrackerContact{
			{
				ID: "c1", Email: "ann@acme.com", Name: types.StringPtr("Ann Lee"),
				Outreach: types.TrackerContactOutreach{ID: "o1", Status: outreach.StatusEmailed, CreatedAt: sent, SentAt: &sent},
			},
			{
				ID: "c2", Email: "bo@acme.com", Name: types.StringPtr("Bo"),
				Outreach: types.TrackerContactOutreach{ID: "o2", Status: outreach.StatusToContact, CreatedAt: sent},
			},
		},
	}
}
