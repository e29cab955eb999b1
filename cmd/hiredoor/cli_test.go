package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jonathan/hiredoor/internal/outreach"
	"github.com/jonathan/hiredoor/internal/prefs"
	"github.com/jonathan/hiredoor/internal/search"
	"github.com/jonathan/hiredoor/internal/types"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	want := []string{"login", "logout", "whoami", "search", "draft", "track", "tracker", "resume", "billing", "tokens", "account"}
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestSearch_RequiresSignIn(t *testing.T) {
	b, _ := setup(t)

	_, _, err := runCLI(t, "search", testJobURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
	assert.False(t, b.called("POST /api/jobs/search"))
}

func TestSearch_ShowsContactsWithTrackedStatus(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()
	sent := testNow.Add(-24 * time.Hour)
	b.statuses = map[string]types.OutreachStatusEntry{"ann@acme.com": {Status: outreach.StatusEmailed, SentAt: &sent}}

	stdout, stderr, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Acme")
	assert.Contains(t, stdout, "Ann Lee (CTO)")
	assert.Contains(t, stdout, "Tracked: Emailed, sent Mar 31, 2026")
	assert.Equal(t, 1, strings.Count(stdout, "Tracked:"))
	assert.Contains(t, stderr, "Upload your resume")
	assert.Equal(t, 1, b.upserts)

	store := openPrefs(t, dataDir)
	ctx := context.Background()

	var snap search.Snapshot
	found, err := store.LoadJSON(ctx, prefs.KeySearchSnapshot, &snap)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, search.StateResults, snap.State)
	assert.Len(t, snap.Contacts, 2)

	recent, err := store.RecentSearches(ctx)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, testJobURL, recent[0].URL)

	home, err := store.HomeJobURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, testJobURL, home)
}

func TestSearch_SyncsUserOncePerSession(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()

	for i := 0; i < 2; i++ {
		_, _, err := runCLI(t, "search", testJobURL)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, b.upserts)
}

func TestSearch_VerboseLogsStateChanges(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()

	_, stderr, err := runCLI(t, "search", "--verbose", testJobURL)
	require.NoError(t, err)
	assert.Contains(t, stderr, `msg="search state" state=loading`)
	assert.Contains(t, stderr, `msg="search state" state=results`)
}

func TestSearch_InvalidURL(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)

	_, stderr, err := runCLI(t, "search", "not a url")
	require.Error(t, err)
	assert.Contains(t, stderr, "✗ Please enter a valid job URL.")
	assert.False(t, b.called("POST /api/jobs/search"))
}

func TestSearch_BackendFailureShowsErrorState(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.failWith["POST /api/jobs/search"] = http.StatusBadGateway

	stdout, _, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "SEARCH FAILED")
	assert.Contains(t, stdout, "The server is having trouble.")
}

func TestSearch_DomainSelection(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)

	resp := successResponse()
	b.searchResp = types.SearchJobResponse{
		Status:  types.SearchDomainSelectionRequired,
		Job:     resp.Job,
		Domains: []string{"acme.com", "acme.io"},
	}
	b.confirmResp = resp

	stdout, _, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1. acme.com")
	assert.Contains(t, stdout, "2. acme.io")

	_, _, err = runCLI(t, "search", "select-domain", "other.com")
	require.Error(t, err)

	stdout, _, err = runCLI(t, "search", "select-domain", "acme.io")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ann Lee")

	require.Len(t, b.searchRequests, 2)
	assert.Equal(t, types.SearchJobRequest{URL: testJobURL, SelectedDomain: "acme.io"}, b.searchRequests[1])
}

func TestSearch_SelectDomainWithoutPendingSelection(t *testing.T) {
	_, dataDir := setup(t)
	signIn(t, dataDir)

	_, _, err := runCLI(t, "search", "select-domain", "acme.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, search.ErrNotSelectingDomain)
}

func TestSearch_UnsupportedSite(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = types.SearchJobResponse{Status: types.SearchUnsupportedSite, Error: "unsupported", SiteName: "LinkedIn"}

	stdout, stderr, err := runCLI(t, "search", "https://www.linkedin.com/jobs/view/1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "LinkedIn job postings aren't supported yet.")
	assert.Contains(t, stdout, "No search in progress")
}

func TestSearch_ShowResetAndRecent(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()

	_, _, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "search", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Ann Lee")

	stdout, _, err = runCLI(t, "search", "recent")
	require.NoError(t, err)
	assert.Contains(t, stdout, testJobURL)

	_, stderr, err := runCLI(t, "search", "reset")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Search cleared")

	stdout, _, err = runCLI(t, "search", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No search in progress")
}

func TestResumeHideTip(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()

	_, _, err := runCLI(t, "resume", "hide-tip")
	require.NoError(t, err)

	_, stderr, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Upload your resume")
	assert.False(t, b.called("GET /api/resume"))
}

func TestDraft_FromSearch(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()
	b.generated = types.GenerateEmailResponse{Subject: "Backend role at Acme", Body: "Hi Ann, personalized."}

	_, _, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "draft", "ann@acme.com")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Hi Ann,")
	assert.Contains(t, stdout, "Best regards,")
	assert.Contains(t, stdout, "Gmail:  https://mail.google.com/mail/?view=cm&fs=1&to=ann%40acme.com")
	assert.False(t, b.called("POST /api/email/generate"))

	b.mu.Lock()
	b.user.Plan = "starter"
	b.mu.Unlock()

	stdout, stderr, err := runCLI(t, "draft", "ann@acme.com", "--generate", "--tone", "casual")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Subject:  Backend role at Acme")
	assert.Contains(t, stdout, "Hi Ann, personalized.")
	assert.Contains(t, stderr, "✓ Email draft generated")
}

func TestDraft_PrintsFullTemplate(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()

	_, _, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)

	stdout, _, err := runCLI(t, "draft", "ann@acme.com")
	require.NoError(t, err)
	assert.Contains(t, stdout, "I came across the Backend Engineer position at Acme and wanted to reach out directly.")
	assert.Contains(t, stdout, "I'd love to learn more about the team and how I might contribute.")
}

func TestDraft_GenerateRespectsDailyAllowance(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()

	_, _, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)

	_, _, err = runCLI(t, "draft", "ann@acme.com", "--generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not included in the free plan")

	reset := testNow.Add(3 * time.Hour)
	b.mu.Lock()
	b.user.Plan = "starter"
	b.user.AIEmailsToday = 15
	b.user.AIEmailsResetAt = &reset
	b.mu.Unlock()

	_, _, err = runCLI(t, "draft", "ann@acme.com", "--generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily AI email limit reached (15 of 15 used)")
	assert.False(t, b.called("POST /api/email/generate"))

	// A counter from before the reset time no longer counts.
	past := testNow.Add(-time.Hour)
	b.mu.Lock()
	b.user.AIEmailsResetAt = &past
	b.mu.Unlock()

	_, _, err = runCLI(t, "draft", "ann@acme.com", "--generate")
	require.NoError(t, err)
	assert.True(t, b.called("POST /api/email/generate"))
}

func TestDraft_UnknownContact(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()

	_, _, err := runCLI(t, "draft", "ann@acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no search results")

	_, _, err = runCLI(t, "search", testJobURL)
	require.NoError(t, err)

	_, _, err = runCLI(t, "draft", "zed@acme.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no contact with email zed@acme.com")
}

func TestDraft_FromTrackerEntry(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.jobs = []types.TrackerJob{trackedJob()}

	stdout, _, err := runCLI(t, "draft", "bo@acme.com", "--entry", "job-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "To:       bo@acme.com")
	assert.Contains(t, stdout, "Hi Bo,")
}

func TestTrackAdd(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()

	_, _, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)

	_, stderr, err := runCLI(t, "track", "add", "bo@acme.com", "--status", "emailed")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Added Bo to tracker")

	require.Len(t, b.created, 1)
	assert.Equal(t, "bo@acme.com", b.created[0].ContactEmail)
	assert.Equal(t, outreach.StatusEmailed, b.created[0].Status)
	assert.Equal(t, "acme.com", b.created[0].CompanyDomain)
}

func TestTrackAdd_FailureIsReported(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.searchResp = successResponse()
	b.failWith["POST /api/outreach"] = http.StatusInternalServerError

	_, _, err := runCLI(t, "search", testJobURL)
	require.NoError(t, err)

	_, stderr, err := runCLI(t, "track", "add", "ann@acme.com")
	require.Error(t, err)
	assert.Contains(t, stderr, "✗ The server is having trouble.")
}

func TestTrackAdd_RejectsUnknownStatus(t *testing.T) {
	_, dataDir := setup(t)
	signIn(t, dataDir)

	_, _, err := runCLI(t, "track", "add", "ann@acme.com", "--status", "offer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown outreach status")
}

func TestTrackerList(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.jobs = []types.TrackerJob{trackedJob()}

	stdout, _, err := runCLI(t, "tracker", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 jobs, 2 contacts")
	assert.Contains(t, stdout, "Acme  Backend Engineer")
	assert.Contains(t, stdout, "Emailed · last action Mar 30, 2026")
	assert.Contains(t, stdout, "Bo <bo@acme.com> To Contact")

	stdout, _, err = runCLI(t, "tracker", "list", "--status", "replied")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No tracked jobs")

	_, _, err = runCLI(t, "tracker", "list", "--status", "bogus")
	assert.Error(t, err)
}

var contactIDPattern = regexp.MustCompile(`bo@acme\.com> To Contact\s*│\n│\s+contact: (\S+)`)

func TestTrackerSetStatus_UsesListedContactID(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	job := trackedJob()
	job.Contacts[1].ID = "5f0c7a2e-9d1b-4c36-8f57-2a9e4b1d6c03"
	b.jobs = []types.TrackerJob{job}

	stdout, _, err := runCLI(t, "tracker", "list")
	require.NoError(t, err)
	match := contactIDPattern.FindStringSubmatch(stdout)
	require.Len(t, match, 2, stdout)
	assert.Equal(t, job.Contacts[1].ID, match[1])

	_, stderr, err := runCLI(t, "tracker", "set-status", "job-1", match[1], "Replied")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Status updated to Replied")

	require.Len(t, b.updated, 1)
	assert.Equal(t, types.UpdateOutreachStatusRequest{JobID: "job-1", ContactID: match[1], Status: outreach.StatusReplied}, b.updated[0])
}

func TestTrackerSetStatus_ByEmail(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.jobs = []types.TrackerJob{trackedJob()}

	_, _, err := runCLI(t, "tracker", "set-status", "job-1", "bo@acme.com", "interviewing")
	require.NoError(t, err)
	require.Len(t, b.updated, 1)
	assert.Equal(t, "c2", b.updated[0].ContactID)

	_, _, err = runCLI(t, "tracker", "set-status", "job-1", "zed@acme.com", "replied")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no contact zed@acme.com on Acme")
	assert.Len(t, b.updated, 1)
}

func TestTrackerRemove(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.jobs = []types.TrackerJob{trackedJob()}

	_, stderr, err := runCLI(t, "tracker", "remove-contact", "job-1", "ann@acme.com")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Contact removed")

	_, stderr, err = runCLI(t, "tracker", "remove", "job-1")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Removed Acme from tracker")

	require.Len(t, b.deleted, 2)
	assert.Equal(t, []string{"c1"}, b.deleted[0].ContactIDs)
	assert.Equal(t, []string{"c1", "c2"}, b.deleted[1].ContactIDs)
}

func TestTrackerUnknownEntry(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.jobs = []types.TrackerJob{trackedJob()}

	_, _, err := runCLI(t, "tracker", "remove", "job-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tracked job with ID job-9")
	assert.Empty(t, b.deleted)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.failWith["GET /api/outreach"] = http.StatusUnauthorized

	_, stderr, err := runCLI(t, "tracker", "list")
	require.Error(t, err)
	assert.Contains(t, stderr, "Your session has expired")

	stdout, _, err := runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Not signed in")

	path, err := openPrefs(t, dataDir).ReturnPath(context.Background(), loginReturnKey, "")
	require.NoError(t, err)
	assert.Equal(t, "hiredoor tracker list", path)
}

func TestSessionRejectedDuringSyncStopsCommand(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.failWith["POST /api/user"] = http.StatusUnauthorized

	_, stderr, err := runCLI(t, "tracker", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, errSessionExpired)
	assert.Equal(t, 1, strings.Count(stderr, "Your session has expired"))
	assert.False(t, b.called("GET /api/outreach"))
}

func TestExpiredSessionWithoutRefreshTokenAsksForLogin(t *testing.T) {
	b, dataDir := setup(t)
	expiry := time.Now().Add(-time.Hour)
	data, err := json.Marshal(&oauth2.Token{
		AccessToken: accessToken(t, testUserID, "sam@example.com", "Sam Doe", expiry),
		TokenType:   "Bearer",
		Expiry:      expiry,
	})
	require.NoError(t, err)
	store := openPrefs(t, dataDir)
	require.NoError(t, store.SetSession(context.Background(), string(data)))
	require.NoError(t, store.Close())

	_, _, err = runCLI(t, "search", testJobURL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in: run `hiredoor login` first")
	assert.False(t, b.called("POST /api/jobs/search"))
}

// fakeIdentityProvider issues a token for the authorization code "good-code".
func fakeIdentityProvider(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" || r.Form.Get("code_verifier") == "" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  accessToken(t, testUserID, "sam@example.com", "Sam Doe", time.Now().Add(time.Hour)),
			"token_type":    "bearer",
			"refresh_token": "refresh",
			"expires_in":    3600,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

// completeSignIn plays the browser: it follows the sign-in URL back to the CLI's callback.
func completeSignIn(t *testing.T) func(string) error {
	return func(signInURL string) error {
		u, err := url.Parse(signInURL)
		require.NoError(t, err)
		q := u.Query()
		callback := q.Get("redirect_uri") + "?code=good-code&state=" + url.QueryEscape(q.Get("state"))
		resp, err := http.Get(callback)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	}
}

func TestLogin(t *testing.T) {
	b, dataDir := setup(t)
	idp := fakeIdentityProvider(t)
	t.Setenv("HIREDOOR_AUTH_CLIENT_ID", "cli-client")
	t.Setenv("HIREDOOR_AUTH_AUTH_URL", idp.URL+"/authorize")
	t.Setenv("HIREDOOR_AUTH_TOKEN_URL", idp.URL+"/token")
	t.Setenv("HIREDOOR_AUTH_REDIRECT_PORT", "0")
	openBrowser = completeSignIn(t)

	store := openPrefs(t, dataDir)
	require.NoError(t, store.SetReturnPath(context.Background(), loginReturnKey, "hiredoor tracker list"))
	require.NoError(t, store.Close())

	stdout, stderr, err := runCLI(t, "login")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Opening your browser")
	assert.Contains(t, stdout, "Pick up where you left off: hiredoor tracker list")
	assert.Contains(t, stderr, "✓ Signed in as Sam Doe")
	assert.Equal(t, 1, b.upserts)

	stdout, _, err = runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sam Doe <sam@example.com>")
}

func TestLogin_RequiresProviderConfig(t *testing.T) {
	setup(t)

	_, _, err := runCLI(t, "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign-in requires auth.client_id")
}

func TestLogout(t *testing.T) {
	_, dataDir := setup(t)
	signIn(t, dataDir)

	stdout, _, err := runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sam Doe <sam@example.com>")

	_, stderr, err := runCLI(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Signed out")

	stdout, _, err = runCLI(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Not signed in")
}

func TestResumeCommands(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)

	stdout, _, err := runCLI(t, "resume", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No resume on file")

	pdf := filepath.Join(t.TempDir(), "cv.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n"), 0644))

	stdout, stderr, err := runCLI(t, "resume", "upload", pdf)
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Resume uploaded")
	assert.Contains(t, stdout, "cv.pdf")

	png := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0644))
	_, _, err = runCLI(t, "resume", "upload", png)
	require.Error(t, err)

	_, stderr, err = runCLIWithInput(t, "too short", "resume", "paste")
	require.Error(t, err)
	assert.Contains(t, stderr, "Resume text seems too short")

	long := strings.Repeat("Built distributed systems in Go. ", 10)
	_, stderr, err = runCLIWithInput(t, long, "resume", "paste")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Resume uploaded")

	_, stderr, err = runCLI(t, "resume", "delete")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Resume deleted")
	assert.True(t, b.called("DELETE /api/resume"))
}

func TestBillingPlans(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	b.user.Plan = "pro"

	stdout, _, err := runCLI(t, "billing", "plans")
	require.NoError(t, err)
	assert.Contains(t, stdout, "PLANS")
	assert.Contains(t, stdout, "* Pro")
}

func TestBillingCheckout(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)

	stdout, _, err := runCLI(t, "billing", "checkout", "--plan", "pro")
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://pay.example.com/session/1")

	_, _, err = runCLI(t, "billing", "checkout", "--pack", "50")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credit packs are available to subscribers")

	b.mu.Lock()
	b.user.Plan = "starter"
	b.mu.Unlock()
	_, _, err = runCLI(t, "billing", "checkout", "--pack", "50")
	require.NoError(t, err)

	_, _, err = runCLI(t, "billing", "checkout", "--pack", "75")
	assert.Error(t, err)

	_, _, err = runCLI(t, "billing", "checkout", "--plan", "pro", "--pack", "50")
	assert.Error(t, err)

	require.Len(t, b.checkouts, 2)
	assert.Equal(t, types.CheckoutRequest{PlanID: "pro"}, b.checkouts[0])
	assert.Equal(t, types.CheckoutRequest{TokenPack: "50"}, b.checkouts[1])
}

func TestBillingPortal(t *testing.T) {
	_, dataDir := setup(t)
	signIn(t, dataDir)

	var opened string
	openBrowser = func(u string) error {
		opened = u
		return nil
	}

	stdout, _, err := runCLI(t, "billing", "portal")
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://pay.example.com/portal")
	assert.Equal(t, "https://pay.example.com/portal", opened)
}

func TestAccount(t *testing.T) {
	b, dataDir := setup(t)
	signIn(t, dataDir)
	reset := testNow.Add(6 * time.Hour)
	b.user = types.UserResponse{ID: testUserID, Name: types.StringPtr("Sam Doe"), Plan: "starter", TokensRemaining: 20, BonusTokens: 5, AIEmailsToday: 3, AIEmailsResetAt: &reset}

	stdout, _, err := runCLI(t, "account")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Plan:     starter")
	assert.Contains(t, stdout, "Tokens:   25")
	assert.Contains(t, stdout, "12 of 15 left today")
}

func TestTokensUsage(t *testing.T) {
	_, dataDir := setup(t)
	signIn(t, dataDir)

	stdout, _, err := runCLI(t, "tokens", "usage")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Apr 1, 2026  search")
}
