package compose

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiredoor/internal/api"
	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/outreach"
	"github.com/jonathan/hiredoor/internal/types"
)

func fixedPick(i int) SubjectPicker {
	return func(int) int { return i }
}

var params = TemplateParams{
	ContactFirstName: "Ann",
	ContactEmail:     "ann@acme.com",
	JobRole:          "Backend Engineer",
	CompanyName:      "Acme",
	JobURL:           "https://jobs.example.com/1",
	SenderName:       "Sam Doe",
}

func TestDefaultDraft_Subjects(t *testing.T) {
	want := []string{
		"Quick intro – Sam Doe",
		"Interest in the Backend Engineer role",
		"Backend Engineer – Sam Doe",
		"Backend Engineer opportunity at Acme",
	}
	for i, subject := range want {
		assert.Equal(t, subject, DefaultDraft(params, fixedPick(i)).Subject)
	}

	// Out-of-range picks fall back to the first subject.
	assert.Equal(t, want[0], DefaultDraft(params, fixedPick(99)).Subject)
}

func TestDefaultDraft_Body(t *testing.T) {
	d := DefaultDraft(params, fixedPick(0))

	assert.Equal(t, "ann@acme.com", d.To)
	assert.True(t, strings.HasPrefix(d.Body, "Hi Ann,\n\nI came across the Backend Engineer position at Acme"))
	assert.Contains(t, d.Body, "Job posting: https://jobs.example.com/1")
	assert.True(t, strings.HasSuffix(d.Body, "Best regards,\nSam Doe"))
}

func TestDefaultDraft_RandomSubjectIsATemplate(t *testing.T) {
	all := map[string]bool{}
	for i := range subjectTemplates {
		all[DefaultDraft(params, fixedPick(i)).Subject] = true
	}
	for i := 0; i < 20; i++ {
		assert.True(t, all[DefaultDraft(params, nil).Subject])
	}
}

func TestComposeURLs(t *testing.T) {
	d := Draft{To: "ann@acme.com", Subject: "Hi & hello", Body: "Line one\nLine two + more"}

	gmail := GmailComposeURL(d)
	assert.True(t, strings.HasPrefix(gmail, "https://mail.google.com/mail/?view=cm&fs=1&to=ann%40acme.com&su=Hi%20%26%20hello&body="))
	parsed, err := url.Parse(gmail)
	require.NoError(t, err)
	assert.Equal(t, d.Body, parsed.Query().Get("body"))
	assert.Equal(t, d.Subject, parsed.Query().Get("su"))

	mailto := MailtoURL(d)
	assert.True(t, strings.HasPrefix(mailto, "mailto:ann%40acme.com?subject=Hi%20%26%20hello&body=Line%20one%0ALine%20two%20%2B%20more"))
}

func TestRecipientFirstName(t *testing.T) {
	assert.Equal(t, "Ann", Recipient{Name: "Ann Lee"}.FirstName())
	assert.Equal(t, "Cher", Recipient{Name: " Cher "}.FirstName())
	assert.Equal(t, "", Recipient{}.FirstName())
}

func TestFromSearchAndTracker(t *testing.T) {
	job := types.Job{URL: "https://jobs.example.com/1", Company: "Acme", CompanyDomain: types.StringPtr("acme.com"), Role: "Engineer", RequirementsSummary: types.StringPtr("Go, SQL")}
	c := types.Contact{Email: "ann@acme.com", FirstName: types.StringPtr("Ann"), LastName: types.StringPtr("Lee"), Title: types.StringPtr("CTO")}

	jc, r := FromSearch(job, c)
	assert.Equal(t, JobContext{Role: "Engineer", Company: "Acme", CompanyDomain: "acme.com", URL: job.URL, Requirements: "Go, SQL"}, jc)
	assert.Equal(t, Recipient{Name: "Ann Lee", Email: "ann@acme.com", Title: "CTO"}, r)

	entry := outreach.TrackerEntry{Company: "Acme", Domain: "acme.com", Role: "Engineer", JobURL: job.URL}
	jc, r = FromTracker(entry, outreach.Contact{Name: "Bo Chan", Email: "bo@acme.com"})
	assert.Equal(t, "acme.com", jc.CompanyDomain)
	assert.Equal(t, "Bo", r.FirstName())
}

type fakeAPI struct {
	previous    []types.PreviousOutreach
	previousErr error
	generated   *types.GenerateEmailResponse
	generateErr error
	requests    []types.GenerateEmailRequest
}

func (f *fakeAPI) GenerateEmail(_ context.Context, req types.GenerateEmailRequest) (*types.GenerateEmailResponse, error) {
	f.requests = append(f.requests, req)
	return f.generated, f.generateErr
}

func (f *fakeAPI) GetPreviousOutreaches(context.Context, string) (*types.PreviousOutreachesResponse, error) {
	if f.previousErr != nil {
		return nil, f.previousErr
	}
	return &types.PreviousOutreachesResponse{PreviousOutreaches: f.previous}, nil
}

var (
	testJob = JobContext{Role: "Backend Engineer", Company: "Acme", CompanyDomain: "acme.com", URL: "https://jobs.example.com/1"}
	testTo  = Recipient{Name: "Ann Lee", Email: "ann@acme.com", Title: "CTO"}
)

func TestOpen_IncludesPreviousOutreachForOtherJobs(t *testing.T) {
	fake := &fakeAPI{previous: []types.PreviousOutreach{
		{JobURL: "https://jobs.example.com/1"},
		{JobURL: "https://jobs.example.com/7", JobTitle: types.StringPtr("Platform Engineer")},
	}}
	c := NewComposer(fake, nil, nil, fixedPick(3))

	opened, err := c.Open(context.Background(), testJob, testTo, "Sam Doe")
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer opportunity at Acme", opened.Draft.Subject)
	assert.True(t, strings.HasPrefix(opened.Draft.Body, "Hi Ann,"))
	require.Len(t, opened.Previous, 1)
	assert.Equal(t, "https://jobs.example.com/7", opened.Previous[0].JobURL)
}

func TestOpen_PreviousOutreachFailureIsIgnored(t *testing.T) {
	rec := &notify.Recorder{}
	c := NewComposer(&fakeAPI{previousErr: errors.New("boom")}, rec, nil, fixedPick(0))

	opened, err := c.Open(context.Background(), testJob, testTo, "Sam Doe")
	require.NoError(t, err)
	assert.Equal(t, "ann@acme.com", opened.Draft.To)
	assert.Empty(t, opened.Previous)
	assert.Empty(t, rec.All())
}

func TestOpen_RequiresEmail(t *testing.T) {
	c := NewComposer(&fakeAPI{}, nil, nil, nil)
	_, err := c.Open(context.Background(), testJob, Recipient{Name: "No Email"}, "Sam")
	assert.Error(t, err)
}

func TestRegenerate_Success(t *testing.T) {
	fake := &fakeAPI{generated: &types.GenerateEmailResponse{Subject: "Hello from Sam", Body: "Personalized body"}}
	rec := &notify.Recorder{}
	c := NewComposer(fake, rec, nil, nil)

	draft, err := c.Regenerate(context.Background(), testJob, testTo, RegenerateOptions{Tone: types.ToneCasual, AskForReferral: true})
	require.NoError(t, err)
	assert.Equal(t, &Draft{To: "ann@acme.com", Subject: "Hello from Sam", Body: "Personalized body"}, draft)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, "Ann", req.ContactFirstName)
	assert.Equal(t, "acme.com", req.CompanyDomain)
	assert.Equal(t, types.ToneCasual, req.Tone)
	assert.True(t, req.AskForReferral)

	last, _ := rec.Last()
	assert.Equal(t, notify.Notification{Kind: notify.KindSuccess, Message: "Email draft generated"}, last)
}

func TestRegenerate_FailureNotifies(t *testing.T) {
	fake := &fakeAPI{generateErr: &api.Error{StatusCode: 429, Code: "AI_LIMIT", UserMessage: "You've used all your AI emails for today."}}
	rec := &notify.Recorder{}
	c := NewComposer(fake, rec, nil, nil)

	_, err := c.Regenerate(context.Background(), testJob, testTo, RegenerateOptions{})
	require.Error(t, err)

	last, _ := rec.Last()
	assert.Equal(t, notify.Notification{Kind: notify.KindError, Message: "You've used all your AI emails for today."}, last)
}
