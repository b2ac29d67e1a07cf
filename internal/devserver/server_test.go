package devserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/orchestrator"
	"github.com/goliatone/go-formsubmit/pkg/submission"
	"github.com/goliatone/go-formsubmit/pkg/testsupport"
	"github.com/goliatone/go-formsubmit/pkg/transport/httpsubmit"
	"github.com/goliatone/go-formsubmit/pkg/validation"
)

var csrfPattern = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestServer(t *testing.T, options ...Option) (*Server, *httptest.Server) {
	t.Helper()
	options = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, options...)
	srv, err := New(Config{}, options...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func newBrowser(t *testing.T, base string) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &browser{t: t, base: base, client: &http.Client{Jar: jar}}
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	if err != nil {
		b.t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	if err != nil {
		b.t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func (b *browser) csrf() string {
	b.t.Helper()
	_, page := b.get("/")
	match := csrfPattern.FindStringSubmatch(page)
	if match == nil {
		b.t.Fatalf("csrf token not found in page:\n%s", page)
	}
	return match[1]
}

func (b *browser) state() stateResponse {
	b.t.Helper()
	_, body := b.get("/api/state")
	var state stateResponse
	if err := json.Unmarshal([]byte(body), &state); err != nil {
		b.t.Fatalf("decode state: %v\n%s", err, body)
	}
	return state
}

func (b *browser) submit(name, email, age string) (*http.Response, string) {
	b.t.Helper()
	return b.post("/submit", url.Values{
		CSRFField:             {b.csrf()},
		validation.FieldName:  {name},
		validation.FieldEmail: {email},
		validation.FieldAge:   {age},
	})
}

func TestServer_PageCreatesSession(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts.URL)

	resp, page := b.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(page, `action="/submit"`) || !csrfPattern.MatchString(page) {
		t.Fatalf("page is missing the form:\n%s", page)
	}

	u, _ := url.Parse(ts.URL)
	cookies := b.client.Jar.Cookies(u)
	if len(cookies) != 1 || cookies[0].Name != SessionCookie {
		t.Fatalf("expected session cookie, got %v", cookies)
	}

	state := b.state()
	if state.Session != cookies[0].Value || state.Snapshot.Status != submission.StatusIdle {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestServer_SubmitResolves(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts.URL)

	resp, page := b.submit("Alice", "a@b.com", "25")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected redirect to page, got %d", resp.StatusCode)
	}
	if !strings.Contains(page, "fs-snackbar--success") {
		t.Fatalf("expected success snackbar:\n%s", page)
	}

	state := b.state()
	if state.Snapshot.Status != submission.StatusSuccess || state.Snapshot.DirtyCount != 0 || len(state.Snapshot.Errors) != 0 {
		t.Fatalf("unexpected snapshot %+v", state.Snapshot)
	}
}

func TestServer_SubmitRejected(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts.URL)

	_, page := b.submit("error", "a@b.com", "25")
	if !strings.Contains(page, "<li>Field name is invalid</li>") {
		t.Fatalf("expected dialog with rejection:\n%s", page)
	}

	state := b.state()
	if state.Snapshot.Status != submission.StatusError {
		t.Fatalf("expected error status, got %s", state.Snapshot.Status)
	}
	if diff := cmp.Diff([]string{"Field name is invalid"}, state.Snapshot.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if !state.View.Dialog.Open {
		t.Fatalf("expected view dialog to be open")
	}
}

func TestServer_InvalidInputThenReset(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts.URL)

	b.submit("", "", "abc")
	state := b.state()
	if state.Snapshot.Status != submission.StatusError || len(state.Snapshot.Errors) != 3 {
		t.Fatalf("unexpected snapshot %+v", state.Snapshot)
	}

	resp, _ := b.post("/reset", url.Values{CSRFField: {b.csrf()}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	state = b.state()
	want := submission.Snapshot{Status: submission.StatusIdle}
	if state.Snapshot.Status != want.Status || state.Snapshot.DirtyCount != 0 || !state.Snapshot.Values.IsZero() || len(state.Snapshot.Errors) != 0 {
		t.Fatalf("unexpected snapshot after reset %+v", state.Snapshot)
	}
}

func TestServer_RejectsMissingCSRF(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts.URL)
	b.get("/")

	resp, _ := b.post("/submit", url.Values{
		CSRFField:            {"forged"},
		validation.FieldName: {"Alice"},
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
	if b.state().Snapshot.Status != submission.StatusIdle {
		t.Fatalf("forged post must not change state")
	}
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	_, ts := newTestServer(t)
	alice := newBrowser(t, ts.URL)
	bob := newBrowser(t, ts.URL)
	bob.get("/")

	alice.submit("error", "a@b.com", "25")
	if bob.state().Snapshot.Status != submission.StatusIdle {
		t.Fatalf("bob's session must not see alice's submission")
	}
	if alice.state().Snapshot.Status != submission.StatusError {
		t.Fatalf("alice's session lost its state")
	}
}

func TestServer_DemoAPI(t *testing.T) {
	_, ts := newTestServer(t)

	post := func(body string) (int, string) {
		resp, err := http.Post(ts.URL+"/api/submit", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(data)
	}

	if status, _ := post(`{"fieldName":"Alice","email":"a@b.com","age":25}`); status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	status, body := post(`{"fieldName":"error","email":"a@b.com","age":25}`)
	if status != http.StatusUnprocessableEntity || body != `{"validationErrors":["Field name is invalid"]}` {
		t.Fatalf("unexpected rejection %d %s", status, body)
	}
	if status, _ := post(`not json`); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", status)
	}
}

func TestServer_HTTPTransportAgainstDemoAPI(t *testing.T) {
	_, backend := newTestServer(t)
	client, err := httpsubmit.New(backend.URL + "/api/submit")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, ts := newTestServer(t, WithSubmitFunc(client.Func()))
	b := newBrowser(t, ts.URL)

	b.submit("error", "a@b.com", "25")
	if diff := cmp.Diff([]string{"Field name is invalid"}, b.state().Snapshot.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	b.submit("Alice", "a@b.com", "25")
	if b.state().Snapshot.Status != submission.StatusSuccess {
		t.Fatalf("expected success through the HTTP transport")
	}
}

func TestServer_CustomSubmitFunc(t *testing.T) {
	submitter := testsupport.NewSubmitter()
	orch := orchestrator.New(orchestrator.WithSchemaOptions(validation.WithMinAge(30)))
	_, ts := newTestServer(t, WithSubmitFunc(submitter.Func()), WithOrchestrator(orch))
	b := newBrowser(t, ts.URL)

	b.submit("Alice", "a@b.com", "25")
	if len(submitter.Calls()) != 0 {
		t.Fatalf("age below the configured minimum must not be submitted")
	}
	b.submit("Alice", "a@b.com", "31")
	if diff := cmp.Diff([]validation.Record{{FieldName: "Alice", Email: "a@b.com", Age: 31}}, submitter.Calls()); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_MiddlewareOrder(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	_, ts := newTestServer(t, WithMiddleware(tag("outer"), tag("inner")))

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if diff := cmp.Diff([]string{"outer", "inner"}, order); diff != "" {
		t.Fatalf("middleware order mismatch (-want +got):\n%s", diff)
	}
}

func TestServer_TextFormatAndAssets(t *testing.T) {
	_, ts := newTestServer(t)
	b := newBrowser(t, ts.URL)

	resp, body := b.get("/?format=tui")
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") || !strings.Contains(body, "Field name:") {
		t.Fatalf("unexpected text page %q: %s", resp.Header.Get("Content-Type"), body)
	}
	if resp, _ := b.get("/?format=pdf"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown format, got %d", resp.StatusCode)
	}
	if resp, body := b.get("/assets/formsubmit.css"); resp.StatusCode != http.StatusOK || !strings.Contains(body, ".fs-card") {
		t.Fatalf("stylesheet not served: %d", resp.StatusCode)
	}
}

func TestServer_StateDoesNotCreateSessions(t *testing.T) {
	srv, ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/api/state")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 without a session, got %d", resp.StatusCode)
		}
		if len(resp.Cookies()) != 0 {
			t.Fatalf("state must not set a session cookie")
		}
	}
	if n, _ := srv.sessions.Len(context.Background()); n != 0 {
		t.Fatalf("expected no sessions, got %d", n)
	}
}

func TestServer_MaxSessions(t *testing.T) {
	srv, err := New(Config{MaxSessions: 2}, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	first := newBrowser(t, ts.URL)
	first.get("/")
	for i := 0; i < 2; i++ {
		newBrowser(t, ts.URL).get("/")
	}

	if n, _ := srv.sessions.Len(context.Background()); n != 2 {
		t.Fatalf("expected the store to hold 2 sessions, got %d", n)
	}
	if resp, _ := first.get("/api/state"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected the oldest session to be evicted, got %d", resp.StatusCode)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[int]()
	_ = store.Set(ctx, "a", 1)
	if v, ok, _ := store.Get(ctx, "a"); !ok || v != 1 {
		t.Fatalf("expected stored value, got %d %v", v, ok)
	}
	if _, ok, _ := store.Get(ctx, "missing"); ok {
		t.Fatalf("expected miss")
	}
	if n, _ := store.Len(ctx); n != 1 {
		t.Fatalf("expected one entry, got %d", n)
	}

	if _, ok := SessionIDFromContext(ctx); ok {
		t.Fatalf("expected no session id")
	}
	if id, ok := SessionIDFromContext(WithSessionID(ctx, "s1")); !ok || id != "s1" {
		t.Fatalf("unexpected session id %q", id)
	}
}

func TestMemoryStore_TTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore[int](WithTTL(time.Minute), withClock(func() time.Time { return now }))

	_ = store.Set(ctx, "idle", 1)
	_ = store.Set(ctx, "busy", 2)

	now = now.Add(40 * time.Second)
	if _, ok, _ := store.Get(ctx, "busy"); !ok {
		t.Fatalf("expected busy entry before the ttl")
	}

	now = now.Add(30 * time.Second)
	if _, ok, _ := store.Get(ctx, "idle"); ok {
		t.Fatalf("expected idle entry to expire")
	}
	if _, ok, _ := store.Get(ctx, "busy"); !ok {
		t.Fatalf("reads must refresh the ttl")
	}
	if n, _ := store.Len(ctx); n != 1 {
		t.Fatalf("expected one live entry, got %d", n)
	}
}

func TestMemoryStore_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	store := NewMemoryStore[int](WithCapacity(2), withClock(tick))

	_ = store.Set(ctx, "a", 1)
	_ = store.Set(ctx, "b", 2)
	_, _, _ = store.Get(ctx, "a")
	_ = store.Set(ctx, "c", 3)

	if _, ok, _ := store.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	for _, key := range []string{"a", "c"} {
		if _, ok, _ := store.Get(ctx, key); !ok {
			t.Fatalf("expected %s to survive", key)
		}
	}
	if err := store.Set(ctx, "a", 10); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, _, _ := store.Get(ctx, "a"); v != 10 {
		t.Fatalf("overwrite must not evict, got %d", v)
	}
}
