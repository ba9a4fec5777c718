package volunteers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/handii-app/volunteer-directory/internal/domain"
)

// fakeRegistry is an in-memory volunteer registry that honours partial
// updates, the way the real service does.
type fakeRegistry struct {
	mu       sync.Mutex
	nextID   int64
	records  map[int64]map[string]any
	requests []*http.Request
	bodies   []map[string]any
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{nextID: 1, records: map[int64]map[string]any{}}
}

func (f *fakeRegistry) seed(rec map[string]any) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	rec["id"] = id
	rec["created_at"] = "2025-01-01T00:00:00Z"
	rec["updated_at"] = "2025-01-01T00:00:00Z"
	f.records[id] = rec
	return id
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, r)
	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.bodies = append(f.bodies, body)

	path := strings.TrimPrefix(r.URL.Path, "/api/volunteers")
	switch {
	case r.URL.Path == "/health":
		writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
	case path == "" && r.Method == http.MethodGet:
		f.list(w, r, func(rec map[string]any) bool {
			skill := r.URL.Query().Get("skill")
			return skill == "" || domain.HasTag(fmt.Sprint(rec["skills"]), skill)
		})
	case path == "" && r.Method == http.MethodPost:
		id := f.nextID
		f.nextID++
		body["id"] = id
		body["created_at"] = "2025-02-02T00:00:00Z"
		body["updated_at"] = "2025-02-02T00:00:00Z"
		f.records[id] = body
		writeJSON(w, http.StatusCreated, body)
	case path == "/available":
		f.list(w, r, func(rec map[string]any) bool { return rec["available"] == true })
	case strings.HasPrefix(path, "/search/by-skill/"):
		skill := strings.TrimPrefix(path, "/search/by-skill/")
		f.list(w, r, func(rec map[string]any) bool { return domain.HasTag(fmt.Sprint(rec["skills"]), skill) })
	case strings.HasPrefix(path, "/search/by-location/"):
		loc := strings.TrimPrefix(path, "/search/by-location/")
		f.list(w, r, func(rec map[string]any) bool { return rec["location"] == loc })
	default:
		f.item(w, r, strings.TrimPrefix(path, "/"), body)
	}
}

func (f *fakeRegistry) list(w http.ResponseWriter, r *http.Request, keep func(map[string]any) bool) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	matched := make([]map[string]any, 0)
	for id := int64(1); id < f.nextID; id++ {
		if rec, ok := f.records[id]; ok && keep(rec) {
			matched = append(matched, rec)
		}
	}
	page := matched
	if len(page) > limit {
		page = page[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"volunteers": page, "total": len(matched), "limit": limit})
}

func (f *fakeRegistry) item(w http.ResponseWriter, r *http.Request, rest string, body map[string]any) {
	parts := strings.Split(rest, "/")
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "bad id"})
		return
	}
	rec, ok := f.records[id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Volunteer not found"})
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "availability" && r.Method == http.MethodPatch:
		rec["available"] = r.URL.Query().Get("available") == "true"
		writeJSON(w, http.StatusOK, rec)
	case r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, rec)
	case r.Method == http.MethodPut:
		for k, v := range body {
			rec[k] = v
		}
		rec["updated_at"] = "2025-03-03T00:00:00Z"
		writeJSON(w, http.StatusOK, rec)
	case r.Method == http.MethodDelete:
		delete(f.records, id)
		writeJSON(w, http.StatusOK, map[string]any{"message": "Volunteer deleted successfully"})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeRegistry) lastRequest() (*http.Request, map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.requests)
	return f.requests[n-1], f.bodies[n-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// recordingLogger captures error logs.
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (r *recordingLogger) DebugObj(string, string, interface{}) {}
func (r *recordingLogger) ErrorObj(msg, _ string, _ interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, msg)
}

func newTestClient(t *testing.T, reg *fakeRegistry) (*Client, *recordingLogger) {
	t.Helper()
	srv := httptest.NewServer(reg)
	t.Cleanup(srv.Close)
	log := &recordingLogger{}
	return New(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}, log), log
}

func formsVolunteer(name string) map[string]any {
	return map[string]any{"name": name, "age": 60, "location": "Austin", "skills": "Forms, Shopping", "available": false, "years_experience": 3}
}

func TestFilterValuesOmitsAbsentFilters(t *testing.T) {
	yes := true
	cases := []struct {
		name   string
		filter Filter
		want   url.Values
	}{
		{name: "empty", filter: Filter{}, want: url.Values{}},
		{name: "skill+limit", filter: Filter{Skill: "Forms", Limit: 10}, want: url.Values{"skill": {"Forms"}, "limit": {"10"}}},
		{
			name:   "all",
			filter: Filter{Skill: "Forms", Location: "Austin", Available: &yes, Language: "Spanish", Limit: 5},
			want: url.Values{
				"skill": {"Forms"}, "location": {"Austin"}, "available": {"true"},
				"language": {"Spanish"}, "limit": {"5"},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.Values()
			if got.Encode() != tc.want.Encode() {
				t.Fatalf("Values() = %q, want %q", got.Encode(), tc.want.Encode())
			}
		})
	}
}

func TestListSendsOnlyProvidedFilters(t *testing.T) {
	reg := newFakeRegistry()
	client, _ := newTestClient(t, reg)

	no := false
	if _, err := client.List(context.Background(), Filter{Location: "Austin", Available: &no}); err != nil {
		t.Fatalf("List: %v", err)
	}
	req, _ := reg.lastRequest()
	q := req.URL.Query()
	if q.Get("location") != "Austin" || q.Get("available") != "false" {
		t.Fatalf("unexpected query %q", req.URL.RawQuery)
	}
	for _, key := range []string{"skill", "language", "limit"} {
		if _, ok := q[key]; ok {
			t.Fatalf("absent filter %q was sent: %q", key, req.URL.RawQuery)
		}
	}
	if got := req.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestListDoesNotTruncateTotal(t *testing.T) {
	reg := newFakeRegistry()
	for i := 0; i < 15; i++ {
		reg.seed(formsVolunteer(fmt.Sprintf("V%d", i)))
	}
	reg.seed(map[string]any{"name": "Other", "skills": "Gardening"})
	client, _ := newTestClient(t, reg)

	resp, err := client.List(context.Background(), Filter{Skill: "Forms", Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp.Volunteers) > 10 {
		t.Fatalf("got %d volunteers, want <= 10", len(resp.Volunteers))
	}
	if resp.Total != 15 || resp.Limit != 10 {
		t.Fatalf("total=%d limit=%d, want 15/10", resp.Total, resp.Limit)
	}
	if resp.Complete() {
		t.Fatalf("page should not be complete")
	}
}

func TestGetUpdateRoundTrip(t *testing.T) {
	reg := newFakeRegistry()
	id := reg.seed(formsVolunteer("Maria Lopez"))
	client, _ := newTestClient(t, reg)
	ctx := context.Background()

	before, err := client.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if before.Name != "Maria Lopez" || before.ID != id {
		t.Fatalf("unexpected volunteer %+v", before)
	}

	notes := "Speaks Spanish"
	years := 7
	if _, err := client.Update(ctx, id, domain.VolunteerPatch{Notes: &notes, YearsExperience: &years}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	_, body := reg.lastRequest()
	if len(body) != 2 {
		t.Fatalf("patch body should only carry set fields, got %v", body)
	}

	after, err := client.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if after.Notes != notes || after.YearsExperience != years || after.Name != before.Name {
		t.Fatalf("update not reflected: %+v", after)
	}
}

func TestCreateNeverSendsServerFields(t *testing.T) {
	reg := newFakeRegistry()
	client, _ := newTestClient(t, reg)

	created, err := client.Create(context.Background(), domain.NewVolunteer{
		Name: "Sam", Age: 30, Location: "Austin", Skills: "Rides", Available: true, YearsExperience: 1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	req, body := reg.lastRequest()
	if req.Method != http.MethodPost {
		t.Fatalf("method = %s", req.Method)
	}
	for _, key := range []string{"id", "created_at", "updated_at"} {
		if _, ok := body[key]; ok {
			t.Fatalf("create body carried %q: %v", key, body)
		}
	}
	if created.ID == 0 || created.CreatedAt == "" {
		t.Fatalf("expected server-assigned fields, got %+v", created)
	}
}

func TestDeleteMissingReturnsNotFound(t *testing.T) {
	reg := newFakeRegistry()
	client, log := newTestClient(t, reg)

	_, err := client.Delete(context.Background(), 999)
	if err == nil {
		t.Fatalf("expected error")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 HTTPError", err)
	}
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound = false")
	}
	if !strings.Contains(httpErr.Body, "Volunteer not found") {
		t.Fatalf("body not kept: %q", httpErr.Body)
	}
	if len(log.errors) != 1 {
		t.Fatalf("expected one logged failure, got %d", len(log.errors))
	}
}

func TestDeleteExisting(t *testing.T) {
	reg := newFakeRegistry()
	id := reg.seed(formsVolunteer("Gone"))
	client, _ := newTestClient(t, reg)

	res, err := client.Delete(context.Background(), id)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if res.Message == "" {
		t.Fatalf("expected message")
	}
	if _, err := client.Get(context.Background(), id); !IsNotFound(err) {
		t.Fatalf("expected 404 after delete, got %v", err)
	}
}

func TestSetAvailabilityThenGet(t *testing.T) {
	reg := newFakeRegistry()
	id := reg.seed(formsVolunteer("Ana"))
	client, _ := newTestClient(t, reg)
	ctx := context.Background()

	if _, err := client.SetAvailability(ctx, id, true); err != nil {
		t.Fatalf("SetAvailability: %v", err)
	}
	req, body := reg.lastRequest()
	if req.Method != http.MethodPatch || req.URL.Query().Get("available") != "true" {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
	}
	if len(body) != 0 {
		t.Fatalf("availability must not send a body, got %v", body)
	}

	got, err := client.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Available {
		t.Fatalf("expected available volunteer")
	}
}

func TestSearchEndpointsUseDefaultLimitAndEscapePath(t *testing.T) {
	reg := newFakeRegistry()
	reg.seed(formsVolunteer("A"))
	client, _ := newTestClient(t, reg)
	ctx := context.Background()

	resp, err := client.SearchBySkill(ctx, "Forms", 0)
	if err != nil {
		t.Fatalf("SearchBySkill: %v", err)
	}
	if resp.Total != 1 {
		t.Fatalf("total = %d", resp.Total)
	}
	req, _ := reg.lastRequest()
	if req.URL.Query().Get("limit") != "50" {
		t.Fatalf("default limit not applied: %q", req.URL.RawQuery)
	}

	if _, err := client.SearchByLocation(ctx, "New York", 5); err != nil {
		t.Fatalf("SearchByLocation: %v", err)
	}
	req, _ = reg.lastRequest()
	if req.URL.EscapedPath() != "/api/volunteers/search/by-location/New%20York" || req.URL.Query().Get("limit") != "5" {
		t.Fatalf("unexpected url %s", req.URL)
	}

	if _, err := client.ListAvailable(ctx, 0); err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	req, _ = reg.lastRequest()
	if req.URL.Path != "/api/volunteers/available" || req.URL.Query().Get("limit") != "50" {
		t.Fatalf("unexpected url %s", req.URL)
	}
}

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, newFakeRegistry())
	status, err := client.Health(context.Background())
	if err != nil || status.Status != "healthy" {
		t.Fatalf("Health = %+v, %v", status, err)
	}
}

func TestTimeoutIsClassified(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	log := &recordingLogger{}
	client := New(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, log)

	start := time.Now()
	_, err := client.Health(context.Background())
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("request hung for %v", time.Since(start))
	}
	var tErr *TransportError
	if !errors.As(err, &tErr) || !tErr.Timeout() || !IsTimeout(err) {
		t.Fatalf("err = %v, want timeout TransportError", err)
	}
	if len(log.errors) != 1 {
		t.Fatalf("expected logged failure")
	}
}

func TestUnreachableHostIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client := New(Config{BaseURL: base, Timeout: time.Second}, nil)
	_, err := client.Get(context.Background(), 1)
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if IsNotFound(err) {
		t.Fatalf("transport failure must not look like 404")
	}
}

func TestUndecodableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL}, nil)
	if _, err := client.Health(context.Background()); err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	client := New(Config{}, nil)
	if client.BaseURL() != DefaultBaseURL {
		t.Fatalf("BaseURL = %q", client.BaseURL())
	}
	if client.timeout != DefaultTimeout {
		t.Fatalf("timeout = %v", client.timeout)
	}
}

func TestConcurrentGetsAreIndependentRequests(t *testing.T) {
	reg := newFakeRegistry()
	id := reg.seed(formsVolunteer("Ana"))
	client, _ := newTestClient(t, reg)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := client.Get(context.Background(), id)
			if err == nil && v.Name != "Ana" {
				err = fmt.Errorf("unexpected volunteer %q", v.Name)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.requests) != n {
		t.Fatalf("expected %d requests to reach the registry, got %d", n, len(reg.requests))
	}
}

func TestBodySnippetKeepsRuneBoundary(t *testing.T) {
	// "é" is two bytes; place one so it straddles the cut.
	body := strings.Repeat("a", maxErrorBodyBytes-1) + "é" + "tail"
	got := bodySnippet([]byte(body))
	if !utf8.ValidString(got) {
		t.Fatalf("snippet is not valid UTF-8")
	}
	if len(got) != maxErrorBodyBytes-1 {
		t.Fatalf("expected snippet of %d bytes, got %d", maxErrorBodyBytes-1, len(got))
	}

	short := "  not found  "
	if got := bodySnippet([]byte(short)); got != "not found" {
		t.Fatalf("short body = %q", got)
	}
}
