package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/compass/internal/coach"
	"github.com/MikeSquared-Agency/compass/internal/extractor"
	"github.com/MikeSquared-Agency/compass/internal/model"
	"github.com/MikeSquared-Agency/compass/internal/processor"
	"github.com/MikeSquared-Agency/compass/internal/recommend"
	"github.com/MikeSquared-Agency/compass/internal/store"
)

type fakeService struct {
	users    map[uuid.UUID]*model.UserProfile
	sessions []*model.ChatSession
	err      error
}

func newFakeService() *fakeService {
	return &fakeService{users: make(map[uuid.UUID]*model.UserProfile)}
}

func (f *fakeService) User(_ context.Context, id uuid.UUID) (*model.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		u = &model.UserProfile{ID: id, IsActive: true}
		f.users[id] = u
	}
	return u, nil
}

func (f *fakeService) UpdateProfile(ctx context.Context, id uuid.UUID, patch model.ProfilePatch) (*model.UserProfile, error) {
	u, err := f.User(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Profile = u.Profile.Apply(patch)
	return u, nil
}

func (f *fakeService) MergeInsights(ctx context.Context, id uuid.UUID, in model.Insights) (*model.UserProfile, error) {
	return f.User(ctx, id)
}

func (f *fakeService) SaveAssessment(ctx context.Context, id uuid.UUID, patch model.AssessmentPatch) (*model.Assessment, error) {
	u, err := f.User(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Assessment = u.Assessment.Apply(patch)
	return u.Assessment, nil
}

func (f *fakeService) Candidates(_ context.Context, id uuid.UUID) ([]*model.UserProfile, error) {
	var out []*model.UserProfile
	for uid, u := range f.users {
		if uid != id {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeService) Search(_ context.Context, id uuid.UUID, query string) ([]*model.UserProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.UserProfile
	for uid, u := range f.users {
		if uid != id && strings.Contains(strings.ToLower(u.Profile.Name), strings.ToLower(query)) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeService) StartSession(_ context.Context, id uuid.UUID, module model.Module) (*model.ChatSession, error) {
	cs := model.NewSession(id, module, time.Now())
	f.sessions = append(f.sessions, cs)
	return cs, nil
}

func (f *fakeService) SendMessage(_ context.Context, userID, sessionID uuid.UUID, module model.Module, content string) (*processor.MessageResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if sessionID != uuid.Nil {
		return nil, store.ErrNotFound
	}
	cs := model.NewSession(userID, module, time.Now())
	cs.AddMessage(model.SenderUser, content, time.Now())
	return &processor.MessageResult{Session: cs, Reply: coach.Reply{Content: "ok"}}, nil
}

func (f *fakeService) SetSessionStatus(_ context.Context, _, _ uuid.UUID, status model.Status) (*model.ChatSession, error) {
	if !status.Valid() {
		return nil, processor.ErrInvalidStatus
	}
	return &model.ChatSession{Status: status}, nil
}

func (f *fakeService) Session(context.Context, uuid.UUID, uuid.UUID) (*model.ChatSession, error) {
	return nil, store.ErrNotFound
}

func (f *fakeService) Sessions(_ context.Context, id uuid.UUID, limit int) ([]*model.ChatSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*model.ChatSession
	for _, cs := range f.sessions {
		if cs.UserID == id && (limit == 0 || len(out) < limit) {
			out = append(out, cs)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, token string, svc Service) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ext, err := extractor.New(logger)
	if err != nil {
		t.Fatalf("extractor.New: %v", err)
	}
	return NewServer(8760, token, svc, ext, logger)
}

func do(t *testing.T, srv *Server, method, path string, user uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != uuid.Nil {
		req.Header.Set(UserHeader, user.String())
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())

	w := do(t, srv, "GET", "/health", uuid.Nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestHealthEndpoint_ReportsChecks(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())
	srv.AddHealthCheck("postgres", func(context.Context) error { return nil })
	srv.AddHealthCheck("nats", func(context.Context) error { return errors.New("not connected") })

	w := do(t, srv, "GET", "/health", uuid.Nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	want := map[string]string{"status": "unavailable", "postgres": "ok", "nats": "down"}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("health body (-want +got):\n%s", diff)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())

	w := do(t, srv, "GET", "/api/v1/compass/status", uuid.Nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	var body struct {
		Agent   string   `json:"agent"`
		Modules []string `json:"modules"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Agent != "compass" || len(body.Modules) != len(model.Modules) {
		t.Errorf("unexpected status body: %+v", body)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())
	if w := do(t, srv, "GET", "/nonexistent", uuid.Nil, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv := newTestServer(t, "s3cret", newFakeService())
	user := uuid.New()

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"valid", "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/users/profile", nil)
			req.Header.Set(UserHeader, user.String())
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}

	// Health stays open.
	if w := do(t, srv, "GET", "/health", uuid.Nil, nil); w.Code != http.StatusOK {
		t.Errorf("health expected 200, got %d", w.Code)
	}
}

func TestUserHeaderRequired(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())

	if w := do(t, srv, "GET", "/api/v1/users/profile", uuid.Nil, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing header: expected 401, got %d", w.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/users/profile", nil)
	req.Header.Set(UserHeader, "not-a-uuid")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad header: expected 401, got %d", w.Code)
	}
}

func TestComputeEndpoints(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())

	tests := []struct {
		name string
		path string
		body any
		want string
	}{
		{
			name: "extract",
			path: "/api/v1/compute/extract",
			body: map[string]string{"module": "strengths", "text": "I am good at public speaking."},
			want: `[{"kind":"strengths","text":"public speaking"}]`,
		},
		{
			name: "extract nothing",
			path: "/api/v1/compute/extract",
			body: map[string]string{"module": "career", "text": "Nothing to see here."},
			want: `[]`,
		},
		{
			name: "merge",
			path: "/api/v1/compute/merge",
			body: map[string][]string{"existing": {"a", "b"}, "candidates": {"b", "c", "c"}},
			want: `["a","b","c"]`,
		},
		{
			name: "alignment with mixed skills",
			path: "/api/v1/compute/alignment",
			body: map[string]any{
				"passions": []string{"AI", "Sustainability"},
				"skills":   []any{map[string]any{"name": "Machine Learning", "level": 8}, "Carbon Accounting"},
			},
			want: `100`,
		},
		{
			name: "alignment with garbage skills",
			path: "/api/v1/compute/alignment",
			body: map[string]any{"passions": []string{"AI"}, "skills": "python"},
			want: `0`,
		},
		{
			name: "alignment with passions not a list",
			path: "/api/v1/compute/alignment",
			body: map[string]any{"passions": "AI", "skills": []string{"ML"}},
			want: `0`,
		},
		{
			name: "alignment drops non-string passions",
			path: "/api/v1/compute/alignment",
			body: map[string]any{"passions": []any{"AI", 5, nil}, "skills": []string{"Machine Learning"}},
			want: `100`,
		},
		{
			name: "similarity with missing lists",
			path: "/api/v1/compute/similarity",
			body: map[string]any{
				"a": map[string]any{"interests": "AI", "skills": nil},
				"b": map[string][]string{"interests": {"AI"}},
			},
			want: `0`,
		},
		{
			name: "similarity",
			path: "/api/v1/compute/similarity",
			body: map[string]any{
				"a": map[string][]string{"interests": {"AI", "Travel"}, "skills": {"JS"}},
				"b": map[string][]string{"interests": {"AI"}, "skills": {"JS", "UX"}},
			},
			want: `5`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, "POST", tt.path, uuid.Nil, tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", w.Code, w.Body)
			}
			if got := string(bytes.TrimSpace(w.Body.Bytes())); got != tt.want {
				t.Errorf("body = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestComputeRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())
	req := httptest.NewRequest("POST", "/api/v1/compute/merge", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestPipelineCoach(t *testing.T) {
	svc := newFakeService()
	srv := newTestServer(t, "", svc)
	user := uuid.New()

	w := do(t, srv, "GET", "/api/v1/pipeline/coach", user, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var gotPlan recommend.Plan
	if err := json.Unmarshal(w.Body.Bytes(), &gotPlan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if diff := cmp.Diff(recommend.IncompletePlan(), gotPlan); diff != "" {
		t.Errorf("incomplete plan mismatch (-want +got):\n%s", diff)
	}

	body := map[string]any{
		"passions":     []string{"AI"},
		"skills":       []any{map[string]any{"name": "Python", "level": 8}, map[string]any{"name": "Sales", "level": 2}},
		"demographics": map[string]any{"location": "Lisbon"},
		"personality":  map[string]any{"type": "INTJ"},
	}
	if w := do(t, srv, "PUT", "/api/v1/pipeline/tests", user, body); w.Code != http.StatusOK {
		t.Fatalf("save tests: expected 200, got %d: %s", w.Code, w.Body)
	}

	w = do(t, srv, "GET", "/api/v1/pipeline/coach", user, nil)
	var plan recommend.Plan
	if err := json.Unmarshal(w.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if len(plan.Steps) != 6 {
		t.Errorf("steps = %d, want 6", len(plan.Steps))
	}
}

func TestSendMessage(t *testing.T) {
	svc := newFakeService()
	srv := newTestServer(t, "", svc)
	user := uuid.New()

	w := do(t, srv, "POST", "/api/v1/chat/message", user, map[string]string{"content": "hi", "module": "career"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res processor.MessageResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Session.Module != model.ModuleCareer || res.Reply.Content != "ok" {
		t.Errorf("result = %+v", res)
	}

	if w := do(t, srv, "POST", "/api/v1/chat/message", user, map[string]string{"content": "hi", "session_id": "junk"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad session id: expected 400, got %d", w.Code)
	}
	if w := do(t, srv, "POST", "/api/v1/chat/message", user, map[string]string{"content": "hi", "session_id": uuid.NewString()}); w.Code != http.StatusNotFound {
		t.Errorf("unknown session: expected 404, got %d", w.Code)
	}
}

func TestServiceFailureIsGeneric(t *testing.T) {
	svc := newFakeService()
	svc.err = errors.New("pool exhausted: insight merge")
	srv := newTestServer(t, "", svc)

	w := do(t, srv, "POST", "/api/v1/chat/message", uuid.New(), map[string]string{"content": "hi"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var body map[string]string
	json.Unmarshal(w.Body.Bytes(), &body)
	if body["error"] != "send message failed" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestUpdateSessionStatus(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())
	user := uuid.New()
	path := "/api/v1/chat/session/" + uuid.NewString()

	if w := do(t, srv, "PUT", path, user, map[string]string{"status": "completed"}); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := do(t, srv, "PUT", path, user, map[string]string{"status": "deleted"}); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if w := do(t, srv, "GET", path, user, nil); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := do(t, srv, "GET", "/api/v1/chat/session/xyz", user, nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSearchShortQuery(t *testing.T) {
	srv := newTestServer(t, "", newFakeService())
	w := do(t, srv, "GET", "/api/v1/network/search?q=a", uuid.New(), nil)
	if got := string(bytes.TrimSpace(w.Body.Bytes())); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestSearchConnections(t *testing.T) {
	svc := newFakeService()
	srv := newTestServer(t, "", svc)
	me, grace := uuid.New(), uuid.New()
	svc.users[me] = &model.UserProfile{ID: me, IsActive: true, Profile: model.Profile{Name: "Grace Me"}}
	svc.users[grace] = &model.UserProfile{ID: grace, IsActive: true, Profile: model.Profile{Name: "Grace Hopper"}}
	other := uuid.New()
	svc.users[other] = &model.UserProfile{ID: other, IsActive: true, Profile: model.Profile{Name: "Alan"}}

	w := do(t, srv, "GET", "/api/v1/network/search?q=GRA", me, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []recommend.Connection
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != grace {
		t.Errorf("results = %+v, want only %s", got, grace)
	}
}

func TestSuggestedConnections(t *testing.T) {
	svc := newFakeService()
	srv := newTestServer(t, "", svc)
	me, peer, stranger := uuid.New(), uuid.New(), uuid.New()
	svc.users[me] = &model.UserProfile{ID: me, Profile: model.Profile{Interests: []string{"AI"}}}
	svc.users[peer] = &model.UserProfile{ID: peer, Profile: model.Profile{Name: "Peer", Interests: []string{"AI"}}}
	svc.users[stranger] = &model.UserProfile{ID: stranger, Profile: model.Profile{Interests: []string{"Knitting"}}}

	w := do(t, srv, "GET", "/api/v1/network/suggested", me, nil)
	var got []recommend.Connection
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 || got[0].ID != peer || got[0].Score != 2 {
		t.Errorf("connections = %+v", got)
	}
}

func TestDashboard(t *testing.T) {
	svc := newFakeService()
	srv := newTestServer(t, "", svc)
	user := uuid.New()
	for i := 0; i < 7; i++ {
		cs := model.NewSession(user, model.ModuleGoals, time.Now())
		if i < 2 {
			cs.Status = model.StatusCompleted
		}
		svc.sessions = append(svc.sessions, cs)
	}

	w := do(t, srv, "GET", "/api/v1/users/dashboard", user, nil)
	var body dashboardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Progress.TotalSessions != 7 || body.Progress.EngagementScore != 29 {
		t.Errorf("progress = %+v", body.Progress)
	}
	if len(body.RecentSessions) != dashboardRecent {
		t.Errorf("recent = %d, want %d", len(body.RecentSessions), dashboardRecent)
	}
}

func TestRecommendationsEndpoint(t *testing.T) {
	svc := newFakeService()
	srv := newTestServer(t, "", svc)
	user := uuid.New()
	svc.users[user] = &model.UserProfile{
		ID:       user,
		IsActive: true,
		Insights: model.Insights{Passions: []string{"music"}},
	}
	svc.sessions = []*model.ChatSession{
		model.NewSession(user, model.ModulePassions, time.Now()),
		model.NewSession(user, model.ModuleStrengths, time.Now()),
	}

	w := do(t, srv, "GET", "/api/v1/insights/recommendations", user, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got []recommend.Recommendation
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var types []string
	for _, rec := range got {
		types = append(types, rec.Type)
	}
	if diff := cmp.Diff([]string{"passion", "exploration"}, types); diff != "" {
		t.Errorf("block types (-want +got):\n%s", diff)
	}
	var explore []model.Module
	for _, it := range got[len(got)-1].Items {
		explore = append(explore, it.Module)
	}
	want := []model.Module{model.ModuleUpskill, model.ModuleMoney, model.ModuleCareer}
	if diff := cmp.Diff(want, explore); diff != "" {
		t.Errorf("exploration (-want +got):\n%s", diff)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	svc := newFakeService()
	srv := newTestServer(t, "", svc)
	user := uuid.New()
	done := model.NewSession(user, model.ModuleGoals, time.Now())
	done.Status = model.StatusCompleted
	svc.sessions = []*model.ChatSession{
		done,
		model.NewSession(user, model.ModuleGoals, time.Now()),
		model.NewSession(uuid.New(), model.ModuleGoals, time.Now()),
	}

	w := do(t, srv, "GET", "/api/v1/insights/analytics", user, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got recommend.Analytics
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TotalSessions != 2 || got.CompletedSessions != 1 {
		t.Errorf("total/completed = %d/%d, want 2/1", got.TotalSessions, got.CompletedSessions)
	}
}
