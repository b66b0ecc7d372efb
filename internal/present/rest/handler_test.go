package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/devlink-app/devlink/internal/domain"
	"github.com/devlink-app/devlink/internal/present/rest/middleware"
	"github.com/devlink-app/devlink/internal/service"
	"github.com/devlink-app/devlink/internal/usecase"
	"github.com/devlink-app/devlink/store"
)

// --- mocks ---

type memStore struct {
	docs map[string]map[string]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]map[string]json.RawMessage{}}
}

func (m *memStore) field(data json.RawMessage, field string) string {
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	s, _ := body[field].(string)
	return s
}

func (m *memStore) GetByID(ctx context.Context, collection, id string) (store.Document, error) {
	data, ok := m.docs[collection][id]
	if !ok {
		return store.Document{}, domain.NotFoundError{Resource: collection + " document"}
	}
	return store.Document{ID: id, Data: data}, nil
}

func (m *memStore) QueryByEquality(ctx context.Context, collection, field, value string) ([]store.Document, error) {
	var out []store.Document
	for id, data := range m.docs[collection] {
		if m.field(data, field) == value {
			out = append(out, store.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func (m *memStore) QueryByMembership(ctx context.Context, collection, field string, values []string) ([]store.Document, error) {
	if len(values) > store.MembershipLimit {
		return nil, store.ErrTooManyValues
	}
	member := map[string]bool{}
	for _, v := range values {
		member[v] = true
	}
	var out []store.Document
	for id, data := range m.docs[collection] {
		if member[m.field(data, field)] {
			out = append(out, store.Document{ID: id, Data: data})
		}
	}
	return out, nil
}

func (m *memStore) ListAll(ctx context.Context, collection string) ([]store.Document, error) {
	var out []store.Document
	for id, data := range m.docs[collection] {
		out = append(out, store.Document{ID: id, Data: data})
	}
	return out, nil
}

func (m *memStore) Add(ctx context.Context, collection, id string, value any) error {
	if m.docs[collection] == nil {
		m.docs[collection] = map[string]json.RawMessage{}
	}
	if _, exists := m.docs[collection][id]; exists {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.docs[collection][id] = data
	return nil
}

func (m *memStore) Update(ctx context.Context, collection, id string, value any) error {
	if _, exists := m.docs[collection][id]; !exists {
		return domain.NotFoundError{Resource: collection + " document"}
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.docs[collection][id] = data
	return nil
}

func (m *memStore) Delete(ctx context.Context, collection, id string) error {
	delete(m.docs[collection], id)
	return nil
}

var _ store.Store = (*memStore)(nil)

type mockFollowGraph struct{}

func (m *mockFollowGraph) GetFollowees(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
func (m *mockFollowGraph) GetFollowers(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
func (m *mockFollowGraph) Invalidate(userID string) {}

type mockProfiles struct{}

func (m *mockProfiles) Resolve(ctx context.Context, userID string) (domain.Profile, error) {
	return domain.Profile{}, domain.NotFoundError{Resource: "user"}
}
func (m *mockProfiles) Invalidate(userID string) {}

func newTestServer(t *testing.T) (*echo.Echo, *memStore) {
	t.Helper()

	m := newMemStore()
	config := domain.Config{
		FQDN:        "devlink.example.com",
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
	}

	auth := service.NewAuthService(&config, m)
	follows := &mockFollowGraph{}
	profiles := &mockProfiles{}

	h := NewHandler(
		config,
		auth,
		nil,
		nil,
		usecase.NewUserUsecase(m, profiles),
		usecase.NewProjectUsecase(m, nil, nil),
		usecase.NewCommentUsecase(m, profiles, nil),
		usecase.NewFollowUsecase(m, follows, nil),
		usecase.NewFeedUsecase(m, follows, profiles),
		usecase.NewActivityUsecase(m),
	)

	authMiddleware := middleware.NewAuthMiddleware(auth, config)

	e := echo.New()
	e.Use(authMiddleware.IdentifyIdentity)
	h.RegisterRoutes(e, authMiddleware.RequireIdentity)
	return e, m
}

func doJSON(t *testing.T, e *echo.Echo, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

func registerAndLogin(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()

	res := doJSON(t, e, http.MethodPost, "/api/v1/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct horse",
		"name":     username,
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("register: expected 201 got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, e, http.MethodPost, "/api/v1/login", "", map[string]string{
		"username": username,
		"password": "correct horse",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d: %s", res.Code, res.Body.String())
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil || out.Token == "" {
		t.Fatalf("login: missing token in %s", res.Body.String())
	}
	return out.Token
}

// --- tests ---

func TestProjectLifecycleOverHTTP(t *testing.T) {
	e, _ := newTestServer(t)
	token := registerAndLogin(t, e, "maria")

	res := doJSON(t, e, http.MethodPost, "/api/v1/projects", token, map[string]any{
		"title":      "my project",
		"visibility": "public",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", res.Code, res.Body.String())
	}

	var project domain.Project
	if err := json.Unmarshal(res.Body.Bytes(), &project); err != nil {
		t.Fatalf("decode project: %v", err)
	}

	res = doJSON(t, e, http.MethodGet, "/api/v1/projects/"+project.ID, "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("get: expected 200 got %d", res.Code)
	}

	res = doJSON(t, e, http.MethodGet, "/api/v1/catalog", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("catalog: expected 200 got %d", res.Code)
	}
	var catalog []domain.ProjectSummary
	if err := json.Unmarshal(res.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(catalog) != 1 || catalog[0].ID != project.ID {
		t.Fatalf("expected the created project in catalog, got %+v", catalog)
	}

	res = doJSON(t, e, http.MethodDelete, "/api/v1/projects/"+project.ID, token, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", res.Code)
	}

	res = doJSON(t, e, http.MethodGet, "/api/v1/projects/"+project.ID, "", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete got %d", res.Code)
	}
}

func TestAuthRequiredRoutes(t *testing.T) {
	e, _ := newTestServer(t)

	res := doJSON(t, e, http.MethodGet, "/api/v1/feed", "", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("feed without token: expected 401 got %d", res.Code)
	}

	res = doJSON(t, e, http.MethodPost, "/api/v1/projects", "not-a-token", map[string]any{
		"title":      "x",
		"visibility": "public",
	})
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401 got %d", res.Code)
	}
}

func TestPrivateProjectHiddenOverHTTP(t *testing.T) {
	e, _ := newTestServer(t)
	owner := registerAndLogin(t, e, "maria")
	other := registerAndLogin(t, e, "bruno")

	res := doJSON(t, e, http.MethodPost, "/api/v1/projects", owner, map[string]any{
		"title":      "secret",
		"visibility": "private",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d", res.Code)
	}
	var project domain.Project
	if err := json.Unmarshal(res.Body.Bytes(), &project); err != nil {
		t.Fatalf("decode project: %v", err)
	}

	res = doJSON(t, e, http.MethodGet, "/api/v1/projects/"+project.ID, other, nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner got %d", res.Code)
	}

	res = doJSON(t, e, http.MethodGet, "/api/v1/projects/"+project.ID, owner, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner got %d", res.Code)
	}
}

func TestLikeCommentAndActivityOverHTTP(t *testing.T) {
	e, _ := newTestServer(t)
	owner := registerAndLogin(t, e, "maria")
	fan := registerAndLogin(t, e, "bruno")

	res := doJSON(t, e, http.MethodPost, "/api/v1/projects", owner, map[string]any{
		"title":      "my project",
		"visibility": "public",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d", res.Code)
	}
	var project domain.Project
	if err := json.Unmarshal(res.Body.Bytes(), &project); err != nil {
		t.Fatalf("decode project: %v", err)
	}

	res = doJSON(t, e, http.MethodPut, "/api/v1/projects/"+project.ID+"/like", fan, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("like: expected 200 got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, e, http.MethodPost, "/api/v1/projects/"+project.ID+"/comments", fan, map[string]string{
		"content": "nice work",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("comment: expected 201 got %d", res.Code)
	}

	res = doJSON(t, e, http.MethodGet, "/api/v1/activity", owner, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("activity: expected 200 got %d", res.Code)
	}
	var events []domain.EventRecord
	if err := json.Unmarshal(res.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode activity: %v", err)
	}

	kinds := map[domain.EventKind]int{}
	for _, event := range events {
		kinds[event.Kind]++
	}
	if kinds[domain.EventProjectCreated] != 1 || kinds[domain.EventCommentReceived] != 1 || kinds[domain.EventLikesReceived] != 1 {
		t.Fatalf("unexpected activity mix: %+v", kinds)
	}
}

func TestFollowOverHTTP(t *testing.T) {
	e, m := newTestServer(t)
	follower := registerAndLogin(t, e, "maria")
	_ = registerAndLogin(t, e, "bruno")

	var followeeID string
	for id, data := range m.docs[store.CollectionUsers] {
		if m.field(data, "username") == "bruno" {
			followeeID = id
		}
	}
	if followeeID == "" {
		t.Fatalf("followee not found in store")
	}

	res := doJSON(t, e, http.MethodPut, "/api/v1/users/"+followeeID+"/follow", follower, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("follow: expected 200 got %d: %s", res.Code, res.Body.String())
	}

	res = doJSON(t, e, http.MethodPut, "/api/v1/users/"+followeeID+"/follow", "", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous follow: expected 401 got %d", res.Code)
	}
}
