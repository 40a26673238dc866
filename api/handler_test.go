package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Aworminator/Project-Tracker/flow"
	"github.com/Aworminator/Project-Tracker/identity"
	"github.com/Aworminator/Project-Tracker/persistence"
	"github.com/Aworminator/Project-Tracker/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type testServer struct {
	e    *echo.Echo
	repo *persistence.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo, err := persistence.Open("sqlite", filepath.Join(t.TempDir(), "test.db"), true)
	if err != nil {
		t.Fatalf("failed to setup repo: %v", err)
	}

	hasher := flow.NewBcryptHasher(4)
	generator := func() string { return uuid.New().String() }
	reg := flow.NewRegistrationFlow(repo, hasher, generator, repo)
	login := flow.NewLoginFlow(repo, hasher, repo)
	sessions := session.NewManager(session.NewHS256Strategy("test-secret", time.Hour))

	h := NewHandler(reg, login, sessions, repo)

	e := echo.New()
	g := e.Group("/api/v1")
	h.RegisterRoutes(g)

	return &testServer{e: e, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// seedAdmin inserts an admin directly; self-registration only ever
// produces members.
func (s *testServer) seedAdmin(t *testing.T, email, password string) *identity.Identity {
	t.Helper()
	hash, err := flow.NewBcryptHasher(4).Hash(password)
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	now := time.Now()
	admin := &identity.Identity{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Role:         identity.RoleAdmin,
		Status:       identity.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(context.Background(), admin); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}
	return admin
}

func loginToken(t *testing.T, s *testServer, email, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp.Token
}

func TestAPIIntegration(t *testing.T) {
	s := newTestServer(t)

	// 1. Registration
	rec := s.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email":      "alice@example.com",
		"password":   "password123",
		"first_name": "Alice",
		"last_name":  "Liddell",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("registration failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var regResp struct {
		Token    string `json:"token"`
		Identity struct {
			ID        string `json:"id"`
			Role      string `json:"role"`
			FirstName string `json:"first_name"`
		} `json:"identity"`
	}
	json.Unmarshal(rec.Body.Bytes(), &regResp)
	if regResp.Identity.Role != "member" {
		t.Errorf("self-registration must produce a member, got %q", regResp.Identity.Role)
	}
	if regResp.Identity.FirstName != "Alice" {
		t.Errorf("registration should store the name, got %q", regResp.Identity.FirstName)
	}
	if regResp.Token == "" {
		t.Error("registration should auto-login and return a token")
	}

	// 2. Duplicate registration
	rec = s.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email":    "ALICE@example.com",
		"password": "otherpass",
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d", rec.Code)
	}

	// 3. Protected route without a token
	rec = s.do(t, http.MethodGet, "/api/v1/whoami", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	// 4. WhoAmI with the registration token
	rec = s.do(t, http.MethodGet, "/api/v1/whoami", regResp.Token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("whoami failed with code %d: %s", rec.Code, rec.Body.String())
	}

	// 5. Members cannot create projects
	aliceToken := loginToken(t, s, "alice@example.com", "password123")
	rec = s.do(t, http.MethodPost, "/api/v1/projects", aliceToken, map[string]string{"name": "Atlas"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("member project creation should be 403, got %d", rec.Code)
	}

	// 6. Admin creates a project
	s.seedAdmin(t, "root@example.com", "adminpass123")
	adminToken := loginToken(t, s, "root@example.com", "adminpass123")

	rec = s.do(t, http.MethodPost, "/api/v1/projects", adminToken, map[string]string{
		"name": "Atlas",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("project creation failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var proj struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &proj)

	// 7. Alice has no memberships yet, so her listing is empty
	rec = s.do(t, http.MethodGet, "/api/v1/projects", aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("project listing failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var projects []json.RawMessage
	json.Unmarshal(rec.Body.Bytes(), &projects)
	if len(projects) != 0 {
		t.Errorf("member without memberships should see no projects, got %d", len(projects))
	}

	// 8. Direct read of a project she is not in is denied
	rec = s.do(t, http.MethodGet, "/api/v1/projects/"+proj.ID, aliceToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-member read, got %d", rec.Code)
	}

	// 9. Admin adds Alice to the project
	rec = s.do(t, http.MethodPost, "/api/v1/projects/"+proj.ID+"/members", adminToken, map[string]string{
		"user_id": regResp.Identity.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member failed with code %d: %s", rec.Code, rec.Body.String())
	}

	// Adding the same member again hits the composite unique index.
	rec = s.do(t, http.MethodPost, "/api/v1/projects/"+proj.ID+"/members", adminToken, map[string]string{
		"user_id": regResp.Identity.ID,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate membership, got %d", rec.Code)
	}

	// 10. Now the project is visible to her
	rec = s.do(t, http.MethodGet, "/api/v1/projects", aliceToken, nil)
	json.Unmarshal(rec.Body.Bytes(), &projects)
	if len(projects) != 1 {
		t.Errorf("expected 1 visible project after joining, got %d", len(projects))
	}
	rec = s.do(t, http.MethodGet, "/api/v1/projects/"+proj.ID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("member read of joined project failed: %d", rec.Code)
	}
}

func TestTaskAssigneeUpdate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email":    "worker@example.com",
		"password": "password123",
	})
	var regResp struct {
		Identity struct {
			ID string `json:"id"`
		} `json:"identity"`
	}
	json.Unmarshal(rec.Body.Bytes(), &regResp)
	workerToken := loginToken(t, s, "worker@example.com", "password123")

	s.seedAdmin(t, "root@example.com", "adminpass123")
	adminToken := loginToken(t, s, "root@example.com", "adminpass123")

	rec = s.do(t, http.MethodPost, "/api/v1/projects", adminToken, map[string]string{"name": "Atlas"})
	var proj struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &proj)

	// One task assigned to the worker, one unassigned.
	rec = s.do(t, http.MethodPost, "/api/v1/tasks", adminToken, map[string]any{
		"title":       "Assigned",
		"project_id":  proj.ID,
		"assigned_to": regResp.Identity.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("task creation failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var assigned struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &assigned)

	rec = s.do(t, http.MethodPost, "/api/v1/tasks", adminToken, map[string]any{
		"title":      "Unassigned",
		"project_id": proj.ID,
	})
	var unassigned struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &unassigned)

	// The assignee completes their own task.
	rec = s.do(t, http.MethodPut, "/api/v1/tasks/"+assigned.ID, workerToken, map[string]string{
		"status": "completed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("assignee update failed with code %d: %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Status      string  `json:"status"`
		CompletedAt *string `json:"completed_at"`
	}
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Status != "completed" || updated.CompletedAt == nil {
		t.Errorf("completed task should carry completed_at, got %+v", updated)
	}

	// Reopening clears the completion timestamp. The field is omitted
	// from the response when null, so decode into a fresh struct.
	rec = s.do(t, http.MethodPut, "/api/v1/tasks/"+assigned.ID, workerToken, map[string]string{
		"status": "in-progress",
	})
	updated = struct {
		Status      string  `json:"status"`
		CompletedAt *string `json:"completed_at"`
	}{}
	json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated.Status != "in-progress" || updated.CompletedAt != nil {
		t.Errorf("reopened task must not carry completed_at, got %+v", updated)
	}

	// A task not assigned to them stays off limits.
	rec = s.do(t, http.MethodPut, "/api/v1/tasks/"+unassigned.ID, workerToken, map[string]string{
		"status": "completed",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-assignee update, got %d", rec.Code)
	}
}

func TestLoginFailuresRenderIdentically(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email":    "known@example.com",
		"password": "password123",
	})

	wrongPass := s.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "known@example.com",
		"password": "wrongpassword",
	})
	unknown := s.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for both failures, got %d and %d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Errorf("failure responses must be identical:\n%s\n%s", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestSuspensionTakesEffectImmediately(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email":    "victim@example.com",
		"password": "password123",
	})
	var regResp struct {
		Identity struct {
			ID string `json:"id"`
		} `json:"identity"`
	}
	json.Unmarshal(rec.Body.Bytes(), &regResp)
	victimToken := loginToken(t, s, "victim@example.com", "password123")

	s.seedAdmin(t, "root@example.com", "adminpass123")
	adminToken := loginToken(t, s, "root@example.com", "adminpass123")

	// A project the victim belongs to, so the membership alone would
	// grant reads if suspension were not checked.
	rec = s.do(t, http.MethodPost, "/api/v1/projects", adminToken, map[string]string{"name": "Atlas"})
	var proj struct {
		ID string `json:"id"`
	}
	json.Unmarshal(rec.Body.Bytes(), &proj)
	rec = s.do(t, http.MethodPost, "/api/v1/projects/"+proj.ID+"/members", adminToken, map[string]string{
		"user_id": regResp.Identity.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add member failed with code %d: %s", rec.Code, rec.Body.String())
	}

	// Everything works before suspension.
	for _, path := range []string{"/api/v1/projects", "/api/v1/projects/" + proj.ID, "/api/v1/projects/" + proj.ID + "/members"} {
		rec = s.do(t, http.MethodGet, path, victimToken, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("pre-suspension GET %s failed: %d", path, rec.Code)
		}
	}

	rec = s.do(t, http.MethodPut, "/api/v1/users/"+regResp.Identity.ID, adminToken, map[string]string{
		"status": "suspended",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("suspension failed with code %d: %s", rec.Code, rec.Body.String())
	}

	// The old token still authenticates, but the fresh identity load
	// carries the suspension and the policy denies everything. The
	// single-resource reads must deny too; the victim's membership row
	// no longer buys anything.
	for _, path := range []string{"/api/v1/projects", "/api/v1/projects/" + proj.ID, "/api/v1/projects/" + proj.ID + "/members"} {
		rec = s.do(t, http.MethodGet, path, victimToken, nil)
		if rec.Code != http.StatusForbidden {
			t.Errorf("suspended identity should be denied on GET %s, got %d", path, rec.Code)
		}
	}

	// New logins are rejected outright even with the right password.
	rec = s.do(t, http.MethodPost, "/api/v1/login", "", map[string]string{
		"email":    "victim@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("suspended login should be 403, got %d", rec.Code)
	}
}

func TestUserAdministrationAdminOnly(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/api/v1/register", "", map[string]string{
		"email":    "plain@example.com",
		"password": "password123",
	})
	memberToken := loginToken(t, s, "plain@example.com", "password123")

	rec := s.do(t, http.MethodGet, "/api/v1/users", memberToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("member user listing should be 403, got %d", rec.Code)
	}

	admin := s.seedAdmin(t, "root@example.com", "adminpass123")
	adminToken := loginToken(t, s, "root@example.com", "adminpass123")

	rec = s.do(t, http.MethodGet, "/api/v1/users", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("admin user listing failed: %d", rec.Code)
	}

	// Role changes are validated at the boundary.
	rec = s.do(t, http.MethodPut, "/api/v1/users/"+admin.ID, adminToken, map[string]string{
		"role": "superuser",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid role should be 400, got %d", rec.Code)
	}
}
