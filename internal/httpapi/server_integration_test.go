package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtammam/tasksync/internal/authn"
	"github.com/dtammam/tasksync/internal/db"
	"github.com/dtammam/tasksync/internal/store"
)

// getTestPool connects to a disposable Postgres database, ensures the
// schema and empties every table before each test, the same
// TEST_DATABASE_URL-gated pattern the
// teacher's integration tests use (skipped entirely without the env var
// or in -short mode).
func getTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration tests")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, url, 5)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	if err := store.EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}
	for _, table := range []string{"audit_log", "task", "list_grant", "list", "membership", "app_user", "space"} {
		if _, err := pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("failed to clean table %s: %v", table, err)
		}
	}
	t.Cleanup(pool.Close)
	return pool
}

func seedAdmin(t *testing.T, pool *pgxpool.Pool, spaceID, userID, email string) {
	t.Helper()
	ctx := context.Background()
	if err := store.UpsertSpace(ctx, pool, store.Space{ID: spaceID, Name: "Test Space"}); err != nil {
		t.Fatalf("seed space: %v", err)
	}
	if err := store.CreateUser(ctx, pool, store.User{
		ID: userID, Email: email, Display: "Admin", SoundTheme: "chime", ProfileAttachments: "{}",
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := store.CreateMembership(ctx, pool, store.Membership{
		ID: "m-" + userID, SpaceID: spaceID, UserID: userID, Role: store.RoleAdmin,
	}); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
}

// TestEndToEnd_LoginCreateListCreateTaskIdempotentSyncPull walks the core
// happy path: legacy login, list creation, idempotent task creation
// (§4.3 step 7), and a sync pull that observes the created task.
func TestEndToEnd_LoginCreateListCreateTaskIdempotentSyncPull(t *testing.T) {
	pool := getTestPool(t)
	seedAdmin(t, pool, "s1", "u-admin", "admin@example.com")

	srv := NewServer(pool, authn.NewIssuer("test-secret"), "dev-login-pw", 1000)
	router := srv.Routes()

	// Legacy login upgrades the empty password hash on success (§8 S3).
	loginBody, _ := json.Marshal(map[string]any{"email": "admin@example.com", "password": "dev-login-pw"})
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(string(loginBody))))
	if loginRec.Code != http.StatusOK {
		t.Fatalf("login: got status %d, body %s", loginRec.Code, loginRec.Body.String())
	}
	var login loginResp
	if err := json.NewDecoder(loginRec.Body).Decode(&login); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	auth := "Bearer " + login.Token

	// Create a list.
	listBody, _ := json.Marshal(createListReq{Name: "Groceries"})
	listReq := httptest.NewRequest(http.MethodPost, "/lists", strings.NewReader(string(listBody)))
	listReq.Header.Set("Authorization", auth)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusCreated {
		t.Fatalf("create list: got status %d, body %s", listRec.Code, listRec.Body.String())
	}
	var list store.List
	if err := json.NewDecoder(listRec.Body).Decode(&list); err != nil {
		t.Fatalf("decode list response: %v", err)
	}

	// Create a task with a client-supplied idempotency id.
	taskBody, _ := json.Marshal(createTaskReq{ID: "client-task-1", Title: "Buy milk", ListID: list.ID})
	taskReq := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(string(taskBody)))
	taskReq.Header.Set("Authorization", auth)
	taskRec := httptest.NewRecorder()
	router.ServeHTTP(taskRec, taskReq)
	if taskRec.Code != http.StatusCreated {
		t.Fatalf("create task: got status %d, body %s", taskRec.Code, taskRec.Body.String())
	}

	// Replaying the same id must be idempotent: 200, not 201 (§4.3 step 7).
	taskReq2 := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(string(taskBody)))
	taskReq2.Header.Set("Authorization", auth)
	taskRec2 := httptest.NewRecorder()
	router.ServeHTTP(taskRec2, taskReq2)
	if taskRec2.Code != http.StatusOK {
		t.Fatalf("idempotent replay of create task: got status %d, want %d", taskRec2.Code, http.StatusOK)
	}

	// A pull with no since_ts must surface the task and a positive cursor.
	pullReq := httptest.NewRequest(http.MethodPost, "/sync/pull", strings.NewReader("{}"))
	pullReq.Header.Set("Authorization", auth)
	pullRec := httptest.NewRecorder()
	router.ServeHTTP(pullRec, pullReq)
	if pullRec.Code != http.StatusOK {
		t.Fatalf("sync pull: got status %d, body %s", pullRec.Code, pullRec.Body.String())
	}
	var pullResult pullResp
	if err := json.NewDecoder(pullRec.Body).Decode(&pullResult); err != nil {
		t.Fatalf("decode pull response: %v", err)
	}
	if len(pullResult.Tasks) != 1 {
		t.Fatalf("expected 1 task in pull response, got %d", len(pullResult.Tasks))
	}
	if pullResult.Tasks[0].ID != "client-task-1" {
		t.Errorf("pulled task id = %q, want %q", pullResult.Tasks[0].ID, "client-task-1")
	}
	if pullResult.CursorTs <= 0 {
		t.Error("expected a positive cursor_ts")
	}
}

// TestLogin_RejectsWrongPassword confirms a bad password never reaches
// the hash-upgrade path and is rejected with 401.
func TestLogin_RejectsWrongPassword(t *testing.T) {
	pool := getTestPool(t)
	seedAdmin(t, pool, "s1", "u-admin", "admin@example.com")

	srv := NewServer(pool, authn.NewIssuer("test-secret"), "dev-login-pw", 1000)
	router := srv.Routes()

	body, _ := json.Marshal(map[string]any{"email": "admin@example.com", "password": "totally-wrong"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(string(body))))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// TestContributor_CannotCreateTaskWithoutGrant exercises the authorization
// gate in Tasks.Create (§4.3 step 2): a contributor with no ListGrant on
// the target list is forbidden.
func TestContributor_CannotCreateTaskWithoutGrant(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()
	seedAdmin(t, pool, "s1", "u-admin", "admin@example.com")
	if err := store.CreateUser(ctx, pool, store.User{ID: "u-contrib", Email: "c@example.com", Display: "Contributor", SoundTheme: "chime", ProfileAttachments: "{}"}); err != nil {
		t.Fatalf("seed contributor: %v", err)
	}
	if err := store.CreateMembership(ctx, pool, store.Membership{ID: "m-contrib", SpaceID: "s1", UserID: "u-contrib", Role: store.RoleContributor}); err != nil {
		t.Fatalf("seed contributor membership: %v", err)
	}
	if err := store.CreateList(ctx, pool, store.List{ID: "list-1", SpaceID: "s1", Name: "Private", ListOrder: "z"}); err != nil {
		t.Fatalf("seed list: %v", err)
	}

	srv := NewServer(pool, authn.NewIssuer("test-secret"), "dev-login-pw", 1000)
	router := srv.Routes()

	body, _ := json.Marshal(createTaskReq{Title: "Sneaky task", ListID: "list-1"})
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(string(body)))
	req.Header.Set("x-space-id", "s1")
	req.Header.Set("x-user-id", "u-contrib")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("got status %d, want %d, body: %s", rec.Code, http.StatusForbidden, rec.Body.String())
	}
}
