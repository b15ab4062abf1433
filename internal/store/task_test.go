package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtammam/tasksync/internal/db"
	"github.com/dtammam/tasksync/internal/store"
)

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

// TestCreateTask_IdempotentOnConflictingID asserts the ON CONFLICT DO
// NOTHING primitive that Tasks.Create relies on for idempotent create
// (§4.3 step 7): a second insert with the same id never creates a
// second row and is reported as not-created.
func TestCreateTask_IdempotentOnConflictingID(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()

	if err := store.UpsertSpace(ctx, pool, store.Space{ID: "s1", Name: "Space"}); err != nil {
		t.Fatalf("seed space: %v", err)
	}
	if err := store.CreateList(ctx, pool, store.List{ID: "l1", SpaceID: "s1", Name: "List", ListOrder: "z"}); err != nil {
		t.Fatalf("seed list: %v", err)
	}

	task := store.Task{
		ID: "t1", SpaceID: "s1", Title: "First", Status: store.StatusPending,
		ListID: "l1", TaskOrder: "z", UpdatedTs: 1, CreatedTs: 1,
	}
	created, err := store.CreateTask(ctx, pool, task)
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if !created {
		t.Fatal("expected the first insert to report created = true")
	}

	task.Title = "Second insert with same id, different title"
	created2, err := store.CreateTask(ctx, pool, task)
	if err != nil {
		t.Fatalf("CreateTask() second call error = %v", err)
	}
	if created2 {
		t.Fatal("expected the conflicting insert to report created = false")
	}

	got, err := store.GetTask(ctx, pool, "t1")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got == nil {
		t.Fatal("expected the task to exist")
	}
	if got.Title != "First" {
		t.Errorf("title = %q, want original %q (conflicting insert must not overwrite)", got.Title, "First")
	}
}

// TestCountAdmins_ReflectsMembershipRoles backs the sole-admin guard in
// Members.DeleteMember.
func TestCountAdmins_ReflectsMembershipRoles(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()

	if err := store.UpsertSpace(ctx, pool, store.Space{ID: "s1", Name: "Space"}); err != nil {
		t.Fatalf("seed space: %v", err)
	}
	if err := store.CreateUser(ctx, pool, store.User{ID: "u1", Email: "a@example.com", Display: "A", SoundTheme: "chime", ProfileAttachments: "{}"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := store.CreateUser(ctx, pool, store.User{ID: "u2", Email: "b@example.com", Display: "B", SoundTheme: "chime", ProfileAttachments: "{}"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := store.CreateMembership(ctx, pool, store.Membership{ID: "m1", SpaceID: "s1", UserID: "u1", Role: store.RoleAdmin}); err != nil {
		t.Fatalf("seed membership: %v", err)
	}
	if err := store.CreateMembership(ctx, pool, store.Membership{ID: "m2", SpaceID: "s1", UserID: "u2", Role: store.RoleContributor}); err != nil {
		t.Fatalf("seed membership: %v", err)
	}

	n, err := store.CountAdmins(ctx, pool, "s1")
	if err != nil {
		t.Fatalf("CountAdmins() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountAdmins() = %d, want 1", n)
	}
}
