package service_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/db"
	"github.com/dtammam/tasksync/internal/reqctx"
	"github.com/dtammam/tasksync/internal/service"
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

// TestLists_Delete_RejectsNonEmptyList asserts the delete-is-empty
// invariant (§4.2): a list with at least one task cannot be deleted.
func TestLists_Delete_RejectsNonEmptyList(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()

	if err := store.UpsertSpace(ctx, pool, store.Space{ID: "s1", Name: "Space"}); err != nil {
		t.Fatalf("seed space: %v", err)
	}
	if err := store.CreateList(ctx, pool, store.List{ID: "l1", SpaceID: "s1", Name: "List", ListOrder: "z"}); err != nil {
		t.Fatalf("seed list: %v", err)
	}
	if _, err := store.CreateTask(ctx, pool, store.Task{
		ID: "t1", SpaceID: "s1", Title: "Task", Status: store.StatusPending,
		ListID: "l1", TaskOrder: "z", UpdatedTs: 1, CreatedTs: 1,
	}); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	lists := service.Lists{DB: pool}
	admin := &reqctx.Ctx{SpaceID: "s1", UserID: "u-admin", Role: store.RoleAdmin}

	err := lists.Delete(ctx, admin, "l1")
	if err == nil {
		t.Fatal("expected deleting a non-empty list to fail")
	}
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindConflict {
		t.Errorf("expected a conflict error, got %v", err)
	}

	got, err := store.GetList(ctx, pool, "s1", "l1")
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if got == nil {
		t.Error("expected the list to still exist after the rejected delete")
	}
}

// TestLists_Delete_SucceedsWhenEmpty is the companion case: once the
// task is gone, the list can be deleted.
func TestLists_Delete_SucceedsWhenEmpty(t *testing.T) {
	pool := getTestPool(t)
	ctx := context.Background()

	if err := store.UpsertSpace(ctx, pool, store.Space{ID: "s1", Name: "Space"}); err != nil {
		t.Fatalf("seed space: %v", err)
	}
	if err := store.CreateList(ctx, pool, store.List{ID: "l1", SpaceID: "s1", Name: "List", ListOrder: "z"}); err != nil {
		t.Fatalf("seed list: %v", err)
	}

	lists := service.Lists{DB: pool}
	admin := &reqctx.Ctx{SpaceID: "s1", UserID: "u-admin", Role: store.RoleAdmin}

	if err := lists.Delete(ctx, admin, "l1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	got, err := store.GetList(ctx, pool, "s1", "l1")
	if err != nil {
		t.Fatalf("GetList() error = %v", err)
	}
	if got != nil {
		t.Error("expected the list to be gone after a successful delete")
	}
}
