package authz

import (
	"testing"

	"github.com/dtammam/tasksync/internal/reqctx"
	"github.com/dtammam/tasksync/internal/store"
)

func adminCtx() *reqctx.Ctx {
	return &reqctx.Ctx{SpaceID: "s1", UserID: "u-admin", Role: store.RoleAdmin}
}

func contributorCtx(userID string) *reqctx.Ctx {
	return &reqctx.Ctx{SpaceID: "s1", UserID: userID, Role: store.RoleContributor}
}

func TestIsAdmin(t *testing.T) {
	if !IsAdmin(adminCtx()) {
		t.Error("expected admin context to report IsAdmin true")
	}
	if IsAdmin(contributorCtx("u1")) {
		t.Error("expected contributor context to report IsAdmin false")
	}
}

func TestOwnsTask(t *testing.T) {
	creator := "u-creator"
	assignee := "u-assignee"

	tests := []struct {
		name string
		c    *reqctx.Ctx
		task *store.Task
		want bool
	}{
		{"creator owns", contributorCtx(creator), &store.Task{CreatedByUserID: &creator}, true},
		{"assignee alone does not own", contributorCtx(assignee), &store.Task{CreatedByUserID: &creator, AssigneeUserID: &assignee}, false},
		{"stranger does not own", contributorCtx("u-other"), &store.Task{CreatedByUserID: &creator, AssigneeUserID: &assignee}, false},
		{"nil fields never match", contributorCtx("u-other"), &store.Task{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OwnsTask(tt.c, tt.task); got != tt.want {
				t.Errorf("OwnsTask() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleList(t *testing.T) {
	granted := map[string]bool{"list-a": true}
	listA := &store.List{ID: "list-a"}
	listB := &store.List{ID: "list-b"}

	if !VisibleList(adminCtx(), granted, listB) {
		t.Error("admin must see every list regardless of grants")
	}
	if !VisibleList(contributorCtx("u1"), granted, listA) {
		t.Error("contributor with a grant must see the granted list")
	}
	if VisibleList(contributorCtx("u1"), granted, listB) {
		t.Error("contributor without a grant must not see the list")
	}
}

func TestVisibleTask(t *testing.T) {
	granted := map[string]bool{"list-a": true}
	taskOnGranted := &store.Task{ListID: "list-a"}
	taskOnUngranted := &store.Task{ListID: "list-b"}

	if !VisibleTask(adminCtx(), granted, taskOnUngranted) {
		t.Error("admin must see tasks on any list")
	}
	if !VisibleTask(contributorCtx("u1"), granted, taskOnGranted) {
		t.Error("contributor must see tasks on a granted list")
	}
	if VisibleTask(contributorCtx("u1"), granted, taskOnUngranted) {
		t.Error("contributor must not see tasks on an ungranted list")
	}
}
