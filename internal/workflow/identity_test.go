package workflow

import (
	"context"
	"testing"

	"github.com/amirenger/My-Final-Telegram-Bot/internal/models"
	"github.com/amirenger/My-Final-Telegram-Bot/internal/projects"
)

func newTestResolver(t *testing.T) (*Resolver, *projects.Store) {
	t.Helper()
	store := projects.NewStore(&memoryBackend{})
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewResolver(store, managerID), store
}

func TestResolverRoles(t *testing.T) {
	ids, store := newTestResolver(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, "A", "300", "200"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, "B", "301", "200"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, "C", "200", "400"); err != nil {
		t.Fatalf("create: %v", err)
	}

	if !ids.IsManager("100") {
		t.Error("IsManager(manager) = false")
	}
	if ids.IsManager("200") {
		t.Error("IsManager(editor) = true")
	}

	roles := ids.RolesOf("200")
	if len(roles.EditorOf) != 2 || roles.EditorOf[0] != 1 || roles.EditorOf[1] != 2 {
		t.Errorf("EditorOf = %v, want [1 2]", roles.EditorOf)
	}
	// The same contact can be a client elsewhere.
	if len(roles.ClientOf) != 1 || roles.ClientOf[0] != 3 {
		t.Errorf("ClientOf = %v, want [3]", roles.ClientOf)
	}
}

func TestResolverManagerExcludedFromPools(t *testing.T) {
	ids, store := newTestResolver(t)

	if _, err := store.Create(context.Background(), "A", managerID, managerID); err != nil {
		t.Fatalf("create: %v", err)
	}

	roles := ids.RolesOf(managerID)
	if roles.IsEditor() || roles.IsClient() {
		t.Errorf("manager should not appear in role pools: %+v", roles)
	}
}

func TestResolverReassignmentTakesEffect(t *testing.T) {
	ids, store := newTestResolver(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "A", "300", "200")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !ids.RolesOf("200").IsEditor() {
		t.Fatal("initial editor not resolved")
	}

	err = store.Update(ctx, p.ID, func(pp *models.Project) error {
		pp.EditorID = "555"
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if ids.RolesOf("200").IsEditor() {
		t.Error("old editor still resolved after reassignment")
	}
	if !ids.RolesOf("555").IsEditor() {
		t.Error("new editor not resolved after reassignment")
	}
}
