package storefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/prefs"
)

var _ prefs.Store = (*Store)(nil)

func TestStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewStore(root)

	if _, ok, err := store.Get(ctx, "orders-settings"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "orders-settings", `{"pageSize":50}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "orders-settings.json")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}

	value, ok, err := store.Get(ctx, "orders-settings")
	if err != nil || !ok || value != `{"pageSize":50}` {
		t.Fatalf("unexpected get %q %v %v", value, ok, err)
	}

	if err := store.Remove(ctx, "orders-settings"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, "orders-settings"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "orders-settings"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	store := NewStore(t.TempDir())
	if err := store.Set(context.Background(), "", "x"); catalog.KindFromError(err) != catalog.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := NewStore("").Set(context.Background(), "k", "x"); catalog.KindFromError(err) != catalog.KindValidation {
		t.Fatalf("expected root validation error, got %v", err)
	}
}

func TestStore_BacksPreferences(t *testing.T) {
	ctx := context.Background()
	p := prefs.New(NewStore(t.TempDir()), catalog.EntityProducts, nil)

	if err := p.SetCardsPerRow(ctx, 4); err != nil {
		t.Fatalf("set cards: %v", err)
	}
	if n, err := p.CardsPerRow(ctx); err != nil || n != 4 {
		t.Fatalf("expected 4 cards per row, got %d %v", n, err)
	}
}
