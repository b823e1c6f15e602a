package storebun

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/prefs"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var _ prefs.Store = (*Store)(nil)

func TestStore_SetGetUpsertRemove(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newTestDB(t))
	store.Now = func() time.Time { return time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC) }

	if _, ok, err := store.Get(ctx, "orders-settings"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "orders-settings", `{"pageSize":25}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "orders-settings", `{"pageSize":50}`); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	value, ok, err := store.Get(ctx, "orders-settings")
	if err != nil || !ok || value != `{"pageSize":50}` {
		t.Fatalf("unexpected get %q %v %v", value, ok, err)
	}

	count, err := store.DB.NewSelect().Model((*preferenceModel)(nil)).Count(ctx)
	if err != nil || count != 1 {
		t.Fatalf("expected one row, got %d %v", count, err)
	}

	if err := store.Remove(ctx, "orders-settings"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "orders-settings"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestStore_Validation(t *testing.T) {
	ctx := context.Background()
	if err := (&Store{}).Set(ctx, "k", "v"); catalog.KindFromError(err) != catalog.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	store := NewStore(newTestDB(t))
	if err := store.Set(ctx, "", "v"); catalog.KindFromError(err) != catalog.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestStore_BacksPreferences(t *testing.T) {
	ctx := context.Background()
	p := prefs.New(NewStore(newTestDB(t)), catalog.EntityOrders, nil)

	if _, err := p.SaveSettings(ctx, prefs.Settings{PageSize: 100, ViewMode: prefs.ViewCards}); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	settings, err := p.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.PageSize != 100 || settings.ViewMode != prefs.ViewCards {
		t.Fatalf("unexpected settings %+v", settings)
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	if _, err := db.NewDropTable().Model((*preferenceModel)(nil)).IfExists().Exec(ctx); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if err := NewStore(db).EnsureSchema(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}
