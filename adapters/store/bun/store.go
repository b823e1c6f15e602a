package storebun

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/uptrace/bun"
)

// Store keeps preferences in a Bun-backed "preferences" table.
type Store struct {
	DB  *bun.DB
	Now func() time.Time
}

// NewStore creates a Bun-backed preference store.
func NewStore(db *bun.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// EnsureSchema creates the preferences table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.DB.NewCreateTable().Model((*preferenceModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Get reads a preference value.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := s.ready(); err != nil {
		return "", false, err
	}
	if key == "" {
		return "", false, catalog.NewError(catalog.KindValidation, "preference key is required", nil)
	}

	model := new(preferenceModel)
	err := s.DB.NewSelect().Model(model).Where("name = ?", key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Value, true, nil
}

// Set upserts a preference value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if key == "" {
		return catalog.NewError(catalog.KindValidation, "preference key is required", nil)
	}

	model := &preferenceModel{Key: key, Value: value, UpdatedAt: s.now()}
	_, err := s.DB.NewInsert().Model(model).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// Remove deletes a preference. Missing keys are not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if key == "" {
		return catalog.NewError(catalog.KindValidation, "preference key is required", nil)
	}
	_, err := s.DB.NewDelete().Model((*preferenceModel)(nil)).Where("name = ?", key).Exec(ctx)
	return err
}

func (s *Store) ready() error {
	if s == nil || s.DB == nil {
		return catalog.NewError(catalog.KindInternal, "preference database not configured", nil)
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

type preferenceModel struct {
	bun.BaseModel `bun:"table:preferences,alias:preferences"`

	Key       string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
