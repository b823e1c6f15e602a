package query

import (
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-shopadmin/workspace"
)

func requireEntity(entity string) error {
	if strings.TrimSpace(entity) == "" {
		return errors.New("entity is required", errors.CategoryValidation).
			WithTextCode("ENTITY_REQUIRED")
	}
	return nil
}

// ListRecords requests one filtered page of an entity.
type ListRecords struct {
	Entity string
	View   workspace.View
}

func (ListRecords) Type() string { return "catalog:records" }

func (msg ListRecords) Validate() error {
	if err := requireEntity(msg.Entity); err != nil {
		return err
	}
	if msg.View.Page < 0 || msg.View.PageSize < 0 {
		return errors.New("page and page size must not be negative", errors.CategoryValidation).
			WithTextCode("PAGE_INVALID")
	}
	return nil
}

// Suggestions requests typeahead suggestions.
type Suggestions struct {
	Entity string
	Query  string
}

func (Suggestions) Type() string { return "catalog:suggestions" }

func (msg Suggestions) Validate() error { return requireEntity(msg.Entity) }

// SearchHistory requests the stored search history.
type SearchHistory struct {
	Entity string
}

func (SearchHistory) Type() string { return "catalog:history" }

func (msg SearchHistory) Validate() error { return requireEntity(msg.Entity) }

// GetSettings requests the display settings of an entity.
type GetSettings struct {
	Entity string
}

func (GetSettings) Type() string { return "catalog:settings" }

func (msg GetSettings) Validate() error { return requireEntity(msg.Entity) }

// GetSavedFilters requests the saved view of an entity.
type GetSavedFilters struct {
	Entity string
}

func (GetSavedFilters) Type() string { return "catalog:filters" }

func (msg GetSavedFilters) Validate() error { return requireEntity(msg.Entity) }

// DescribeSchema requests the field layout of an entity.
type DescribeSchema struct {
	Entity string
}

func (DescribeSchema) Type() string { return "catalog:schema" }

func (msg DescribeSchema) Validate() error { return requireEntity(msg.Entity) }

// RemoteStatus requests the remote search state of an entity.
type RemoteStatus struct {
	Entity string
}

func (RemoteStatus) Type() string { return "catalog:remote-status" }

func (msg RemoteStatus) Validate() error { return requireEntity(msg.Entity) }
