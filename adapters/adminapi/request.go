package adminapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-shopadmin/catalog"
	"github.com/goliatone/go-shopadmin/export"
	"github.com/goliatone/go-shopadmin/filter"
	"github.com/goliatone/go-shopadmin/prefs"
	"github.com/goliatone/go-shopadmin/workspace"
)

// Request is the part of an incoming request the controller reads.
// Values must keep repeated keys so col.<field> can carry several values.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Values() url.Values
	Body() io.ReadCloser
}

// Query parameter names for list requests.
const (
	ParamPage     = "page"
	ParamPageSize = "page_size"
	ParamFilter   = "filter"
	ParamQuery    = "q"
	ParamAdvanced = "adv"
	ParamRemote   = "remote"
	columnPrefix  = "col."
)

// ViewFromValues decodes list query parameters. Column filters use
// col.<field>=text, repeated col.<field> for several values, and
// col.<field>.min / col.<field>.max for numeric ranges.
func ViewFromValues(values url.Values) (workspace.View, error) {
	view := workspace.View{
		QuickFilter: strings.TrimSpace(values.Get(ParamFilter)),
		Query:       values.Get(ParamQuery),
		Advanced:    values.Get(ParamAdvanced),
	}

	var err error
	if view.Page, err = intParam(values, ParamPage); err != nil {
		return workspace.View{}, err
	}
	if view.PageSize, err = intParam(values, ParamPageSize); err != nil {
		return workspace.View{}, err
	}
	if raw := strings.TrimSpace(values.Get(ParamRemote)); raw != "" {
		remote, err := strconv.ParseBool(raw)
		if err != nil {
			return workspace.View{}, catalog.NewError(catalog.KindValidation, "invalid remote flag", err)
		}
		view.Remote = remote
	}

	for key, raw := range values {
		if !strings.HasPrefix(key, columnPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, columnPrefix)
		bound := ""
		if base, suffix, ok := strings.Cut(name, "."); ok && (suffix == "min" || suffix == "max") {
			name, bound = base, suffix
		}
		if name == "" {
			continue
		}
		if view.Columns == nil {
			view.Columns = filter.ColumnFilters{}
		}
		cf := view.Columns[name]
		switch bound {
		case "min", "max":
			n, ok := catalog.ParseNumber(strings.TrimSpace(firstNonEmpty(raw)))
			if !ok {
				return workspace.View{}, catalog.NewError(catalog.KindValidation, "invalid range bound for "+name, nil)
			}
			if cf.Range == nil {
				cf.Range = &filter.Range{}
			}
			if bound == "min" {
				cf.Range.Min = &n
			} else {
				cf.Range.Max = &n
			}
		default:
			kept := nonEmpty(raw)
			if len(kept) == 1 {
				cf.Text = kept[0]
			} else if len(kept) > 1 {
				cf.Values = kept
			}
		}
		view.Columns[name] = cf
	}
	return view, nil
}

func intParam(values url.Values, name string) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, catalog.NewError(catalog.KindValidation, "invalid "+name, err)
	}
	return n, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values []string) string {
	if kept := nonEmpty(values); len(kept) > 0 {
		return kept[0]
	}
	return ""
}

type viewPayload struct {
	QuickFilter string                `json:"filter,omitempty"`
	Query       string                `json:"q,omitempty"`
	Columns     filter.ColumnFilters  `json:"columns,omitempty"`
	Custom      []filter.CustomFilter `json:"custom,omitempty"`
	Advanced    string                `json:"adv,omitempty"`
	Remote      bool                  `json:"remote,omitempty"`
	Page        int                   `json:"page,omitempty"`
	PageSize    int                   `json:"page_size,omitempty"`
}

func (p viewPayload) toView() workspace.View {
	custom := make([]filter.CustomFilter, 0, len(p.Custom))
	for _, cf := range p.Custom {
		if strings.TrimSpace(cf.ID) == "" {
			cf = filter.NewCustomFilter(cf.Name, cf.Field, cf.Operator, cf.Value)
		}
		custom = append(custom, cf)
	}
	return workspace.View{
		QuickFilter: p.QuickFilter,
		Query:       p.Query,
		Columns:     p.Columns,
		Custom:      custom,
		Advanced:    p.Advanced,
		Remote:      p.Remote,
		Page:        p.Page,
		PageSize:    p.PageSize,
	}
}

type exportPayload struct {
	View      viewPayload   `json:"view"`
	Format    export.Format `json:"format,omitempty"`
	Fields    []string      `json:"fields,omitempty"`
	Selection struct {
		IDs []string `json:"ids,omitempty"`
	} `json:"selection,omitempty"`
	Locale   string `json:"locale,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

type historyPayload struct {
	Query       string `json:"query"`
	ResultCount int    `json:"resultCount"`
}

type idsPayload struct {
	IDs []string `json:"ids"`
}

type remoteSearchPayload struct {
	Query string `json:"q"`
}

type settingsPayload struct {
	prefs.Settings
	CardsPerRow int `json:"cardsPerRow,omitempty"`
}

func decodeJSON(req Request, out any, allowEmpty bool) error {
	body := req.Body()
	if body == nil {
		if allowEmpty {
			return nil
		}
		return catalog.NewError(catalog.KindValidation, "request body is required", nil)
	}
	defer body.Close()

	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return catalog.NewError(catalog.KindValidation, "invalid request payload", err)
	}
	return nil
}
