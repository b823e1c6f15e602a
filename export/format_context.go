package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-shopadmin/catalog"
)

const (
	usDateLayout  = "1/2/2006"
	isoDateLayout = "2006-01-02"
)

// FormatContext renders typed values as display strings.
type FormatContext struct {
	locale   string
	location *time.Location
}

// NewFormatContext validates the options and builds a formatter.
func NewFormatContext(opts FormatOptions) (FormatContext, error) {
	ctx := FormatContext{locale: strings.ToLower(strings.TrimSpace(opts.Locale))}
	if tz := strings.TrimSpace(opts.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return FormatContext{}, catalog.NewError(catalog.KindValidation, "invalid timezone", err)
		}
		ctx.location = loc
	}
	return ctx, nil
}

// ApplyTimezone moves value into the configured location.
func (f FormatContext) ApplyTimezone(value time.Time) time.Time {
	if f.location == nil {
		return value
	}
	return value.In(f.location)
}

// DateLayout returns the date layout for the locale: ISO for "sv" and "iso"
// locales, month/day/year otherwise.
func (f FormatContext) DateLayout() string {
	if strings.HasPrefix(f.locale, "sv") || strings.HasPrefix(f.locale, "iso") {
		return isoDateLayout
	}
	return usDateLayout
}

// Display renders a value: dates in the locale layout, lists joined by ", ",
// numbers in their shortest form and nil as "".
func (f FormatContext) Display(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return f.ApplyTimezone(v).Format(f.DateLayout())
	case *time.Time:
		if v == nil {
			return ""
		}
		return f.Display(*v)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, f.Display(item))
		}
		return strings.Join(parts, ", ")
	case float64:
		return catalog.FormatNumber(v)
	case float32:
		return catalog.FormatNumber(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case catalog.Value:
		return f.Display(valueToAny(v))
	default:
		return fmt.Sprint(value)
	}
}

func valueToAny(v catalog.Value) any {
	switch v.Type {
	case catalog.TypeNumber:
		return v.Num
	case catalog.TypeList:
		return v.List
	case catalog.TypeDate:
		return v.Time
	default:
		return v.Str
	}
}
