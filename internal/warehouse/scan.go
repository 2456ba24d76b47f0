package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/snowdash/schema"
)

// ErrMalformedRow is returned when a result row is missing a column or holds an unusable value.
var ErrMalformedRow = errors.New("malformed warehouse row")

// dateLayouts are tried in order when a driver returns dates as text.
var dateLayouts = []string{
	schema.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

// row is one result row keyed by upper-cased column name.
type row struct {
	index  int
	values map[string]any
}

// fetchRows runs the query and parses every row. A missing required column fails
// the whole query before any row is read.
func fetchRows[T any](ctx context.Context, db *sql.DB, query string, args []any, required []string, parse func(row) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(columns))
	present := make(map[string]struct{}, len(columns))
	for i, c := range columns {
		names[i] = strings.ToUpper(strings.TrimSpace(c))
		present[names[i]] = struct{}{}
	}
	for _, col := range required {
		if _, ok := present[col]; !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrMalformedRow, col)
		}
	}

	out := []T{}
	for idx := 0; rows.Next(); idx++ {
		raw := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		r := row{index: idx, values: make(map[string]any, len(columns))}
		for i, name := range names {
			r.values[name] = raw[i]
		}
		item, err := parse(r)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r row) malformed(col, reason string) error {
	return fmt.Errorf("%w: row %d column %s: %s", ErrMalformedRow, r.index, col, reason)
}

// has reports whether the column is part of the result.
func (r row) has(col string) bool {
	_, ok := r.values[col]
	return ok
}

// str returns a required, non-NULL text value.
func (r row) str(col string) (string, error) {
	v := r.values[col]
	if v == nil {
		return "", r.malformed(col, "NULL value")
	}
	return toString(v), nil
}

// text returns an optional text value, NULL and missing columns as empty.
func (r row) text(col string) string {
	v := r.values[col]
	if v == nil {
		return ""
	}
	return toString(v)
}

// num returns a required, finite numeric value.
func (r row) num(col string) (float64, error) {
	v := r.values[col]
	if v == nil {
		return 0, r.malformed(col, "NULL value")
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, r.malformed(col, err.Error())
	}
	return f, nil
}

// count returns a required integral value.
func (r row) count(col string) (int64, error) {
	f, err := r.num(col)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, r.malformed(col, fmt.Sprintf("non-integral count %v", f))
	}
	return int64(f), nil
}

// date returns a required calendar date normalized to midnight UTC.
func (r row) date(col string) (time.Time, error) {
	v := r.values[col]
	if v == nil {
		return time.Time{}, r.malformed(col, "NULL date")
	}
	switch d := v.(type) {
	case time.Time:
		return schema.CivilDate(d), nil
	case []byte:
		return r.parseDate(col, string(d))
	case string:
		return r.parseDate(col, d)
	default:
		return time.Time{}, r.malformed(col, fmt.Sprintf("unsupported date type %T", v))
	}
}

func (r row) parseDate(col, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return schema.CivilDate(t), nil
		}
	}
	return time.Time{}, r.malformed(col, fmt.Sprintf("unparseable date %q", s))
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case int:
		f = float64(n)
	case uint64:
		f = float64(n)
	case []byte:
		return parseFloat(string(n))
	case string:
		return parseFloat(n)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %v", f)
	}
	return f, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", s)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return f, nil
}
