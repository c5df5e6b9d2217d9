package dao

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"marketplace-feed/model"
)

// ErrUnsupportedFilter is returned for filter keys or values the item store
// cannot express.
var ErrUnsupportedFilter = errors.New("unsupported filter")

type clause func(v any) (string, []any, error)

var filterClauses = map[string]clause{
	"status": func(v any) (string, []any, error) {
		vals, err := stringList(v)
		if err != nil {
			return "", nil, err
		}
		if len(vals) == 0 {
			return "FALSE", nil, nil
		}
		args := make([]any, len(vals))
		for i, s := range vals {
			args[i] = s
		}
		return "status IN (" + placeholders(len(vals)) + ")", args, nil
	},
	"ownerId": func(v any) (string, []any, error) {
		s, ok := v.(string)
		if !ok {
			return "", nil, fmt.Errorf("want string, got %T", v)
		}
		return "owner_id = ?", []any{s}, nil
	},
	"excludeOwnerId": func(v any) (string, []any, error) {
		s, ok := v.(string)
		if !ok {
			return "", nil, fmt.Errorf("want string, got %T", v)
		}
		return "owner_id <> ?", []any{s}, nil
	},
	"category": func(v any) (string, []any, error) {
		s, ok := v.(string)
		if !ok {
			return "", nil, fmt.Errorf("want string, got %T", v)
		}
		return "JSON_CONTAINS(categories, JSON_QUOTE(?))", []any{s}, nil
	},
}

// buildWhere translates f into a WHERE clause. Keys are emitted in sorted
// order so the same filter always yields the same SQL.
func buildWhere(f model.Filter) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var (
		conds []string
		args  []any
	)
	for _, k := range keys {
		build, ok := filterClauses[k]
		if !ok {
			return "", nil, fmt.Errorf("%w: unknown key %q", ErrUnsupportedFilter, k)
		}
		cond, a, err := build(f[k])
		if err != nil {
			return "", nil, fmt.Errorf("%w: %s: %v", ErrUnsupportedFilter, k, err)
		}
		conds = append(conds, cond)
		args = append(args, a...)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func stringList(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("want string element, got %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("want string or list of strings, got %T", v)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
