package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"marketplace-feed/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrMalformedItem marks rows whose name, details or categories cannot be
	// used for matching.
	ErrMalformedItem = errors.New("malformed item")
)

const itemColumns = `id, name, categories, details, summary, price, status, owner_id, created_at`

type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// FindByFilter returns the items matching f, newest first. Malformed rows are
// skipped and logged.
func (r *ItemRepository) FindByFilter(ctx context.Context, f model.Filter, w model.Window) ([]model.Item, error) {
	where, args, err := buildWhere(f)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + itemColumns + ` FROM items` + where + ` ORDER BY created_at DESC, id DESC`
	if w.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, w.Limit, w.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if errors.Is(err, ErrMalformedItem) {
			log.Warn().Err(err).Str("item_id", item.ID).Str("stage", "retrieve").Msg("skipping item")
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id string) (*model.Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &item, nil
}

// Insert stores item, deriving its summary first.
func (r *ItemRepository) Insert(ctx context.Context, item *model.Item) error {
	item.Summary = model.Summarize(item.Name, item.Categories, item.Details)
	if item.Status == "" {
		item.Status = model.StatusActive
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	cats, err := json.Marshal(nonNil(item.Categories))
	if err != nil {
		return err
	}
	query := `INSERT INTO items (` + itemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query, item.ID, item.Name, string(cats), item.Details, item.Summary, item.Price, string(item.Status), item.OwnerID, item.CreatedAt)
	return err
}

// Update rewrites the mutable fields of item and regenerates its summary.
func (r *ItemRepository) Update(ctx context.Context, item *model.Item) error {
	item.Summary = model.Summarize(item.Name, item.Categories, item.Details)
	cats, err := json.Marshal(nonNil(item.Categories))
	if err != nil {
		return err
	}
	query := `UPDATE items SET name = ?, categories = ?, details = ?, summary = ?, price = ?, status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, item.Name, string(cats), item.Details, item.Summary, item.Price, string(item.Status), item.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanItem reads one row. On ErrMalformedItem the returned item carries the
// id so callers can log it.
func scanItem(s scanner) (model.Item, error) {
	var (
		item    model.Item
		name    sql.NullString
		details sql.NullString
		summary sql.NullString
		cats    []byte
		status  string
	)
	if err := s.Scan(&item.ID, &name, &cats, &details, &summary, &item.Price, &status, &item.OwnerID, &item.CreatedAt); err != nil {
		return item, err
	}
	item.Status = model.ItemStatus(status)
	if !name.Valid {
		return item, fmt.Errorf("%w: name is null", ErrMalformedItem)
	}
	if !details.Valid {
		return item, fmt.Errorf("%w: details is null", ErrMalformedItem)
	}
	categories, err := decodeCategories(cats)
	if err != nil {
		return item, err
	}
	item.Name = name.String
	item.Details = details.String
	item.Categories = categories
	item.Summary = summary.String
	if !summary.Valid {
		item.Summary = model.Summarize(item.Name, item.Categories, item.Details)
	}
	return item, nil
}

// decodeCategories accepts a JSON array. A value that is not an array makes
// the item unusable; an array holding anything but strings is treated as
// having no categories.
func decodeCategories(raw []byte) ([]string, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: categories is null", ErrMalformedItem)
	}
	var elems []any
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: categories: %v", ErrMalformedItem, err)
	}
	if elems == nil {
		return nil, fmt.Errorf("%w: categories is null", ErrMalformedItem)
	}
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		s, ok := e.(string)
		if !ok {
			return []string{}, nil
		}
		out = append(out, s)
	}
	return out, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
