// Package db holds the schema and applies it.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schema string

// mysqlDuplicateColumn is ER_DUP_FIELDNAME.
const mysqlDuplicateColumn = 1060

// Statements splits the embedded schema into executable statements, dropping
// comment-only fragments.
func Statements() []string {
	var out []string
	for _, q := range strings.Split(schema, ";") {
		q = stripComments(q)
		if q == "" {
			continue
		}
		out = append(out, q)
	}
	return out
}

func stripComments(q string) string {
	lines := strings.Split(q, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Migrate applies the schema. MySQL 8.0 has no ADD COLUMN IF NOT EXISTS, so
// duplicate column errors are skipped; any other error stops the run.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, q := range Statements() {
		log.Debug().Str("stage", "migrate").Str("query", firstLine(q)).Msg("executing")
		if _, err := db.ExecContext(ctx, q); err != nil {
			if isDuplicateColumn(err) {
				log.Debug().Err(err).Msg("skipping duplicate column")
				continue
			}
			return err
		}
	}
	log.Info().Int("statements", len(Statements())).Msg("migration completed")
	return nil
}

func isDuplicateColumn(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateColumn
	}
	return strings.Contains(err.Error(), "Duplicate column name")
}

func firstLine(q string) string {
	if i := strings.IndexByte(q, '\n'); i >= 0 {
		return q[:i]
	}
	return q
}
