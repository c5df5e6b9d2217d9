package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	stmts := Statements()
	require.Len(t, stmts, 5)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS users"))
	for _, s := range stmts {
		assert.NotContains(t, s, "--")
	}
}

func TestMigrate(t *testing.T) {
	t.Run("duplicate columns skipped", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		stmts := Statements()
		for i := range stmts {
			e := mock.ExpectExec(".*")
			if strings.HasPrefix(stmts[i], "ALTER") {
				e.WillReturnError(&mysql.MySQLError{Number: 1060, Message: "Duplicate column name 'summary'"})
			} else {
				e.WillReturnResult(sqlmock.NewResult(0, 0))
			}
		}

		require.NoError(t, Migrate(context.Background(), db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors stop", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		boom := errors.New("access denied")
		mock.ExpectExec(".*").WillReturnError(boom)

		assert.ErrorIs(t, Migrate(context.Background(), db), boom)
	})
}
