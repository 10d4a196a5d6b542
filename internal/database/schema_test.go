package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSchema(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		for range schemaStatements {
			mock.ExpectExec(`CREATE (TABLE|INDEX) IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectCommit()

		require.NoError(t, EnsureSchema(context.Background(), db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Statement Fails", func(t *testing.T) {
		db, mock := newMockDB(t)

		mock.ExpectBegin()
		mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnError(fmt.Errorf("permission denied"))
		mock.ExpectRollback()

		err := EnsureSchema(context.Background(), db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exec statement #1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nil DB", func(t *testing.T) {
		assert.Error(t, EnsureSchema(context.Background(), nil))
	})
}
