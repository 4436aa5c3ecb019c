package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T) (*PostgresClient, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &PostgresClient{DB: db}, mock
}

func TestMigrate_AppliesInOrder(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE first").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("CREATE INDEX second").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := client.Migrate(context.Background(), []Migration{
		{Name: "001.sql", SQL: "CREATE TABLE first (id INT)"},
		{Name: "002.sql", SQL: "CREATE INDEX second ON first (id)"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_RollsBackAndStops(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE broken").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err := client.Migrate(context.Background(), []Migration{
		{Name: "001.sql", SQL: "CREATE TABLE broken"},
		{Name: "002.sql", SQL: "CREATE INDEX never"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply 001.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	require.NoError(t, (&PostgresClient{DB: db}).Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
