package database

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"trustmrr.db", "trustmrr.db?_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"file:app.db?cache=shared", "file:app.db?cache=shared&_pragma=busy_timeout(5000)&_txlock=immediate"},
		{"app.db?_pragma=busy_timeout(100)", "app.db?_pragma=busy_timeout(100)&_txlock=immediate"},
		{"app.db?_txlock=deferred&_pragma=busy_timeout(1)", "app.db?_txlock=deferred&_pragma=busy_timeout(1)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SQLiteDSN(tc.in), tc.in)
	}
}

func TestConnect_SQLiteSingleConnection(t *testing.T) {
	db, err := Connect(filepath.Join(t.TempDir(), "app.db"), zerolog.Nop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}
