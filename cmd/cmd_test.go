package cmd

import (
	"bytes"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRuntimeWithMissingFile(t *testing.T) {
	prev := cfgPath
	t.Cleanup(func() { cfgPath = prev })
	cfgPath = filepath.Join(t.TempDir(), "absent.yaml")

	cfg, log, err := loadRuntime()
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), version)
}

func TestSeedUpsertsEveryRow(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	dbx := sqlx.NewDb(raw, "mysql")

	empQ := regexp.QuoteMeta("INSERT INTO employees")
	for i := 0; i < 5; i++ {
		mock.ExpectExec(empQ).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	custQ := regexp.QuoteMeta("INSERT INTO customers")
	for i := 0; i < 5; i++ {
		mock.ExpectExec(custQ).WillReturnResult(sqlmock.NewResult(0, 1))
	}

	nEmp, err := seedEmployees(dbx)
	require.NoError(t, err)
	nCust, err := seedCustomers(dbx)
	require.NoError(t, err)

	assert.Equal(t, 5, nEmp)
	assert.Equal(t, 5, nCust)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecEachSplitsStatements(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	dbx := sqlx.NewDb(raw, "clickhouse")

	mock.ExpectExec(regexp.QuoteMeta("CREATE DATABASE IF NOT EXISTS onotify")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE t (x UInt8)")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, execEach(dbx, "CREATE DATABASE IF NOT EXISTS onotify;\n\nCREATE TABLE t (x UInt8);\n"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
