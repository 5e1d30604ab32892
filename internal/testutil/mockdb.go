// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MockDB opens a GORM postgres session over go-sqlmock with regexp query
// matching. Unmet expectations fail the test on cleanup.
func MockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		sqlDB.Close()
	})
	return db, mock
}

// RecordingPublisher captures published events.
type RecordingPublisher struct {
	Kinds    []string
	Payloads []any
}

func (p *RecordingPublisher) Publish(kind string, payload any) error {
	p.Kinds = append(p.Kinds, kind)
	p.Payloads = append(p.Payloads, payload)
	return nil
}

func (p *RecordingPublisher) Status() string { return "recording" }
func (p *RecordingPublisher) Close()         {}
