package sequence_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hris/internal/shared/sequence"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestNextInYear(t *testing.T) {
	t.Run("first number of the year", func(t *testing.T) {
		got, err := sequence.NextInYear("2026", "")
		assert.NoError(t, err)
		assert.Equal(t, "20260001", got)
	})

	t.Run("increments the last number", func(t *testing.T) {
		got, err := sequence.NextInYear("2026", "20260001")
		assert.NoError(t, err)
		assert.Equal(t, "20260002", got)
	})

	t.Run("keeps zero padding", func(t *testing.T) {
		got, err := sequence.NextInYear("2026", "20260099")
		assert.NoError(t, err)
		assert.Equal(t, "20260100", got)
	})

	t.Run("crosses into four digits", func(t *testing.T) {
		got, err := sequence.NextInYear("2026", "20261042")
		assert.NoError(t, err)
		assert.Equal(t, "20261043", got)
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		_, err := sequence.NextInYear("2026", "2026-01")
		assert.Error(t, err)

		_, err = sequence.NextInYear("2026", "2026ABCD")
		assert.Error(t, err)
	})
}

func newMockedGenerator(t *testing.T) (sequence.EmployeeNumberGenerator, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	return sequence.NewEmployeeNumberGenerator(gormDB), db, dbMock
}

func TestNext_LockedReadStartsTheYear(t *testing.T) {
	gen, db, dbMock := newMockedGenerator(t)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`(?s)SELECT employee_number FROM employees.+FOR UPDATE`).
		WithArgs("2026%").
		WillReturnRows(sqlmock.NewRows([]string{"employee_number"}))
	dbMock.ExpectRollback()

	tx, err := db.Begin()
	assert.NoError(t, err)

	got, err := gen.WithTx(tx).Next(context.Background(), time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, "20260001", got)

	assert.NoError(t, tx.Rollback())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestNext_LockedReadContinuesTheYear(t *testing.T) {
	gen, db, dbMock := newMockedGenerator(t)

	dbMock.ExpectBegin()
	dbMock.ExpectQuery(`(?s)SELECT employee_number FROM employees.+FOR UPDATE`).
		WithArgs("2026%").
		WillReturnRows(sqlmock.NewRows([]string{"employee_number"}).AddRow("20260017"))
	dbMock.ExpectRollback()

	tx, err := db.Begin()
	assert.NoError(t, err)

	got, err := gen.WithTx(tx).Next(context.Background(), time.Date(2026, 11, 2, 8, 30, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, "20260018", got)

	assert.NoError(t, tx.Rollback())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
