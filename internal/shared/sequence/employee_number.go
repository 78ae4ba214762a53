package sequence

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Employee numbers use format YYYYNNNN, e.g. 20260001.
// The sequence restarts at 0001 every calendar year.

//go:generate mockgen -destination=mock/employee_number_mock.go -package=mock . EmployeeNumberGenerator
type EmployeeNumberGenerator interface {
	WithTx(tx *sql.Tx) EmployeeNumberGenerator
	// Next reserves the next number for the year of now. It must be called
	// inside the same transaction that inserts the employee row: the
	// SELECT ... FOR UPDATE serializes concurrent read-max-and-insert
	// sequences against each other.
	Next(ctx context.Context, now time.Time) (string, error)
}

type generator struct {
	db *gorm.DB
}

func NewEmployeeNumberGenerator(db *gorm.DB) EmployeeNumberGenerator {
	return &generator{db: db}
}

func (g *generator) WithTx(tx *sql.Tx) EmployeeNumberGenerator {
	bound := g.db.Session(&gorm.Session{NewDB: true})
	bound.Statement.ConnPool = tx
	return &generator{db: bound}
}

func (g *generator) Next(ctx context.Context, now time.Time) (string, error) {
	prefix := strconv.Itoa(now.Year())

	var last string
	err := g.db.WithContext(ctx).Raw(`
		SELECT employee_number FROM employees
		WHERE employee_number LIKE ?
		ORDER BY employee_number DESC
		LIMIT 1
		FOR UPDATE
	`, prefix+"%").Scan(&last).Error
	if err != nil {
		return "", err
	}

	return NextInYear(prefix, last)
}

// NextInYear computes the successor of last within a year prefix.
// An empty last means the year has no numbers yet.
func NextInYear(yearPrefix, last string) (string, error) {
	if last == "" {
		return yearPrefix + "0001", nil
	}
	if len(last) != len(yearPrefix)+4 {
		return "", fmt.Errorf("malformed employee number %q", last)
	}

	seq, err := strconv.Atoi(last[len(yearPrefix):])
	if err != nil {
		return "", fmt.Errorf("malformed employee number %q: %w", last, err)
	}

	return fmt.Sprintf("%s%04d", yearPrefix, seq+1), nil
}
