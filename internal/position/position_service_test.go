package position

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn         func(ctx context.Context, p *Position) error
	findByIDFn       func(ctx context.Context, id string) (*Position, error)
	countEmployeesFn func(ctx context.Context, id string) (int64, error)
}

func (f *fakeRepo) Create(ctx context.Context, p *Position) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]Position, error) { return nil, nil }

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Position, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Update(ctx context.Context, p *Position) error { return nil }
func (f *fakeRepo) Delete(ctx context.Context, id string) error   { return nil }

func (f *fakeRepo) CountEmployees(ctx context.Context, id string) (int64, error) {
	if f.countEmployeesFn != nil {
		return f.countEmployeesFn(ctx, id)
	}
	return 0, nil
}

func TestCreate_DuplicateNameInDepartment(t *testing.T) {
	repo := &fakeRepo{
		createFn: func(ctx context.Context, p *Position) error {
			return &pgconn.PgError{Code: "23505"}
		},
	}
	service := NewService(repo)

	deptID := uuid.NewString()
	_, err := service.Create(context.Background(), CreatePositionRequest{
		Name:         "Backend Engineer",
		DepartmentID: &deptID,
	})

	assert.ErrorIs(t, err, ErrPositionNameTaken)
}

func TestDelete_BlockedWhileReferenced(t *testing.T) {
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Position, error) {
			return &Position{ID: uuid.New(), Name: "Backend Engineer"}, nil
		},
		countEmployeesFn: func(ctx context.Context, id string) (int64, error) {
			return 1, nil
		},
	}
	service := NewService(repo)

	err := service.Delete(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, ErrPositionInUse)
}
