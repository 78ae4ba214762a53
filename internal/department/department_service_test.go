package department

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn         func(ctx context.Context, dept *Department) error
	findByIDFn       func(ctx context.Context, id string) (*Department, error)
	countEmployeesFn func(ctx context.Context, id string) (int64, error)
	deleteFn         func(ctx context.Context, id string) error
}

func (f *fakeRepo) Create(ctx context.Context, dept *Department) error {
	if f.createFn != nil {
		return f.createFn(ctx, dept)
	}
	return nil
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]Department, error) { return nil, nil }

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Department, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Update(ctx context.Context, dept *Department) error { return nil }

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeRepo) CountEmployees(ctx context.Context, id string) (int64, error) {
	if f.countEmployeesFn != nil {
		return f.countEmployeesFn(ctx, id)
	}
	return 0, nil
}

func TestDelete_BlockedWhileReferenced(t *testing.T) {
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Department, error) {
			return &Department{ID: uuid.New(), Name: "Engineering"}, nil
		},
		countEmployeesFn: func(ctx context.Context, id string) (int64, error) {
			return 3, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			t.Fatal("delete must not run while employees reference the department")
			return nil
		},
	}
	service := NewService(repo)

	err := service.Delete(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, ErrDepartmentInUse)
}

func TestDelete_UnreferencedSucceeds(t *testing.T) {
	deleted := false
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*Department, error) {
			return &Department{ID: uuid.New(), Name: "Engineering"}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	service := NewService(repo)

	err := service.Delete(context.Background(), uuid.NewString())

	assert.NoError(t, err)
	assert.True(t, deleted)
}

func TestGetByID_NotFound(t *testing.T) {
	service := NewService(&fakeRepo{})

	_, err := service.GetByID(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, ErrDepartmentNotFound)
}
