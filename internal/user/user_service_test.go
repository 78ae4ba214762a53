package user

import (
	"context"
	"database/sql"
	"testing"

	usererrors "hris/internal/user/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn             func(ctx context.Context, u *User) error
	findByIDFn           func(ctx context.Context, id string) (*User, error)
	findByEmailFn        func(ctx context.Context, email string) (*User, error)
	findByEmployeeCodeFn func(ctx context.Context, code string) (*User, error)
	findAllFn            func(ctx context.Context) ([]User, error)
	updateFn             func(ctx context.Context, u *User) error
	deleteFn             func(ctx context.Context, id string) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, u *User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*User, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByEmployeeCode(ctx context.Context, code string) (*User, error) {
	if f.findByEmployeeCodeFn != nil {
		return f.findByEmployeeCodeFn(ctx, code)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]User, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepo) Update(ctx context.Context, u *User) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, u)
	}
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func TestCreate_HashesPasswordAndNormalizesEmail(t *testing.T) {
	var saved *User
	repo := &fakeRepo{
		createFn: func(ctx context.Context, u *User) error {
			saved = u
			return nil
		},
	}
	service := NewService(repo)

	resp, err := service.Create(context.Background(), CreateUserRequest{
		Email:    " Budi@Example.COM ",
		FullName: "Budi Santoso",
		Password: "sup3r-secret",
	})

	assert.NoError(t, err)
	assert.Equal(t, "budi@example.com", resp.Email)
	assert.True(t, resp.IsActive)
	assert.NotEqual(t, "sup3r-secret", saved.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("sup3r-secret")))
}

func TestCreate_DuplicateEmailRejected(t *testing.T) {
	repo := &fakeRepo{
		findByEmailFn: func(ctx context.Context, email string) (*User, error) {
			return &User{ID: uuid.New(), Email: email}, nil
		},
	}
	service := NewService(repo)

	_, err := service.Create(context.Background(), CreateUserRequest{
		Email:    "budi@example.com",
		FullName: "Budi Santoso",
		Password: "sup3r-secret",
	})

	assert.ErrorIs(t, err, usererrors.ErrEmailTaken)
}

func TestCreate_DuplicateEmployeeCodeRejected(t *testing.T) {
	code := "20260001"
	repo := &fakeRepo{
		findByEmployeeCodeFn: func(ctx context.Context, c string) (*User, error) {
			return &User{ID: uuid.New()}, nil
		},
	}
	service := NewService(repo)

	_, err := service.Create(context.Background(), CreateUserRequest{
		Email:        "budi@example.com",
		EmployeeCode: &code,
		FullName:     "Budi Santoso",
		Password:     "sup3r-secret",
	})

	assert.ErrorIs(t, err, usererrors.ErrEmployeeCodeTaken)
}

func TestChangePassword_WrongCurrentRejected(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.DefaultCost)
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: uuid.New(), Password: string(hashed)}, nil
		},
	}
	service := NewService(repo)

	err := service.ChangePassword(context.Background(), uuid.NewString(), ChangePasswordRequest{
		CurrentPassword: "wrong-password",
		NewPassword:     "new-password-1",
	})

	assert.ErrorIs(t, err, usererrors.ErrInvalidCurrentPassword)
}

func TestChangePassword_Success(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.DefaultCost)
	var updated *User
	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*User, error) {
			return &User{ID: uuid.New(), Password: string(hashed)}, nil
		},
		updateFn: func(ctx context.Context, u *User) error {
			updated = u
			return nil
		},
	}
	service := NewService(repo)

	err := service.ChangePassword(context.Background(), uuid.NewString(), ChangePasswordRequest{
		CurrentPassword: "right-password",
		NewPassword:     "new-password-1",
	})

	assert.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("new-password-1")))
}

func TestUpdate_NotFound(t *testing.T) {
	service := NewService(&fakeRepo{})

	_, err := service.Update(context.Background(), uuid.NewString(), UpdateUserRequest{FullName: "X"})

	assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
}

func TestDelete_NotFound(t *testing.T) {
	service := NewService(&fakeRepo{})

	err := service.Delete(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, usererrors.ErrUserNotFound)
}
