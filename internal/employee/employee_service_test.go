package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	employeeerrors "hris/internal/employee/errors"
	"hris/internal/events"
	"hris/internal/messaging/kafka"
	"hris/internal/shared/sequence"
	"hris/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn     func(ctx context.Context, e *Employee) error
	findByIDFn   func(ctx context.Context, id string) (*Employee, error)
	findOptsFn   func(ctx context.Context) ([]EmployeeOption, error)
	deleteFn     func(ctx context.Context, id string) error
	assignRoleFn func(ctx context.Context, userID, roleID uuid.UUID) error
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, e *Employee) error {
	if f.createFn != nil {
		return f.createFn(ctx, e)
	}
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*Employee, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindByUserID(ctx context.Context, userID string) (*Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindAll(ctx context.Context) ([]Employee, error) { return nil, nil }

func (f *fakeRepo) FindOptions(ctx context.Context) ([]EmployeeOption, error) {
	if f.findOptsFn != nil {
		return f.findOptsFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepo) Update(ctx context.Context, e *Employee) error { return nil }

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeRepo) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	if f.assignRoleFn != nil {
		return f.assignRoleFn(ctx, userID, roleID)
	}
	return nil
}

type fakeUsers struct {
	createFn      func(ctx context.Context, u *user.User) error
	findByEmailFn func(ctx context.Context, email string) (*user.User, error)
	deleteFn      func(ctx context.Context, id string) error
}

func (f *fakeUsers) WithTx(tx *sql.Tx) user.Repository { return f }

func (f *fakeUsers) Create(ctx context.Context, u *user.User) error {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	if f.findByEmailFn != nil {
		return f.findByEmailFn(ctx, email)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindByEmployeeCode(ctx context.Context, code string) (*user.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) FindAll(ctx context.Context) ([]user.User, error) { return nil, nil }

func (f *fakeUsers) Update(ctx context.Context, u *user.User) error { return nil }

func (f *fakeUsers) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeSeq struct {
	numbers []string
	calls   int
}

func (f *fakeSeq) WithTx(tx *sql.Tx) sequence.EmployeeNumberGenerator { return f }

func (f *fakeSeq) Next(ctx context.Context, now time.Time) (string, error) {
	n := f.numbers[f.calls]
	f.calls++
	return n, nil
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type fakeRoles struct {
	roleID      uuid.UUID
	findErr     error
	invalidated bool
}

func (f *fakeRoles) FindRoleIDByName(ctx context.Context, name string) (uuid.UUID, error) {
	if f.findErr != nil {
		return uuid.Nil, f.findErr
	}
	return f.roleID, nil
}

func (f *fakeRoles) Invalidate(ctx context.Context) { f.invalidated = true }

type fixture struct {
	svc    Service
	dbMock sqlmock.Sqlmock
	rdb    redismock.ClientMock
	repo   *fakeRepo
	users  *fakeUsers
	seq    *fakeSeq
	outbox *fakeOutbox
	roles  *fakeRoles
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, redisMock := redismock.NewClientMock()

	f := &fixture{
		dbMock: dbMock,
		rdb:    redisMock,
		repo:   &fakeRepo{},
		users:  &fakeUsers{},
		seq:    &fakeSeq{numbers: []string{"20260001", "20260002"}},
		outbox: &fakeOutbox{},
		roles:  &fakeRoles{roleID: uuid.New()},
	}
	f.svc = NewService(db, f.repo, f.users, f.seq, f.outbox, f.roles, rdb)
	f.svc.(*service).nowFn = func() time.Time {
		return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	}
	return f
}

func validCreateRequest() CreateEmployeeRequest {
	return CreateEmployeeRequest{
		Email:    "Dina.Larasati@example.com",
		Password: "correct-horse-battery",
		FullName: "Dina Larasati",
		JoinDate: "2026-03-10",
	}
}

func TestCreate_ProvisionsUserProfileRoleAndEventInOneTx(t *testing.T) {
	f := newFixture(t)
	f.dbMock.ExpectBegin()
	f.dbMock.ExpectCommit()
	f.rdb.ExpectDel(optionsCacheKey).SetVal(1)

	var savedUser *user.User
	f.users.createFn = func(ctx context.Context, u *user.User) error {
		savedUser = u
		return nil
	}
	var savedEmployee *Employee
	f.repo.createFn = func(ctx context.Context, e *Employee) error {
		savedEmployee = e
		return nil
	}
	var linkedUser, linkedRole uuid.UUID
	f.repo.assignRoleFn = func(ctx context.Context, userID, roleID uuid.UUID) error {
		linkedUser, linkedRole = userID, roleID
		return nil
	}
	f.repo.findByIDFn = func(ctx context.Context, id string) (*Employee, error) {
		e := *savedEmployee
		e.User = &UserRef{ID: savedUser.ID, Email: savedUser.Email, FullName: savedUser.FullName}
		return &e, nil
	}

	resp, err := f.svc.Create(context.Background(), validCreateRequest())

	assert.NoError(t, err)
	assert.Equal(t, "20260001", resp.EmployeeNumber)
	assert.Equal(t, "dina.larasati@example.com", savedUser.Email)
	assert.Equal(t, "20260001", *savedUser.EmployeeCode)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(savedUser.Password), []byte("correct-horse-battery")))
	assert.Equal(t, savedUser.ID, savedEmployee.UserID)

	assert.Equal(t, savedUser.ID, linkedUser)
	assert.Equal(t, f.roles.roleID, linkedRole)
	assert.True(t, f.roles.invalidated)

	assert.Len(t, f.outbox.created, 1)
	assert.Equal(t, events.EmployeeCreatedTopic, f.outbox.created[0].Topic)
	assert.Equal(t, kafka.OutboxStatusPending, f.outbox.created[0].Status)
	var evt events.EmployeeCreatedEvent
	assert.NoError(t, json.Unmarshal(f.outbox.created[0].Payload, &evt))
	assert.Equal(t, "employee_created", evt.EventType)
	assert.Equal(t, "20260001", evt.EmployeeNumber)

	assert.NoError(t, f.dbMock.ExpectationsWereMet())
	assert.NoError(t, f.rdb.ExpectationsWereMet())
}

func TestCreate_RetriesOnceOnNumberCollision(t *testing.T) {
	f := newFixture(t)
	f.dbMock.ExpectBegin()
	f.dbMock.ExpectRollback()
	f.dbMock.ExpectBegin()
	f.dbMock.ExpectCommit()
	f.rdb.ExpectDel(optionsCacheKey).SetVal(1)

	attempts := 0
	var savedEmployee *Employee
	f.repo.createFn = func(ctx context.Context, e *Employee) error {
		attempts++
		if attempts == 1 {
			return &pgconn.PgError{Code: "23505", ConstraintName: "uq_employees_employee_number"}
		}
		savedEmployee = e
		return nil
	}
	f.repo.findByIDFn = func(ctx context.Context, id string) (*Employee, error) {
		return savedEmployee, nil
	}

	resp, err := f.svc.Create(context.Background(), validCreateRequest())

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "20260002", resp.EmployeeNumber)
	assert.NoError(t, f.dbMock.ExpectationsWereMet())
}

func TestCreate_EmailTakenRejectedBeforeTx(t *testing.T) {
	f := newFixture(t)
	f.users.findByEmailFn = func(ctx context.Context, email string) (*user.User, error) {
		return &user.User{ID: uuid.New(), Email: email}, nil
	}

	_, err := f.svc.Create(context.Background(), validCreateRequest())

	assert.ErrorIs(t, err, employeeerrors.ErrEmailTaken)
	assert.NoError(t, f.dbMock.ExpectationsWereMet())
}

func TestCreate_DefaultRoleMissingRollsBack(t *testing.T) {
	f := newFixture(t)
	f.dbMock.ExpectBegin()
	f.dbMock.ExpectRollback()
	f.roles.findErr = gorm.ErrRecordNotFound

	_, err := f.svc.Create(context.Background(), validCreateRequest())

	assert.ErrorIs(t, err, employeeerrors.ErrDefaultRoleMissing)
	assert.Empty(t, f.outbox.created)
	assert.NoError(t, f.dbMock.ExpectationsWereMet())
}

func TestGetOptions_CacheMissQueriesAndStores(t *testing.T) {
	f := newFixture(t)

	id := uuid.New()
	f.repo.findOptsFn = func(ctx context.Context) ([]EmployeeOption, error) {
		return []EmployeeOption{{ID: id, EmployeeNumber: "20260001", FullName: "Dina Larasati"}}, nil
	}

	expected := []EmployeeOptionResponse{{ID: id.String(), EmployeeNumber: "20260001", FullName: "Dina Larasati"}}
	payload, _ := json.Marshal(expected)
	f.rdb.ExpectGet(optionsCacheKey).RedisNil()
	f.rdb.ExpectSet(optionsCacheKey, payload, optionsCacheTTL).SetVal("OK")

	got, err := f.svc.GetOptions(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.NoError(t, f.rdb.ExpectationsWereMet())
}

func TestGetOptions_CacheHitSkipsRepository(t *testing.T) {
	f := newFixture(t)
	f.repo.findOptsFn = func(ctx context.Context) ([]EmployeeOption, error) {
		t.Fatal("repository must not be hit on cache hit")
		return nil, nil
	}

	cached := []EmployeeOptionResponse{{ID: uuid.NewString(), EmployeeNumber: "20260001", FullName: "Dina Larasati"}}
	payload, _ := json.Marshal(cached)
	f.rdb.ExpectGet(optionsCacheKey).SetVal(string(payload))

	got, err := f.svc.GetOptions(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, cached, got)
	assert.NoError(t, f.rdb.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), uuid.NewString(), UpdateEmployeeRequest{})

	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
}

func TestDelete_RemovesProfileAndUserTogether(t *testing.T) {
	f := newFixture(t)
	f.dbMock.ExpectBegin()
	f.dbMock.ExpectCommit()
	f.rdb.ExpectDel(optionsCacheKey).SetVal(1)

	userID := uuid.New()
	employeeID := uuid.New()
	f.repo.findByIDFn = func(ctx context.Context, id string) (*Employee, error) {
		return &Employee{ID: employeeID, UserID: userID, EmployeeNumber: "20260001"}, nil
	}
	var deletedEmployee, deletedUser string
	f.repo.deleteFn = func(ctx context.Context, id string) error {
		deletedEmployee = id
		return nil
	}
	f.users.deleteFn = func(ctx context.Context, id string) error {
		deletedUser = id
		return nil
	}

	err := f.svc.Delete(context.Background(), employeeID.String())

	assert.NoError(t, err)
	assert.Equal(t, employeeID.String(), deletedEmployee)
	assert.Equal(t, userID.String(), deletedUser)
	assert.True(t, f.roles.invalidated)
	assert.NoError(t, f.dbMock.ExpectationsWereMet())
	assert.NoError(t, f.rdb.ExpectationsWereMet())
}
