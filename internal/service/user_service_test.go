package service

import (
	"context"
	"testing"

	"user_manager/internal/model"
	"user_manager/internal/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (UserService, *test.MemoryUserRepository) {
	t.Helper()
	repo := test.NewMemoryUserRepository()
	return NewUserService(repo), repo
}

func seedUser(t *testing.T, repo *test.MemoryUserRepository, email, role string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         "Seeded",
		Email:        email,
		Phone:        "+595111",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserService_Create_DefaultsRole(t *testing.T) {
	svc, _ := newUserService(t)

	user, err := svc.Create(context.Background(), model.CreateUserRequest{
		Name: "Bob", Email: "bob@example.com", Phone: "+595222", Password: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
}

func TestUserService_Create_AdminRole(t *testing.T) {
	svc, _ := newUserService(t)

	user, err := svc.Create(context.Background(), model.CreateUserRequest{
		Name: "Boss", Email: "boss@example.com", Phone: "+595222", Password: "password123",
		Role: model.RoleAdmin,
	})

	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	svc, repo := newUserService(t)
	seedUser(t, repo, "bob@example.com", model.RoleUser)

	_, err := svc.Create(context.Background(), model.CreateUserRequest{
		Name: "Bob", Email: "bob@example.com", Phone: "+595222", Password: "password123",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Get_NotFound(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Update_Partial(t *testing.T) {
	svc, repo := newUserService(t)
	user := seedUser(t, repo, "bob@example.com", model.RoleUser)

	name := "Robert"
	updated, err := svc.Update(context.Background(), user.ID, model.UpdateUserRequest{Name: &name})

	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, "bob@example.com", updated.Email, "untouched fields survive the patch")
	assert.Equal(t, model.RoleUser, updated.Role)
}

func TestUserService_Update_EmailConflict(t *testing.T) {
	svc, repo := newUserService(t)
	user := seedUser(t, repo, "bob@example.com", model.RoleUser)
	seedUser(t, repo, "alice@example.com", model.RoleUser)

	email := "alice@example.com"
	_, err := svc.Update(context.Background(), user.ID, model.UpdateUserRequest{Email: &email})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Update_OwnEmailIsNotAConflict(t *testing.T) {
	svc, repo := newUserService(t)
	user := seedUser(t, repo, "bob@example.com", model.RoleUser)

	email := "bob@example.com"
	updated, err := svc.Update(context.Background(), user.ID, model.UpdateUserRequest{Email: &email})

	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", updated.Email)
}

func TestUserService_Delete_SelfGuard(t *testing.T) {
	svc, repo := newUserService(t)
	admin := seedUser(t, repo, "admin@example.com", model.RoleAdmin)

	err := svc.Delete(context.Background(), admin.ID, admin.ID)

	assert.ErrorIs(t, err, ErrSelfDelete)
	still, _ := repo.FindByID(context.Background(), admin.ID)
	assert.NotNil(t, still, "self-delete must never perform the deletion")
}

func TestUserService_Delete(t *testing.T) {
	svc, repo := newUserService(t)
	admin := seedUser(t, repo, "admin@example.com", model.RoleAdmin)
	victim := seedUser(t, repo, "bob@example.com", model.RoleUser)

	require.NoError(t, svc.Delete(context.Background(), admin.ID, victim.ID))

	gone, _ := repo.FindByID(context.Background(), victim.ID)
	assert.Nil(t, gone)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	svc, repo := newUserService(t)
	admin := seedUser(t, repo, "admin@example.com", model.RoleAdmin)

	err := svc.Delete(context.Background(), admin.ID, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_List_NewestFirst(t *testing.T) {
	svc, repo := newUserService(t)
	first := seedUser(t, repo, "first@example.com", model.RoleUser)
	second := seedUser(t, repo, "second@example.com", model.RoleUser)

	users, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, second.ID, users[0].ID)
	assert.Equal(t, first.ID, users[1].ID)
}
