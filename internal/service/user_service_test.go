package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triplog/backend/internal/authz"
	"github.com/triplog/backend/internal/dto"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/pkg/apperror"
	"github.com/triplog/backend/pkg/storage"
)

func newUserFixture() (UserService, *fakeUserRepo, *fakeStorage) {
	repo := newFakeUserRepo()
	store := newFakeStorage()
	return NewUserService(repo, store), repo, store
}

func seedUser(t *testing.T, repo *fakeUserRepo, role string) *model.User {
	t.Helper()
	user := &model.User{
		Username: "user-" + uuid.NewString()[:8],
		Email:    uuid.NewString()[:8] + "@example.com",
		Nickname: "Someone",
		Avatar:   storage.DefaultAvatarPath,
		Role:     role,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserAdminOnlySurface(t *testing.T) {
	svc, repo, _ := newUserFixture()
	user := seedUser(t, repo, model.RoleUser)
	p := authz.Principal{ID: user.ID, Role: user.Role}

	_, err := svc.GetAll(context.Background(), p)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = svc.Create(context.Background(), p, dto.CreateUserRequest{
		Username: "x", Email: "x@example.com", Password: "password1", Nickname: "X",
	})
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	err = svc.Delete(context.Background(), p, uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestUserSelfOrAdminAccess(t *testing.T) {
	svc, repo, _ := newUserFixture()
	user := seedUser(t, repo, model.RoleUser)
	other := seedUser(t, repo, model.RoleUser)
	admin := seedUser(t, repo, model.RoleAdmin)

	_, err := svc.GetByID(context.Background(), authz.Principal{ID: user.ID, Role: user.Role}, user.ID)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), authz.Principal{ID: other.ID, Role: other.Role}, user.ID)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))

	_, err = svc.GetByID(context.Background(), authz.Principal{ID: admin.ID, Role: admin.Role}, user.ID)
	assert.NoError(t, err)
}

func TestUpdateAvatarKeepsPlaceholder(t *testing.T) {
	svc, repo, store := newUserFixture()
	user := seedUser(t, repo, model.RoleUser)
	p := authz.Principal{ID: user.ID, Role: user.Role}

	avatar := &multipart.FileHeader{Filename: "me.png"}
	res, err := svc.Update(context.Background(), p, user.ID, dto.UpdateUserRequest{}, avatar)
	require.NoError(t, err)
	assert.NotEqual(t, storage.DefaultAvatarPath, res.Avatar)
	assert.NotContains(t, store.deleted, storage.DefaultAvatarPath, "the shared placeholder is never reclaimed")

	// A second change reclaims the previous custom avatar
	firstAvatar := res.Avatar
	res, err = svc.Update(context.Background(), p, user.ID, dto.UpdateUserRequest{}, &multipart.FileHeader{Filename: "new.png"})
	require.NoError(t, err)
	assert.NotEqual(t, firstAvatar, res.Avatar)
	assert.Contains(t, store.deleted, firstAvatar)
}

func TestUpdateRestrictedFields(t *testing.T) {
	svc, repo, _ := newUserFixture()
	user := seedUser(t, repo, model.RoleUser)
	p := authz.Principal{ID: user.ID, Role: user.Role}

	res, err := svc.Update(context.Background(), p, user.ID, dto.UpdateUserRequest{Nickname: "New Name"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New Name", res.Nickname)
	assert.Equal(t, user.Username, res.Username, "username is immutable")
	assert.Equal(t, user.Email, res.Email, "email is immutable")
}
