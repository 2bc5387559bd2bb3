package authz

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/pkg/apperror"
)

func TestCanEdit(t *testing.T) {
	owner := Principal{ID: uuid.New(), Role: model.RoleUser}
	stranger := Principal{ID: uuid.New(), Role: model.RoleUser}
	admin := Principal{ID: uuid.New(), Role: model.RoleAdmin}

	tests := []struct {
		name      string
		principal Principal
		status    string
		wantErr   bool
	}{
		{"owner can edit pending", owner, model.StatusPending, false},
		{"owner can edit rejected", owner, model.StatusRejected, false},
		{"owner cannot edit approved", owner, model.StatusApproved, true},
		{"stranger cannot edit pending", stranger, model.StatusPending, true},
		{"admin cannot edit someone else's diary", admin, model.StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diary := &model.Diary{AuthorID: owner.ID, Status: tt.status}
			err := CanEdit(tt.principal, diary)
			if tt.wantErr {
				assert.True(t, errors.Is(err, apperror.ErrForbidden))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanReview(t *testing.T) {
	diary := &model.Diary{AuthorID: uuid.New(), Status: model.StatusPending}

	assert.NoError(t, CanReview(Principal{ID: uuid.New(), Role: model.RoleReviewer}, diary))
	assert.NoError(t, CanReview(Principal{ID: uuid.New(), Role: model.RoleAdmin}, diary))

	err := CanReview(Principal{ID: diary.AuthorID, Role: model.RoleUser}, diary)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
	assert.Contains(t, err.Error(), "canReview")
}

func TestCanDelete(t *testing.T) {
	owner := Principal{ID: uuid.New(), Role: model.RoleUser}
	diary := &model.Diary{AuthorID: owner.ID, Status: model.StatusApproved}

	assert.NoError(t, CanDelete(owner, diary))
	assert.NoError(t, CanDelete(Principal{ID: uuid.New(), Role: model.RoleAdmin}, diary))

	err := CanDelete(Principal{ID: uuid.New(), Role: model.RoleReviewer}, diary)
	assert.True(t, errors.Is(err, apperror.ErrForbidden), "reviewers may review but not delete")
}

func TestCanViewDetail(t *testing.T) {
	owner := Principal{ID: uuid.New(), Role: model.RoleUser}
	stranger := Principal{ID: uuid.New(), Role: model.RoleUser}
	reviewer := Principal{ID: uuid.New(), Role: model.RoleReviewer}

	pending := &model.Diary{AuthorID: owner.ID, Status: model.StatusPending}
	approved := &model.Diary{AuthorID: owner.ID, Status: model.StatusApproved}

	assert.NoError(t, CanViewDetail(stranger, approved))
	assert.NoError(t, CanViewDetail(owner, pending))
	assert.NoError(t, CanViewDetail(reviewer, pending))

	err := CanViewDetail(stranger, pending)
	assert.True(t, errors.Is(err, apperror.ErrForbidden))
}

func TestUserPredicates(t *testing.T) {
	admin := Principal{ID: uuid.New(), Role: model.RoleAdmin}
	user := Principal{ID: uuid.New(), Role: model.RoleUser}

	assert.NoError(t, CanManageUsers(admin))
	assert.Error(t, CanManageUsers(user))
	assert.Error(t, CanManageUsers(Principal{ID: uuid.New(), Role: model.RoleReviewer}))

	assert.NoError(t, CanViewUser(user, user.ID))
	assert.NoError(t, CanViewUser(admin, user.ID))
	assert.Error(t, CanViewUser(user, admin.ID))

	assert.NoError(t, CanUpdateUser(user, user.ID))
	assert.Error(t, CanUpdateUser(user, uuid.New()))
}
