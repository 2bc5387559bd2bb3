// Package authz centralizes every role and ownership decision for diary
// operations. Handlers and services consult these predicates instead of
// comparing role strings inline, so a denial always names the rule that
// failed and there is no default-allow path.
package authz

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/pkg/apperror"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID   uuid.UUID
	Role string
}

func deny(predicate string) error {
	return fmt.Errorf("permission denied by %s: %w", predicate, apperror.ErrForbidden)
}

// IsOwner reports whether p authored the diary.
func IsOwner(p Principal, d *model.Diary) bool {
	return p.ID == d.AuthorID
}

// IsModerator reports whether p may act on submissions it does not own.
func IsModerator(p Principal) bool {
	return p.Role == model.RoleReviewer || p.Role == model.RoleAdmin
}

// CanCreate allows any authenticated principal to submit a diary.
func CanCreate(p Principal) error {
	return nil
}

// CanEdit allows the author to edit while the diary is pending or rejected.
func CanEdit(p Principal, d *model.Diary) error {
	if !IsOwner(p, d) {
		return deny("canEdit")
	}
	if d.Status != model.StatusPending && d.Status != model.StatusRejected {
		return deny("canEdit")
	}
	return nil
}

// CanReview allows reviewers and admins to approve or reject.
func CanReview(p Principal, d *model.Diary) error {
	if !IsModerator(p) {
		return deny("canReview")
	}
	return nil
}

// CanDelete allows the author or an admin to remove a diary.
func CanDelete(p Principal, d *model.Diary) error {
	if !IsOwner(p, d) && p.Role != model.RoleAdmin {
		return deny("canDelete")
	}
	return nil
}

// CanViewDetail allows anyone to read approved diaries; unapproved ones are
// visible only to their author and to moderators.
func CanViewDetail(p Principal, d *model.Diary) error {
	if d.Status == model.StatusApproved {
		return nil
	}
	if IsOwner(p, d) || IsModerator(p) {
		return nil
	}
	return deny("canViewDetail")
}
