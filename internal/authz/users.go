package authz

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/triplog/backend/internal/model"
)

// Claims is the token payload carried by every authenticated request.
// Role travels in the token so handlers can build a Principal without a
// user lookup per request.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// CanManageUsers allows only admins to list, create or delete accounts.
func CanManageUsers(p Principal) error {
	if p.Role != model.RoleAdmin {
		return deny("canManageUsers")
	}
	return nil
}

// CanViewUser allows admins and the account owner to read a profile.
func CanViewUser(p Principal, targetID uuid.UUID) error {
	if p.Role == model.RoleAdmin || p.ID == targetID {
		return nil
	}
	return deny("canViewUser")
}

// CanUpdateUser allows admins and the account owner to change a profile.
func CanUpdateUser(p Principal, targetID uuid.UUID) error {
	if p.Role == model.RoleAdmin || p.ID == targetID {
		return nil
	}
	return deny("canUpdateUser")
}
