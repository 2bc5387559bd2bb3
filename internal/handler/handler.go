package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/triplog/backend/internal/authz"
	"github.com/triplog/backend/pkg/response"
)

func principalFromContext(c *gin.Context) (authz.Principal, error) {
	userID, err := response.GetUserID(c)
	if err != nil {
		return authz.Principal{}, err
	}

	return authz.Principal{
		ID:   userID,
		Role: response.GetUserRole(c),
	}, nil
}
