package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/triplog/backend/internal/dto"
	"github.com/triplog/backend/internal/service"
	"github.com/triplog/backend/pkg/apperror"
	"github.com/triplog/backend/pkg/response"
	"github.com/triplog/backend/pkg/validator"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) GetAllUsers(c *gin.Context) {
	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	users, err := h.service.GetAll(c.Request.Context(), p)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), p, p.ID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.service.GetByID(c.Request.Context(), p, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	user, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	// Avatar is optional multipart alongside the form fields
	avatar, err := c.FormFile("avatar")
	if err != nil {
		avatar = nil
	}

	user, err := h.service.Update(c.Request.Context(), p, userID, req, avatar)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), p, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "user deleted successfully"})
}

func parseUserID(c *gin.Context) (uuid.UUID, error) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
	}
	return userID, nil
}
