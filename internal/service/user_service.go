package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/triplog/backend/internal/authz"
	"github.com/triplog/backend/internal/dto"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/internal/repository"
	"github.com/triplog/backend/pkg/apperror"
	"github.com/triplog/backend/pkg/storage"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService is the pass-through account surface: admin CRUD plus
// self-service profile updates. Avatar files go through the same
// FileStorage as diary assets.
type UserService interface {
	GetAll(ctx context.Context, p authz.Principal) ([]*dto.UserResponse, error)
	GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*dto.UserResponse, error)
	Create(ctx context.Context, p authz.Principal, req dto.CreateUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, p authz.Principal, id uuid.UUID, req dto.UpdateUserRequest, avatar *multipart.FileHeader) (*dto.UserResponse, error)
	Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error
}

type userService struct {
	userRepo    repository.UserRepository
	fileStorage storage.FileStorage
}

func NewUserService(userRepo repository.UserRepository, fileStorage storage.FileStorage) UserService {
	return &userService{
		userRepo:    userRepo,
		fileStorage: fileStorage,
	}
}

func (s *userService) GetAll(ctx context.Context, p authz.Principal) ([]*dto.UserResponse, error) {
	if err := authz.CanManageUsers(p); err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponses(users), nil
}

func (s *userService) GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*dto.UserResponse, error) {
	if err := authz.CanViewUser(p, id); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Create(ctx context.Context, p authz.Principal, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := authz.CanManageUsers(p); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Nickname:     req.Nickname,
		Avatar:       storage.DefaultAvatarPath,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, p authz.Principal, id uuid.UUID, req dto.UpdateUserRequest, avatar *multipart.FileHeader) (*dto.UserResponse, error) {
	if err := authz.CanUpdateUser(p, id); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if avatar != nil {
		newRef, err := s.fileStorage.Save(ctx, avatar, storage.KindAvatar)
		if err != nil {
			return nil, err
		}
		// The shared placeholder is never reclaimed; Delete refuses it.
		s.fileStorage.Delete(ctx, user.Avatar)
		user.Avatar = newRef
	}

	if nickname := strings.TrimSpace(req.Nickname); nickname != "" {
		user.Nickname = nickname
	}

	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) error {
	if err := authz.CanManageUsers(p); err != nil {
		return err
	}

	user, err := s.loadUser(ctx, id)
	if err != nil {
		return err
	}

	s.fileStorage.Delete(ctx, user.Avatar)
	return s.userRepo.Delete(ctx, id)
}

func (s *userService) loadUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
