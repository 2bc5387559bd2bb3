package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/triplog/backend/internal/dto"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/internal/repository"
)

// ListingService serves read-only diary queries. It never mutates state;
// moderator access to the admin listing is enforced upstream by the
// authorization gate.
type ListingService interface {
	ListApprovedPublic(ctx context.Context, query dto.PublicListQuery) (*dto.PublicDiaryListResponse, error)
	ListForAdmin(ctx context.Context, query dto.AdminListQuery) (*dto.AdminDiaryListResponse, error)
}

type listingService struct {
	diaryRepo repository.DiaryRepository
	userRepo  repository.UserRepository
}

func NewListingService(diaryRepo repository.DiaryRepository, userRepo repository.UserRepository) ListingService {
	return &listingService{
		diaryRepo: diaryRepo,
		userRepo:  userRepo,
	}
}

func (s *listingService) ListApprovedPublic(ctx context.Context, query dto.PublicListQuery) (*dto.PublicDiaryListResponse, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	// Two-stage search: nicknames resolve to author ids first, then diaries
	// match on title or on membership in that id set.
	var authorIDs []uuid.UUID
	if query.Search != "" {
		ids, err := s.userRepo.FindIDsByNickname(ctx, query.Search)
		if err != nil {
			return nil, err
		}
		authorIDs = ids
	}

	offset := (page - 1) * limit
	diaries, err := s.diaryRepo.FindApproved(ctx, query.Search, authorIDs, offset, limit)
	if err != nil {
		return nil, err
	}

	return &dto.PublicDiaryListResponse{
		Items: dto.NewDiaryResponses(diaries),
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *listingService) ListForAdmin(ctx context.Context, query dto.AdminListQuery) (*dto.AdminDiaryListResponse, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	// Unknown filter values fall through to the unfiltered listing instead
	// of erroring out.
	status := ""
	if model.IsValidStatus(query.Status) {
		status = query.Status
	}

	offset := (page - 1) * limit
	diaries, total, err := s.diaryRepo.FindForAdmin(ctx, status, offset, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &dto.AdminDiaryListResponse{
		Items:      dto.NewDiaryResponses(diaries),
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}
	return page, limit
}
