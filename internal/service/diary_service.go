package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/triplog/backend/internal/authz"
	"github.com/triplog/backend/internal/dto"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/internal/repository"
	"github.com/triplog/backend/pkg/apperror"
	"github.com/triplog/backend/pkg/storage"
	"gorm.io/gorm"
)

// RemoveMode reports which delete branch Remove took.
type RemoveMode string

const (
	RemoveLogical  RemoveMode = "logical"
	RemovePhysical RemoveMode = "physical"
)

const actionCreateDiary = "create_diary"

// DiaryService owns the diary state machine. It is the only component that
// mutates a diary record; authorization goes through the authz predicates
// and asset IO through the injected FileStorage.
type DiaryService interface {
	Create(ctx context.Context, p authz.Principal, req dto.CreateDiaryRequest, images []*multipart.FileHeader, video *multipart.FileHeader) (*model.Diary, error)
	GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*model.Diary, error)
	Update(ctx context.Context, p authz.Principal, id uuid.UUID, req dto.UpdateDiaryRequest, images []*multipart.FileHeader, video *multipart.FileHeader) (*model.Diary, error)
	Review(ctx context.Context, p authz.Principal, id uuid.UUID, req dto.ReviewDiaryRequest) (*model.Diary, error)
	Remove(ctx context.Context, p authz.Principal, id uuid.UUID) (RemoveMode, error)
}

type diaryService struct {
	diaryRepo   repository.DiaryRepository
	fileStorage storage.FileStorage
	redisClient *redis.Client
	sanitizer   *bluemonday.Policy
	createLimit time.Duration
}

func NewDiaryService(diaryRepo repository.DiaryRepository, fileStorage storage.FileStorage, redisClient *redis.Client, createLimit time.Duration) DiaryService {
	return &diaryService{
		diaryRepo:   diaryRepo,
		fileStorage: fileStorage,
		redisClient: redisClient,
		sanitizer:   bluemonday.StrictPolicy(),
		createLimit: createLimit,
	}
}

func (s *diaryService) Create(ctx context.Context, p authz.Principal, req dto.CreateDiaryRequest, images []*multipart.FileHeader, video *multipart.FileHeader) (*model.Diary, error) {
	if err := authz.CanCreate(p); err != nil {
		return nil, err
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, p.ID, actionCreateDiary, s.createLimit)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("you are creating diaries too quickly: %w", apperror.ErrRateLimitExceeded)
	}
	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ClearRateLimit(ctx, s.redisClient, p.ID, actionCreateDiary)
		}
	}()

	// Validate before touching the disk so a bad request writes nothing.
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" || len(images) == 0 {
		return nil, fmt.Errorf("title, content and at least one image are required: %w", apperror.ErrInvalidInput)
	}

	saved, err := s.saveImages(ctx, images)
	if err != nil {
		return nil, err
	}

	videoRef := ""
	if video != nil {
		videoRef, err = s.fileStorage.Save(ctx, video, storage.KindVideo)
		if err != nil {
			s.fileStorage.DeleteMany(ctx, saved)
			return nil, err
		}
	}

	diary := &model.Diary{
		Title:    s.sanitizer.Sanitize(title),
		Content:  s.sanitizer.Sanitize(content),
		Images:   saved,
		Video:    videoRef,
		AuthorID: p.ID,
		Status:   model.StatusPending,
	}

	if err := s.diaryRepo.Create(ctx, diary); err != nil {
		// Roll back everything written this call so the failure leaves no
		// orphaned files behind.
		s.fileStorage.DeleteMany(ctx, diary.AssetRefs())
		return nil, err
	}

	creationFailed = false
	return diary, nil
}

func (s *diaryService) GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*model.Diary, error) {
	diary, err := s.loadDiary(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanViewDetail(p, diary); err != nil {
		return nil, err
	}

	return diary, nil
}

func (s *diaryService) Update(ctx context.Context, p authz.Principal, id uuid.UUID, req dto.UpdateDiaryRequest, images []*multipart.FileHeader, video *multipart.FileHeader) (*model.Diary, error) {
	diary, err := s.loadDiary(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanEdit(p, diary); err != nil {
		return nil, err
	}

	// New assets are written before the old ones are reclaimed, keeping the
	// unreachable window as small as possible. The swap is still not atomic:
	// once old files are gone a persistence failure leaves the stored record
	// pointing at them.
	var savedThisCall []string
	if len(images) > 0 {
		newRefs, err := s.saveImages(ctx, images)
		if err != nil {
			return nil, err
		}
		savedThisCall = append(savedThisCall, newRefs...)
		s.fileStorage.DeleteMany(ctx, diary.Images)
		diary.Images = newRefs
	}

	if video != nil {
		newRef, err := s.fileStorage.Save(ctx, video, storage.KindVideo)
		if err != nil {
			s.fileStorage.DeleteMany(ctx, savedThisCall)
			return nil, err
		}
		savedThisCall = append(savedThisCall, newRef)
		s.fileStorage.Delete(ctx, diary.Video)
		diary.Video = newRef
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		diary.Title = s.sanitizer.Sanitize(title)
	}
	if content := strings.TrimSpace(req.Content); content != "" {
		diary.Content = s.sanitizer.Sanitize(content)
	}

	// Any author edit re-enters moderation.
	diary.Status = model.StatusPending
	diary.RejectionReason = ""

	if err := s.diaryRepo.Update(ctx, diary); err != nil {
		s.fileStorage.DeleteMany(ctx, savedThisCall)
		return nil, err
	}

	return diary, nil
}

func (s *diaryService) Review(ctx context.Context, p authz.Principal, id uuid.UUID, req dto.ReviewDiaryRequest) (*model.Diary, error) {
	diary, err := s.loadDiary(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authz.CanReview(p, diary); err != nil {
		return nil, err
	}

	if req.Status != model.StatusApproved && req.Status != model.StatusRejected {
		return nil, fmt.Errorf("review decision must be approved or rejected: %w", apperror.ErrInvalidInput)
	}

	reason := strings.TrimSpace(req.RejectionReason)
	if req.Status == model.StatusRejected && reason == "" {
		return nil, fmt.Errorf("a rejection reason is required: %w", apperror.ErrInvalidInput)
	}

	diary.Status = req.Status
	if req.Status == model.StatusRejected {
		diary.RejectionReason = reason
	} else {
		diary.RejectionReason = ""
	}

	if err := s.diaryRepo.Update(ctx, diary); err != nil {
		return nil, err
	}

	return diary, nil
}

func (s *diaryService) Remove(ctx context.Context, p authz.Principal, id uuid.UUID) (RemoveMode, error) {
	diary, err := s.loadDiary(ctx, id)
	if err != nil {
		return "", err
	}

	if err := authz.CanDelete(p, diary); err != nil {
		return "", err
	}

	// Assets are reclaimed on both branches, including the logical delete:
	// the retained record keeps its references even though the files are
	// gone. Failures here are logged by the store and never abort the
	// record mutation.
	s.fileStorage.DeleteMany(ctx, diary.AssetRefs())

	// The branch is decided by the actor's role, not by which predicate
	// happened to allow the call: an admin always deletes logically, even
	// for their own diary.
	if p.Role == model.RoleAdmin {
		diary.IsDeleted = true
		if err := s.diaryRepo.Update(ctx, diary); err != nil {
			return "", err
		}
		return RemoveLogical, nil
	}

	if err := s.diaryRepo.Delete(ctx, diary.ID); err != nil {
		return "", err
	}
	return RemovePhysical, nil
}

func (s *diaryService) loadDiary(ctx context.Context, id uuid.UUID) (*model.Diary, error) {
	diary, err := s.diaryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("diary not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return diary, nil
}

// saveImages persists every file or none: a failure rolls back the files
// already written in this batch.
func (s *diaryService) saveImages(ctx context.Context, images []*multipart.FileHeader) ([]string, error) {
	saved := make([]string, 0, len(images))
	for _, file := range images {
		ref, err := s.fileStorage.Save(ctx, file, storage.KindImages)
		if err != nil {
			s.fileStorage.DeleteMany(ctx, saved)
			return nil, err
		}
		saved = append(saved, ref)
	}
	return saved, nil
}
