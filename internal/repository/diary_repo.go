package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/triplog/backend/internal/model"
	"gorm.io/gorm"
)

type DiaryRepository interface {
	Create(ctx context.Context, diary *model.Diary) error
	// FindByID returns the diary regardless of its isDeleted flag; listing
	// queries are the ones that hide logically deleted rows.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Diary, error)
	FindApproved(ctx context.Context, search string, authorIDs []uuid.UUID, offset, limit int) ([]*model.Diary, error)
	FindForAdmin(ctx context.Context, status string, offset, limit int) ([]*model.Diary, int64, error)
	Update(ctx context.Context, diary *model.Diary) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type diaryRepository struct {
	db *gorm.DB
}

func NewDiaryRepository(db *gorm.DB) DiaryRepository {
	return &diaryRepository{db: db}
}

func (r *diaryRepository) Create(ctx context.Context, diary *model.Diary) error {
	return r.db.WithContext(ctx).Create(diary).Error
}

func (r *diaryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Diary, error) {
	var diary model.Diary
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&diary).Error; err != nil {
		return nil, err
	}
	return &diary, nil
}

// FindApproved selects approved diaries, newest first. When search is
// non-empty it matches the title case-insensitively or the author against
// the pre-resolved nickname matches in authorIDs.
func (r *diaryRepository) FindApproved(ctx context.Context, search string, authorIDs []uuid.UUID, offset, limit int) ([]*model.Diary, error) {
	query := r.db.WithContext(ctx).
		Preload("Author").
		Where("status = ?", model.StatusApproved).
		Where("is_deleted = ?", false)

	if search != "" {
		if len(authorIDs) > 0 {
			query = query.Where("title ILIKE ? OR author_id IN ?", "%"+search+"%", authorIDs)
		} else {
			query = query.Where("title ILIKE ?", "%"+search+"%")
		}
	}

	var diaries []*model.Diary
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&diaries).Error; err != nil {
		return nil, err
	}
	return diaries, nil
}

func (r *diaryRepository) FindForAdmin(ctx context.Context, status string, offset, limit int) ([]*model.Diary, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Diary{}).
		Where("is_deleted = ?", false)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var diaries []*model.Diary
	if err := query.Preload("Author").Order("id DESC").Offset(offset).Limit(limit).Find(&diaries).Error; err != nil {
		return nil, 0, err
	}

	return diaries, total, nil
}

func (r *diaryRepository) Update(ctx context.Context, diary *model.Diary) error {
	return r.db.WithContext(ctx).Save(diary).Error
}

func (r *diaryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Diary{}, "id = ?", id).Error
}
