package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/pkg/apperror"
	"github.com/triplog/backend/pkg/storage"
	"gorm.io/gorm"
)

// fakeDiaryRepo is an in-memory DiaryRepository preserving insertion order
// so newest-first listings can be asserted.
type fakeDiaryRepo struct {
	diaries    map[uuid.UUID]*model.Diary
	order      []uuid.UUID
	failCreate bool
	failUpdate bool
}

func newFakeDiaryRepo() *fakeDiaryRepo {
	return &fakeDiaryRepo{diaries: make(map[uuid.UUID]*model.Diary)}
}

func (r *fakeDiaryRepo) Create(ctx context.Context, diary *model.Diary) error {
	if r.failCreate {
		return errors.New("database unavailable")
	}
	if diary.ID == uuid.Nil {
		diary.ID = uuid.New()
	}
	clone := *diary
	r.diaries[diary.ID] = &clone
	r.order = append(r.order, diary.ID)
	return nil
}

func (r *fakeDiaryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Diary, error) {
	diary, ok := r.diaries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *diary
	return &clone, nil
}

func (r *fakeDiaryRepo) FindApproved(ctx context.Context, search string, authorIDs []uuid.UUID, offset, limit int) ([]*model.Diary, error) {
	var matched []*model.Diary
	for i := len(r.order) - 1; i >= 0; i-- {
		d := r.diaries[r.order[i]]
		if d.Status != model.StatusApproved || d.IsDeleted {
			continue
		}
		if search != "" && !matchesSearch(d, search, authorIDs) {
			continue
		}
		clone := *d
		matched = append(matched, &clone)
	}
	return paginate(matched, offset, limit), nil
}

func (r *fakeDiaryRepo) FindForAdmin(ctx context.Context, status string, offset, limit int) ([]*model.Diary, int64, error) {
	var matched []*model.Diary
	for i := len(r.order) - 1; i >= 0; i-- {
		d := r.diaries[r.order[i]]
		if d.IsDeleted {
			continue
		}
		if status != "" && d.Status != status {
			continue
		}
		clone := *d
		matched = append(matched, &clone)
	}
	return paginate(matched, offset, limit), int64(len(matched)), nil
}

func (r *fakeDiaryRepo) Update(ctx context.Context, diary *model.Diary) error {
	if r.failUpdate {
		return errors.New("database unavailable")
	}
	clone := *diary
	r.diaries[diary.ID] = &clone
	return nil
}

func (r *fakeDiaryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.diaries, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func matchesSearch(d *model.Diary, search string, authorIDs []uuid.UUID) bool {
	if strings.Contains(strings.ToLower(d.Title), strings.ToLower(search)) {
		return true
	}
	for _, id := range authorIDs {
		if d.AuthorID == id {
			return true
		}
	}
	return false
}

func paginate(items []*model.Diary, offset, limit int) []*model.Diary {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	for _, u := range r.users {
		clone := *u
		users = append(users, &clone)
	}
	return users, nil
}

func (r *fakeUserRepo) FindIDsByNickname(ctx context.Context, search string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Nickname), strings.ToLower(search)) {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

// fakeStorage implements storage.FileStorage without touching the disk. It
// tracks which refs exist so rollback behavior can be asserted.
type fakeStorage struct {
	existing  map[string]bool
	saved     []string
	deleted   []string
	failAfter int // fail the nth save onwards; -1 never fails
	saves     int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{existing: make(map[string]bool), failAfter: -1}
}

func (s *fakeStorage) Save(ctx context.Context, file *multipart.FileHeader, kind storage.Kind) (string, error) {
	if s.failAfter >= 0 && s.saves >= s.failAfter {
		return "", fmt.Errorf("disk full: %w", apperror.ErrStorage)
	}
	s.saves++
	ref := fmt.Sprintf("uploads/%s/%s-%d-%s", kind, kind, s.saves, file.Filename)
	s.existing[ref] = true
	s.saved = append(s.saved, ref)
	return ref, nil
}

func (s *fakeStorage) Delete(ctx context.Context, ref string) bool {
	if ref == "" || ref == storage.DefaultAvatarPath {
		return false
	}
	s.deleted = append(s.deleted, ref)
	if !s.existing[ref] {
		return false
	}
	delete(s.existing, ref)
	return true
}

func (s *fakeStorage) DeleteMany(ctx context.Context, refs []string) {
	for _, ref := range refs {
		s.Delete(ctx, ref)
	}
}
