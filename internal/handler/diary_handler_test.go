package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triplog/backend/internal/authz"
	"github.com/triplog/backend/internal/dto"
	"github.com/triplog/backend/internal/model"
	"github.com/triplog/backend/internal/service"
)

type stubDiaryService struct {
	created bool
}

func (s *stubDiaryService) Create(ctx context.Context, p authz.Principal, req dto.CreateDiaryRequest, images []*multipart.FileHeader, video *multipart.FileHeader) (*model.Diary, error) {
	s.created = true
	return &model.Diary{ID: uuid.New(), Title: req.Title, Content: req.Content, Status: model.StatusPending}, nil
}

func (s *stubDiaryService) GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*model.Diary, error) {
	return &model.Diary{ID: id, Status: model.StatusApproved}, nil
}

func (s *stubDiaryService) Update(ctx context.Context, p authz.Principal, id uuid.UUID, req dto.UpdateDiaryRequest, images []*multipart.FileHeader, video *multipart.FileHeader) (*model.Diary, error) {
	return &model.Diary{ID: id, Status: model.StatusPending}, nil
}

func (s *stubDiaryService) Review(ctx context.Context, p authz.Principal, id uuid.UUID, req dto.ReviewDiaryRequest) (*model.Diary, error) {
	return &model.Diary{ID: id, Status: req.Status}, nil
}

func (s *stubDiaryService) Remove(ctx context.Context, p authz.Principal, id uuid.UUID) (service.RemoveMode, error) {
	return service.RemovePhysical, nil
}

func newTestRouter(svc service.DiaryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDiaryHandler(svc, nil)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.NewString())
		c.Set("user_role", model.RoleUser)
	})
	router.POST("/api/diaries", h.CreateDiary)
	router.GET("/api/diaries/:id", h.GetDiary)
	return router
}

func multipartBody(t *testing.T, imageCount int) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("title", "Hike"))
	require.NoError(t, w.WriteField("content", "Great day"))
	for i := 0; i < imageCount; i++ {
		part, err := w.CreateFormFile("images", "photo.jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("data"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateDiaryEnforcesImageCap(t *testing.T) {
	svc := &stubDiaryService{}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, 6)
	req := httptest.NewRequest(http.MethodPost, "/api/diaries", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, svc.created, "the lifecycle manager must not run for an over-cap upload")
}

func TestCreateDiaryAcceptsUploads(t *testing.T) {
	svc := &stubDiaryService{}
	router := newTestRouter(svc)

	body, contentType := multipartBody(t, 2)
	req := httptest.NewRequest(http.MethodPost, "/api/diaries", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, svc.created)
}

func TestGetDiaryMalformedIDReads404(t *testing.T) {
	router := newTestRouter(&stubDiaryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/diaries/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, "malformed ids look like missing records")
}
