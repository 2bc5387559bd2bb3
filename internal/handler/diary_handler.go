package handler

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/triplog/backend/internal/dto"
	"github.com/triplog/backend/internal/service"
	"github.com/triplog/backend/pkg/apperror"
	"github.com/triplog/backend/pkg/response"
	"github.com/triplog/backend/pkg/validator"
)

const (
	maxImagesPerRequest = 5
	maxVideosPerRequest = 1
)

type DiaryHandler struct {
	diaryService   service.DiaryService
	listingService service.ListingService
}

func NewDiaryHandler(diaryService service.DiaryService, listingService service.ListingService) *DiaryHandler {
	return &DiaryHandler{
		diaryService:   diaryService,
		listingService: listingService,
	}
}

func (h *DiaryHandler) ListPublic(c *gin.Context) {
	var query dto.PublicListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.listingService.ListApprovedPublic(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *DiaryHandler) ListForAdmin(c *gin.Context) {
	var query dto.AdminListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.listingService.ListForAdmin(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *DiaryHandler) GetDiary(c *gin.Context) {
	diaryID, err := parseDiaryID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	diary, err := h.diaryService.GetByID(c.Request.Context(), p, diaryID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res := dto.NewDiaryResponse(diary)
	c.JSON(http.StatusOK, res)
}

func (h *DiaryHandler) CreateDiary(c *gin.Context) {
	var req dto.CreateDiaryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	images, video, err := diaryUploads(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	diary, err := h.diaryService.Create(c.Request.Context(), p, req, images, video)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res := dto.NewDiaryResponse(diary)
	c.JSON(http.StatusCreated, res)
}

func (h *DiaryHandler) UpdateDiary(c *gin.Context) {
	diaryID, err := parseDiaryID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateDiaryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	images, video, err := diaryUploads(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	diary, err := h.diaryService.Update(c.Request.Context(), p, diaryID, req, images, video)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res := dto.NewDiaryResponse(diary)
	c.JSON(http.StatusOK, res)
}

func (h *DiaryHandler) ReviewDiary(c *gin.Context) {
	diaryID, err := parseDiaryID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ReviewDiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	diary, err := h.diaryService.Review(c.Request.Context(), p, diaryID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res := dto.NewDiaryResponse(diary)
	c.JSON(http.StatusOK, res)
}

func (h *DiaryHandler) DeleteDiary(c *gin.Context) {
	diaryID, err := parseDiaryID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	p, err := principalFromContext(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	mode, err := h.diaryService.Remove(c.Request.Context(), p, diaryID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RemoveDiaryResponse{Mode: string(mode)})
}

// parseDiaryID treats a malformed id the same as a missing record so the
// response never hints at id formats.
func parseDiaryID(c *gin.Context) (uuid.UUID, error) {
	diaryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("diary not found: %w", apperror.ErrNotFound)
	}
	return diaryID, nil
}

// diaryUploads pulls the multipart file fields and enforces the per-request
// caps before the lifecycle manager runs.
func diaryUploads(c *gin.Context) ([]*multipart.FileHeader, *multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// No multipart body at all is fine for updates
		return nil, nil, nil
	}

	images := form.File["images"]
	if len(images) > maxImagesPerRequest {
		return nil, nil, fmt.Errorf("at most %d images are allowed per diary: %w", maxImagesPerRequest, apperror.ErrBadRequest)
	}

	videos := form.File["video"]
	if len(videos) > maxVideosPerRequest {
		return nil, nil, fmt.Errorf("at most %d video is allowed per diary: %w", maxVideosPerRequest, apperror.ErrBadRequest)
	}

	var video *multipart.FileHeader
	if len(videos) == 1 {
		video = videos[0]
	}

	return images, video, nil
}
