package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/triplog/backend/internal/model"
)

type AuthorResponse struct {
	ID       uuid.UUID `json:"id"`
	Nickname string    `json:"nickname"`
	Avatar   string    `json:"avatar"`
}

type DiaryResponse struct {
	ID              uuid.UUID       `json:"id"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Images          []string        `json:"images"`
	Video           string          `json:"video,omitempty"`
	Author          *AuthorResponse `json:"author,omitempty"`
	Status          string          `json:"status"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	IsDeleted       bool            `json:"isDeleted"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func NewDiaryResponse(d *model.Diary) DiaryResponse {
	resp := DiaryResponse{
		ID:              d.ID,
		Title:           d.Title,
		Content:         d.Content,
		Images:          d.Images,
		Video:           d.Video,
		Status:          d.Status,
		RejectionReason: d.RejectionReason,
		IsDeleted:       d.IsDeleted,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.Author != nil {
		resp.Author = &AuthorResponse{
			ID:       d.Author.ID,
			Nickname: d.Author.Nickname,
			Avatar:   d.Author.Avatar,
		}
	}
	return resp
}

func NewDiaryResponses(diaries []*model.Diary) []DiaryResponse {
	responses := make([]DiaryResponse, 0, len(diaries))
	for _, d := range diaries {
		responses = append(responses, NewDiaryResponse(d))
	}
	return responses
}

type CreateDiaryRequest struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

// UpdateDiaryRequest carries the author's patch. Empty fields keep the
// stored value; new uploads arrive separately as multipart files.
type UpdateDiaryRequest struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

type ReviewDiaryRequest struct {
	Status          string `json:"status" binding:"required,oneof=approved rejected"`
	RejectionReason string `json:"rejectionReason"`
}

type PublicListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
}

type AdminListQuery struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Status string `form:"status"`
}

type PublicDiaryListResponse struct {
	Items []DiaryResponse `json:"items"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type AdminDiaryListResponse struct {
	Items      []DiaryResponse `json:"items"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"totalPages"`
}

type RemoveDiaryResponse struct {
	Mode string `json:"mode"`
}
