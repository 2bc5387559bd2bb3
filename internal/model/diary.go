package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Diary moderation states. Pending is the sole initial state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// IsValidStatus reports whether s is one of the three moderation states.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

type Diary struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	Images          []string  `gorm:"serializer:json;not null" json:"images"`
	Video           string    `gorm:"type:text" json:"video,omitempty"`
	AuthorID        uuid.UUID `gorm:"type:uuid;not null;index" json:"author"`
	Author          *User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Status          string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	RejectionReason string    `gorm:"type:text" json:"rejectionReason,omitempty"`
	IsDeleted       bool      `gorm:"not null;default:false;index" json:"isDeleted"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (d *Diary) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	return
}

// AssetRefs returns every asset reference held by the diary, images first.
func (d *Diary) AssetRefs() []string {
	refs := make([]string, 0, len(d.Images)+1)
	refs = append(refs, d.Images...)
	if d.Video != "" {
		refs = append(refs, d.Video)
	}
	return refs
}
