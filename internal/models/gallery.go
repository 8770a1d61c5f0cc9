package models

import (
	"time"

	"github.com/google/uuid"
)

type GalleryPhoto struct {
	BaseModel
	StoragePath     string    `json:"storagePath" gorm:"type:text;not null"`
	Caption         string    `json:"caption" gorm:"type:text;not null;default:''"`
	UploadedBy      uuid.UUID `json:"uploadedBy" gorm:"type:uuid;not null;index"`
	UploadedByName  string    `json:"uploadedByName" gorm:"type:varchar(150);not null"`
	UploadedByPhoto *string   `json:"uploadedByPhoto,omitempty" gorm:"type:text"`
	Width           int       `json:"width" gorm:"not null;default:0"`
	Height          int       `json:"height" gorm:"not null;default:0"`
	Size            int64     `json:"size" gorm:"not null;default:0"`

	ImageURL string   `json:"imageUrl,omitempty" gorm:"-"`
	Likes    []string `json:"likes" gorm:"-"`
}

func (GalleryPhoto) TableName() string {
	return "gallery_photos"
}

// PhotoLike rows form the likes set of a photo; the composite key makes
// membership idempotent.
type PhotoLike struct {
	PhotoID   uuid.UUID `json:"photoId" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"createdAt"`
}

func (PhotoLike) TableName() string {
	return "photo_likes"
}
