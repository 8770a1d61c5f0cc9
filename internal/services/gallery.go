package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hospoda/shiftboard/internal/models"
	"github.com/hospoda/shiftboard/internal/session"
	"github.com/hospoda/shiftboard/internal/storage"
	"github.com/hospoda/shiftboard/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GalleryService struct {
	DB             *gorm.DB
	Store          storage.BlobStore
	Images         ImageProcessor
	MaxUploadBytes int64
	ListLimit      int
	URLExpiry      time.Duration
	Clock          Clock
}

type GalleryOptions struct {
	MaxUploadBytes int64
	MaxWidth       int
	JPEGQuality    int
	ListLimit      int
	URLExpiry      time.Duration
}

func NewGalleryService(db *gorm.DB, store storage.BlobStore, clock Clock, opts GalleryOptions) *GalleryService {
	if opts.ListLimit <= 0 {
		opts.ListLimit = 50
	}
	if opts.URLExpiry <= 0 {
		opts.URLExpiry = time.Hour
	}
	return &GalleryService{
		DB:             db,
		Store:          store,
		Images:         ImageProcessor{MaxWidth: opts.MaxWidth, Quality: opts.JPEGQuality},
		MaxUploadBytes: opts.MaxUploadBytes,
		ListLimit:      opts.ListLimit,
		URLExpiry:      opts.URLExpiry,
		Clock:          clock,
	}
}

type PhotoUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Caption     string
}

func (s *GalleryService) List(ctx context.Context, sess session.Session) ([]models.GalleryPhoto, error) {
	if !sess.Authenticated() {
		return nil, ErrForbidden
	}

	var photos []models.GalleryPhoto
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Limit(s.ListLimit).Find(&photos).Error; err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return photos, nil
	}

	ids := make([]uuid.UUID, len(photos))
	for i := range photos {
		ids[i] = photos[i].ID
	}
	var likes []models.PhotoLike
	if err := s.DB.WithContext(ctx).Where("photo_id IN ?", ids).Order("created_at ASC").Find(&likes).Error; err != nil {
		return nil, err
	}
	byPhoto := make(map[uuid.UUID][]string, len(photos))
	for _, like := range likes {
		byPhoto[like.PhotoID] = append(byPhoto[like.PhotoID], like.UserID.String())
	}

	for i := range photos {
		photos[i].Likes = byPhoto[photos[i].ID]
		if photos[i].Likes == nil {
			photos[i].Likes = []string{}
		}
		s.attachURL(ctx, &photos[i])
	}
	return photos, nil
}

func (s *GalleryService) attachURL(ctx context.Context, photo *models.GalleryPhoto) {
	url, err := s.Store.PresignedGetURL(ctx, photo.StoragePath, s.URLExpiry)
	if err != nil {
		logger.Warn("gallery_presign_failed", map[string]interface{}{
			"photo_id": photo.ID.String(),
			"error":    err.Error(),
		})
		return
	}
	photo.ImageURL = url
}

func (s *GalleryService) Get(ctx context.Context, id uuid.UUID) (*models.GalleryPhoto, error) {
	var photo models.GalleryPhoto
	if err := s.DB.WithContext(ctx).First(&photo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	likes, err := s.likes(ctx, id)
	if err != nil {
		return nil, err
	}
	photo.Likes = likes
	s.attachURL(ctx, &photo)
	return &photo, nil
}

// Upload validates, compresses and stores an image, then records it.
func (s *GalleryService) Upload(ctx context.Context, sess session.Session, in PhotoUpload) (*models.GalleryPhoto, error) {
	if err := authorize(sess, ActionPhotoUpload); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.ToLower(in.ContentType), "image/") {
		return nil, invalidf("only images can be uploaded")
	}
	if s.MaxUploadBytes > 0 && in.Size > s.MaxUploadBytes {
		return nil, invalidf("image is larger than %d MB", s.MaxUploadBytes/(1024*1024))
	}

	reader := in.Reader
	if s.MaxUploadBytes > 0 {
		reader = io.LimitReader(in.Reader, s.MaxUploadBytes+1)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if s.MaxUploadBytes > 0 && int64(len(raw)) > s.MaxUploadBytes {
		return nil, invalidf("image is larger than %d MB", s.MaxUploadBytes/(1024*1024))
	}

	img, err := s.Images.Compress(raw)
	if err != nil {
		return nil, err
	}

	var uploader models.UserProfile
	if err := s.DB.WithContext(ctx).Select("photo_url").First(&uploader, "uid = ?", sess.UserID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	objectName := fmt.Sprintf("gallery/%s/%d.jpg", sess.UserID, s.Clock.now().UnixMilli())
	if err := s.Store.Upload(ctx, objectName, bytes.NewReader(img.Data), int64(len(img.Data)), "image/jpeg"); err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	photo := models.GalleryPhoto{
		StoragePath:     objectName,
		Caption:         strings.TrimSpace(in.Caption),
		UploadedBy:      sess.UserID,
		UploadedByName:  sess.DisplayName,
		UploadedByPhoto: uploader.PhotoURL,
		Width:           img.Width,
		Height:          img.Height,
		Size:            int64(len(img.Data)),
	}
	if err := s.DB.WithContext(ctx).Create(&photo).Error; err != nil {
		if delErr := s.Store.Delete(ctx, objectName); delErr != nil {
			logger.Warn("gallery_orphan_blob", map[string]interface{}{"object_name": objectName})
		}
		return nil, err
	}

	photo.Likes = []string{}
	s.attachURL(ctx, &photo)
	return &photo, nil
}

// Like adds the caller to the photo's likes set. Liking twice is a no-op.
func (s *GalleryService) Like(ctx context.Context, sess session.Session, photoID uuid.UUID) ([]string, error) {
	if err := authorize(sess, ActionPhotoLike); err != nil {
		return nil, err
	}
	if err := s.requirePhoto(ctx, photoID); err != nil {
		return nil, err
	}

	like := models.PhotoLike{PhotoID: photoID, UserID: sess.UserID}
	if err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
		return nil, err
	}
	return s.likes(ctx, photoID)
}

// Unlike removes the caller from the likes set, if present.
func (s *GalleryService) Unlike(ctx context.Context, sess session.Session, photoID uuid.UUID) ([]string, error) {
	if err := authorize(sess, ActionPhotoLike); err != nil {
		return nil, err
	}
	if err := s.requirePhoto(ctx, photoID); err != nil {
		return nil, err
	}

	if err := s.DB.WithContext(ctx).
		Where("photo_id = ? AND user_id = ?", photoID, sess.UserID).
		Delete(&models.PhotoLike{}).Error; err != nil {
		return nil, err
	}
	return s.likes(ctx, photoID)
}

func (s *GalleryService) ToggleLike(ctx context.Context, sess session.Session, photoID uuid.UUID) ([]string, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.PhotoLike{}).
		Where("photo_id = ? AND user_id = ?", photoID, sess.UserID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return s.Unlike(ctx, sess, photoID)
	}
	return s.Like(ctx, sess, photoID)
}

func (s *GalleryService) requirePhoto(ctx context.Context, photoID uuid.UUID) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.GalleryPhoto{}).Where("id = ?", photoID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GalleryService) likes(ctx context.Context, photoID uuid.UUID) ([]string, error) {
	var rows []models.PhotoLike
	if err := s.DB.WithContext(ctx).Where("photo_id = ?", photoID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.UserID.String()
	}
	return out, nil
}

// Delete removes a photo. Owners may delete their own, admins any. A blob
// that cannot be removed is logged and left behind.
func (s *GalleryService) Delete(ctx context.Context, sess session.Session, photoID uuid.UUID) error {
	if err := authorize(sess, ActionPhotoDelete); err != nil {
		return err
	}

	var photo models.GalleryPhoto
	if err := s.DB.WithContext(ctx).First(&photo, "id = ?", photoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if photo.UploadedBy != sess.UserID && !sess.IsAdmin() {
		return ErrForbidden
	}

	if err := s.Store.Delete(ctx, photo.StoragePath); err != nil {
		logger.Warn("gallery_blob_delete_failed", map[string]interface{}{
			"photo_id":    photo.ID.String(),
			"object_name": photo.StoragePath,
			"error":       err.Error(),
		})
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ?", photoID).Delete(&models.PhotoLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.GalleryPhoto{}, "id = ?", photoID).Error
	})
}
