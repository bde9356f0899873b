package repositories

import (
	"MucosaView/cache"
	"MucosaView/models"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const PhotoHashCacheExpiry = 24 * time.Hour

type PhotoRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewPhotoRepository(db *gorm.DB, cache *cache.Cache) *PhotoRepository {
	return &PhotoRepository{db: db, cache: cache}
}

// ExistsByHash backs the pre-upload dedup probe. Positive hits are cached:
// photos are immutable so a known hash never becomes stale.
func (r *PhotoRepository) ExistsByHash(ctx context.Context, sha256 string) (bool, error) {
	cacheKey := r.hashCacheKey(sha256)
	if cached, err := r.cache.Get(ctx, cacheKey); err == nil && cached == "1" {
		return true, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Photo{}).Where("sha256 = ?", sha256).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check photo hash: %w", err)
	}
	if count > 0 {
		if err := r.cache.Set(ctx, cacheKey, "1", PhotoHashCacheExpiry); err != nil {
			logrus.Warnf("failed to cache photo hash: %v", err)
		}
		return true, nil
	}
	return false, nil
}

// SlotTaken reports whether the (visit, type, index) slot is already
// occupied. The unique index remains the final arbiter at commit time; this
// pre-check keeps the blob store free of writes for requests that are going
// to fail anyway.
func (r *PhotoRepository) SlotTaken(tx *gorm.DB, visitID, photoType string, index int) (bool, error) {
	var count int64
	err := tx.Model(&models.Photo{}).
		Where("visit_id = ? AND type = ? AND photo_index = ?", visitID, photoType, index).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check photo slot: %w", err)
	}
	return count > 0, nil
}

// Create persists the photo row inside the caller's transaction. Inserting
// the row takes the (visit, type, index) unique index, so a racing creation
// for the same slot blocks here and then fails; the violation maps to
// ErrDuplicatePhoto and the prior photo for the slot stays intact.
func (r *PhotoRepository) Create(ctx context.Context, tx *gorm.DB, photo *models.Photo) error {
	if photo.ID == "" {
		photo.ID = uuid.New().String()
	}
	if photo.Index == 0 {
		photo.Index = 1
	}
	if err := tx.Create(photo).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePhoto
		}
		return fmt.Errorf("failed to create photo: %w", err)
	}

	if photo.SHA256 != "" {
		if err := r.cache.Set(ctx, r.hashCacheKey(photo.SHA256), "1", PhotoHashCacheExpiry); err != nil {
			logrus.Warnf("failed to cache photo hash: %v", err)
		}
	}
	return nil
}

// SetContent records the ingested digest and size on a row created ahead of
// the blob write, and caches the hash for the dedup probe.
func (r *PhotoRepository) SetContent(ctx context.Context, tx *gorm.DB, photo *models.Photo) error {
	err := tx.Model(photo).Updates(map[string]interface{}{
		"sha256": photo.SHA256,
		"size":   photo.Size,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to record photo content: %w", err)
	}

	if err := r.cache.Set(ctx, r.hashCacheKey(photo.SHA256), "1", PhotoHashCacheExpiry); err != nil {
		logrus.Warnf("failed to cache photo hash: %v", err)
	}
	return nil
}

func (r *PhotoRepository) ListByVisit(ctx context.Context, visitID string) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.WithContext(ctx).
		Where("visit_id = ?", visitID).
		Order("created_at ASC").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	return photos, nil
}

func (r *PhotoRepository) hashCacheKey(sha256 string) string {
	return fmt.Sprintf("photo_hash:%s", sha256)
}
