package dao

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ContestPhoto struct {
	ID uint `gorm:"primaryKey"`

	ContestID uint    `gorm:"not null;index"`
	Contest   Contest `gorm:"foreignKey:ContestID;constraint:OnDelete:RESTRICT"`
	UserID    uint    `gorm:"not null;index"`
	User      User    `gorm:"foreignKey:UserID"`

	ImagePath   string  `gorm:"size:500;not null;uniqueIndex"`
	Location    *string `gorm:"size:200"`
	Latitude    *float64
	Longitude   *float64
	Description *string `gorm:"type:text"`

	SubmittedAt time.Time `gorm:"not null;index"`
}

// InsertPhoto stores a submission row. The contest row is touched with a
// status-guarded update first so the insert only lands while the contest is
// still active, and a concurrent selection or cancel has to wait for it.
func (d *ContestDAO) InsertPhoto(ctx context.Context, photo ContestPhoto) (ContestPhoto, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Contest{}).
			Where("id = ? AND status = ?", photo.ContestID, ContestActive).
			Update("status", ContestActive)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&Contest{}).Where("id = ?", photo.ContestID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrContestNotFound
			}
			return ErrContestNotActive
		}

		if photo.SubmittedAt.IsZero() {
			photo.SubmittedAt = time.Now().UTC()
		}

		if err := tx.Omit("Contest", "User").Create(&photo).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDataIntegrity
			}
			return err
		}

		return tx.Preload("User").First(&photo, photo.ID).Error
	})
	if err != nil {
		return ContestPhoto{}, err
	}

	return photo, nil
}

// FindPhotos lists the submissions of a contest newest first, with their authors loaded.
func (d *ContestDAO) FindPhotos(ctx context.Context, contestID uint) ([]ContestPhoto, error) {
	var photos []ContestPhoto

	result := d.db.WithContext(ctx).
		Preload("User").
		Where("contest_id = ?", contestID).
		Order("submitted_at DESC").
		Order("id DESC").
		Find(&photos)
	if result.Error != nil {
		return nil, result.Error
	}

	return photos, nil
}
