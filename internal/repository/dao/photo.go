package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

var (
	ErrPhotoNotFound = errors.New("photo not found")
	ErrAlreadyLiked  = errors.New("photo already liked")
	ErrLikeNotFound  = errors.New("like not found")
)

const (
	SortLatest = "latest"
	SortLikes  = "likes"
)

const likeCountColumn = "(SELECT COUNT(*) FROM likes WHERE likes.photo_id = photos.id) AS like_count"

type Photo struct {
	ID uint `gorm:"primaryKey"`

	UserID    uint    `gorm:"not null;index"`
	User      User    `gorm:"foreignKey:UserID"`
	KeywordID uint    `gorm:"not null;index"`
	Keyword   Keyword `gorm:"foreignKey:KeywordID"`

	ImagePath     string  `gorm:"size:500;not null;uniqueIndex"`
	Location      *string `gorm:"size:200"`
	Latitude      *float64
	Longitude     *float64
	AIDescription *string `gorm:"column:ai_description;type:text"`

	UploadedAt time.Time `gorm:"not null;index"`
}

type Like struct {
	ID uint `gorm:"primaryKey"`

	UserID  uint  `gorm:"not null;uniqueIndex:unique_user_photo_like"`
	User    User  `gorm:"foreignKey:UserID"`
	PhotoID uint  `gorm:"not null;uniqueIndex:unique_user_photo_like;index"`
	Photo   Photo `gorm:"foreignKey:PhotoID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null"`
}

// PhotoWithLikes is a photo row annotated with its current like count.
type PhotoWithLikes struct {
	Photo
	LikeCount int64
}

type PhotoFilter struct {
	KeywordID uint
	UserID    uint
	Limit     int
	Offset    int
}

type PhotoDAO struct {
	db *gorm.DB
}

func NewPhotoDAO(db *gorm.DB) *PhotoDAO {
	return &PhotoDAO{
		db: db,
	}
}

func (d *PhotoDAO) Insert(ctx context.Context, photo Photo) (Photo, error) {
	if photo.UploadedAt.IsZero() {
		photo.UploadedAt = time.Now().UTC()
	}

	result := d.db.WithContext(ctx).Omit("User", "Keyword").Create(&photo)
	if result.Error != nil {
		return Photo{}, result.Error
	}

	return photo, nil
}

func (d *PhotoDAO) FindByID(ctx context.Context, id uint) (PhotoWithLikes, error) {
	var rows []PhotoWithLikes

	result := d.withLikes(ctx).Where("photos.id = ?", id).Limit(1).Scan(&rows)
	if result.Error != nil {
		return PhotoWithLikes{}, result.Error
	}
	if len(rows) == 0 {
		return PhotoWithLikes{}, ErrPhotoNotFound
	}

	return rows[0], nil
}

func (d *PhotoDAO) List(ctx context.Context, filter PhotoFilter) ([]PhotoWithLikes, error) {
	var rows []PhotoWithLikes

	query := d.withLikes(ctx)
	if filter.KeywordID != 0 {
		query = query.Where("photos.keyword_id = ?", filter.KeywordID)
	}
	if filter.UserID != 0 {
		query = query.Where("photos.user_id = ?", filter.UserID)
	}

	result := query.
		Order("photos.uploaded_at DESC").
		Order("photos.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// Search matches q against the caption and the prompt keyword of each photo.
func (d *PhotoDAO) Search(ctx context.Context, q, sort string, limit, offset int) ([]PhotoWithLikes, error) {
	var rows []PhotoWithLikes

	pattern := likePattern(q)
	keywords := d.db.Model(&Keyword{}).Select("id").Where("LOWER(keyword) LIKE ?", pattern)

	query := d.withLikes(ctx).
		Where("LOWER(photos.ai_description) LIKE ? OR photos.keyword_id IN (?)", pattern, keywords)

	if sort == SortLikes {
		query = query.Order("like_count DESC")
	}

	result := query.
		Order("photos.uploaded_at DESC").
		Order("photos.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return rows, nil
}

// UpdateDescription stores a caption. It runs outside of the upload transaction.
func (d *PhotoDAO) UpdateDescription(ctx context.Context, id uint, description string) error {
	result := d.db.WithContext(ctx).Model(&Photo{}).Where("id = ?", id).Update("ai_description", description)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPhotoNotFound
	}

	return nil
}

func (d *PhotoDAO) InsertLike(ctx context.Context, like Like) (Like, error) {
	result := d.db.WithContext(ctx).Omit("User", "Photo").Create(&like)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Like{}, ErrAlreadyLiked
		}

		return Like{}, result.Error
	}

	return like, nil
}

func (d *PhotoDAO) DeleteLike(ctx context.Context, userID, photoID uint) error {
	result := d.db.WithContext(ctx).Where("user_id = ? AND photo_id = ?", userID, photoID).Delete(&Like{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLikeNotFound
	}

	return nil
}

func (d *PhotoDAO) withLikes(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx).Table("photos").Select("photos.*, " + likeCountColumn)
}

func likePattern(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}
