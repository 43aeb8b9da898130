package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNicknameExists = errors.New("nickname already exists")
	ErrUserNotFound   = errors.New("user not found")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Nickname string `gorm:"size:50;uniqueIndex;not null"`
	Points   int    `gorm:"not null;default:10000"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserStats struct {
	PhotoCount           int64
	ReceivedLikes        int64
	ContestCount         int64
	ParticipatedContests int64
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return User{}, ErrNicknameExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByIDs(ctx context.Context, ids []uint) ([]User, error) {
	var users []User
	if len(ids) == 0 {
		return users, nil
	}

	result := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) List(ctx context.Context, limit, offset int) ([]User, error) {
	var users []User

	result := d.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) Stats(ctx context.Context, id uint) (UserStats, error) {
	var stats UserStats
	db := d.db.WithContext(ctx)

	if err := db.Model(&Photo{}).Where("user_id = ?", id).Count(&stats.PhotoCount).Error; err != nil {
		return UserStats{}, err
	}

	err := db.Model(&Like{}).
		Joins("JOIN photos ON photos.id = likes.photo_id").
		Where("photos.user_id = ?", id).
		Count(&stats.ReceivedLikes).Error
	if err != nil {
		return UserStats{}, err
	}

	if err = db.Model(&Contest{}).Where("user_id = ?", id).Count(&stats.ContestCount).Error; err != nil {
		return UserStats{}, err
	}

	err = db.Model(&ContestPhoto{}).
		Where("user_id = ?", id).
		Distinct("contest_id").
		Count(&stats.ParticipatedContests).Error
	if err != nil {
		return UserStats{}, err
	}

	return stats, nil
}

// isUniqueViolation recognises duplicate-key failures from both the postgres and the sqlite driver.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
