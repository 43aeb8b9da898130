package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrKeywordNotFound = errors.New("keyword not found")
	ErrKeywordExists   = errors.New("keyword already exists")
)

type Keyword struct {
	ID uint `gorm:"primaryKey"`

	Keyword  string  `gorm:"size:100;uniqueIndex;not null"`
	Category *string `gorm:"size:50"`

	CreatedAt time.Time `gorm:"not null"`
}

type KeywordDAO struct {
	db *gorm.DB
}

func NewKeywordDAO(db *gorm.DB) *KeywordDAO {
	return &KeywordDAO{
		db: db,
	}
}

func (d *KeywordDAO) Insert(ctx context.Context, keyword Keyword) (Keyword, error) {
	result := d.db.WithContext(ctx).Create(&keyword)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Keyword{}, ErrKeywordExists
		}

		return Keyword{}, result.Error
	}

	return keyword, nil
}

func (d *KeywordDAO) FindByID(ctx context.Context, id uint) (Keyword, error) {
	var keyword Keyword

	result := d.db.WithContext(ctx).First(&keyword, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Keyword{}, ErrKeywordNotFound
		}

		return Keyword{}, result.Error
	}

	return keyword, nil
}

func (d *KeywordDAO) List(ctx context.Context, limit, offset int) ([]Keyword, error) {
	var keywords []Keyword

	result := d.db.WithContext(ctx).Order("id ASC").Limit(limit).Offset(offset).Find(&keywords)
	if result.Error != nil {
		return nil, result.Error
	}

	return keywords, nil
}

func (d *KeywordDAO) Random(ctx context.Context) (Keyword, error) {
	var keyword Keyword

	result := d.db.WithContext(ctx).Order("RANDOM()").Limit(1).Find(&keyword)
	if result.Error != nil {
		return Keyword{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Keyword{}, ErrKeywordNotFound
	}

	return keyword, nil
}

func (d *KeywordDAO) Search(ctx context.Context, q string, limit int) ([]Keyword, error) {
	var keywords []Keyword

	result := d.db.WithContext(ctx).
		Where("LOWER(keyword) LIKE ?", likePattern(q)).
		Order("id ASC").
		Limit(limit).
		Find(&keywords)
	if result.Error != nil {
		return nil, result.Error
	}

	return keywords, nil
}
