package dao

import (
	"fmt"

	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

var (
	seedUsers = []User{
		{Nickname: "홍기헌", Points: 10000},
		{Nickname: "조현비", Points: 10000},
		{Nickname: "김솔", Points: 10000},
		{Nickname: "김현서", Points: 10000},
		{Nickname: "김철수", Points: 10000},
	}

	seedKeywords = []Keyword{
		{Keyword: "한적한 놀이터", Category: strPtr("놀이터")},
		{Keyword: "분위기 있는 카페", Category: strPtr("카페")},
		{Keyword: "고즈넉한 골목", Category: strPtr("골목")},
		{Keyword: "아름다운 벚꽃길", Category: strPtr("길")},
		{Keyword: "조용한 도서관", Category: strPtr("문화시설")},
		{Keyword: "맛있는 분식집", Category: strPtr("음식점")},
		{Keyword: "예쁜 벽화거리", Category: strPtr("거리")},
		{Keyword: "시원한 공원", Category: strPtr("공원")},
		{Keyword: "독특한 벽돌집", Category: strPtr("건물")},
		{Keyword: "평화로운 호수", Category: strPtr("자연")},
	}
)

// Seed inserts the demo users and keywords into an empty database. It does
// nothing once any user exists.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		users := append([]User(nil), seedUsers...)
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("seed users -> %w", err)
		}

		keywords := append([]Keyword(nil), seedKeywords...)
		if err := tx.Create(&keywords).Error; err != nil {
			return fmt.Errorf("seed keywords -> %w", err)
		}

		return nil
	})
}
