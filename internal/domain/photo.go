package domain

import "time"

type Photo struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"user_id"`
	KeywordID     uint      `json:"keyword_id"`
	ImagePath     string    `json:"image_path"`
	Location      *string   `json:"location"`
	Latitude      *float64  `json:"latitude"`
	Longitude     *float64  `json:"longitude"`
	AIDescription *string   `json:"ai_description"`
	UploadedAt    time.Time `json:"uploaded_at"`
	LikeCount     int64     `json:"like_count"`
}

type PhotoFilter struct {
	KeywordID uint
	UserID    uint
	Limit     int
	Offset    int
}

type PhotoSort string

const (
	SortLatest PhotoSort = "latest"
	SortLikes  PhotoSort = "likes"
)

type Like struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	PhotoID   uint      `json:"photo_id"`
	CreatedAt time.Time `json:"created_at"`
}
