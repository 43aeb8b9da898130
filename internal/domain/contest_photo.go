package domain

import "time"

type ContestPhoto struct {
	ID           uint      `json:"id"`
	ContestID    uint      `json:"contest_id"`
	UserID       uint      `json:"user_id"`
	ImagePath    string    `json:"image_path"`
	Location     *string   `json:"location"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	Description  *string   `json:"description"`
	SubmittedAt  time.Time `json:"submitted_at"`
	UserNickname string    `json:"user_nickname"`
}

// Geo is the optional place information attached to an uploaded image.
type Geo struct {
	Location  *string
	Latitude  *float64
	Longitude *float64
}
