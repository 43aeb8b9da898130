package domain

import "time"

// InitialPoints is the balance granted to every new user.
const InitialPoints = 10000

type User struct {
	ID        uint      `json:"id"`
	Nickname  string    `json:"nickname"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserStats struct {
	UserID               uint   `json:"user_id"`
	Nickname             string `json:"nickname"`
	Points               int    `json:"points"`
	PhotoCount           int64  `json:"photo_count"`
	ReceivedLikes        int64  `json:"received_likes"`
	ContestCount         int64  `json:"contest_count"`
	ParticipatedContests int64  `json:"participated_contests"`
}
