package domain

import "time"

type ContestStatus string

const (
	ContestActive    ContestStatus = "active"
	ContestCompleted ContestStatus = "completed"
	ContestCancelled ContestStatus = "cancelled"
)

func (s ContestStatus) IsValid() bool {
	switch s {
	case ContestActive, ContestCompleted, ContestCancelled:
		return true
	}
	return false
}

type Contest struct {
	ID              uint          `json:"id"`
	OwnerID         uint          `json:"user_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Points          int           `json:"points"`
	Deadline        *time.Time    `json:"deadline,omitempty"`
	Status          ContestStatus `json:"status"`
	SelectedPhotoID *uint         `json:"selected_photo_id"`
	CreatedAt       time.Time     `json:"created_at"`
	CompletedAt     *time.Time    `json:"completed_at"`
	PhotoCount      int64         `json:"photo_count"`
}

// IsOwnedBy reports whether userID created the contest.
func (c Contest) IsOwnedBy(userID uint) bool {
	return c.OwnerID == userID
}

// AcceptsSubmissions is true only while the contest is running.
func (c Contest) AcceptsSubmissions() bool {
	return c.Status == ContestActive
}

type ContestFilter struct {
	Status  ContestStatus
	OwnerID uint
	Limit   int
	Offset  int
}

// ContestPatch carries the editable fields of an active contest. Nil fields are left untouched.
type ContestPatch struct {
	Title       *string
	Description *string
	Deadline    *time.Time
}

// Selection is the result of a winner selection, with balances after the transfer.
type Selection struct {
	Contest      Contest `json:"contest"`
	WinnerID     uint    `json:"winner_id"`
	OwnerPoints  int     `json:"owner_points"`
	WinnerPoints int     `json:"winner_points"`
}
