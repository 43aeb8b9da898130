package response

import "github.com/loca-app/loca-api/internal/domain"

type Message struct {
	Message string `json:"message"`
}

type SelectWinner struct {
	Message         string         `json:"message"`
	ContestID       uint           `json:"contest_id"`
	SelectedPhotoID uint           `json:"selected_photo_id"`
	WinnerID        uint           `json:"winner_id"`
	PointsAwarded   int            `json:"points_awarded"`
	OwnerPoints     int            `json:"owner_points"`
	WinnerPoints    int            `json:"winner_points"`
	Contest         domain.Contest `json:"contest"`
}

func NewSelectWinner(s domain.Selection) SelectWinner {
	var photoID uint
	if s.Contest.SelectedPhotoID != nil {
		photoID = *s.Contest.SelectedPhotoID
	}

	return SelectWinner{
		Message:         "Winner selected successfully",
		ContestID:       s.Contest.ID,
		SelectedPhotoID: photoID,
		WinnerID:        s.WinnerID,
		PointsAwarded:   s.Contest.Points,
		OwnerPoints:     s.OwnerPoints,
		WinnerPoints:    s.WinnerPoints,
		Contest:         s.Contest,
	}
}

type Health struct {
	Service  string `json:"service"`
	Version  string `json:"version"`
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type Search struct {
	Query  string         `json:"query"`
	SortBy string         `json:"sort_by,omitempty"`
	Count  int            `json:"count"`
	Photos []domain.Photo `json:"photos"`
}
