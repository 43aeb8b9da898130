package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/loca-app/loca-api/internal/domain"
)

var errEmptyPatch = errors.New("at least one of title, description or deadline is required")

type CreateContestRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      int        `json:"points"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (req *CreateContestRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Required, validation.Length(1, 2000)),
		validation.Field(&req.Points, validation.Min(0)),
	)
}

func (req *CreateContestRequest) ToDomain(ownerID uint) domain.Contest {
	return domain.Contest{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Points:      req.Points,
		Deadline:    req.Deadline,
	}
}

// UpdateContestRequest has no points field: a stake is fixed at creation.
type UpdateContestRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

func (req *UpdateContestRequest) Validate() error {
	if req.Title == nil && req.Description == nil && req.Deadline == nil {
		return errEmptyPatch
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.NilOrNotEmpty, validation.Length(1, 2000)),
	)
}

func (req *UpdateContestRequest) ToDomain() domain.ContestPatch {
	return domain.ContestPatch{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	}
}

type ListContestsQuery struct {
	Status string `form:"status"`
	UserID uint   `form:"user_id"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

func (q *ListContestsQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.Status, validation.In(
			string(domain.ContestActive),
			string(domain.ContestCompleted),
			string(domain.ContestCancelled),
		)),
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

type AppliedContestsQuery struct {
	UserID uint `form:"user_id"`
	Limit  int  `form:"limit"`
	Offset int  `form:"offset"`
}

func (q *AppliedContestsQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.UserID, validation.Required),
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

type SelectWinnerQuery struct {
	PhotoID uint `form:"photo_id"`
	UserID  uint `form:"user_id"`
}

func (q *SelectWinnerQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.PhotoID, validation.Required),
		validation.Field(&q.UserID, validation.Required),
	)
}

type CallerQuery struct {
	UserID uint `form:"user_id"`
}

func (q *CallerQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.UserID, validation.Required),
	)
}
