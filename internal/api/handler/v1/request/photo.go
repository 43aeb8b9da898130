package request

import (
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/loca-app/loca-api/internal/domain"
)

// GeoForm holds the optional place fields of an upload as sent in the
// multipart form. Coordinates arrive as text and are checked before parsing.
type GeoForm struct {
	Location  string `form:"location"`
	Latitude  string `form:"latitude"`
	Longitude string `form:"longitude"`
}

func (f *GeoForm) Validate() error {
	return validation.ValidateStruct(
		f,
		validation.Field(&f.Location, validation.Length(0, 200)),
		validation.Field(&f.Latitude, is.Float, validation.By(inRange(-90, 90))),
		validation.Field(&f.Longitude, is.Float, validation.By(inRange(-180, 180))),
	)
}

func (f *GeoForm) ToDomain() domain.Geo {
	return domain.Geo{
		Location:  optionalString(f.Location),
		Latitude:  optionalFloat(f.Latitude),
		Longitude: optionalFloat(f.Longitude),
	}
}

type SubmitContestPhotoForm struct {
	UserID      uint   `form:"user_id"`
	Description string `form:"description"`
	GeoForm
}

func (f *SubmitContestPhotoForm) Validate() error {
	err := validation.ValidateStruct(
		f,
		validation.Field(&f.UserID, validation.Required),
		validation.Field(&f.Description, validation.Length(0, 2000)),
	)
	if err != nil {
		return err
	}

	return f.GeoForm.Validate()
}

type UploadPhotoForm struct {
	UserID    uint `form:"user_id"`
	KeywordID uint `form:"keyword_id"`
	GeoForm
}

func (f *UploadPhotoForm) Validate() error {
	err := validation.ValidateStruct(
		f,
		validation.Field(&f.UserID, validation.Required),
		validation.Field(&f.KeywordID, validation.Required),
	)
	if err != nil {
		return err
	}

	return f.GeoForm.Validate()
}

type ListPhotosQuery struct {
	KeywordID uint `form:"keyword_id"`
	UserID    uint `form:"user_id"`
	Limit     int  `form:"limit"`
	Offset    int  `form:"offset"`
}

func (q *ListPhotosQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

type SearchQuery struct {
	Q      string `form:"q"`
	SortBy string `form:"sort_by"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

func (q *SearchQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.Q, validation.Required, validation.Length(1, 100)),
		validation.Field(&q.SortBy, validation.In(string(domain.SortLatest), string(domain.SortLikes))),
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

type PageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func (q *PageQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
		validation.Field(&q.Offset, validation.Min(0)),
	)
}

func inRange(lo, hi float64) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}

		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %v and %v", lo, hi)
		}

		return nil
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	return &s
}

func optionalFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}

	return &v
}
