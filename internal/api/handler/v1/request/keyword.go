package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateKeywordRequest struct {
	Keyword  string  `json:"keyword"`
	Category *string `json:"category,omitempty"`
}

func (req *CreateKeywordRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Keyword, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Category, validation.NilOrNotEmpty, validation.Length(1, 50)),
	)
}

type KeywordSearchQuery struct {
	Q     string `form:"q"`
	Limit int    `form:"limit"`
}

func (q *KeywordSearchQuery) Validate() error {
	return validation.ValidateStruct(
		q,
		validation.Field(&q.Q, validation.Required, validation.Length(1, 100)),
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
	)
}
