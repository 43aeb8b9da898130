package request

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRequest_Validate(t *testing.T) {
	tests := []struct {
		nickname string
		valid    bool
	}{
		{"sunset", true},
		{"골목탐험가", true},
		{"user_01.kr", true},
		{"a1", true},
		{"a", false},
		{"", false},
		{"12345", false},
		{"has space", false},
		{"semi;colon", false},
		{strings.Repeat("a", 51), false},
	}

	for _, tt := range tests {
		req := CreateUserRequest{Nickname: tt.nickname}
		err := req.Validate()
		if tt.valid {
			assert.NoError(t, err, tt.nickname)
		} else {
			assert.Error(t, err, tt.nickname)
		}
	}
}

func TestCreateContestRequest_Validate(t *testing.T) {
	valid := CreateContestRequest{Title: "벚꽃길", Description: "봄 풍경", Points: 0}
	require.NoError(t, valid.Validate())

	negative := valid
	negative.Points = -1
	assert.Error(t, negative.Validate())

	untitled := valid
	untitled.Title = ""
	assert.Error(t, untitled.Validate())

	contest := valid.ToDomain(7)
	assert.Equal(t, uint(7), contest.OwnerID)
	assert.Equal(t, "벚꽃길", contest.Title)
}

func TestUpdateContestRequest_Validate(t *testing.T) {
	var empty UpdateContestRequest
	assert.ErrorIs(t, empty.Validate(), errEmptyPatch)

	blank := ""
	assert.Error(t, (&UpdateContestRequest{Title: &blank}).Validate())

	title := "새 제목"
	req := UpdateContestRequest{Title: &title}
	require.NoError(t, req.Validate())
	assert.Equal(t, &title, req.ToDomain().Title)
}

func TestListContestsQuery_Validate(t *testing.T) {
	assert.NoError(t, (&ListContestsQuery{}).Validate())
	assert.NoError(t, (&ListContestsQuery{Status: "completed"}).Validate())
	assert.Error(t, (&ListContestsQuery{Status: "COMPLETED"}).Validate())
	assert.Error(t, (&ListContestsQuery{Limit: 101}).Validate())
	assert.Error(t, (&ListContestsQuery{Offset: -1}).Validate())

	assert.Error(t, (&AppliedContestsQuery{}).Validate())
	assert.Error(t, (&SelectWinnerQuery{PhotoID: 1}).Validate())
	assert.NoError(t, (&SelectWinnerQuery{PhotoID: 1, UserID: 2}).Validate())
}

func TestGeoForm(t *testing.T) {
	tests := []struct {
		name  string
		form  GeoForm
		valid bool
	}{
		{name: "empty", form: GeoForm{}, valid: true},
		{name: "seoul", form: GeoForm{Location: "서울숲", Latitude: "37.5444", Longitude: "127.0374"}, valid: true},
		{name: "latitude out of range", form: GeoForm{Latitude: "91"}, valid: false},
		{name: "longitude out of range", form: GeoForm{Longitude: "-180.5"}, valid: false},
		{name: "not a number", form: GeoForm{Latitude: "north"}, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	geo := (&GeoForm{Location: "  서울숲 ", Latitude: "37.5", Longitude: ""}).ToDomain()
	require.NotNil(t, geo.Location)
	assert.Equal(t, "서울숲", *geo.Location)
	require.NotNil(t, geo.Latitude)
	assert.InDelta(t, 37.5, *geo.Latitude, 1e-9)
	assert.Nil(t, geo.Longitude)
}

func TestUploadForms_Validate(t *testing.T) {
	assert.Error(t, (&SubmitContestPhotoForm{}).Validate())
	assert.NoError(t, (&SubmitContestPhotoForm{UserID: 1}).Validate())
	assert.Error(t, (&SubmitContestPhotoForm{UserID: 1, GeoForm: GeoForm{Latitude: "100"}}).Validate())

	assert.Error(t, (&UploadPhotoForm{UserID: 1}).Validate())
	assert.NoError(t, (&UploadPhotoForm{UserID: 1, KeywordID: 2}).Validate())
}

func TestSearchQueries_Validate(t *testing.T) {
	assert.Error(t, (&SearchQuery{}).Validate())
	assert.NoError(t, (&SearchQuery{Q: "카페"}).Validate())
	assert.NoError(t, (&SearchQuery{Q: "카페", SortBy: "likes"}).Validate())
	assert.Error(t, (&SearchQuery{Q: "카페", SortBy: "oldest"}).Validate())

	assert.Error(t, (&KeywordSearchQuery{}).Validate())
	assert.NoError(t, (&KeywordSearchQuery{Q: "골목", Limit: 10}).Validate())

	assert.Error(t, (&CreateKeywordRequest{}).Validate())
	empty := ""
	assert.Error(t, (&CreateKeywordRequest{Keyword: "골목", Category: &empty}).Validate())
}
