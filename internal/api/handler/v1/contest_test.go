package v1

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/loca-app/loca-api/internal/api/handler/v1/response"
	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/service"
)

type mockContestService struct {
	mock.Mock
}

func (m *mockContestService) CreateContest(ctx context.Context, contest domain.Contest) (domain.Contest, error) {
	args := m.Called(ctx, contest)
	return args.Get(0).(domain.Contest), args.Error(1)
}

func (m *mockContestService) GetContest(ctx context.Context, id uint) (domain.Contest, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Contest), args.Error(1)
}

func (m *mockContestService) ListContests(ctx context.Context, filter domain.ContestFilter) ([]domain.Contest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Contest), args.Error(1)
}

func (m *mockContestService) ListAppliedContests(ctx context.Context, userID uint, limit, offset int) ([]domain.Contest, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Contest), args.Error(1)
}

func (m *mockContestService) UpdateContest(ctx context.Context, contestID, callerID uint, patch domain.ContestPatch) (domain.Contest, error) {
	args := m.Called(ctx, contestID, callerID, patch)
	return args.Get(0).(domain.Contest), args.Error(1)
}

func (m *mockContestService) CancelContest(ctx context.Context, contestID, callerID uint) (domain.Contest, error) {
	args := m.Called(ctx, contestID, callerID)
	return args.Get(0).(domain.Contest), args.Error(1)
}

func (m *mockContestService) SubmitPhoto(ctx context.Context, contestID, userID uint, image domain.Image, geo domain.Geo, description *string) (domain.ContestPhoto, error) {
	args := m.Called(ctx, contestID, userID, image, geo, description)
	return args.Get(0).(domain.ContestPhoto), args.Error(1)
}

func (m *mockContestService) ListContestPhotos(ctx context.Context, contestID uint) ([]domain.ContestPhoto, error) {
	args := m.Called(ctx, contestID)
	return args.Get(0).([]domain.ContestPhoto), args.Error(1)
}

func (m *mockContestService) SelectWinner(ctx context.Context, contestID, photoID, callerID uint) (domain.Selection, error) {
	args := m.Called(ctx, contestID, photoID, callerID)
	return args.Get(0).(domain.Selection), args.Error(1)
}

func (m *mockContestService) DeleteContest(ctx context.Context, contestID, callerID uint) error {
	return m.Called(ctx, contestID, callerID).Error(0)
}

func newContestRouter(svc ContestService, events EventPublisher) *gin.Engine {
	h := NewContestHandler(testAPIConfig(), svc, events)

	r := gin.New()
	r.POST("/contests", h.HandleCreateContest)
	r.GET("/contests", h.HandleListContests)
	r.GET("/contests/applied", h.HandleListAppliedContests)
	r.GET("/contests/:contestID", h.HandleGetContest)
	r.PATCH("/contests/:contestID", h.HandleUpdateContest)
	r.DELETE("/contests/:contestID", h.HandleDeleteContest)
	r.POST("/contests/:contestID/cancel", h.HandleCancelContest)
	r.POST("/contests/:contestID/photos", h.HandleSubmitPhoto)
	r.GET("/contests/:contestID/photos", h.HandleListContestPhotos)
	r.PUT("/contests/:contestID/select", h.HandleSelectWinner)

	return r
}

func TestContestHandler_CreateContest(t *testing.T) {
	svc := new(mockContestService)
	router := newContestRouter(svc, &recordedEvents{})

	svc.On("CreateContest", mock.Anything, domain.Contest{
		OwnerID:     3,
		Title:       "벚꽃길",
		Description: "봄",
		Points:      500,
	}).Return(domain.Contest{ID: 1, OwnerID: 3, Title: "벚꽃길", Points: 500, Status: domain.ContestActive}, nil)

	rec := doJSON(t, router, http.MethodPost, "/contests?user_id=3", map[string]any{
		"title":       "벚꽃길",
		"description": "봄",
		"points":      500,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decode[domain.Contest](t, rec)
	assert.Equal(t, uint(1), created.ID)
	assert.Equal(t, domain.ContestActive, created.Status)

	rec = doJSON(t, router, http.MethodPost, "/contests?user_id=3", map[string]any{
		"title":       "벚꽃길",
		"description": "봄",
		"points":      -1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/contests", map[string]any{"title": "x", "description": "y"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertNumberOfCalls(t, "CreateContest", 1)
}

func TestContestHandler_SelectWinner(t *testing.T) {
	svc := new(mockContestService)
	events := &recordedEvents{}
	router := newContestRouter(svc, events)

	photoID := uint(11)
	svc.On("SelectWinner", mock.Anything, uint(5), uint(11), uint(3)).Return(domain.Selection{
		Contest: domain.Contest{
			ID:              5,
			OwnerID:         3,
			Points:          500,
			Status:          domain.ContestCompleted,
			SelectedPhotoID: &photoID,
		},
		WinnerID:     4,
		OwnerPoints:  9500,
		WinnerPoints: 10500,
	}, nil)

	rec := do(t, router, http.MethodPut, "/contests/5/select?photo_id=11&user_id=3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[response.SelectWinner](t, rec)
	assert.Equal(t, uint(5), body.ContestID)
	assert.Equal(t, uint(11), body.SelectedPhotoID)
	assert.Equal(t, uint(4), body.WinnerID)
	assert.Equal(t, 500, body.PointsAwarded)
	assert.Equal(t, 9500, body.OwnerPoints)
	assert.Equal(t, 10500, body.WinnerPoints)
	assert.Equal(t, []EventType{EventWinnerSelected}, events.types())

	rec = do(t, router, http.MethodPut, "/contests/5/select?user_id=3", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not owner", service.ErrNotContestOwner, http.StatusForbidden},
		{"not active", service.ErrContestNotActive, http.StatusBadRequest},
		{"insufficient points", service.ErrInsufficientPoints, http.StatusBadRequest},
		{"contest not found", service.ErrContestNotFound, http.StatusNotFound},
		{"photo not found", service.ErrContestPhotoNotFound, http.StatusNotFound},
		{"integrity", service.ErrDataIntegrity, http.StatusInternalServerError},
		{"storage", fmt.Errorf("%w: disk full", service.ErrStorageFailure), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockContestService)
			events := &recordedEvents{}
			router := newContestRouter(svc, events)

			svc.On("SelectWinner", mock.Anything, uint(5), uint(11), uint(3)).
				Return(domain.Selection{}, fmt.Errorf("s.repo.SelectWinner -> %w", tt.err))

			rec := do(t, router, http.MethodPut, "/contests/5/select?photo_id=11&user_id=3", nil, "")
			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, events.types())

			body := decode[response.Err](t, rec)
			assert.Equal(t, tt.status, body.StatusCode)
			if tt.status == http.StatusInternalServerError {
				assert.Nil(t, body.Details, "server errors must not leak their cause")
			}
		})
	}
}

func TestContestHandler_SubmitPhoto(t *testing.T) {
	svc := new(mockContestService)
	events := &recordedEvents{}
	router := newContestRouter(svc, events)

	svc.On("SubmitPhoto", mock.Anything, uint(5), uint(4),
		domain.Image{Filename: "beach.png", Data: pngBytes},
		mock.MatchedBy(func(geo domain.Geo) bool {
			return geo.Location != nil && *geo.Location == "해운대" && geo.Latitude != nil && geo.Longitude == nil
		}),
		mock.MatchedBy(func(d *string) bool { return d != nil && *d == "노을" }),
	).Return(domain.ContestPhoto{ID: 9, ContestID: 5, UserID: 4, ImagePath: "contests/5/photo_4_1_beach.png"}, nil)

	body, contentType := multipartBody(t, map[string]string{
		"user_id":     "4",
		"description": "노을",
		"location":    "해운대",
		"latitude":    "35.1587",
	}, "beach.png", pngBytes)

	rec := do(t, router, http.MethodPost, "/contests/5/photos", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	photo := decode[domain.ContestPhoto](t, rec)
	assert.Equal(t, uint(9), photo.ID)
	assert.Equal(t, []EventType{EventPhotoSubmitted}, events.types())
	svc.AssertExpectations(t)
}

func TestContestHandler_SubmitPhoto_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]string
		filename string
		data     []byte
		status   int
	}{
		{
			name:   "missing file",
			fields: map[string]string{"user_id": "4"},
			status: http.StatusBadRequest,
		},
		{
			name:     "missing user",
			fields:   map[string]string{},
			filename: "a.png",
			data:     pngBytes,
			status:   http.StatusBadRequest,
		},
		{
			name:     "latitude out of range",
			fields:   map[string]string{"user_id": "4", "latitude": "120"},
			filename: "a.png",
			data:     pngBytes,
			status:   http.StatusBadRequest,
		},
		{
			name:     "empty file",
			fields:   map[string]string{"user_id": "4"},
			filename: "a.png",
			data:     []byte{},
			status:   http.StatusBadRequest,
		},
		{
			name:     "too large",
			fields:   map[string]string{"user_id": "4"},
			filename: "a.png",
			data:     make([]byte, 2<<10),
			status:   http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockContestService)
			router := newContestRouter(svc, &recordedEvents{})

			body, contentType := multipartBody(t, tt.fields, tt.filename, tt.data)
			rec := do(t, router, http.MethodPost, "/contests/5/photos", body, contentType)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			svc.AssertNotCalled(t, "SubmitPhoto")
		})
	}
}

func TestContestHandler_InvalidID(t *testing.T) {
	svc := new(mockContestService)
	router := newContestRouter(svc, &recordedEvents{})

	for _, target := range []string{"/contests/abc", "/contests/0", "/contests/-1"} {
		rec := do(t, router, http.MethodGet, target, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestContestHandler_CancelAndDelete(t *testing.T) {
	svc := new(mockContestService)
	events := &recordedEvents{}
	router := newContestRouter(svc, events)

	svc.On("CancelContest", mock.Anything, uint(5), uint(3)).
		Return(domain.Contest{ID: 5, Status: domain.ContestCancelled}, nil)
	svc.On("DeleteContest", mock.Anything, uint(5), uint(3)).Return(nil)
	svc.On("DeleteContest", mock.Anything, uint(6), uint(3)).Return(service.ErrContestNotCompleted)

	rec := do(t, router, http.MethodPost, "/contests/5/cancel?user_id=3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ContestCancelled, decode[domain.Contest](t, rec).Status)

	rec = do(t, router, http.MethodDelete, "/contests/5?user_id=3", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodDelete, "/contests/6?user_id=3", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, []EventType{EventContestCancelled, EventContestDeleted}, events.types())
}

func TestContestHandler_UpdateContest(t *testing.T) {
	svc := new(mockContestService)
	router := newContestRouter(svc, &recordedEvents{})

	title := "새 제목"
	svc.On("UpdateContest", mock.Anything, uint(5), uint(3), domain.ContestPatch{Title: &title}).
		Return(domain.Contest{ID: 5, Title: title}, nil)

	rec := doJSON(t, router, http.MethodPatch, "/contests/5?user_id=3", map[string]any{"title": title})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, title, decode[domain.Contest](t, rec).Title)

	rec = doJSON(t, router, http.MethodPatch, "/contests/5?user_id=3", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
