package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loca-app/loca-api/internal/caption"
	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/media"
	"github.com/loca-app/loca-api/internal/repository"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

const fallback = "이미지 분석 중 오류가 발생했습니다."

type describerFunc func(ctx context.Context, image []byte) (string, error)

func (f describerFunc) Describe(ctx context.Context, image []byte) (string, error) {
	return f(ctx, image)
}

func newPhotoService(env *testEnv, describer caption.Describer, timeout time.Duration) *PhotoService {
	return NewPhotoService(
		repository.NewPhotoRepository(dao.NewPhotoDAO(env.db)),
		env.userRepo,
		repository.NewKeywordRepository(dao.NewKeywordDAO(env.db)),
		env.store,
		media.NewNamer(),
		describer,
		CaptionOptions{Timeout: timeout, Fallback: fallback},
	)
}

func (e *testEnv) createKeyword(t *testing.T, text string) domain.Keyword {
	t.Helper()

	keyword, err := e.keywords.CreateKeyword(context.Background(), domain.Keyword{Keyword: text})
	require.NoError(t, err)

	return keyword
}

func TestPhotoService_UploadPhoto_StoresCaption(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "user")
	keyword := env.createKeyword(t, "한적한 놀이터")

	svc := newPhotoService(env, describerFunc(func(context.Context, []byte) (string, error) {
		return "회전무대가 있는 한적한 놀이터", nil
	}), time.Second)

	photo, err := svc.UploadPhoto(ctx, user.ID, keyword.ID, pngImage, domain.Geo{})
	require.NoError(t, err)
	require.NotNil(t, photo.AIDescription)
	assert.Equal(t, "회전무대가 있는 한적한 놀이터", *photo.AIDescription)
	assert.Contains(t, photo.ImagePath, media.PhotoDir+"/")
	assert.Equal(t, []string{photo.ImagePath}, env.files(t))

	stored, err := svc.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AIDescription)
	assert.Equal(t, *photo.AIDescription, *stored.AIDescription)

	found, err := svc.SearchPhotos(ctx, "회전무대", domain.SortLatest, 0, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, photo.ID, found[0].ID)
}

func TestPhotoService_UploadPhoto_CaptionFailureUsesFallback(t *testing.T) {
	tests := []struct {
		name      string
		describer caption.Describer
	}{
		{
			name:      "not configured",
			describer: caption.Unavailable{},
		},
		{
			name: "backend error",
			describer: describerFunc(func(context.Context, []byte) (string, error) {
				return "", errors.New("quota exceeded")
			}),
		},
		{
			name: "backend too slow",
			describer: describerFunc(func(ctx context.Context, _ []byte) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()

			user := env.createUser(t, "user")
			keyword := env.createKeyword(t, "조용한 도서관")
			svc := newPhotoService(env, tt.describer, 20*time.Millisecond)

			photo, err := svc.UploadPhoto(ctx, user.ID, keyword.ID, pngImage, domain.Geo{})
			require.NoError(t, err)
			require.NotNil(t, photo.AIDescription)
			assert.Equal(t, fallback, *photo.AIDescription)

			stored, err := svc.GetPhoto(ctx, photo.ID)
			require.NoError(t, err)
			require.NotNil(t, stored.AIDescription)
			assert.Equal(t, fallback, *stored.AIDescription)
		})
	}
}

func TestPhotoService_UploadPhoto_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "user")
	keyword := env.createKeyword(t, "맛있는 분식집")
	svc := newPhotoService(env, caption.Unavailable{}, time.Second)

	_, err := svc.UploadPhoto(ctx, 999, keyword.ID, pngImage, domain.Geo{})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.UploadPhoto(ctx, user.ID, 999, pngImage, domain.Geo{})
	assert.ErrorIs(t, err, ErrKeywordNotFound)

	_, err = svc.UploadPhoto(ctx, user.ID, keyword.ID, domain.Image{Filename: "x.pdf", Data: []byte("%PDF-1.4")}, domain.Geo{})
	assert.ErrorIs(t, err, ErrInvalidImage)

	env.store.saveErr = errors.New("bucket unavailable")
	_, err = svc.UploadPhoto(ctx, user.ID, keyword.ID, pngImage, domain.Geo{})
	assert.ErrorIs(t, err, ErrStorageFailure)

	photos, err := svc.ListPhotos(ctx, domain.PhotoFilter{})
	require.NoError(t, err)
	assert.Empty(t, photos)
	assert.Empty(t, env.files(t))
}

func TestPhotoService_Likes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "user")
	fan := env.createUser(t, "fan")
	keyword := env.createKeyword(t, "시원한 공원")
	svc := newPhotoService(env, caption.Unavailable{}, time.Second)

	photo, err := svc.UploadPhoto(ctx, user.ID, keyword.ID, pngImage, domain.Geo{})
	require.NoError(t, err)

	_, err = svc.LikePhoto(ctx, fan.ID, 999)
	assert.ErrorIs(t, err, ErrPhotoNotFound)

	_, err = svc.LikePhoto(ctx, 999, photo.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	like, err := svc.LikePhoto(ctx, fan.ID, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.ID, like.PhotoID)

	_, err = svc.LikePhoto(ctx, fan.ID, photo.ID)
	assert.ErrorIs(t, err, ErrAlreadyLiked)

	liked, err := svc.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), liked.LikeCount)

	stats, err := env.users.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PhotoCount)
	assert.Equal(t, int64(1), stats.ReceivedLikes)

	require.NoError(t, svc.UnlikePhoto(ctx, fan.ID, photo.ID))
	assert.ErrorIs(t, svc.UnlikePhoto(ctx, fan.ID, photo.ID), ErrLikeNotFound)
}
