package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/media"
)

func TestContestService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	author := env.createUser(t, "author")
	assert.Equal(t, domain.InitialPoints, owner.Points)

	contest := env.createContest(t, owner.ID, 500)
	assert.Equal(t, domain.ContestActive, contest.Status)
	assert.Nil(t, contest.SelectedPhotoID)

	location := "서울 종로구"
	submitted, err := env.contests.SubmitPhoto(ctx, contest.ID, author.ID, pngImage, domain.Geo{Location: &location}, nil)
	require.NoError(t, err)
	assert.Equal(t, "author", submitted.UserNickname)
	assert.Contains(t, submitted.ImagePath, media.ContestDir(contest.ID)+"/photo_")
	assert.Equal(t, []string{submitted.ImagePath}, env.files(t))

	found, err := env.contests.GetContest(ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), found.PhotoCount)

	selection, err := env.contests.SelectWinner(ctx, contest.ID, submitted.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContestCompleted, selection.Contest.Status)
	require.NotNil(t, selection.Contest.SelectedPhotoID)
	assert.Equal(t, submitted.ID, *selection.Contest.SelectedPhotoID)
	assert.Equal(t, author.ID, selection.WinnerID)
	assert.Equal(t, 9500, selection.OwnerPoints)
	assert.Equal(t, 10500, selection.WinnerPoints)

	assert.Equal(t, 9500, env.points(t, owner.ID))
	assert.Equal(t, 10500, env.points(t, author.ID))

	_, err = env.contests.SubmitPhoto(ctx, contest.ID, author.ID, pngImage, domain.Geo{}, nil)
	assert.ErrorIs(t, err, ErrContestNotActive)

	require.NoError(t, env.contests.DeleteContest(ctx, contest.ID, owner.ID))
	assert.Empty(t, env.files(t))
	assert.NoDirExists(t, env.root+"/"+media.ContestDir(contest.ID))

	_, err = env.contests.GetContest(ctx, contest.ID)
	assert.ErrorIs(t, err, ErrContestNotFound)

	err = env.contests.DeleteContest(ctx, contest.ID, owner.ID)
	assert.ErrorIs(t, err, ErrContestNotFound)

	assert.Equal(t, 9500, env.points(t, owner.ID))
	assert.Equal(t, 10500, env.points(t, author.ID))
}

func TestContestService_CreateContest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")

	_, err := env.contests.CreateContest(ctx, domain.Contest{OwnerID: owner.ID, Title: "t", Description: "d", Points: -1})
	assert.ErrorIs(t, err, ErrNegativeStake)

	_, err = env.contests.CreateContest(ctx, domain.Contest{OwnerID: 999, Title: "t", Description: "d", Points: 1})
	assert.ErrorIs(t, err, ErrUserNotFound)

	// The stake is not reserved at creation, so it may exceed the balance.
	contest, err := env.contests.CreateContest(ctx, domain.Contest{OwnerID: owner.ID, Title: "t", Description: "d", Points: 50000})
	require.NoError(t, err)
	assert.Equal(t, 50000, contest.Points)
	assert.Equal(t, domain.InitialPoints, env.points(t, owner.ID))
}

func TestContestService_SubmitPhoto_ClosedContestLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	author := env.createUser(t, "author")
	contest := env.createContest(t, owner.ID, 100)

	_, err := env.contests.CancelContest(ctx, contest.ID, owner.ID)
	require.NoError(t, err)

	_, err = env.contests.SubmitPhoto(ctx, contest.ID, author.ID, pngImage, domain.Geo{}, nil)
	assert.ErrorIs(t, err, ErrContestNotActive)

	photos, err := env.contests.ListContestPhotos(ctx, contest.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
	assert.Empty(t, env.files(t))
}

func TestContestService_SubmitPhoto_ContestClosesBeforeInsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	author := env.createUser(t, "author")
	contest := env.createContest(t, owner.ID, 100)

	hooked := &hookedContestRepo{
		ContestRepository: env.repo,
		beforeCreatePhoto: func() {
			_, err := env.repo.Cancel(ctx, contest.ID, owner.ID)
			require.NoError(t, err)
		},
	}
	svc := NewContestService(hooked, env.userRepo, env.store, media.NewNamer())

	_, err := svc.SubmitPhoto(ctx, contest.ID, author.ID, pngImage, domain.Geo{}, nil)
	assert.ErrorIs(t, err, ErrContestNotActive)
	assert.NotErrorIs(t, err, ErrStorageFailure)

	assert.Empty(t, env.files(t))
	require.Len(t, env.store.deleted, 1)

	photos, err := env.contests.ListContestPhotos(ctx, contest.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestContestService_SubmitPhoto_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	contest := env.createContest(t, owner.ID, 0)

	_, err := env.contests.SubmitPhoto(ctx, 999, owner.ID, pngImage, domain.Geo{}, nil)
	assert.ErrorIs(t, err, ErrContestNotFound)

	_, err = env.contests.SubmitPhoto(ctx, contest.ID, 999, pngImage, domain.Geo{}, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = env.contests.SubmitPhoto(ctx, contest.ID, owner.ID, domain.Image{Filename: "a.txt", Data: []byte("plain text")}, domain.Geo{}, nil)
	assert.ErrorIs(t, err, ErrInvalidImage)

	env.store.saveErr = errors.New("disk full")
	_, err = env.contests.SubmitPhoto(ctx, contest.ID, owner.ID, pngImage, domain.Geo{}, nil)
	assert.ErrorIs(t, err, ErrStorageFailure)

	photos, err := env.contests.ListContestPhotos(ctx, contest.ID)
	require.NoError(t, err)
	assert.Empty(t, photos)
	assert.Empty(t, env.files(t))
}

func TestContestService_SubmitPhoto_SameUserTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	contest := env.createContest(t, owner.ID, 0)

	first, err := env.contests.SubmitPhoto(ctx, contest.ID, owner.ID, pngImage, domain.Geo{}, nil)
	require.NoError(t, err)
	second, err := env.contests.SubmitPhoto(ctx, contest.ID, owner.ID, pngImage, domain.Geo{}, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.ImagePath, second.ImagePath)
	assert.Len(t, env.files(t), 2)

	applied, err := env.contests.ListAppliedContests(ctx, owner.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, int64(2), applied[0].PhotoCount)
}

func TestContestService_SelectWinner_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	author := env.createUser(t, "author")
	contest := env.createContest(t, owner.ID, 20000)
	photo, err := env.contests.SubmitPhoto(ctx, contest.ID, author.ID, pngImage, domain.Geo{}, nil)
	require.NoError(t, err)

	_, err = env.contests.SelectWinner(ctx, contest.ID, photo.ID, author.ID)
	assert.ErrorIs(t, err, ErrNotContestOwner)

	_, err = env.contests.SelectWinner(ctx, contest.ID, photo.ID+100, owner.ID)
	assert.ErrorIs(t, err, ErrContestPhotoNotFound)

	_, err = env.contests.SelectWinner(ctx, contest.ID, photo.ID, owner.ID)
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	found, err := env.contests.GetContest(ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContestActive, found.Status)
	assert.Equal(t, domain.InitialPoints, env.points(t, owner.ID))
	assert.Equal(t, domain.InitialPoints, env.points(t, author.ID))
}

func TestContestService_SelectWinner_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	authors := []domain.User{env.createUser(t, "a1"), env.createUser(t, "a2"), env.createUser(t, "a3")}
	contest := env.createContest(t, owner.ID, 2500)

	var photos []domain.ContestPhoto
	for _, a := range authors {
		p, err := env.contests.SubmitPhoto(ctx, contest.ID, a.ID, pngImage, domain.Geo{}, nil)
		require.NoError(t, err)
		photos = append(photos, p)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins []domain.Selection
	)
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func(photo domain.ContestPhoto) {
			defer wg.Done()

			selection, err := env.contests.SelectWinner(ctx, contest.ID, photo.ID, owner.ID)
			if err != nil {
				assert.ErrorIs(t, err, ErrContestNotActive)
				return
			}

			mu.Lock()
			wins = append(wins, selection)
			mu.Unlock()
		}(photos[i%len(photos)])
	}
	wg.Wait()

	require.Len(t, wins, 1)

	total := env.points(t, owner.ID)
	for _, a := range authors {
		total += env.points(t, a.ID)
	}
	assert.Equal(t, 4*domain.InitialPoints, total)
	assert.Equal(t, domain.InitialPoints-2500, env.points(t, owner.ID))
	assert.Equal(t, domain.InitialPoints+2500, env.points(t, wins[0].WinnerID))
}

func TestContestService_DeleteContest_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	author := env.createUser(t, "author")
	contest := env.createContest(t, owner.ID, 10)
	photo, err := env.contests.SubmitPhoto(ctx, contest.ID, author.ID, pngImage, domain.Geo{}, nil)
	require.NoError(t, err)

	err = env.contests.DeleteContest(ctx, contest.ID, owner.ID)
	assert.ErrorIs(t, err, ErrContestNotCompleted)
	assert.Len(t, env.files(t), 1)

	_, err = env.contests.SelectWinner(ctx, contest.ID, photo.ID, owner.ID)
	require.NoError(t, err)

	err = env.contests.DeleteContest(ctx, contest.ID, author.ID)
	assert.ErrorIs(t, err, ErrNotContestOwner)

	env.store.deleteErr = errors.New("permission denied")
	err = env.contests.DeleteContest(ctx, contest.ID, owner.ID)
	assert.ErrorIs(t, err, ErrStorageFailure)

	found, err := env.contests.GetContest(ctx, contest.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContestCompleted, found.Status)
	assert.Equal(t, int64(1), found.PhotoCount)
	assert.Len(t, env.files(t), 1)

	env.store.deleteErr = nil
	require.NoError(t, env.contests.DeleteContest(ctx, contest.ID, owner.ID))
	assert.Empty(t, env.files(t))
	assert.Contains(t, env.store.deletedDir, media.ContestDir(contest.ID))
}

func TestContestService_CancelAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "owner")
	other := env.createUser(t, "other")
	contest := env.createContest(t, owner.ID, 300)

	title := "가을 호수"
	_, err := env.contests.UpdateContest(ctx, contest.ID, other.ID, domain.ContestPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNotContestOwner)

	updated, err := env.contests.UpdateContest(ctx, contest.ID, owner.ID, domain.ContestPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	cancelled, err := env.contests.CancelContest(ctx, contest.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContestCancelled, cancelled.Status)

	err = env.contests.DeleteContest(ctx, contest.ID, owner.ID)
	assert.ErrorIs(t, err, ErrContestNotCompleted)

	active, err := env.contests.ListContests(ctx, domain.ContestFilter{Status: domain.ContestActive})
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.Equal(t, domain.InitialPoints, env.points(t, owner.ID))
}
