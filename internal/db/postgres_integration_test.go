//go:build integration

package db

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/loca-app/loca-api/internal/config"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)
	pool.MaxWait = 2 * time.Minute

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=loca",
			"POSTGRES_PASSWORD=loca",
			"POSTGRES_DB=loca",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })

	url := fmt.Sprintf("postgres://loca:loca@%s/loca?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var gdb *gorm.DB
	err = pool.Retry(func() error {
		var openErr error
		gdb, openErr = OpenPostgresWithURL(url, &config.DatabaseConfig{MaxOpenConns: 20, SlowQuery: time.Second})
		return openErr
	})
	require.NoError(t, err)

	return gdb
}

func TestPostgres_ConcurrentSelectionMovesStakeOnce(t *testing.T) {
	gdb := startPostgres(t)
	ctx := context.Background()

	users := dao.NewUserDAO(gdb)
	contests := dao.NewContestDAO(gdb)

	owner, err := users.Insert(ctx, dao.User{Nickname: "owner", Points: 10000})
	require.NoError(t, err)
	author, err := users.Insert(ctx, dao.User{Nickname: "author", Points: 10000})
	require.NoError(t, err)

	contest, err := contests.Insert(ctx, dao.Contest{UserID: owner.ID, Title: "야경", Description: "도시의 밤", Points: 700})
	require.NoError(t, err)

	photo, err := contests.InsertPhoto(ctx, dao.ContestPhoto{
		ContestID:   contest.ID,
		UserID:      author.ID,
		ImagePath:   fmt.Sprintf("contests/%d/photo_%d_1_night.png", contest.ID, author.ID),
		SubmittedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	const callers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, selErr := contests.SelectWinner(ctx, contest.ID, photo.ID, owner.ID)
			if selErr == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, selErr, dao.ErrContestNotActive)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)

	gotOwner, err := users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	gotAuthor, err := users.FindByID(ctx, author.ID)
	require.NoError(t, err)

	assert.Equal(t, 9300, gotOwner.Points)
	assert.Equal(t, 10700, gotAuthor.Points)
}

func TestPostgres_UniqueViolationsAreTranslated(t *testing.T) {
	gdb := startPostgres(t)
	ctx := context.Background()

	users := dao.NewUserDAO(gdb)

	_, err := users.Insert(ctx, dao.User{Nickname: "twin", Points: 10000})
	require.NoError(t, err)

	_, err = users.Insert(ctx, dao.User{Nickname: "twin", Points: 10000})
	assert.ErrorIs(t, err, dao.ErrNicknameExists)
}
