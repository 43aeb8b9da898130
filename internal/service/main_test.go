package service

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/loca-app/loca-api/internal/domain"
	"github.com/loca-app/loca-api/internal/media"
	"github.com/loca-app/loca-api/internal/repository"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

var pngImage = domain.Image{
	Filename: "골목.png",
	Data:     append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...),
}

type testEnv struct {
	db       *gorm.DB
	root     string
	store    *recordingStore
	users    *UserService
	contests *ContestService
	keywords *KeywordService
	repo     *repository.ContestRepository
	userRepo *repository.UserRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, dao.InitTables(db))

	root := t.TempDir()
	local, err := media.NewLocalStore(root)
	require.NoError(t, err)
	store := &recordingStore{Store: local}

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	contestRepo := repository.NewContestRepository(dao.NewContestDAO(db))

	return &testEnv{
		db:       db,
		root:     root,
		store:    store,
		users:    NewUserService(userRepo),
		contests: NewContestService(contestRepo, userRepo, store, media.NewNamer()),
		keywords: NewKeywordService(repository.NewKeywordRepository(dao.NewKeywordDAO(db))),
		repo:     contestRepo,
		userRepo: userRepo,
	}
}

func (e *testEnv) createUser(t *testing.T, nickname string) domain.User {
	t.Helper()

	user, err := e.users.CreateUser(context.Background(), nickname)
	require.NoError(t, err)

	return user
}

func (e *testEnv) createContest(t *testing.T, ownerID uint, points int) domain.Contest {
	t.Helper()

	contest, err := e.contests.CreateContest(context.Background(), domain.Contest{
		OwnerID:     ownerID,
		Title:       "벚꽃길",
		Description: "가장 아름다운 벚꽃길",
		Points:      points,
	})
	require.NoError(t, err)

	return contest
}

func (e *testEnv) points(t *testing.T, userID uint) int {
	t.Helper()

	user, err := e.users.GetUser(context.Background(), userID)
	require.NoError(t, err)

	return user.Points
}

// files lists the stored objects relative to the store root, ignoring directories.
func (e *testEnv) files(t *testing.T) []string {
	t.Helper()

	var found []string
	err := filepath.WalkDir(e.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(e.root, p)
		if err != nil {
			return err
		}
		found = append(found, filepath.ToSlash(rel))

		return nil
	})
	require.NoError(t, err)

	return found
}

// recordingStore wraps a real store and can be told to fail.
type recordingStore struct {
	media.Store

	mu         sync.Mutex
	saveErr    error
	deleteErr  error
	deleted    []string
	deletedDir []string
}

func (s *recordingStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	err := s.saveErr
	s.mu.Unlock()
	if err != nil {
		return err
	}

	return s.Store.Save(ctx, key, data)
}

func (s *recordingStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	err := s.deleteErr
	s.deleted = append(s.deleted, key)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	return s.Store.Delete(ctx, key)
}

func (s *recordingStore) DeleteDir(ctx context.Context, prefix string) error {
	s.mu.Lock()
	s.deletedDir = append(s.deletedDir, prefix)
	s.mu.Unlock()

	return s.Store.DeleteDir(ctx, prefix)
}

// hookedContestRepo runs beforeCreatePhoto between the service's own checks
// and the row insert, to simulate a contest closing mid-submission.
type hookedContestRepo struct {
	ContestRepository
	beforeCreatePhoto func()
}

func (r *hookedContestRepo) CreatePhoto(ctx context.Context, photo domain.ContestPhoto) (domain.ContestPhoto, error) {
	if r.beforeCreatePhoto != nil {
		r.beforeCreatePhoto()
	}

	return r.ContestRepository.CreatePhoto(ctx, photo)
}
