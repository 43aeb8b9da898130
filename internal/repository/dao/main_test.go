package dao

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:memdb_%s?mode=memory&cache=shared&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, InitTables(db))

	return db
}

func insertUser(t *testing.T, db *gorm.DB, nickname string, points int) User {
	t.Helper()

	user, err := NewUserDAO(db).Insert(context.Background(), User{Nickname: nickname, Points: points})
	require.NoError(t, err)

	// points has a column default, so a zero balance must be written explicitly.
	if points == 0 {
		require.NoError(t, db.Model(&User{}).Where("id = ?", user.ID).Update("points", 0).Error)
		user.Points = 0
	}

	return user
}

func insertContest(t *testing.T, db *gorm.DB, ownerID uint, points int) Contest {
	t.Helper()

	contest, err := NewContestDAO(db).Insert(context.Background(), Contest{
		UserID:      ownerID,
		Title:       "골목 풍경",
		Description: "동네 골목 사진",
		Points:      points,
	})
	require.NoError(t, err)

	return contest
}

func insertContestPhoto(t *testing.T, db *gorm.DB, contestID, userID uint, path string) ContestPhoto {
	t.Helper()

	photo, err := NewContestDAO(db).InsertPhoto(context.Background(), ContestPhoto{
		ContestID: contestID,
		UserID:    userID,
		ImagePath: path,
	})
	require.NoError(t, err)

	return photo
}

func balance(t *testing.T, db *gorm.DB, userID uint) int {
	t.Helper()

	var user User
	require.NoError(t, db.First(&user, userID).Error)

	return user.Points
}
