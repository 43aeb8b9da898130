package db

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/loca-app/loca-api/internal/config"
	"github.com/loca-app/loca-api/internal/repository/dao"
)

func Open(conf *config.AppConfig) (*gorm.DB, error) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return OpenPostgresWithURL(url, conf.Database)
	}

	switch conf.Database.Driver {
	case config.DatabasePostgres:
		return OpenPostgres(conf.Postgres, conf.Database)
	case config.DatabaseSQLite:
		return OpenSQLite(conf.SQLite, conf.Database)
	}

	return nil, fmt.Errorf("unknown database driver %q", conf.Database.Driver)
}

func OpenPostgres(conf *config.PostgresConfig, dbConf *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC lock_timeout=%d",
		conf.Host,
		conf.User,
		conf.Password,
		conf.DB,
		conf.Port,
		conf.SSLMode,
		conf.LockTimeout.Milliseconds(),
	)

	return open(postgres.Open(dsn), dbConf)
}

func OpenPostgresWithURL(url string, dbConf *config.DatabaseConfig) (*gorm.DB, error) {
	return open(postgres.Open(url), dbConf)
}

// OpenSQLite opens the database file at conf.Path. Write transactions take the
// database lock on BEGIN so concurrent writers queue on the busy timeout
// instead of failing on lock upgrade.
func OpenSQLite(conf *config.SQLiteConfig, dbConf *config.DatabaseConfig) (*gorm.DB, error) {
	if dir := filepath.Dir(conf.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("os.MkdirAll -> %w", err)
		}
	}

	return open(sqlite.Open(SQLiteDSN(conf.Path, conf.BusyTimeout)), dbConf)
}

func SQLiteDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf(
		"file:%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate",
		path,
		busyTimeout.Milliseconds(),
	)
}

func open(dialector gorm.Dialector, dbConf *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(dbConf.SlowQuery),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}
	if dbConf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConf.MaxOpenConns)
	}

	if err = dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("dao.InitTables -> %w", err)
	}

	return db, nil
}

// NewGormLogger routes gorm's warnings, errors and slow queries to zap.
func NewGormLogger(slowThreshold time.Duration) logger.Interface {
	return logger.New(
		zapWriter{},
		logger.Config{
			SlowThreshold:             slowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	zap.L().Sugar().Warnf(format, args...)
}
