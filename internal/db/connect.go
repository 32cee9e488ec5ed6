package db

import (
	"fmt"

	"github.com/kwheeler/lifegit/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN from storage settings.
func DSN(s config.StorageConfig) string {
	user := s.User
	if user == "" {
		user = "root"
	}
	cred := user
	if s.Password != "" {
		cred = user + ":" + s.Password
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", cred, s.Host, s.Port, s.Database)
}

// Connect opens a GORM connection for the configured storage backend.
func Connect(s config.StorageConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch s.Driver {
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(s.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %s: %w", s.Path, err)
		}
		return db, nil
	case "mysql":
		db, err := gorm.Open(mysql.Open(DSN(s)), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", s.Host, s.Port, s.Database, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", s.Driver)
	}
}
