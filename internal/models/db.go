package models

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB 全局连接，由 Connect 设置
var DB *gorm.DB

// ConnectOptions 数据库连接参数
type ConnectOptions struct {
	Driver string // sqlite（默认）或 postgres
	DSN    string
	SQLLog bool
	// SQLWriter 为空时写标准输出
	SQLWriter *log.Logger

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Connect 打开连接、应用连接池参数并迁移表结构，成功后替换全局 DB
func Connect(opts ConnectOptions) (*gorm.DB, error) {
	db, err := OpenDB(opts)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
	if err := MigrateDB(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	DB = db
	return db, nil
}

// OpenDB 按驱动打开连接，不修改全局 DB
func OpenDB(opts ConnectOptions) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", "sqlite":
		dialector = sqlite.Open(opts.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", opts.Driver)
	}

	level := gormlogger.Silent
	if opts.SQLLog {
		level = gormlogger.Info
	}
	writer := opts.SQLWriter
	if writer == nil {
		writer = log.New(os.Stdout, "", log.LstdFlags)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(writer, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
}

// MigrateDB 迁移全部模型
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return errors.New("database not initialized")
	}
	return db.AutoMigrate(
		&Admin{},
		&User{},
		&Product{},
		&Cart{},
		&CartItem{},
		&AdminAuditLog{},
	)
}
