package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/cartkeeper/internal/app"
	"github.com/cartkeeper/internal/config"
	"github.com/cartkeeper/internal/logger"
	"github.com/cartkeeper/internal/models"

	"github.com/gin-gonic/gin"
)

const banner = "\033[95m== CartKeeper ==\033[0m  \033[2mmodes: all | api | worker\033[0m"

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()
	fmt.Println(banner)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()

	if err := run(cfg, *mode); err != nil {
		logger.Errorw("app_exit", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, mode string) error {
	release := cfg.Server.Mode == "release"
	if weakSecret(cfg.JWT.SecretKey) || weakSecret(cfg.UserJWT.SecretKey) {
		if release {
			return errors.New("jwt secret is weak or still the default value")
		}
		logger.Warnw("jwt_secret_weak", "hint", "configure a random secret of at least 32 chars before going live")
	}
	if release {
		gin.SetMode(gin.ReleaseMode)
	}

	dbOpts := cfg.Database.ToConnectOptions()
	dbOpts.SQLWriter = logger.StdLogger()
	db, err := models.Connect(dbOpts)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	password := os.Getenv("CK_DEFAULT_ADMIN_PASSWORD")
	if release && password == "" {
		logger.Warnw("default_admin_skipped", "reason", "CK_DEFAULT_ADMIN_PASSWORD not set")
	} else if admin, err := models.EnsureDefaultAdmin(db, os.Getenv("CK_DEFAULT_ADMIN_USERNAME"), password); err != nil {
		logger.Warnw("default_admin_create_failed", "error", err)
	} else if admin != nil {
		logger.Warnw("default_admin_created", "username", admin.Username, "default_password", password == "")
	}

	return app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	})
}

func weakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	lower := strings.ToLower(secret)
	for _, marker := range []string{"change-me", "change-in-production", "your-secret-key"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
