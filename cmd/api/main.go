package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-auth-api/internal/core/auth"
	"go-auth-api/internal/core/cache"
	"go-auth-api/internal/core/config"
	"go-auth-api/internal/core/database"
	"go-auth-api/internal/core/logger"
	"go-auth-api/internal/core/server"
	"go-auth-api/internal/domain"
	"go-auth-api/internal/repo"
	"go-auth-api/internal/service"
	"go-auth-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.RefreshToken{}, &domain.TwoFactorSecret{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	rdb := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	userRepo := repo.NewUserRepo(db)
	tokenRepo := repo.NewRefreshTokenRepo(db)
	twoFactorRepo := repo.NewTwoFactorRepo(db)

	twoFactorSvc := service.NewTwoFactorService(twoFactorRepo, cfg.TwoFactor.Issuer)
	refreshTTL := time.Duration(cfg.JWT.RefreshTokenTTLDay) * 24 * time.Hour
	authSvc := service.NewAuthService(userRepo, tokenRepo, twoFactorSvc, jwter, refreshTTL, log)
	userSvc := service.NewUserService(userRepo, tokenRepo, rdb, log)

	r := router.NewAPIEngine(router.Deps{
		Cfg:   cfg,
		Log:   log,
		DB:    db,
		Cache: rdb,
		JWTer: jwter,
		Auth:  authSvc,
		Users: userSvc,
		TwoFA: twoFactorSvc,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("auth api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("auth api start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("auth api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
