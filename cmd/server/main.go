package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/events"
	"github.com/iliyamo/fyyur/internal/flash"
	"github.com/iliyamo/fyyur/internal/handler"
	"github.com/iliyamo/fyyur/internal/logging"
	"github.com/iliyamo/fyyur/internal/middleware"
	"github.com/iliyamo/fyyur/internal/repository"
	"github.com/iliyamo/fyyur/internal/router"
	"github.com/iliyamo/fyyur/internal/view"
)

const flashTTL = 5 * time.Minute

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg)
	if err != nil {
		logrus.WithError(err).WithField("driver", cfg.DBDriver).Fatal("open database")
	}
	defer db.Close()

	if cfg.Migrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			logrus.WithError(err).Fatal("migrate schema")
		}
	}

	rdb := config.NewRedisClient()
	if rdb != nil {
		defer rdb.Close()
	}

	var store flash.Store = flash.NewCookieStore(cfg.FlashSecret, flashTTL)
	if cfg.FlashStore == config.FlashRedis {
		if rdb != nil {
			store = flash.NewRedisStore(rdb, flashTTL)
		} else {
			logrus.Warn("FLASH_STORE=redis but redis is unavailable, using cookie flashes")
		}
	}

	pub := events.NewPublisher(cfg.AMQPURL)
	defer pub.Close()

	renderer, err := view.New()
	if err != nil {
		logrus.WithError(err).Fatal("parse templates")
	}

	h := handler.New(
		repository.NewVenueRepo(db),
		repository.NewArtistRepo(db),
		repository.NewShowRepo(db),
		store,
		pub,
	)
	e := router.New(h, renderer, router.Options{
		Limit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Metrics: cfg.MetricsEnabled,
		DB:      db,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "driver": cfg.DBDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logrus.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("server stopped")
	}
}
