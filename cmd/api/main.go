package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"teampulse.org/internal/budget"
	"teampulse.org/internal/config"
	"teampulse.org/internal/directory"
	"teampulse.org/internal/feed"
	"teampulse.org/internal/httpapi"
	"teampulse.org/internal/jobs"
	"teampulse.org/internal/obs"
	"teampulse.org/internal/recognition"
	"teampulse.org/internal/rewards"
	"teampulse.org/internal/store/pg"
	"teampulse.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	setupLogger(cfg)

	// Регистрация метрик
	obs.Init()
	obs.InitBuildInfo(version, commit)

	// Хранилища: Postgres при заданном DSN, иначе in-memory (демо-режим)
	var (
		store       *pg.Store
		probe       httpapi.ReadyProbe
		userStore   directory.UserStore
		teamStore   directory.TeamStore
		budgetStore budget.Store
		recogStore  recognition.Store
		noteStore   feed.NotificationStore
		actStore    feed.ActivityStore
		rewardStore rewards.Store
	)
	if cfg.DatabaseDSN != "" {
		store, err = pg.Open(cfg.DatabaseDSN, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer store.Close()
		probe = httpapi.ReadyProbe{DB: store.DB()}
		userStore = store.Users()
		teamStore = store.Teams()
		budgetStore = store.Budgets()
		recogStore = store.Recognition()
		noteStore = store.Notifications()
		actStore = store.Activities()
		rewardStore = store.Vouchers()
	} else {
		log.Warn("TEAMPULSE_PG_DSN is empty, using in-memory stores")
		userStore = directory.NewInMemoryUsers()
		teamStore = directory.NewInMemoryTeams()
		budgetStore = budget.NewInMemory()
		recogStore = recognition.NewInMemory()
		noteStore = feed.NewInMemoryNotifications()
		actStore = feed.NewInMemoryActivities()
		rewardStore = rewards.NewInMemory()
	}

	// Сервисы
	st := stream.New()
	dir := directory.NewService(userStore, teamStore)
	budgets := budget.NewService(budgetStore,
		budget.WithDefaults(cfg.DefaultTotalBudget, cfg.DefaultMonthlyBudget))
	fd := feed.NewService(noteStore, actStore, st)
	recog := recognition.NewService(recogStore, userStore, budgets, fd)
	vouchers := rewards.NewService(rewardStore, userStore, fd)

	// Плановый сброс месячных бюджетов; ленивый сброс на чтении остаётся
	// основным механизмом корректности.
	scheduler := jobs.NewScheduler(budgets, cfg.AppTimezone)
	schedCtx, schedCancel := context.WithCancel(context.Background())
	scheduler.Start(schedCtx)
	defer func() {
		schedCancel()
		scheduler.Stop()
	}()

	api := httpapi.New(httpapi.Deps{
		Directory:   dir,
		Budgets:     budgets,
		Recognition: recog,
		Rewards:     vouchers,
		Feed:        fd,
		Stream:      st,
		ReadyProbe:  probe,
		TokenTTL:    cfg.TokenTTL,
		Version:     version,
		Development: cfg.Development(),
	})

	handler := httpapi.Logging(
		httpapi.SecurityHeaders(
			httpapi.CORS(
				httpapi.MaxBodyBytes(
					httpapi.RateLimit(api.Handler(), cfg.RateBurst, cfg.RatePerSecond),
					cfg.MaxBodyBytes))))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// WriteTimeout не ставим: /api/events держит соединение открытым
		IdleTimeout: 60 * time.Second,
	}

	log.WithFields(log.Fields{
		"version": version,
		"addr":    cfg.HTTPAddr,
		"env":     cfg.AppEnv,
	}).Info("starting teampulse-api")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.AppLogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Development() {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
}
