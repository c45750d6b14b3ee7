package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	httpctrl "github.com/papercircuit/elektronVersion/internal/adapter/controller/http"
	"github.com/papercircuit/elektronVersion/internal/adapter/gateway/cache"
	"github.com/papercircuit/elektronVersion/internal/adapter/gateway/dbping"
	"github.com/papercircuit/elektronVersion/internal/adapter/gateway/postgres"
	"github.com/papercircuit/elektronVersion/internal/adapter/gateway/reverb"
	"github.com/papercircuit/elektronVersion/internal/config"
	domain "github.com/papercircuit/elektronVersion/internal/domain/health"
	"github.com/papercircuit/elektronVersion/internal/infra/http/mw/adminauth"
	"github.com/papercircuit/elektronVersion/internal/infra/scheduler"
	"github.com/papercircuit/elektronVersion/internal/infra/store"
	usehealth "github.com/papercircuit/elektronVersion/internal/usecase/health"
	syncuc "github.com/papercircuit/elektronVersion/internal/usecase/sync"
)

type envErr string

func (e envErr) Error() string { return "missing env: " + string(e) }
func ErrEnv(name string) error { return envErr(name) }

// App is the assembled service: the HTTP surface plus the cycle scheduler.
type App struct {
	Router *gin.Engine
	Sched  *scheduler.Scheduler
	Cfg    config.SyncConfig

	closers []func() error
}

func (a *App) Close() {
	for _, c := range a.closers {
		_ = c()
	}
}

func Build(logger *slog.Logger) (*App, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, ErrEnv("DB_DSN")
	}

	db, err := store.OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}

	repo := postgres.NewListingsRepo(db)
	mctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = repo.Migrate(mctx)
	cancel()
	if err != nil {
		db.Close()
		return nil, err
	}

	cfg := config.LoadSync()
	source := reverb.NewWithBaseURL(cfg.BaseURL)

	subs := syncuc.NewRegistry()
	snap := &httpctrl.LatestSnapshot{}
	subs.Add(snap)

	pingers := []domain.Pinger{dbping.DBPing{DB: db}}
	closers := []func() error{db.Close}

	if rcfg, ok := config.LoadRedis(); ok {
		rs, err := cache.NewSnapshot(rcfg.Addr, rcfg.Password, rcfg.DB, rcfg.TTL, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		subs.Add(rs)
		pingers = append(pingers, rs)
		closers = append(closers, rs.Close)
	}

	eng := &syncuc.Engine{
		Source:   source,
		Repo:     repo,
		Subs:     subs,
		Currency: cfg.Currency,
		Window:   cfg.Window,
		PageSize: cfg.PageSize,
		Timeout:  cfg.Timeout,
		Logger:   logger,
	}
	sched := &scheduler.Scheduler{
		Engine:  eng,
		Timeout: 4 * cfg.Timeout, // whole cycle: fetch + per-record work + read-all
		Logger:  logger,
	}

	bi := config.NewBuildInfo()
	uc := &usehealth.ReadinessInteractor{
		Pingers:   pingers,
		Version:   bi.Version,
		Commit:    bi.Commit,
		BuildTime: bi.BuildTime,
		StartedAt: bi.StartedAt,
		Clock:     usehealth.SysClock{},
		Timeout:   500 * time.Millisecond,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	httpctrl.NewHealthController(httpctrl.ReadinessRunner{UC: uc}).Register(router)
	httpctrl.NewListingsController(snap).Register(router)
	httpctrl.NewSyncController(eng, sched, adminauth.NewFromEnv().Handler()).Register(router)

	return &App{Router: router, Sched: sched, Cfg: cfg, closers: closers}, nil
}
