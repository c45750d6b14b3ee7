package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/papercircuit/elektronVersion/internal/app"
	"github.com/papercircuit/elektronVersion/internal/infra/logx"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system env vars")
	}

	logger := logx.New()
	slog.SetDefault(logger)

	a, err := app.Build(logger)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.Sched.Start(ctx, a.Cfg.Interval)
	defer a.Sched.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: a.Router}

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	logger.Info("listening", "port", port, "interval", a.Cfg.Interval.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
