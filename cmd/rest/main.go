package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ipad-assistant-be/internal/bootstrap"
	"ipad-assistant-be/internal/config"
	"ipad-assistant-be/internal/server"
	"ipad-assistant-be/internal/tracer"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.Close()
	defer container.Logger.Sync()

	// 3. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, container.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// 4. Background Services
	g.Go(func() error {
		return container.ConsumerService.Consume(gctx)
	})
	g.Go(func() error {
		container.WebSocketHub.Run(gctx)
		return nil
	})

	// 5. Server
	srv := server.New(cfg, container)
	g.Go(func() error {
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		container.Logger.Info("MAIN", "Shutting down", nil)
		return srv.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server stopped with error: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracer(flushCtx); err != nil {
		log.Printf("Tracer shutdown: %v", err)
	}
}
