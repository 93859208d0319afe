package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cfadesk.org/internal/config"
	"cfadesk.org/internal/gateway"
	"cfadesk.org/internal/obs"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	obs.Init()
	obs.InitBuildInfo("gateway", version, commit)

	gw, err := gateway.New(cfg.Gateway, version)
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Gateway.Addr,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		// Uploads and ZIP exports stream through the relay.
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	obs.Log("info", "gateway starting", map[string]any{
		"version":  version,
		"addr":     srv.Addr,
		"upstream": cfg.Gateway.Upstream,
		"prefix":   cfg.Gateway.Prefix,
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	obs.Log("info", "gateway shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		obs.Error("shutdown", err, nil)
	}
	obs.Log("info", "gateway stopped", nil)
}
