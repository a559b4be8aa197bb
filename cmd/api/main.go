package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edcore.org/internal/access"
	"edcore.org/internal/cache"
	"edcore.org/internal/config"
	"edcore.org/internal/httpapi"
	"edcore.org/internal/notify"
	"edcore.org/internal/notify/sms"
	"edcore.org/internal/obs"
	"edcore.org/internal/school"
	"edcore.org/internal/store/pg"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := pg.Open(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	accessOpts := []access.ServiceOption{}
	if cfg.Redis.Enabled {
		accessCache, err := cache.New(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
			cache.WithTTL(time.Duration(cfg.Redis.TTL)*time.Second))
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer accessCache.Close()
		accessOpts = append(accessOpts, access.WithCache(accessCache))
	}
	accessSvc, err := access.NewService(store, accessOpts...)
	if err != nil {
		log.Fatalf("access service: %v", err)
	}

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("sms provider: %v", err)
	}
	channels := []notify.Channel{notify.NewInAppChannel(store)}
	if provider != nil {
		channels = append(channels, notify.NewSMSChannel(provider,
			notify.WithBatchCap(cfg.Notify.SMSBatchCap),
			notify.WithCallTimeout(time.Duration(cfg.Notify.CallTimeout)*time.Second)))
	}
	registry, err := notify.NewRegistry(channels...)
	if err != nil {
		log.Fatalf("channel registry: %v", err)
	}
	orchestrator, err := notify.NewOrchestrator(school.NewResolver(store), registry)
	if err != nil {
		log.Fatalf("orchestrator: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: store.DB()}, version, accessSvc, orchestrator, store)
	api.SetLimits(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, cfg.Server.MaxBodyBytes)
	api.SetTokenTTL(time.Duration(cfg.Auth.TokenTTL) * time.Minute)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting edcore-api %s on %s", version, srv.Addr)
	obs.SetReady(true)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Println("Stopped")
}

func buildProvider(ctx context.Context, cfg *config.Config) (sms.Provider, error) {
	switch cfg.Notify.SMSProvider {
	case "sns":
		return sms.NewSNSProvider(ctx, cfg.Notify.SNS.Region, cfg.Notify.SNS.SenderID)
	case "msg91":
		return sms.NewMSG91Provider(cfg.Notify.MSG91.AuthKey, cfg.Notify.MSG91.SenderID, cfg.Notify.MSG91.BaseURL)
	default:
		// SMS disabled; dispatches still deliver in-app.
		return nil, nil
	}
}
