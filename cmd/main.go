package main

import (
	"MucosaView/cache"
	"MucosaView/config"
	"MucosaView/database"
	"MucosaView/routes"
	"MucosaView/storage"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.InitDB(context.Background(), cfg.DBURL)
	if err != nil {
		logrus.Fatalf("failed to initialize database: %v", err)
	}

	redisClient, err := database.NewRedisClient(database.LoadRedisConfig(cfg.RedisAddress))
	if err != nil {
		logrus.Fatalf("failed to initialize Redis client: %v", err)
	}

	appCache, err := cache.NewCache(redisClient)
	if err != nil {
		logrus.Fatalf("failed to initialize cache: %v", err)
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		logrus.Fatalf("failed to initialize blob store: %v", err)
	}

	handler := routes.SetupRoutes(appCache, cfg, db, blobs)

	srv := &http.Server{
		Addr:           cfg.ServiceAddr(),
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		logrus.Infof("starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("listenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	logrus.Info("shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("server shutdown failed: %+v", err)
	}

	wg.Wait()
	logrus.Info("server exited gracefully")
}

// newBlobStore selects the photo backend: MinIO when an endpoint is
// configured, the in-process store otherwise.
func newBlobStore(cfg *config.AppConfig) (storage.BlobStore, error) {
	if cfg.MinIO.Endpoint == "" {
		logrus.Warn("no MinIO endpoint configured, storing photos in memory")
		return storage.NewMemoryStore(), nil
	}
	return storage.NewMinIO(
		cfg.MinIO.Endpoint,
		cfg.MinIO.AccessKey,
		cfg.MinIO.SecretKey,
		cfg.MinIO.Bucket,
		cfg.MinIO.UseSSL,
	)
}
