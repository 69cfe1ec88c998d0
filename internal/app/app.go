package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-backend/internal/config"
	"photo-backend/internal/db"
	"photo-backend/internal/filestore"
	"photo-backend/internal/handlers"
	"photo-backend/internal/services"
)

func Run() {
	cfg := config.Load()

	// Init DB
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := db.Open(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(ctx)
	}()

	files, err := newFileStore(cfg)
	if err != nil {
		log.Fatalf("Failed to init file store: %v", err)
	}

	// Services
	hub := handlers.NewCommentHub()
	photoService := services.NewPhotoService(store, files, hub)

	app := handlers.NewApp(handlers.RouterConfig{
		CORSOrigins:  cfg.CORSOrigins,
		CookieSecret: cfg.CookieSecret,
		BodyLimit:    cfg.BodyLimit,
	}, photoService, hub)

	// Start Server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c // Block until signal
	log.Println("Gracefully shutting down...")
	_ = app.Shutdown()
	log.Println("Server shutdown complete")
}

func newFileStore(cfg config.Config) (filestore.FileStore, error) {
	switch cfg.FileStore {
	case config.FileStoreDisk:
		return filestore.NewDisk(cfg.ImageDir)
	case config.FileStoreMinio:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		m := cfg.Minio
		return filestore.NewMinio(ctx, m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket)
	default:
		return nil, fmt.Errorf("unknown FILE_STORE %q", cfg.FileStore)
	}
}
