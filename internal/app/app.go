// Package app wires configuration, logging, the stores, the session
// manager and the router together, and runs the HTTP server until a
// termination signal arrives.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patric-chuzhbe/filesmanager/internal/auth"
	"github.com/patric-chuzhbe/filesmanager/internal/config"
	"github.com/patric-chuzhbe/filesmanager/internal/contentstore/fsstore"
	"github.com/patric-chuzhbe/filesmanager/internal/contentstore/s3store"
	"github.com/patric-chuzhbe/filesmanager/internal/db/jsondb"
	"github.com/patric-chuzhbe/filesmanager/internal/db/memorystorage"
	"github.com/patric-chuzhbe/filesmanager/internal/db/postgresdb"
	"github.com/patric-chuzhbe/filesmanager/internal/db/storage"
	"github.com/patric-chuzhbe/filesmanager/internal/ipchecker"
	"github.com/patric-chuzhbe/filesmanager/internal/logger"
	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/router"
	"github.com/patric-chuzhbe/filesmanager/internal/service"
	"github.com/patric-chuzhbe/filesmanager/internal/sessionstore"
)

type contentKeeper interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// App holds everything that lives for the whole process.
type App struct {
	cfg         *config.Config
	db          storage.Storage
	sessions    *sessionstore.SessionStore
	httpHandler http.Handler
}

// New loads the configuration, initializes the logger, opens the stores
// and builds the router.
func New() (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New()
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	app.db, err = getStorageByType(ctx, app.cfg)
	if err != nil {
		return nil, err
	}

	app.sessions, err = sessionstore.New(app.cfg.SessionStorePath)
	if err != nil {
		return nil, errors.Join(err, app.db.Close())
	}

	content, err := getContentStoreByType(ctx, app.cfg)
	if err != nil {
		return nil, errors.Join(err, app.sessions.Close(), app.db.Close())
	}

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, errors.Join(err, app.sessions.Close(), app.db.Close())
	}

	theAuth := auth.New(app.db, app.sessions, app.cfg.SessionTTL)

	app.httpHandler = router.New(
		service.New(app.db, content, theAuth, app.sessions),
		theAuth,
		theAuth,
		checker,
	)

	return app, nil
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts the server down and
// closes the stores.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Infoln("server running", "RunAddr", a.cfg.RunAddr)

	server := &http.Server{
		Addr:              a.cfg.RunAddr,
		Handler:           a.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing the stores and exiting...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return errors.Join(a.sessions.Close(), a.db.Close())

	case err := <-serverErrCh:
		return errors.Join(fmt.Errorf("server error: %w", err), a.sessions.Close(), a.db.Close())
	}
}

// Close flushes the logger.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func getAvailableStorageType(cfg *config.Config) int {
	if cfg.DatabaseDSN != "" {
		return models.StorageTypePostgresql
	}

	if cfg.DBFileName != "" {
		return models.StorageTypeFile
	}

	return models.StorageTypeMemory
}

func getStorageByType(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch getAvailableStorageType(cfg) {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			ctx,
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}

func getContentStoreByType(ctx context.Context, cfg *config.Config) (contentKeeper, error) {
	if cfg.ContentStoreType == models.ContentStoreS3 {
		return s3store.New(ctx, s3store.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			KeyPrefix:       cfg.S3KeyPrefix,
		})
	}

	return fsstore.New(ctx, cfg.FolderPath)
}
